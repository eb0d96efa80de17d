// ABOUTME: HTTP client for the Gemini generateContent API
// ABOUTME: Builds the Axis persona prompt and enforces a call deadline

package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/LainPM/Locust/internal/collab"
)

// DefaultBaseURL is the production Gemini API endpoint.
const DefaultBaseURL = "https://generativelanguage.googleapis.com"

// DefaultModel matches what the bot has always used.
const DefaultModel = "gemini-1.5-flash-latest"

// DefaultTimeout bounds a single generation call.
const DefaultTimeout = 10 * time.Second

// Client calls the Gemini API to turn a prompt into reply text.
// It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	botName    string
	timeout    time.Duration
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint. Used in tests.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithModel overrides the model name.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// WithTimeout overrides the per-call deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// NewClient creates a Gemini client for the given API key. botName is
// baked into the system prompt so the model answers in persona.
func NewClient(apiKey, botName string, logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		httpClient: &http.Client{},
		baseURL:    DefaultBaseURL,
		apiKey:     apiKey,
		model:      DefaultModel,
		botName:    botName,
		timeout:    DefaultTimeout,
		logger:     logger.With("component", "gemini"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Request/response shapes for generateContent. Only the fields the bot
// reads are modeled.

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopK            int     `json:"topK"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Generate produces reply text for the prompt. askerID and askerName give
// the model user context. The call is bounded by the client timeout;
// failures wrap the collab sentinels so callers can classify them.
func (c *Client) Generate(ctx context.Context, prompt, askerID, askerName string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	reqBody := generateRequest{
		Contents: []content{{
			Parts: []part{{Text: c.systemPrompt(prompt, askerID, askerName)}},
		}},
		GenerationConfig: generationConfig{
			Temperature:     0.7,
			TopK:            40,
			TopP:            0.95,
			MaxOutputTokens: 800,
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: generation exceeded %s", collab.ErrTimeout, c.timeout)
		}
		return "", fmt.Errorf("%w: %v", collab.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Error("gemini API error",
			"status", resp.StatusCode,
			"body", string(body))
		return "", fmt.Errorf("%w: gemini status %d", collab.ErrUpstream, resp.StatusCode)
	}

	var parsed generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("%w: %v", collab.ErrMalformed, err)
	}

	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: no candidates in response", collab.ErrMalformed)
	}

	text := parsed.Candidates[0].Content.Parts[0].Text
	if text == "" {
		return "", fmt.Errorf("%w: empty candidate text", collab.ErrMalformed)
	}

	c.logger.Debug("generation complete",
		"asker", askerID,
		"elapsed", time.Since(start),
		"length", len(text))

	return text, nil
}

// systemPrompt wraps the user message in the Axis persona. The wording
// tracks what the bot has shipped with since the beginning.
func (c *Client) systemPrompt(prompt, askerID, askerName string) string {
	userContext := fmt.Sprintf("User Info - Username: %s, ID: %s", askerName, askerID)
	return fmt.Sprintf(
		"You are %s, a helpful Discord bot specifically designed for a Roblox Development server. "+
			"Your primary purpose is to assist with Roblox game development, Luau scripting, and development best practices. "+
			"You have extensive knowledge about Roblox Studio, Roblox APIs, game design patterns, and optimization techniques. "+
			"Be friendly, concise (max 2000 characters), and helpful. When providing code examples, use Luau syntax. "+
			"Current user context: %s. "+
			"User message: %s",
		c.botName, userContext, prompt)
}
