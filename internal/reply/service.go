// ABOUTME: Service executes routing decisions against the collaborators
// ABOUTME: Owns timeouts, canned fallbacks, truncation, transcripts, leveling

package reply

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/LainPM/Locust/internal/actions"
	"github.com/LainPM/Locust/internal/collab"
	"github.com/LainPM/Locust/internal/intent"
	"github.com/LainPM/Locust/internal/leveling"
	"github.com/LainPM/Locust/internal/router"
	"github.com/LainPM/Locust/internal/store"
)

// MaxReplyLength is the transport message-size limit. Longer replies are
// truncated to MaxReplyLength-3 characters plus a marker before sending.
const MaxReplyLength = 2000

// DefaultTimeout bounds one collaborator call.
const DefaultTimeout = 10 * time.Second

// Canned user-safe fallbacks, keyed by failure category. Raw error detail
// is logged, never sent to chat.
const (
	fallbackTimeout  = "Sorry, I'm taking too long to respond. Please try again!"
	fallbackUpstream = "I'm having some technical difficulties right now. Please try again later!"
	fallbackGeneric  = "Sorry, I'm having trouble generating a response right now."
)

// Reply is one outbound message for the transport to deliver.
type Reply struct {
	ID       string
	Text     string
	Fields   []actions.Field
	ImageURL string
}

// TypingFunc toggles the transport's typing indicator. May be nil.
type TypingFunc func(typing bool)

// Router produces one routing decision per message.
type Router interface {
	Route(msg router.Message) router.Decision
}

// Dispatcher executes structured intents.
type Dispatcher interface {
	Execute(ctx context.Context, in intent.Intent, mc actions.MessageContext) (*actions.Payload, error)
}

// Responder generates free-text replies.
type Responder interface {
	Generate(ctx context.Context, prompt, askerID, askerName string) (string, error)
}

// TranscriptStore records free-text exchanges.
type TranscriptStore interface {
	SaveTranscript(ctx context.Context, tr *store.Transcript) error
}

// Leveler awards XP for processed messages.
type Leveler interface {
	Award(ctx context.Context, userID, guildID string) (*leveling.Result, error)
}

// Service turns routing decisions into concrete replies.
type Service struct {
	router      Router
	dispatcher  Dispatcher
	responder   Responder
	transcripts TranscriptStore
	leveler     Leveler
	announce    bool
	timeout     time.Duration
	logger      *slog.Logger
}

// New creates a reply service. transcripts and leveler may be nil to
// disable those features. announce controls whether level-ups produce an
// announcement reply; XP accrues either way.
func New(rt Router, dispatcher Dispatcher, responder Responder, transcripts TranscriptStore, leveler Leveler, announce bool, timeout time.Duration, logger *slog.Logger) *Service {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		router:      rt,
		dispatcher:  dispatcher,
		responder:   responder,
		transcripts: transcripts,
		leveler:     leveler,
		announce:    announce,
		timeout:     timeout,
		logger:      logger.With("component", "reply"),
	}
}

// Handle processes one inbound message end to end: route, execute the
// decision, and return zero or more replies for the transport to send.
// A level-up announcement may ride along even when the decision was to
// stay silent.
func (s *Service) Handle(ctx context.Context, msg router.Message, typing TypingFunc) []*Reply {
	decision := s.router.Route(msg)

	var replies []*Reply

	switch decision.Kind {
	case router.KindIgnore:
		// Nothing to say.

	case router.KindEndConversation:
		replies = append(replies, s.newReply(decision.Farewell))

	case router.KindStructuredAction:
		replies = append(replies, s.runStructured(ctx, decision, msg))

	case router.KindFreeText:
		replies = append(replies, s.runFreeText(ctx, decision, msg, typing))
	}

	if announcement := s.awardXP(ctx, msg); announcement != nil {
		replies = append(replies, announcement)
	}

	return replies
}

// runStructured executes a structured action with a bounded deadline.
func (s *Service) runStructured(ctx context.Context, decision router.Decision, msg router.Message) *Reply {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	payload, err := s.dispatcher.Execute(callCtx, decision.Intent, actions.MessageContext{
		Channel:    msg.Channel,
		Guild:      msg.Guild,
		Author:     msg.Author,
		AuthorName: msg.AuthorName,
	})
	if err != nil {
		s.logger.Error("structured action failed",
			"intent", string(decision.Intent),
			"channel", msg.Channel,
			"error", err)
		return s.newReply(fallbackFor(err))
	}

	r := s.newReply(Truncate(payload.Text, MaxReplyLength))
	r.Fields = payload.Fields
	r.ImageURL = payload.ImageURL
	return r
}

// runFreeText calls the generative responder. The session transition has
// already been committed by the router; a failed generation deliberately
// leaves it in place so the user can just try again.
func (s *Service) runFreeText(ctx context.Context, decision router.Decision, msg router.Message, typing TypingFunc) *Reply {
	if typing != nil {
		typing(true)
		defer typing(false)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text, err := s.responder.Generate(callCtx, decision.Prompt, decision.Asker, msg.AuthorName)
	if err != nil {
		s.logger.Error("generation failed",
			"channel", msg.Channel,
			"asker", decision.Asker,
			"error", err)
		return s.newReply(fallbackFor(err))
	}

	text = Truncate(text, MaxReplyLength)
	s.recordExchange(msg, text)
	return s.newReply(text)
}

// recordExchange persists both sides of a free-text exchange. Uses its own
// timeout so persistence survives request-context cancellation; failures
// are logged and swallowed — the reply still goes out.
func (s *Service) recordExchange(msg router.Message, replyText string) {
	if s.transcripts == nil {
		return
	}
	saveCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	now := time.Now()
	lines := []*store.Transcript{
		{
			ID:        uuid.New().String(),
			ChannelID: msg.Channel,
			Author:    msg.Author,
			Role:      store.RoleUser,
			Content:   msg.Text,
			CreatedAt: now,
		},
		{
			ID:        uuid.New().String(),
			ChannelID: msg.Channel,
			Author:    "assistant",
			Role:      store.RoleAssistant,
			Content:   replyText,
			CreatedAt: now,
		},
	}
	for _, tr := range lines {
		if err := s.transcripts.SaveTranscript(saveCtx, tr); err != nil {
			s.logger.Error("failed to save transcript",
				"channel", msg.Channel,
				"role", tr.Role,
				"error", err)
		}
	}
}

// awardXP feeds the leveling pipeline. Bot authors and DMs earn nothing.
// Returns an announcement reply when the award crossed a level boundary
// and announcements are enabled.
func (s *Service) awardXP(ctx context.Context, msg router.Message) *Reply {
	if s.leveler == nil || msg.AuthorIsBot || msg.Guild == "" {
		return nil
	}
	res, err := s.leveler.Award(ctx, msg.Author, msg.Guild)
	if err != nil {
		s.logger.Error("xp award failed",
			"user", msg.Author,
			"guild", msg.Guild,
			"error", err)
		return nil
	}
	if res == nil || !res.LeveledUp || !s.announce {
		return nil
	}
	name := msg.AuthorName
	if name == "" {
		name = msg.Author
	}
	return s.newReply(fmt.Sprintf("🎉 %s just reached level %d!", name, res.Level))
}

func (s *Service) newReply(text string) *Reply {
	return &Reply{
		ID:   uuid.New().String(),
		Text: text,
	}
}

// fallbackFor maps a collaborator failure to its canned user-safe message.
func fallbackFor(err error) string {
	switch {
	case errors.Is(err, collab.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return fallbackTimeout
	case errors.Is(err, collab.ErrUpstream):
		return fallbackUpstream
	default:
		return fallbackGeneric
	}
}

// Truncate shortens s to at most limit characters, replacing the tail
// with a marker. Counts runes so multi-byte text is never split.
func Truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-3]) + "..."
}
