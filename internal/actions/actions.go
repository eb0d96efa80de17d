// ABOUTME: Dispatcher turns a structured intent into a reply payload
// ABOUTME: Guild and member facts come from the transport's InfoProvider

package actions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/LainPM/Locust/internal/collab"
	"github.com/LainPM/Locust/internal/intent"
)

// ErrUnknownIntent is returned when Execute is handed an intent outside
// the structured family.
var ErrUnknownIntent = errors.New("intent has no structured action")

// Field is one labeled value in a rich reply.
type Field struct {
	Name   string
	Value  string
	Inline bool
}

// Payload is the result of a structured action: plain text plus optional
// fields for transports that support rich display.
type Payload struct {
	Text     string
	Fields   []Field
	ImageURL string
}

// MessageContext carries the minimal facts about the triggering message
// that an action may need.
type MessageContext struct {
	Channel    string
	Guild      string
	Author     string
	AuthorName string
}

// Guild holds server-level facts. Zero-valued fields are simply omitted
// from replies, since not every transport has every concept.
type Guild struct {
	ID           string
	Name         string
	OwnerName    string
	MemberCount  int
	RoleCount    int
	ChannelCount int
	CreatedAt    time.Time
}

// Member holds per-user facts.
type Member struct {
	UserID    string
	Username  string
	Nickname  string
	AvatarURL string
}

// InfoProvider is what the dispatcher needs from the transport layer.
// Implementations may do network I/O and must honor the context.
type InfoProvider interface {
	// Latency measures the round-trip time to the chat service.
	Latency(ctx context.Context) (time.Duration, error)
	// Guild returns facts about the given guild/server.
	Guild(ctx context.Context, guildID string) (*Guild, error)
	// Member returns facts about a user, scoped to a guild when set.
	Member(ctx context.Context, guildID, userID string) (*Member, error)
}

// Dispatcher executes structured intents against an InfoProvider.
type Dispatcher struct {
	info   InfoProvider
	logger *slog.Logger
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(info InfoProvider, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		info:   info,
		logger: logger.With("component", "actions"),
	}
}

// Execute runs the action for a structured intent and returns its reply
// payload. Provider failures wrap collab.ErrUpstream so the caller can map
// them to a user-safe fallback.
func (d *Dispatcher) Execute(ctx context.Context, in intent.Intent, mc MessageContext) (*Payload, error) {
	d.logger.Info("executing structured action",
		"intent", string(in),
		"channel", mc.Channel,
		"user", mc.Author)

	switch in {
	case intent.CheckLatency:
		return d.checkLatency(ctx)
	case intent.CheckServerInfo:
		return d.serverInfo(ctx, mc)
	case intent.CheckMemberCount:
		return d.memberCount(ctx, mc)
	case intent.AskUsername:
		return d.username(ctx, mc)
	case intent.AskNickname:
		return d.nickname(ctx, mc)
	case intent.AskUserID:
		return &Payload{Text: fmt.Sprintf("Your user ID is: `%s`", mc.Author)}, nil
	case intent.AskBio:
		return &Payload{Text: "I cannot access user bios. You can check your bio in your profile settings!"}, nil
	case intent.AskAvatar:
		return d.avatar(ctx, mc)
	case intent.AskForHelp:
		return &Payload{Text: "Sure! Ask me anything about Roblox development, Luau scripting, or Studio — just keep talking and I'll follow along."}, nil
	case intent.ThankYou:
		return &Payload{Text: "You're welcome! Happy building! 🛠️"}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownIntent, in)
}

func (d *Dispatcher) checkLatency(ctx context.Context) (*Payload, error) {
	latency, err := d.info.Latency(ctx)
	if err != nil {
		return nil, d.upstream("latency", err)
	}
	return &Payload{
		Text: "🏓 Pong!",
		Fields: []Field{
			{Name: "Latency", Value: fmt.Sprintf("%dms", latency.Milliseconds()), Inline: true},
		},
	}, nil
}

func (d *Dispatcher) serverInfo(ctx context.Context, mc MessageContext) (*Payload, error) {
	if mc.Guild == "" {
		return &Payload{Text: "This only works inside a server."}, nil
	}
	g, err := d.info.Guild(ctx, mc.Guild)
	if err != nil {
		return nil, d.upstream("guild info", err)
	}

	p := &Payload{Text: fmt.Sprintf("📊 %s", g.Name)}
	if g.OwnerName != "" {
		p.Fields = append(p.Fields, Field{Name: "👑 Owner", Value: g.OwnerName, Inline: true})
	}
	if g.MemberCount > 0 {
		p.Fields = append(p.Fields, Field{Name: "👥 Members", Value: fmt.Sprintf("%d members", g.MemberCount), Inline: true})
	}
	if !g.CreatedAt.IsZero() {
		p.Fields = append(p.Fields, Field{Name: "📅 Created", Value: g.CreatedAt.Format("Jan 02, 2006"), Inline: true})
	}
	if g.RoleCount > 0 {
		p.Fields = append(p.Fields, Field{Name: "🎭 Roles", Value: fmt.Sprintf("%d", g.RoleCount), Inline: true})
	}
	if g.ChannelCount > 0 {
		p.Fields = append(p.Fields, Field{Name: "💬 Channels", Value: fmt.Sprintf("%d", g.ChannelCount), Inline: true})
	}
	p.Fields = append(p.Fields, Field{Name: "🆔 Server ID", Value: fmt.Sprintf("`%s`", g.ID)})
	return p, nil
}

func (d *Dispatcher) memberCount(ctx context.Context, mc MessageContext) (*Payload, error) {
	if mc.Guild == "" {
		return &Payload{Text: "This only works inside a server."}, nil
	}
	g, err := d.info.Guild(ctx, mc.Guild)
	if err != nil {
		return nil, d.upstream("guild info", err)
	}
	return &Payload{
		Text: "👥 Member Statistics",
		Fields: []Field{
			{Name: "🏠 Server", Value: g.Name},
			{Name: "📊 Total Members", Value: fmt.Sprintf("**%d** members", g.MemberCount)},
		},
	}, nil
}

func (d *Dispatcher) username(ctx context.Context, mc MessageContext) (*Payload, error) {
	m, err := d.info.Member(ctx, mc.Guild, mc.Author)
	if err != nil {
		return nil, d.upstream("member lookup", err)
	}
	return &Payload{Text: fmt.Sprintf("Your username is: **%s**", m.Username)}, nil
}

func (d *Dispatcher) nickname(ctx context.Context, mc MessageContext) (*Payload, error) {
	m, err := d.info.Member(ctx, mc.Guild, mc.Author)
	if err != nil {
		return nil, d.upstream("member lookup", err)
	}
	if mc.Guild == "" || m.Nickname == "" {
		return &Payload{Text: fmt.Sprintf("Your username is: **%s** (no nickname here)", m.Username)}, nil
	}
	return &Payload{Text: fmt.Sprintf("Your nickname in this server is: **%s**", m.Nickname)}, nil
}

func (d *Dispatcher) avatar(ctx context.Context, mc MessageContext) (*Payload, error) {
	m, err := d.info.Member(ctx, mc.Guild, mc.Author)
	if err != nil {
		return nil, d.upstream("member lookup", err)
	}
	if m.AvatarURL == "" {
		return &Payload{Text: "You don't seem to have an avatar set."}, nil
	}
	return &Payload{
		Text:     fmt.Sprintf("%s's Avatar", m.Username),
		ImageURL: m.AvatarURL,
	}, nil
}

// upstream wraps a provider failure, preserving timeout classification.
func (d *Dispatcher) upstream(op string, err error) error {
	d.logger.Error("info provider failed", "op", op, "error", err)
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s: %v", collab.ErrTimeout, op, err)
	}
	return fmt.Errorf("%w: %s: %v", collab.ErrUpstream, op, err)
}
