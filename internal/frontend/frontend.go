// ABOUTME: Matrix frontend for the Locust bot
// ABOUTME: Handles the sync loop and routes room messages to the reply service

package frontend

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"maunium.net/go/mautrix"
	"maunium.net/go/mautrix/event"
	"maunium.net/go/mautrix/id"

	"github.com/LainPM/Locust/internal/reply"
	"github.com/LainPM/Locust/internal/router"
)

// Handler processes one inbound message and returns the replies to send.
type Handler interface {
	Handle(ctx context.Context, msg router.Message, typing reply.TypingFunc) []*reply.Reply
}

// Options configures the Matrix connection.
type Options struct {
	Homeserver  string
	UserID      string
	AccessToken string
	// AllowedRooms limits which rooms the bot reacts in. Empty allows all.
	AllowedRooms []string
}

// Frontend bridges a Matrix homeserver to the reply service.
type Frontend struct {
	opts    Options
	matrix  *mautrix.Client
	handler Handler
	logger  *slog.Logger

	// In-flight count per room, so overlapping messages share one
	// typing indicator instead of fighting over it
	typingMu    sync.Mutex
	typingCount map[string]int

	// ctx is the parent context for message processing goroutines
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a Matrix frontend.
func New(opts Options, handler Handler, logger *slog.Logger) (*Frontend, error) {
	client, err := mautrix.NewClient(opts.Homeserver, id.UserID(opts.UserID), opts.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("creating matrix client: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Frontend{
		opts:        opts,
		matrix:      client,
		handler:     handler,
		logger:      logger.With("component", "frontend"),
		typingCount: make(map[string]int),
	}, nil
}

// Info returns a provider for guild/member lookups backed by this
// frontend's Matrix client.
func (f *Frontend) Info() *Info {
	return &Info{
		matrix:     f.matrix,
		homeserver: f.opts.Homeserver,
	}
}

// Run starts the sync loop and blocks until the context is cancelled.
func (f *Frontend) Run(ctx context.Context) error {
	f.logger.Info("starting matrix frontend",
		"homeserver", f.opts.Homeserver,
		"user_id", f.opts.UserID,
	)

	// Store context for message processing goroutines
	f.ctx, f.cancel = context.WithCancel(ctx)
	defer f.cancel()

	syncer, ok := f.matrix.Syncer.(*mautrix.DefaultSyncer)
	if !ok {
		return fmt.Errorf("unexpected syncer type: %T", f.matrix.Syncer)
	}
	syncer.OnEventType(event.EventMessage, f.handleMessageEvent)

	f.logger.Info("connecting to matrix homeserver")

	syncErr := make(chan error, 1)
	go func() {
		syncErr <- f.matrix.SyncWithContext(f.ctx)
	}()

	f.logger.Info("matrix frontend running")

	select {
	case <-ctx.Done():
		f.logger.Info("shutting down matrix frontend")
		f.cancel()
		return nil
	case err := <-syncErr:
		return fmt.Errorf("matrix sync failed: %w", err)
	}
}

// handleMessageEvent converts a sync event into an inbound message.
func (f *Frontend) handleMessageEvent(ctx context.Context, evt *event.Event) {
	// Ignore our own messages
	if evt.Sender == id.UserID(f.opts.UserID) {
		return
	}

	content, ok := evt.Content.Parsed.(*event.MessageEventContent)
	if !ok {
		return
	}

	// Text from humans, notices from other bots. Everything else is noise.
	if content.MsgType != event.MsgText && content.MsgType != event.MsgNotice {
		return
	}

	roomID := evt.RoomID.String()
	if !f.isRoomAllowed(roomID) {
		f.logger.Debug("ignoring message from non-allowed room", "room", roomID)
		return
	}
	if content.Body == "" {
		return
	}

	msg := router.Message{
		Channel:    roomID,
		Guild:      roomID,
		Author:     evt.Sender.String(),
		AuthorName: evt.Sender.Localpart(),
		// Matrix convention: automated senders use m.notice
		AuthorIsBot: content.MsgType == event.MsgNotice,
		Text:        content.Body,
	}

	f.logger.Info("received message",
		"room", roomID,
		"sender", msg.Author,
		"content", truncate(msg.Text, 50),
	)

	// Process in a goroutine so the sync loop is never blocked. Every
	// message is delivered, even while an earlier one in the same room is
	// still in flight: the core resolves those races itself (stop phrases
	// and takeovers must land mid-generation).
	go f.processMessage(msg, evt.RoomID)
}

// processMessage runs the handler for one message and sends its replies.
func (f *Frontend) processMessage(msg router.Message, roomID id.RoomID) {
	typing := func(on bool) {
		f.trackTyping(roomID, on)
	}

	replies := f.handler.Handle(f.ctx, msg, typing)
	for _, r := range replies {
		f.sendReply(roomID, r)
	}
}

// trackTyping refcounts typing per room: the indicator turns on with the
// first in-flight generation and off with the last.
func (f *Frontend) trackTyping(roomID id.RoomID, on bool) {
	room := roomID.String()

	f.typingMu.Lock()
	if on {
		f.typingCount[room]++
		if f.typingCount[room] > 1 {
			f.typingMu.Unlock()
			return
		}
	} else {
		f.typingCount[room]--
		if f.typingCount[room] > 0 {
			f.typingMu.Unlock()
			return
		}
		delete(f.typingCount, room)
	}
	f.typingMu.Unlock()

	f.setTyping(roomID, on)
}

// isRoomAllowed checks the room against the configured filter.
func (f *Frontend) isRoomAllowed(roomID string) bool {
	if len(f.opts.AllowedRooms) == 0 {
		return true
	}
	for _, allowed := range f.opts.AllowedRooms {
		if allowed == roomID {
			return true
		}
	}
	return false
}

// typingTimeout is the duration the typing indicator shows (30 seconds).
const typingTimeout = 30 * time.Second

// networkTimeout is the timeout for Matrix API calls.
const networkTimeout = 10 * time.Second

// setTyping sends a typing indicator to the room.
func (f *Frontend) setTyping(roomID id.RoomID, typing bool) {
	var timeout time.Duration
	if typing {
		timeout = typingTimeout
	}
	// Use a timeout context to avoid hanging during shutdown or network issues
	ctx, cancel := context.WithTimeout(context.Background(), networkTimeout)
	defer cancel()
	_, err := f.matrix.UserTyping(ctx, roomID, typing, timeout)
	if err != nil {
		f.logger.Debug("failed to set typing indicator", "room", roomID.String(), "error", err)
	}
}

// sendReply renders a reply and sends it as an HTML-formatted notice.
func (f *Frontend) sendReply(roomID id.RoomID, r *reply.Reply) {
	body, html := renderReply(r)
	if body == "" {
		return
	}

	content := &event.MessageEventContent{
		MsgType: event.MsgNotice,
		Body:    body,
	}
	if html != "" {
		content.Format = event.FormatHTML
		content.FormattedBody = html
	}

	// Use a longer timeout for sending messages (they can be large)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	_, err := f.matrix.SendMessageEvent(ctx, roomID, event.EventMessage, content)
	if err != nil {
		f.logger.Error("failed to send message", "room", roomID.String(), "error", err)
	}
}

// truncate shortens a string to the given max rune count, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
