// ABOUTME: Tests for the reply service
// ABOUTME: Covers fallbacks, truncation, transcripts, typing, level-ups

package reply

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LainPM/Locust/internal/actions"
	"github.com/LainPM/Locust/internal/collab"
	"github.com/LainPM/Locust/internal/intent"
	"github.com/LainPM/Locust/internal/leveling"
	"github.com/LainPM/Locust/internal/router"
	"github.com/LainPM/Locust/internal/session"
	"github.com/LainPM/Locust/internal/store"
)

// mockDispatcher returns a fixed payload or error.
type mockDispatcher struct {
	payload *actions.Payload
	err     error
	gotIn   intent.Intent
}

func (m *mockDispatcher) Execute(ctx context.Context, in intent.Intent, mc actions.MessageContext) (*actions.Payload, error) {
	m.gotIn = in
	if m.err != nil {
		return nil, m.err
	}
	return m.payload, nil
}

// mockResponder returns fixed text or an error.
type mockResponder struct {
	text      string
	err       error
	gotPrompt string
}

func (m *mockResponder) Generate(ctx context.Context, prompt, askerID, askerName string) (string, error) {
	m.gotPrompt = prompt
	if m.err != nil {
		return "", m.err
	}
	return m.text, nil
}

// mockTranscripts records saved lines.
type mockTranscripts struct {
	saved []*store.Transcript
}

func (m *mockTranscripts) SaveTranscript(ctx context.Context, tr *store.Transcript) error {
	m.saved = append(m.saved, tr)
	return nil
}

// mockLeveler returns a fixed result.
type mockLeveler struct {
	res    *leveling.Result
	called bool
}

func (m *mockLeveler) Award(ctx context.Context, userID, guildID string) (*leveling.Result, error) {
	m.called = true
	return m.res, nil
}

func newTestService(dispatcher Dispatcher, responder Responder, transcripts TranscriptStore, leveler Leveler) (*Service, *session.Store) {
	sessions := session.NewStore()
	rt := router.New(sessions, intent.NewClassifier(intent.DefaultRules()), "axis", "", nil)
	return New(rt, dispatcher, responder, transcripts, leveler, true, time.Second, nil), sessions
}

func userMsg(text string) router.Message {
	return router.Message{Channel: "C1", Guild: "G1", Author: "U1", AuthorName: "builderman", Text: text}
}

func TestHandle_IgnoredMessageYieldsNothing(t *testing.T) {
	svc, _ := newTestService(&mockDispatcher{}, &mockResponder{}, nil, nil)

	replies := svc.Handle(context.Background(), userMsg("random chatter"), nil)
	assert.Empty(t, replies)
}

func TestHandle_FreeTextFlow(t *testing.T) {
	responder := &mockResponder{text: "Hi builderman! How can I help?"}
	transcripts := &mockTranscripts{}
	svc, sessions := newTestService(&mockDispatcher{}, responder, transcripts, nil)

	var typingOn, typingOff bool
	typing := func(on bool) {
		if on {
			typingOn = true
		} else {
			typingOff = true
		}
	}

	replies := svc.Handle(context.Background(), userMsg("hey axis, what's a part?"), typing)
	require.Len(t, replies, 1)
	assert.Equal(t, "Hi builderman! How can I help?", replies[0].Text)
	assert.NotEmpty(t, replies[0].ID)
	assert.Equal(t, "hey axis, what's a part?", responder.gotPrompt)

	// Session committed, typing toggled both ways, both lines recorded.
	assert.True(t, sessions.IsActiveUser("C1", "U1"))
	assert.True(t, typingOn)
	assert.True(t, typingOff)
	require.Len(t, transcripts.saved, 2)
	assert.Equal(t, store.RoleUser, transcripts.saved[0].Role)
	assert.Equal(t, store.RoleAssistant, transcripts.saved[1].Role)
	assert.Equal(t, "Hi builderman! How can I help?", transcripts.saved[1].Content)
}

func TestHandle_StructuredFlow(t *testing.T) {
	dispatcher := &mockDispatcher{payload: &actions.Payload{
		Text:   "🏓 Pong!",
		Fields: []actions.Field{{Name: "Latency", Value: "42ms", Inline: true}},
	}}
	svc, sessions := newTestService(dispatcher, &mockResponder{}, nil, nil)
	sessions.SetActiveUser("C1", "U1")

	replies := svc.Handle(context.Background(), userMsg("ping"), nil)
	require.Len(t, replies, 1)
	assert.Equal(t, "🏓 Pong!", replies[0].Text)
	require.Len(t, replies[0].Fields, 1)
	assert.Equal(t, intent.CheckLatency, dispatcher.gotIn)

	// Structured intents never mutate the session.
	assert.True(t, sessions.IsActiveUser("C1", "U1"))
}

func TestHandle_EndConversation(t *testing.T) {
	svc, sessions := newTestService(&mockDispatcher{}, &mockResponder{}, nil, nil)
	sessions.SetActiveUser("C1", "U1")

	replies := svc.Handle(context.Background(), userMsg("bye"), nil)
	require.Len(t, replies, 1)
	assert.Equal(t, router.DefaultFarewell, replies[0].Text)
	assert.Equal(t, 0, sessions.Len())
}

func TestHandle_TimeoutFallback(t *testing.T) {
	responder := &mockResponder{err: collab.ErrTimeout}
	svc, sessions := newTestService(&mockDispatcher{}, responder, nil, nil)

	replies := svc.Handle(context.Background(), userMsg("hey axis"), nil)
	require.Len(t, replies, 1)
	assert.Equal(t, fallbackTimeout, replies[0].Text)

	// The session transition was committed before the call failed and is
	// deliberately not rolled back.
	assert.True(t, sessions.IsActiveUser("C1", "U1"))
}

func TestHandle_UpstreamFallback(t *testing.T) {
	responder := &mockResponder{err: collab.ErrUpstream}
	svc, _ := newTestService(&mockDispatcher{}, responder, nil, nil)

	replies := svc.Handle(context.Background(), userMsg("hey axis"), nil)
	require.Len(t, replies, 1)
	assert.Equal(t, fallbackUpstream, replies[0].Text)
}

func TestHandle_GenericFallback(t *testing.T) {
	responder := &mockResponder{err: errors.New("something odd")}
	svc, _ := newTestService(&mockDispatcher{}, responder, nil, nil)

	replies := svc.Handle(context.Background(), userMsg("hey axis"), nil)
	require.Len(t, replies, 1)
	assert.Equal(t, fallbackGeneric, replies[0].Text)
}

func TestHandle_StructuredFallback(t *testing.T) {
	dispatcher := &mockDispatcher{err: collab.ErrUpstream}
	svc, _ := newTestService(dispatcher, &mockResponder{}, nil, nil)

	replies := svc.Handle(context.Background(), userMsg("server info"), nil)
	require.Len(t, replies, 1)
	assert.Equal(t, fallbackUpstream, replies[0].Text)
}

func TestHandle_FailedGenerationSkipsTranscript(t *testing.T) {
	transcripts := &mockTranscripts{}
	responder := &mockResponder{err: collab.ErrTimeout}
	svc, _ := newTestService(&mockDispatcher{}, responder, transcripts, nil)

	svc.Handle(context.Background(), userMsg("hey axis"), nil)
	assert.Empty(t, transcripts.saved)
}

func TestHandle_TruncatesLongReplies(t *testing.T) {
	responder := &mockResponder{text: strings.Repeat("x", 2500)}
	svc, _ := newTestService(&mockDispatcher{}, responder, nil, nil)

	replies := svc.Handle(context.Background(), userMsg("hey axis"), nil)
	require.Len(t, replies, 1)
	assert.Len(t, []rune(replies[0].Text), MaxReplyLength)
	assert.True(t, strings.HasSuffix(replies[0].Text, "..."))
}

func TestHandle_LevelUpAnnouncement(t *testing.T) {
	leveler := &mockLeveler{res: &leveling.Result{XP: 120, Level: 1, LeveledUp: true}}
	svc, _ := newTestService(&mockDispatcher{}, &mockResponder{text: "hello!"}, nil, leveler)

	replies := svc.Handle(context.Background(), userMsg("hey axis"), nil)
	require.Len(t, replies, 2)
	assert.Equal(t, "🎉 builderman just reached level 1!", replies[1].Text)
}

func TestHandle_AnnouncementsDisabled(t *testing.T) {
	leveler := &mockLeveler{res: &leveling.Result{XP: 120, Level: 1, LeveledUp: true}}
	sessions := session.NewStore()
	rt := router.New(sessions, intent.NewClassifier(intent.DefaultRules()), "axis", "", nil)
	svc := New(rt, &mockDispatcher{}, &mockResponder{text: "hello!"}, nil, leveler, false, time.Second, nil)

	// XP still accrues, but the level-up stays silent.
	replies := svc.Handle(context.Background(), userMsg("hey axis"), nil)
	require.Len(t, replies, 1)
	assert.Equal(t, "hello!", replies[0].Text)
	assert.True(t, leveler.called)
}

func TestHandle_XPAwardedEvenWhenIgnored(t *testing.T) {
	leveler := &mockLeveler{res: &leveling.Result{XP: 20}}
	svc, _ := newTestService(&mockDispatcher{}, &mockResponder{}, nil, leveler)

	replies := svc.Handle(context.Background(), userMsg("chatting with friends"), nil)
	assert.Empty(t, replies)
	assert.True(t, leveler.called)
}

func TestHandle_BotsEarnNothing(t *testing.T) {
	leveler := &mockLeveler{res: &leveling.Result{XP: 20, LeveledUp: true, Level: 1}}
	svc, _ := newTestService(&mockDispatcher{}, &mockResponder{}, nil, leveler)

	msg := userMsg("hey axis")
	msg.AuthorIsBot = true
	replies := svc.Handle(context.Background(), msg, nil)
	assert.Empty(t, replies)
	assert.False(t, leveler.called)
}

func TestHandle_NoXPOutsideGuilds(t *testing.T) {
	leveler := &mockLeveler{}
	svc, _ := newTestService(&mockDispatcher{}, &mockResponder{text: "hi"}, nil, leveler)

	msg := userMsg("hey axis")
	msg.Guild = ""
	svc.Handle(context.Background(), msg, nil)
	assert.False(t, leveler.called)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 2000))

	exact := strings.Repeat("a", 2000)
	assert.Equal(t, exact, Truncate(exact, 2000))

	long := strings.Repeat("a", 2001)
	got := Truncate(long, 2000)
	assert.Len(t, []rune(got), 2000)
	assert.Equal(t, strings.Repeat("a", 1997)+"...", got)

	// Multi-byte text is cut on rune boundaries.
	emoji := strings.Repeat("🏓", 1500)
	got = Truncate(emoji, 2000)
	assert.Len(t, []rune(got), 2000)
	assert.True(t, strings.HasSuffix(got, "..."))
}
