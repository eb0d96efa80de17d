// ABOUTME: Router turns an inbound message into a single routing decision
// ABOUTME: Combines intent classification with conversation continuity

package router

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/LainPM/Locust/internal/intent"
	"github.com/LainPM/Locust/internal/session"
)

// Message is one inbound chat message as seen by the routing core.
// The router reads it and never mutates it.
type Message struct {
	Channel     string // channel/room the message arrived in
	Guild       string // containing guild/server, empty for DMs
	Author      string // author user ID
	AuthorName  string // display name, for prompts and replies
	AuthorIsBot bool   // automated authors are never routed
	Text        string
}

// Kind discriminates routing decisions.
type Kind string

const (
	KindIgnore           Kind = "ignore"
	KindEndConversation  Kind = "end_conversation"
	KindStructuredAction Kind = "structured_action"
	KindFreeText         Kind = "free_text"
)

// Decision is the single outcome of routing one message. Exactly one
// decision is produced per message; any session mutation has already been
// applied when the caller sees it.
type Decision struct {
	Kind Kind

	// Intent is set for KindStructuredAction.
	Intent intent.Intent

	// Farewell is set for KindEndConversation.
	Farewell string

	// Prompt and Asker are set for KindFreeText.
	Prompt string
	Asker  string
}

// DefaultFarewell is sent when the active partner ends the conversation.
const DefaultFarewell = "Alright! Feel free to reach out anytime you need help with Roblox development! 👋"

// Router applies the routing policy. It owns the only mutable state in the
// core (the session store); the classifier and trigger set are immutable.
type Router struct {
	sessions   *session.Store
	classifier *intent.Classifier
	triggers   []string
	farewell   string
	logger     *slog.Logger
}

// New creates a Router. botName seeds the mention trigger set ("hey
// <name>", "@<name>", ...). An empty farewell falls back to
// DefaultFarewell.
func New(sessions *session.Store, classifier *intent.Classifier, botName, farewell string, logger *slog.Logger) *Router {
	if farewell == "" {
		farewell = DefaultFarewell
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		sessions:   sessions,
		classifier: classifier,
		triggers:   mentionTriggers(botName),
		farewell:   farewell,
		logger:     logger.With("component", "router"),
	}
}

// mentionTriggers builds the bot-name trigger phrases.
func mentionTriggers(botName string) []string {
	name := strings.ToLower(botName)
	return []string{
		"hey " + name,
		"hi " + name,
		"hello " + name,
		"yo " + name,
		name + " help",
		"@" + name,
	}
}

// Route produces the routing decision for one message, applying any
// session transition before returning. It cannot fail: classification and
// session operations are total.
func (r *Router) Route(msg Message) Decision {
	// Automated authors are invisible to the core: no classification, no
	// session access.
	if msg.AuthorIsBot {
		return Decision{Kind: KindIgnore}
	}

	detected, matched := r.classifier.Classify(msg.Text)

	// 1. Stop check. Only the active partner can end the conversation.
	if matched && detected == intent.StopConversation && r.sessions.IsActiveUser(msg.Channel, msg.Author) {
		r.sessions.Remove(msg.Channel)
		r.logger.Info("conversation ended",
			"channel", msg.Channel,
			"user", msg.Author)
		return Decision{Kind: KindEndConversation, Farewell: r.farewell}
	}

	// 2. Structured intent check. Takes priority over continuity and never
	// touches session state.
	if matched && detected.IsStructured() {
		r.logger.Debug("structured intent matched",
			"channel", msg.Channel,
			"user", msg.Author,
			"intent", string(detected))
		return Decision{Kind: KindStructuredAction, Intent: detected}
	}

	// 3. Continuity/trigger check.
	continuing := r.sessions.IsActiveUser(msg.Channel, msg.Author)
	triggered := (matched && detected == intent.StartConversation) || r.mentionsBot(msg.Text)

	if !continuing && !triggered {
		return Decision{Kind: KindIgnore}
	}

	if !continuing {
		// New session, displacing any other user's session in the channel.
		r.sessions.SetActiveUser(msg.Channel, msg.Author)
		r.logger.Info("conversation started",
			"channel", msg.Channel,
			"user", msg.Author)
	}

	return Decision{
		Kind:   KindFreeText,
		Prompt: msg.Text,
		Asker:  msg.Author,
	}
}

// mentionsBot reports whether the text contains a bot-name trigger phrase.
func (r *Router) mentionsBot(text string) bool {
	lowered := strings.ToLower(text)
	for _, trigger := range r.triggers {
		if strings.Contains(lowered, trigger) {
			return true
		}
	}
	return false
}

// String implements fmt.Stringer for log readability.
func (d Decision) String() string {
	switch d.Kind {
	case KindStructuredAction:
		return fmt.Sprintf("%s(%s)", d.Kind, d.Intent)
	case KindFreeText:
		return fmt.Sprintf("%s(asker=%s)", d.Kind, d.Asker)
	default:
		return string(d.Kind)
	}
}
