// Package router decides, for every inbound message, whether the bot
// responds and how: end the conversation, run a structured action,
// generate a free-text reply, or stay silent.
//
// # Routing policy
//
// Checks run in fixed priority order for every message from a
// non-automated author:
//
//  1. Stop check: the active partner issuing a stop phrase ends the
//     conversation.
//  2. Structured intent check: a structured query always short-circuits,
//     even inside an active conversation, and never touches session state.
//  3. Continuity/trigger check: the active partner continues, or a start
//     trigger (intent or bot-name mention) begins a new session,
//     displacing any previous partner in the channel.
//
// Session mutations are applied by Route before the decision is returned;
// callers only execute the decision.
package router
