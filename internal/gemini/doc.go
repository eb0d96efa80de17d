// Package gemini is the free-text responder collaborator: a thin HTTP
// client for the Gemini generateContent API with a bounded per-call
// timeout.
package gemini
