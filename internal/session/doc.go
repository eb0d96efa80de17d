// Package session tracks which user is the bot's active conversational
// partner in each channel. State is in-memory only and lives for the
// process lifetime.
package session
