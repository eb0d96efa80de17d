// ABOUTME: Store interface and data types for Locust persistence
// ABOUTME: Levels and conversation transcripts; session state stays in memory

package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// Level is one user's XP record in one guild.
type Level struct {
	UserID      string
	GuildID     string
	XP          int
	Level       int
	Messages    int
	LastMessage time.Time
}

// Transcript roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Transcript is one recorded free-text exchange line.
type Transcript struct {
	ID        string
	ChannelID string
	Author    string
	Role      string // "user" or "assistant"
	Content   string
	CreatedAt time.Time
}

// Store is the persistence boundary. The active-conversation map is
// deliberately NOT here: it is in-memory only and dies with the process.
type Store interface {
	// GetLevel returns a user's level record, or ErrNotFound.
	GetLevel(ctx context.Context, userID, guildID string) (*Level, error)
	// UpsertLevel creates or replaces a level record.
	UpsertLevel(ctx context.Context, lvl *Level) error
	// TopLevels returns a guild's records ordered by XP descending.
	TopLevels(ctx context.Context, guildID string, limit int) ([]*Level, error)

	// SaveTranscript appends one transcript line.
	SaveTranscript(ctx context.Context, tr *Transcript) error
	// RecentTranscripts returns a channel's latest lines, oldest first.
	RecentTranscripts(ctx context.Context, channelID string, limit int) ([]*Transcript, error)

	// Close releases the underlying database.
	Close() error
}
