// ABOUTME: SQLite implementation of the Store interface using modernc.org/sqlite
// ABOUTME: Levels and transcripts with automatic schema creation

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements the Store interface using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite store at the given path.
// The schema is automatically created if it doesn't exist.
// Parent directories are created if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("SQLite store initialized", "path", path)
	return s, nil
}

// createSchema creates the database tables if they don't exist.
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS levels (
			user_id      TEXT NOT NULL,
			guild_id     TEXT NOT NULL,
			xp           INTEGER NOT NULL DEFAULT 0,
			level        INTEGER NOT NULL DEFAULT 0,
			messages     INTEGER NOT NULL DEFAULT 0,
			last_message DATETIME NOT NULL,
			PRIMARY KEY (user_id, guild_id)
		);

		CREATE INDEX IF NOT EXISTS idx_levels_guild_xp
			ON levels(guild_id, xp DESC);

		CREATE TABLE IF NOT EXISTS transcripts (
			id         TEXT PRIMARY KEY,
			channel_id TEXT NOT NULL,
			author     TEXT NOT NULL,
			role       TEXT NOT NULL,
			content    TEXT NOT NULL,
			created_at DATETIME NOT NULL,

			CHECK (role IN ('user', 'assistant'))
		);

		CREATE INDEX IF NOT EXISTS idx_transcripts_channel_created
			ON transcripts(channel_id, created_at);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("executing schema: %w", err)
	}
	return nil
}

// GetLevel returns a user's level record, or ErrNotFound.
func (s *SQLiteStore) GetLevel(ctx context.Context, userID, guildID string) (*Level, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT user_id, guild_id, xp, level, messages, last_message
		FROM levels WHERE user_id = ? AND guild_id = ?`,
		userID, guildID)

	var lvl Level
	err := row.Scan(&lvl.UserID, &lvl.GuildID, &lvl.XP, &lvl.Level, &lvl.Messages, &lvl.LastMessage)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying level: %w", err)
	}
	return &lvl, nil
}

// UpsertLevel creates or replaces a level record.
func (s *SQLiteStore) UpsertLevel(ctx context.Context, lvl *Level) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO levels (user_id, guild_id, xp, level, messages, last_message)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, guild_id) DO UPDATE SET
			xp = excluded.xp,
			level = excluded.level,
			messages = excluded.messages,
			last_message = excluded.last_message`,
		lvl.UserID, lvl.GuildID, lvl.XP, lvl.Level, lvl.Messages, lvl.LastMessage)
	if err != nil {
		return fmt.Errorf("upserting level: %w", err)
	}
	return nil
}

// TopLevels returns a guild's records ordered by XP descending.
func (s *SQLiteStore) TopLevels(ctx context.Context, guildID string, limit int) ([]*Level, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, guild_id, xp, level, messages, last_message
		FROM levels WHERE guild_id = ?
		ORDER BY xp DESC LIMIT ?`,
		guildID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying top levels: %w", err)
	}
	defer rows.Close()

	var out []*Level
	for rows.Next() {
		var lvl Level
		if err := rows.Scan(&lvl.UserID, &lvl.GuildID, &lvl.XP, &lvl.Level, &lvl.Messages, &lvl.LastMessage); err != nil {
			return nil, fmt.Errorf("scanning level: %w", err)
		}
		out = append(out, &lvl)
	}
	return out, rows.Err()
}

// SaveTranscript appends one transcript line.
func (s *SQLiteStore) SaveTranscript(ctx context.Context, tr *Transcript) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transcripts (id, channel_id, author, role, content, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		tr.ID, tr.ChannelID, tr.Author, tr.Role, tr.Content, tr.CreatedAt)
	if err != nil {
		return fmt.Errorf("saving transcript: %w", err)
	}
	return nil
}

// RecentTranscripts returns a channel's latest lines, oldest first.
func (s *SQLiteStore) RecentTranscripts(ctx context.Context, channelID string, limit int) ([]*Transcript, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, channel_id, author, role, content, created_at
		FROM (
			SELECT id, channel_id, author, role, content, created_at
			FROM transcripts WHERE channel_id = ?
			ORDER BY created_at DESC LIMIT ?
		) ORDER BY created_at ASC`,
		channelID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying transcripts: %w", err)
	}
	defer rows.Close()

	var out []*Transcript
	for rows.Next() {
		var tr Transcript
		if err := rows.Scan(&tr.ID, &tr.ChannelID, &tr.Author, &tr.Role, &tr.Content, &tr.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning transcript: %w", err)
		}
		out = append(out, &tr)
	}
	return out, rows.Err()
}

// Close releases the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
