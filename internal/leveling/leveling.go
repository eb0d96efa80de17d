// ABOUTME: Leveling service awards XP per message with a cooldown
// ABOUTME: Level is floor(sqrt(xp/100)); level-ups surface an announcement

// Package leveling awards experience points for guild chat activity and
// tracks user levels. Award decisions (cooldown) are in-memory; the XP
// totals themselves persist via the store.
package leveling

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/LainPM/Locust/internal/store"
)

// Config tunes XP awards.
type Config struct {
	Cooldown time.Duration // minimum gap between awards per (user, guild)
	MinXP    int           // inclusive lower bound per award
	MaxXP    int           // inclusive upper bound per award
}

// DefaultConfig matches the long-standing defaults: 15-25 XP per message,
// at most once per minute.
func DefaultConfig() Config {
	return Config{
		Cooldown: time.Minute,
		MinXP:    15,
		MaxXP:    25,
	}
}

// LevelStore is what the service needs from persistence.
type LevelStore interface {
	GetLevel(ctx context.Context, userID, guildID string) (*store.Level, error)
	UpsertLevel(ctx context.Context, lvl *store.Level) error
}

// Result describes one award.
type Result struct {
	XP        int  // new total
	Level     int  // new level
	LeveledUp bool // true when the award crossed a level boundary
}

// Service awards XP and computes levels.
type Service struct {
	store  LevelStore
	cfg    Config
	logger *slog.Logger

	mu        sync.Mutex
	lastAward map[string]time.Time // "user/guild" -> last award time
	now       func() time.Time     // swapped in tests
	roll      func(min, max int) int
}

// New creates a leveling service.
func New(levelStore LevelStore, cfg Config, logger *slog.Logger) *Service {
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = DefaultConfig().Cooldown
	}
	if cfg.MinXP <= 0 || cfg.MaxXP < cfg.MinXP {
		def := DefaultConfig()
		cfg.MinXP, cfg.MaxXP = def.MinXP, def.MaxXP
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:     levelStore,
		cfg:       cfg,
		logger:    logger.With("component", "leveling"),
		lastAward: make(map[string]time.Time),
		now:       time.Now,
		roll: func(min, max int) int {
			return min + rand.IntN(max-min+1)
		},
	}
}

// LevelForXP converts a total XP amount to a level.
func LevelForXP(xp int) int {
	if xp <= 0 {
		return 0
	}
	return int(math.Floor(math.Sqrt(float64(xp) / 100)))
}

// XPForLevel returns the total XP needed to reach a level.
func XPForLevel(level int) int {
	return level * level * 100
}

// Award grants XP for one message if the (user, guild) pair is off
// cooldown. A nil Result means the message was on cooldown and nothing
// changed.
func (s *Service) Award(ctx context.Context, userID, guildID string) (*Result, error) {
	if !s.takeCooldown(userID, guildID) {
		return nil, nil
	}

	gained := s.roll(s.cfg.MinXP, s.cfg.MaxXP)

	lvl, err := s.store.GetLevel(ctx, userID, guildID)
	if errors.Is(err, store.ErrNotFound) {
		lvl = &store.Level{UserID: userID, GuildID: guildID}
	} else if err != nil {
		return nil, fmt.Errorf("loading level: %w", err)
	}

	prevLevel := lvl.Level
	lvl.XP += gained
	lvl.Level = LevelForXP(lvl.XP)
	lvl.Messages++
	lvl.LastMessage = s.now()

	if err := s.store.UpsertLevel(ctx, lvl); err != nil {
		return nil, fmt.Errorf("saving level: %w", err)
	}

	res := &Result{
		XP:        lvl.XP,
		Level:     lvl.Level,
		LeveledUp: lvl.Level > prevLevel,
	}
	if res.LeveledUp {
		s.logger.Info("level up",
			"user", userID,
			"guild", guildID,
			"level", res.Level,
			"xp", res.XP)
	}
	return res, nil
}

// takeCooldown atomically checks and refreshes the award cooldown.
func (s *Service) takeCooldown(userID, guildID string) bool {
	key := userID + "/" + guildID
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	if last, ok := s.lastAward[key]; ok && now.Sub(last) < s.cfg.Cooldown {
		return false
	}
	s.lastAward[key] = now
	return true
}
