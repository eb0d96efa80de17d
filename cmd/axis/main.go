// ABOUTME: Entry point for the axis bot
// ABOUTME: Wires config, store, routing, collaborators, and the Matrix frontend

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"

	"github.com/LainPM/Locust/internal/actions"
	"github.com/LainPM/Locust/internal/config"
	"github.com/LainPM/Locust/internal/frontend"
	"github.com/LainPM/Locust/internal/gemini"
	"github.com/LainPM/Locust/internal/intent"
	"github.com/LainPM/Locust/internal/leveling"
	"github.com/LainPM/Locust/internal/reply"
	"github.com/LainPM/Locust/internal/router"
	"github.com/LainPM/Locust/internal/session"
	"github.com/LainPM/Locust/internal/store"
)

const banner = `
    ╭──────────────────────────────╮
    │                              │
    │   ┏━┓╻ ╻╻┏━┓                 │
    │   ┣━┫┏╋┛┃┗━┓                 │
    │   ╹ ╹╹ ╹╹┗━┛                 │
    │                              │
    │   roblox development helper  │
    │                              │
    ╰──────────────────────────────╯
`

// getConfigPath returns the path to the axis config file.
// Priority: AXIS_CONFIG env var > XDG_CONFIG_HOME/axis/config.yaml > ~/.config/axis/config.yaml
func getConfigPath() string {
	if envPath := os.Getenv("AXIS_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "axis", "config.yaml")
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Print banner
	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	configPath := getConfigPath()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config from %s: %w", configPath, err)
	}

	logger := setupLogger(cfg.Logging.Level)

	// Print startup info
	green := color.New(color.FgGreen)
	green.Print("    ▶ ")
	fmt.Printf("Config:     %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("Homeserver: %s\n", cfg.Matrix.Homeserver)
	green.Print("    ▶ ")
	fmt.Printf("User:       %s\n", cfg.Matrix.UserID)
	green.Print("    ▶ ")
	fmt.Printf("Database:   %s\n", cfg.Database.Path)
	fmt.Println()

	// Ensure the database directory exists
	if dir := filepath.Dir(cfg.Database.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer db.Close()

	rules := intent.DefaultRules()
	if cfg.Intents.RulesPath != "" {
		rules, err = intent.LoadRules(cfg.Intents.RulesPath)
		if err != nil {
			return fmt.Errorf("loading intent rules from %s: %w", cfg.Intents.RulesPath, err)
		}
		logger.Info("loaded intent rule overrides", "path", cfg.Intents.RulesPath, "rules", len(rules))
	}

	sessions := session.NewStore()
	rt := router.New(sessions, intent.NewClassifier(rules), cfg.Bot.Name, cfg.Bot.Farewell, logger)

	responder := gemini.NewClient(cfg.Gemini.APIKey, cfg.Bot.Name, logger,
		gemini.WithModel(cfg.Gemini.Model),
		gemini.WithTimeout(cfg.Gemini.Timeout),
	)

	var leveler reply.Leveler
	if cfg.Leveling.Enabled {
		leveler = leveling.New(db, leveling.Config{
			Cooldown: cfg.Leveling.Cooldown,
			MinXP:    cfg.Leveling.MinXP,
			MaxXP:    cfg.Leveling.MaxXP,
		}, logger)
	}

	// The frontend supplies the info provider for structured actions, so
	// build it first with a placeholder handler slot filled below.
	svcHolder := &handlerHolder{}
	fe, err := frontend.New(frontend.Options{
		Homeserver:   cfg.Matrix.Homeserver,
		UserID:       cfg.Matrix.UserID,
		AccessToken:  cfg.Matrix.AccessToken,
		AllowedRooms: cfg.Matrix.AllowedRooms,
	}, svcHolder, logger)
	if err != nil {
		return fmt.Errorf("creating frontend: %w", err)
	}

	dispatcher := actions.NewDispatcher(fe.Info(), logger)
	svcHolder.svc = reply.New(rt, dispatcher, responder, db, leveler, cfg.Leveling.Announce, cfg.Gemini.Timeout, logger)

	// Setup graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("starting axis", "bot_name", cfg.Bot.Name)
	return fe.Run(ctx)
}

// handlerHolder breaks the frontend/reply construction cycle: the frontend
// needs a handler, and the reply service needs the frontend's info provider.
type handlerHolder struct {
	svc *reply.Service
}

func (h *handlerHolder) Handle(ctx context.Context, msg router.Message, typing reply.TypingFunc) []*reply.Reply {
	if h.svc == nil {
		return nil
	}
	return h.svc.Handle(ctx, msg, typing)
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
