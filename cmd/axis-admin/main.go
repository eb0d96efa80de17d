// ABOUTME: Admin CLI for the axis bot
// ABOUTME: Inspects the leaderboard and conversation transcripts in the store

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"

	"github.com/LainPM/Locust/internal/leveling"
	"github.com/LainPM/Locust/internal/store"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: axis-admin <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  leaderboard   Show the XP leaderboard for a guild")
		fmt.Println("  transcripts   Show recent conversation transcripts for a channel")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "leaderboard":
		err = runLeaderboard(ctx, os.Args[2:])
	case "transcripts":
		err = runTranscripts(ctx, os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runLeaderboard(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("leaderboard", flag.ExitOnError)
	dbPath := fs.String("db", "data/locust.db", "path to the store database")
	guild := fs.String("guild", "", "guild/room ID to rank")
	limit := fs.Int("limit", 10, "number of entries to show")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *guild == "" {
		return fmt.Errorf("-guild is required")
	}

	db, err := store.NewSQLiteStore(*dbPath)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer db.Close()

	levels, err := db.TopLevels(ctx, *guild, *limit)
	if err != nil {
		return fmt.Errorf("reading leaderboard: %w", err)
	}
	if len(levels) == 0 {
		fmt.Println("No XP recorded for this guild yet.")
		return nil
	}

	bold := color.New(color.Bold)
	bold.Printf("%-4s %-40s %-8s %-8s %s\n", "#", "USER", "LEVEL", "XP", "NEXT")
	for i, lvl := range levels {
		next := leveling.XPForLevel(lvl.Level + 1)
		fmt.Printf("%-4d %-40s %-8d %-8d %d\n", i+1, lvl.UserID, lvl.Level, lvl.XP, next)
	}
	return nil
}

func runTranscripts(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("transcripts", flag.ExitOnError)
	dbPath := fs.String("db", "data/locust.db", "path to the store database")
	channel := fs.String("channel", "", "channel/room ID to dump")
	limit := fs.Int("limit", 20, "number of lines to show")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *channel == "" {
		return fmt.Errorf("-channel is required")
	}

	db, err := store.NewSQLiteStore(*dbPath)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer db.Close()

	lines, err := db.RecentTranscripts(ctx, *channel, *limit)
	if err != nil {
		return fmt.Errorf("reading transcripts: %w", err)
	}
	if len(lines) == 0 {
		fmt.Println("No transcripts recorded for this channel yet.")
		return nil
	}

	userColor := color.New(color.FgGreen)
	botColor := color.New(color.FgCyan)
	for _, tr := range lines {
		ts := tr.CreatedAt.Format("2006-01-02 15:04:05")
		if tr.Role == store.RoleUser {
			userColor.Printf("[%s] %s\n", ts, tr.Author)
		} else {
			botColor.Printf("[%s] %s\n", ts, tr.Author)
		}
		fmt.Printf("    %s\n", tr.Content)
	}
	return nil
}
