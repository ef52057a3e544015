package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"
)

// SyncCommand refreshes stale cached clubs from the backend.
type SyncCommand struct {
	MaxAge       time.Duration
	All          bool
	DatabasePath string
	SecureDBPath string
}

// NewSyncCommand creates a new SyncCommand.
func NewSyncCommand() *SyncCommand {
	return &SyncCommand{}
}

// ParseFlags parses command line flags.
func (cmd *SyncCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("sync", flag.ExitOnError)

	fs.DurationVar(&cmd.MaxAge, "max-age", 6*time.Hour, "Refresh clubs last fetched longer ago than this")
	fs.BoolVar(&cmd.All, "all", false, "Refresh every cached club regardless of age")
	fs.StringVar(&cmd.DatabasePath, "db", "", "Path to the cache database")
	fs.StringVar(&cmd.SecureDBPath, "secure-db", "", "Path to the credential database")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s sync [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Refresh the local club cache from the backend.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

// Run refreshes each stale club. A failed club is reported and skipped so
// the rest of the cache still refreshes.
func (cmd *SyncCommand) Run() error {
	stack, err := newAppStack(cmd.DatabasePath, cmd.SecureDBPath, "")
	if err != nil {
		return err
	}
	defer stack.Close()

	ctx := context.Background()
	if err := stack.auth.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to restore session: %w", err)
	}
	if !stack.auth.IsAuthenticated() {
		return fmt.Errorf("not signed in, run '%s login' first", os.Args[0])
	}

	var ids []string
	if cmd.All {
		ids, err = stack.clubs.CachedClubIDs()
	} else {
		ids, err = stack.clubs.StaleClubIDs(cmd.MaxAge)
	}
	if err != nil {
		return fmt.Errorf("failed to list cached clubs: %w", err)
	}

	if len(ids) == 0 {
		fmt.Println("Cache is up to date.")
		return nil
	}

	refreshed := 0
	for _, id := range ids {
		if err := stack.clubs.RefreshClub(ctx, id); err != nil {
			fmt.Printf("  club %s: %v\n", id, err)
			continue
		}
		refreshed++
	}

	fmt.Printf("Refreshed %d of %d clubs.\n", refreshed, len(ids))
	return nil
}
