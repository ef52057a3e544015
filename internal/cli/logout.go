package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
)

// LogoutCommand signs out and wipes the local cache.
type LogoutCommand struct {
	DatabasePath string
	SecureDBPath string
}

// NewLogoutCommand creates a new LogoutCommand.
func NewLogoutCommand() *LogoutCommand {
	return &LogoutCommand{}
}

// ParseFlags parses command line flags.
func (cmd *LogoutCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("logout", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", "", "Path to the cache database")
	fs.StringVar(&cmd.SecureDBPath, "secure-db", "", "Path to the credential database")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s logout [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Sign out, clear stored credentials and wipe the local cache.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

// Run executes the sign-out.
func (cmd *LogoutCommand) Run() error {
	stack, err := newAppStack(cmd.DatabasePath, cmd.SecureDBPath, "")
	if err != nil {
		return err
	}
	defer stack.Close()

	ctx := context.Background()
	if err := stack.auth.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to restore session: %w", err)
	}

	// Credentials are cleared locally even when the remote call fails.
	signOutErr := stack.auth.SignOut(ctx)

	if err := stack.db.WipeAll(); err != nil {
		return fmt.Errorf("failed to wipe local cache: %w", err)
	}

	if signOutErr != nil {
		fmt.Printf("Local session cleared, but remote sign-out failed: %v\n", signOutErr)
		return nil
	}

	fmt.Println("Signed out.")
	return nil
}
