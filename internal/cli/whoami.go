package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
)

// WhoamiCommand prints the signed-in user, restored from stored credentials.
type WhoamiCommand struct {
	DatabasePath string
	SecureDBPath string
}

// NewWhoamiCommand creates a new WhoamiCommand.
func NewWhoamiCommand() *WhoamiCommand {
	return &WhoamiCommand{}
}

// ParseFlags parses command line flags.
func (cmd *WhoamiCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("whoami", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", "", "Path to the cache database")
	fs.StringVar(&cmd.SecureDBPath, "secure-db", "", "Path to the credential database")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s whoami [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Show the currently signed-in user.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

// Run restores the session and prints the user.
func (cmd *WhoamiCommand) Run() error {
	stack, err := newAppStack(cmd.DatabasePath, cmd.SecureDBPath, "")
	if err != nil {
		return err
	}
	defer stack.Close()

	if err := stack.auth.Initialize(context.Background()); err != nil {
		return fmt.Errorf("failed to restore session: %w", err)
	}

	user := stack.auth.CurrentUser().Get()
	if user == nil {
		fmt.Println("Not signed in.")
		return nil
	}

	email := "(no email)"
	if user.Email != nil {
		email = *user.Email
	}
	fmt.Printf("Signed in as %s (id %s)\n", email, user.ID)
	if user.AvatarURL != nil {
		fmt.Printf("Avatar: %s\n", *user.AvatarURL)
	}
	return nil
}
