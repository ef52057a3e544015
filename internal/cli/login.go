package cli

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/bookclubhq/bookclub/internal/domain"
)

// LoginCommand signs in with email and password, or via an OAuth provider
// using a local callback server.
type LoginCommand struct {
	Email        string
	Provider     string
	Port         int
	DatabasePath string
	SecureDBPath string
}

// NewLoginCommand creates a new LoginCommand.
func NewLoginCommand() *LoginCommand {
	return &LoginCommand{}
}

// ParseFlags parses command line flags.
func (cmd *LoginCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)

	fs.StringVar(&cmd.Email, "email", "", "Email address for password sign-in")
	fs.StringVar(&cmd.Provider, "provider", "", "OAuth provider: discord or google")
	fs.IntVar(&cmd.Port, "port", 8089, "Local port for the OAuth callback server")
	fs.StringVar(&cmd.DatabasePath, "db", "", "Path to the cache database")
	fs.StringVar(&cmd.SecureDBPath, "secure-db", "", "Path to the credential database")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s login [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Sign in to the backend and persist the session locally.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s login -email you@example.com\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s login -provider discord\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Email == "" && cmd.Provider == "" {
		return fmt.Errorf("either -email or -provider is required")
	}
	if cmd.Email != "" && cmd.Provider != "" {
		return fmt.Errorf("-email and -provider are mutually exclusive")
	}

	return nil
}

// Run executes the sign-in flow.
func (cmd *LoginCommand) Run() error {
	redirectTo := ""
	if cmd.Provider != "" {
		redirectTo = fmt.Sprintf("http://localhost:%d/callback", cmd.Port)
	}

	stack, err := newAppStack(cmd.DatabasePath, cmd.SecureDBPath, redirectTo)
	if err != nil {
		return err
	}
	defer stack.Close()

	ctx := context.Background()

	var user *domain.User
	if cmd.Provider != "" {
		user, err = cmd.runOAuthFlow(ctx, stack)
	} else {
		user, err = cmd.runPasswordFlow(ctx, stack)
	}
	if err != nil {
		return err
	}

	if user == nil {
		fmt.Println("\nCheck your inbox: the account needs email confirmation before sign-in.")
		return nil
	}

	email := cmd.Email
	if user.Email != nil {
		email = *user.Email
	}
	fmt.Printf("\nSigned in as %s\n", email)
	fmt.Printf("Tokens saved securely to %s\n", stack.cfg.SecureStore.Path)
	return nil
}

func (cmd *LoginCommand) runPasswordFlow(ctx context.Context, stack *appStack) (*domain.User, error) {
	fmt.Print("Password: ")
	reader := bufio.NewReader(os.Stdin)
	password, err := reader.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}
	password = strings.TrimRight(password, "\r\n")

	user, err := stack.auth.SignInWithEmail(ctx, cmd.Email, password)
	if err != nil {
		return nil, fmt.Errorf("sign-in failed: %w", err)
	}
	return user, nil
}

func (cmd *LoginCommand) runOAuthFlow(ctx context.Context, stack *appStack) (*domain.User, error) {
	var authURL string
	var err error
	switch cmd.Provider {
	case "discord":
		authURL, err = stack.auth.SignInWithDiscord()
	case "google":
		authURL, err = stack.auth.SignInWithGoogle()
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cmd.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to build authorization URL: %w", err)
	}

	type callbackResult struct {
		user *domain.User
		err  error
	}
	results := make(chan callbackResult, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		user, err := stack.auth.HandleOAuthCallback(r.Context(), r.URL.String())
		if err != nil {
			http.Error(w, "Authorization failed. You can close this window.", http.StatusBadRequest)
		} else {
			fmt.Fprintln(w, "Signed in. You can close this window.")
		}
		results <- callbackResult{user: user, err: err}
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf("localhost:%d", cmd.Port),
		Handler: mux,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			results <- callbackResult{err: err}
		}
	}()
	defer srv.Shutdown(context.Background())

	fmt.Println("\nOpen this URL in your browser to authorize:")
	fmt.Println()
	fmt.Println(authURL)
	fmt.Println("\nWaiting for authorization...")

	select {
	case result := <-results:
		if result.err != nil {
			return nil, fmt.Errorf("authorization failed: %w", result.err)
		}
		return result.user, nil
	case <-time.After(5 * time.Minute):
		return nil, fmt.Errorf("timed out waiting for authorization")
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
