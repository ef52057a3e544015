// Package cli implements the command-line commands: login, logout, whoami
// and sync. Each command builds its own application stack from flags and
// environment configuration.
package cli

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/bookclubhq/bookclub/internal/auth"
	"github.com/bookclubhq/bookclub/internal/authapi"
	"github.com/bookclubhq/bookclub/internal/config"
	"github.com/bookclubhq/bookclub/internal/database"
	"github.com/bookclubhq/bookclub/internal/database/books"
	"github.com/bookclubhq/bookclub/internal/database/clubs"
	"github.com/bookclubhq/bookclub/internal/database/members"
	"github.com/bookclubhq/bookclub/internal/database/sessions"
	"github.com/bookclubhq/bookclub/internal/remote"
	"github.com/bookclubhq/bookclub/internal/repository"
	"github.com/bookclubhq/bookclub/internal/tokenstore"
)

// appStack holds the pieces a command needs: the local cache, the credential
// store, the auth service and the club sync repository.
type appStack struct {
	cfg    *config.Config
	db     *database.Database
	tokens *tokenstore.Store
	auth   *auth.Service
	clubs  *repository.ClubRepository
	log    zerolog.Logger
}

// newAppStack wires the application for a CLI command. redirectTo overrides
// the configured OAuth redirect when non-empty, so that the login command
// can point the flow at its local callback server.
func newAppStack(dbPath, secureDBPath, redirectTo string) (*appStack, error) {
	cfg := config.NewConfig()
	if dbPath != "" {
		cfg.Database.Path = dbPath
	}
	if secureDBPath != "" {
		cfg.SecureStore.Path = secureDBPath
	}
	if redirectTo == "" {
		redirectTo = cfg.Backend.OAuthRedirect
	}

	log := zerolog.Nop()

	db, err := database.NewDatabase(cfg.Database.Path, log)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	tokens, err := tokenstore.New(tokenstore.Config{
		DatabasePath:  cfg.SecureStore.Path,
		EncryptionKey: cfg.SecureStore.EncryptionKey,
		KeyFilePath:   cfg.SecureStore.KeyFilePath,
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open token store: %w", err)
	}

	authAPI := authapi.NewClient(cfg.Backend.BaseURL, cfg.Backend.AnonKey, log)
	authService := auth.NewService(authAPI, tokens, redirectTo, log)

	remoteClient := remote.NewClient(cfg.Backend.BaseURL, cfg.Backend.AnonKey, authService.AccessToken, log)
	clubRepo := repository.NewClubRepository(
		remoteClient,
		clubs.NewRepository(db.DB),
		members.NewRepository(db.DB),
		sessions.NewRepository(db.DB),
		books.NewRepository(db.DB),
		log,
	)

	return &appStack{
		cfg:    cfg,
		db:     db,
		tokens: tokens,
		auth:   authService,
		clubs:  clubRepo,
		log:    log,
	}, nil
}

func (s *appStack) Close() {
	s.tokens.Close()
	s.db.Close()
}
