// Package entrypoint wires configuration, the local cache, the remote
// clients and the HTTP server together and runs the process lifecycle.
package entrypoint

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/bookclubhq/bookclub/internal/auth"
	"github.com/bookclubhq/bookclub/internal/authapi"
	"github.com/bookclubhq/bookclub/internal/config"
	"github.com/bookclubhq/bookclub/internal/database"
	"github.com/bookclubhq/bookclub/internal/database/books"
	"github.com/bookclubhq/bookclub/internal/database/clubs"
	"github.com/bookclubhq/bookclub/internal/database/members"
	"github.com/bookclubhq/bookclub/internal/database/servers"
	"github.com/bookclubhq/bookclub/internal/database/sessions"
	http_controllers "github.com/bookclubhq/bookclub/internal/http"
	"github.com/bookclubhq/bookclub/internal/remote"
	"github.com/bookclubhq/bookclub/internal/repository"
	"github.com/bookclubhq/bookclub/internal/scheduler"
	"github.com/bookclubhq/bookclub/internal/services"
	"github.com/bookclubhq/bookclub/internal/tasks"
	"github.com/bookclubhq/bookclub/internal/tokenstore"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// NewLogger builds the process-wide logger.
func NewLogger() zerolog.Logger {
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

func Serve(router *gin.Engine, cfg *config.Config, log zerolog.Logger, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("listen failed")
		}
	}()

	// Wait for SIGINT or SIGTERM, then drain within the configured timeout.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Dur("timeout", timeout).Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop background workers before the listener so that in-flight tasks
	// can still reach the local cache.
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server shutdown failed")
	}

	log.Info().Msg("server exiting")
}

func Run(cfg *config.Config, version string) {
	log := NewLogger()
	log.Info().Str("version", version).Msg("starting bookclub")

	if cfg.Backend.BaseURL == "" {
		log.Warn().Msg("BACKEND_BASE_URL is not set, remote fetches will fail")
	}

	// Local cache database.
	db, err := database.NewDatabase(cfg.Database.Path, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error().Err(err).Msg("error closing database")
		}
	}()

	// Encrypted credential store, separate file from the cache so that a
	// cache wipe never touches credentials.
	tokens, err := tokenstore.New(tokenstore.Config{
		DatabasePath:  cfg.SecureStore.Path,
		EncryptionKey: cfg.SecureStore.EncryptionKey,
		KeyFilePath:   cfg.SecureStore.KeyFilePath,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize token store")
	}
	defer func() {
		if err := tokens.Close(); err != nil {
			log.Error().Err(err).Msg("error closing token store")
		}
	}()

	// Auth service, restored from persisted tokens when possible.
	authAPI := authapi.NewClient(cfg.Backend.BaseURL, cfg.Backend.AnonKey, log)
	authService := auth.NewService(authAPI, tokens, cfg.Backend.OAuthRedirect, log)
	if err := authService.Initialize(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("failed to initialize auth")
	}

	// Remote data client, authorized with whatever token is current.
	remoteClient := remote.NewClient(cfg.Backend.BaseURL, cfg.Backend.AnonKey, authService.AccessToken, log)

	// Per-entity cache repositories over the shared connection.
	clubStore := clubs.NewRepository(db.DB)
	memberStore := members.NewRepository(db.DB)
	sessionStore := sessions.NewRepository(db.DB)
	bookStore := books.NewRepository(db.DB)
	serverStore := servers.NewRepository(db.DB)

	clubRepo := repository.NewClubRepository(remoteClient, clubStore, memberStore, sessionStore, bookStore, log)
	sessionRepo := repository.NewSessionRepository(remoteClient, sessionStore, bookStore, log)
	bookRepo := repository.NewBookRepository(remoteClient, bookStore, log)
	memberRepo := repository.NewMemberRepository(remoteClient, memberStore, log)
	serverRepo := repository.NewServerRepository(remoteClient, serverStore, clubStore, log)

	clubService := services.NewClubService(clubRepo, sessionRepo, log)
	bookService := services.NewBookService(bookRepo)
	avatarFetcher := remote.NewAvatarFetcher(15 * time.Second)
	memberService := services.NewMemberService(memberRepo, avatarFetcher, remoteClient)
	serverService := services.NewServerService(serverRepo)
	accountService := services.NewAccountService(authService, db, log)

	// Background task queue for cache refreshes.
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	var syncScheduler *scheduler.CacheSyncScheduler
	if cfg.Tasks.Enabled {
		taskCfg := tasks.Config{
			Workers:           cfg.Tasks.Workers,
			MaxRetries:        cfg.Tasks.MaxRetries,
			RetryDelay:        cfg.Tasks.RetryDelay,
			TaskTimeout:       cfg.Tasks.TaskTimeout,
			ReleaseAfter:      cfg.Tasks.ReleaseAfter,
			CleanupInterval:   cfg.Tasks.CleanupInterval,
			RetentionDuration: cfg.Tasks.RetentionDuration,
		}

		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize task queue")
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Error().Err(err).Msg("error closing task client")
			}
		}()

		taskClient.Register(
			tasks.NewRefreshClubQueue(clubRepo, log),
			tasks.NewSyncAllClubsQueue(clubRepo, taskClient.Add, log),
		)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)

		syncScheduler = scheduler.NewCacheSyncScheduler(cfg.CacheSync, taskClient, log)
		if err := syncScheduler.Start(taskCtx); err != nil {
			log.Fatal().Err(err).Msg("failed to start cache sync scheduler")
		}
	} else if cfg.CacheSync.Enabled {
		log.Warn().Msg("cache sync is enabled but the task queue is disabled, no background refresh will run")
	}

	// Server-side sessions in SQLite, CSRF secret from config or generated.
	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to get SQL DB for sessions")
	}
	sessionManager, err := newSessionManager(sqlDB, cfg.Global.SecureCookies)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize session manager")
	}

	csrfSecret, err := resolveCSRFSecret(cfg.Global.SessionSecret)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to resolve CSRF secret")
	}
	if cfg.Global.SessionSecret == "" {
		log.Info().Msg("generated session secret (set SESSION_SECRET to persist)")
	}

	routerCfg := http_controllers.RouterConfig{
		AuthService:    authService,
		ClubService:    clubService,
		BookService:    bookService,
		MemberService:  memberService,
		ServerService:  serverService,
		AccountService: accountService,
		Database:       db,
		SessionManager: sessionManager,
		CSRFSecret:     csrfSecret,
		SecureCookies:  cfg.Global.SecureCookies,
		Version:        version,
		Log:            log,
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		if syncScheduler != nil {
			syncScheduler.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, log, onShutdown)
}

// newSessionManager configures SQLite-backed server-side sessions.
func newSessionManager(sqlDB *sql.DB, secureCookies bool) (*scs.SessionManager, error) {
	_, err := sqlDB.Exec(`CREATE TABLE IF NOT EXISTS sessions (
		token TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		expiry REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS sessions_expiry_idx ON sessions(expiry);`)
	if err != nil {
		return nil, err
	}

	sm := scs.New()
	sm.Store = sqlite3store.New(sqlDB)
	sm.Lifetime = 30 * 24 * time.Hour
	sm.IdleTimeout = 15 * 24 * time.Hour
	sm.Cookie.Name = "session"
	sm.Cookie.HttpOnly = true
	sm.Cookie.Secure = secureCookies
	sm.Cookie.SameSite = http.SameSiteStrictMode
	sm.Cookie.Path = "/"
	return sm, nil
}

// resolveCSRFSecret decodes the configured secret, or generates a random one
// when none is set.
func resolveCSRFSecret(configured string) ([]byte, error) {
	if configured != "" {
		secret, err := hex.DecodeString(configured)
		if err != nil {
			// Not hex, use as raw bytes.
			return []byte(configured), nil
		}
		return secret, nil
	}

	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, err
	}
	return secret, nil
}
