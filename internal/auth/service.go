// Package auth owns the session lifecycle: acquiring tokens, persisting them
// encrypted, restoring them on cold start, and exposing the current user as
// observable state.
package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bookclubhq/bookclub/internal/authapi"
	"github.com/bookclubhq/bookclub/internal/domain"
	"github.com/bookclubhq/bookclub/internal/mapper"
	"github.com/bookclubhq/bookclub/internal/state"
	"github.com/bookclubhq/bookclub/internal/tokenstore"
)

// Providers accepted by the OAuth entry points.
const (
	ProviderDiscord = "discord"
	ProviderGoogle  = "google"
)

// Service coordinates the auth client, the encrypted token store and the
// observable current-user state. Every state-mutating operation funnels
// through persistSession or clearLocal so observers always see a consistent
// view.
type Service struct {
	api        *authapi.Client
	tokens     *tokenstore.Store
	user       *state.Store[*domain.User]
	redirectTo string
	log        zerolog.Logger

	mu        sync.Mutex
	verifiers map[string]string // pending PKCE verifiers keyed by state
}

// NewService creates an auth service. redirectTo is the deep-link URL
// providers redirect back to after authorization.
func NewService(api *authapi.Client, tokens *tokenstore.Store, redirectTo string, log zerolog.Logger) *Service {
	return &Service{
		api:        api,
		tokens:     tokens,
		user:       state.New[*domain.User](nil),
		redirectTo: redirectTo,
		log:        log.With().Str("component", "auth").Logger(),
		verifiers:  make(map[string]string),
	}
}

// CurrentUser exposes the observable current-user cell. A nil value means
// unauthenticated.
func (s *Service) CurrentUser() *state.Store[*domain.User] {
	return s.user
}

// IsAuthenticated reports whether a user is currently signed in.
func (s *Service) IsAuthenticated() bool {
	return s.user.Get() != nil
}

// AccessToken returns the persisted access token, or empty when signed out.
func (s *Service) AccessToken() string {
	token, _, err := s.tokens.Get(tokenstore.KeyAccessToken)
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to read access token")
		return ""
	}
	return token
}

// Initialize restores a persisted session on cold start. Any failure along
// the way (missing tokens, rejected session, storage error) clears every
// persisted auth key and leaves the user signed out; a half-restored state
// is never left behind.
func (s *Service) Initialize(ctx context.Context) error {
	accessToken, haveAccess, err := s.tokens.Get(tokenstore.KeyAccessToken)
	if err != nil {
		return s.abandonRestore(err)
	}
	refreshToken, haveRefresh, err := s.tokens.Get(tokenstore.KeyRefreshToken)
	if err != nil {
		return s.abandonRestore(err)
	}
	if !haveAccess || !haveRefresh {
		s.clearLocal()
		return nil
	}

	// A token past its exp claim is not worth presenting; go straight to
	// the refresh grant.
	if tokenExpired(accessToken) {
		if _, err := s.refreshWith(ctx, refreshToken); err != nil {
			return s.abandonRestore(err)
		}
		return nil
	}

	user, err := s.api.GetUser(ctx, accessToken)
	if err != nil {
		// The token may have been revoked server-side; one refresh attempt
		// before giving up.
		if _, refreshErr := s.refreshWith(ctx, refreshToken); refreshErr != nil {
			return s.abandonRestore(err)
		}
		return nil
	}

	s.user.Set(mapper.UserFromAuth(user))
	return nil
}

func (s *Service) abandonRestore(cause error) error {
	s.clearLocal()
	s.log.Warn().Err(cause).Msg("session restore failed, cleared persisted auth state")
	return nil // restore failure means signed out, not an error
}

// SignUpWithEmail registers a new account. When the backend issues tokens
// immediately the session is persisted; when email confirmation is required
// the user stays signed out and the caller should prompt for confirmation.
func (s *Service) SignUpWithEmail(ctx context.Context, email, password string) (*domain.User, error) {
	session, err := s.api.SignUp(ctx, email, password)
	if err != nil {
		return nil, Classify(err)
	}
	if session.AccessToken == "" {
		return mapper.UserFromAuth(&session.User), nil
	}
	if err := s.persistSession(session); err != nil {
		return nil, Classify(err)
	}
	return s.user.Get(), nil
}

// SignInWithEmail performs the password grant and persists the session.
func (s *Service) SignInWithEmail(ctx context.Context, email, password string) (*domain.User, error) {
	session, err := s.api.SignInWithPassword(ctx, email, password)
	if err != nil {
		return nil, Classify(err)
	}
	if err := s.persistSession(session); err != nil {
		return nil, Classify(err)
	}
	return s.user.Get(), nil
}

// SignInWithDiscord starts the Discord OAuth flow and returns the
// authorization URL for the caller to open externally.
func (s *Service) SignInWithDiscord() (string, error) {
	return s.authorizeURL(ProviderDiscord)
}

// SignInWithGoogle starts the Google OAuth flow.
func (s *Service) SignInWithGoogle() (string, error) {
	return s.authorizeURL(ProviderGoogle)
}

func (s *Service) authorizeURL(provider string) (string, error) {
	verifier, challenge, err := newPKCEPair()
	if err != nil {
		return "", fmt.Errorf("failed to create PKCE verifier: %w", err)
	}

	stateToken := uuid.NewString()
	s.mu.Lock()
	s.verifiers[stateToken] = verifier
	s.mu.Unlock()

	authorize := s.api.AuthorizeURL(provider, s.redirectTo, stateToken)
	return authorize + "&code_challenge=" + challenge + "&code_challenge_method=s256", nil
}

// HandleOAuthCallback completes an OAuth flow from the provider redirect
// URL. Both callback shapes are supported: tokens delivered in the URL
// fragment (implicit flow) and a PKCE code in the query string.
func (s *Service) HandleOAuthCallback(ctx context.Context, callbackURL string) (*domain.User, error) {
	parsed, err := url.Parse(callbackURL)
	if err != nil {
		return nil, Classify(fmt.Errorf("invalid callback URL: %w", err))
	}

	if fragment := parsed.Fragment; fragment != "" {
		params, err := url.ParseQuery(fragment)
		if err == nil && params.Get("access_token") != "" {
			return s.completeImplicit(ctx, params.Get("access_token"), params.Get("refresh_token"))
		}
	}

	query := parsed.Query()
	if errDesc := query.Get("error_description"); errDesc != "" {
		return nil, Classify(fmt.Errorf("%s", errDesc))
	}

	code := query.Get("code")
	if code == "" {
		return nil, Classify(fmt.Errorf("callback URL carries neither tokens nor a code"))
	}

	s.mu.Lock()
	verifier := s.verifiers[query.Get("state")]
	delete(s.verifiers, query.Get("state"))
	s.mu.Unlock()

	session, err := s.api.ExchangeCode(ctx, code, verifier)
	if err != nil {
		return nil, Classify(err)
	}
	if err := s.persistSession(session); err != nil {
		return nil, Classify(err)
	}
	return s.user.Get(), nil
}

func (s *Service) completeImplicit(ctx context.Context, accessToken, refreshToken string) (*domain.User, error) {
	user, err := s.api.GetUser(ctx, accessToken)
	if err != nil {
		return nil, Classify(err)
	}

	session := &authapi.Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         *user,
	}
	if err := s.persistSession(session); err != nil {
		return nil, Classify(err)
	}
	return s.user.Get(), nil
}

// SignOut revokes the remote session and clears all local auth state. Local
// cleanup is unconditional: even when the remote call fails the tokens are
// gone and the user cell is nil, and the remote error is returned so the
// caller can report it.
func (s *Service) SignOut(ctx context.Context) error {
	accessToken, _, _ := s.tokens.Get(tokenstore.KeyAccessToken)

	var remoteErr error
	if accessToken != "" {
		remoteErr = s.api.SignOut(ctx, accessToken)
	}

	s.clearLocal()

	if remoteErr != nil {
		s.log.Warn().Err(remoteErr).Msg("remote sign-out failed, local state cleared anyway")
		return Classify(remoteErr)
	}
	return nil
}

// RefreshSession exchanges the stored refresh token for a new token pair.
// An unrefreshable session is unusable, so failure behaves like sign-out.
func (s *Service) RefreshSession(ctx context.Context) error {
	refreshToken, ok, err := s.tokens.Get(tokenstore.KeyRefreshToken)
	if err != nil || !ok {
		s.clearLocal()
		if err != nil {
			return Classify(err)
		}
		return Classify(fmt.Errorf("no refresh token stored"))
	}

	if _, err := s.refreshWith(ctx, refreshToken); err != nil {
		s.clearLocal()
		return Classify(err)
	}
	return nil
}

func (s *Service) refreshWith(ctx context.Context, refreshToken string) (*authapi.Session, error) {
	session, err := s.api.RefreshSession(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if err := s.persistSession(session); err != nil {
		return nil, err
	}
	return session, nil
}

// persistSession writes both tokens and the user id, then pushes the mapped
// user into the observable cell. Token writes happen before the state push
// so an observer reacting to the new user can immediately use the tokens.
func (s *Service) persistSession(session *authapi.Session) error {
	if err := s.tokens.Set(tokenstore.KeyAccessToken, session.AccessToken); err != nil {
		return fmt.Errorf("failed to persist access token: %w", err)
	}
	if err := s.tokens.Set(tokenstore.KeyRefreshToken, session.RefreshToken); err != nil {
		return fmt.Errorf("failed to persist refresh token: %w", err)
	}
	if err := s.tokens.Set(tokenstore.KeyUserID, session.User.ID); err != nil {
		return fmt.Errorf("failed to persist user id: %w", err)
	}

	s.user.Set(mapper.UserFromAuth(&session.User))
	return nil
}

func (s *Service) clearLocal() {
	if err := s.tokens.Clear(); err != nil {
		s.log.Error().Err(err).Msg("failed to clear token store")
	}
	s.user.Set(nil)
}

// tokenExpired inspects the JWT exp claim without verifying the signature;
// verification is the backend's job, we only want to skip a doomed request.
func tokenExpired(accessToken string) bool {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(accessToken, claims); err != nil {
		return false // not a JWT, let the backend decide
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}

// newPKCEPair returns a fresh code verifier and its S256 challenge.
func newPKCEPair() (verifier, challenge string, err error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", "", err
	}
	verifier = base64.RawURLEncoding.EncodeToString(raw)
	sum := sha256.Sum256([]byte(verifier))
	challenge = base64.RawURLEncoding.EncodeToString(sum[:])
	return verifier, challenge, nil
}
