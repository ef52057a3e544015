// Package authapi wraps the hosted auth endpoints (GoTrue-style): password
// and refresh grants, OAuth authorization, user lookup and logout. It knows
// nothing about token persistence; that is the auth service's job.
package authapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

const (
	authPrefix     = "/auth/v1"
	defaultTimeout = 30 * time.Second
)

// Client calls the hosted auth service.
type Client struct {
	httpClient *http.Client
	baseURL    string
	anonKey    string
	log        zerolog.Logger
}

// NewClient creates an auth client. baseURL is the project root without the
// /auth/v1 suffix.
func NewClient(baseURL, anonKey string, log zerolog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    baseURL,
		anonKey:    anonKey,
		log:        log.With().Str("component", "authapi").Logger(),
	}
}

// User is the auth service's user record.
type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	UserMetadata struct {
		FullName  string `json:"full_name"`
		Name      string `json:"name"`
		AvatarURL string `json:"avatar_url"`
	} `json:"user_metadata"`
	AppMetadata struct {
		Provider string `json:"provider"`
	} `json:"app_metadata"`
}

// Session is an issued token pair plus the user it belongs to. AccessToken
// is empty when the backend requires email confirmation before issuing one.
type Session struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUp registers a new email/password user. Depending on backend
// configuration the returned session may lack tokens until the email is
// confirmed.
func (c *Client) SignUp(ctx context.Context, email, password string) (*Session, error) {
	var session Session
	err := c.post(ctx, "/signup", nil, credentialsRequest{Email: email, Password: password}, &session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// SignInWithPassword performs the password grant.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	q := url.Values{}
	q.Set("grant_type", "password")

	var session Session
	err := c.post(ctx, "/token", q, credentialsRequest{Email: email, Password: password}, &session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// RefreshSession exchanges a refresh token for a fresh token pair.
func (c *Client) RefreshSession(ctx context.Context, refreshToken string) (*Session, error) {
	q := url.Values{}
	q.Set("grant_type", "refresh_token")

	body := map[string]string{"refresh_token": refreshToken}
	var session Session
	if err := c.post(ctx, "/token", q, body, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// ExchangeCode completes a PKCE OAuth flow by exchanging the callback code.
func (c *Client) ExchangeCode(ctx context.Context, authCode, codeVerifier string) (*Session, error) {
	q := url.Values{}
	q.Set("grant_type", "pkce")

	body := map[string]string{"auth_code": authCode, "code_verifier": codeVerifier}
	var session Session
	if err := c.post(ctx, "/token", q, body, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// AuthorizeURL builds the provider authorization URL the UI opens
// externally. Completion arrives out of band on the redirect URL.
func (c *Client) AuthorizeURL(provider, redirectTo, state string) string {
	q := url.Values{}
	q.Set("provider", provider)
	if redirectTo != "" {
		q.Set("redirect_to", redirectTo)
	}
	if state != "" {
		q.Set("state", state)
	}
	return c.baseURL + authPrefix + "/authorize?" + q.Encode()
}

// GetUser fetches the user behind an access token, verifying the token is
// still honored by the backend.
func (c *Client) GetUser(ctx context.Context, accessToken string) (*User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+authPrefix+"/user", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req, accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}

	var user User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}
	return &user, nil
}

// SignOut revokes the session behind the access token.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+authPrefix+"/logout", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req, accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, query url.Values, body, out any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	u := c.baseURL + authPrefix + path
	if query != nil {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.setHeaders(req, "")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request, accessToken string) {
	req.Header.Set("apikey", c.anonKey)
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	} else {
		req.Header.Set("Authorization", "Bearer "+c.anonKey)
	}
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(resp.Body)

	// The backend has used a few error shapes over time; try them all.
	var payload struct {
		ErrorCode        string `json:"error_code"`
		Msg              string `json:"msg"`
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	_ = json.Unmarshal(raw, &payload)

	message := payload.Msg
	if message == "" {
		message = payload.ErrorDescription
	}
	if message == "" {
		message = payload.Error
	}

	code := payload.ErrorCode
	if code == "" && payload.Msg != "" {
		code = payload.Error
	}

	return &APIError{StatusCode: resp.StatusCode, Code: code, Message: message}
}
