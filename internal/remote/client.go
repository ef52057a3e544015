package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

const (
	functionsPrefix = "/functions/v1"

	defaultTimeout     = 30 * time.Second
	maxRetries         = 3
	initialRetryDelay  = 1 * time.Second
	maxRetryDelay      = 30 * time.Second
	retryBackoffFactor = 2

	// Client-side throttle applied before every request.
	requestsPerSecond = 10
	requestBurst      = 20
)

// TokenFunc supplies the current user access token; it returns "" when no
// session is active, in which case requests go out with the anon key only.
type TokenFunc func() string

// Client interfaces with the backend edge functions. A single instance is
// shared by all repositories; each entity's calls live in their own file.
type Client struct {
	httpClient *http.Client
	baseURL    string
	anonKey    string
	token      TokenFunc
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker[[]byte]
	log        zerolog.Logger
}

// NewClient creates an edge-function client. baseURL is the project root
// (e.g. https://abc.supabase.co) without the /functions/v1 suffix.
func NewClient(baseURL, anonKey string, token TokenFunc, log zerolog.Logger) *Client {
	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:    "edge-functions",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			// Only transport-level trouble should trip the breaker;
			// application errors (404, validation) are healthy responses.
			if err == nil {
				return true
			}
			var serverErr *ServerError
			if errors.As(err, &serverErr) {
				return false
			}
			var apiErr *APIError
			if errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrNotFound) ||
				errors.Is(err, ErrRateLimited) || errors.As(err, &apiErr) {
				return true
			}
			return false
		},
	})

	return &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    baseURL,
		anonKey:    anonKey,
		token:      token,
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), requestBurst),
		breaker:    breaker,
		log:        log.With().Str("component", "remote").Logger(),
	}
}

// call performs a JSON request against an edge function with retry on rate
// limits and server errors, decoding the response into out when non-nil.
func (c *Client) call(ctx context.Context, method, function string, query url.Values, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	u, err := url.Parse(c.baseURL + functionsPrefix + "/" + function)
	if err != nil {
		return fmt.Errorf("failed to build URL: %w", err)
	}
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var encoded []byte
	if body != nil {
		encoded, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	var raw []byte
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			delay := retryDelay(attempt)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		raw, lastErr = c.breaker.Execute(func() ([]byte, error) {
			return c.doRequest(ctx, method, u.String(), encoded)
		})
		if lastErr == nil {
			break
		}
		if !isRetryable(lastErr) {
			return lastErr
		}
	}
	if lastErr != nil {
		return fmt.Errorf("max retries exceeded: %w", lastErr)
	}

	if out == nil || len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// callEnvelope is call for mutation endpoints wrapping responses in the
// {success, error} envelope. A success=false envelope becomes an APIError
// carrying the backend-provided reason.
func (c *Client) callEnvelope(ctx context.Context, method, function string, query url.Values, body, out any) error {
	var env envelope
	if err := c.call(ctx, method, function, query, body, &env); err != nil {
		return err
	}
	if !env.Success {
		return &APIError{StatusCode: http.StatusOK, Code: env.Code, Message: env.Error}
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("failed to decode response data: %w", err)
		}
	}
	return nil
}

func (c *Client) doRequest(ctx context.Context, method, url string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	bearer := c.anonKey
	if c.token != nil {
		if t := c.token(); t != "" {
			bearer = t
		}
	}
	req.Header.Set("Authorization", "Bearer "+bearer)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.StatusCode >= 500:
		return nil, &ServerError{StatusCode: resp.StatusCode}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var env envelope
		if json.Unmarshal(raw, &env) == nil && env.Error != "" {
			return nil, &APIError{StatusCode: resp.StatusCode, Code: env.Code, Message: env.Error}
		}
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(raw))
	}

	return raw, nil
}

func retryDelay(attempt int) time.Duration {
	delay := initialRetryDelay
	for i := 0; i < attempt; i++ {
		delay *= time.Duration(retryBackoffFactor)
	}
	if delay > maxRetryDelay {
		delay = maxRetryDelay
	}
	return delay
}

func isRetryable(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var serverErr *ServerError
	return errors.As(err, &serverErr)
}
