package remote

import (
	"context"
	"errors"
	"net/http"
	"net/url"
)

// FetchSession retrieves a single session with its book and discussions.
func (c *Client) FetchSession(ctx context.Context, sessionID string) (*SessionDTO, error) {
	q := url.Values{}
	q.Set("session_id", sessionID)

	var dto SessionDTO
	if err := c.call(ctx, http.MethodGet, "session", q, nil, &dto); err != nil {
		return nil, err
	}
	return &dto, nil
}

// FetchActiveSession retrieves the club's current session, or nil when the
// club has no session running.
func (c *Client) FetchActiveSession(ctx context.Context, clubID string) (*SessionDTO, error) {
	q := url.Values{}
	q.Set("club_id", clubID)
	q.Set("active", "true")

	var dto SessionDTO
	err := c.call(ctx, http.MethodGet, "session", q, nil, &dto)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if dto.ID == "" {
		return nil, nil
	}
	return &dto, nil
}
