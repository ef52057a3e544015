package remote

import (
	"context"
	"net/http"
	"net/url"
)

// FetchClub retrieves a club with its nested relations (members, active
// session, past sessions) resolved by the backend in a single call.
func (c *Client) FetchClub(ctx context.Context, clubID string) (*ClubDTO, error) {
	q := url.Values{}
	q.Set("club_id", clubID)

	var dto ClubDTO
	if err := c.call(ctx, http.MethodGet, "club", q, nil, &dto); err != nil {
		return nil, err
	}
	return &dto, nil
}

// FetchClubsForUser lists the clubs the given auth user is a member of.
// The backend returns flat club records without nested relations.
func (c *Client) FetchClubsForUser(ctx context.Context, userID string) ([]ClubDTO, error) {
	q := url.Values{}
	q.Set("user_id", userID)

	var dtos []ClubDTO
	if err := c.call(ctx, http.MethodGet, "club", q, nil, &dtos); err != nil {
		return nil, err
	}
	return dtos, nil
}
