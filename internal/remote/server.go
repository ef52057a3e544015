package remote

import (
	"context"
	"net/http"
	"net/url"
)

// FetchServer retrieves a server and the clubs hosted under it.
func (c *Client) FetchServer(ctx context.Context, serverID string) (*ServerDTO, error) {
	q := url.Values{}
	q.Set("server_id", serverID)

	var dto ServerDTO
	if err := c.call(ctx, http.MethodGet, "server", q, nil, &dto); err != nil {
		return nil, err
	}
	return &dto, nil
}

type serverActionRequest struct {
	Action   string `json:"action"`
	ServerID FlexID `json:"server_id"`
}

// DeleteServer asks the backend to delete a server. The edge function
// responds with a {success, error} envelope; success=false surfaces as an
// error carrying the backend-provided reason.
func (c *Client) DeleteServer(ctx context.Context, serverID string) error {
	body := serverActionRequest{Action: "delete", ServerID: FlexID(serverID)}
	return c.callEnvelope(ctx, http.MethodPost, "server", nil, body, nil)
}
