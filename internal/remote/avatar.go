package remote

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/doyensec/safeurl"
)

const maxAvatarBytes = 5 << 20 // 5 MiB

type avatarUploadRequest struct {
	MemberID    FlexID `json:"member_id"`
	ContentType string `json:"content_type"`
	Data        string `json:"data"`
}

type avatarUploadResponse struct {
	URL string `json:"url"`
}

// UploadAvatar stores an avatar image for a member and returns its public
// URL. The image travels base64-encoded through the avatar edge function.
func (c *Client) UploadAvatar(ctx context.Context, memberID string, data []byte, contentType string) (string, error) {
	if len(data) > maxAvatarBytes {
		return "", fmt.Errorf("avatar too large: %d bytes", len(data))
	}

	body := avatarUploadRequest{
		MemberID:    FlexID(memberID),
		ContentType: contentType,
		Data:        base64.StdEncoding.EncodeToString(data),
	}

	var resp avatarUploadResponse
	if err := c.callEnvelope(ctx, http.MethodPost, "avatar", nil, body, &resp); err != nil {
		return "", err
	}
	return resp.URL, nil
}

// AvatarFetcher downloads avatar images from member-supplied URLs. Downloads
// go through an SSRF-guarded client since the URLs originate from other
// users' profiles, not from our own backend.
type AvatarFetcher struct {
	client *http.Client
}

// NewAvatarFetcher creates an avatar fetcher with private, loopback and
// link-local destinations blocked at the dialer level.
func NewAvatarFetcher(timeout time.Duration) *AvatarFetcher {
	cfg := safeurl.GetConfigBuilder().
		SetTimeout(timeout).
		SetAllowedSchemes("http", "https").
		SetAllowedPorts(80, 443).
		Build()
	return &AvatarFetcher{client: safeurl.Client(cfg).Client}
}

// Fetch downloads the avatar at url, capping the response size.
func (f *AvatarFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("avatar download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d fetching avatar", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAvatarBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read avatar: %w", err)
	}
	if len(data) > maxAvatarBytes {
		return nil, fmt.Errorf("avatar exceeds %d bytes", maxAvatarBytes)
	}
	return data, nil
}
