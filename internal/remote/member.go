package remote

import (
	"context"
	"net/http"
	"net/url"
)

// FetchMember retrieves a member profile by member id.
func (c *Client) FetchMember(ctx context.Context, memberID string) (*MemberDTO, error) {
	q := url.Values{}
	q.Set("member_id", memberID)

	var dto MemberDTO
	if err := c.call(ctx, http.MethodGet, "member", q, nil, &dto); err != nil {
		return nil, err
	}
	return &dto, nil
}

// FetchMemberByUserID retrieves the member profile linked to an auth user.
func (c *Client) FetchMemberByUserID(ctx context.Context, userID string) (*MemberDTO, error) {
	q := url.Values{}
	q.Set("user_id", userID)

	var dto MemberDTO
	if err := c.call(ctx, http.MethodGet, "member", q, nil, &dto); err != nil {
		return nil, err
	}
	return &dto, nil
}

// UpdateMember pushes mutable profile fields and returns the updated record.
func (c *Client) UpdateMember(ctx context.Context, update MemberUpdateDTO) (*MemberDTO, error) {
	var dto MemberDTO
	if err := c.callEnvelope(ctx, http.MethodPost, "member", nil, update, &dto); err != nil {
		return nil, err
	}
	return &dto, nil
}
