package services

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookclubhq/bookclub/internal/domain"
	"github.com/bookclubhq/bookclub/internal/remote"
)

type stubSignOuter struct {
	err    error
	called bool
}

func (s *stubSignOuter) SignOut(context.Context) error {
	s.called = true
	return s.err
}

type stubWiper struct {
	err    error
	called bool
}

func (s *stubWiper) WipeAll() error {
	s.called = true
	return s.err
}

func TestSignOutAndWipe_WipesAfterSuccessfulSignOut(t *testing.T) {
	auth := &stubSignOuter{}
	cache := &stubWiper{}
	svc := NewAccountService(auth, cache, zerolog.Nop())

	require.NoError(t, svc.SignOutAndWipe(context.Background()))

	assert.True(t, auth.called)
	assert.True(t, cache.called)
}

func TestSignOutAndWipe_FailedSignOutLeavesCacheAlone(t *testing.T) {
	auth := &stubSignOuter{err: errors.New("logout endpoint unreachable")}
	cache := &stubWiper{}
	svc := NewAccountService(auth, cache, zerolog.Nop())

	err := svc.SignOutAndWipe(context.Background())

	require.Error(t, err)
	assert.True(t, auth.called)
	assert.False(t, cache.called, "cache must only be wiped after sign-out success")
}

func TestSignOutAndWipe_WipeFailureSurfaces(t *testing.T) {
	auth := &stubSignOuter{}
	cache := &stubWiper{err: errors.New("db locked")}
	svc := NewAccountService(auth, cache, zerolog.Nop())

	err := svc.SignOutAndWipe(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "signed out but failed to wipe")
}

type stubMemberAccess struct {
	member  *domain.Member
	updated *remote.MemberUpdateDTO
}

func (s *stubMemberAccess) GetMember(context.Context, string) (*domain.Member, error) {
	return s.member, nil
}

func (s *stubMemberAccess) GetMemberByUserID(context.Context, string) (*domain.Member, error) {
	return s.member, nil
}

func (s *stubMemberAccess) UpdateMember(_ context.Context, update remote.MemberUpdateDTO) (*domain.Member, error) {
	s.updated = &update
	out := *s.member
	out.AvatarURL = update.AvatarURL
	return &out, nil
}

type stubAvatarFetcher struct {
	data []byte
	err  error
}

func (s *stubAvatarFetcher) Fetch(context.Context, string) ([]byte, error) {
	return s.data, s.err
}

type stubAvatarUploader struct {
	url         string
	err         error
	contentType string
}

func (s *stubAvatarUploader) UploadAvatar(_ context.Context, _ string, _ []byte, contentType string) (string, error) {
	s.contentType = contentType
	return s.url, s.err
}

func TestImportAvatar_StoresAndUpdatesProfile(t *testing.T) {
	members := &stubMemberAccess{member: &domain.Member{ID: "m-1", DisplayName: "Peter Parker"}}
	// Minimal valid PNG header so content sniffing sees an image.
	fetcher := &stubAvatarFetcher{data: []byte("\x89PNG\r\n\x1a\n rest-of-image")}
	uploader := &stubAvatarUploader{url: "https://cdn.example.com/avatars/m-1.png"}
	svc := NewMemberService(members, fetcher, uploader)

	member, err := svc.ImportAvatar(context.Background(), "m-1", "https://example.com/pic.png")

	require.NoError(t, err)
	assert.Equal(t, "image/png", uploader.contentType)
	require.NotNil(t, members.updated)
	assert.Equal(t, "Peter Parker", members.updated.DisplayName, "update must carry the existing display name")
	require.NotNil(t, member.AvatarURL)
	assert.Equal(t, "https://cdn.example.com/avatars/m-1.png", *member.AvatarURL)
}

func TestImportAvatar_RejectsNonImageContent(t *testing.T) {
	members := &stubMemberAccess{member: &domain.Member{ID: "m-1", DisplayName: "Peter Parker"}}
	fetcher := &stubAvatarFetcher{data: []byte("<html><body>not found</body></html>")}
	svc := NewMemberService(members, fetcher, &stubAvatarUploader{})

	_, err := svc.ImportAvatar(context.Background(), "m-1", "https://example.com/pic.png")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not an image")
	assert.Nil(t, members.updated)
}

func TestImportAvatar_DownloadFailureStopsEarly(t *testing.T) {
	members := &stubMemberAccess{member: &domain.Member{ID: "m-1", DisplayName: "Peter Parker"}}
	fetcher := &stubAvatarFetcher{err: errors.New("destination address blocked")}
	svc := NewMemberService(members, fetcher, &stubAvatarUploader{})

	_, err := svc.ImportAvatar(context.Background(), "m-1", "http://169.254.169.254/latest")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to download avatar")
	assert.Nil(t, members.updated)
}
