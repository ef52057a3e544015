// Package services composes repositories and the auth service into the
// operations screens actually invoke.
package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/bookclubhq/bookclub/internal/domain"
	"github.com/bookclubhq/bookclub/internal/remote"
)

// Dependency slices, satisfied by the concrete repositories and the auth
// service. Tests substitute stubs.

type clubGetter interface {
	GetClub(ctx context.Context, clubID string) (*domain.Club, error)
	GetClubsForUser(ctx context.Context, userID string) ([]domain.Club, error)
}

type sessionGetter interface {
	GetActiveSession(ctx context.Context, clubID string) (*domain.Session, error)
}

type bookSearcher interface {
	SearchBooks(ctx context.Context, query string) ([]domain.Book, error)
}

type memberAccess interface {
	GetMember(ctx context.Context, memberID string) (*domain.Member, error)
	GetMemberByUserID(ctx context.Context, userID string) (*domain.Member, error)
	UpdateMember(ctx context.Context, update remote.MemberUpdateDTO) (*domain.Member, error)
}

type serverAccess interface {
	GetServer(ctx context.Context, serverID string) (*domain.Server, error)
	DeleteServer(ctx context.Context, serverID string) error
}

type avatarFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

type avatarUploader interface {
	UploadAvatar(ctx context.Context, memberID string, data []byte, contentType string) (string, error)
}

type signOuter interface {
	SignOut(ctx context.Context) error
}

type cacheWiper interface {
	WipeAll() error
}

// ClubService wraps club-centric use-cases.
type ClubService struct {
	clubs    clubGetter
	sessions sessionGetter
	log      zerolog.Logger
}

// NewClubService creates a club service.
func NewClubService(clubs clubGetter, sessions sessionGetter, log zerolog.Logger) *ClubService {
	return &ClubService{clubs: clubs, sessions: sessions, log: log.With().Str("component", "club_service").Logger()}
}

// GetClubOverview returns the club with its full relation graph.
func (s *ClubService) GetClubOverview(ctx context.Context, clubID string) (*domain.Club, error) {
	return s.clubs.GetClub(ctx, clubID)
}

// GetClubsForUser lists the clubs a user belongs to.
func (s *ClubService) GetClubsForUser(ctx context.Context, userID string) ([]domain.Club, error) {
	return s.clubs.GetClubsForUser(ctx, userID)
}

// GetActiveReadingSession returns the club's current session, or nil when
// the club is between books.
func (s *ClubService) GetActiveReadingSession(ctx context.Context, clubID string) (*domain.Session, error) {
	return s.sessions.GetActiveSession(ctx, clubID)
}

// BookService wraps the book catalog use-cases.
type BookService struct {
	books bookSearcher
}

// NewBookService creates a book service.
func NewBookService(books bookSearcher) *BookService {
	return &BookService{books: books}
}

// SearchBooks queries the catalog. An empty result is a successful empty
// slice, never an error.
func (s *BookService) SearchBooks(ctx context.Context, query string) ([]domain.Book, error) {
	return s.books.SearchBooks(ctx, query)
}

// MemberService wraps member profile use-cases.
type MemberService struct {
	members memberAccess
	avatars avatarFetcher
	uploads avatarUploader
}

// NewMemberService creates a member service.
func NewMemberService(members memberAccess, avatars avatarFetcher, uploads avatarUploader) *MemberService {
	return &MemberService{members: members, avatars: avatars, uploads: uploads}
}

// GetMemberProfile fetches a member by id.
func (s *MemberService) GetMemberProfile(ctx context.Context, memberID string) (*domain.Member, error) {
	return s.members.GetMember(ctx, memberID)
}

// GetOwnProfile resolves the member profile behind the signed-in user.
func (s *MemberService) GetOwnProfile(ctx context.Context, userID string) (*domain.Member, error) {
	return s.members.GetMemberByUserID(ctx, userID)
}

// UpdateMemberProfile writes profile changes and returns the authoritative
// updated member.
func (s *MemberService) UpdateMemberProfile(ctx context.Context, update remote.MemberUpdateDTO) (*domain.Member, error) {
	return s.members.UpdateMember(ctx, update)
}

// ImportAvatar downloads an image from a member-supplied URL, stores it in
// the backend and points the member profile at the stored copy. The download
// goes through the SSRF-guarded fetcher since the URL is user input.
func (s *MemberService) ImportAvatar(ctx context.Context, memberID, sourceURL string) (*domain.Member, error) {
	data, err := s.avatars.Fetch(ctx, sourceURL)
	if err != nil {
		return nil, fmt.Errorf("failed to download avatar: %w", err)
	}

	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("avatar source is not an image: %s", contentType)
	}

	storedURL, err := s.uploads.UploadAvatar(ctx, memberID, data, contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to store avatar: %w", err)
	}

	// The update endpoint requires the display name, so read the current
	// profile before pointing it at the stored copy.
	member, err := s.members.GetMember(ctx, memberID)
	if err != nil {
		return nil, err
	}

	return s.members.UpdateMember(ctx, remote.MemberUpdateDTO{
		ID:          remote.FlexID(memberID),
		DisplayName: member.DisplayName,
		Handle:      member.Handle,
		AvatarURL:   &storedURL,
	})
}

// ServerService wraps server use-cases.
type ServerService struct {
	servers serverAccess
}

// NewServerService creates a server service.
func NewServerService(servers serverAccess) *ServerService {
	return &ServerService{servers: servers}
}

// GetServer fetches a server with its hosted clubs.
func (s *ServerService) GetServer(ctx context.Context, serverID string) (*domain.Server, error) {
	return s.servers.GetServer(ctx, serverID)
}

// DeleteServer removes a server. The backend refuses when the server still
// hosts active clubs; that refusal propagates with its reason.
func (s *ServerService) DeleteServer(ctx context.Context, serverID string) error {
	return s.servers.DeleteServer(ctx, serverID)
}

// AccountService composes sign-out with local cache teardown.
type AccountService struct {
	auth  signOuter
	cache cacheWiper
	log   zerolog.Logger
}

// NewAccountService creates an account service.
func NewAccountService(auth signOuter, cache cacheWiper, log zerolog.Logger) *AccountService {
	return &AccountService{auth: auth, cache: cache, log: log.With().Str("component", "account_service").Logger()}
}

// SignOutAndWipe signs the user out and then deletes every cached table.
// The wipe runs only after the sign-out reports success; a failed sign-out
// leaves the cache intact and propagates the error. The auth service has
// already cleared its own local state either way.
func (s *AccountService) SignOutAndWipe(ctx context.Context) error {
	if err := s.auth.SignOut(ctx); err != nil {
		return err
	}

	if err := s.cache.WipeAll(); err != nil {
		return fmt.Errorf("signed out but failed to wipe local cache: %w", err)
	}

	s.log.Info().Msg("signed out and wiped local cache")
	return nil
}
