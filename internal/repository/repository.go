// Package repository implements the remote-first synchronization layer.
// Every get prefers a fresh remote copy; cache writes for nested relations
// are best-effort and never fail the call that produced them.
package repository

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/bookclubhq/bookclub/internal/domain"
	"github.com/bookclubhq/bookclub/internal/entities"
	"github.com/bookclubhq/bookclub/internal/remote"
)

// remoteSource is the slice of the API client the repositories consume.
// *remote.Client satisfies it; tests substitute a stub.
type remoteSource interface {
	FetchClub(ctx context.Context, clubID string) (*remote.ClubDTO, error)
	FetchClubsForUser(ctx context.Context, userID string) ([]remote.ClubDTO, error)
	FetchServer(ctx context.Context, serverID string) (*remote.ServerDTO, error)
	DeleteServer(ctx context.Context, serverID string) error
	FetchSession(ctx context.Context, sessionID string) (*remote.SessionDTO, error)
	FetchActiveSession(ctx context.Context, clubID string) (*remote.SessionDTO, error)
	SearchBooks(ctx context.Context, query string) ([]remote.BookDTO, error)
	FetchBook(ctx context.Context, bookID string) (*remote.BookDTO, error)
	FetchMember(ctx context.Context, memberID string) (*remote.MemberDTO, error)
	FetchMemberByUserID(ctx context.Context, userID string) (*remote.MemberDTO, error)
	UpdateMember(ctx context.Context, update remote.MemberUpdateDTO) (*remote.MemberDTO, error)
}

// Local store slices, one per entity. The concrete implementations live in
// internal/database; tests inject failing fakes to exercise the best-effort
// contract.
type clubStore interface {
	Upsert(club *entities.Club) error
	UpsertMany(clubs []entities.Club) error
	SetMembers(clubID string, members []entities.ClubMember) error
	GetClub(id string) (*domain.Club, error)
	LastFetchedAt(id string) (*time.Time, error)
	ListIDs() ([]string, error)
}

type memberStore interface {
	Upsert(member *entities.Member) error
	UpsertMany(members []entities.Member) error
	GetByUserID(userID string) (*entities.Member, error)
}

type sessionStore interface {
	Upsert(session *entities.Session) error
	UpsertMany(sessions []entities.Session) error
	UpsertDiscussion(discussion *entities.Discussion) error
}

type bookStore interface {
	Upsert(book *entities.Book) error
	UpsertMany(books []entities.Book) error
}

type serverStore interface {
	Upsert(server *entities.Server) error
	Delete(id string) error
}

// bestEffort runs a single cache-write step. A failure is logged, counted
// and swallowed; the authoritative remote payload has already been obtained
// so the surrounding call must still succeed.
func bestEffort(log zerolog.Logger, entity, step string, fn func() error) {
	if err := fn(); err != nil {
		cacheWriteFailures.WithLabelValues(entity, step).Inc()
		log.Warn().Err(err).
			Str("entity", entity).
			Str("step", step).
			Msg("cache write failed, continuing with remote data")
	}
}
