package repository

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/bookclubhq/bookclub/internal/domain"
	"github.com/bookclubhq/bookclub/internal/entities"
	"github.com/bookclubhq/bookclub/internal/mapper"
)

// ClubRepository serves clubs remote-first, caching what it can.
type ClubRepository struct {
	remote   remoteSource
	clubs    clubStore
	members  memberStore
	sessions sessionStore
	books    bookStore
	now      func() time.Time
	log      zerolog.Logger
}

// NewClubRepository creates a club repository.
func NewClubRepository(remote remoteSource, clubs clubStore, members memberStore, sessions sessionStore, books bookStore, log zerolog.Logger) *ClubRepository {
	return &ClubRepository{
		remote:   remote,
		clubs:    clubs,
		members:  members,
		sessions: sessions,
		books:    books,
		now:      time.Now,
		log:      log.With().Str("component", "club_repository").Logger(),
	}
}

// GetClub fetches a club with its nested relations from the remote source
// and returns the remote truth. Each relation is persisted to cache
// independently; a write failure is logged and skipped, never rolled back
// and never surfaced. A remote failure propagates and leaves the cache
// untouched.
func (r *ClubRepository) GetClub(ctx context.Context, clubID string) (*domain.Club, error) {
	dto, err := r.remote.FetchClub(ctx, clubID)
	countFetch("club", err)
	if err != nil {
		return nil, err
	}

	club := mapper.ClubFromDTO(dto)
	r.cacheClub(club)
	return club, nil
}

// GetClubsForUser lists the clubs a user belongs to, caching each one.
func (r *ClubRepository) GetClubsForUser(ctx context.Context, userID string) ([]domain.Club, error) {
	dtos, err := r.remote.FetchClubsForUser(ctx, userID)
	countFetch("club", err)
	if err != nil {
		return nil, err
	}

	clubs := make([]domain.Club, 0, len(dtos))
	for i := range dtos {
		club := mapper.ClubFromDTO(&dtos[i])
		r.cacheClub(club)
		clubs = append(clubs, *club)
	}
	return clubs, nil
}

// GetCachedClub reads a club from the local cache only, reconstructing
// whatever subset of its relation graph is available.
func (r *ClubRepository) GetCachedClub(clubID string) (*domain.Club, error) {
	return r.clubs.GetClub(clubID)
}

// IsStale reports whether the cached club row is older than maxAge. An
// uncached club is always stale.
func (r *ClubRepository) IsStale(clubID string, maxAge time.Duration) (bool, error) {
	fetchedAt, err := r.clubs.LastFetchedAt(clubID)
	if err != nil {
		return true, err
	}
	if fetchedAt == nil {
		return true, nil
	}
	return r.now().Sub(*fetchedAt) > maxAge, nil
}

// CachedClubIDs lists every locally known club id, for background refresh.
func (r *ClubRepository) CachedClubIDs() ([]string, error) {
	return r.clubs.ListIDs()
}

// RefreshClub re-fetches a club into the cache, discarding the result.
func (r *ClubRepository) RefreshClub(ctx context.Context, clubID string) error {
	_, err := r.GetClub(ctx, clubID)
	return err
}

// StaleClubIDs lists the cached clubs whose last fetch is older than maxAge.
func (r *ClubRepository) StaleClubIDs(maxAge time.Duration) ([]string, error) {
	ids, err := r.clubs.ListIDs()
	if err != nil {
		return nil, err
	}

	stale := make([]string, 0, len(ids))
	for _, id := range ids {
		isStale, err := r.IsStale(id, maxAge)
		if err != nil {
			continue
		}
		if isStale {
			stale = append(stale, id)
		}
	}
	return stale, nil
}

// cacheClub persists the club and each nested relation as independent
// best-effort steps, in dependency order: flat club, members, join rows,
// then per session its book, the session row and each discussion.
func (r *ClubRepository) cacheClub(club *domain.Club) {
	fetchedAt := r.now()

	bestEffort(r.log, "club", "club", func() error {
		return r.clubs.Upsert(mapper.ClubToEntity(club, fetchedAt))
	})

	if len(club.Members) > 0 {
		rows := make([]entities.Member, 0, len(club.Members))
		joins := make([]entities.ClubMember, 0, len(club.Members))
		for i := range club.Members {
			member := &club.Members[i]
			rows = append(rows, *mapper.MemberToEntity(member, fetchedAt))
			join := entities.ClubMember{ClubID: club.ID, MemberID: member.ID}
			if member.Role != nil {
				join.Role = string(*member.Role)
			}
			joins = append(joins, join)
		}
		bestEffort(r.log, "club", "members", func() error {
			return r.members.UpsertMany(rows)
		})
		bestEffort(r.log, "club", "memberships", func() error {
			return r.clubs.SetMembers(club.ID, joins)
		})
	}

	if club.ActiveSession != nil {
		r.cacheSession(club.ActiveSession, true, fetchedAt)
	}
	for i := range club.PastSessions {
		r.cacheSession(&club.PastSessions[i], false, fetchedAt)
	}
}

func (r *ClubRepository) cacheSession(session *domain.Session, active bool, fetchedAt time.Time) {
	bestEffort(r.log, "session", "book", func() error {
		return r.books.Upsert(mapper.BookToEntity(&session.Book, fetchedAt))
	})
	bestEffort(r.log, "session", "session", func() error {
		return r.sessions.Upsert(mapper.SessionToEntity(session, active, fetchedAt))
	})
	for i := range session.Discussions {
		discussion := &session.Discussions[i]
		bestEffort(r.log, "session", "discussion", func() error {
			return r.sessions.UpsertDiscussion(mapper.DiscussionToEntity(discussion, fetchedAt))
		})
	}
}
