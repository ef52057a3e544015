package repository

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/bookclubhq/bookclub/internal/domain"
	"github.com/bookclubhq/bookclub/internal/mapper"
)

// SessionRepository serves reading sessions remote-first.
type SessionRepository struct {
	remote   remoteSource
	sessions sessionStore
	books    bookStore
	now      func() time.Time
	log      zerolog.Logger
}

// NewSessionRepository creates a session repository.
func NewSessionRepository(remote remoteSource, sessions sessionStore, books bookStore, log zerolog.Logger) *SessionRepository {
	return &SessionRepository{
		remote:   remote,
		sessions: sessions,
		books:    books,
		now:      time.Now,
		log:      log.With().Str("component", "session_repository").Logger(),
	}
}

// GetSession fetches a session by id.
func (r *SessionRepository) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	dto, err := r.remote.FetchSession(ctx, sessionID)
	countFetch("session", err)
	if err != nil {
		return nil, err
	}

	session := mapper.SessionFromDTO(dto)
	r.cache(&session, false)
	return &session, nil
}

// GetActiveSession fetches the club's current session. A club between books
// has none; that is a nil session, not an error.
func (r *SessionRepository) GetActiveSession(ctx context.Context, clubID string) (*domain.Session, error) {
	dto, err := r.remote.FetchActiveSession(ctx, clubID)
	countFetch("session", err)
	if err != nil {
		return nil, err
	}
	if dto == nil {
		return nil, nil
	}

	session := mapper.SessionFromDTO(dto)
	r.cache(&session, true)
	return &session, nil
}

func (r *SessionRepository) cache(session *domain.Session, active bool) {
	fetchedAt := r.now()

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
