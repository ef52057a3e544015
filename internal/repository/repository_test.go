package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookclubhq/bookclub/internal/domain"
	"github.com/bookclubhq/bookclub/internal/entities"
	"github.com/bookclubhq/bookclub/internal/remote"
)

// stubRemote lets each test script the remote behaviour.
type stubRemote struct {
	fetchClub          func(clubID string) (*remote.ClubDTO, error)
	fetchClubsForUser  func(userID string) ([]remote.ClubDTO, error)
	fetchServer        func(serverID string) (*remote.ServerDTO, error)
	deleteServer       func(serverID string) error
	fetchSession       func(sessionID string) (*remote.SessionDTO, error)
	fetchActiveSession func(clubID string) (*remote.SessionDTO, error)
	searchBooks        func(query string) ([]remote.BookDTO, error)
	fetchBook          func(bookID string) (*remote.BookDTO, error)
	fetchMember        func(memberID string) (*remote.MemberDTO, error)
	fetchMemberByUser  func(userID string) (*remote.MemberDTO, error)
	updateMember       func(update remote.MemberUpdateDTO) (*remote.MemberDTO, error)
}

func (s *stubRemote) FetchClub(_ context.Context, clubID string) (*remote.ClubDTO, error) {
	return s.fetchClub(clubID)
}

func (s *stubRemote) FetchClubsForUser(_ context.Context, userID string) ([]remote.ClubDTO, error) {
	return s.fetchClubsForUser(userID)
}

func (s *stubRemote) FetchServer(_ context.Context, serverID string) (*remote.ServerDTO, error) {
	return s.fetchServer(serverID)
}

func (s *stubRemote) DeleteServer(_ context.Context, serverID string) error {
	return s.deleteServer(serverID)
}

func (s *stubRemote) FetchSession(_ context.Context, sessionID string) (*remote.SessionDTO, error) {
	return s.fetchSession(sessionID)
}

func (s *stubRemote) FetchActiveSession(_ context.Context, clubID string) (*remote.SessionDTO, error) {
	return s.fetchActiveSession(clubID)
}

func (s *stubRemote) SearchBooks(_ context.Context, query string) ([]remote.BookDTO, error) {
	return s.searchBooks(query)
}

func (s *stubRemote) FetchBook(_ context.Context, bookID string) (*remote.BookDTO, error) {
	return s.fetchBook(bookID)
}

func (s *stubRemote) FetchMember(_ context.Context, memberID string) (*remote.MemberDTO, error) {
	return s.fetchMember(memberID)
}

func (s *stubRemote) FetchMemberByUserID(_ context.Context, userID string) (*remote.MemberDTO, error) {
	return s.fetchMemberByUser(userID)
}

func (s *stubRemote) UpdateMember(_ context.Context, update remote.MemberUpdateDTO) (*remote.MemberDTO, error) {
	return s.updateMember(update)
}

// Recording fakes for the local stores. Setting failX makes the matching
// write return an error so tests can exercise the best-effort contract.

type fakeClubStore struct {
	clubs       []entities.Club
	memberships map[string][]entities.ClubMember
	failUpsert  error
	failMembers error
}

func newFakeClubStore() *fakeClubStore {
	return &fakeClubStore{memberships: make(map[string][]entities.ClubMember)}
}

func (f *fakeClubStore) Upsert(club *entities.Club) error {
	if f.failUpsert != nil {
		return f.failUpsert
	}
	f.clubs = append(f.clubs, *club)
	return nil
}

func (f *fakeClubStore) UpsertMany(clubs []entities.Club) error {
	if f.failUpsert != nil {
		return f.failUpsert
	}
	f.clubs = append(f.clubs, clubs...)
	return nil
}

func (f *fakeClubStore) SetMembers(clubID string, members []entities.ClubMember) error {
	if f.failMembers != nil {
		return f.failMembers
	}
	f.memberships[clubID] = members
	return nil
}

func (f *fakeClubStore) GetClub(id string) (*domain.Club, error) {
	for _, c := range f.clubs {
		if c.ID == id {
			return &domain.Club{ID: c.ID, Name: c.Name}, nil
		}
	}
	return nil, errors.New("not cached")
}

func (f *fakeClubStore) LastFetchedAt(id string) (*time.Time, error) {
	for _, c := range f.clubs {
		if c.ID == id {
			t := c.LastFetchedAt
			return &t, nil
		}
	}
	return nil, nil
}

func (f *fakeClubStore) ListIDs() ([]string, error) {
	ids := make([]string, 0, len(f.clubs))
	for _, c := range f.clubs {
		ids = append(ids, c.ID)
	}
	return ids, nil
}

type fakeMemberStore struct {
	members []entities.Member
	fail    error
}

func (f *fakeMemberStore) Upsert(member *entities.Member) error {
	if f.fail != nil {
		return f.fail
	}
	f.members = append(f.members, *member)
	return nil
}

func (f *fakeMemberStore) UpsertMany(members []entities.Member) error {
	if f.fail != nil {
		return f.fail
	}
	f.members = append(f.members, members...)
	return nil
}

func (f *fakeMemberStore) GetByUserID(string) (*entities.Member, error) { return nil, nil }

type fakeSessionStore struct {
	sessions        []entities.Session
	discussions     []entities.Discussion
	failSession     error
	failDiscussions error
}

func (f *fakeSessionStore) Upsert(session *entities.Session) error {
	if f.failSession != nil {
		return f.failSession
	}
	f.sessions = append(f.sessions, *session)
	return nil
}

func (f *fakeSessionStore) UpsertMany(sessions []entities.Session) error {
	if f.failSession != nil {
		return f.failSession
	}
	f.sessions = append(f.sessions, sessions...)
	return nil
}

func (f *fakeSessionStore) UpsertDiscussion(discussion *entities.Discussion) error {
	if f.failDiscussions != nil {
		return f.failDiscussions
	}
	f.discussions = append(f.discussions, *discussion)
	return nil
}

type fakeBookStore struct {
	books []entities.Book
	fail  error
}

func (f *fakeBookStore) Upsert(book *entities.Book) error {
	if f.fail != nil {
		return f.fail
	}
	f.books = append(f.books, *book)
	return nil
}

func (f *fakeBookStore) UpsertMany(books []entities.Book) error {
	if f.fail != nil {
		return f.fail
	}
	f.books = append(f.books, books...)
	return nil
}

type fakeServerStore struct {
	servers []entities.Server
	deleted []string
	fail    error
}

func (f *fakeServerStore) Upsert(server *entities.Server) error {
	if f.fail != nil {
		return f.fail
	}
	f.servers = append(f.servers, *server)
	return nil
}

func (f *fakeServerStore) Delete(id string) error {
	if f.fail != nil {
		return f.fail
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func clubDTOFixture() *remote.ClubDTO {
	due := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	return &remote.ClubDTO{
		ID:        "42",
		Name:      "Graphic Novels",
		ShameList: []remote.FlexID{"7"},
		Members: []remote.MemberDTO{
			{ID: "7", DisplayName: "Mary Jane Watson", Points: 120, BooksRead: 9, CreatedAt: due},
		},
		ActiveSession: &remote.SessionDTO{
			ID:      "s-1",
			ClubID:  "42",
			Book:    remote.BookDTO{ID: "b-1", Title: "Watchmen", Author: "Alan Moore"},
			DueDate: &due,
			Discussions: []remote.DiscussionDTO{
				{ID: "d-1", SessionID: "s-1", Title: "Chapters 1-3", ScheduledAt: due},
				{ID: "d-2", SessionID: "s-1", Title: "Chapters 4-6", ScheduledAt: due.AddDate(0, 0, 7)},
			},
		},
	}
}

type clubRepoFixture struct {
	repo     *ClubRepository
	clubs    *fakeClubStore
	members  *fakeMemberStore
	sessions *fakeSessionStore
	books    *fakeBookStore
}

func newClubRepo(remote remoteSource) clubRepoFixture {
	clubs := newFakeClubStore()
	members := &fakeMemberStore{}
	sessions := &fakeSessionStore{}
	books := &fakeBookStore{}
	repo := NewClubRepository(remote, clubs, members, sessions, books, zerolog.Nop())
	return clubRepoFixture{repo: repo, clubs: clubs, members: members, sessions: sessions, books: books}
}

func TestClubRepository_GetClub_CachesEveryRelation(t *testing.T) {
	f := newClubRepo(&stubRemote{
		fetchClub: func(string) (*remote.ClubDTO, error) { return clubDTOFixture(), nil },
	})

	club, err := f.repo.GetClub(context.Background(), "42")

	require.NoError(t, err)
	assert.Equal(t, "Graphic Novels", club.Name)
	require.Len(t, f.clubs.clubs, 1)
	require.Len(t, f.members.members, 1)
	require.Len(t, f.clubs.memberships["42"], 1)
	require.Len(t, f.sessions.sessions, 1)
	assert.True(t, f.sessions.sessions[0].Active)
	require.Len(t, f.sessions.discussions, 2)
	require.Len(t, f.books.books, 1)
	assert.Equal(t, "Watchmen", f.books.books[0].Title)
}

func TestClubRepository_GetClub_RemoteFailureWritesNothing(t *testing.T) {
	bang := errors.New("edge function unavailable")
	f := newClubRepo(&stubRemote{
		fetchClub: func(string) (*remote.ClubDTO, error) { return nil, bang },
	})

	club, err := f.repo.GetClub(context.Background(), "42")

	assert.ErrorIs(t, err, bang)
	assert.Nil(t, club)
	assert.Empty(t, f.clubs.clubs)
	assert.Empty(t, f.members.members)
	assert.Empty(t, f.sessions.sessions)
	assert.Empty(t, f.books.books)
}

func TestClubRepository_GetClub_DiscussionWriteFailureStillSucceeds(t *testing.T) {
	f := newClubRepo(&stubRemote{
		fetchClub: func(string) (*remote.ClubDTO, error) { return clubDTOFixture(), nil },
	})
	f.sessions.failDiscussions = errors.New("disk full")

	club, err := f.repo.GetClub(context.Background(), "42")

	require.NoError(t, err)

	// The returned club reflects the remote payload exactly, independent of
	// the cache outcome.
	require.NotNil(t, club.ActiveSession)
	require.Len(t, club.ActiveSession.Discussions, 2)
	assert.Equal(t, "Chapters 1-3", club.ActiveSession.Discussions[0].Title)
	assert.Equal(t, "Chapters 4-6", club.ActiveSession.Discussions[1].Title)
	assert.Equal(t, "Watchmen", club.ActiveSession.Book.Title)

	// Earlier writes were not rolled back, the failed one was skipped.
	assert.Len(t, f.clubs.clubs, 1)
	assert.Len(t, f.sessions.sessions, 1)
	assert.Empty(t, f.sessions.discussions)
}

func TestClubRepository_GetClub_ClubRowFailureDoesNotStopRelations(t *testing.T) {
	f := newClubRepo(&stubRemote{
		fetchClub: func(string) (*remote.ClubDTO, error) { return clubDTOFixture(), nil },
	})
	f.clubs.failUpsert = errors.New("table locked")

	club, err := f.repo.GetClub(context.Background(), "42")

	require.NoError(t, err)
	assert.Equal(t, "42", club.ID)
	assert.Empty(t, f.clubs.clubs)
	// Relations are persisted independently of the club row.
	assert.Len(t, f.members.members, 1)
	assert.Len(t, f.sessions.sessions, 1)
}

func TestClubRepository_IsStale(t *testing.T) {
	f := newClubRepo(&stubRemote{
		fetchClub: func(string) (*remote.ClubDTO, error) { return clubDTOFixture(), nil },
	})

	stale, err := f.repo.IsStale("42", time.Hour)
	require.NoError(t, err)
	assert.True(t, stale, "uncached club must be stale")

	_, err = f.repo.GetClub(context.Background(), "42")
	require.NoError(t, err)

	stale, err = f.repo.IsStale("42", time.Hour)
	require.NoError(t, err)
	assert.False(t, stale)

	f.repo.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	stale, err = f.repo.IsStale("42", time.Hour)
	require.NoError(t, err)
	assert.True(t, stale)
}

func TestBookRepository_SearchBooks_EmptyResultIsSuccess(t *testing.T) {
	books := &fakeBookStore{}
	repo := NewBookRepository(&stubRemote{
		searchBooks: func(query string) ([]remote.BookDTO, error) {
			assert.Equal(t, "hobbit", query)
			return []remote.BookDTO{}, nil
		},
	}, books, zerolog.Nop())

	results, err := repo.SearchBooks(context.Background(), "hobbit")

	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestBookRepository_SearchBooks_CachesResults(t *testing.T) {
	books := &fakeBookStore{}
	repo := NewBookRepository(&stubRemote{
		searchBooks: func(string) ([]remote.BookDTO, error) {
			return []remote.BookDTO{{ID: "b-1", Title: "The Hobbit", Author: "J.R.R. Tolkien"}}, nil
		},
	}, books, zerolog.Nop())

	results, err := repo.SearchBooks(context.Background(), "hobbit")

	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Len(t, books.books, 1)
	assert.Equal(t, "The Hobbit", books.books[0].Title)
}

func TestBookRepository_SearchBooks_CacheFailureStillSucceeds(t *testing.T) {
	books := &fakeBookStore{fail: errors.New("db closed")}
	repo := NewBookRepository(&stubRemote{
		searchBooks: func(string) ([]remote.BookDTO, error) {
			return []remote.BookDTO{{ID: "b-1", Title: "The Hobbit"}}, nil
		},
	}, books, zerolog.Nop())

	results, err := repo.SearchBooks(context.Background(), "hobbit")

	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestSessionRepository_GetActiveSession_NoneIsNil(t *testing.T) {
	repo := NewSessionRepository(&stubRemote{
		fetchActiveSession: func(string) (*remote.SessionDTO, error) { return nil, nil },
	}, &fakeSessionStore{}, &fakeBookStore{}, zerolog.Nop())

	session, err := repo.GetActiveSession(context.Background(), "42")

	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestSessionRepository_GetActiveSession_CachesSessionAsActive(t *testing.T) {
	sessions := &fakeSessionStore{}
	repo := NewSessionRepository(&stubRemote{
		fetchActiveSession: func(string) (*remote.SessionDTO, error) {
			return &remote.SessionDTO{
				ID:     "s-1",
				ClubID: "42",
				Book:   remote.BookDTO{ID: "b-1", Title: "Watchmen"},
			}, nil
		},
	}, sessions, &fakeBookStore{}, zerolog.Nop())

	session, err := repo.GetActiveSession(context.Background(), "42")

	require.NoError(t, err)
	require.NotNil(t, session)
	require.Len(t, sessions.sessions, 1)
	assert.True(t, sessions.sessions[0].Active)
}

func TestServerRepository_DeleteServer_RemoteFailurePropagatesReason(t *testing.T) {
	servers := &fakeServerStore{}
	repo := NewServerRepository(&stubRemote{
		deleteServer: func(string) error {
			return &remote.APIError{StatusCode: 200, Code: "active_clubs", Message: "server has active clubs"}
		},
	}, servers, newFakeClubStore(), zerolog.Nop())

	err := repo.DeleteServer(context.Background(), "srv-1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "server has active clubs")
	assert.Empty(t, servers.deleted, "cache row must survive a failed remote delete")
}

func TestServerRepository_DeleteServer_Success(t *testing.T) {
	servers := &fakeServerStore{}
	repo := NewServerRepository(&stubRemote{
		deleteServer: func(serverID string) error {
			assert.Equal(t, "srv-1", serverID)
			return nil
		},
	}, servers, newFakeClubStore(), zerolog.Nop())

	require.NoError(t, repo.DeleteServer(context.Background(), "srv-1"))
	assert.Equal(t, []string{"srv-1"}, servers.deleted)
}

func TestMemberRepository_UpdateMember_RefreshesCache(t *testing.T) {
	members := &fakeMemberStore{}
	handle := "mj"
	repo := NewMemberRepository(&stubRemote{
		updateMember: func(update remote.MemberUpdateDTO) (*remote.MemberDTO, error) {
			assert.Equal(t, remote.FlexID("7"), update.ID)
			return &remote.MemberDTO{ID: "7", DisplayName: update.DisplayName, Handle: update.Handle}, nil
		},
	}, members, zerolog.Nop())

	member, err := repo.UpdateMember(context.Background(), remote.MemberUpdateDTO{
		ID: "7", DisplayName: "MJ Watson", Handle: &handle,
	})

	require.NoError(t, err)
	assert.Equal(t, "mj", member.EffectiveHandle())
	require.Len(t, members.members, 1)
	assert.Equal(t, "MJ Watson", members.members[0].DisplayName)
}
