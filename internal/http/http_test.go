package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookclubhq/bookclub/internal/database"
	"github.com/bookclubhq/bookclub/internal/domain"
	"github.com/bookclubhq/bookclub/internal/remote"
	"github.com/bookclubhq/bookclub/internal/services"
)

func setupHealthTestDB(t *testing.T) (*database.Database, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbPath := "./test_health_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath, zerolog.Nop())
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return db, cleanup
}

func TestHealthController_Status(t *testing.T) {
	db, cleanup := setupHealthTestDB(t)
	defer cleanup()

	controller := NewHealthController(db, "1.0.0")
	router := gin.New()
	router.GET("/health", controller.Status)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "healthy", response.Status)
	assert.Equal(t, "1.0.0", response.Version)
	assert.Equal(t, "ok", response.Checks["database"])
}

func TestHealthController_NoDatabaseConfigured(t *testing.T) {
	gin.SetMode(gin.TestMode)

	controller := NewHealthController(nil, "1.0.0")
	router := gin.New()
	router.GET("/health", controller.Status)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)

	// An absent cache is a configuration state, not a failure.
	assert.Equal(t, http.StatusOK, w.Code)

	var response HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "healthy", response.Status)
	assert.Equal(t, "not configured", response.Checks["database"])
}

type stubBookSearcher struct {
	books []domain.Book
	err   error
}

func (s *stubBookSearcher) SearchBooks(context.Context, string) ([]domain.Book, error) {
	return s.books, s.err
}

func TestBooksController_Search(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("empty result is 200 with empty array", func(t *testing.T) {
		controller := NewBooksController(services.NewBookService(&stubBookSearcher{books: []domain.Book{}}))
		router := gin.New()
		router.GET("/api/books/search", controller.Search)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/api/books/search?q=hobbit", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, "[]", w.Body.String())
	})

	t.Run("missing query is 400", func(t *testing.T) {
		controller := NewBooksController(services.NewBookService(&stubBookSearcher{}))
		router := gin.New()
		router.GET("/api/books/search", controller.Search)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/api/books/search", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("remote not found maps to 404", func(t *testing.T) {
		controller := NewBooksController(services.NewBookService(&stubBookSearcher{err: remote.ErrNotFound}))
		router := gin.New()
		router.GET("/api/books/search", controller.Search)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/api/books/search?q=x", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

type stubServerAccess struct {
	server    *domain.Server
	getErr    error
	deleteErr error
}

func (s *stubServerAccess) GetServer(context.Context, string) (*domain.Server, error) {
	return s.server, s.getErr
}

func (s *stubServerAccess) DeleteServer(context.Context, string) error {
	return s.deleteErr
}

func TestServersController_Delete(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("refusal reason forwarded with 409", func(t *testing.T) {
		stub := &stubServerAccess{
			deleteErr: &remote.APIError{StatusCode: 200, Code: "active_clubs", Message: "server has active clubs"},
		}
		controller := NewServersController(services.NewServerService(stub))
		router := gin.New()
		router.DELETE("/api/servers/:id", controller.Delete)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodDelete, "/api/servers/srv-1", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)

		var response ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "server has active clubs", response.Error)
		assert.Equal(t, "active_clubs", response.Code)
	})

	t.Run("success", func(t *testing.T) {
		controller := NewServersController(services.NewServerService(&stubServerAccess{}))
		router := gin.New()
		router.DELETE("/api/servers/:id", controller.Delete)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodDelete, "/api/servers/srv-1", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

type stubClubGetter struct {
	club *domain.Club
	err  error
}

func (s *stubClubGetter) GetClub(context.Context, string) (*domain.Club, error) {
	return s.club, s.err
}

func (s *stubClubGetter) GetClubsForUser(context.Context, string) ([]domain.Club, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []domain.Club{*s.club}, nil
}

type stubSessionGetter struct {
	session *domain.Session
	err     error
}

func (s *stubSessionGetter) GetActiveSession(context.Context, string) (*domain.Session, error) {
	return s.session, s.err
}

func TestClubsController_GetClub(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("returns club graph", func(t *testing.T) {
		club := &domain.Club{ID: "42", Name: "Graphic Novels"}
		svc := services.NewClubService(&stubClubGetter{club: club}, &stubSessionGetter{}, zerolog.Nop())
		controller := NewClubsController(svc, nil)
		router := gin.New()
		router.GET("/api/clubs/:id", controller.GetClub)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/api/clubs/42", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var got domain.Club
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, "Graphic Novels", got.Name)
	})

	t.Run("remote failure maps to 502", func(t *testing.T) {
		svc := services.NewClubService(&stubClubGetter{err: errors.New("edge function down")}, &stubSessionGetter{}, zerolog.Nop())
		controller := NewClubsController(svc, nil)
		router := gin.New()
		router.GET("/api/clubs/:id", controller.GetClub)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/api/clubs/42", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadGateway, w.Code)
	})

	t.Run("no active session is 204", func(t *testing.T) {
		svc := services.NewClubService(&stubClubGetter{}, &stubSessionGetter{session: nil}, zerolog.Nop())
		controller := NewClubsController(svc, nil)
		router := gin.New()
		router.GET("/api/clubs/:id/session", controller.GetActiveSession)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/api/clubs/42/session", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}
