// Package http exposes the application over a JSON API: auth, clubs, books,
// members, servers, health, metrics and a websocket state feed.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		protect := csrf.Protect(cfg.CSRFSecret,
			csrf.Secure(cfg.SecureCookies),
			csrf.Path("/"),
		)
		router.Use(adapt(protect))
	}

	if cfg.SessionManager != nil {
		router.Use(adapt(cfg.SessionManager.LoadAndSave))
	}

	health := NewHealthController(cfg.Database, cfg.Version)
	router.GET("/health", health.Status)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authController := NewAuthController(cfg.AuthService, cfg.AccountService, cfg.SessionManager)
	authController.RegisterRoutes(router)

	clubs := NewClubsController(cfg.ClubService, cfg.AuthService)
	api := router.Group("/api")
	{
		api.GET("/clubs/:id", clubs.GetClub)
		api.GET("/clubs/:id/session", clubs.GetActiveSession)
		api.GET("/me/clubs", clubs.GetOwnClubs)

		books := NewBooksController(cfg.BookService)
		api.GET("/books/search", books.Search)

		members := NewMembersController(cfg.MemberService, cfg.AuthService)
		api.GET("/members/:id", members.Get)
		api.GET("/me/member", members.GetOwn)
		api.PATCH("/members/:id", members.Update)
		api.POST("/members/:id/avatar", members.ImportAvatar)

		servers := NewServersController(cfg.ServerService)
		api.GET("/servers/:id", servers.Get)
		api.DELETE("/servers/:id", servers.Delete)
	}

	stateFeed := NewStateFeed(cfg.AuthService, cfg.Log)
	router.GET("/ws/state", stateFeed.Serve)

	return router
}

// adapt bridges a net/http middleware into the gin chain.
func adapt(mw func(http.Handler) http.Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		reached := false
		wrapped := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reached = true
			c.Request = r
			c.Next()
		}))
		wrapped.ServeHTTP(c.Writer, c.Request)
		if !reached {
			c.Abort()
		}
	}
}
