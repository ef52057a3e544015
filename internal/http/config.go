package http

import (
	"github.com/alexedwards/scs/v2"
	"github.com/rs/zerolog"

	"github.com/bookclubhq/bookclub/internal/auth"
	"github.com/bookclubhq/bookclub/internal/database"
	"github.com/bookclubhq/bookclub/internal/services"
)

// RouterConfig contains all dependencies and configuration needed to create
// the HTTP router.
type RouterConfig struct {
	// Core dependencies
	AuthService    *auth.Service
	ClubService    *services.ClubService
	BookService    *services.BookService
	MemberService  *services.MemberService
	ServerService  *services.ServerService
	AccountService *services.AccountService
	Database       *database.Database

	// Session and CSRF
	SessionManager *scs.SessionManager
	CSRFSecret     []byte
	SecureCookies  bool

	// Application info
	Version string

	Log zerolog.Logger
}
