package http

import (
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/gin-gonic/gin"

	"github.com/bookclubhq/bookclub/internal/auth"
	"github.com/bookclubhq/bookclub/internal/services"
)

const sessionKeyUserID = "user_id"

// AuthController bridges the auth service to the HTTP surface.
type AuthController struct {
	auth     *auth.Service
	account  *services.AccountService
	sessions *scs.SessionManager
}

// NewAuthController creates an auth controller.
func NewAuthController(authService *auth.Service, account *services.AccountService, sessions *scs.SessionManager) *AuthController {
	return &AuthController{auth: authService, account: account, sessions: sessions}
}

// RegisterRoutes attaches the auth endpoints.
func (a *AuthController) RegisterRoutes(router *gin.Engine) {
	group := router.Group("/api/auth")
	{
		group.POST("/signup", a.SignUp)
		group.POST("/login", a.Login)
		group.POST("/logout", a.Logout)
		group.POST("/refresh", a.Refresh)
		group.GET("/me", a.Me)
		group.GET("/oauth/:provider", a.OAuthStart)
	}

	// Deep-link bridge: providers redirect here after authorization.
	router.GET("/auth/callback", a.OAuthCallback)
}

type credentialsRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (a *AuthController) SignUp(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "email and password are required")
		return
	}

	user, err := a.auth.SignUpWithEmail(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondAuthError(c, err)
		return
	}

	a.rememberUser(c, user.ID)
	c.JSON(http.StatusCreated, user)
}

func (a *AuthController) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "email and password are required")
		return
	}

	user, err := a.auth.SignInWithEmail(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondAuthError(c, err)
		return
	}

	a.rememberUser(c, user.ID)
	c.JSON(http.StatusOK, user)
}

// Logout signs out remotely and wipes the local cache. A remote failure is
// reported, but the local session is gone either way.
func (a *AuthController) Logout(c *gin.Context) {
	if a.sessions != nil {
		_ = a.sessions.Destroy(c.Request.Context())
	}

	if err := a.account.SignOutAndWipe(c.Request.Context()); err != nil {
		respondAuthError(c, err)
		return
	}
	respondSuccess(c, "signed out")
}

func (a *AuthController) Refresh(c *gin.Context) {
	if err := a.auth.RefreshSession(c.Request.Context()); err != nil {
		respondAuthError(c, err)
		return
	}
	respondSuccess(c, "session refreshed")
}

func (a *AuthController) Me(c *gin.Context) {
	user := a.auth.CurrentUser().Get()
	if user == nil {
		respondError(c, http.StatusUnauthorized, "not signed in")
		return
	}
	c.JSON(http.StatusOK, user)
}

// OAuthStart returns the provider authorization URL for the client to open
// externally.
func (a *AuthController) OAuthStart(c *gin.Context) {
	provider, ok := requireParam(c, "provider")
	if !ok {
		return
	}

	var (
		authorizeURL string
		err          error
	)
	switch provider {
	case auth.ProviderDiscord:
		authorizeURL, err = a.auth.SignInWithDiscord()
	case auth.ProviderGoogle:
		authorizeURL, err = a.auth.SignInWithGoogle()
	default:
		respondBadRequest(c, "unsupported provider")
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"authorize_url": authorizeURL})
}

// OAuthCallback completes the flow from the provider redirect.
func (a *AuthController) OAuthCallback(c *gin.Context) {
	user, err := a.auth.HandleOAuthCallback(c.Request.Context(), c.Request.URL.String())
	if err != nil {
		respondAuthError(c, err)
		return
	}

	a.rememberUser(c, user.ID)
	c.JSON(http.StatusOK, user)
}

func (a *AuthController) rememberUser(c *gin.Context, userID string) {
	if a.sessions == nil {
		return
	}
	if err := a.sessions.RenewToken(c.Request.Context()); err != nil {
		return
	}
	a.sessions.Put(c.Request.Context(), sessionKeyUserID, userID)
}
