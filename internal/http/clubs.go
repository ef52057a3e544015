package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bookclubhq/bookclub/internal/auth"
	"github.com/bookclubhq/bookclub/internal/services"
)

// ClubsController serves club data through the sync core.
type ClubsController struct {
	clubs *services.ClubService
	auth  *auth.Service
}

// NewClubsController creates a clubs controller.
func NewClubsController(clubs *services.ClubService, authService *auth.Service) *ClubsController {
	return &ClubsController{clubs: clubs, auth: authService}
}

// GetClub returns a club with its full relation graph, freshly fetched.
func (cc *ClubsController) GetClub(c *gin.Context) {
	clubID, ok := requireParam(c, "id")
	if !ok {
		return
	}

	club, err := cc.clubs.GetClubOverview(c.Request.Context(), clubID)
	if err != nil {
		respondRemoteError(c, err)
		return
	}
	c.JSON(http.StatusOK, club)
}

// GetActiveSession returns the club's current reading session, or 204 when
// the club is between books.
func (cc *ClubsController) GetActiveSession(c *gin.Context) {
	clubID, ok := requireParam(c, "id")
	if !ok {
		return
	}

	session, err := cc.clubs.GetActiveReadingSession(c.Request.Context(), clubID)
	if err != nil {
		respondRemoteError(c, err)
		return
	}
	if session == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, session)
}

// GetOwnClubs lists the signed-in user's clubs.
func (cc *ClubsController) GetOwnClubs(c *gin.Context) {
	user := cc.auth.CurrentUser().Get()
	if user == nil {
		respondError(c, http.StatusUnauthorized, "not signed in")
		return
	}

	clubs, err := cc.clubs.GetClubsForUser(c.Request.Context(), user.ID)
	if err != nil {
		respondRemoteError(c, err)
		return
	}
	c.JSON(http.StatusOK, clubs)
}
