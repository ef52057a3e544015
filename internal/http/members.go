package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bookclubhq/bookclub/internal/auth"
	"github.com/bookclubhq/bookclub/internal/remote"
	"github.com/bookclubhq/bookclub/internal/services"
)

// MembersController serves member profiles.
type MembersController struct {
	members *services.MemberService
	auth    *auth.Service
}

// NewMembersController creates a members controller.
func NewMembersController(members *services.MemberService, authService *auth.Service) *MembersController {
	return &MembersController{members: members, auth: authService}
}

// Get fetches a member profile by id.
func (mc *MembersController) Get(c *gin.Context) {
	memberID, ok := requireParam(c, "id")
	if !ok {
		return
	}

	member, err := mc.members.GetMemberProfile(c.Request.Context(), memberID)
	if err != nil {
		respondRemoteError(c, err)
		return
	}
	c.JSON(http.StatusOK, member)
}

// GetOwn resolves the member profile behind the signed-in user.
func (mc *MembersController) GetOwn(c *gin.Context) {
	user := mc.auth.CurrentUser().Get()
	if user == nil {
		respondError(c, http.StatusUnauthorized, "not signed in")
		return
	}

	member, err := mc.members.GetOwnProfile(c.Request.Context(), user.ID)
	if err != nil {
		respondRemoteError(c, err)
		return
	}
	c.JSON(http.StatusOK, member)
}

type avatarImportRequest struct {
	URL string `json:"url" binding:"required"`
}

// ImportAvatar copies an image from a user-supplied URL into the backend
// and sets it as the member's avatar.
func (mc *MembersController) ImportAvatar(c *gin.Context) {
	memberID, ok := requireParam(c, "id")
	if !ok {
		return
	}

	var req avatarImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "url is required")
		return
	}

	member, err := mc.members.ImportAvatar(c.Request.Context(), memberID, req.URL)
	if err != nil {
		respondRemoteError(c, err)
		return
	}
	c.JSON(http.StatusOK, member)
}

type memberUpdateRequest struct {
	DisplayName string  `json:"display_name" binding:"required"`
	Handle      *string `json:"handle"`
	AvatarURL   *string `json:"avatar_url"`
}

// Update writes member profile changes.
func (mc *MembersController) Update(c *gin.Context) {
	memberID, ok := requireParam(c, "id")
	if !ok {
		return
	}

	var req memberUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "display_name is required")
		return
	}

	member, err := mc.members.UpdateMemberProfile(c.Request.Context(), remote.MemberUpdateDTO{
		ID:          remote.FlexID(memberID),
		DisplayName: req.DisplayName,
		Handle:      req.Handle,
		AvatarURL:   req.AvatarURL,
	})
	if err != nil {
		respondRemoteError(c, err)
		return
	}
	c.JSON(http.StatusOK, member)
}
