package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bookclubhq/bookclub/internal/remote"
	"github.com/bookclubhq/bookclub/internal/services"
)

// ServersController serves servers and their hosted clubs.
type ServersController struct {
	servers *services.ServerService
}

// NewServersController creates a servers controller.
func NewServersController(servers *services.ServerService) *ServersController {
	return &ServersController{servers: servers}
}

// Get fetches a server with its clubs.
func (sc *ServersController) Get(c *gin.Context) {
	serverID, ok := requireParam(c, "id")
	if !ok {
		return
	}

	server, err := sc.servers.GetServer(c.Request.Context(), serverID)
	if err != nil {
		respondRemoteError(c, err)
		return
	}
	c.JSON(http.StatusOK, server)
}

// Delete removes a server. The backend's refusal reason, when present, is
// forwarded verbatim.
func (sc *ServersController) Delete(c *gin.Context) {
	serverID, ok := requireParam(c, "id")
	if !ok {
		return
	}

	if err := sc.servers.DeleteServer(c.Request.Context(), serverID); err != nil {
		var apiErr *remote.APIError
		if errors.As(err, &apiErr) {
			c.JSON(http.StatusConflict, ErrorResponse{Error: apiErr.Message, Code: apiErr.Code})
			return
		}
		respondRemoteError(c, err)
		return
	}
	respondSuccess(c, "server deleted")
}
