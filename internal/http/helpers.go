package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bookclubhq/bookclub/internal/auth"
	"github.com/bookclubhq/bookclub/internal/remote"
)

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"` // machine-readable error code
}

// SuccessResponse is a standard success response with optional data.
type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// --- Error Response Helpers ---

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message})
}

// respondNotFound sends a 404 Not Found response.
func respondNotFound(c *gin.Context, resource string) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: resource + " not found"})
}

// respondError sends an error response with the given status code.
func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{Error: message})
}

// respondSuccess sends a 200 OK response with a message.
func respondSuccess(c *gin.Context, message string) {
	c.JSON(http.StatusOK, SuccessResponse{Message: message})
}

// respondRemoteError maps a repository/remote failure onto an HTTP status.
func respondRemoteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, remote.ErrNotFound):
		respondNotFound(c, "resource")
	case errors.Is(err, remote.ErrUnauthorized):
		respondError(c, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, remote.ErrRateLimited):
		respondError(c, http.StatusTooManyRequests, "rate limited")
	default:
		respondError(c, http.StatusBadGateway, err.Error())
	}
}

// respondAuthError maps a classified auth error onto an HTTP status.
func respondAuthError(c *gin.Context, err error) {
	var classified *auth.Error
	if !errors.As(err, &classified) {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	status := http.StatusBadRequest
	switch classified.Kind {
	case auth.KindInvalidCredentials, auth.KindUserNotFound:
		status = http.StatusUnauthorized
	case auth.KindUserExists:
		status = http.StatusConflict
	case auth.KindRateLimited:
		status = http.StatusTooManyRequests
	case auth.KindNoConnection:
		status = http.StatusBadGateway
	case auth.KindAuthFailed, auth.KindUnexpected:
		status = http.StatusInternalServerError
	}
	c.JSON(status, ErrorResponse{Error: classified.Error(), Code: string(classified.Kind)})
}

// requireParam extracts a required URL parameter or responds 400.
func requireParam(c *gin.Context, name string) (string, bool) {
	value := c.Param(name)
	if value == "" {
		respondBadRequest(c, name+" is required")
		return "", false
	}
	return value, true
}
