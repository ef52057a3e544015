package remote

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthorized = errors.New("unauthorized: access token rejected")
	ErrRateLimited  = errors.New("rate limited by backend")
	ErrNotFound     = errors.New("resource not found")
)

// ServerError indicates a 5xx response from an edge function.
type ServerError struct {
	StatusCode int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error: status %d", e.StatusCode)
}

// APIError is a structured error reported by an edge function in its
// response envelope.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (%s)", e.Message, e.Code)
	}
	return e.Message
}
