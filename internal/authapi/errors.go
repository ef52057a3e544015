package authapi

import "fmt"

// APIError is an error response from the auth service. Code carries the
// backend's structured error code when present; Message is the raw text the
// auth service classification falls back to.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("auth request failed with status %d", e.StatusCode)
	}
	return e.Message
}
