package auth

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/bookclubhq/bookclub/internal/authapi"
)

// Kind is the closed set of classified authentication failures surfaced to
// callers. Anything the classifier cannot place lands on KindAuthFailed or,
// when there is no message to work with, KindUnexpected.
type Kind string

const (
	KindInvalidCredentials Kind = "invalid_credentials"
	KindEmailNotConfirmed  Kind = "email_not_confirmed"
	KindNoConnection       Kind = "no_connection"
	KindRateLimited        Kind = "rate_limited"
	KindUserNotFound       Kind = "user_not_found"
	KindWeakPassword       Kind = "weak_password"
	KindUserExists         Kind = "user_exists"
	KindAuthFailed         Kind = "auth_failed"
	KindUnexpected         Kind = "unexpected"
)

// Error is a classified authentication error. It wraps the underlying cause
// so callers can still reach transport details via errors.As.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.cause }

// Is allows errors.Is comparisons against a bare &Error{Kind: ...} target.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return e.Kind == other.Kind
}

// codeKinds maps the structured error codes the backend emits to kinds.
// Preferred over message matching whenever a code is present.
var codeKinds = map[string]Kind{
	"invalid_credentials":     KindInvalidCredentials,
	"invalid_grant":           KindInvalidCredentials,
	"email_not_confirmed":     KindEmailNotConfirmed,
	"over_request_rate_limit": KindRateLimited,
	"user_not_found":          KindUserNotFound,
	"weak_password":           KindWeakPassword,
	"user_already_exists":     KindUserExists,
	"email_exists":            KindUserExists,
}

// messageKinds is the substring fallback for backends that only return a
// human-readable message. Matching is case-insensitive and order matters:
// the first hit wins.
var messageKinds = []struct {
	substr string
	kind   Kind
}{
	{"invalid login credentials", KindInvalidCredentials},
	{"email not confirmed", KindEmailNotConfirmed},
	{"unable to resolve host", KindNoConnection},
	{"connection refused", KindNoConnection},
	{"no address associated", KindNoConnection},
	{"rate limit", KindRateLimited},
	{"too many requests", KindRateLimited},
	{"user not found", KindUserNotFound},
	{"password should be", KindWeakPassword},
	{"weak password", KindWeakPassword},
	{"already registered", KindUserExists},
	{"already exists", KindUserExists},
}

// Classify maps an arbitrary error from the auth client into the closed
// Kind set. Structured codes win over message substrings; substrings are a
// best-effort fallback for older backend wordings.
func Classify(err error) *Error {
	var classified *Error
	if errors.As(err, &classified) {
		return classified
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindNoConnection, Message: err.Error(), cause: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return &Error{Kind: KindNoConnection, Message: err.Error(), cause: err}
	}

	var apiErr *authapi.APIError
	if errors.As(err, &apiErr) {
		if kind, ok := codeKinds[apiErr.Code]; ok {
			return &Error{Kind: kind, Message: apiErr.Message, cause: err}
		}
		if apiErr.StatusCode == 429 {
			return &Error{Kind: KindRateLimited, Message: apiErr.Message, cause: err}
		}
	}

	message := err.Error()
	lowered := strings.ToLower(message)
	for _, m := range messageKinds {
		if strings.Contains(lowered, m.substr) {
			return &Error{Kind: m.kind, Message: message, cause: err}
		}
	}

	if strings.TrimSpace(message) == "" {
		return &Error{Kind: KindUnexpected, Message: "unexpected error", cause: err}
	}
	return &Error{Kind: KindAuthFailed, Message: message, cause: err}
}
