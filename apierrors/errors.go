// Package apierrors defines the error taxonomy shared by the admin client:
// network failures (retryable), auth failures (session teardown), local
// validation failures, not-found, and other server responses.
package apierrors

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when the backend reports an unknown resource id.
// A repeated delete of an already-deleted ad surfaces this, not a crash.
var ErrNotFound = errors.New("resource not found")

// NetworkError wraps a transport-level failure: no response, connection
// reset, timeout. These are the only errors the client retries.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// AuthError reports an authentication failure. By the time the caller sees
// it the session has already been torn down; the request is never retried.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string { return e.Message }

// ValidationError reports a locally rejected input. It is raised before any
// network call is issued.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// ServerError reports a non-auth 4xx/5xx response. Surfaced to the caller
// untouched, never retried automatically.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.StatusCode)
	}
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// IsRetryable reports whether err may be retried by the request loop.
// Only transport failures qualify; auth failures are terminal for the
// session, everything else is terminal for the request.
func IsRetryable(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// IsAuth reports whether err is an authentication failure.
func IsAuth(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

// IsValidation reports whether err was rejected locally before any
// network call.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
