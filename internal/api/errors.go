package api

import (
	"errors"
	"fmt"
)

// Common backend client errors
var (
	// ErrUnauthorized is returned when the backend rejects the bearer token.
	// The user must log in again.
	ErrUnauthorized = errors.New("not authorized: please log in")

	// ErrNotFound is returned when the requested document does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for transport failures: connection refused,
	// DNS failure, or a request that timed out before the backend answered.
	ErrNetwork = errors.New("network error contacting billing backend")

	// ErrBackend is returned for any non-2xx response that is not covered
	// by a more specific sentinel.
	ErrBackend = errors.New("billing backend rejected the request")
)

// APIError wraps a non-2xx backend response with the status code and the
// backend's own message, when it supplied one.
type APIError struct {
	// Op is the operation that failed (e.g. "CreateInvoice").
	Op string

	// StatusCode is the HTTP status of the response.
	StatusCode int

	// Message is the backend-supplied error message, if any.
	Message string

	// Err is the sentinel this response maps to.
	Err error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %s failed (status %d): %s", e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api: %s failed (status %d): %v", e.Op, e.StatusCode, e.Err)
}

// Unwrap returns the sentinel error for error matching.
func (e *APIError) Unwrap() error {
	return e.Err
}

// RequestError wraps a transport-level failure. No response was received,
// so the operation may or may not have reached the backend.
type RequestError struct {
	// Op is the operation that failed.
	Op string

	// Err is the underlying transport error.
	Err error

	// Timeout reports whether the failure was a timeout.
	Timeout bool
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("api: %s timed out: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("api: %s: %v", e.Op, e.Err)
}

// Unwrap marks every RequestError as an ErrNetwork.
func (e *RequestError) Unwrap() error {
	return ErrNetwork
}

// IsNetwork reports whether err is a transport failure (including timeouts)
// as opposed to a backend rejection.
func IsNetwork(err error) bool {
	return errors.Is(err, ErrNetwork)
}
