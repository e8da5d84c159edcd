package api

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure classes callers branch on. A timeout is
// distinct from a server error; a 401 is recovered locally and should reach
// pages only as a redirect to login, never as a raw error message.
var (
	// ErrUnauthorized is returned when any authenticated call gets a 401.
	// The local auth entries have already been purged when this is returned.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrTimeout is returned when a request exceeds the fixed request bound.
	// Requests are never retried.
	ErrTimeout = errors.New("request timed out")
)

// StatusError is a non-401 HTTP error response.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("server returned %d", e.Status)
}
