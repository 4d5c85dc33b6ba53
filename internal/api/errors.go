package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnauthorized is matched by errors.Is for 401 responses.
var ErrUnauthorized = errors.New("api: unauthorized")

// ErrNotFound is matched by errors.Is for 404 responses.
var ErrNotFound = errors.New("api: not found")

// Error is a procedure failure reported by the server.
type Error struct {
	Procedure string
	Status    int
	Code      string
	Message   string
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api %s: %s (%d %s)", e.Procedure, e.Message, e.Status, e.Code)
	}
	return fmt.Sprintf("api %s: %s (%d)", e.Procedure, e.Message, e.Status)
}

func (e *Error) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	}
	return nil
}

// Temporary reports whether retrying the call may succeed.
func (e *Error) Temporary() bool {
	return e.Status >= 500 || e.Status == http.StatusTooManyRequests
}
