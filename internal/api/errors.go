package api

import (
	"errors"
	"fmt"
)

// ErrUnauthorized is returned when an authorized endpoint answers 401,
// signalling that the session token is invalid or expired.
var ErrUnauthorized = errors.New("unauthorized")

// ServerError is a non-2xx response from the backend, carrying the
// server-provided detail message when one was present in the body.
type ServerError struct {
	Status int
	Detail string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Detail)
}
