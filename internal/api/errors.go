package api

import (
	"errors"
	"fmt"
)

// NetworkError wraps a transport-level failure (DNS, connect, timeout).
// The request may or may not have reached the backend.
type NetworkError struct {
	Op  string
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// HTTPError is returned when the backend answered with a non-2xx status.
type HTTPError struct {
	Op     string
	URL    string
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d", e.Op, e.URL, e.Status)
}

// IsStatus reports whether err is an HTTPError with the given status code.
func IsStatus(err error, status int) bool {
	var he *HTTPError
	return errors.As(err, &he) && he.Status == status
}

// IsUnauthorized reports whether the backend rejected the session credential.
func IsUnauthorized(err error) bool {
	return IsStatus(err, 401)
}
