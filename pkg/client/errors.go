package client

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingCredentials is returned by New without an API key or base URL.
	ErrMissingCredentials = errors.New("missing credentials: pass an API key and base URL or run `lbc login`")
	// ErrNoOperations is returned when submitting experiments that contain no operations.
	ErrNoOperations = errors.New("experiment has no operations")
	// ErrTimeout is returned by Wait when the job does not finish in time.
	ErrTimeout = errors.New("job did not complete in time")
)

// APIError is a non-2xx response from the job server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (%d): %s", e.StatusCode, e.Message)
}
