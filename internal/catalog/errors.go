package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrUnreachable indicates the catalog could not be contacted.
	ErrUnreachable = errors.New("catalog unreachable")

	// ErrUnauthorized indicates the catalog rejected the credentials.
	ErrUnauthorized = errors.New("catalog authentication required")

	// ErrMissingDestination indicates Submit was called without a destination.
	ErrMissingDestination = errors.New("destination id is required")

	// ErrInvalidBaseURL indicates the configured catalog URL is unusable.
	ErrInvalidBaseURL = errors.New("invalid catalog base URL")
)

// APIError is a non-success response from the catalog.
type APIError struct {
	// Status is the HTTP status code.
	Status int
	// Message is the server-provided message, or a generic one.
	Message string
}

// Error implements error.
func (e *APIError) Error() string {
	return fmt.Sprintf("catalog: %s (status %d)", e.Message, e.Status)
}
