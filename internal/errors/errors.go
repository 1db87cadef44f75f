// internal/errors/errors.go
package errors

import "fmt"

// InvalidInputError is returned when a request fails validation before any
// external call is made. It maps to a 400 at the API boundary.
type InvalidInputError struct {
	Message string
}

func (e *InvalidInputError) Error() string {
	return e.Message
}

// NewInvalidInput builds an InvalidInputError with a formatted message.
func NewInvalidInput(format string, args ...any) *InvalidInputError {
	return &InvalidInputError{Message: fmt.Sprintf(format, args...)}
}

// UpstreamError is returned when the GitHub API call fails. Status is the
// HTTP status code received, or 0 for transport-level failures.
type UpstreamError struct {
	Status  int
	Message string
	Err     error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// RateLimited reports whether the upstream rejected the call with a 403,
// which GitHub uses for rate-limit exhaustion.
func (e *UpstreamError) RateLimited() bool {
	return e.Status == 403
}

// InvalidQuery reports whether the upstream rejected the query itself (422).
func (e *UpstreamError) InvalidQuery() bool {
	return e.Status == 422
}
