package api

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is a failure the tracker API reported with an HTTP status. It is
// distinct from transport errors (no status available), which surface as
// wrapped errors with no *APIError in their chain.
type APIError struct {
	// Status is the HTTP status code of the failing response.
	Status int

	// Message is the server's human-readable error message, surfaced
	// verbatim so field-level validation errors reach the user unchanged.
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("tracker api: %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("tracker api: %d %s", e.Status, http.StatusText(e.Status))
}

// ErrSessionExpired is the synthesized failure returned when the silent
// refresh itself is rejected with 403: the refresh credential is gone and the
// user must log in again. The gateway returns this exact value so callers can
// match it with errors.Is.
var ErrSessionExpired = &APIError{
	Status:  http.StatusForbidden,
	Message: "Your login has expired",
}

// AsAPIError extracts an *APIError from err's chain, reporting whether the
// failure carries a server status at all.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
