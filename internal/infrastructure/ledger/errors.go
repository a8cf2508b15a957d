package ledger

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is a non-2xx response from the ledger.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("ledger API error (status %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("ledger API request failed with status %d", e.Status)
}

func (e *APIError) IsNotFound() bool {
	return e.Status == http.StatusNotFound
}

// IsUnauthorized reports a rejected or expired credential.
func (e *APIError) IsUnauthorized() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}

// TransportError means no usable response arrived: connection failures,
// timeouts, cancellation and unreadable bodies.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("ledger transport error: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// AsAPIError unwraps err to an *APIError.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

func IsNotFound(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.IsNotFound()
}

func IsUnauthorized(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.IsUnauthorized()
}

// IsTransport reports whether err carries a *TransportError.
func IsTransport(err error) bool {
	var tErr *TransportError
	return errors.As(err, &tErr)
}

// ErrorResponse is the error body the ledger sends with non-2xx statuses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
