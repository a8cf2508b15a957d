// Package validation carries the error type for client-side input checks
// that fail before any request is made.
package validation

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalid matches every *Error via errors.Is.
var ErrInvalid = errors.New("validation failed")

type Error struct {
	Field  string
	Reason string
}

func (e *Error) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *Error) Is(target error) bool {
	return target == ErrInvalid
}

func New(field, reason string) error {
	return &Error{Field: field, Reason: reason}
}

// Required rejects blank values.
func Required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return New(field, "is required")
	}
	return nil
}

// As unwraps err to a *Error.
func As(err error) (*Error, bool) {
	var vErr *Error
	if errors.As(err, &vErr) {
		return vErr, true
	}
	return nil, false
}
