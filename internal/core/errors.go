// Package core holds the error taxonomy shared by the business-logic
// packages. Handlers map these onto HTTP status codes.
package core

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means a referenced account or party id does not exist.
	ErrNotFound = errors.New("not found")

	// ErrPermissionDenied means the actor lacks rights for a host-only
	// operation, or the viewer is blocked by the profile owner.
	ErrPermissionDenied = errors.New("permission denied")

	ErrSelfFollow = errors.New("cannot follow yourself")
	ErrSelfBlock  = errors.New("cannot block yourself")
)

// ValidationError reports a missing or invalid required field on a
// creation request.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required field: %s", e.Field)
}

// MissingField builds a ValidationError for the named field.
func MissingField(field string) error {
	return &ValidationError{Field: field}
}

// IsValidation reports whether err is a ValidationError and returns it.
func IsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
