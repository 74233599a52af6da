package types

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned when a referenced record id is absent.
	ErrNotFound = errors.New("record not found")

	// ErrConflict is returned when a request has already moved past the
	// state a transition expects.
	ErrConflict = errors.New("state already transitioned")

	// ErrForbidden is returned when the caller acts on another party's
	// resource.
	ErrForbidden = errors.New("not permitted")

	// ErrUnauthenticated is returned when no logged-in session is present.
	ErrUnauthenticated = errors.New("not logged in")

	// ErrInvalidCredentials is returned by the identity provider on a
	// failed sign-in.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// ValidationError carries per-field messages for a rejected payload.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}

	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	return fmt.Sprintf("validation failed: %s", strings.Join(names, ", "))
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}
