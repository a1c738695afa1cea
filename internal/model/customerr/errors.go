package customerr

import (
	"github.com/pkg/errors"
)

var (
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMissingCredential  = errors.New("missing credentials")
	ErrExpiredToken       = errors.New("token expired")
	ErrInvalidToken       = errors.New("invalid token")
	ErrMissingRangeBounds = errors.New("custom range requires start_date and end_date")
	ErrInvalidID          = errors.New("invalid id")
	ErrNotFound           = errors.New("expense not found")
	ErrNoFieldsToUpdate   = errors.New("nothing to update")

	// ErrUserNotFound stays inside the core; login folds it into
	// ErrInvalidCredentials.
	ErrUserNotFound = errors.New("user not found")
)

// ValidationError is a request that failed schema validation before reaching
// the core. Field names the offending input.
type ValidationError struct {
	Field string
	Err   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Err
	}
	return e.Field + ": " + e.Err
}

func Validation(field, msg string) error {
	return &ValidationError{Field: field, Err: msg}
}
