package entity

import (
	"errors"
	"fmt"
)

// Error classes shared by the engine, persistence and the HTTP layer.
var (
	// ErrNotFound is returned by lookups that match no stored news.
	ErrNotFound = errors.New("news not found")

	// ErrInvalidArgument indicates that caller input (keyword, category, limit) is invalid.
	// It is never retried and is the only error class surfaced as a hard failure by the engine.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrDuplicate indicates that a record with the same unique key already exists.
	// Persistence adapters return it when an insert loses a race on the url constraint.
	ErrDuplicate = errors.New("duplicate record")
)

// ValidationError names the offending input field. It always matches
// ErrInvalidArgument via errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// Unwrap lets callers classify the error with errors.Is(err, ErrInvalidArgument).
func (e *ValidationError) Unwrap() error {
	return ErrInvalidArgument
}
