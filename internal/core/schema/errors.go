package schema

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	// ErrSchemaConflict is returned when two fragments disagree on a shared leaf.
	ErrSchemaConflict = errors.New("schema conflict")

	// ErrValidation is returned when a document violates the schema.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidSchema is returned when the aggregate schema cannot be compiled.
	ErrInvalidSchema = errors.New("invalid schema")
)

// ConflictError reports the location and both values of a merge conflict.
type ConflictError struct {
	Path  string
	Left  any
	Right any
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%v at %s: %v != %v", ErrSchemaConflict, e.Path, e.Left, e.Right)
}

func (e *ConflictError) Unwrap() error {
	return ErrSchemaConflict
}

// ValidationError lists every constraint a document violates.
type ValidationError struct {
	Causes []string
}

func (e *ValidationError) Error() string {
	if len(e.Causes) == 0 {
		return ErrValidation.Error()
	}
	return fmt.Sprintf("%v: %s", ErrValidation, strings.Join(e.Causes, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
