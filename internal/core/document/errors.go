package document

import (
	"errors"
	"fmt"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	// ErrInvalidPath is returned when a path cannot be made absolute or
	// does not address a writable location.
	ErrInvalidPath = errors.New("invalid path")

	// ErrPathNotFound is returned when a segment of a path is absent.
	ErrPathNotFound = errors.New("path not found")

	// ErrTypeMismatch is returned when traversal meets a scalar where a
	// mapping or sequence is expected.
	ErrTypeMismatch = errors.New("type mismatch")
)

// PathError wraps errors with the operation and the path it was applied to.
type PathError struct {
	Op   string // get, set, setdefault, pop, append, split
	Path string
	Err  error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PathError) Unwrap() error {
	return e.Err
}

// NewPathError creates a new PathError.
func NewPathError(op, path string, err error) *PathError {
	return &PathError{
		Op:   op,
		Path: path,
		Err:  err,
	}
}
