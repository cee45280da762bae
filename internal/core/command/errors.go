package command

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingField is returned when a required document field is absent or has the wrong type.
	ErrMissingField = errors.New("missing field")

	// ErrUnsupportedMount is returned for mount types the run command cannot express.
	ErrUnsupportedMount = errors.New("unsupported mount")

	// ErrInvalidPublish is returned when a published port does not parse.
	ErrInvalidPublish = errors.New("invalid published port")
)

// FieldError identifies the document field a formatting error refers to.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

func missing(field, want string) error {
	return &FieldError{Field: field, Err: fmt.Errorf("%w: expected %s", ErrMissingField, want)}
}
