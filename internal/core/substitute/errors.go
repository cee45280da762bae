package substitute

import (
	"errors"
	"fmt"
)

// ErrSubstitutionCycle is returned when a leaf keeps producing new markers.
var ErrSubstitutionCycle = errors.New("substitution did not terminate")

// CycleError reports the leaf that exceeded the pass limit and its value at
// the point resolution stopped.
type CycleError struct {
	Path   string
	Value  string
	Passes int
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%v: %s after %d passes (value %q)", ErrSubstitutionCycle, e.Path, e.Passes, e.Value)
}

func (e *CycleError) Unwrap() error {
	return ErrSubstitutionCycle
}
