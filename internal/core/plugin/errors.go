package plugin

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	// ErrPluginResolution is returned when a directive names an unknown plugin.
	ErrPluginResolution = errors.New("plugin resolution failed")

	// ErrInvalidDirective is returned when the `plugins` field has an unsupported shape.
	ErrInvalidDirective = errors.New("invalid plugins directive")

	// ErrPluginExecution is returned when a plugin's transform fails.
	ErrPluginExecution = errors.New("plugin execution failed")

	// ErrNilDocument is returned when a plugin's transform returns no document.
	ErrNilDocument = errors.New("plugin returned a nil document")

	// ErrInvalidDescriptor is returned when registering an incomplete descriptor.
	ErrInvalidDescriptor = errors.New("invalid plugin descriptor")

	// ErrDuplicatePlugin is returned when a plugin name is registered twice.
	ErrDuplicatePlugin = errors.New("duplicate plugin")

	// ErrDuplicateArgument is returned when two selected plugins declare the same argument.
	ErrDuplicateArgument = errors.New("duplicate argument")
)

// ResolutionError names the unknown plugin and the plugins that are known.
type ResolutionError struct {
	Name      string
	Available []string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("%v: unknown plugin %q (available: %s)",
		ErrPluginResolution, e.Name, strings.Join(e.Available, ", "))
}

func (e *ResolutionError) Unwrap() error {
	return ErrPluginResolution
}

// ExecutionError wraps the failure of a single plugin.
type ExecutionError struct {
	Plugin string
	Err    error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%v: %s: %v", ErrPluginExecution, e.Plugin, e.Err)
}

// Unwrap exposes both ErrPluginExecution and the underlying cause.
func (e *ExecutionError) Unwrap() []error {
	return []error{ErrPluginExecution, e.Err}
}
