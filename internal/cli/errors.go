package cli

import (
	"errors"
	"fmt"

	"github.com/artpar/di/internal/core/plugin"
	"github.com/artpar/di/internal/core/schema"
)

// =============================================================================
// Exit Codes
// =============================================================================

const (
	ExitSuccess       = 0
	ExitConfigError   = 1
	ExitUsageError    = 2
	ExitPluginFailure = plugin.StatusPluginFailure
)

// ErrUsage marks invalid command lines.
var ErrUsage = errors.New("invalid usage")

// ExitError carries the process exit code of a failed invocation. Err is
// nil when the code is the status returned by docker.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode maps an error returned by a command onto a process exit code.
func ExitCode(err error) int {
	var exitErr *ExitError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.As(err, &exitErr):
		return exitErr.Code
	case errors.Is(err, plugin.ErrPluginExecution):
		return ExitPluginFailure
	case errors.Is(err, plugin.ErrPluginResolution),
		errors.Is(err, plugin.ErrInvalidDirective),
		errors.Is(err, plugin.ErrDuplicateArgument),
		errors.Is(err, schema.ErrSchemaConflict),
		errors.Is(err, ErrUsage):
		return ExitUsageError
	default:
		return ExitConfigError
	}
}
