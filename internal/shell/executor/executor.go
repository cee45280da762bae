// Package executor runs external commands attached to the terminal.
package executor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
)

// ErrEmptyCommand is returned for an empty argv.
var ErrEmptyCommand = errors.New("empty command")

// Executor runs commands with the configured standard streams. Zero-value
// streams fall back to the process's own.
type Executor struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

// New returns an Executor attached to the process's standard streams.
func New(logger *slog.Logger) *Executor {
	return &Executor{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr, Logger: logger}
}

// Run executes argv and waits for it to finish. A command that starts and
// exits with a non-zero status is not an error; its status is returned.
func (e *Executor) Run(ctx context.Context, argv []string) (int, error) {
	if len(argv) == 0 {
		return 0, ErrEmptyCommand
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = e.Stdin
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	err := cmd.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		if e.Logger != nil {
			e.Logger.Debug("command exited", "command", argv[0], "status", code)
		}
		return code, nil
	}
	if err != nil {
		return 0, fmt.Errorf("run %s: %w", argv[0], err)
	}
	return 0, nil
}
