// Package cli implements the di command-line interface.
//
// `di run` and `di build` parse their flags in two phases: the document
// file is located first, then the flags of the plugins the document selects
// are registered from their argument declarations and the full command line
// is parsed again.
package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/artpar/di/internal/core/plugin"
	"github.com/artpar/di/internal/plugins"
	"github.com/artpar/di/internal/shell/loader"
)

// App holds what the commands share.
type App struct {
	Logger *slog.Logger
	// Level is handed to the base plugin, which applies the document's log-level.
	Level *slog.LevelVar
	// Deps are the host facilities of the built-in plugins. Logger and Level
	// are filled in from App.
	Deps plugins.Deps
	// File is the default document path.
	File    string
	Environ []string
	Version string
	Out     io.Writer
}

func (a *App) defaults() {
	if a.Logger == nil {
		a.Logger = slog.Default()
	}
	if a.Level == nil {
		a.Level = new(slog.LevelVar)
	}
	if a.File == "" {
		a.File = loader.DefaultFile
	}
	if a.Environ == nil {
		a.Environ = os.Environ()
	}
	if a.Out == nil {
		a.Out = os.Stdout
	}
}

// registry returns a fresh registry of the built-in plugins.
func (a *App) registry() (*plugin.Registry, error) {
	deps := a.Deps
	deps.Logger = a.Logger
	deps.Level = a.Level
	return plugins.Builtin(deps)
}

// NewRootCommand builds the command tree.
func NewRootCommand(app *App) *cobra.Command {
	app.defaults()

	root := &cobra.Command{
		Use:   "di",
		Short: "Declarative Docker interface",
		Long: `di builds and runs Docker images from a declarative document (di.yml).

Plugins transform the document step by step: they fill in defaults, mount the
workspace, map the host user into the container, substitute #{...} references
and ${...} variables, validate the result and finally call docker.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(app.Out)
	root.PersistentFlags().StringP(fileFlag, "f", app.File, "Document file.")
	root.PersistentFlags().String(configFlag, "", "Settings file.")

	root.AddCommand(
		newInvokeCommand(app, plugins.CommandRun, "Run a container described by the document"),
		newInvokeCommand(app, plugins.CommandBuild, "Build the image described by the document"),
		newPluginsCommand(app),
		newSchemaCommand(app),
		newVersionCommand(app),
	)
	return root
}

// Execute runs the command tree with args and returns the exit code.
func Execute(ctx context.Context, app *App, args []string) int {
	root := NewRootCommand(app)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	code := ExitCode(err)

	var exitErr *ExitError
	if err != nil && (!errors.As(err, &exitErr) || exitErr.Err != nil) {
		app.Logger.Error("di failed", "error", err, "exit_code", code)
	}
	return code
}
