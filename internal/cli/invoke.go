package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/artpar/di/internal/core/plugin"
	"github.com/artpar/di/internal/core/variables"
	"github.com/artpar/di/internal/shell/loader"
)

const debugHint = "rerun the command with `--log-level debug` to trace every plugin step"

func newInvokeCommand(app *App, command, short string) *cobra.Command {
	return &cobra.Command{
		Use:                command + " [flags] [args...]",
		Short:              short,
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.invoke(cmd.Context(), command, args)
		},
	}
}

// invoke loads the document, selects the plugins for command, parses their
// flags and executes the pipeline.
func (a *App) invoke(ctx context.Context, command string, args []string) error {
	registry, err := a.registry()
	if err != nil {
		return err
	}
	pipeline := plugin.NewPipeline(registry, a.Logger)

	// Locate the document using the flags of the default selection.
	initial, err := pipeline.Prepare(map[string]any{}, command)
	if err != nil {
		return err
	}
	scan := newArgumentFlags(command, a.File, initial.Arguments())
	scan.fs.ParseErrorsWhitelist.UnknownFlags = true
	if _, err := scan.parse(args); err != nil {
		return &ExitError{Code: ExitUsageError, Err: err}
	}
	file, explicit := scan.document()

	doc, err := loader.LoadOrDefault(file, explicit, a.Logger)
	if err != nil {
		return &ExitError{Code: ExitConfigError, Err: err}
	}

	plan, err := pipeline.Prepare(doc, command)
	if err != nil {
		return err
	}
	flags := newArgumentFlags(command, a.File, plan.Arguments())
	help, err := flags.parse(args)
	if err != nil {
		return &ExitError{Code: ExitUsageError, Err: err}
	}
	if help {
		flags.usage(a.Out, command)
		return nil
	}
	values, err := flags.values()
	if err != nil {
		return &ExitError{Code: ExitUsageError, Err: err}
	}

	result, err := plan.Execute(ctx, doc, values, variables.FromEnviron(a.Environ))
	if err != nil {
		a.Logger.Error(debugHint)
		return err
	}
	if len(result.CleanupErrors) > 0 {
		a.Logger.Warn("some plugins failed to clean up", "count", len(result.CleanupErrors))
	}
	if result.StatusCode != 0 {
		return &ExitError{Code: result.StatusCode}
	}
	return nil
}

// documentPath resolves the document flag of a regular cobra command.
func documentPath(cmd *cobra.Command) (string, bool, error) {
	file, err := cmd.Flags().GetString(fileFlag)
	if err != nil {
		return "", false, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return file, cmd.Flags().Changed(fileFlag), nil
}
