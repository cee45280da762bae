package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/artpar/di/internal/core/plugin"
	"github.com/artpar/di/internal/plugins"
	"github.com/artpar/di/internal/shell/loader"
)

// =============================================================================
// plugins
// =============================================================================

func newPluginsCommand(app *App) *cobra.Command {
	var command string
	cmd := &cobra.Command{
		Use:   "plugins",
		Short: "List the built-in plugins",
		Long: `List every built-in plugin with its order and commands. With --command the
SELECTED column shows which plugins the document selects for that command.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			registry, err := app.registry()
			if err != nil {
				return err
			}

			selected := map[string]bool{}
			if command != "" {
				file, explicit, err := documentPath(cmd)
				if err != nil {
					return err
				}
				doc, err := loader.LoadOrDefault(file, explicit, app.Logger)
				if err != nil {
					return &ExitError{Code: ExitConfigError, Err: err}
				}
				plan, err := plugin.NewPipeline(registry, app.Logger).Prepare(doc, command)
				if err != nil {
					return err
				}
				for _, d := range plan.Selected() {
					selected[d.Name] = true
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), pluginTable(registry.Descriptors(), selected, command != ""))
			return nil
		},
	}
	cmd.Flags().StringVar(&command, "command", "", "Show the selection for this command (run or build).")
	return cmd
}

func pluginTable(descriptors []plugin.Descriptor, selected map[string]bool, showSelection bool) string {
	headers := []string{"NAME", "ORDER", "COMMANDS", "ENABLED"}
	if showSelection {
		headers = append(headers, "SELECTED")
	}
	t := table.New().
		Border(lipgloss.HiddenBorder()).
		Headers(headers...)
	for _, d := range descriptors {
		row := []string{d.Name, strconv.Itoa(d.Order), d.Commands.String(), strconv.FormatBool(d.Enabled)}
		if showSelection {
			row = append(row, strconv.FormatBool(selected[d.Name]))
		}
		t.Row(row...)
	}
	return t.String()
}

// =============================================================================
// schema
// =============================================================================

func newSchemaCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the aggregate document schema as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			registry, err := app.registry()
			if err != nil {
				return err
			}
			plan, err := plugin.NewPipeline(registry, app.Logger).Prepare(map[string]any{}, plugins.CommandRun)
			if err != nil {
				return err
			}
			encoded, err := json.MarshalIndent(plan.Schema(), "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
			return nil
		},
	}
}

// =============================================================================
// version
// =============================================================================

func newVersionCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the di version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "di %s\n", app.Version)
			return nil
		},
	}
}
