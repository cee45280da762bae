package plugin

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/artpar/di/internal/core/schema"
	"github.com/artpar/di/internal/core/variables"
)

// =============================================================================
// Contract
// =============================================================================

// Plugin transforms a configuration document.
type Plugin interface {
	// DeclareArguments records the command-line arguments the plugin accepts.
	DeclareArguments(args *Arguments)

	// Transform returns the next version of doc. It may mutate doc in place
	// and return it.
	Transform(ctx context.Context, env *Env, doc map[string]any) (map[string]any, error)

	// Cleanup releases anything the plugin acquired. It is called for every
	// selected plugin whether or not its transform ran.
	Cleanup(ctx context.Context) error
}

// CommandBuilder is implemented by plugins that turn the final document into
// an external command line.
type CommandBuilder interface {
	BuildCommand(doc map[string]any) ([]string, error)
}

// Base provides no-op implementations of every Plugin method.
type Base struct{}

func (Base) DeclareArguments(*Arguments) {}

func (Base) Transform(_ context.Context, _ *Env, doc map[string]any) (map[string]any, error) {
	return doc, nil
}

func (Base) Cleanup(context.Context) error { return nil }

// Env is the execution environment handed to a transform.
type Env struct {
	Command   string
	Schema    schema.Schema
	Args      Values
	Variables *variables.Registry
	Logger    *slog.Logger
	DryRun    bool
}

// =============================================================================
// Descriptor
// =============================================================================

// Descriptor is the registration record of a plugin.
type Descriptor struct {
	Name     string
	Enabled  bool
	Order    int
	Commands Commands
	Schema   schema.Schema
	Plugin   Plugin
}

// Commands is the set of commands a plugin applies to.
type Commands struct {
	all   bool
	names []string
}

// AllCommands applies to every command.
func AllCommands() Commands {
	return Commands{all: true}
}

// OnlyCommands applies to the named commands.
func OnlyCommands(names ...string) Commands {
	return Commands{names: slices.Clone(names)}
}

// Applies reports whether command is in the set.
func (c Commands) Applies(command string) bool {
	return c.all || slices.Contains(c.names, command)
}

func (c Commands) String() string {
	if c.all {
		return "all"
	}
	return strings.Join(c.names, ",")
}
