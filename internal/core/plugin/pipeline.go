package plugin

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/artpar/di/internal/core/document"
	"github.com/artpar/di/internal/core/schema"
	"github.com/artpar/di/internal/core/variables"
)

const (
	// StatusCodeKey is the document field holding the external command's exit status.
	StatusCodeKey = "status-code"

	// DryRunKey is the document field that suppresses side effects.
	DryRunKey = "dry-run"

	// StatusPluginFailure is the status reported when a transform fails.
	StatusPluginFailure = 3
)

// Pipeline runs documents through the plugins of a Registry.
type Pipeline struct {
	registry *Registry
	logger   *slog.Logger
}

// NewPipeline creates a pipeline over registry.
func NewPipeline(registry *Registry, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{registry: registry, logger: logger}
}

// Invocation is a single request to transform a document.
type Invocation struct {
	Command   string
	Document  map[string]any
	Args      Values
	Variables *variables.Registry
}

// Result is the outcome of an execution.
type Result struct {
	Document      map[string]any
	Schema        schema.Schema
	Executed      []string
	StatusCode    int
	CleanupErrors []error
}

// Plan is a selected, ordered set of plugins with their aggregate schema.
type Plan struct {
	command   string
	selected  []Descriptor
	schema    schema.Schema
	arguments map[string][]ArgumentSpec
	logger    *slog.Logger
}

// =============================================================================
// Prepare
// =============================================================================

// Prepare selects the plugins for command according to the document's
// directive, merges the schema fragments of every known plugin and collects
// the argument declarations of the selected ones. Nothing is executed.
func (p *Pipeline) Prepare(doc map[string]any, command string) (*Plan, error) {
	p.logger.Debug("discovered plugins", "plugins", p.registry.Names())

	directive, err := ParseDirective(doc[DirectiveKey])
	if err != nil {
		return nil, err
	}
	selected, err := p.registry.Select(directive, command)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(selected))
	for i, d := range selected {
		names[i] = d.Name
	}
	p.logger.Debug("selected plugins", "command", command, "plugins", names)

	aggregate := schema.Schema{}
	for _, d := range p.registry.descriptors {
		if aggregate, err = schema.Merge(aggregate, document.Clone(d.Schema).(map[string]any)); err != nil {
			return nil, fmt.Errorf("aggregate schema of %s: %w", d.Name, err)
		}
	}

	arguments := make(map[string][]ArgumentSpec, len(selected))
	owner := map[string]string{}
	for _, d := range selected {
		var args Arguments
		d.Plugin.DeclareArguments(&args)
		for _, spec := range args.Specs() {
			if other, taken := owner[spec.Name]; taken {
				return nil, fmt.Errorf("%w: %s declared by %s and %s", ErrDuplicateArgument, spec.Name, other, d.Name)
			}
			owner[spec.Name] = d.Name
			arguments[d.Name] = append(arguments[d.Name], describe(spec, aggregate))
		}
	}

	return &Plan{
		command:   command,
		selected:  selected,
		schema:    aggregate,
		arguments: arguments,
		logger:    p.logger,
	}, nil
}

// Run prepares and executes inv.
func (p *Pipeline) Run(ctx context.Context, inv Invocation) (*Result, error) {
	plan, err := p.Prepare(inv.Document, inv.Command)
	if err != nil {
		return nil, err
	}
	return plan.Execute(ctx, inv.Document, inv.Args, inv.Variables)
}

// Selected returns the selected plugins in execution order.
func (pl *Plan) Selected() []Descriptor {
	return pl.selected
}

// Schema returns the aggregate schema.
func (pl *Plan) Schema() schema.Schema {
	return pl.schema
}

// Arguments returns the argument declarations of the selected plugins in
// execution order.
func (pl *Plan) Arguments() []ArgumentSpec {
	var out []ArgumentSpec
	for _, d := range pl.selected {
		out = append(out, pl.arguments[d.Name]...)
	}
	return out
}

// =============================================================================
// Execute
// =============================================================================

// Execute populates defaults and runs every selected plugin in order. The
// first failing transform stops execution. Cleanup then runs in reverse
// order over all selected plugins. On failure the partial Result is
// returned together with the error.
func (pl *Plan) Execute(ctx context.Context, doc map[string]any, args Values, vars *variables.Registry) (*Result, error) {
	if vars == nil {
		vars = variables.New()
	}

	doc, err := schema.PopulateDefaults(doc, pl.schema)
	if err != nil {
		return nil, fmt.Errorf("populate defaults: %w", err)
	}

	result := &Result{Schema: pl.schema}
	runErr := pl.transform(ctx, &doc, args, vars, result)
	result.Document = doc
	result.CleanupErrors = pl.cleanup(context.WithoutCancel(ctx))

	if runErr != nil {
		result.StatusCode = StatusPluginFailure
		return result, runErr
	}
	if code, ok := document.Int(doc[StatusCodeKey]); ok {
		result.StatusCode = code
	}
	return result, nil
}

func (pl *Plan) transform(ctx context.Context, doc *map[string]any, args Values, vars *variables.Registry, result *Result) error {
	for _, d := range pl.selected {
		logger := pl.logger.With("plugin", d.Name)
		if err := ctx.Err(); err != nil {
			return &ExecutionError{Plugin: d.Name, Err: err}
		}
		if err := apply(*doc, pl.arguments[d.Name], args); err != nil {
			logger.Error("failed to apply arguments", "error", err)
			return &ExecutionError{Plugin: d.Name, Err: err}
		}

		env := &Env{
			Command:   pl.command,
			Schema:    pl.schema,
			Args:      args,
			Variables: vars,
			Logger:    logger,
			DryRun:    document.Truthy((*doc)[DryRunKey]),
		}
		logger.Debug("applying plugin", "order", d.Order)
		next, err := d.Plugin.Transform(ctx, env, *doc)
		if err == nil && next == nil {
			err = ErrNilDocument
		}
		if err != nil {
			logger.Error("plugin failed", "error", err)
			return &ExecutionError{Plugin: d.Name, Err: err}
		}

		*doc = next
		result.Executed = append(result.Executed, d.Name)
		if logger.Enabled(ctx, slog.LevelDebug) {
			if encoded, err := json.Marshal(next); err == nil {
				logger.Debug("applied plugin", "document", string(encoded))
			}
		}
	}
	return nil
}

func (pl *Plan) cleanup(ctx context.Context) []error {
	var errs []error
	for i := len(pl.selected) - 1; i >= 0; i-- {
		d := pl.selected[i]
		logger := pl.logger.With("plugin", d.Name)
		logger.Debug("cleaning up plugin")
		if err := d.Plugin.Cleanup(ctx); err != nil {
			logger.Error("cleanup failed", "error", err)
			errs = append(errs, fmt.Errorf("cleanup %s: %w", d.Name, err))
		}
	}
	if len(errs) == 0 {
		pl.logger.Info("cleaned up plugins", "count", len(pl.selected))
	}
	return errs
}
