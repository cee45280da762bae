package plugins

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/artpar/di/internal/core/command"
	"github.com/artpar/di/internal/core/plugin"
)

// ErrNoRunner is returned when a command must be executed but no Runner was configured.
var ErrNoRunner = errors.New("no command runner configured")

// Execute runs the command produced by Builder and records its exit status
// in the document. In dry-run mode the command is only logged.
type Execute struct {
	plugin.Base
	Builder plugin.CommandBuilder
	Runner  Runner
}

// BuildCommand delegates to the configured builder.
func (e *Execute) BuildCommand(doc map[string]any) ([]string, error) {
	return e.Builder.BuildCommand(doc)
}

func (e *Execute) Transform(ctx context.Context, env *plugin.Env, doc map[string]any) (map[string]any, error) {
	argv, err := e.BuildCommand(doc)
	if err != nil {
		return nil, err
	}
	if len(argv) == 0 {
		doc[plugin.StatusCodeKey] = 0
		return doc, nil
	}

	line := strings.Join(argv, " ")
	if env.DryRun {
		env.Logger.Info("dry-run command", "command", line)
		doc[plugin.StatusCodeKey] = 0
		return doc, nil
	}
	if e.Runner == nil {
		return nil, ErrNoRunner
	}

	env.Logger.Debug("executing command", "command", line)
	code, err := e.Runner.Run(ctx, argv)
	if err != nil {
		return nil, err
	}
	if code != 0 {
		env.Logger.Warn("command returned non-zero status", "command", line, "status", code)
	}
	doc[plugin.StatusCodeKey] = code
	return doc, nil
}

// BuilderFunc adapts a function to plugin.CommandBuilder.
type BuilderFunc func(doc map[string]any) ([]string, error)

func (f BuilderFunc) BuildCommand(doc map[string]any) ([]string, error) {
	return f(doc)
}

var (
	runCommand   = BuilderFunc(command.BuildRun)
	buildCommand = BuilderFunc(command.BuildBuild)
)

// =============================================================================
// gcr
// =============================================================================

// tokenMargin is how long a cached token must remain valid to skip authorization.
const tokenMargin = 30 * time.Second

// gcrAuthorizer authorizes docker against Google Container Registry unless
// the gcloud token cache holds a token that is still valid.
type gcrAuthorizer struct {
	tokens TokenCache
	now    func() time.Time
	logger *slog.Logger
}

func (g *gcrAuthorizer) BuildCommand(map[string]any) ([]string, error) {
	if g.tokens != nil {
		expiry, ok, err := g.tokens.Expiry(context.Background())
		switch {
		case err != nil:
			g.logger.Warn("could not read gcloud token cache", "error", err)
		case ok && expiry.After(g.now().Add(tokenMargin)):
			g.logger.Debug("skipping gcr.io authentication; token is still valid", "expiry", expiry)
			return nil, nil
		}
	}
	return []string{"gcloud", "docker", "--authorize-only", "--quiet"}, nil
}
