package plugins

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/artpar/di/internal/core/plugin"
	"github.com/artpar/di/internal/core/schema"
	"github.com/artpar/di/internal/core/substitute"
)

// LevelCritical sits above slog.LevelError for the critical and fatal levels.
const LevelCritical = slog.LevelError + 4

// ParseLevel maps a document log-level onto a slog level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warning", "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	case "critical", "fatal":
		return LevelCritical, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
}

// =============================================================================
// base
// =============================================================================

// basePlugin owns the top-level document fields and applies the log level.
type basePlugin struct {
	plugin.Base
	level *slog.LevelVar
}

func (p *basePlugin) DeclareArguments(args *plugin.Arguments) {
	args.Add(plugin.ArgumentSpec{Path: "/workspace"})
	args.Add(plugin.ArgumentSpec{Path: "/docker"})
	args.Add(plugin.ArgumentSpec{Path: "/log-level"})
	args.Add(plugin.ArgumentSpec{Path: "/dry-run"})
}

func (p *basePlugin) Transform(_ context.Context, env *plugin.Env, doc map[string]any) (map[string]any, error) {
	if p.level == nil {
		return doc, nil
	}
	name, _ := doc["log-level"].(string)
	level, err := ParseLevel(name)
	if err != nil {
		return nil, err
	}
	p.level.Set(level)
	env.Logger.Debug("log level set", "level", level.String())
	return doc, nil
}

// =============================================================================
// substitution
// =============================================================================

type substitutionPlugin struct {
	plugin.Base
}

func (substitutionPlugin) Transform(_ context.Context, env *plugin.Env, doc map[string]any) (map[string]any, error) {
	return substitute.New(doc, env.Variables, env.Logger).Resolve(doc)
}

// =============================================================================
// validation
// =============================================================================

type validationPlugin struct {
	plugin.Base
}

func (validationPlugin) Transform(_ context.Context, env *plugin.Env, doc map[string]any) (map[string]any, error) {
	err := schema.Validate(doc, env.Schema)
	if err == nil {
		return doc, nil
	}
	var verr *schema.ValidationError
	if errors.As(err, &verr) {
		for _, cause := range verr.Causes {
			env.Logger.Error("invalid document", "cause", cause)
		}
	}
	return nil, err
}
