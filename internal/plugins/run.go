package plugins

import (
	"context"
	"fmt"

	"github.com/artpar/di/internal/core/document"
	"github.com/artpar/di/internal/core/plugin"
)

// =============================================================================
// run-config
// =============================================================================

// runConfigPlugin owns the run schema, collects the container command from
// the remaining positional arguments and defaults tty and interactive to
// whether stdout is a terminal.
type runConfigPlugin struct {
	plugin.Base
	isTerminal func() bool
}

func (p *runConfigPlugin) DeclareArguments(args *plugin.Arguments) {
	args.Add(plugin.ArgumentSpec{Path: "/run/cmd", Remainder: true})
}

func (p *runConfigPlugin) Transform(_ context.Context, _ *plugin.Env, doc map[string]any) (map[string]any, error) {
	terminal := p.isTerminal()
	for _, path := range []string{"/run/tty", "/run/interactive"} {
		if _, err := document.SetDefault(doc, path, terminal, ""); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

// =============================================================================
// workspace-mount
// =============================================================================

// workspaceMountPlugin bind-mounts the workspace into the container.
type workspaceMountPlugin struct {
	plugin.Base
}

func (workspaceMountPlugin) DeclareArguments(args *plugin.Arguments) {
	args.Add(plugin.ArgumentSpec{Path: "/run/workspace-dir"})
	args.Add(plugin.ArgumentSpec{Path: "/run/workdir"})
}

func (workspaceMountPlugin) Transform(_ context.Context, _ *plugin.Env, doc map[string]any) (map[string]any, error) {
	destination, err := document.Get(doc, "/run/workspace-dir", "")
	if err != nil {
		return nil, err
	}
	err = document.Append(doc, "/run/mount", map[string]any{
		"type":        "bind",
		"source":      "#{/workspace}",
		"destination": destination,
	}, "")
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// =============================================================================
// homedir
// =============================================================================

// homedirPlugin mounts an ephemeral home directory.
type homedirPlugin struct {
	plugin.Base
}

func (homedirPlugin) Transform(_ context.Context, _ *plugin.Env, doc map[string]any) (map[string]any, error) {
	size, err := document.Get(doc, "/homedir/size", "")
	if err != nil {
		return nil, err
	}
	err = document.Append(doc, "/run/tmpfs", map[string]any{
		"destination": "#{/run/env/HOME}",
		"options":     []any{"exec"},
		"size":        size,
	}, "")
	if err != nil {
		return nil, err
	}
	if _, err := document.SetDefault(doc, "/run/env/HOME", "/${user/name}", ""); err != nil {
		return nil, err
	}
	return doc, nil
}

// =============================================================================
// google-cloud-credentials
// =============================================================================

// googleCredentialsPlugin mounts the host's gcloud configuration.
type googleCredentialsPlugin struct {
	plugin.Base
}

func (googleCredentialsPlugin) Transform(_ context.Context, _ *plugin.Env, doc map[string]any) (map[string]any, error) {
	err := document.Append(doc, "/run/mount", map[string]any{
		"type":        "bind",
		"source":      "${env/HOME}/.config/gcloud",
		"destination": "#{/run/env/HOME}/.config/gcloud",
	}, "")
	if err != nil {
		return nil, fmt.Errorf("mount gcloud credentials: %w", err)
	}
	return doc, nil
}
