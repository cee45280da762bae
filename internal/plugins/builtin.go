package plugins

import (
	"fmt"

	"github.com/artpar/di/internal/core/plugin"
	"github.com/artpar/di/internal/core/schema"
)

// Plugin names.
const (
	NameBase              = "base"
	NameGCR               = "gcr"
	NameCompose           = "compose"
	NameWorkspaceMount    = "workspace-mount"
	NameUser              = "user"
	NameHomedir           = "homedir"
	NameGoogleCredentials = "google-cloud-credentials"
	NameRunConfig         = "run-config"
	NameBuildConfig       = "build-config"
	NameJupyter           = "jupyter"
	NameSubstitution      = "substitution"
	NameValidation        = "validation"
	NameRun               = "run"
	NameBuild             = "build"
)

// Commands supported by the built-in plugins.
const (
	CommandRun   = "run"
	CommandBuild = "build"
)

// Builtin returns a registry holding fresh instances of every built-in
// plugin. Plugins keep per-invocation state, so a registry serves a single
// invocation.
func Builtin(deps Deps) (*plugin.Registry, error) {
	deps = deps.withDefaults()

	fragments := map[string]schema.Schema{}
	for _, name := range []string{"base", "compose", "workspace-mount", "homedir", "run-config", "build-config"} {
		s, err := loadSchema(name)
		if err != nil {
			return nil, err
		}
		fragments[name] = s
	}
	userSchema, err := userFragment(fragments["run-config"])
	if err != nil {
		return nil, err
	}

	descriptors := []plugin.Descriptor{
		{Name: NameBase, Enabled: true, Order: 0, Commands: plugin.AllCommands(),
			Schema: fragments["base"], Plugin: &basePlugin{level: deps.Level}},
		{Name: NameGCR, Enabled: false, Order: 10, Commands: plugin.AllCommands(),
			Plugin: &Execute{
				Builder: &gcrAuthorizer{tokens: deps.Tokens, now: deps.Now, logger: deps.Logger.With("plugin", NameGCR)},
				Runner:  deps.Runner,
			}},
		{Name: NameCompose, Enabled: true, Order: 400, Commands: plugin.AllCommands(),
			Schema: fragments["compose"], Plugin: &composePlugin{readFile: deps.ReadFile}},
		{Name: NameWorkspaceMount, Enabled: true, Order: 500, Commands: plugin.OnlyCommands(CommandRun),
			Schema: fragments["workspace-mount"], Plugin: workspaceMountPlugin{}},
		{Name: NameUser, Enabled: true, Order: 510, Commands: plugin.OnlyCommands(CommandRun),
			Schema: userSchema, Plugin: &userPlugin{accounts: deps.Accounts, images: deps.Images, tempRoot: deps.TempDir}},
		{Name: NameHomedir, Enabled: true, Order: 520, Commands: plugin.OnlyCommands(CommandRun),
			Schema: fragments["homedir"], Plugin: homedirPlugin{}},
		{Name: NameGoogleCredentials, Enabled: true, Order: 560, Commands: plugin.OnlyCommands(CommandRun),
			Plugin: googleCredentialsPlugin{}},
		{Name: NameRunConfig, Enabled: true, Order: 950, Commands: plugin.OnlyCommands(CommandRun),
			Schema: fragments["run-config"], Plugin: &runConfigPlugin{isTerminal: deps.IsTerminal}},
		{Name: NameBuildConfig, Enabled: true, Order: 950, Commands: plugin.OnlyCommands(CommandBuild),
			Schema: fragments["build-config"], Plugin: plugin.Base{}},
		{Name: NameJupyter, Enabled: true, Order: 960, Commands: plugin.OnlyCommands(CommandRun),
			Plugin: &jupyterPlugin{freePort: deps.FreePort, hostname: deps.Hostname}},
		{Name: NameSubstitution, Enabled: true, Order: 980, Commands: plugin.AllCommands(),
			Plugin: substitutionPlugin{}},
		{Name: NameValidation, Enabled: true, Order: 990, Commands: plugin.AllCommands(),
			Plugin: validationPlugin{}},
		{Name: NameRun, Enabled: true, Order: 1000, Commands: plugin.OnlyCommands(CommandRun),
			Plugin: &Execute{Builder: runCommand, Runner: deps.Runner}},
		{Name: NameBuild, Enabled: true, Order: 1000, Commands: plugin.OnlyCommands(CommandBuild),
			Plugin: &Execute{Builder: buildCommand, Runner: deps.Runner}},
	}

	registry := plugin.NewRegistry()
	for _, d := range descriptors {
		if err := registry.Register(d); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// userFragment reuses the run-config definition of /run/user.
func userFragment(runConfig schema.Schema) (schema.Schema, error) {
	user, err := schema.Property(runConfig, "/run/user")
	if err != nil {
		return nil, fmt.Errorf("user schema: %w", err)
	}
	return schema.Schema{
		"properties": map[string]any{
			"run": map[string]any{
				"properties":           map[string]any{"user": user},
				"additionalProperties": false,
			},
		},
		"additionalProperties": false,
	}, nil
}
