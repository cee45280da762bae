package plugins

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artpar/di/internal/core/plugin"
	"github.com/artpar/di/internal/core/variables"
)

// =============================================================================
// Registry Tests
// =============================================================================

func TestBuiltin_Registry(t *testing.T) {
	reg, err := Builtin(Deps{})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"base", "build", "build-config", "compose", "gcr", "google-cloud-credentials",
		"homedir", "jupyter", "run", "run-config", "substitution", "user", "validation",
		"workspace-mount",
	}, reg.Names())

	gcr, ok := reg.Lookup(NameGCR)
	require.True(t, ok)
	assert.False(t, gcr.Enabled)
	assert.Equal(t, 10, gcr.Order)
}

func TestBuiltin_RunSelection(t *testing.T) {
	reg, err := Builtin(Deps{})
	require.NoError(t, err)

	selected, err := reg.Select(plugin.Directive{}, CommandRun)
	require.NoError(t, err)

	var names []string
	for _, d := range selected {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{
		"base", "compose", "workspace-mount", "user", "homedir", "google-cloud-credentials",
		"run-config", "jupyter", "substitution", "validation", "run",
	}, names)
}

func TestBuiltin_BuildSelection(t *testing.T) {
	reg, err := Builtin(Deps{})
	require.NoError(t, err)

	selected, err := reg.Select(plugin.Directive{Enable: []string{"gcr"}}, CommandBuild)
	require.NoError(t, err)

	var names []string
	for _, d := range selected {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"base", "gcr", "compose", "build-config", "substitution", "validation", "build"}, names)
}

func TestBuiltin_SchemaFragmentsMerge(t *testing.T) {
	reg, err := Builtin(Deps{})
	require.NoError(t, err)

	plan, err := plugin.NewPipeline(reg, discardLogger()).Prepare(map[string]any{}, CommandRun)
	require.NoError(t, err)

	var argNames []string
	for _, spec := range plan.Arguments() {
		argNames = append(argNames, spec.Name)
	}
	assert.Equal(t, []string{
		"workspace", "docker", "log-level", "dry-run",
		"compose-file", "compose-service",
		"workspace-dir", "workdir", "user", "cmd",
	}, argNames)

	levels := plan.Arguments()[2]
	assert.Equal(t, []string{"debug", "info", "warning", "error", "critical", "fatal"}, levels.Choices)
}

// =============================================================================
// Pipeline Tests
// =============================================================================

func TestRunCommand_EndToEnd(t *testing.T) {
	runner := &fakeRunner{}
	images := &fakeImages{}
	tempDir := t.TempDir()
	deps := testDeps(runner, images, tempDir)
	reg, err := Builtin(deps)
	require.NoError(t, err)

	doc := map[string]any{
		"workspace": "/src",
		"log-level": "debug",
		"run": map[string]any{
			"image": "alpine",
			"cmd":   []any{"ls"},
		},
	}
	result, err := plugin.NewPipeline(reg, discardLogger()).Run(context.Background(), plugin.Invocation{
		Command:   CommandRun,
		Document:  doc,
		Variables: variables.FromEnviron([]string{"HOME=/home/alice"}),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, result.StatusCode)
	assert.Empty(t, result.CleanupErrors)
	assert.Equal(t, slog.LevelDebug, deps.Level.Level())
	assert.Equal(t, "alpine", images.image)

	require.Len(t, runner.calls, 1)
	argv := runner.calls[0]
	assert.Equal(t, []string{"docker", "run", "--user=1000:100", "--workdir=/workspace", "--rm=true",
		"--volume=/src:/workspace"}, argv[:6])
	assert.True(t, strings.HasSuffix(argv[6], "/passwd:/etc/passwd"), argv[6])
	assert.True(t, strings.HasSuffix(argv[7], "/group:/etc/group"), argv[7])
	assert.Equal(t, []string{
		"--volume=/home/alice/.config/gcloud:/alice/.config/gcloud",
		"--env=HOME=/alice",
		"--tmpfs", "/alice:exec,size=1073741824",
		"alpine", "ls",
	}, argv[8:])

	entries, err := os.ReadDir(tempDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "scratch directory must be removed")
}

func TestRunCommand_DryRun(t *testing.T) {
	runner := &fakeRunner{}
	images := &fakeImages{}
	reg, err := Builtin(testDeps(runner, images, t.TempDir()))
	require.NoError(t, err)

	result, err := plugin.NewPipeline(reg, discardLogger()).Run(context.Background(), plugin.Invocation{
		Command: CommandRun,
		Document: map[string]any{
			"workspace": "/src",
			"run":       map[string]any{"image": "alpine"},
		},
		Args:      plugin.Values{"dry-run": true},
		Variables: variables.FromEnviron(nil),
	})
	require.NoError(t, err)
	assert.Empty(t, runner.calls)
	assert.Empty(t, images.image)
	assert.Equal(t, 0, result.StatusCode)
	assert.Equal(t, "1000:100", result.Document["run"].(map[string]any)["user"])
}

func TestRunCommand_NonZeroStatus(t *testing.T) {
	runner := &fakeRunner{code: 7}
	reg, err := Builtin(testDeps(runner, &fakeImages{}, t.TempDir()))
	require.NoError(t, err)

	result, err := plugin.NewPipeline(reg, discardLogger()).Run(context.Background(), plugin.Invocation{
		Command: CommandRun,
		Document: map[string]any{
			"workspace": "/src",
			"plugins":   []any{"base", "run-config", "substitution", "validation", "run"},
			"run":       map[string]any{"image": "alpine"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 7, result.StatusCode)
	assert.Equal(t, []string{"docker", "run", "--workdir=/workspace", "--rm=true", "alpine"}, runner.calls[0])
}

func TestRunCommand_ValidationFailure(t *testing.T) {
	runner := &fakeRunner{}
	reg, err := Builtin(testDeps(runner, &fakeImages{}, t.TempDir()))
	require.NoError(t, err)

	result, err := plugin.NewPipeline(reg, discardLogger()).Run(context.Background(), plugin.Invocation{
		Command: CommandRun,
		Document: map[string]any{
			"workspace": "/src",
			"plugins":   []any{"base", "run-config", "substitution", "validation", "run"},
			"run":       map[string]any{"image": "alpine", "unknown": true},
		},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, plugin.ErrPluginExecution)
	assert.Equal(t, plugin.StatusPluginFailure, result.StatusCode)
	assert.Empty(t, runner.calls)
}

func TestBuildCommand_EndToEnd(t *testing.T) {
	runner := &fakeRunner{}
	reg, err := Builtin(testDeps(runner, &fakeImages{}, t.TempDir()))
	require.NoError(t, err)

	_, err = plugin.NewPipeline(reg, discardLogger()).Run(context.Background(), plugin.Invocation{
		Command: CommandBuild,
		Document: map[string]any{
			"workspace": "/src",
			"build":     map[string]any{"tag": "img:latest"},
		},
	})
	require.NoError(t, err)
	require.Len(t, runner.calls, 1)
	assert.Equal(t, []string{
		"docker", "build", "--tag=img:latest", "--file=/src/Dockerfile", "/src",
	}, runner.calls[0])
}
