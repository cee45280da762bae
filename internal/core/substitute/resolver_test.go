package substitute

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artpar/di/internal/core/document"
	"github.com/artpar/di/internal/core/variables"
)

// =============================================================================
// Self-reference Tests
// =============================================================================

func TestResolve_AbsoluteSelfReference(t *testing.T) {
	doc := map[string]any{
		"build": map[string]any{"tag": "img:latest"},
		"run":   map[string]any{"image": "#{/build/tag}"},
	}

	out, err := New(doc, variables.New(), nil).Resolve(doc)
	require.NoError(t, err)
	assert.Equal(t, "img:latest", out["run"].(map[string]any)["image"])
}

func TestResolve_RelativeSelfReference(t *testing.T) {
	doc := map[string]any{
		"build": map[string]any{"path": "ctx", "file": "#{path}/Dockerfile"},
	}

	out, err := New(doc, variables.New(), nil).Resolve(doc)
	require.NoError(t, err)
	assert.Equal(t, "ctx/Dockerfile", out["build"].(map[string]any)["file"])
}

func TestResolve_Chained(t *testing.T) {
	doc := map[string]any{
		"workspace": "/src",
		"run": map[string]any{
			"workspace-dir": "/workspace",
			"workdir":       "#{workspace-dir}",
			"cmd":           []any{"ls", "#{../workspace-dir}"},
		},
	}

	out, err := New(doc, variables.New(), nil).Resolve(doc)
	require.NoError(t, err)
	run := out["run"].(map[string]any)
	assert.Equal(t, "/workspace", run["workdir"])
	assert.Equal(t, []any{"ls", "/workspace"}, run["cmd"])
}

func TestResolve_NonStringReference(t *testing.T) {
	doc := map[string]any{
		"homedir": map[string]any{"size": float64(1 << 30)},
		"opts":    "size=#{/homedir/size}",
	}

	out, err := New(doc, variables.New(), nil).Resolve(doc)
	require.NoError(t, err)
	assert.Equal(t, "size=1073741824", out["opts"])
}

func TestResolve_ReplacesEveryOccurrence(t *testing.T) {
	doc := map[string]any{"a": "x", "b": "#{a}-#{a}"}

	out, err := New(doc, variables.New(), nil).Resolve(doc)
	require.NoError(t, err)
	assert.Equal(t, "x-x", out["b"])
}

func TestResolve_MissingSelfReference(t *testing.T) {
	doc := map[string]any{"run": map[string]any{"image": "#{/build/tag}"}}

	_, err := New(doc, variables.New(), nil).Resolve(doc)
	require.Error(t, err)
	assert.ErrorIs(t, err, document.ErrPathNotFound)
	assert.Contains(t, err.Error(), "/build/tag")
}

func TestResolve_LeavesNonStrings(t *testing.T) {
	doc := map[string]any{"rm": true, "n": 3, "nothing": nil}

	out, err := New(doc, variables.New(), nil).Resolve(doc)
	require.NoError(t, err)
	assert.Equal(t, doc, out)
}

func TestResolve_DoesNotMutateInput(t *testing.T) {
	doc := map[string]any{"a": "x", "b": "#{a}"}

	_, err := New(doc, variables.New(), nil).Resolve(doc)
	require.NoError(t, err)
	assert.Equal(t, "#{a}", doc["b"])
}

// =============================================================================
// Variable Tests
// =============================================================================

func TestResolve_Variable(t *testing.T) {
	doc := map[string]any{"greeting": "hello ${env/USER}"}
	vars := variables.FromEnviron([]string{"USER=alice"})

	out, err := New(doc, vars, nil).Resolve(doc)
	require.NoError(t, err)
	assert.Equal(t, "hello alice", out["greeting"])
}

func TestResolve_VariableFallback(t *testing.T) {
	doc := map[string]any{"home": "${env/NOPE}x"}

	out, err := New(doc, variables.New(), nil).Resolve(doc)
	require.NoError(t, err)
	assert.Equal(t, "/x", out["home"])
}

func TestResolve_ZeroValueResolverUsesDefaults(t *testing.T) {
	doc := map[string]any{"home": "${env/NOPE}"}

	out, err := (&Resolver{}).Resolve(doc)
	require.NoError(t, err)
	assert.Equal(t, "/", out["home"])
}

func TestResolve_SelfReferenceYieldingVariable(t *testing.T) {
	doc := map[string]any{
		"user": "${user/uid}:${group/gid}",
		"copy": "#{user}",
	}
	vars := variables.New()
	vars.Register("user", map[string]any{"uid": 1000})
	vars.Register("group", map[string]any{"gid": 100})

	out, err := New(doc, vars, nil).Resolve(doc)
	require.NoError(t, err)
	assert.Equal(t, "1000:100", out["copy"])
	assert.Equal(t, "1000:100", out["user"])
}

// =============================================================================
// Cycle Guard Tests
// =============================================================================

func TestResolve_SelfCycle(t *testing.T) {
	doc := map[string]any{"a": "#{a}"}

	_, err := New(doc, variables.New(), nil).Resolve(doc)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSubstitutionCycle))

	var cycle *CycleError
	require.True(t, errors.As(err, &cycle))
	assert.Equal(t, "/a", cycle.Path)
	assert.Equal(t, DefaultMaxPasses, cycle.Passes)
}

func TestResolve_MutualCycleWithCustomLimit(t *testing.T) {
	doc := map[string]any{"a": "#{b}", "b": "#{a}"}
	r := New(doc, variables.New(), nil)
	r.MaxPasses = 5

	_, err := r.Resolve(doc)
	var cycle *CycleError
	require.True(t, errors.As(err, &cycle))
	assert.Equal(t, 5, cycle.Passes)
}

// =============================================================================
// Value Tests
// =============================================================================

func TestValue_SingleLeaf(t *testing.T) {
	doc := map[string]any{
		"build": map[string]any{"tag": "img:latest"},
		"run":   map[string]any{"image": "#{/build/tag}"},
	}

	got, err := New(doc, variables.New(), nil).Value("#{/build/tag}", "/run/image")
	require.NoError(t, err)
	assert.Equal(t, "img:latest", got)
}
