package loader

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// =============================================================================
// Load Tests
// =============================================================================

func TestLoad_YAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "di.yml", `
workspace: src
run:
  image: alpine
  cmd: [ls, -la]
  publish:
    - container: 8888
      host: 8890
`)

	doc, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "src"), doc["workspace"])

	run := doc["run"].(map[string]any)
	assert.Equal(t, []any{"ls", "-la"}, run["cmd"])
	assert.Equal(t, []any{map[string]any{"container": 8888, "host": 8890}}, run["publish"])
}

func TestLoad_DefaultWorkspace(t *testing.T) {
	dir := t.TempDir()
	doc, err := Load(writeFile(t, dir, "di.yml", "docker: podman\n"))
	require.NoError(t, err)
	assert.Equal(t, dir, doc["workspace"])
}

func TestLoad_AbsoluteWorkspace(t *testing.T) {
	doc, err := Load(writeFile(t, t.TempDir(), "di.yml", "workspace: /srv/app\n"))
	require.NoError(t, err)
	assert.Equal(t, "/srv/app", doc["workspace"])
}

func TestLoad_JSON(t *testing.T) {
	dir := t.TempDir()
	doc, err := Load(writeFile(t, dir, "di.json", `{"build": {"tag": "img"}, "dry-run": true}`))
	require.NoError(t, err)
	assert.Equal(t, true, doc["dry-run"])
	assert.Equal(t, "img", doc["build"].(map[string]any)["tag"])
}

func TestLoad_TOML(t *testing.T) {
	dir := t.TempDir()
	doc, err := Load(writeFile(t, dir, "di.toml", `
workspace = "."

[run]
image = "alpine"

[[run.mount]]
type = "bind"
source = "data"
destination = "/data"

[homedir]
size = 1024
`))
	require.NoError(t, err)
	assert.Equal(t, dir, doc["workspace"])

	run := doc["run"].(map[string]any)
	assert.Equal(t, []any{map[string]any{"type": "bind", "source": "data", "destination": "/data"}}, run["mount"])
	assert.Equal(t, 1024, doc["homedir"].(map[string]any)["size"])
}

func TestLoad_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	doc, err := Load(writeFile(t, dir, "di.yml", ""))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"workspace": dir}, doc)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	cases := []struct {
		name string
		file string
		body string
		want error
	}{
		{"unsupported extension", "di.ini", "a=b", ErrUnsupportedFormat},
		{"invalid yaml", "di.yml", "run: [unterminated", ErrInvalidDocument},
		{"scalar document", "di.yml", "just a string", ErrInvalidDocument},
		{"non-string workspace", "di.yaml", "workspace: 3", ErrInvalidDocument},
		{"invalid toml", "di.toml", "run = ", ErrInvalidDocument},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeFile(t, dir, tc.file, tc.body))
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)

			var loadErr *LoadError
			assert.ErrorAs(t, err, &loadErr)
		})
	}
}

// =============================================================================
// LoadOrDefault Tests
// =============================================================================

func TestLoadOrDefault_MissingImplicit(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	doc, err := LoadOrDefault(filepath.Join(t.TempDir(), DefaultFile), false, logger)
	require.NoError(t, err)

	cwd, _ := os.Getwd()
	assert.Equal(t, map[string]any{"workspace": cwd}, doc)
}

func TestLoadOrDefault_MissingExplicit(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	_, err := LoadOrDefault(filepath.Join(t.TempDir(), "custom.yml"), true, logger)
	assert.ErrorIs(t, err, ErrNotFound)
}
