// Package loader reads di documents from YAML, JSON or TOML files.
package loader

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the document looked up when none is named explicitly.
const DefaultFile = "di.yml"

var (
	ErrNotFound          = errors.New("document not found")
	ErrUnsupportedFormat = errors.New("unsupported document format")
	ErrInvalidDocument   = errors.New("invalid document")
)

// LoadError wraps a failure to load the document at Path.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// =============================================================================
// Loading
// =============================================================================

// Load reads the document at path. The document's workspace (default ".")
// is made absolute relative to the file's directory.
func Load(path string) (map[string]any, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	content, err := os.ReadFile(abs)
	if errors.Is(err, os.ErrNotExist) {
		return nil, &LoadError{Path: path, Err: ErrNotFound}
	}
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	doc, err := Decode(content, filepath.Ext(abs))
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	workspace := "."
	if value, ok := doc["workspace"]; ok {
		s, ok := value.(string)
		if !ok {
			return nil, &LoadError{Path: path, Err: fmt.Errorf("%w: workspace must be a string", ErrInvalidDocument)}
		}
		workspace = s
	}
	if !filepath.IsAbs(workspace) {
		workspace = filepath.Join(filepath.Dir(abs), workspace)
	}
	doc["workspace"] = filepath.Clean(workspace)
	return doc, nil
}

// LoadOrDefault loads path. A missing file that was not named explicitly
// yields an empty document rooted at the working directory.
func LoadOrDefault(path string, explicit bool, logger *slog.Logger) (map[string]any, error) {
	doc, err := Load(path)
	if err == nil {
		logger.Debug("loaded document", "file", path)
		return doc, nil
	}
	if explicit || !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}
	logger.Warn("no document found; using the working directory as workspace", "file", path, "workspace", cwd)
	return map[string]any{"workspace": cwd}, nil
}

// Decode parses content according to the file extension ext.
func Decode(content []byte, ext string) (map[string]any, error) {
	var raw any
	switch strings.ToLower(ext) {
	case ".yml", ".yaml", ".json", "":
		if err := yaml.Unmarshal(content, &raw); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}
	case ".toml":
		var table map[string]any
		if err := toml.Unmarshal(content, &table); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}
		raw = table
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	if raw == nil {
		return map[string]any{}, nil
	}
	doc, ok := normalize(raw).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: top level must be a mapping, got %T", ErrInvalidDocument, raw)
	}
	return doc, nil
}

// normalize converts decoder-specific containers into map[string]any and
// []any.
func normalize(v any) any {
	switch node := v.(type) {
	case map[string]any:
		for k, child := range node {
			node[k] = normalize(child)
		}
		return node
	case map[any]any:
		out := make(map[string]any, len(node))
		for k, child := range node {
			out[fmt.Sprint(k)] = normalize(child)
		}
		return out
	case []any:
		for i, child := range node {
			node[i] = normalize(child)
		}
		return node
	case []map[string]any:
		out := make([]any, len(node))
		for i, child := range node {
			out[i] = normalize(child)
		}
		return out
	case int64:
		return int(node)
	default:
		return v
	}
}
