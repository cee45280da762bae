// Package variables holds the named values that `${...}` references resolve
// against during substitution.
//
// A Registry is a tree of namespaces: `env` is seeded from the process
// environment and plugins add their own (`user`, `group`). One Registry is
// owned by a single invocation and is not safe for concurrent use.
package variables

import (
	"strings"

	"github.com/artpar/di/internal/core/document"
)

// EnvNamespace is the namespace seeded from the process environment.
const EnvNamespace = "env"

// Registry maps namespaces to value trees.
type Registry struct {
	namespaces map[string]any
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{namespaces: map[string]any{}}
}

// FromEnviron returns a registry whose `env` namespace holds the KEY=VALUE
// pairs of environ. Entries without `=` map to an empty string.
func FromEnviron(environ []string) *Registry {
	env := make(map[string]any, len(environ))
	for _, kv := range environ {
		key, value, _ := strings.Cut(kv, "=")
		if key == "" {
			continue
		}
		env[key] = value
	}
	r := New()
	r.Register(EnvNamespace, env)
	return r
}

// Register creates or replaces a namespace.
func (r *Registry) Register(namespace string, values map[string]any) {
	if values == nil {
		values = map[string]any{}
	}
	r.namespaces[namespace] = values
}

// Lookup resolves a path whose first segment names the namespace. The
// leading separator is optional. fallback is returned when any segment is
// missing or the path is malformed.
func (r *Registry) Lookup(path string, fallback any) any {
	if !strings.HasPrefix(path, document.Separator) {
		path = document.Separator + path
	}
	value, err := document.Get(r.namespaces, path, "")
	if err != nil {
		return fallback
	}
	return value
}

// Namespaces returns the registered namespace names in sorted order.
func (r *Registry) Namespaces() []string {
	return document.SortedKeys(r.namespaces)
}

// Snapshot returns a deep copy of every namespace.
func (r *Registry) Snapshot() map[string]any {
	return document.Clone(r.namespaces).(map[string]any)
}
