// Package substitute expands references embedded in document strings.
//
// Two marker forms are recognized:
//
//	#{path}  a value elsewhere in the same document; relative paths are
//	         resolved against the parent of the string's own location
//	${path}  a value from the variable registry, rooted at the namespace
//
// Self-references are exhausted before variable references are expanded.
// Each pass replaces every occurrence of the first marker found, and the
// replacement text may itself contain markers.
package substitute

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/artpar/di/internal/core/document"
	"github.com/artpar/di/internal/core/variables"
)

// DefaultMaxPasses bounds the number of replacements per leaf and phase.
const DefaultMaxPasses = 1000

// DefaultFallback is substituted for variable references that do not resolve.
const DefaultFallback = "/"

var (
	selfRef     = regexp.MustCompile(`#\{(.*?)\}`)
	variableRef = regexp.MustCompile(`\$\{(.*?)\}`)
)

// Resolver expands references against a document and a variable registry.
// The zero value of Fallback and MaxPasses selects the defaults; a negative
// MaxPasses disables the pass limit.
type Resolver struct {
	Document  map[string]any
	Variables *variables.Registry
	Fallback  any
	MaxPasses int
	Logger    *slog.Logger
}

// New returns a Resolver for doc using vars.
func New(doc map[string]any, vars *variables.Registry, logger *slog.Logger) *Resolver {
	return &Resolver{
		Document:  doc,
		Variables: vars,
		Fallback:  DefaultFallback,
		MaxPasses: DefaultMaxPasses,
		Logger:    logger,
	}
}

// Resolve expands every string leaf of doc, using doc itself as the target
// of self-references, and returns the rebuilt document.
func (r *Resolver) Resolve(doc map[string]any) (map[string]any, error) {
	scoped := *r
	scoped.Document = doc
	out, err := document.Walk(doc, scoped.Value)
	if err != nil {
		return nil, err
	}
	return out.(map[string]any), nil
}

// Value expands a single value that lives at leafPath. Non-string values are
// returned unchanged.
func (r *Resolver) Value(value any, leafPath string) (any, error) {
	s, ok := value.(string)
	if !ok {
		return value, nil
	}

	s, err := r.expand(s, leafPath, selfRef, func(ref string) (string, error) {
		v, err := document.Get(r.Document, ref, document.Dir(leafPath))
		if err != nil {
			return "", fmt.Errorf("resolve #{%s} in %s: %w", ref, leafPath, err)
		}
		return document.Stringify(v), nil
	})
	if err != nil {
		return nil, err
	}

	return r.expand(s, leafPath, variableRef, func(ref string) (string, error) {
		return document.Stringify(r.lookup(ref, leafPath)), nil
	})
}

func (r *Resolver) expand(s, leafPath string, pattern *regexp.Regexp, resolve func(string) (string, error)) (string, error) {
	limit := r.MaxPasses
	if limit == 0 {
		limit = DefaultMaxPasses
	}
	for passes := 0; ; passes++ {
		match := pattern.FindStringSubmatch(s)
		if match == nil {
			return s, nil
		}
		if limit > 0 && passes >= limit {
			return "", &CycleError{Path: leafPath, Value: s, Passes: passes}
		}
		replacement, err := resolve(match[1])
		if err != nil {
			return "", err
		}
		s = strings.ReplaceAll(s, match[0], replacement)
	}
}

func (r *Resolver) lookup(ref, leafPath string) any {
	fallback := r.Fallback
	if fallback == nil {
		fallback = DefaultFallback
	}
	if r.Variables == nil {
		r.logger().Warn("variable not found", "variable", ref, "path", leafPath, "fallback", fallback)
		return fallback
	}
	value := r.Variables.Lookup(ref, notFound{})
	if _, miss := value.(notFound); miss {
		r.logger().Warn("variable not found", "variable", ref, "path", leafPath, "fallback", fallback)
		return fallback
	}
	return value
}

type notFound struct{}

func (r *Resolver) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}
