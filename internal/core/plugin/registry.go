package plugin

import (
	"fmt"
	"strings"

	"github.com/artpar/di/internal/core/document"
)

// Registry is the table of known plugins, built once at startup.
type Registry struct {
	byName      map[string]int
	descriptors []Descriptor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: map[string]int{}}
}

// Register adds d. Names are case-insensitive and stored lower-cased.
func (r *Registry) Register(d Descriptor) error {
	d.Name = strings.ToLower(strings.TrimSpace(d.Name))
	if d.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidDescriptor)
	}
	if d.Plugin == nil {
		return fmt.Errorf("%w: %s has no implementation", ErrInvalidDescriptor, d.Name)
	}
	if _, exists := r.byName[d.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicatePlugin, d.Name)
	}
	r.byName[d.Name] = len(r.descriptors)
	r.descriptors = append(r.descriptors, d)
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(d Descriptor) {
	if err := r.Register(d); err != nil {
		panic(err)
	}
}

// Lookup returns the descriptor registered under name.
func (r *Registry) Lookup(name string) (Descriptor, bool) {
	i, ok := r.byName[strings.ToLower(name)]
	if !ok {
		return Descriptor{}, false
	}
	return r.descriptors[i], true
}

// Names returns every registered name in sorted order.
func (r *Registry) Names() []string {
	return document.SortedKeys(r.byName)
}

// Descriptors returns every descriptor in registration order.
func (r *Registry) Descriptors() []Descriptor {
	out := make([]Descriptor, len(r.descriptors))
	copy(out, r.descriptors)
	return out
}
