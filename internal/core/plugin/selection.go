package plugin

import (
	"fmt"
	"sort"
	"strings"
)

// DirectiveKey is the document field that selects plugins.
const DirectiveKey = "plugins"

// Directive is the parsed `plugins` field of a document.
//
// A nil Whitelist with empty Enable and Disable selects the plugins that are
// enabled by default.
type Directive struct {
	Whitelist []string
	Enable    []string
	Disable   []string
}

// ParseDirective interprets the `plugins` field: absent (nil), a list of
// names, or a mapping with `enable` and/or `disable` lists.
func ParseDirective(v any) (Directive, error) {
	switch value := v.(type) {
	case nil:
		return Directive{}, nil
	case []any, []string:
		names, err := parseNames(value)
		if err != nil {
			return Directive{}, err
		}
		if names == nil {
			names = []string{}
		}
		return Directive{Whitelist: names}, nil
	case map[string]any:
		var d Directive
		for key, list := range value {
			names, err := parseNames(list)
			if err != nil {
				return Directive{}, fmt.Errorf("%w: %s: %v", ErrInvalidDirective, key, err)
			}
			switch key {
			case "enable":
				d.Enable = names
			case "disable":
				d.Disable = names
			default:
				return Directive{}, fmt.Errorf("%w: unexpected key %q", ErrInvalidDirective, key)
			}
		}
		return d, nil
	default:
		return Directive{}, fmt.Errorf("%w: expected a list or a mapping but got %T", ErrInvalidDirective, v)
	}
}

func parseNames(v any) ([]string, error) {
	switch list := v.(type) {
	case nil:
		return nil, nil
	case []string:
		out := make([]string, len(list))
		for i, name := range list {
			out[i] = strings.ToLower(name)
		}
		return out, nil
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			name, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: plugin names must be strings, got %T", ErrInvalidDirective, item)
			}
			out = append(out, strings.ToLower(name))
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: expected a list of names but got %T", ErrInvalidDirective, v)
	}
}

// Select resolves d against the registry, keeps the plugins that apply to
// command and orders them by ascending Order. Ties keep registration order.
func (r *Registry) Select(d Directive, command string) ([]Descriptor, error) {
	chosen := map[string]bool{}
	if d.Whitelist != nil {
		for _, name := range d.Whitelist {
			if err := r.known(name); err != nil {
				return nil, err
			}
			chosen[name] = true
		}
	} else {
		for _, desc := range r.descriptors {
			chosen[desc.Name] = desc.Enabled
		}
		for _, name := range d.Enable {
			if err := r.known(name); err != nil {
				return nil, err
			}
			chosen[name] = true
		}
		for _, name := range d.Disable {
			if err := r.known(name); err != nil {
				return nil, err
			}
			chosen[name] = false
		}
	}

	var selected []Descriptor
	for _, desc := range r.descriptors {
		if chosen[desc.Name] && desc.Commands.Applies(command) {
			selected = append(selected, desc)
		}
	}
	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].Order < selected[j].Order
	})
	return selected, nil
}

func (r *Registry) known(name string) error {
	if _, ok := r.byName[name]; !ok {
		return &ResolutionError{Name: name, Available: r.Names()}
	}
	return nil
}
