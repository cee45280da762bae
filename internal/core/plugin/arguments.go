package plugin

import (
	"github.com/artpar/di/internal/core/document"
	"github.com/artpar/di/internal/core/schema"
)

// ArgumentSpec declares a command-line argument that is copied into the
// document at Path before the declaring plugin runs.
type ArgumentSpec struct {
	Name      string
	Shorthand string
	Path      string
	// Remainder collects every positional argument left after the flags.
	Remainder bool
	Help      string
	// Type is the JSON-Schema type of the value (string, boolean, integer, ...).
	Type    string
	Choices []string
}

// Values holds parsed argument values keyed by argument name. Absent and
// nil entries are not copied into the document.
type Values map[string]any

// Arguments collects the declarations of one plugin.
type Arguments struct {
	specs []ArgumentSpec
}

// Add records spec. The name defaults to the last segment of its path.
func (a *Arguments) Add(spec ArgumentSpec) {
	if spec.Name == "" {
		if segments, err := document.Split(spec.Path, ""); err == nil && len(segments) > 0 {
			spec.Name = segments[len(segments)-1]
		}
	}
	a.specs = append(a.specs, spec)
}

// Specs returns the recorded declarations.
func (a *Arguments) Specs() []ArgumentSpec {
	return a.specs
}

// describe fills help, type and choices from the property the argument targets.
func describe(spec ArgumentSpec, s schema.Schema) ArgumentSpec {
	property, err := schema.Property(s, spec.Path)
	if err != nil {
		return spec
	}
	if spec.Help == "" {
		spec.Help, _ = property["description"].(string)
	}
	if spec.Type == "" {
		spec.Type, _ = property["type"].(string)
	}
	if len(spec.Choices) == 0 {
		if enum, ok := property["enum"].([]any); ok {
			for _, choice := range enum {
				spec.Choices = append(spec.Choices, document.Stringify(choice))
			}
		}
	}
	return spec
}

// apply copies the present, non-nil values of specs into doc.
func apply(doc map[string]any, specs []ArgumentSpec, values Values) error {
	for _, spec := range specs {
		value, ok := values[spec.Name]
		if !ok || value == nil {
			continue
		}
		if err := document.Set(doc, spec.Path, value, ""); err != nil {
			return err
		}
	}
	return nil
}
