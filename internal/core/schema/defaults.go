package schema

import (
	"fmt"

	"github.com/artpar/di/internal/core/document"
)

// PopulateDefaults writes every `default` declared in s into doc unless a
// value is already present, descending into (and creating) sub-mappings for
// properties that declare nested properties. A nil value is treated as
// absent for object properties so that `run:` with no body still receives
// its defaults.
func PopulateDefaults(doc map[string]any, s Schema) (map[string]any, error) {
	return populate(doc, s, document.Separator)
}

func populate(doc map[string]any, s Schema, at string) (map[string]any, error) {
	if doc == nil {
		doc = map[string]any{}
	}
	properties, _ := s["properties"].(map[string]any)
	for _, name := range document.SortedKeys(properties) {
		property, ok := properties[name].(map[string]any)
		if !ok {
			continue
		}

		if def, ok := property["default"]; ok {
			if _, exists := doc[name]; !exists {
				doc[name] = document.Clone(def)
			}
		}

		if _, ok := property["properties"].(map[string]any); !ok {
			continue
		}
		sub, exists := doc[name]
		if !exists || sub == nil {
			sub = map[string]any{}
		}
		subMap, ok := sub.(map[string]any)
		if !ok {
			return nil, document.NewPathError("defaults", document.Child(at, name),
				fmt.Errorf("%w: expected a mapping but got %T", document.ErrTypeMismatch, sub))
		}
		filled, err := populate(subMap, property, document.Child(at, name))
		if err != nil {
			return nil, err
		}
		doc[name] = filled
	}
	return doc, nil
}

// Property returns the sub-schema that describes docPath, following the
// `properties` chain (`/run/user` → `/properties/run/properties/user`).
func Property(s Schema, docPath string) (Schema, error) {
	segments, err := document.Split(docPath, "")
	if err != nil {
		return nil, err
	}
	schemaPath := make([]string, 0, 2*len(segments))
	for _, segment := range segments {
		schemaPath = append(schemaPath, "properties", segment)
	}
	value, err := document.Get(s, document.Join(schemaPath...), "")
	if err != nil {
		return nil, err
	}
	property, ok := value.(map[string]any)
	if !ok {
		return nil, document.NewPathError("get", docPath, document.ErrTypeMismatch)
	}
	return property, nil
}
