package plugins

import (
	"embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/artpar/di/internal/core/schema"
)

//go:embed schemas/*.yaml
var schemaFS embed.FS

// loadSchema decodes an embedded schema fragment.
func loadSchema(name string) (schema.Schema, error) {
	data, err := schemaFS.ReadFile("schemas/" + name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("read schema %s: %w", name, err)
	}
	var s schema.Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode schema %s: %w", name, err)
	}
	return s, nil
}
