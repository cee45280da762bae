package plugins

import (
	"context"
	"fmt"
	"path/filepath"
	"reflect"

	"github.com/artpar/di/internal/core/compose"
	"github.com/artpar/di/internal/core/document"
	"github.com/artpar/di/internal/core/plugin"
	"github.com/artpar/di/internal/core/schema"
)

// composePlugin imports a service from a Docker Compose file into the run
// and build sections. Imported values replace values that are absent or
// still equal to their schema default; anything set explicitly in the
// document wins.
type composePlugin struct {
	plugin.Base
	readFile func(name string) ([]byte, error)
}

func (p *composePlugin) DeclareArguments(args *plugin.Arguments) {
	args.Add(plugin.ArgumentSpec{Name: "compose-file", Path: "/compose/file"})
	args.Add(plugin.ArgumentSpec{Name: "compose-service", Path: "/compose/service"})
}

func (p *composePlugin) Transform(_ context.Context, env *plugin.Env, doc map[string]any) (map[string]any, error) {
	file, _ := document.Get(doc, "/compose/file", "")
	name, _ := file.(string)
	if name == "" {
		return doc, nil
	}
	service, _ := document.Get(doc, "/compose/service", "")
	serviceName, _ := service.(string)

	workspace, _ := doc["workspace"].(string)
	if !filepath.IsAbs(name) && workspace != "" {
		name = filepath.Join(workspace, name)
	}
	content, err := p.readFile(name)
	if err != nil {
		return nil, fmt.Errorf("read compose file: %w", err)
	}
	svc, err := compose.ParseService(content, filepath.Dir(name), serviceName)
	if err != nil {
		return nil, err
	}

	if err := importSection(doc, env.Schema, "/run", svc.RunSection()); err != nil {
		return nil, err
	}
	if err := importSection(doc, env.Schema, "/build", svc.BuildSection()); err != nil {
		return nil, err
	}
	env.Logger.Info("imported compose service", "file", name, "service", svc.Name)
	return doc, nil
}

func importSection(doc map[string]any, s schema.Schema, section string, values map[string]any) error {
	for _, key := range document.SortedKeys(values) {
		path := document.Child(section, key)
		current, err := document.Get(doc, path, "")
		if err == nil && !isDefault(s, path, current) {
			continue
		}
		if err := document.Set(doc, path, values[key], ""); err != nil {
			return err
		}
	}
	return nil
}

func isDefault(s schema.Schema, path string, value any) bool {
	property, err := schema.Property(s, path)
	if err != nil {
		return false
	}
	def, ok := property["default"]
	return ok && reflect.DeepEqual(def, value)
}
