package compose

import (
	"context"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/compose-spec/compose-go/v2/loader"
	"github.com/compose-spec/compose-go/v2/types"
	"gopkg.in/yaml.v3"
)

// projectName is the compose project name used while loading; it never
// reaches the document.
const projectName = "di"

// =============================================================================
// Parser Functions
// =============================================================================

// ParseService parses compose YAML and returns the named service. Relative
// paths (build context, bind sources) are resolved against workingDir. An
// empty service name selects the only service of a single-service file.
func ParseService(content []byte, workingDir, service string) (*Service, error) {
	// Input validation
	if strings.TrimSpace(string(content)) == "" {
		return nil, ErrEmptyInput
	}

	project, err := loadProject(content, workingDir)
	if err != nil {
		return nil, err
	}

	if service == "" {
		if len(project.Services) != 1 {
			return nil, NewParseError("services", "a service name is required", ErrAmbiguousService)
		}
		for name := range project.Services {
			service = name
		}
	}

	svc, ok := project.Services[service]
	if !ok {
		return nil, NewParseError("services."+service, "no such service", ErrServiceNotFound)
	}
	converted := convertService(service, svc, workingDir)
	return &converted, nil
}

// loadProject loads a compose file using compose-go
func loadProject(content []byte, workingDir string) (*types.Project, error) {
	// Parse YAML into a map first
	var dict map[string]interface{}
	if err := yaml.Unmarshal(content, &dict); err != nil {
		return nil, NewParseError("", "invalid YAML syntax", ErrInvalidYAML)
	}

	// Check if it's a valid object
	if dict == nil {
		return nil, NewParseError("", "invalid YAML syntax", ErrInvalidYAML)
	}

	project, err := loader.LoadWithContext(context.Background(), types.ConfigDetails{
		WorkingDir: workingDir,
		ConfigFiles: []types.ConfigFile{
			{
				Content: content,
				Config:  dict,
			},
		},
	}, func(opts *loader.Options) {
		opts.SetProjectName(projectName, false)
		opts.SkipNormalization = true
		opts.SkipExtends = true // Don't try to load external files
	})
	if err != nil {
		return nil, NewParseError("", err.Error(), ErrInvalidYAML)
	}

	return project, nil
}

// convertService converts a compose-go service to our Service type
func convertService(name string, svc types.ServiceConfig, workingDir string) Service {
	service := Service{
		Name:        name,
		Image:       svc.Image,
		Command:     svc.Command,
		Entrypoint:  svc.Entrypoint,
		Environment: make(map[string]*string, len(svc.Environment)),
		WorkingDir:  svc.WorkingDir,
		User:        svc.User,
		Labels:      make(map[string]string, len(svc.Labels)),
	}

	// Build config
	if svc.Build != nil {
		service.Build = &BuildConfig{
			Context:    absolute(workingDir, svc.Build.Context),
			Dockerfile: svc.Build.Dockerfile,
			Args:       make(map[string]string),
		}
		for k, v := range svc.Build.Args {
			if v != nil {
				service.Build.Args[k] = *v
			}
		}
	}

	// Ports
	for _, p := range svc.Ports {
		service.Ports = append(service.Ports, Port{
			Target:    p.Target,
			Published: p.Published,
			HostIP:    p.HostIP,
		})
	}

	// Environment
	for k, v := range svc.Environment {
		service.Environment[k] = v
	}

	// Volumes
	for _, v := range svc.Volumes {
		mount := VolumeMount{
			Source:   v.Source,
			Target:   v.Target,
			ReadOnly: v.ReadOnly,
		}
		switch v.Type {
		case "bind":
			mount.Type = VolumeMountTypeBind
		case "volume":
			mount.Type = VolumeMountTypeVolume
		case "tmpfs":
			mount.Type = VolumeMountTypeTmpfs
		default:
			// Infer type from source
			if strings.HasPrefix(v.Source, ".") || strings.HasPrefix(v.Source, "/") || strings.HasPrefix(v.Source, "~") {
				mount.Type = VolumeMountTypeBind
			} else {
				mount.Type = VolumeMountTypeVolume
			}
		}
		if mount.Type == VolumeMountTypeBind {
			mount.Source = absolute(workingDir, mount.Source)
		}
		service.Volumes = append(service.Volumes, mount)
	}

	// Labels
	for k, v := range svc.Labels {
		service.Labels[k] = v
	}

	return service
}

func absolute(workingDir, p string) string {
	if p == "" || workingDir == "" || filepath.IsAbs(p) || strings.HasPrefix(p, "~") {
		return p
	}
	return filepath.Join(workingDir, p)
}

// =============================================================================
// Document Sections
// =============================================================================

// RunSection returns the service as the `run` section of a document.
func (s *Service) RunSection() map[string]any {
	run := map[string]any{}
	if s.Image != "" {
		run["image"] = s.Image
	}
	if len(s.Command) > 0 {
		run["cmd"] = stringsToAny(s.Command)
	}
	if len(s.Entrypoint) > 0 {
		run["entrypoint"] = strings.Join(s.Entrypoint, " ")
	}
	if s.WorkingDir != "" {
		run["workdir"] = s.WorkingDir
	}
	if s.User != "" {
		run["user"] = s.User
	}

	if len(s.Environment) > 0 {
		env := make(map[string]any, len(s.Environment))
		for k, v := range s.Environment {
			if v == nil {
				env[k] = nil
				continue
			}
			env[k] = *v
		}
		run["env"] = env
	}

	var publish []any
	for _, p := range s.Ports {
		port := map[string]any{"container": int(p.Target)}
		if p.Published != "" {
			if n, err := strconv.Atoi(p.Published); err == nil {
				port["host"] = n
			} else {
				port["host"] = p.Published
			}
		}
		if p.HostIP != "" {
			port["ip"] = p.HostIP
		}
		publish = append(publish, port)
	}
	if publish != nil {
		run["publish"] = publish
	}

	var mounts, tmpfs []any
	for _, v := range s.Volumes {
		if v.Type == VolumeMountTypeTmpfs {
			tmpfs = append(tmpfs, map[string]any{"destination": v.Target})
			continue
		}
		mount := map[string]any{
			"type":        string(v.Type),
			"destination": v.Target,
		}
		if v.Source != "" {
			mount["source"] = v.Source
		}
		if v.ReadOnly {
			mount["readonly"] = true
		}
		mounts = append(mounts, mount)
	}
	if mounts != nil {
		run["mount"] = mounts
	}
	if tmpfs != nil {
		run["tmpfs"] = tmpfs
	}

	if len(s.Labels) > 0 {
		keys := make([]string, 0, len(s.Labels))
		for k := range s.Labels {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		labels := make([]any, len(keys))
		for i, k := range keys {
			labels[i] = k + "=" + s.Labels[k]
		}
		run["label"] = labels
	}
	return run
}

// BuildSection returns the service's build configuration as the `build`
// section of a document, or nil when the service is image-only.
func (s *Service) BuildSection() map[string]any {
	if s.Build == nil {
		return nil
	}
	build := map[string]any{}
	if s.Build.Context != "" {
		build["path"] = s.Build.Context
	}
	if s.Build.Dockerfile != "" {
		build["file"] = s.Build.Dockerfile
	}
	if s.Image != "" {
		build["tag"] = s.Image
	}
	if len(s.Build.Args) > 0 {
		args := make(map[string]any, len(s.Build.Args))
		for k, v := range s.Build.Args {
			args[k] = v
		}
		build["build-arg"] = args
	}
	return build
}

func stringsToAny(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}
