// Package command formats a fully resolved document into a docker command line.
//
// The functions are pure: the input document is never modified. Parameters
// with falsy values (false, 0, "", empty lists) are omitted, list values
// repeat the flag, and mappings are emitted in key order.
package command

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/docker/go-connections/nat"

	"github.com/artpar/di/internal/core/document"
)

var runParameters = []string{
	"user", "workdir", "rm", "interactive", "tty", "env-file", "cpu-shares", "name",
	"network", "label", "memory", "entrypoint", "runtime", "privileged",
}

var buildParameters = []string{"tag", "file", "no-cache", "quiet", "cpu-shares", "memory"}

// =============================================================================
// Run
// =============================================================================

// BuildRun returns the `docker run` argv described by doc.
func BuildRun(doc map[string]any) ([]string, error) {
	parts, err := dockerBinary(doc, "run")
	if err != nil {
		return nil, err
	}
	workspace, _ := doc["workspace"].(string)

	run, ok := doc["run"].(map[string]any)
	if !ok {
		return nil, missing("/run", "a mapping")
	}
	run = document.Clone(run).(map[string]any)

	if files, ok := run["env-file"].([]any); ok {
		joined := make([]any, len(files))
		for i, f := range files {
			joined[i] = joinPath(workspace, document.Stringify(f))
		}
		run["env-file"] = joined
	}
	parts = append(parts, parameterParts(run, runParameters...)...)

	mounts, err := mountParts(run["mount"], workspace)
	if err != nil {
		return nil, err
	}
	parts = append(parts, mounts...)

	if env, ok := run["env"].(map[string]any); ok {
		for _, key := range document.SortedKeys(env) {
			if env[key] == nil {
				parts = append(parts, "--env="+key)
				continue
			}
			parts = append(parts, fmt.Sprintf("--env=%s=%s", key, document.Stringify(env[key])))
		}
	}

	publish, err := publishParts(run["publish"])
	if err != nil {
		return nil, err
	}
	parts = append(parts, publish...)

	tmpfs, err := tmpfsParts(run["tmpfs"])
	if err != nil {
		return nil, err
	}
	parts = append(parts, tmpfs...)

	image, ok := run["image"].(string)
	if !ok || image == "" {
		return nil, missing("/run/image", "a string")
	}
	parts = append(parts, image)

	if cmd, ok := run["cmd"].([]any); ok {
		for _, arg := range cmd {
			parts = append(parts, document.Stringify(arg))
		}
	}
	return parts, nil
}

func mountParts(v any, workspace string) ([]string, error) {
	mounts, _ := v.([]any)
	var parts []string
	for i, item := range mounts {
		field := fmt.Sprintf("/run/mount/%d", i)
		mount, ok := item.(map[string]any)
		if !ok {
			return nil, missing(field, "a mapping")
		}
		source := document.Stringify(mount["source"])
		switch mount["type"] {
		case "tmpfs":
			return nil, &FieldError{Field: field, Err: fmt.Errorf(
				"%w: tmpfs mounts are not supported by the mount directive, use tmpfs instead", ErrUnsupportedMount)}
		case "bind":
			abs, err := filepath.Abs(joinPath(workspace, source))
			if err != nil {
				return nil, &FieldError{Field: field + "/source", Err: err}
			}
			source = abs
		}
		destination, ok := mount["destination"].(string)
		if !ok {
			return nil, missing(field+"/destination", "a string")
		}
		volume := "--volume=" + destination
		if source != "" {
			volume = fmt.Sprintf("--volume=%s:%s", source, destination)
		}
		if document.Truthy(mount["readonly"]) {
			volume += ":ro"
		}
		parts = append(parts, volume)
	}
	return parts, nil
}

func publishParts(v any) ([]string, error) {
	ports, _ := v.([]any)
	var parts []string
	for i, item := range ports {
		field := fmt.Sprintf("/run/publish/%d", i)
		port, ok := item.(map[string]any)
		if !ok {
			return nil, missing(field, "a mapping")
		}
		spec := fmt.Sprintf("%s:%s:%s",
			document.Stringify(port["ip"]), document.Stringify(port["host"]), document.Stringify(port["container"]))
		if _, err := nat.ParsePortSpec(spec); err != nil {
			return nil, &FieldError{Field: field, Err: fmt.Errorf("%w: %v", ErrInvalidPublish, err)}
		}
		parts = append(parts, "--publish="+spec)
	}
	return parts, nil
}

func tmpfsParts(v any) ([]string, error) {
	entries, _ := v.([]any)
	var parts []string
	for i, item := range entries {
		field := fmt.Sprintf("/run/tmpfs/%d", i)
		tmpfs, ok := item.(map[string]any)
		if !ok {
			return nil, missing(field, "a mapping")
		}
		destination, ok := tmpfs["destination"].(string)
		if !ok {
			return nil, missing(field+"/destination", "a string")
		}
		var options []string
		if list, ok := tmpfs["options"].([]any); ok {
			for _, option := range list {
				options = append(options, document.Stringify(option))
			}
		}
		for _, key := range []string{"mode", "size"} {
			if value, ok := tmpfs[key]; ok {
				options = append(options, key+"="+document.Stringify(value))
			}
		}
		if len(options) > 0 {
			destination += ":" + strings.Join(options, ",")
		}
		parts = append(parts, "--tmpfs", destination)
	}
	return parts, nil
}

// =============================================================================
// Build
// =============================================================================

// BuildBuild returns the `docker build` argv described by doc. The context
// path is taken relative to the workspace and the Dockerfile relative to the
// context path.
func BuildBuild(doc map[string]any) ([]string, error) {
	parts, err := dockerBinary(doc, "build")
	if err != nil {
		return nil, err
	}
	workspace, _ := doc["workspace"].(string)

	build, ok := doc["build"].(map[string]any)
	if !ok {
		return nil, missing("/build", "a mapping")
	}
	build = document.Clone(build).(map[string]any)

	contextPath, ok := build["path"].(string)
	if !ok {
		return nil, missing("/build/path", "a string")
	}
	contextPath = joinPath(workspace, contextPath)
	file, ok := build["file"].(string)
	if !ok {
		return nil, missing("/build/file", "a string")
	}
	build["file"] = joinPath(contextPath, file)

	parts = append(parts, parameterParts(build, buildParameters...)...)
	if args, ok := build["build-arg"].(map[string]any); ok {
		for _, key := range document.SortedKeys(args) {
			parts = append(parts, fmt.Sprintf("--build-arg=%s=%s", key, document.Stringify(args[key])))
		}
	}
	return append(parts, contextPath), nil
}

// =============================================================================
// Helpers
// =============================================================================

func dockerBinary(doc map[string]any, subcommand string) ([]string, error) {
	binary, _ := doc["docker"].(string)
	fields := strings.Fields(binary)
	if len(fields) == 0 {
		return nil, missing("/docker", "the name of the docker CLI")
	}
	return append(fields, subcommand), nil
}

func parameterParts(section map[string]any, parameters ...string) []string {
	var parts []string
	for _, parameter := range parameters {
		value := section[parameter]
		if !document.Truthy(value) {
			continue
		}
		values, ok := value.([]any)
		if !ok {
			values = []any{value}
		}
		for _, v := range values {
			parts = append(parts, fmt.Sprintf("--%s=%s", parameter, document.Stringify(v)))
		}
	}
	return parts
}

// joinPath joins p onto base unless p is already absolute.
func joinPath(base, p string) string {
	if filepath.IsAbs(p) || base == "" {
		return p
	}
	return filepath.Join(base, p)
}
