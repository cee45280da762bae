package plugins

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/artpar/di/internal/core/document"
	"github.com/artpar/di/internal/core/plugin"
	"github.com/artpar/di/internal/core/substitute"
)

// userPlugin runs the container as the host user. It publishes the `user`
// and `group` variable namespaces and, outside dry-run, mounts copies of the
// image's /etc/passwd and /etc/group extended with the host account.
type userPlugin struct {
	plugin.Base
	accounts AccountLookup
	images   ImageFiles
	tempRoot string

	tempDir string
}

func (p *userPlugin) DeclareArguments(args *plugin.Arguments) {
	args.Add(plugin.ArgumentSpec{Path: "/run/user"})
}

func (p *userPlugin) Transform(ctx context.Context, env *plugin.Env, doc map[string]any) (map[string]any, error) {
	if p.accounts == nil {
		return nil, fmt.Errorf("no account lookup configured")
	}
	spec, _ := env.Args["user"].(string)
	userSpec, groupSpec, _ := strings.Cut(spec, ":")
	account, err := p.accounts(userSpec, groupSpec)
	if err != nil {
		return nil, fmt.Errorf("resolve host account: %w", err)
	}

	env.Variables.Register("user", map[string]any{"uid": account.UID, "name": account.Name})
	env.Variables.Register("group", map[string]any{"gid": account.GID, "name": account.Group})
	if err := document.Set(doc, "/run/user", "${user/uid}:${group/gid}", ""); err != nil {
		return nil, err
	}

	if env.DryRun {
		env.Logger.Warn("cannot mount /etc/passwd and /etc/group during dry-run")
		return doc, nil
	}
	if p.images == nil {
		return nil, fmt.Errorf("no docker client configured")
	}

	image, err := document.Get(doc, "/run/image", "")
	if err != nil {
		return nil, err
	}
	image, err = substitute.New(doc, env.Variables, env.Logger).Value(image, "/run/image")
	if err != nil {
		return nil, err
	}

	p.tempDir, err = os.MkdirTemp(p.tempRoot, "di-user-")
	if err != nil {
		return nil, fmt.Errorf("create scratch directory: %w", err)
	}
	files := map[string]string{
		"/etc/passwd": filepath.Join(p.tempDir, "passwd"),
		"/etc/group":  filepath.Join(p.tempDir, "group"),
	}
	imageName := document.Stringify(image)
	if err := p.images.ExtractFiles(ctx, imageName, files); err != nil {
		return nil, fmt.Errorf("could not copy account files from image %q (did you run `di build`?): %w", imageName, err)
	}

	lines := map[string]string{
		"/etc/passwd": fmt.Sprintf("%s:x:%d:%d:%s:/%s:/bin/sh\n",
			account.Name, account.UID, account.GID, account.Name, account.Name),
		"/etc/group": fmt.Sprintf("%s:x:%d:%s\n", account.Group, account.GID, account.Name),
	}
	for _, target := range []string{"/etc/passwd", "/etc/group"} {
		if err := appendLine(files[target], lines[target]); err != nil {
			return nil, err
		}
		err := document.Append(doc, "/run/mount", map[string]any{
			"type":        "bind",
			"source":      files[target],
			"destination": target,
		}, "")
		if err != nil {
			return nil, err
		}
	}
	return doc, nil
}

func (p *userPlugin) Cleanup(context.Context) error {
	if p.tempDir == "" {
		return nil
	}
	dir := p.tempDir
	p.tempDir = ""
	return os.RemoveAll(dir)
}

func appendLine(path, line string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(line); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
