package plugins

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/artpar/di/internal/core/document"
	"github.com/artpar/di/internal/core/plugin"
)

const (
	jupyterPort     = 8888
	jupyterPortsEnd = 9999
	tokenFlag       = "--NotebookApp.token="
)

// jupyterPlugin publishes the notebook port of `jupyter notebook` and
// `jupyter lab` commands and makes the server reachable from the host.
type jupyterPlugin struct {
	plugin.Base
	freePort PortFinder
	hostname func() (string, error)
}

func (p *jupyterPlugin) Transform(_ context.Context, env *plugin.Env, doc map[string]any) (map[string]any, error) {
	value, err := document.Get(doc, "/run/cmd", "")
	if err != nil {
		return doc, nil
	}
	cmd, _ := value.([]any)
	if len(cmd) < 2 || cmd[0] != "jupyter" || (cmd[1] != "notebook" && cmd[1] != "lab") {
		return doc, nil
	}
	if p.freePort == nil {
		return nil, fmt.Errorf("no port finder configured")
	}

	cmd = append(cmd, "--no-browser")

	port, err := p.freePort(jupyterPort, jupyterPortsEnd)
	if err != nil {
		return nil, fmt.Errorf("find a free port for jupyter: %w", err)
	}
	err = document.Append(doc, "/run/publish", map[string]any{
		"container": jupyterPort,
		"host":      port,
	}, "")
	if err != nil {
		return nil, err
	}

	token, found := flagValue(cmd, tokenFlag)
	if !found {
		token = strings.ReplaceAll(uuid.NewString(), "-", "")
		cmd = append(cmd, tokenFlag+token)
	}
	if _, found := flagValue(cmd, "--ip"); !found {
		cmd = append(cmd, "--ip=0.0.0.0")
	}
	if err := document.Set(doc, "/run/cmd", cmd, ""); err != nil {
		return nil, err
	}

	host, err := p.hostname()
	if err != nil {
		host = "localhost"
	}
	env.Logger.Info("containerized notebook server will be available",
		"url", fmt.Sprintf("http://%s:%d?token=%s", host, port, token))
	return doc, nil
}

// flagValue returns the remainder of the first argument starting with prefix.
func flagValue(cmd []any, prefix string) (string, bool) {
	for _, arg := range cmd {
		s, ok := arg.(string)
		if ok && strings.HasPrefix(s, prefix) {
			return strings.TrimPrefix(s, prefix), true
		}
	}
	return "", false
}
