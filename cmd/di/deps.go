package main

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"github.com/mattn/go-isatty"

	"github.com/artpar/di/internal/plugins"
	"github.com/artpar/di/internal/shell/docker"
	"github.com/artpar/di/internal/shell/executor"
	"github.com/artpar/di/internal/shell/gcloud"
	"github.com/artpar/di/internal/shell/hostuser"
	"github.com/artpar/di/internal/shell/netutil"
)

// hostDeps wires the shell packages into the plugin dependencies.
func hostDeps(cfg *Config, logger *slog.Logger) plugins.Deps {
	deps := plugins.Deps{
		Runner:   executor.New(logger),
		Images:   &lazyDocker{host: cfg.Docker.Host},
		Accounts: lookupAccount,
		FreePort: netutil.FreePort,
		IsTerminal: func() bool {
			return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
		},
	}
	tokens, err := gcloud.NewTokenCache(cfg.GCloud.TokenCache)
	if err != nil {
		logger.Debug("gcloud token cache unavailable", "error", err)
	} else {
		deps.Tokens = tokens
	}
	return deps
}

func lookupAccount(user, group string) (plugins.Account, error) {
	account, err := hostuser.Lookup(user, group)
	return plugins.Account(account), err
}

// lazyDocker connects to the daemon on first use so commands that never
// copy files from an image do not need one.
type lazyDocker struct {
	host string

	once   sync.Once
	client *docker.DockerClient
	err    error
}

func (l *lazyDocker) ExtractFiles(ctx context.Context, image string, files map[string]string) error {
	l.once.Do(func() {
		l.client, l.err = docker.NewDockerClient(ctx, l.host)
	})
	if l.err != nil {
		return l.err
	}
	return l.client.ExtractFiles(ctx, image, files)
}

func (l *lazyDocker) Close() error {
	if l.client == nil {
		return nil
	}
	return l.client.Close()
}
