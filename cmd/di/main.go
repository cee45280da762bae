package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/artpar/di/internal/cli"
)

// Version information (set by build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, err := LoadConfig(configFlag(args))
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		return cli.ExitConfigError
	}

	logger, level := SetupLogger(cfg, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := hostDeps(cfg, logger)
	if closer, ok := deps.Images.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	app := &cli.App{
		Logger:  logger,
		Level:   level,
		Deps:    deps,
		File:    cfg.File,
		Version: fmt.Sprintf("%s (built %s)", Version, BuildTime),
	}
	return cli.Execute(ctx, app, args)
}
