package plugins

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Runner executes an external command and returns its exit status.
type Runner interface {
	Run(ctx context.Context, argv []string) (int, error)
}

// ImageFiles copies files out of a container image. files maps paths
// inside the image to destination paths on the host.
type ImageFiles interface {
	ExtractFiles(ctx context.Context, image string, files map[string]string) error
}

// Account is a host user together with the group it runs as.
type Account struct {
	Name  string
	UID   int
	Group string
	GID   int
}

// AccountLookup resolves a user (name or uid, empty for the current user)
// and a group (name or gid, empty for the user's primary group).
type AccountLookup func(user, group string) (Account, error)

// TokenCache reports when the cached gcloud access token expires. ok is
// false when no token is cached.
type TokenCache interface {
	Expiry(ctx context.Context) (expiry time.Time, ok bool, err error)
}

// PortFinder returns a free host port in [from, to).
type PortFinder func(from, to int) (int, error)

// Deps are the host facilities the built-in plugins depend on.
type Deps struct {
	Logger *slog.Logger
	// Level is adjusted by the base plugin to the document's log-level.
	Level      *slog.LevelVar
	Runner     Runner
	Images     ImageFiles
	Accounts   AccountLookup
	Tokens     TokenCache
	FreePort   PortFinder
	IsTerminal func() bool
	ReadFile   func(name string) ([]byte, error)
	Hostname   func() (string, error)
	Now        func() time.Time
	// TempDir is the parent of the user plugin's scratch directory ("" = os.TempDir).
	TempDir string
}

func (d Deps) withDefaults() Deps {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.IsTerminal == nil {
		d.IsTerminal = func() bool { return false }
	}
	if d.ReadFile == nil {
		d.ReadFile = os.ReadFile
	}
	if d.Hostname == nil {
		d.Hostname = os.Hostname
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}
