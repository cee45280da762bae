package plugins

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"time"
)

// =============================================================================
// Fakes
// =============================================================================

type fakeRunner struct {
	calls [][]string
	code  int
	err   error
}

func (f *fakeRunner) Run(_ context.Context, argv []string) (int, error) {
	f.calls = append(f.calls, argv)
	return f.code, f.err
}

type fakeImages struct {
	image string
	files map[string]string
	err   error
}

func (f *fakeImages) ExtractFiles(_ context.Context, image string, files map[string]string) error {
	f.image = image
	f.files = files
	if f.err != nil {
		return f.err
	}
	for source, destination := range files {
		content := "root:x:0:0:root:/root:/bin/sh\n"
		if source == "/etc/group" {
			content = "root:x:0:\n"
		}
		if err := os.WriteFile(destination, []byte(content), 0o644); err != nil {
			return err
		}
	}
	return nil
}

type fakeTokens struct {
	expiry time.Time
	ok     bool
	err    error
}

func (f fakeTokens) Expiry(context.Context) (time.Time, bool, error) {
	return f.expiry, f.ok, f.err
}

var alice = Account{Name: "alice", UID: 1000, Group: "staff", GID: 100}

func fakeAccounts(user, group string) (Account, error) {
	switch user {
	case "", "alice", "1000":
	default:
		return Account{}, errors.New("unknown user " + user)
	}
	account := alice
	if group != "" {
		account.Group = group
	}
	return account, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testDeps(runner *fakeRunner, images *fakeImages, tempDir string) Deps {
	return Deps{
		Logger:     discardLogger(),
		Level:      new(slog.LevelVar),
		Runner:     runner,
		Images:     images,
		Accounts:   fakeAccounts,
		FreePort:   func(from, to int) (int, error) { return from + 2, nil },
		IsTerminal: func() bool { return false },
		Hostname:   func() (string, error) { return "devbox", nil },
		TempDir:    tempDir,
	}
}
