package gcloud

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTokenDB(t *testing.T, rows ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "access_tokens.db")
	db, err := sqlx.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	db.MustExec(`CREATE TABLE access_tokens (
		account_id TEXT PRIMARY KEY,
		access_token TEXT,
		token_expiry TIMESTAMP,
		rapt_token TEXT
	)`)
	for i, expiry := range rows {
		db.MustExec("INSERT INTO access_tokens (account_id, access_token, token_expiry) VALUES (?, ?, ?)",
			i, "token", expiry)
	}
	return path
}

func TestExpiry_ReadsTimestamp(t *testing.T) {
	cache, err := NewTokenCache(newTokenDB(t, "2030-01-02 03:04:05"))
	require.NoError(t, err)

	expiry, ok, err := cache.Expiry(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, expiry.Equal(time.Date(2030, 1, 2, 3, 4, 5, 0, time.Local)), expiry.String())
}

func TestExpiry_EmptyTable(t *testing.T) {
	cache, err := NewTokenCache(newTokenDB(t))
	require.NoError(t, err)

	_, ok, err := cache.Expiry(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestExpiry_MissingDatabase(t *testing.T) {
	cache, err := NewTokenCache(filepath.Join(t.TempDir(), "absent.db"))
	require.NoError(t, err)

	_, ok, err := cache.Expiry(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestParseExpiry(t *testing.T) {
	want := time.Date(2024, 6, 1, 12, 30, 0, 500000000, time.Local)
	for _, raw := range []any{
		"2024-06-01 12:30:00.5",
		[]byte("2024-06-01T12:30:00.5"),
		time.Date(2024, 6, 1, 12, 30, 0, 500000000, time.UTC),
	} {
		got, err := parseExpiry(raw)
		require.NoError(t, err)
		assert.True(t, want.Equal(got), "%v", raw)
	}

	_, err := parseExpiry("yesterday")
	assert.Error(t, err)
	_, err = parseExpiry(42)
	assert.Error(t, err)
}
