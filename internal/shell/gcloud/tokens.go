// Package gcloud reads the gcloud SDK's local credential caches.
package gcloud

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// DefaultTokenCachePath is the access token database below the user's home.
const DefaultTokenCachePath = ".config/gcloud/access_tokens.db"

const expiryQuery = "SELECT token_expiry FROM access_tokens LIMIT 1"

// timestampFormats are the layouts gcloud uses for token_expiry.
var timestampFormats = []string{
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
}

// TokenCache reads the expiry of the cached gcloud access token.
type TokenCache struct {
	path string
}

// NewTokenCache returns a cache reading the database at path. An empty path
// selects DefaultTokenCachePath in the user's home directory.
func NewTokenCache(path string) (*TokenCache, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		path = filepath.Join(home, DefaultTokenCachePath)
	}
	return &TokenCache{path: path}, nil
}

// Expiry returns the expiry of the first cached token. ok is false when
// the database does not exist or holds no token.
func (c *TokenCache) Expiry(ctx context.Context) (time.Time, bool, error) {
	if _, err := os.Stat(c.path); errors.Is(err, os.ErrNotExist) {
		return time.Time{}, false, nil
	}

	db, err := sqlx.Open("sqlite3", "file:"+c.path+"?mode=ro")
	if err != nil {
		return time.Time{}, false, fmt.Errorf("open token cache: %w", err)
	}
	defer db.Close()

	var raw any
	if err := db.GetContext(ctx, &raw, expiryQuery); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, fmt.Errorf("query token cache: %w", err)
	}

	expiry, err := parseExpiry(raw)
	if err != nil {
		return time.Time{}, false, err
	}
	return expiry, true, nil
}

// parseExpiry interprets the stored timestamp as local wall-clock time.
func parseExpiry(raw any) (time.Time, error) {
	switch v := raw.(type) {
	case time.Time:
		return time.Date(v.Year(), v.Month(), v.Day(), v.Hour(), v.Minute(), v.Second(), v.Nanosecond(), time.Local), nil
	case []byte:
		return parseExpiry(string(v))
	case string:
		for _, layout := range timestampFormats {
			if t, err := time.ParseInLocation(layout, v, time.Local); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognized token expiry %q", v)
	default:
		return time.Time{}, fmt.Errorf("unexpected token expiry type %T", raw)
	}
}
