// Package cache provides an on-disk TTL cache for external registry
// lookups, backed by SQLite.
package cache

import (
	"context"
	"database/sql"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLite is a key/value lookup cache with per-entry expiry.
type SQLite struct {
	db  *sql.DB
	ttl time.Duration
}

// New opens a SQLite cache at the given path and configures WAL mode.
func New(path string, ttl time.Duration) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "cache: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "cache: exec %s", pragma)
		}
	}
	return &SQLite{db: db, ttl: ttl}, nil
}

const migration = `
CREATE TABLE IF NOT EXISTS lookup_cache (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	cached_at  DATETIME NOT NULL DEFAULT (datetime('now')),
	expires_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_lookup_cache_expires_at ON lookup_cache(expires_at);
`

func (c *SQLite) Migrate(ctx context.Context) error {
	_, err := c.db.ExecContext(ctx, migration)
	return eris.Wrap(err, "cache: migrate")
}

func (c *SQLite) Close() error {
	return c.db.Close()
}

// Get returns the cached value for key, reporting a miss for absent or
// expired entries.
func (c *SQLite) Get(ctx context.Context, key string) ([]byte, bool, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT value FROM lookup_cache WHERE key = ? AND expires_at > ?`,
		key, time.Now().UTC(),
	)

	var value []byte
	err := row.Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, eris.Wrap(err, "cache: get")
	}
	return value, true, nil
}

// Set stores value under key, replacing any previous entry and resetting
// its expiry to now + TTL.
func (c *SQLite) Set(ctx context.Context, key string, value []byte) error {
	now := time.Now().UTC()

	_, err := c.db.ExecContext(ctx,
		`INSERT INTO lookup_cache (key, value, cached_at, expires_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value,
			cached_at = excluded.cached_at, expires_at = excluded.expires_at`,
		key, value, now, now.Add(c.ttl),
	)
	return eris.Wrap(err, "cache: set")
}

// DeleteExpired removes entries past their expiry and returns how many
// were deleted.
func (c *SQLite) DeleteExpired(ctx context.Context) (int, error) {
	res, err := c.db.ExecContext(ctx,
		`DELETE FROM lookup_cache WHERE expires_at <= ?`,
		time.Now().UTC(),
	)
	if err != nil {
		return 0, eris.Wrap(err, "cache: delete expired")
	}
	n, err := res.RowsAffected()
	return int(n), eris.Wrap(err, "cache: rows affected")
}
