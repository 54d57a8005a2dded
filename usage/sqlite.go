package usage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS usage_counters (
	key        TEXT PRIMARY KEY,
	count      INTEGER NOT NULL DEFAULT 0,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

// SQLiteCounter persists counters in a SQLite file.
type SQLiteCounter struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens or creates the counter database at path.
func OpenSQLite(path string) (*SQLiteCounter, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Single writer; avoids SQLITE_BUSY under concurrent increments.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &SQLiteCounter{db: db, path: path}, nil
}

func (c *SQLiteCounter) Get(ctx context.Context, key string) (int, error) {
	var n int
	err := c.db.QueryRowContext(ctx, "SELECT count FROM usage_counters WHERE key = ?", key).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read counter %s: %w", key, err)
	}
	return n, nil
}

func (c *SQLiteCounter) Increment(ctx context.Context, key string) (int, error) {
	var n int
	err := c.db.QueryRowContext(ctx, `
		INSERT INTO usage_counters (key, count) VALUES (?, 1)
		ON CONFLICT(key) DO UPDATE SET count = count + 1, updated_at = CURRENT_TIMESTAMP
		RETURNING count`, key).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to increment counter %s: %w", key, err)
	}
	return n, nil
}

func (c *SQLiteCounter) IncrementBelow(ctx context.Context, key string, limit int) (int, bool, error) {
	if limit <= 0 {
		n, err := c.Get(ctx, key)
		return n, false, err
	}
	var n int
	err := c.db.QueryRowContext(ctx, `
		INSERT INTO usage_counters (key, count) VALUES (?, 1)
		ON CONFLICT(key) DO UPDATE SET count = count + 1, updated_at = CURRENT_TIMESTAMP
		WHERE count < ?
		RETURNING count`, key, limit).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		// The conditional update matched nothing: the limit is already used up.
		n, err = c.Get(ctx, key)
		return n, false, err
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to increment counter %s: %w", key, err)
	}
	return n, true, nil
}

func (c *SQLiteCounter) Path() string {
	return c.path
}

func (c *SQLiteCounter) Close() error {
	return c.db.Close()
}
