// Package sqlite provides a SQLite-backed change tracker.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/wayfarerhq/wayfarer/pkg/ingest/tracker"
)

const schema = `
CREATE TABLE IF NOT EXISTS docs (
	url TEXT PRIMARY KEY,
	hash TEXT NOT NULL,
	updated TIMESTAMP NOT NULL
)`

// Driver implements tracker.Driver on a SQLite database.
type Driver struct {
	db *sql.DB
}

// NewDriver opens the database at dbPath, which may be ":memory:", and
// ensures the schema exists.
func NewDriver(dbPath string) (*Driver, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening tracker database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating tracker schema: %w", err)
	}

	return &Driver{db: db}, nil
}

func (d *Driver) LastHash(ctx context.Context, url string) (string, error) {
	var hash string
	err := d.db.QueryRowContext(ctx, "SELECT hash FROM docs WHERE url = ?", url).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", tracker.ErrNotSeen
	}
	if err != nil {
		return "", fmt.Errorf("reading tracker record: %w", err)
	}
	return hash, nil
}

func (d *Driver) Mark(ctx context.Context, record tracker.Record) error {
	_, err := d.db.ExecContext(ctx,
		"REPLACE INTO docs (url, hash, updated) VALUES (?, ?, ?)",
		record.URL, record.Hash, record.Updated,
	)
	if err != nil {
		return fmt.Errorf("writing tracker record: %w", err)
	}
	return nil
}

func (d *Driver) Close() error {
	return d.db.Close()
}
