// Package postgres provides a Postgres-backed change tracker using the pgx
// stdlib driver.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/wayfarerhq/wayfarer/pkg/ingest/tracker"
)

const schema = `
CREATE TABLE IF NOT EXISTS docs (
	url TEXT PRIMARY KEY,
	hash TEXT NOT NULL,
	updated TIMESTAMPTZ NOT NULL
)`

// Driver implements tracker.Driver on a Postgres database.
type Driver struct {
	db *sql.DB
}

// NewDriver connects with the given DSN and ensures the schema exists.
func NewDriver(dsn string) (*Driver, error) {
	db, err := sql.Open("pgx", dsn)
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
	err := d.db.QueryRowContext(ctx, "SELECT hash FROM docs WHERE url = $1", url).Scan(&hash)
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
		`INSERT INTO docs (url, hash, updated) VALUES ($1, $2, $3)
		 ON CONFLICT (url) DO UPDATE SET hash = EXCLUDED.hash, updated = EXCLUDED.updated`,
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
