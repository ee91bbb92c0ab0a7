// Package tracker records the content hash last ingested per source URL so
// refresh runs can skip unchanged documents.
package tracker

import (
	"context"
	"errors"
	"time"
)

// ErrNotSeen indicates the URL has no recorded hash yet.
var ErrNotSeen = errors.New("url not seen")

// Record is one tracked source document.
type Record struct {
	URL     string
	Hash    string
	Updated time.Time
}

// Driver is the change-tracking storage interface.
type Driver interface {
	// LastHash returns the hash recorded for the URL, or ErrNotSeen.
	LastHash(ctx context.Context, url string) (string, error)

	// Mark upserts the record for the URL.
	Mark(ctx context.Context, record Record) error

	Close() error
}
