// Package inmemory provides a map-backed change tracker for tests and local
// runs.
package inmemory

import (
	"context"
	"sync"

	"github.com/wayfarerhq/wayfarer/pkg/ingest/tracker"
)

// Driver implements tracker.Driver in memory.
type Driver struct {
	mu      sync.RWMutex
	records map[string]tracker.Record
}

func NewDriver() *Driver {
	return &Driver{records: make(map[string]tracker.Record)}
}

func (d *Driver) LastHash(_ context.Context, url string) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	record, ok := d.records[url]
	if !ok {
		return "", tracker.ErrNotSeen
	}
	return record.Hash, nil
}

func (d *Driver) Mark(_ context.Context, record tracker.Record) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.records[record.URL] = record
	return nil
}

func (d *Driver) Close() error {
	return nil
}
