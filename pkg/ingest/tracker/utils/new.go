package trackerutils

import (
	"fmt"

	"github.com/wayfarerhq/wayfarer/pkg/ingest/tracker"
	"github.com/wayfarerhq/wayfarer/pkg/ingest/tracker/inmemory"
	"github.com/wayfarerhq/wayfarer/pkg/ingest/tracker/postgres"
	"github.com/wayfarerhq/wayfarer/pkg/ingest/tracker/sqlite"
)

// NewDriver builds a change tracker for the named driver. The DSN is a file
// path for sqlite and a connection string for postgres.
func NewDriver(driver, dsn string) (tracker.Driver, error) {
	switch driver {
	case "sqlite":
		if dsn == "" {
			dsn = "ingest.db"
		}
		return sqlite.NewDriver(dsn)
	case "postgres":
		return postgres.NewDriver(dsn)
	case "memory":
		return inmemory.NewDriver(), nil
	default:
		return nil, fmt.Errorf("unknown tracker driver: %s", driver)
	}
}
