// This module connects to DuckDB through the Arrow ADBC driver manager,
// wrapping the DuckDB C API behind a Go interface.

package integrations

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/apache/arrow-adbc/go/adbc"
	"github.com/apache/arrow-adbc/go/adbc/drivermgr"
)

// Ensure DuckDB implements Database.
var _ Database = (*DuckDB)(nil)

// DuckDB is the primary struct managing a DuckDB database via ADBC.
// Use NewDuckDB(...) to construct.
type DuckDB struct {
	connSet
	db   adbc.Database
	opts Options
}

// NewDuckDB opens or creates a DuckDB instance (file-based or in-memory).
// The driver library is auto-detected if not provided. Example usage:
//
//	duck, err := NewDuckDB(integrations.WithPath("/tmp/duck.db"))
//	if err != nil { ... }
func NewDuckDB(options ...Option) (*DuckDB, error) {
	// gather defaults
	var opts Options
	for _, opt := range options {
		opt(&opts)
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}

	// auto-detect driver if empty
	dPath := opts.DriverPath
	if dPath == "" {
		switch runtime.GOOS {
		case "darwin":
			dPath = "/usr/local/lib/libduckdb.dylib"
		case "linux":
			dPath = "/usr/local/lib/libduckdb.so"
		case "windows":
			if home, err := os.UserHomeDir(); err == nil {
				dPath = home + "/Downloads/duckdb-windows-amd64/duckdb.dll"
			}
		}
	}
	if err := validateDriver(dPath); err != nil {
		return nil, err
	}

	dbOpts := map[string]string{
		"driver":     dPath,
		"entrypoint": "duckdb_adbc_init",
	}
	if opts.Path != "" {
		dbOpts["path"] = opts.Path
	}

	driver := drivermgr.Driver{}
	db, err := driver.NewDatabase(dbOpts)
	if err != nil {
		return nil, fmt.Errorf("error creating new DuckDB database: %w", err)
	}

	duck := &DuckDB{
		db:   db,
		opts: opts,
	}

	runtime.AddCleanup(duck, func(db adbc.Database) { db.Close() }, db)

	return duck, nil
}

// OpenConnection opens a new connection to DuckDB. The returned connection
// should be closed by calling its Close method, or you can rely on DuckDB.Close()
// to automatically close all open connections.
func (d *DuckDB) OpenConnection() (Connection, error) {
	return d.open(d.opts.Context, d.db)
}

// Close closes the DuckDB database and all open connections. It is recommended
// to call this when finished to ensure all WAL data is flushed if file-based.
func (d *DuckDB) Close() {
	d.closeAll()
	if d.db != nil {
		d.db.Close()
		d.db = nil
	}
}

// ConnCount returns the current number of open connections.
func (d *DuckDB) ConnCount() int {
	return d.count()
}

// Path returns the database file path, or empty if in-memory.
func (d *DuckDB) Path() string {
	return d.opts.Path
}
