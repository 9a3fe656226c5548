// postgres.go
package integrations

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/apache/arrow-adbc/go/adbc"
	"github.com/apache/arrow-adbc/go/adbc/drivermgr"
)

// Ensure Postgres implements Database.
var _ Database = (*Postgres)(nil)

// Postgres is the primary struct managing a PostgreSQL database via ADBC.
// Use NewPostgres(...) to construct.
type Postgres struct {
	connSet
	db   adbc.Database
	opts Options
}

// NewPostgres creates a new Postgres instance for a postgres:// URI.
func NewPostgres(options ...Option) (*Postgres, error) {
	var opts Options
	for _, opt := range options {
		opt(&opts)
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Path == "" {
		return nil, fmt.Errorf("postgres connection URI is required")
	}
	if !IsPostgresTarget(opts.Path) {
		return nil, fmt.Errorf("invalid postgres URI %q", opts.Path)
	}

	// Auto-detect driver if empty.
	dPath := opts.DriverPath
	if dPath == "" {
		switch runtime.GOOS {
		case "darwin":
			dPath = "/usr/local/lib/libadbc_driver_postgresql.dylib"
		case "linux":
			dPath = "/usr/local/lib/libadbc_driver_postgresql.so"
		case "windows":
			if home, err := os.UserHomeDir(); err == nil {
				dPath = home + "/Downloads/postgresql-windows-amd64/postgresql.dll"
			}
		}
	}
	if err := validateDriver(dPath); err != nil {
		return nil, err
	}

	dbOpts := map[string]string{
		"driver":          dPath,
		adbc.OptionKeyURI: opts.Path,
	}

	driver := drivermgr.Driver{}
	db, err := driver.NewDatabase(dbOpts)
	if err != nil {
		return nil, fmt.Errorf("error creating new PostgreSQL database: %w", err)
	}

	pg := &Postgres{
		db:   db,
		opts: opts,
	}

	runtime.AddCleanup(pg, func(db adbc.Database) { db.Close() }, db)

	return pg, nil
}

// OpenConnection creates a new connection to Postgres.
func (p *Postgres) OpenConnection() (Connection, error) {
	return p.open(p.opts.Context, p.db)
}

// Close closes the Postgres database and all open connections.
func (p *Postgres) Close() {
	p.closeAll()
	if p.db != nil {
		p.db.Close()
		p.db = nil
	}
}

// ConnCount returns the current number of open connections.
func (p *Postgres) ConnCount() int {
	return p.count()
}

// URI returns the database connection URI.
func (p *Postgres) URI() string {
	return p.opts.Path
}
