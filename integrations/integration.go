// Package integrations loads comparison tables into analytical databases
// over ADBC.
package integrations

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
)

// Database represents any database that comparison tables can be loaded into
type Database interface {
	// OpenConnection creates a new connection to the database
	OpenConnection() (Connection, error)
	// Close closes the database and all its connections
	Close()
	// ConnCount returns number of open connections
	ConnCount() int
}

// Connection represents a database connection that can execute queries and
// load Arrow data
type Connection interface {
	// Exec executes a statement that doesn't return results
	Exec(ctx context.Context, sql string) (int64, error)
	// Query executes a query and returns results
	Query(ctx context.Context, sql string) (array.RecordReader, error)
	// IngestCreate creates a table from a stream of Arrow records and
	// returns the number of rows loaded if known, else -1
	IngestCreate(ctx context.Context, table string, records array.RecordReader) (int64, error)
	// GetTableSchema returns the schema for a table
	GetTableSchema(ctx context.Context, catalog, schema *string, table string) (*arrow.Schema, error)
	// Close closes the connection
	Close()
}

// Options define the configuration for opening a database.
type Options struct {
	// Path is the DuckDB file path ("" => in-memory) or the Postgres
	// connection URI.
	Path string

	// DriverPath is the location of the ADBC driver library, if empty =>
	// auto-detect.
	DriverPath string

	// Context for new database/connection usage
	Context context.Context
}

// Option is a functional config approach
type Option func(*Options)

// WithPath sets the database file path or connection URI.
func WithPath(p string) Option {
	return func(o *Options) {
		o.Path = p
	}
}

// WithDriverPath sets the path to the ADBC driver library.
// If not provided, the driver will be auto-detected based on the current OS.
func WithDriverPath(p string) Option {
	return func(o *Options) {
		o.DriverPath = p
	}
}

// WithContext sets a custom Context for DB usage.
func WithContext(ctx context.Context) Option {
	return func(o *Options) {
		o.Context = ctx
	}
}

// IsPostgresTarget reports whether target is a Postgres connection URI rather
// than a DuckDB file path.
func IsPostgresTarget(target string) bool {
	return strings.HasPrefix(target, "postgres://") || strings.HasPrefix(target, "postgresql://")
}

// OpenTarget opens the export database named by target. A postgres:// or
// postgresql:// URI selects Postgres; anything else is treated as a DuckDB
// file path.
func OpenTarget(target string, options ...Option) (Database, error) {
	if target == "" {
		return nil, fmt.Errorf("no export target configured")
	}
	opts := append([]Option{WithPath(target)}, options...)
	if IsPostgresTarget(target) {
		return NewPostgres(opts...)
	}
	return NewDuckDB(opts...)
}

// validateDriver checks that the driver shared library exists before the
// driver manager tries to dlopen it.
func validateDriver(path string) error {
	if path == "" {
		return fmt.Errorf("no ADBC driver library configured for %s", runtime.GOOS)
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("ADBC driver library not found at %s", path)
	}
	return nil
}
