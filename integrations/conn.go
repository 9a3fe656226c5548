package integrations

import (
	"context"
	"fmt"
	"sync"

	"github.com/apache/arrow-adbc/go/adbc"
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
)

// connSet tracks the open connections of a Database implementation.
type connSet struct {
	mu    sync.Mutex
	conns []*adbcConn
}

// open opens a connection on db and adds it to the set.
func (s *connSet) open(ctx context.Context, db adbc.Database) (*adbcConn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conn, err := db.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open connection: %w", err)
	}
	c := &adbcConn{parent: s, Connection: conn}
	s.conns = append(s.conns, c)
	return c, nil
}

// closeAll closes every tracked connection.
func (s *connSet) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.conns {
		c.Connection.Close()
		c.parent = nil
	}
	s.conns = nil
}

// count returns the number of tracked connections.
func (s *connSet) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

// remove drops c from the set.
func (s *connSet) remove(c *adbcConn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, cc := range s.conns {
		if cc == c {
			s.conns[i] = s.conns[len(s.conns)-1]
			s.conns = s.conns[:len(s.conns)-1]
			break
		}
	}
}

// adbcConn is a simple wrapper holding an open connection.
type adbcConn struct {
	parent *connSet
	adbc.Connection
}

// Ensure adbcConn implements Connection.
var _ Connection = (*adbcConn)(nil)

// Exec runs a statement that doesn't produce a result set, returning
// the number of rows affected if known, else -1.
func (c *adbcConn) Exec(ctx context.Context, sql string) (int64, error) {
	stmt, err := c.NewStatement()
	if err != nil {
		return -1, fmt.Errorf("failed to create statement: %w", err)
	}
	defer stmt.Close()

	if err := stmt.SetSqlQuery(sql); err != nil {
		return -1, fmt.Errorf("failed to set SQL query: %w", err)
	}
	affected, err := stmt.ExecuteUpdate(ctx)
	return affected, err
}

// Query runs a SQL query and returns a RecordReader over its results.
// Releasing the reader closes the statement behind it.
func (c *adbcConn) Query(ctx context.Context, sql string) (array.RecordReader, error) {
	stmt, err := c.NewStatement()
	if err != nil {
		return nil, fmt.Errorf("failed to create statement: %w", err)
	}
	if err := stmt.SetSqlQuery(sql); err != nil {
		stmt.Close()
		return nil, fmt.Errorf("failed to set SQL query: %w", err)
	}

	rr, _, err := stmt.ExecuteQuery(ctx)
	if err != nil {
		stmt.Close()
		return nil, err
	}
	return newWrappedRecordReader(rr, stmt), nil
}

// IngestCreate creates table from the record stream. The driver takes
// ownership of the stream.
func (c *adbcConn) IngestCreate(ctx context.Context, table string, records array.RecordReader) (int64, error) {
	stmt, err := c.NewStatement()
	if err != nil {
		return -1, fmt.Errorf("failed to create statement: %w", err)
	}
	defer stmt.Close()

	if err := stmt.SetOption(adbc.OptionKeyIngestTargetTable, table); err != nil {
		return -1, fmt.Errorf("failed to set ingest target: %w", err)
	}
	if err := stmt.SetOption(adbc.OptionKeyIngestMode, adbc.OptionValueIngestModeCreate); err != nil {
		return -1, fmt.Errorf("failed to set ingest mode: %w", err)
	}
	if err := stmt.BindStream(ctx, records); err != nil {
		return -1, fmt.Errorf("failed to bind record stream: %w", err)
	}
	affected, err := stmt.ExecuteUpdate(ctx)
	if err != nil {
		return -1, fmt.Errorf("failed to ingest into %s: %w", table, err)
	}
	return affected, nil
}

// GetTableSchema fetches the Arrow schema of a table in the given catalog/schema
// (pass nil for defaults).
func (c *adbcConn) GetTableSchema(ctx context.Context, catalog, dbSchema *string, tableName string) (*arrow.Schema, error) {
	return c.Connection.GetTableSchema(ctx, catalog, dbSchema, tableName)
}

// Close closes the connection, removing it from the parent's tracking.
// Closing a connection whose database was already closed is a no-op.
func (c *adbcConn) Close() {
	if c.parent == nil {
		return
	}
	c.parent.remove(c)
	c.parent = nil
	c.Connection.Close()
}

// recordReaderWrapper ties a statement's lifetime to the reader produced by
// its query.
type recordReaderWrapper struct {
	rr   array.RecordReader
	stmt adbc.Statement
}

func newWrappedRecordReader(rr array.RecordReader, stmt adbc.Statement) array.RecordReader {
	return &recordReaderWrapper{
		rr:   rr,
		stmt: stmt,
	}
}

func (w *recordReaderWrapper) Schema() *arrow.Schema {
	return w.rr.Schema()
}

func (w *recordReaderWrapper) Next() bool {
	return w.rr.Next()
}

func (w *recordReaderWrapper) Record() arrow.Record {
	return w.rr.Record()
}

func (w *recordReaderWrapper) Err() error {
	return w.rr.Err()
}

func (w *recordReaderWrapper) Retain() {
	w.rr.Retain()
}

// Release releases the reader and closes its statement.
func (w *recordReaderWrapper) Release() {
	w.rr.Release()
	if w.stmt != nil {
		w.stmt.Close()
		w.stmt = nil
	}
}
