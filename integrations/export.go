package integrations

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"go.uber.org/zap"

	"github.com/wikiparity/wikiparity/pkg/core"
	"github.com/wikiparity/wikiparity/pkg/schema"
	"github.com/wikiparity/wikiparity/utils"
)

// Table names created in the target database.
const (
	TableCombined  = "combined"
	TableCommon    = "common"
	TableDifferent = "different"
)

// Exporter loads the tables of one comparison into a database.
type Exporter struct {
	db     Database
	logger *zap.Logger
}

// NewExporter constructs an Exporter writing to db.
func NewExporter(db Database, logger *zap.Logger) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exporter{db: db, logger: logger}
}

// Export creates the combined, common and different tables in the database
// and verifies each one against its source record. The tables are created
// fresh; exporting into a database that already holds them fails.
func (e *Exporter) Export(ctx context.Context, result *core.ComparisonResult) error {
	conn, err := e.db.OpenConnection()
	if err != nil {
		return fmt.Errorf("failed to open export connection: %w", err)
	}
	defer conn.Close()

	tables := []struct {
		name   string
		record arrow.Record
	}{
		{TableCombined, result.Combined},
		{TableCommon, result.Common},
		{TableDifferent, result.Different},
	}
	for _, tb := range tables {
		if tb.record == nil {
			return fmt.Errorf("comparison result is missing the %s table", tb.name)
		}
		if err := e.load(ctx, conn, tb.name, tb.record); err != nil {
			return err
		}
	}
	return nil
}

// load ingests one record as table and verifies the loaded row count and
// schema.
func (e *Exporter) load(ctx context.Context, conn Connection, table string, record arrow.Record) error {
	// The ingest stream takes over the retained reference; the caller's
	// reference keeps the record alive for the checks below.
	record.Retain()
	if _, err := conn.IngestCreate(ctx, table, utils.NewSingleRecordReader(record)); err != nil {
		return fmt.Errorf("failed to load table %s: %w", table, err)
	}

	loaded, err := RowCount(ctx, conn, table)
	if err != nil {
		return fmt.Errorf("failed to verify table %s: %w", table, err)
	}
	if loaded != record.NumRows() {
		return fmt.Errorf("table %s holds %d rows, expected %d", table, loaded, record.NumRows())
	}

	tableSchema, err := conn.GetTableSchema(ctx, nil, nil, table)
	if err != nil {
		return fmt.Errorf("failed to read schema of table %s: %w", table, err)
	}
	check := schema.NewRelaxedValidator().ValidateAgainstTarget(record.Schema(), tableSchema)
	if !check.Valid {
		var problems []string
		for _, errs := range check.Errors {
			problems = append(problems, errs...)
		}
		sort.Strings(problems)
		return fmt.Errorf("table %s does not match its source schema: %s", table, strings.Join(problems, "; "))
	}

	e.logger.Info("Loaded comparison table",
		zap.String("table", table),
		zap.Int64("rows", loaded))
	return nil
}

// RowCount returns the number of rows in a table.
func RowCount(ctx context.Context, conn Connection, table string) (int64, error) {
	rr, err := conn.Query(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", table))
	if err != nil {
		return -1, fmt.Errorf("failed to count rows in %s: %w", table, err)
	}
	defer rr.Release()

	if !rr.Next() {
		return -1, fmt.Errorf("row count query for %s returned no rows", table)
	}
	counts, ok := rr.Record().Column(0).(*array.Int64)
	if !ok || counts.Len() == 0 {
		return -1, fmt.Errorf("unexpected row count result for %s", table)
	}
	return counts.Value(0), nil
}
