package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"go.uber.org/zap"

	"github.com/wikiparity/wikiparity/integrations"
	"github.com/wikiparity/wikiparity/pkg/core"
	"github.com/wikiparity/wikiparity/pkg/dataset"
)

func TestDuckDBConnectivity(t *testing.T) {
	driverPath := os.Getenv("DUCKDB_DRIVER_PATH")
	if driverPath == "" {
		t.Skip("DUCKDB_DRIVER_PATH environment variable is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbPath := filepath.Join(t.TempDir(), "connectivity.duckdb")
	db, err := integrations.NewDuckDB(
		integrations.WithPath(dbPath),
		integrations.WithDriverPath(driverPath),
		integrations.WithContext(ctx),
	)
	if err != nil {
		t.Fatalf("Failed to open DuckDB: %v", err)
	}
	defer db.Close()

	conn, err := db.OpenConnection()
	if err != nil {
		t.Fatalf("Failed to connect to DuckDB: %v", err)
	}
	if got := db.ConnCount(); got != 1 {
		t.Errorf("expected 1 open connection, got %d", got)
	}

	if _, err := conn.Exec(ctx, "CREATE TABLE probe (id INTEGER)"); err != nil {
		t.Fatalf("Failed to execute statement: %v", err)
	}

	conn.Close()
	if got := db.ConnCount(); got != 0 {
		t.Errorf("expected 0 open connections after close, got %d", got)
	}
}

func TestDuckDBExportRoundTrip(t *testing.T) {
	driverPath := os.Getenv("DUCKDB_DRIVER_PATH")
	if driverPath == "" {
		t.Skip("DUCKDB_DRIVER_PATH environment variable is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	dbPath := filepath.Join(t.TempDir(), "export.duckdb")
	db, err := integrations.NewDuckDB(
		integrations.WithPath(dbPath),
		integrations.WithDriverPath(driverPath),
		integrations.WithContext(ctx),
	)
	if err != nil {
		t.Fatalf("Failed to open DuckDB: %v", err)
	}
	defer db.Close()

	result := exportResult(t)
	if err := integrations.NewExporter(db, zap.NewNop()).Export(ctx, result); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	conn, err := db.OpenConnection()
	if err != nil {
		t.Fatalf("Failed to connect to DuckDB: %v", err)
	}
	defer conn.Close()

	counts := map[string]int64{
		integrations.TableCombined:  2,
		integrations.TableCommon:    1,
		integrations.TableDifferent: 1,
	}
	for table, want := range counts {
		got, err := integrations.RowCount(ctx, conn, table)
		if err != nil {
			t.Fatalf("Failed to count rows in %s: %v", table, err)
		}
		if got != want {
			t.Errorf("expected %d rows in %s, got %d", want, table, got)
		}
	}
}

func exportResult(t *testing.T) *core.ComparisonResult {
	t.Helper()
	return &core.ComparisonResult{
		Combined: stringRecord(t, dataset.EntitySchema(), [][]string{
			{"Douglas Adams", "occupation", "novelist"},
			{"Terry Pratchett", "occupation", "novelist"},
		}),
		Common: stringRecord(t, dataset.MergedSchema(), [][]string{
			{"Douglas Adams", "occupation", "novelist", "Terry Pratchett", "novelist"},
		}),
		Different: stringRecord(t, dataset.MergedSchema(), [][]string{
			{"Douglas Adams", "place of birth", "Cambridge", "Terry Pratchett", "Beaconsfield"},
		}),
	}
}

func stringRecord(t *testing.T, schema *arrow.Schema, rows [][]string) arrow.Record {
	t.Helper()
	bld := array.NewRecordBuilder(memory.DefaultAllocator, schema)
	defer bld.Release()
	for _, row := range rows {
		for i, v := range row {
			bld.Field(i).(*array.StringBuilder).Append(v)
		}
	}
	rec := bld.NewRecord()
	t.Cleanup(rec.Release)
	return rec
}
