package readers

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// cloneRecord creates a deep copy of a record to ensure ownership.
func cloneRecord(record arrow.Record) arrow.Record {
	cols := make([]arrow.Array, record.NumCols())
	for i, col := range record.Columns() {
		cols[i] = array.MakeFromData(col.Data())
	}
	return array.NewRecord(record.Schema(), cols, record.NumRows())
}

// emptyRecord creates a zero-row record with the given schema.
func emptyRecord(alloc memory.Allocator, schema *arrow.Schema) arrow.Record {
	cols := make([]arrow.Array, schema.NumFields())
	for i, field := range schema.Fields() {
		b := array.NewBuilder(alloc, field.Type)
		cols[i] = b.NewArray()
		b.Release()
	}

	record := array.NewRecord(schema, cols, 0)
	for _, col := range cols {
		col.Release()
	}
	return record
}

// combineRecords consolidates a batch list into a single record the caller
// owns. The input records are not released.
func combineRecords(schema *arrow.Schema, records []arrow.Record) (arrow.Record, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("no records to combine")
	}
	if len(records) == 1 {
		return cloneRecord(records[0]), nil
	}

	table := array.NewTableFromRecords(schema, records)
	defer table.Release()

	tableReader := array.NewTableReader(table, table.NumRows())
	defer tableReader.Release()

	if !tableReader.Next() {
		if tableReader.Err() != nil {
			return nil, tableReader.Err()
		}
		return nil, fmt.Errorf("failed to read combined table")
	}

	return cloneRecord(tableReader.Record()), nil
}
