package utils

import (
	"github.com/apache/arrow-go/v18/arrow"
)

// SingleRecordReader is a custom RecordReader that wraps a single arrow.Record.
type SingleRecordReader struct {
	record arrow.Record
	done   bool
}

// NewSingleRecordReader creates a new SingleRecordReader.
func NewSingleRecordReader(record arrow.Record) *SingleRecordReader {
	return &SingleRecordReader{record: record, done: false}
}

// Schema returns the schema of the record.
func (r *SingleRecordReader) Schema() *arrow.Schema {
	return r.record.Schema()
}

// Next advances to the next record (in this case, only one record is available).
func (r *SingleRecordReader) Next() bool {
	if r.done {
		return false
	}
	r.done = true
	return true
}

// Record returns the current record.
func (r *SingleRecordReader) Record() arrow.Record {
	return r.record
}

// Err always returns nil as there is no error state in this simple reader.
func (r *SingleRecordReader) Err() error {
	return nil
}

// Release releases resources associated with the reader.
func (r *SingleRecordReader) Release() {
	r.record.Release()
}

// Retain increases the reference count of the record.
func (r *SingleRecordReader) Retain() {
	r.record.Retain()
}

// Close releases resources associated with the SingleRecordReader.
func (r *SingleRecordReader) Close() error {
	return nil
}

// Head returns the first n rows of the record as a zero-copy slice. The
// slice shares the underlying data and must be released by the caller.
func Head(record arrow.Record, n int64) arrow.Record {
	if n > record.NumRows() {
		n = record.NumRows()
	}
	return record.NewSlice(0, n)
}

// ColumnNames lists the record's column names in schema order.
func ColumnNames(record arrow.Record) []string {
	names := make([]string, record.NumCols())
	for i := range names {
		names[i] = record.ColumnName(i)
	}
	return names
}

// RecordRows renders every cell of the record as a string, row by row.
// Null cells come out empty.
func RecordRows(record arrow.Record) [][]string {
	rows := make([][]string, record.NumRows())
	for i := range rows {
		row := make([]string, record.NumCols())
		for j := 0; j < int(record.NumCols()); j++ {
			col := record.Column(j)
			if col.IsNull(i) {
				continue
			}
			row[j] = col.ValueStr(i)
		}
		rows[i] = row
	}
	return rows
}
