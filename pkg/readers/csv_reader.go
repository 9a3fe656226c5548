package readers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/csv"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/wikiparity/wikiparity/pkg/core"
)

// CSVReader reads dumped claim tables from CSV files.
type CSVReader struct {
	schema *arrow.Schema
	file   *os.File
	reader *csv.Reader
	alloc  memory.Allocator

	// pending holds a chunk read ahead of time by Schema.
	pending arrow.Record
}

// NewCSVReader creates a new CSV reader. Claim columns are pinned to string
// so that numeric-looking labels survive inference.
func NewCSVReader(config core.ReaderConfig) (core.DatasetReader, error) {
	if config.Path == "" {
		return nil, errors.New("path is required for CSV reader")
	}

	file, err := os.Open(config.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}

	chunkSize := config.BatchSize
	if chunkSize <= 0 {
		chunkSize = 10000
	}

	alloc := memory.NewGoAllocator()

	reader := csv.NewInferringReader(
		file,
		csv.WithChunk(int(chunkSize)),
		csv.WithHeader(true),
		csv.WithNullReader(true, ""),
		csv.WithAllocator(alloc),
		csv.WithColumnTypes(claimColumnTypes()),
	)

	return &CSVReader{
		file:   file,
		reader: reader,
		alloc:  alloc,
	}, nil
}

// claimColumnTypes pins every claim-table column to string.
func claimColumnTypes() map[string]arrow.DataType {
	return map[string]arrow.DataType{
		core.ColItem:        arrow.BinaryTypes.String,
		core.ColProperty:    arrow.BinaryTypes.String,
		core.ColValue:       arrow.BinaryTypes.String,
		core.ColSourceItem:  arrow.BinaryTypes.String,
		core.ColSourceValue: arrow.BinaryTypes.String,
		core.ColTargetItem:  arrow.BinaryTypes.String,
		core.ColTargetValue: arrow.BinaryTypes.String,
	}
}

// Read returns the next chunk of rows. The caller owns the returned record.
func (r *CSVReader) Read(ctx context.Context) (arrow.Record, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if r.pending != nil {
		record := r.pending
		r.pending = nil
		return record, nil
	}

	if !r.reader.Next() {
		if err := r.reader.Err(); err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		return nil, io.EOF
	}

	if r.schema == nil {
		r.schema = r.reader.Schema()
	}

	return cloneRecord(r.reader.Record()), nil
}

// ReadAll reads the remaining rows into a single record.
func (r *CSVReader) ReadAll(ctx context.Context) (arrow.Record, error) {
	var records []arrow.Record
	defer func() {
		for _, rec := range records {
			rec.Release()
		}
	}()

	if r.pending != nil {
		records = append(records, r.pending)
		r.pending = nil
	}

	for r.reader.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if r.schema == nil {
			r.schema = r.reader.Schema()
		}
		records = append(records, cloneRecord(r.reader.Record()))
	}

	if err := r.reader.Err(); err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	if len(records) == 0 {
		if r.schema == nil {
			return nil, io.EOF
		}
		return emptyRecord(r.alloc, r.schema), nil
	}

	return combineRecords(r.schema, records)
}

// Schema returns the schema of the dataset. The first chunk is read ahead
// to infer it when no data has been read yet.
func (r *CSVReader) Schema() *arrow.Schema {
	if r.schema == nil && r.reader != nil {
		if r.reader.Next() {
			r.schema = r.reader.Schema()
			r.pending = cloneRecord(r.reader.Record())
		}
	}
	return r.schema
}

// Close closes the reader and releases resources.
func (r *CSVReader) Close() error {
	if r.pending != nil {
		r.pending.Release()
		r.pending = nil
	}

	if r.reader != nil {
		r.reader.Release()
		r.reader = nil
	}

	if r.file != nil {
		err := r.file.Close()
		r.file = nil
		return err
	}

	return nil
}
