package readers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/wikiparity/wikiparity/pkg/core"
)

// ParquetReader reads claim tables from Parquet files.
type ParquetReader struct {
	schema       *arrow.Schema
	fileReader   *file.Reader
	arrowReader  *pqarrow.FileReader
	recordReader pqarrow.RecordReader
	file         *os.File
	alloc        memory.Allocator
}

// NewParquetReader creates a new Parquet reader.
func NewParquetReader(config core.ReaderConfig) (core.DatasetReader, error) {
	if config.Path == "" {
		return nil, errors.New("path is required for Parquet reader")
	}

	batchSize := config.BatchSize
	if batchSize <= 0 {
		batchSize = 10000
	}

	f, err := os.Open(config.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Parquet file: %w", err)
	}

	alloc := memory.NewGoAllocator()

	parquetReader, err := file.NewParquetReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create Parquet file reader: %w", err)
	}

	arrowProps := pqarrow.ArrowReadProperties{
		Parallel:  false,
		BatchSize: batchSize,
	}
	arrowReader, err := pqarrow.NewFileReader(parquetReader, arrowProps, alloc)
	if err != nil {
		parquetReader.Close()
		f.Close()
		return nil, fmt.Errorf("failed to create Arrow reader: %w", err)
	}

	schema, err := arrowReader.Schema()
	if err != nil {
		parquetReader.Close()
		f.Close()
		return nil, fmt.Errorf("failed to get schema: %w", err)
	}

	return &ParquetReader{
		schema:      schema,
		fileReader:  parquetReader,
		arrowReader: arrowReader,
		file:        f,
		alloc:       alloc,
	}, nil
}

// Read returns the next batch of rows. The caller owns the returned record.
func (r *ParquetReader) Read(ctx context.Context) (arrow.Record, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if r.recordReader == nil {
		reader, err := r.arrowReader.GetRecordReader(ctx, nil, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create record reader: %w", err)
		}
		r.recordReader = reader
	}

	record, err := r.recordReader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("failed to read Parquet batch: %w", err)
	}

	return cloneRecord(record), nil
}

// ReadAll reads the entire file into a single record.
func (r *ParquetReader) ReadAll(ctx context.Context) (arrow.Record, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	table, err := r.arrowReader.ReadTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read Parquet file: %w", err)
	}
	defer table.Release()

	if table.NumRows() == 0 {
		return emptyRecord(r.alloc, r.schema), nil
	}

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

// Schema returns the schema of the dataset.
func (r *ParquetReader) Schema() *arrow.Schema {
	return r.schema
}

// Close closes the reader and releases resources.
func (r *ParquetReader) Close() error {
	var err error

	if r.recordReader != nil {
		r.recordReader.Release()
		r.recordReader = nil
	}

	if r.fileReader != nil {
		if closeErr := r.fileReader.Close(); closeErr != nil {
			err = closeErr
		}
		r.fileReader = nil
	}

	if r.file != nil {
		if closeErr := r.file.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		r.file = nil
	}

	return err
}
