package readers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/wikiparity/wikiparity/pkg/core"
)

// ArrowReader reads claim tables from Arrow IPC files.
type ArrowReader struct {
	schema     *arrow.Schema
	reader     *ipc.FileReader
	file       *os.File
	currentIdx int
	alloc      memory.Allocator
}

// NewArrowReader creates a new Arrow IPC reader.
func NewArrowReader(config core.ReaderConfig) (core.DatasetReader, error) {
	if config.Path == "" {
		return nil, errors.New("path is required for Arrow reader")
	}

	file, err := os.Open(config.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Arrow file: %w", err)
	}

	reader, err := ipc.NewFileReader(file)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to create Arrow file reader: %w", err)
	}

	return &ArrowReader{
		schema: reader.Schema(),
		reader: reader,
		file:   file,
		alloc:  memory.NewGoAllocator(),
	}, nil
}

// Read returns the next IPC record batch. The caller owns the returned record.
func (r *ArrowReader) Read(ctx context.Context) (arrow.Record, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if r.currentIdx >= r.reader.NumRecords() {
		return nil, io.EOF
	}

	record, err := r.reader.Record(r.currentIdx)
	if err != nil {
		return nil, fmt.Errorf("failed to read record at index %d: %w", r.currentIdx, err)
	}
	r.currentIdx++

	return cloneRecord(record), nil
}

// ReadAll reads the remaining batches into a single record.
func (r *ArrowReader) ReadAll(ctx context.Context) (arrow.Record, error) {
	var records []arrow.Record
	defer func() {
		for _, rec := range records {
			rec.Release()
		}
	}()

	for r.currentIdx < r.reader.NumRecords() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		record, err := r.reader.Record(r.currentIdx)
		if err != nil {
			return nil, fmt.Errorf("failed to read record at index %d: %w", r.currentIdx, err)
		}
		records = append(records, cloneRecord(record))
		r.currentIdx++
	}

	if len(records) == 0 {
		return emptyRecord(r.alloc, r.schema), nil
	}

	return combineRecords(r.schema, records)
}

// Schema returns the schema of the dataset.
func (r *ArrowReader) Schema() *arrow.Schema {
	return r.schema
}

// Close closes the reader and releases resources.
func (r *ArrowReader) Close() error {
	var err error

	if r.reader != nil {
		if closeErr := r.reader.Close(); closeErr != nil {
			err = closeErr
		}
		r.reader = nil
	}

	if r.file != nil {
		if closeErr := r.file.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		r.file = nil
	}

	return err
}
