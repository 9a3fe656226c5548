package readers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/wikiparity/wikiparity/pkg/core"
	"github.com/wikiparity/wikiparity/pkg/dataset"
)

// JSONReader reads claim tables dumped as a JSON array of row objects.
// The columns decide the schema: rows with joined columns load as a
// merged table, rows with plain claim columns load as an entity table.
type JSONReader struct {
	schema    *arrow.Schema
	file      *os.File
	decoder   *json.Decoder
	batchSize int64
	started   bool
	pending   map[string]string
	alloc     memory.Allocator
}

// NewJSONReader creates a new JSON reader.
func NewJSONReader(config core.ReaderConfig) (core.DatasetReader, error) {
	if config.Path == "" {
		return nil, errors.New("path is required for JSON reader")
	}

	file, err := os.Open(config.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open JSON file: %w", err)
	}

	batchSize := config.BatchSize
	if batchSize <= 0 {
		batchSize = 10000
	}

	return &JSONReader{
		file:      file,
		decoder:   json.NewDecoder(file),
		batchSize: batchSize,
		alloc:     memory.NewGoAllocator(),
	}, nil
}

// start consumes the opening bracket and buffers the first row so the
// schema is known before any batch is returned.
func (r *JSONReader) start() error {
	if r.started {
		return nil
	}
	r.started = true

	token, err := r.decoder.Token()
	if err != nil {
		return fmt.Errorf("failed to read JSON: %w", err)
	}
	if delim, ok := token.(json.Delim); !ok || delim != '[' {
		return fmt.Errorf("expected JSON array, got %v", token)
	}

	if !r.decoder.More() {
		return nil
	}

	row, err := r.decodeRow()
	if err != nil {
		return err
	}
	r.pending = row

	schema, err := detectRowSchema(row)
	if err != nil {
		return err
	}
	r.schema = schema

	return nil
}

func (r *JSONReader) decodeRow() (map[string]string, error) {
	var row map[string]string
	if err := r.decoder.Decode(&row); err != nil {
		return nil, fmt.Errorf("failed to decode row: %w", err)
	}
	return row, nil
}

// nextRow returns the next buffered or decoded row, or nil at the end.
func (r *JSONReader) nextRow() (map[string]string, error) {
	if r.pending != nil {
		row := r.pending
		r.pending = nil
		return row, nil
	}
	if !r.decoder.More() {
		return nil, nil
	}
	return r.decodeRow()
}

// detectRowSchema picks the claim-table schema matching the row columns.
func detectRowSchema(row map[string]string) (*arrow.Schema, error) {
	if _, ok := row[core.ColSourceItem]; ok {
		schema := dataset.MergedSchema()
		for _, field := range schema.Fields() {
			if _, ok := row[field.Name]; !ok {
				return nil, fmt.Errorf("merged table row is missing column %s", field.Name)
			}
		}
		return schema, nil
	}

	if _, ok := row[core.ColItem]; ok {
		schema := dataset.EntitySchema()
		for _, field := range schema.Fields() {
			if _, ok := row[field.Name]; !ok {
				return nil, fmt.Errorf("entity table row is missing column %s", field.Name)
			}
		}
		return schema, nil
	}

	return nil, fmt.Errorf("row columns do not form a claim table")
}

// Read returns the next batch of rows. The caller owns the returned record.
func (r *JSONReader) Read(ctx context.Context) (arrow.Record, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if err := r.start(); err != nil {
		return nil, err
	}
	if r.schema == nil {
		return nil, io.EOF
	}

	rb := array.NewRecordBuilder(r.alloc, r.schema)
	defer rb.Release()

	var rows int64
	for rows < r.batchSize {
		row, err := r.nextRow()
		if err != nil {
			return nil, err
		}
		if row == nil {
			break
		}
		appendRow(rb, r.schema, row)
		rows++
	}

	if rows == 0 {
		return nil, io.EOF
	}

	return rb.NewRecord(), nil
}

// ReadAll reads the remaining rows into a single record.
func (r *JSONReader) ReadAll(ctx context.Context) (arrow.Record, error) {
	if err := r.start(); err != nil {
		return nil, err
	}
	if r.schema == nil {
		return nil, io.EOF
	}

	rb := array.NewRecordBuilder(r.alloc, r.schema)
	defer rb.Release()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		row, err := r.nextRow()
		if err != nil {
			return nil, err
		}
		if row == nil {
			break
		}
		appendRow(rb, r.schema, row)
	}

	return rb.NewRecord(), nil
}

func appendRow(rb *array.RecordBuilder, schema *arrow.Schema, row map[string]string) {
	for i, field := range schema.Fields() {
		rb.Field(i).(*array.StringBuilder).Append(row[field.Name])
	}
}

// Schema returns the schema of the dataset, or nil for an empty dump.
func (r *JSONReader) Schema() *arrow.Schema {
	if err := r.start(); err != nil {
		return nil
	}
	return r.schema
}

// Close closes the reader and releases resources.
func (r *JSONReader) Close() error {
	if r.file != nil {
		err := r.file.Close()
		r.file = nil
		return err
	}
	return nil
}
