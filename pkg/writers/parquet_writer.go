package writers

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/wikiparity/wikiparity/pkg/core"
)

// ParquetWriter writes claim tables to Parquet files.
type ParquetWriter struct {
	writer     *pqarrow.FileWriter
	file       *os.File
	schema     *arrow.Schema
	properties pqarrow.ArrowWriterProperties
}

// NewParquetWriter creates a new Parquet writer.
func NewParquetWriter(config core.WriterConfig) (core.DatasetWriter, error) {
	if config.Path == "" {
		return nil, errors.New("path is required for Parquet writer")
	}

	file, err := os.Create(config.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to create Parquet file: %w", err)
	}

	// The writer is created on the first record because it needs the schema.
	return &ParquetWriter{
		file:       file,
		properties: pqarrow.NewArrowWriterProperties(),
	}, nil
}

// Write writes a record to the file.
func (w *ParquetWriter) Write(ctx context.Context, record arrow.Record) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if w.writer == nil {
		schema := record.Schema()

		writeProps := parquet.NewWriterProperties(
			parquet.WithCompression(compress.Codecs.Snappy),
			parquet.WithDictionaryDefault(false),
		)

		writer, err := pqarrow.NewFileWriter(
			schema,
			w.file,
			writeProps,
			w.properties,
		)
		if err != nil {
			return fmt.Errorf("failed to create Parquet writer: %w", err)
		}

		w.writer = writer
		w.schema = schema
	}

	if err := w.writer.Write(record); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}

	return nil
}

// Close closes the writer and flushes any pending data.
func (w *ParquetWriter) Close() error {
	var err error

	if w.writer != nil {
		if closeErr := w.writer.Close(); closeErr != nil {
			err = closeErr
		}
		w.writer = nil

		// The parquet writer closes the underlying file.
		w.file = nil
		return err
	}

	if w.file != nil {
		if closeErr := w.file.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		w.file = nil
	}

	return err
}
