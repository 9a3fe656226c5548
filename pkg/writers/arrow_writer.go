package writers

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/ipc"

	"github.com/wikiparity/wikiparity/pkg/core"
)

// ArrowWriter writes claim tables to Arrow IPC files.
type ArrowWriter struct {
	writer *ipc.FileWriter
	file   *os.File
	schema *arrow.Schema
}

// NewArrowWriter creates a new Arrow IPC writer.
func NewArrowWriter(config core.WriterConfig) (core.DatasetWriter, error) {
	if config.Path == "" {
		return nil, errors.New("path is required for Arrow writer")
	}

	file, err := os.Create(config.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to create Arrow file: %w", err)
	}

	// The writer is created on the first record because it needs the schema.
	return &ArrowWriter{
		file: file,
	}, nil
}

// Write writes a record to the file.
func (w *ArrowWriter) Write(ctx context.Context, record arrow.Record) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if w.writer == nil {
		schema := record.Schema()

		writer, err := ipc.NewFileWriter(w.file, ipc.WithSchema(schema))
		if err != nil {
			return fmt.Errorf("failed to create Arrow writer: %w", err)
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
func (w *ArrowWriter) Close() error {
	var err error

	if w.writer != nil {
		if closeErr := w.writer.Close(); closeErr != nil {
			err = closeErr
		}
	}

	if w.file != nil {
		if closeErr := w.file.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}

	return err
}
