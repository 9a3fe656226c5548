package writers

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/wikiparity/wikiparity/pkg/core"
)

// JSONWriter streams a claim table as one compact JSON array of row
// objects. Object keys follow the column order of the record.
type JSONWriter struct {
	file     *os.File
	buf      *bufio.Writer
	firstRow bool
}

// NewJSONWriter creates a new JSON writer.
func NewJSONWriter(config core.WriterConfig) (core.DatasetWriter, error) {
	if config.Path == "" {
		return nil, errors.New("path is required for JSON writer")
	}

	file, err := os.Create(config.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to create JSON file: %w", err)
	}

	buf := bufio.NewWriter(file)
	if _, err := buf.WriteString("["); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to write opening bracket: %w", err)
	}

	return &JSONWriter{
		file:     file,
		buf:      buf,
		firstRow: true,
	}, nil
}

// Write writes a record to the file.
func (w *JSONWriter) Write(ctx context.Context, record arrow.Record) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	schema := record.Schema()
	for i := 0; i < int(record.NumRows()); i++ {
		if !w.firstRow {
			if err := w.buf.WriteByte(','); err != nil {
				return fmt.Errorf("failed to write separator: %w", err)
			}
		}
		w.firstRow = false

		if err := w.writeRow(schema, record, i); err != nil {
			return err
		}
	}

	return nil
}

// writeRow emits one row object, keeping the column order of the schema.
func (w *JSONWriter) writeRow(schema *arrow.Schema, record arrow.Record, row int) error {
	if err := w.buf.WriteByte('{'); err != nil {
		return fmt.Errorf("failed to write row: %w", err)
	}

	for j := 0; j < int(record.NumCols()); j++ {
		if j > 0 {
			if err := w.buf.WriteByte(','); err != nil {
				return fmt.Errorf("failed to write row: %w", err)
			}
		}

		key, err := json.Marshal(schema.Field(j).Name)
		if err != nil {
			return fmt.Errorf("failed to encode column name: %w", err)
		}

		var value []byte
		col := record.Column(j)
		if col.IsNull(row) {
			value = []byte("null")
		} else {
			value, err = json.Marshal(col.GetOneForMarshal(row))
			if err != nil {
				return fmt.Errorf("failed to encode value: %w", err)
			}
		}

		if _, err := w.buf.Write(key); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
		if err := w.buf.WriteByte(':'); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
		if _, err := w.buf.Write(value); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	if err := w.buf.WriteByte('}'); err != nil {
		return fmt.Errorf("failed to write row: %w", err)
	}

	return nil
}

// Close closes the writer and flushes any pending data.
func (w *JSONWriter) Close() error {
	var err error

	if w.buf != nil {
		if _, closeErr := w.buf.WriteString("]"); closeErr != nil {
			err = closeErr
		}
		if closeErr := w.buf.Flush(); closeErr != nil && err == nil {
			err = closeErr
		}
		w.buf = nil
	}

	if w.file != nil {
		if closeErr := w.file.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		w.file = nil
	}

	return err
}
