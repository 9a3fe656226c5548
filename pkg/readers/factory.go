// Package readers provides dataset readers for dumped claim tables.
package readers

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/wikiparity/wikiparity/pkg/core"
)

// Factory creates a reader based on the given configuration.
type Factory struct {
	// registered readers by type
	readers map[string]Creator
}

// Creator is a function that creates a reader from a configuration.
type Creator func(config core.ReaderConfig) (core.DatasetReader, error)

// NewFactory creates a new reader factory.
func NewFactory() *Factory {
	return &Factory{
		readers: make(map[string]Creator),
	}
}

// Register registers a creator for a reader type.
func (f *Factory) Register(typ string, creator Creator) {
	f.readers[typ] = creator
}

// Create creates a reader based on the given configuration.
func (f *Factory) Create(config core.ReaderConfig) (core.DatasetReader, error) {
	creator, ok := f.readers[config.Type]
	if !ok {
		return nil, fmt.Errorf("unsupported reader type: %s", config.Type)
	}
	return creator(config)
}

// DetectType infers the reader type from the extension of path.
func DetectType(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet":
		return "parquet", nil
	case ".arrow":
		return "arrow", nil
	case ".csv":
		return "csv", nil
	case ".json":
		return "json", nil
	default:
		return "", fmt.Errorf("cannot detect reader type from path: %s", path)
	}
}

// DefaultFactory is the default reader factory with built-in reader types.
var DefaultFactory = NewFactory()

// init registers built-in reader types.
func init() {
	DefaultFactory.Register("parquet", NewParquetReader)
	DefaultFactory.Register("arrow", NewArrowReader)
	DefaultFactory.Register("csv", NewCSVReader)
	DefaultFactory.Register("json", NewJSONReader)
}
