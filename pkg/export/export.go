// Package export writes comparison results to the on-disk dump tree.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/wikiparity/wikiparity/pkg/core"
	"github.com/wikiparity/wikiparity/pkg/writers"
)

// Bundle carries the outputs of one comparison for dumping. All fields are
// required.
type Bundle struct {
	// SourceClaims and TargetClaims are the filtered claims per side.
	SourceClaims *core.EntityClaims
	TargetClaims *core.EntityClaims

	// Source and Target are the entity tables per side.
	Source arrow.Record
	Target arrow.Record

	// Result holds the comparison tables.
	Result *core.ComparisonResult
}

// extensions maps writer types to dump file extensions.
var extensions = map[string]string{
	"json":    ".json",
	"csv":     ".csv",
	"arrow":   ".arrow",
	"parquet": ".parquet",
}

// Dumper writes the dump tree for a comparison. Each configured format gets
// its own subdirectory under the output root.
type Dumper struct {
	dir     string
	formats []string
}

// NewDumper creates a dumper rooted at dir producing the given formats.
func NewDumper(dir string, formats []string) *Dumper {
	return &Dumper{dir: dir, formats: formats}
}

// Dump writes all configured formats and returns the paths written.
//
// The json format produces the raw claim dumps data1.json and data2.json plus
// combined.json; every other format produces the five comparison tables
// (data1, data2, combined, common, different) under its own subdirectory.
func (d *Dumper) Dump(ctx context.Context, b *Bundle) ([]string, error) {
	if b == nil || b.SourceClaims == nil || b.TargetClaims == nil ||
		b.Source == nil || b.Target == nil || b.Result == nil {
		return nil, fmt.Errorf("dump bundle is incomplete")
	}

	var written []string
	for _, format := range d.formats {
		paths, err := d.dumpFormat(ctx, format, b)
		written = append(written, paths...)
		if err != nil {
			return written, err
		}
	}
	return written, nil
}

func (d *Dumper) dumpFormat(ctx context.Context, format string, b *Bundle) ([]string, error) {
	dir := filepath.Join(d.dir, format)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create dump directory %s: %w", dir, err)
	}

	if format == "json" {
		return d.dumpJSON(ctx, dir, b)
	}

	var written []string
	for _, table := range []struct {
		name   string
		record arrow.Record
	}{
		{"data1", b.Source},
		{"data2", b.Target},
		{"combined", b.Result.Combined},
		{"common", b.Result.Common},
		{"different", b.Result.Different},
	} {
		path := filepath.Join(dir, table.name+extensions[format])
		if err := writeTable(ctx, format, path, table.record); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

// dumpJSON writes the raw entity claim dumps and the combined table.
func (d *Dumper) dumpJSON(ctx context.Context, dir string, b *Bundle) ([]string, error) {
	var written []string
	for _, dump := range []struct {
		name   string
		claims *core.EntityClaims
	}{
		{"data1.json", b.SourceClaims},
		{"data2.json", b.TargetClaims},
	} {
		path := filepath.Join(dir, dump.name)
		if err := writeEntityDump(path, dump.claims); err != nil {
			return written, err
		}
		written = append(written, path)
	}

	path := filepath.Join(dir, "combined.json")
	if err := writeTable(ctx, "json", path, b.Result.Combined); err != nil {
		return written, err
	}
	return append(written, path), nil
}

// writeEntityDump writes one entity's filtered claims in the layout of a
// wbgetentities response, indented with two spaces.
func writeEntityDump(path string, claims *core.EntityClaims) error {
	payload := map[string]any{
		"entities": map[string]any{
			claims.ID: map[string]any{"claims": claims.Groups},
		},
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode entity dump %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func writeTable(ctx context.Context, format, path string, record arrow.Record) error {
	writer, err := writers.DefaultFactory.Create(core.WriterConfig{Type: format, Path: path})
	if err != nil {
		return fmt.Errorf("failed to create %s writer for %s: %w", format, path, err)
	}
	if err := writer.Write(ctx, record); err != nil {
		writer.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}
