// Package core provides the core types and interfaces for the wikiparity entity comparison tool.
package core

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
)

// Column names of the entity table produced for each compared entity.
const (
	ColItem     = "Item"
	ColProperty = "Property"
	ColValue    = "Value"
)

// Column names of the merged (joined) table. The _item1/_item2 suffixes are part
// of the exported file format and are kept stable across releases.
const (
	ColSourceItem  = "Item_item1"
	ColSourceValue = "Value_item1"
	ColTargetItem  = "Item_item2"
	ColTargetValue = "Value_item2"
)

// Suggestion is a single entity search hit.
type Suggestion struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

// ClaimGroup holds all claims of one property, in API response order.
// Raw preserves the group payload verbatim for the JSON dumps; ValueIDs lists
// the item values of the group's wikibase-item claims in claim order.
type ClaimGroup struct {
	Property string
	Raw      json.RawMessage
	ValueIDs []string
}

// ClaimGroups is an ordered set of claim groups. It marshals as a JSON object
// keyed by property id, preserving group order, so dumped files match the API
// response layout.
type ClaimGroups []ClaimGroup

// MarshalJSON implements json.Marshaler.
func (g ClaimGroups) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, group := range g {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(group.Property)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(group.Raw)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// EntityClaims is the filtered claim set of one entity: only claim groups that
// contain at least one wikibase-item statement are retained.
type EntityClaims struct {
	ID     string
	Groups ClaimGroups
}

// Statements returns the total number of wikibase-item statements.
func (e *EntityClaims) Statements() int {
	var n int
	for _, group := range e.Groups {
		n += len(group.ValueIDs)
	}
	return n
}

// EntityProvider resolves entities against a knowledge base.
type EntityProvider interface {
	// SearchEntities returns suggestions for a free-text search term.
	SearchEntities(ctx context.Context, term string) ([]Suggestion, error)

	// GetEntityClaims fetches the wikibase-item claims of an entity.
	GetEntityClaims(ctx context.Context, id string) (*EntityClaims, error)

	// GetLabels resolves labels for a batch of entity or property ids.
	// Ids without a label in the configured language map to themselves.
	GetLabels(ctx context.Context, ids []string) (map[string]string, error)
}

// Row is one statement row of an entity table.
type Row struct {
	Item     string `arrow:"Item"`
	Property string `arrow:"Property"`
	Value    string `arrow:"Value"`
}

// MergedRow is one row of the property join between two entity tables.
type MergedRow struct {
	SourceItem  string `arrow:"Item_item1"`
	Property    string `arrow:"Property"`
	SourceValue string `arrow:"Value_item1"`
	TargetItem  string `arrow:"Item_item2"`
	TargetValue string `arrow:"Value_item2"`
}

// DatasetReader defines an interface for reading tabular data from various sources.
type DatasetReader interface {
	// Read returns a record batch and an error if any.
	// Returns io.EOF when there are no more batches.
	Read(ctx context.Context) (arrow.Record, error)

	// Schema returns the schema of the dataset.
	Schema() *arrow.Schema

	// Close closes the reader and releases resources.
	Close() error
}

// DatasetWriter defines an interface for writing tabular data to various destinations.
type DatasetWriter interface {
	// Write writes a record to the destination.
	Write(ctx context.Context, record arrow.Record) error

	// Close closes the writer and flushes any pending data.
	Close() error
}

// ComparisonResult holds the output tables of one entity comparison.
// All records are owned by the result; call Release when done.
type ComparisonResult struct {
	// Merged joins the two entity tables on Property.
	Merged arrow.Record

	// Combined concatenates the source rows followed by the target rows.
	Combined arrow.Record

	// Common contains the merged rows whose values agree.
	Common arrow.Record

	// Different contains the merged rows whose values disagree.
	Different arrow.Record

	// Summary provides the headline counts of the comparison.
	Summary ComparisonSummary
}

// Release releases all records held by the result.
func (r *ComparisonResult) Release() {
	for _, rec := range []arrow.Record{r.Merged, r.Combined, r.Common, r.Different} {
		if rec != nil {
			rec.Release()
		}
	}
	r.Merged, r.Combined, r.Common, r.Different = nil, nil, nil, nil
}

// ComparisonSummary provides the headline counts of an entity comparison.
type ComparisonSummary struct {
	// SourceID and TargetID are the compared entity ids.
	SourceID string `json:"source_id"`
	TargetID string `json:"target_id"`

	// SourceLabel and TargetLabel are the resolved entity labels.
	SourceLabel string `json:"source_label"`
	TargetLabel string `json:"target_label"`

	// SourceRows and TargetRows are the statement counts per side.
	SourceRows int64 `json:"source_rows"`
	TargetRows int64 `json:"target_rows"`

	// MergedRows is the size of the property join.
	MergedRows int64 `json:"merged_rows"`

	// SourceProperties and TargetProperties are distinct property counts per side.
	SourceProperties int64 `json:"source_properties"`
	TargetProperties int64 `json:"target_properties"`

	// SharedProperties is the number of distinct properties present on both sides.
	SharedProperties int64 `json:"shared_properties"`

	// CommonProperties is the number of distinct properties among rows whose
	// values agree; CommonValues counts the distinct agreeing values.
	CommonProperties int64 `json:"common_properties"`
	CommonValues     int64 `json:"common_values"`

	// DifferentProperties is the number of distinct properties among rows whose
	// values disagree; DifferentValues is the size of the symmetric difference
	// of the two disagreeing value sets.
	DifferentProperties int64 `json:"different_properties"`
	DifferentValues     int64 `json:"different_values"`

	// CompareTime is the wall-clock duration of the comparison.
	CompareTime time.Duration `json:"compare_time"`
}

// CompareOptions provides options for the compare operation.
type CompareOptions struct {
	// ValidateSchema enables schema validation of both inputs before comparing.
	ValidateSchema bool
}

// Comparer defines an interface for comparing two entity tables.
type Comparer interface {
	// Compare computes the comparison tables and summary for two entity tables.
	Compare(ctx context.Context, source, target arrow.Record, options CompareOptions) (*ComparisonResult, error)
}

// ReaderConfig provides configuration for creating a reader.
type ReaderConfig struct {
	// Type is the type of the reader.
	Type string

	// Path is the path to the file.
	Path string

	// BatchSize is the size of batches to read.
	BatchSize int64
}

// WriterConfig provides configuration for creating a writer.
type WriterConfig struct {
	// Type is the type of the writer.
	Type string

	// Path is the path to the file.
	Path string

	// BatchSize is the size of batches to write.
	BatchSize int64
}
