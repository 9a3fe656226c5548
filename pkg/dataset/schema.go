// Package dataset assembles Wikidata entity claims into Arrow tables.
package dataset

import (
	"github.com/apache/arrow-go/v18/arrow"

	"github.com/wikiparity/wikiparity/pkg/core"
)

// EntitySchema returns the schema of a single-entity claim table.
func EntitySchema() *arrow.Schema {
	return arrow.NewSchema([]arrow.Field{
		{Name: core.ColItem, Type: arrow.BinaryTypes.String, Nullable: false},
		{Name: core.ColProperty, Type: arrow.BinaryTypes.String, Nullable: false},
		{Name: core.ColValue, Type: arrow.BinaryTypes.String, Nullable: false},
	}, nil)
}

// MergedSchema returns the schema of the property-joined table for two entities.
func MergedSchema() *arrow.Schema {
	return arrow.NewSchema([]arrow.Field{
		{Name: core.ColSourceItem, Type: arrow.BinaryTypes.String, Nullable: false},
		{Name: core.ColProperty, Type: arrow.BinaryTypes.String, Nullable: false},
		{Name: core.ColSourceValue, Type: arrow.BinaryTypes.String, Nullable: false},
		{Name: core.ColTargetItem, Type: arrow.BinaryTypes.String, Nullable: false},
		{Name: core.ColTargetValue, Type: arrow.BinaryTypes.String, Nullable: false},
	}, nil)
}
