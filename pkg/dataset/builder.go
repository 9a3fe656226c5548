package dataset

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	icore "github.com/wikiparity/wikiparity/internal/core"
	"github.com/wikiparity/wikiparity/pkg/core"
)

// Builder turns entity claims into claim tables with human-readable labels.
type Builder struct {
	alloc memory.Allocator
}

// NewBuilder creates a builder backed by the Go allocator.
func NewBuilder() *Builder {
	return &Builder{alloc: memory.NewGoAllocator()}
}

// LabelIDs returns every id a claim table mentions, in traversal order:
// the entity itself, then each property and its values. Duplicates are
// left in; the label fetch deduplicates.
func LabelIDs(claims *core.EntityClaims) []string {
	if claims == nil {
		return nil
	}
	ids := []string{claims.ID}
	for _, group := range claims.Groups {
		ids = append(ids, group.Property)
		ids = append(ids, group.ValueIDs...)
	}
	return ids
}

// EntityRecord builds the claim table for one entity. Each statement value
// becomes a row of (item, property, value) with ids swapped for labels
// where one is known. Nil or empty claims yield an empty record, not nil.
func (b *Builder) EntityRecord(claims *core.EntityClaims, labels map[string]string) arrow.Record {
	rb := array.NewRecordBuilder(b.alloc, EntitySchema())
	defer rb.Release()

	if claims == nil {
		return rb.NewRecord()
	}

	item := rb.Field(0).(*array.StringBuilder)
	property := rb.Field(1).(*array.StringBuilder)
	value := rb.Field(2).(*array.StringBuilder)

	itemLabel := labelOf(labels, claims.ID)
	for _, group := range claims.Groups {
		propertyLabel := labelOf(labels, group.Property)
		for _, id := range group.ValueIDs {
			item.Append(itemLabel)
			property.Append(propertyLabel)
			value.Append(labelOf(labels, id))
		}
	}

	return rb.NewRecord()
}

// Rows materializes an entity claim record into row structs.
func Rows(record arrow.Record) ([]core.Row, error) {
	reader := icore.NewReader[core.Row](record)
	rows := make([]core.Row, 0, reader.NumRows())
	for i := 0; i < int(reader.NumRows()); i++ {
		row, err := reader.Value(i)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// MergedRows materializes a property-joined record into row structs.
func MergedRows(record arrow.Record) ([]core.MergedRow, error) {
	reader := icore.NewReader[core.MergedRow](record)
	rows := make([]core.MergedRow, 0, reader.NumRows())
	for i := 0; i < int(reader.NumRows()); i++ {
		row, err := reader.Value(i)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func labelOf(labels map[string]string, id string) string {
	if label, ok := labels[id]; ok && label != "" {
		return label
	}
	return id
}
