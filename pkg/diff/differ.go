// Package diff computes property-level comparisons between entity claim tables.
package diff

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/wikiparity/wikiparity/pkg/core"
	"github.com/wikiparity/wikiparity/pkg/dataset"
	"github.com/wikiparity/wikiparity/pkg/schema"
)

// EntityDiffer implements core.Comparer with a single in-memory join on the
// property column. Rows from the source table pair with every target row
// that shares the property, so the merged table is the inner join of the
// two claim tables.
type EntityDiffer struct {
	alloc memory.Allocator
}

// NewEntityDiffer creates a new entity differ.
func NewEntityDiffer() (*EntityDiffer, error) {
	return &EntityDiffer{
		alloc: memory.NewGoAllocator(),
	}, nil
}

// Close closes the differ and releases resources.
func (d *EntityDiffer) Close() error {
	return nil
}

// Compare joins source and target claims on property and splits the joined
// rows into matching and diverging values. The returned records are owned
// by the caller.
func (d *EntityDiffer) Compare(ctx context.Context, source, target arrow.Record, options core.CompareOptions) (*core.ComparisonResult, error) {
	start := time.Now()

	if options.ValidateSchema {
		if err := validateClaimSchema("source", source.Schema()); err != nil {
			return nil, err
		}
		if err := validateClaimSchema("target", target.Schema()); err != nil {
			return nil, err
		}
	}

	sourceCols, err := claimColumnsOf(source)
	if err != nil {
		return nil, fmt.Errorf("source table: %w", err)
	}
	targetCols, err := claimColumnsOf(target)
	if err != nil {
		return nil, fmt.Errorf("target table: %w", err)
	}

	// Index target rows by property so the join is one pass over the source.
	targetByProperty := make(map[string][]int)
	targetProperties := make(map[string]struct{})
	for i := 0; i < int(target.NumRows()); i++ {
		property := targetCols.property.Value(i)
		targetByProperty[property] = append(targetByProperty[property], i)
		targetProperties[property] = struct{}{}
	}

	merged := array.NewRecordBuilder(d.alloc, dataset.MergedSchema())
	defer merged.Release()
	common := array.NewRecordBuilder(d.alloc, dataset.MergedSchema())
	defer common.Release()
	different := array.NewRecordBuilder(d.alloc, dataset.MergedSchema())
	defer different.Release()

	sourceProperties := make(map[string]struct{})
	sharedProperties := make(map[string]struct{})
	commonProperties := make(map[string]struct{})
	commonValues := make(map[string]struct{})
	differentProperties := make(map[string]struct{})
	sourceDiverging := make(map[string]struct{})
	targetDiverging := make(map[string]struct{})

	var mergedRows int64
	for i := 0; i < int(source.NumRows()); i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		property := sourceCols.property.Value(i)
		sourceProperties[property] = struct{}{}

		matches, ok := targetByProperty[property]
		if !ok {
			continue
		}
		sharedProperties[property] = struct{}{}

		sourceItem := sourceCols.item.Value(i)
		sourceValue := sourceCols.value.Value(i)

		for _, j := range matches {
			targetItem := targetCols.item.Value(j)
			targetValue := targetCols.value.Value(j)

			appendMergedRow(merged, sourceItem, property, sourceValue, targetItem, targetValue)
			mergedRows++

			if sourceValue == targetValue {
				appendMergedRow(common, sourceItem, property, sourceValue, targetItem, targetValue)
				commonProperties[property] = struct{}{}
				commonValues[sourceValue] = struct{}{}
			} else {
				appendMergedRow(different, sourceItem, property, sourceValue, targetItem, targetValue)
				differentProperties[property] = struct{}{}
				sourceDiverging[sourceValue] = struct{}{}
				targetDiverging[targetValue] = struct{}{}
			}
		}
	}

	combined, err := d.concatClaims(source, target)
	if err != nil {
		return nil, err
	}

	summary := core.ComparisonSummary{
		SourceRows:          source.NumRows(),
		TargetRows:          target.NumRows(),
		MergedRows:          mergedRows,
		SourceProperties:    int64(len(sourceProperties)),
		TargetProperties:    int64(len(targetProperties)),
		SharedProperties:    int64(len(sharedProperties)),
		CommonProperties:    int64(len(commonProperties)),
		CommonValues:        int64(len(commonValues)),
		DifferentProperties: int64(len(differentProperties)),
		DifferentValues:     int64(symmetricDifferenceSize(sourceDiverging, targetDiverging)),
		CompareTime:         time.Since(start),
	}

	return &core.ComparisonResult{
		Merged:    merged.NewRecord(),
		Combined:  combined,
		Common:    common.NewRecord(),
		Different: different.NewRecord(),
		Summary:   summary,
	}, nil
}

// concatClaims stacks source rows then target rows into one claim table.
func (d *EntityDiffer) concatClaims(source, target arrow.Record) (arrow.Record, error) {
	rb := array.NewRecordBuilder(d.alloc, dataset.EntitySchema())
	defer rb.Release()

	for _, record := range []arrow.Record{source, target} {
		cols, err := claimColumnsOf(record)
		if err != nil {
			return nil, err
		}
		for i := 0; i < int(record.NumRows()); i++ {
			rb.Field(0).(*array.StringBuilder).Append(cols.item.Value(i))
			rb.Field(1).(*array.StringBuilder).Append(cols.property.Value(i))
			rb.Field(2).(*array.StringBuilder).Append(cols.value.Value(i))
		}
	}

	return rb.NewRecord(), nil
}

// claimColumns holds the typed columns of an entity claim record.
type claimColumns struct {
	item     *array.String
	property *array.String
	value    *array.String
}

func claimColumnsOf(record arrow.Record) (claimColumns, error) {
	var cols claimColumns
	var err error
	if cols.item, err = stringColumn(record, core.ColItem); err != nil {
		return cols, err
	}
	if cols.property, err = stringColumn(record, core.ColProperty); err != nil {
		return cols, err
	}
	if cols.value, err = stringColumn(record, core.ColValue); err != nil {
		return cols, err
	}
	return cols, nil
}

func stringColumn(record arrow.Record, name string) (*array.String, error) {
	indices := record.Schema().FieldIndices(name)
	if len(indices) != 1 {
		return nil, fmt.Errorf("column %s not found or ambiguous", name)
	}
	col, ok := record.Column(indices[0]).(*array.String)
	if !ok {
		return nil, fmt.Errorf("column %s is %s, want string", name, record.Column(indices[0]).DataType())
	}
	return col, nil
}

func appendMergedRow(rb *array.RecordBuilder, sourceItem, property, sourceValue, targetItem, targetValue string) {
	rb.Field(0).(*array.StringBuilder).Append(sourceItem)
	rb.Field(1).(*array.StringBuilder).Append(property)
	rb.Field(2).(*array.StringBuilder).Append(sourceValue)
	rb.Field(3).(*array.StringBuilder).Append(targetItem)
	rb.Field(4).(*array.StringBuilder).Append(targetValue)
}

// validateClaimSchema checks a table against the claim table rules before
// joining.
func validateClaimSchema(side string, s *arrow.Schema) error {
	result := schema.NewEntityTableValidator().ValidateSchema(s)
	if result.Valid {
		return nil
	}

	var problems []string
	for _, errs := range result.Errors {
		problems = append(problems, errs...)
	}
	sort.Strings(problems)
	return fmt.Errorf("%s table schema invalid: %s", side, strings.Join(problems, "; "))
}

func symmetricDifferenceSize(a, b map[string]struct{}) int {
	size := 0
	for v := range a {
		if _, ok := b[v]; !ok {
			size++
		}
	}
	for v := range b {
		if _, ok := a[v]; !ok {
			size++
		}
	}
	return size
}
