package diff

import (
	"context"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wikiparity/wikiparity/pkg/core"
	"github.com/wikiparity/wikiparity/pkg/dataset"
)

// createClaimRecord builds an entity claim record from (item, property, value) rows.
func createClaimRecord(mem memory.Allocator, rows [][3]string) arrow.Record {
	rb := array.NewRecordBuilder(mem, dataset.EntitySchema())
	defer rb.Release()

	for _, row := range rows {
		rb.Field(0).(*array.StringBuilder).Append(row[0])
		rb.Field(1).(*array.StringBuilder).Append(row[1])
		rb.Field(2).(*array.StringBuilder).Append(row[2])
	}

	return rb.NewRecord()
}

func TestNewEntityDiffer(t *testing.T) {
	differ, err := NewEntityDiffer()
	assert.NoError(t, err)
	assert.NotNil(t, differ)
	assert.NotNil(t, differ.alloc)
	assert.NoError(t, differ.Close())
}

func TestCompare(t *testing.T) {
	differ, err := NewEntityDiffer()
	require.NoError(t, err)
	defer differ.Close()

	mem := memory.NewGoAllocator()

	source := createClaimRecord(mem, [][3]string{
		{"Douglas Adams", "instance of", "human"},
		{"Douglas Adams", "occupation", "writer"},
		{"Douglas Adams", "occupation", "screenwriter"},
		{"Douglas Adams", "notable work", "The Hitchhiker's Guide to the Galaxy"},
	})
	defer source.Release()

	target := createClaimRecord(mem, [][3]string{
		{"Terry Pratchett", "instance of", "human"},
		{"Terry Pratchett", "occupation", "novelist"},
		{"Terry Pratchett", "occupation", "writer"},
		{"Terry Pratchett", "place of birth", "Beaconsfield"},
	})
	defer target.Release()

	result, err := differ.Compare(context.Background(), source, target, core.CompareOptions{})
	require.NoError(t, err)
	defer result.Release()

	// Shared properties join pairwise: 1x1 for instance of, 2x2 for occupation.
	mergedRows, err := dataset.MergedRows(result.Merged)
	require.NoError(t, err)
	require.Len(t, mergedRows, 5)

	assert.Equal(t, core.MergedRow{
		SourceItem:  "Douglas Adams",
		Property:    "instance of",
		SourceValue: "human",
		TargetItem:  "Terry Pratchett",
		TargetValue: "human",
	}, mergedRows[0])

	// The join preserves source row order, then target order within a property.
	assert.Equal(t, "writer", mergedRows[1].SourceValue)
	assert.Equal(t, "novelist", mergedRows[1].TargetValue)
	assert.Equal(t, "writer", mergedRows[2].SourceValue)
	assert.Equal(t, "writer", mergedRows[2].TargetValue)
	assert.Equal(t, "screenwriter", mergedRows[3].SourceValue)
	assert.Equal(t, "novelist", mergedRows[3].TargetValue)
	assert.Equal(t, "screenwriter", mergedRows[4].SourceValue)
	assert.Equal(t, "writer", mergedRows[4].TargetValue)

	commonRows, err := dataset.MergedRows(result.Common)
	require.NoError(t, err)
	require.Len(t, commonRows, 2)
	assert.Equal(t, "human", commonRows[0].SourceValue)
	assert.Equal(t, "writer", commonRows[1].SourceValue)

	differentRows, err := dataset.MergedRows(result.Different)
	require.NoError(t, err)
	assert.Len(t, differentRows, 3)

	combinedRows, err := dataset.Rows(result.Combined)
	require.NoError(t, err)
	require.Len(t, combinedRows, 8)
	assert.Equal(t, "Douglas Adams", combinedRows[0].Item)
	assert.Equal(t, "Terry Pratchett", combinedRows[4].Item)

	summary := result.Summary
	assert.Equal(t, int64(4), summary.SourceRows)
	assert.Equal(t, int64(4), summary.TargetRows)
	assert.Equal(t, int64(5), summary.MergedRows)
	assert.Equal(t, int64(3), summary.SourceProperties)
	assert.Equal(t, int64(3), summary.TargetProperties)
	assert.Equal(t, int64(2), summary.SharedProperties)
	assert.Equal(t, int64(2), summary.CommonProperties)

	// Matching values: human and writer.
	assert.Equal(t, int64(2), summary.CommonValues)

	// Only occupation rows diverge.
	assert.Equal(t, int64(1), summary.DifferentProperties)

	// Diverging values on either side but not both: screenwriter and novelist.
	assert.Equal(t, int64(2), summary.DifferentValues)

	assert.Greater(t, summary.CompareTime.Nanoseconds(), int64(0))
}

func TestCompareNoSharedProperties(t *testing.T) {
	differ, err := NewEntityDiffer()
	require.NoError(t, err)
	defer differ.Close()

	mem := memory.NewGoAllocator()

	source := createClaimRecord(mem, [][3]string{
		{"Berlin", "country", "Germany"},
	})
	defer source.Release()

	target := createClaimRecord(mem, [][3]string{
		{"Hamburg", "instance of", "city"},
	})
	defer target.Release()

	result, err := differ.Compare(context.Background(), source, target, core.CompareOptions{})
	require.NoError(t, err)
	defer result.Release()

	assert.Equal(t, int64(0), result.Merged.NumRows())
	assert.Equal(t, int64(0), result.Common.NumRows())
	assert.Equal(t, int64(0), result.Different.NumRows())
	assert.Equal(t, int64(2), result.Combined.NumRows())

	assert.Equal(t, int64(0), result.Summary.SharedProperties)
	assert.Equal(t, int64(0), result.Summary.CommonValues)
	assert.Equal(t, int64(0), result.Summary.DifferentValues)
}

func TestCompareEmptySource(t *testing.T) {
	differ, err := NewEntityDiffer()
	require.NoError(t, err)
	defer differ.Close()

	mem := memory.NewGoAllocator()

	source := createClaimRecord(mem, nil)
	defer source.Release()

	target := createClaimRecord(mem, [][3]string{
		{"Hamburg", "instance of", "city"},
	})
	defer target.Release()

	result, err := differ.Compare(context.Background(), source, target, core.CompareOptions{})
	require.NoError(t, err)
	defer result.Release()

	assert.Equal(t, int64(0), result.Merged.NumRows())
	assert.Equal(t, int64(1), result.Combined.NumRows())
	assert.Equal(t, int64(0), result.Summary.SourceRows)
	assert.Equal(t, int64(1), result.Summary.TargetRows)
}

func TestCompareValidatesSchema(t *testing.T) {
	differ, err := NewEntityDiffer()
	require.NoError(t, err)
	defer differ.Close()

	mem := memory.NewGoAllocator()

	badSchema := arrow.NewSchema([]arrow.Field{
		{Name: core.ColItem, Type: arrow.BinaryTypes.String, Nullable: false},
		{Name: core.ColProperty, Type: arrow.BinaryTypes.String, Nullable: false},
		{Name: core.ColValue, Type: arrow.PrimitiveTypes.Int64, Nullable: false},
	}, nil)

	rb := array.NewRecordBuilder(mem, badSchema)
	bad := rb.NewRecord()
	rb.Release()
	defer bad.Release()

	good := createClaimRecord(mem, nil)
	defer good.Release()

	_, err = differ.Compare(context.Background(), bad, good, core.CompareOptions{ValidateSchema: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source table schema invalid")
	assert.Contains(t, err.Error(), "field 'Value'")
}

func TestCompareCancelled(t *testing.T) {
	differ, err := NewEntityDiffer()
	require.NoError(t, err)
	defer differ.Close()

	mem := memory.NewGoAllocator()

	source := createClaimRecord(mem, [][3]string{
		{"Berlin", "country", "Germany"},
	})
	defer source.Release()

	target := createClaimRecord(mem, [][3]string{
		{"Hamburg", "country", "Germany"},
	})
	defer target.Release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = differ.Compare(ctx, source, target, core.CompareOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSymmetricDifferenceSize(t *testing.T) {
	a := map[string]struct{}{"x": {}, "y": {}}
	b := map[string]struct{}{"y": {}, "z": {}}

	assert.Equal(t, 2, symmetricDifferenceSize(a, b))
	assert.Equal(t, 0, symmetricDifferenceSize(a, a))
	assert.Equal(t, 2, symmetricDifferenceSize(a, map[string]struct{}{}))
}
