package export

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wikiparity/wikiparity/pkg/core"
	"github.com/wikiparity/wikiparity/pkg/dataset"
	"github.com/wikiparity/wikiparity/pkg/diff"
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

// testBundle compares two small entities and wraps the outputs for dumping.
func testBundle(t *testing.T) *Bundle {
	t.Helper()
	mem := memory.NewGoAllocator()

	source := createClaimRecord(mem, [][3]string{
		{"Douglas Adams", "instance of", "human"},
		{"Douglas Adams", "occupation", "writer"},
	})
	target := createClaimRecord(mem, [][3]string{
		{"Terry Pratchett", "instance of", "human"},
		{"Terry Pratchett", "occupation", "novelist"},
	})

	differ, err := diff.NewEntityDiffer()
	require.NoError(t, err)

	result, err := differ.Compare(context.Background(), source, target, core.CompareOptions{})
	require.NoError(t, err)

	t.Cleanup(func() {
		result.Release()
		source.Release()
		target.Release()
		differ.Close()
	})

	rawGroup := json.RawMessage(`[{"type":"statement","rank":"normal"}]`)
	return &Bundle{
		SourceClaims: &core.EntityClaims{
			ID:     "Q42",
			Groups: core.ClaimGroups{{Property: "P31", Raw: rawGroup, ValueIDs: []string{"Q5"}}},
		},
		TargetClaims: &core.EntityClaims{
			ID:     "Q46248",
			Groups: core.ClaimGroups{{Property: "P31", Raw: rawGroup, ValueIDs: []string{"Q5"}}},
		},
		Source: source,
		Target: target,
		Result: result,
	}
}

func TestDump(t *testing.T) {
	b := testBundle(t)
	dir := t.TempDir()

	dumper := NewDumper(dir, []string{"json", "csv"})
	written, err := dumper.Dump(context.Background(), b)
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "json", "data1.json"),
		filepath.Join(dir, "json", "data2.json"),
		filepath.Join(dir, "json", "combined.json"),
		filepath.Join(dir, "csv", "data1.csv"),
		filepath.Join(dir, "csv", "data2.csv"),
		filepath.Join(dir, "csv", "combined.csv"),
		filepath.Join(dir, "csv", "common.csv"),
		filepath.Join(dir, "csv", "different.csv"),
	}, written)

	for _, path := range written {
		info, err := os.Stat(path)
		require.NoError(t, err, path)
		assert.Greater(t, info.Size(), int64(0), path)
	}
}

func TestDumpEntityDumpLayout(t *testing.T) {
	b := testBundle(t)
	dir := t.TempDir()

	_, err := NewDumper(dir, []string{"json"}).Dump(context.Background(), b)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "json", "data1.json"))
	require.NoError(t, err)

	expected := `{
  "entities": {
    "Q42": {
      "claims": {
        "P31": [
          {
            "type": "statement",
            "rank": "normal"
          }
        ]
      }
    }
  }
}`
	assert.Equal(t, expected, string(data))

	data, err = os.ReadFile(filepath.Join(dir, "json", "data2.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"Q46248"`)
}

func TestDumpCombinedCompact(t *testing.T) {
	b := testBundle(t)
	dir := t.TempDir()

	_, err := NewDumper(dir, []string{"json"}).Dump(context.Background(), b)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "json", "combined.json"))
	require.NoError(t, err)

	expected := `[{"Item":"Douglas Adams","Property":"instance of","Value":"human"},` +
		`{"Item":"Douglas Adams","Property":"occupation","Value":"writer"},` +
		`{"Item":"Terry Pratchett","Property":"instance of","Value":"human"},` +
		`{"Item":"Terry Pratchett","Property":"occupation","Value":"novelist"}]`
	assert.Equal(t, expected, string(data))
}

func TestDumpMergedTables(t *testing.T) {
	b := testBundle(t)
	dir := t.TempDir()

	_, err := NewDumper(dir, []string{"csv"}).Dump(context.Background(), b)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "csv", "common.csv"))
	require.NoError(t, err)
	assert.Equal(t,
		"Item_item1,Property,Value_item1,Item_item2,Value_item2\n"+
			"Douglas Adams,instance of,human,Terry Pratchett,human\n",
		string(data))

	data, err = os.ReadFile(filepath.Join(dir, "csv", "different.csv"))
	require.NoError(t, err)
	assert.Equal(t,
		"Item_item1,Property,Value_item1,Item_item2,Value_item2\n"+
			"Douglas Adams,occupation,writer,Terry Pratchett,novelist\n",
		string(data))
}

func TestDumpFormatMirrors(t *testing.T) {
	b := testBundle(t)
	dir := t.TempDir()

	written, err := NewDumper(dir, []string{"arrow", "parquet"}).Dump(context.Background(), b)
	require.NoError(t, err)
	require.Len(t, written, 10)

	assert.Equal(t, filepath.Join(dir, "arrow", "data1.arrow"), written[0])
	assert.Equal(t, filepath.Join(dir, "parquet", "different.parquet"), written[9])

	for _, path := range written {
		info, err := os.Stat(path)
		require.NoError(t, err, path)
		assert.Greater(t, info.Size(), int64(0), path)
	}
}

func TestDumpIncompleteBundle(t *testing.T) {
	dumper := NewDumper(t.TempDir(), []string{"json"})

	_, err := dumper.Dump(context.Background(), nil)
	assert.ErrorContains(t, err, "incomplete")

	b := testBundle(t)
	b.Result = nil
	_, err = dumper.Dump(context.Background(), b)
	assert.ErrorContains(t, err, "incomplete")
}

func TestDumpUnknownFormat(t *testing.T) {
	b := testBundle(t)

	_, err := NewDumper(t.TempDir(), []string{"xml"}).Dump(context.Background(), b)
	assert.ErrorContains(t, err, "unsupported writer type")
}
