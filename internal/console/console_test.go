package console

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/wikiparity/wikiparity/pkg/core"
)

func TestIntro(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).Intro()

	out := buf.String()
	assert.Contains(t, out, "Welcome to wikiparity!")
	assert.Contains(t, out, "Wikidata Licensing Information:")
	assert.Contains(t, out, "https://creativecommons.org/publicdomain/zero/1.0/")
}

func TestStatistics(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).Statistics(core.ComparisonSummary{
		CommonProperties:    2,
		CommonValues:        2,
		DifferentProperties: 1,
		DifferentValues:     2,
		MergedRows:          5,
		CompareTime:         3 * time.Millisecond,
	})

	out := buf.String()
	assert.Contains(t, out, "Statistics for common and different Properties/Values:")
	assert.Contains(t, out, "Common Properties     2")
	assert.Contains(t, out, "Different Properties  1")
	assert.Contains(t, out, "5 merged rows compared in 3ms")
}

func TestHeader(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).Header(core.ComparisonSummary{
		SourceID:    "Q42",
		TargetID:    "Q46248",
		SourceLabel: "Douglas Adams",
		TargetLabel: "Terry Pratchett",
	})

	out := buf.String()
	assert.Contains(t, out, "Douglas Adams (Q42)")
	assert.Contains(t, out, "Terry Pratchett (Q46248)")
}

func TestCommonTable(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).CommonTable([]core.MergedRow{
		{SourceItem: "Douglas Adams", Property: "instance of", SourceValue: "human", TargetItem: "Terry Pratchett", TargetValue: "human"},
	})

	out := buf.String()
	assert.Contains(t, out, "Common Properties with identical Values:")
	assert.Contains(t, out, "common.csv")
	assert.Contains(t, out, "instance of")
	assert.Contains(t, out, "human")
	assert.Contains(t, out, core.ColSourceValue)
	assert.Contains(t, out, core.ColTargetValue)
}

func TestDifferentTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).DifferentTable(nil)

	out := buf.String()
	assert.Contains(t, out, "Common Properties with different Values:")
	assert.Contains(t, out, "(none)")
}

func TestMergedTablePreviewLimit(t *testing.T) {
	rows := make([]core.MergedRow, previewLimit+5)
	for i := range rows {
		rows[i] = core.MergedRow{Property: "occupation", SourceValue: "writer", TargetValue: "novelist"}
	}

	var buf bytes.Buffer
	New(&buf).CommonTable(rows)

	assert.Contains(t, buf.String(), "... 5 more rows")
}

func TestSuggestions(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).Suggestions([]core.Suggestion{
		{ID: "Q42", Label: "Douglas Adams", Description: "English author and humourist"},
		{ID: "Q5552", Label: "Douglas Adams", Description: "botanist"},
	})

	out := buf.String()
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "Q42")
	assert.Contains(t, out, "English author and humourist")
	assert.Contains(t, out, "Q5552")
}

func TestSuggestionsEmpty(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).Suggestions(nil)

	assert.Contains(t, buf.String(), "(no matches)")
}

func TestPreview(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).Preview(
		[]string{core.ColItem, core.ColProperty, core.ColValue},
		[][]string{
			{"Douglas Adams", "occupation", "writer"},
			{"Douglas Adams", "occupation", strings.Repeat("y", maxCellWidth+10)},
		})

	out := buf.String()
	assert.Contains(t, out, core.ColProperty)
	assert.Contains(t, out, "writer")
	assert.NotContains(t, out, strings.Repeat("y", maxCellWidth+10))
	assert.Contains(t, out, "...")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short"))

	long := strings.Repeat("x", maxCellWidth+10)
	got := truncate(long)
	assert.Len(t, []rune(got), maxCellWidth)
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestSaved(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).Saved("wikidata_data", []string{"json", "csv"})

	assert.Contains(t, buf.String(), "Data is saved as .json and .csv under the 'wikidata_data' folder.")
}
