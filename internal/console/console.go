// Package console renders styled terminal output for comparison runs.
package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/wikiparity/wikiparity/pkg/core"
)

// previewLimit caps the number of rows printed per table; the full tables are
// always available in the dump files.
const previewLimit = 20

// maxCellWidth caps cell width the way a dataframe preview would.
const maxCellWidth = 50

var (
	green   = lipgloss.Color("#8BC34A")
	red     = lipgloss.Color("#e53935")
	blue    = lipgloss.Color("#2196F3")
	magenta = lipgloss.Color("#ba68c8")
	skyBlue = lipgloss.Color("#4fc3f7")
	gray    = lipgloss.Color("#9e9e9e")

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(green)
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(green)
	statStyle    = lipgloss.NewStyle().Bold(true).Foreground(red)
	licenseStyle = lipgloss.NewStyle().Bold(true).Foreground(skyBlue)
	noteStyle    = lipgloss.NewStyle().Foreground(gray)
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)

	itemWord      = lipgloss.NewStyle().Foreground(red)
	propertyWord  = lipgloss.NewStyle().Foreground(blue)
	valueWord     = lipgloss.NewStyle().Foreground(magenta)
	datavalueWord = lipgloss.NewStyle().Foreground(green)
)

// Console writes styled run output to a terminal.
type Console struct {
	out io.Writer
}

// New creates a console writing to out.
func New(out io.Writer) *Console {
	return &Console{out: out}
}

// Intro greets the user and explains the Wikidata data model and licensing.
func (c *Console) Intro() {
	fmt.Fprintln(c.out, titleStyle.Render("Welcome to wikiparity!"))
	fmt.Fprintln(c.out, "This tool allows you to compare common properties and values between two Wikidata entities.")
	fmt.Fprintln(c.out, "You will be prompted to enter the names or IDs of the entities you want to compare.")
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, "Understanding Wikidata Information:")
	fmt.Fprintf(c.out, "  - A %s represents a concept or object, identified by a unique identifier (QID), and contains:\n",
		itemWord.Render("Wikidata item"))
	fmt.Fprintf(c.out, "    - %s: Attributes or characteristics of the item, providing various aspects of its description.\n",
		propertyWord.Render("Properties"))
	fmt.Fprintf(c.out, "    - %s: Data associated with the properties, which can be simple (e.g., strings or numbers) or complex (e.g., another Wikidata item or date).\n",
		valueWord.Render("Values"))
	fmt.Fprintf(c.out, "    - %s: Additional details specifying the nature of complex values, such as data type and precision.\n",
		datavalueWord.Render("Datavalues"))
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, licenseStyle.Render("Wikidata Licensing Information:"))
	fmt.Fprintln(c.out, "  - The data utilized in this tool is sourced from Wikidata, a freely available knowledge base.")
	fmt.Fprintln(c.out, "  - Wikidata content is licensed under the Creative Commons Zero (CC0) License and free to use for any purpose.")
	fmt.Fprintln(c.out, "  - For more details see: https://creativecommons.org/publicdomain/zero/1.0/")
	fmt.Fprintln(c.out)
}

// Header prints which entities were compared.
func (c *Console) Header(summary core.ComparisonSummary) {
	fmt.Fprintf(c.out, "\n%s vs %s\n",
		headingStyle.Render(fmt.Sprintf("%s (%s)", summary.SourceLabel, summary.SourceID)),
		headingStyle.Render(fmt.Sprintf("%s (%s)", summary.TargetLabel, summary.TargetID)))
}

// Statistics prints the headline counts of a comparison.
func (c *Console) Statistics(summary core.ComparisonSummary) {
	fmt.Fprintln(c.out, statStyle.Render("Statistics for common and different Properties/Values:"))
	for _, stat := range []struct {
		label string
		value int64
	}{
		{"Common Properties", summary.CommonProperties},
		{"Common Values", summary.CommonValues},
		{"Different Properties", summary.DifferentProperties},
		{"Different Values", summary.DifferentValues},
	} {
		fmt.Fprintf(c.out, "  %-21s %d\n", stat.label, stat.value)
	}
	fmt.Fprintln(c.out, noteStyle.Render(fmt.Sprintf("  %d merged rows compared in %s",
		summary.MergedRows, summary.CompareTime)))
}

// CommonTable prints the rows whose values agree on both sides.
func (c *Console) CommonTable(rows []core.MergedRow) {
	c.mergedTable("Common Properties with identical Values:",
		"For more information see common.csv in the output folder.", rows)
}

// DifferentTable prints the rows whose values disagree.
func (c *Console) DifferentTable(rows []core.MergedRow) {
	c.mergedTable("Common Properties with different Values:",
		"For more information see different.csv in the output folder.", rows)
}

func (c *Console) mergedTable(title, note string, rows []core.MergedRow) {
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, headingStyle.Render(title))
	fmt.Fprintln(c.out, noteStyle.Render(note))

	if len(rows) == 0 {
		fmt.Fprintln(c.out, "(none)")
		return
	}

	shown := rows
	if len(shown) > previewLimit {
		shown = shown[:previewLimit]
	}

	table := make([][]string, 0, len(shown))
	for _, row := range shown {
		table = append(table, []string{
			truncate(row.Property),
			truncate(row.SourceValue),
			truncate(row.TargetValue),
		})
	}

	c.renderTable([]string{core.ColProperty, core.ColSourceValue, core.ColTargetValue}, table)

	if len(rows) > previewLimit {
		fmt.Fprintln(c.out, noteStyle.Render(fmt.Sprintf("... %d more rows", len(rows)-previewLimit)))
	}
}

// Suggestions prints search results as a table.
func (c *Console) Suggestions(suggestions []core.Suggestion) {
	if len(suggestions) == 0 {
		fmt.Fprintln(c.out, "(no matches)")
		return
	}

	rows := make([][]string, 0, len(suggestions))
	for _, suggestion := range suggestions {
		rows = append(rows, []string{
			suggestion.ID,
			truncate(suggestion.Label),
			truncate(suggestion.Description),
		})
	}
	c.renderTable([]string{"ID", "Label", "Description"}, rows)
}

// Preview prints arbitrary table contents, as the inspect command does.
func (c *Console) Preview(headers []string, rows [][]string) {
	for _, row := range rows {
		for i, cell := range row {
			row[i] = truncate(cell)
		}
	}
	c.renderTable(headers, rows)
}

// renderTable prints a fixed-width table sized to its widest cells.
func (c *Console) renderTable(headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, header := range headers {
		widths[i] = lipgloss.Width(header)
	}
	for _, row := range rows {
		for i, cell := range row {
			if w := lipgloss.Width(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var sb strings.Builder
	total := 0
	for i, header := range headers {
		sb.WriteString(headerStyle.Width(widths[i] + 2).Render(header))
		total += widths[i] + 2
	}
	sb.WriteString("\n")
	sb.WriteString(noteStyle.Render(strings.Repeat("-", total)))
	sb.WriteString("\n")

	for _, row := range rows {
		for i, cell := range row {
			sb.WriteString(cellStyle.Width(widths[i] + 2).Render(cell))
		}
		sb.WriteString("\n")
	}
	fmt.Fprint(c.out, sb.String())
}

// Saved prints where the dump files went.
func (c *Console) Saved(dir string, formats []string) {
	suffixes := make([]string, 0, len(formats))
	for _, format := range formats {
		suffixes = append(suffixes, "."+format)
	}
	fmt.Fprintf(c.out, "\nData is saved as %s under the '%s' folder.\n",
		strings.Join(suffixes, " and "), dir)
}

// ChartsSaved points the user at the rendered diagrams.
func (c *Console) ChartsSaved(dir string) {
	fmt.Fprintf(c.out, "Diagrams are rendered as HTML under '%s'. Open them in a browser or run the serve command.\n", dir)
}

// truncate shortens long cells, keeping tables readable.
func truncate(s string) string {
	runes := []rune(s)
	if len(runes) <= maxCellWidth {
		return s
	}
	return string(runes[:maxCellWidth-3]) + "..."
}
