// Package report renders finished comparison runs as JSON and HTML reports.
package report

import (
	"bytes"
	"encoding/json"
	"html/template"
	"os"
	"time"

	"github.com/wikiparity/wikiparity/metrics"
	"github.com/wikiparity/wikiparity/pkg/core"
	"github.com/wikiparity/wikiparity/validation"
)

// File names the reports are saved under in the output folder.
const (
	JSONReportFile = "report.json"
	HTMLReportFile = "report.html"
)

// -----------------------------
// Run Report Types
// -----------------------------

// ChartLink points at one rendered diagram file, relative to the report.
type ChartLink struct {
	Title string `json:"title"`
	File  string `json:"file"`
}

// Run is the shareable record of one comparison run. It bundles the
// comparison summary with the validation outcome, the collected metrics
// and the rendered diagrams, so a finished run can be browsed or served
// without being repeated.
type Run struct {
	Version     string                 `json:"version"`
	GeneratedAt time.Time              `json:"generated_at"`
	Summary     core.ComparisonSummary `json:"summary"`
	Validation  validation.Report      `json:"validation"`
	Metrics     metrics.RunReport      `json:"metrics"`
	Charts      []ChartLink            `json:"charts"`
}

// -----------------------------
// Report Generator Interfaces
// -----------------------------

// ReportGenerator defines the methods for generating run reports.
type ReportGenerator interface {
	GenerateRunReport(run Run) ([]byte, error)
	SaveReportToFile(run Run, filePath string) error
}

// -----------------------------
// JSON Report Generator
// -----------------------------

// JSONReportGenerator generates JSON reports.
type JSONReportGenerator struct{}

// GenerateRunReport serializes the Run to JSON.
func (j *JSONReportGenerator) GenerateRunReport(run Run) ([]byte, error) {
	return json.MarshalIndent(run, "", "  ")
}

// SaveReportToFile saves the JSON report to a file.
func (j *JSONReportGenerator) SaveReportToFile(run Run, filePath string) error {
	data, err := j.GenerateRunReport(run)
	if err != nil {
		return err
	}
	return os.WriteFile(filePath, data, 0644)
}

// ReportFromFilePath loads a previously saved run report from a file
func (j *JSONReportGenerator) ReportFromFilePath(path string) (Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Run{}, err
	}

	var run Run
	if err := json.Unmarshal(data, &run); err != nil {
		return Run{}, err
	}
	return run, nil
}

// -----------------------------
// HTML Report Generator
// -----------------------------

// HTMLReportGenerator generates HTML reports.
type HTMLReportGenerator struct{}

// HTML template for the report.
const htmlTemplate = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Wikidata Comparison Report</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        table { width: 100%; border-collapse: collapse; margin-top: 20px; }
        th, td { border: 1px solid #ddd; padding: 8px; text-align: left; }
        th { background-color: #f4f4f4; }
        .status-pass { color: green; }
        .status-fail { color: red; }
    </style>
</head>
<body>
    <h1>Wikidata Comparison Report</h1>
    <p><strong>Source:</strong> {{.Summary.SourceLabel}} ({{.Summary.SourceID}})</p>
    <p><strong>Target:</strong> {{.Summary.TargetLabel}} ({{.Summary.TargetID}})</p>
    <p><strong>Report Date:</strong> {{.GeneratedAt}}</p>

    <h2>Statements</h2>
    <table>
        <tr>
            <th>Statistic</th>
            <th>{{.Summary.SourceLabel}}</th>
            <th>{{.Summary.TargetLabel}}</th>
        </tr>
        <tr>
            <td>Statements</td>
            <td>{{.Summary.SourceRows}}</td>
            <td>{{.Summary.TargetRows}}</td>
        </tr>
        <tr>
            <td>Distinct Properties</td>
            <td>{{.Summary.SourceProperties}}</td>
            <td>{{.Summary.TargetProperties}}</td>
        </tr>
    </table>

    <h2>Comparison</h2>
    <table>
        <tr>
            <th>Merged Rows</th>
            <th>Shared Properties</th>
            <th>Common Properties</th>
            <th>Common Values</th>
            <th>Different Properties</th>
            <th>Different Values</th>
        </tr>
        <tr>
            <td>{{.Summary.MergedRows}}</td>
            <td>{{.Summary.SharedProperties}}</td>
            <td>{{.Summary.CommonProperties}}</td>
            <td>{{.Summary.CommonValues}}</td>
            <td>{{.Summary.DifferentProperties}}</td>
            <td>{{.Summary.DifferentValues}}</td>
        </tr>
    </table>

    <h2>Result Validation</h2>
    <p><strong>Status:</strong> {{if .Validation.Passed}}<span class="status-pass">PASS</span>{{else}}<span class="status-fail">FAIL</span>{{end}}</p>
    <table>
        <tr>
            <th>Check</th>
            <th>Status</th>
            <th>Message</th>
        </tr>
        {{range .Validation.Checks}}
        <tr>
            <td>{{.Name}}</td>
            <td class="{{if .Passed}}status-pass{{else}}status-fail{{end}}">
                {{if .Passed}}PASS{{else}}FAIL{{end}}
            </td>
            <td>{{.Message}}</td>
        </tr>
        {{end}}
    </table>

    <h2>Diagrams</h2>
    <ul>
        {{range .Charts}}<li><a href="{{.File}}">{{.Title}}</a></li>{{else}}<li>None</li>{{end}}
    </ul>

    <h2>Data Files</h2>
    <ul>
        {{range .Metrics.Outputs.DataFiles}}<li>{{.}}</li>{{else}}<li>None</li>{{end}}
    </ul>

    <footer>
        <p>Generated by wikiparity {{.Version}} in {{.Metrics.Metadata.Duration}}</p>
    </footer>
</body>
</html>
`

// GenerateRunReport generates an HTML report from the comparison run.
func (h *HTMLReportGenerator) GenerateRunReport(run Run) ([]byte, error) {
	tmpl, err := template.New("report").Parse(htmlTemplate)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, run)
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// SaveReportToFile saves the HTML report to a file.
func (h *HTMLReportGenerator) SaveReportToFile(run Run, filePath string) error {
	data, err := h.GenerateRunReport(run)
	if err != nil {
		return err
	}
	return os.WriteFile(filePath, data, 0644)
}

// SaveReports saves both JSON and HTML reports.
func SaveReports(run Run, jsonPath, htmlPath string) error {
	jsonGen := JSONReportGenerator{}
	htmlGen := HTMLReportGenerator{}

	// Save JSON report
	if err := jsonGen.SaveReportToFile(run, jsonPath); err != nil {
		return err
	}

	// Save HTML report
	if err := htmlGen.SaveReportToFile(run, htmlPath); err != nil {
		return err
	}

	return nil
}

func ReportFromFilePath(filePath string) (Run, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return Run{}, err
	}
	var run Run
	if err := json.Unmarshal(data, &run); err != nil {
		return Run{}, err
	}
	return run, nil
}
