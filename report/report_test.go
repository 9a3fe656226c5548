package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/wikiparity/wikiparity/metrics"
	"github.com/wikiparity/wikiparity/pkg/core"
	"github.com/wikiparity/wikiparity/validation"
)

func TestJSONReportGenerator_GenerateRunReport(t *testing.T) {
	// Create test run data
	run := createTestRun()
	generator := &JSONReportGenerator{}

	// Generate report
	data, err := generator.GenerateRunReport(run)
	if err != nil {
		t.Fatalf("Failed to generate report: %v", err)
	}

	// Verify JSON is valid
	var decoded Run
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Generated invalid JSON: %v", err)
	}

	// Verify content
	if decoded.Summary.SourceID != "Q42" {
		t.Errorf("Expected source id 'Q42', got %s", decoded.Summary.SourceID)
	}
	if decoded.Version != run.Version {
		t.Errorf("Expected version %s, got %s", run.Version, decoded.Version)
	}
}

func TestJSONReportGenerator_SaveReportToFile(t *testing.T) {
	run := createTestRun()
	generator := &JSONReportGenerator{}

	// Create temporary file
	tmpDir := t.TempDir()
	filePath := filepath.Join(tmpDir, "test_report.json")

	// Save report
	if err := generator.SaveReportToFile(run, filePath); err != nil {
		t.Fatalf("Failed to save report: %v", err)
	}

	// Verify file exists and contains valid JSON
	data, err := os.ReadFile(filePath)
	if err != nil {
		t.Fatalf("Failed to read saved file: %v", err)
	}

	var decoded Run
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Saved file contains invalid JSON: %v", err)
	}
}

func TestHTMLReportGenerator_GenerateRunReport(t *testing.T) {
	run := createTestRun()
	generator := &HTMLReportGenerator{}

	// Generate HTML report
	data, err := generator.GenerateRunReport(run)
	if err != nil {
		t.Fatalf("Failed to generate HTML report: %v", err)
	}

	// Basic validation of HTML content
	html := string(data)
	expectedElements := []string{
		"<!DOCTYPE html>",
		"<title>Wikidata Comparison Report</title>",
		"Douglas Adams",   // Source entity label
		"Terry Pratchett", // Target entity label
		"PASS",            // Status indicator
		"charts/sankey.html",
	}

	for _, expected := range expectedElements {
		if !contains(html, expected) {
			t.Errorf("HTML report missing expected content: %s", expected)
		}
	}
}

func TestSaveReports(t *testing.T) {
	run := createTestRun()
	tmpDir := t.TempDir()
	jsonPath := filepath.Join(tmpDir, JSONReportFile)
	htmlPath := filepath.Join(tmpDir, HTMLReportFile)

	// Save both reports
	err := SaveReports(run, jsonPath, htmlPath)
	if err != nil {
		t.Fatalf("Failed to save reports: %v", err)
	}

	// Verify both files exist
	if _, err := os.Stat(jsonPath); os.IsNotExist(err) {
		t.Error("JSON report file was not created")
	}
	if _, err := os.Stat(htmlPath); os.IsNotExist(err) {
		t.Error("HTML report file was not created")
	}
}

func TestReportFromFilePath(t *testing.T) {
	run := createTestRun()
	tmpDir := t.TempDir()
	filePath := filepath.Join(tmpDir, "test_report.json")

	// Save report first
	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal report: %v", err)
	}
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	// Load report
	loaded, err := ReportFromFilePath(filePath)
	if err != nil {
		t.Fatalf("Failed to load report: %v", err)
	}

	// Verify content
	if loaded.Summary.SourceID != run.Summary.SourceID {
		t.Errorf("Loaded report data mismatch: expected %s, got %s",
			run.Summary.SourceID, loaded.Summary.SourceID)
	}
	if len(loaded.Charts) != len(run.Charts) {
		t.Errorf("Expected %d chart links, got %d", len(run.Charts), len(loaded.Charts))
	}
}

// Helper function to create test run data
func createTestRun() Run {
	now := time.Now()
	return Run{
		Version:     "0.1.0",
		GeneratedAt: now,
		Summary: core.ComparisonSummary{
			SourceID:            "Q42",
			TargetID:            "Q46248",
			SourceLabel:         "Douglas Adams",
			TargetLabel:         "Terry Pratchett",
			SourceRows:          3,
			TargetRows:          2,
			MergedRows:          2,
			SourceProperties:    3,
			TargetProperties:    2,
			SharedProperties:    2,
			CommonProperties:    1,
			CommonValues:        1,
			DifferentProperties: 1,
			DifferentValues:     2,
			CompareTime:         5 * time.Millisecond,
		},
		Validation: validation.Report{
			SourceID:  "Q42",
			TargetID:  "Q46248",
			StartTime: now,
			EndTime:   now.Add(time.Second),
			Duration:  time.Second,
			Checks: []validation.CheckResult{
				{Name: "merged_split", Passed: true},
				{Name: "summary_counts", Passed: true},
			},
			Passed: true,
		},
		Metrics: metrics.RunReport{
			Metadata: metrics.RunMetadata{
				SourceID:    "Q42",
				TargetID:    "Q46248",
				SourceLabel: "Douglas Adams",
				TargetLabel: "Terry Pratchett",
				Version:     "0.1.0",
				StartTime:   now,
				EndTime:     now.Add(2 * time.Second),
				Duration:    2 * time.Second,
			},
			Tables: metrics.TableMetrics{
				SourceRows:    3,
				TargetRows:    2,
				MergedRows:    2,
				CommonRows:    1,
				DifferentRows: 1,
			},
			Outputs: metrics.OutputMetrics{
				DataFiles:   []string{"json/data1.json", "json/data2.json", "csv/combined.csv"},
				ChartFiles:  []string{"charts/sankey.html"},
				ReportFiles: []string{JSONReportFile, HTMLReportFile},
			},
		},
		Charts: []ChartLink{
			{Title: "Property Flow Sankey", File: "charts/sankey.html"},
		},
	}
}

// Helper function to check if string contains substring
func contains(s, substr string) bool {
	return strings.Contains(s, substr)
}
