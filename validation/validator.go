// Package validation checks the internal consistency of comparison results.
package validation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	icore "github.com/wikiparity/wikiparity/internal/core"
	"github.com/wikiparity/wikiparity/pkg/core"
)

// CheckResult records the outcome of a single invariant check.
type CheckResult struct {
	Name    string        `json:"name"`
	Passed  bool          `json:"passed"`
	Message string        `json:"message,omitempty"`
	Elapsed time.Duration `json:"elapsed"`
}

// Report aggregates the outcomes of all checks on one comparison.
type Report struct {
	SourceID  string        `json:"source_id"`
	TargetID  string        `json:"target_id"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Checks    []CheckResult `json:"checks"`
	Passed    bool          `json:"passed"`
}

// Validator runs invariant checks over a comparison result.
type Validator struct {
	// Logger for structured logging.
	Logger *zap.Logger
}

// NewValidator constructs a new Validator instance.
func NewValidator(logger *zap.Logger) *Validator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Validator{Logger: logger}
}

// Validate runs all checks in order and returns a detailed Report. The
// returned error aggregates every failed check.
func (v *Validator) Validate(ctx context.Context, result *core.ComparisonResult) (Report, error) {
	start := time.Now()
	report := Report{StartTime: start, Passed: true}
	if result != nil {
		report.SourceID = result.Summary.SourceID
		report.TargetID = result.Summary.TargetID
	}
	v.Logger.Info("Starting result validation",
		zap.String("source", report.SourceID),
		zap.String("target", report.TargetID))

	if result == nil || result.Merged == nil || result.Combined == nil ||
		result.Common == nil || result.Different == nil {
		err := fmt.Errorf("comparison result is incomplete")
		report.Checks = append(report.Checks, CheckResult{Name: "tables_present", Message: err.Error()})
		report.Passed = false
		report.EndTime = time.Now()
		report.Duration = report.EndTime.Sub(start)
		v.Logger.Error("Result validation aborted", zap.Error(err))
		return report, err
	}

	checks := []struct {
		name string
		fn   func(*core.ComparisonResult) error
	}{
		{"merged_split", checkMergedSplit},
		{"combined_rows", checkCombinedRows},
		{"common_values", checkCommonValues},
		{"different_values", checkDifferentValues},
		{"filled_cells", checkFilledCells},
		{"summary_counts", checkSummaryCounts},
	}

	var failures []string
	for _, check := range checks {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		checkStart := time.Now()
		err := check.fn(result)
		res := CheckResult{
			Name:    check.name,
			Passed:  err == nil,
			Elapsed: time.Since(checkStart),
		}
		if err != nil {
			res.Message = err.Error()
			failures = append(failures, err.Error())
			report.Passed = false
			v.Logger.Warn("Check failed", zap.String("check", check.name), zap.Error(err))
		} else {
			v.Logger.Info("Check passed", zap.String("check", check.name), zap.Duration("elapsed", res.Elapsed))
		}
		report.Checks = append(report.Checks, res)
	}

	report.EndTime = time.Now()
	report.Duration = report.EndTime.Sub(start)
	v.Logger.Info("Result validation complete",
		zap.Duration("duration", report.Duration),
		zap.Bool("passed", report.Passed))

	if len(failures) > 0 {
		return report, fmt.Errorf("comparison result failed %d of %d checks: %s",
			len(failures), len(checks), strings.Join(failures, "; "))
	}
	return report, nil
}

// checkMergedSplit verifies that the common and different tables partition the
// merged rows.
func checkMergedSplit(result *core.ComparisonResult) error {
	common := result.Common.NumRows()
	different := result.Different.NumRows()
	merged := result.Merged.NumRows()
	if common+different != merged {
		return fmt.Errorf("common rows (%d) plus different rows (%d) do not equal merged rows (%d)",
			common, different, merged)
	}
	return nil
}

// checkCombinedRows verifies the combined table concatenates both sides whole.
func checkCombinedRows(result *core.ComparisonResult) error {
	want := result.Summary.SourceRows + result.Summary.TargetRows
	if got := result.Combined.NumRows(); got != want {
		return fmt.Errorf("combined table holds %d rows, expected %d source plus %d target",
			got, result.Summary.SourceRows, result.Summary.TargetRows)
	}
	return nil
}

// checkCommonValues verifies every common row agrees between the entities.
func checkCommonValues(result *core.ComparisonResult) error {
	rows := icore.NewReader[core.MergedRow](result.Common)
	for i := 0; i < int(rows.NumRows()); i++ {
		row, err := rows.Value(i)
		if err != nil {
			return fmt.Errorf("failed to read common row %d: %w", i, err)
		}
		if row.SourceValue != row.TargetValue {
			return fmt.Errorf("common row %d disagrees on %s: %q vs %q",
				i, row.Property, row.SourceValue, row.TargetValue)
		}
	}
	return nil
}

// checkDifferentValues verifies every different row actually disagrees.
func checkDifferentValues(result *core.ComparisonResult) error {
	rows := icore.NewReader[core.MergedRow](result.Different)
	for i := 0; i < int(rows.NumRows()); i++ {
		row, err := rows.Value(i)
		if err != nil {
			return fmt.Errorf("failed to read different row %d: %w", i, err)
		}
		if row.SourceValue == row.TargetValue {
			return fmt.Errorf("different row %d agrees on %s: %q", i, row.Property, row.SourceValue)
		}
	}
	return nil
}

// checkFilledCells verifies ids and labels are present in the summary and in
// every table row.
func checkFilledCells(result *core.ComparisonResult) error {
	summary := result.Summary
	ids := []struct {
		name  string
		value string
	}{
		{"source id", summary.SourceID},
		{"target id", summary.TargetID},
		{"source label", summary.SourceLabel},
		{"target label", summary.TargetLabel},
	}
	for _, id := range ids {
		if id.value == "" {
			return fmt.Errorf("summary is missing the %s", id.name)
		}
	}

	combined := icore.NewReader[core.Row](result.Combined)
	for i := 0; i < int(combined.NumRows()); i++ {
		row, err := combined.Value(i)
		if err != nil {
			return fmt.Errorf("failed to read combined row %d: %w", i, err)
		}
		if row.Item == "" || row.Property == "" {
			return fmt.Errorf("combined row %d is missing its item or property label", i)
		}
	}

	merged := icore.NewReader[core.MergedRow](result.Merged)
	for i := 0; i < int(merged.NumRows()); i++ {
		row, err := merged.Value(i)
		if err != nil {
			return fmt.Errorf("failed to read merged row %d: %w", i, err)
		}
		if row.SourceItem == "" || row.TargetItem == "" || row.Property == "" {
			return fmt.Errorf("merged row %d is missing an item or property label", i)
		}
	}
	return nil
}

// checkSummaryCounts verifies the summary agrees with the tables it describes.
func checkSummaryCounts(result *core.ComparisonResult) error {
	summary := result.Summary
	if got := result.Merged.NumRows(); summary.MergedRows != got {
		return fmt.Errorf("summary reports %d merged rows, table holds %d", summary.MergedRows, got)
	}
	if summary.SharedProperties > summary.SourceProperties || summary.SharedProperties > summary.TargetProperties {
		return fmt.Errorf("shared properties (%d) exceed a side's property count (%d source, %d target)",
			summary.SharedProperties, summary.SourceProperties, summary.TargetProperties)
	}
	if summary.CommonProperties > summary.SharedProperties {
		return fmt.Errorf("common properties (%d) exceed shared properties (%d)",
			summary.CommonProperties, summary.SharedProperties)
	}
	if summary.DifferentProperties > summary.SharedProperties {
		return fmt.Errorf("different properties (%d) exceed shared properties (%d)",
			summary.DifferentProperties, summary.SharedProperties)
	}
	return nil
}
