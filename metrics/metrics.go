// Package metrics collects instrumentation for comparison runs.
package metrics

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/wikiparity/wikiparity/pkg/core"
)

// MetricsFile is the file name run reports are saved under in the output folder.
const MetricsFile = "metrics.json"

// -----------------------------
// Domain Types & Metadata
// -----------------------------

// Operation identifies one Action API operation.
type Operation string

const (
	OpSearch Operation = "search"
	OpClaims Operation = "claims"
	OpLabels Operation = "labels"
)

// RunMetadata captures high-level context for a comparison run.
type RunMetadata struct {
	SourceID    string        `json:"source_id"`
	TargetID    string        `json:"target_id"`
	SourceLabel string        `json:"source_label"`
	TargetLabel string        `json:"target_label"`
	Endpoint    string        `json:"endpoint"`
	Language    string        `json:"language"`
	Version     string        `json:"version"`
	StartTime   time.Time     `json:"start_time"`
	EndTime     time.Time     `json:"end_time"`
	Duration    time.Duration `json:"duration"`
}

// CallMetrics holds counters for one Action API operation.
type CallMetrics struct {
	Calls    int64         `json:"calls"`
	Failures int64         `json:"failures"`
	Duration time.Duration `json:"duration"`
}

// APIMetrics aggregates the per-operation API counters.
type APIMetrics struct {
	Search CallMetrics `json:"search"`
	Claims CallMetrics `json:"claims"`
	Labels CallMetrics `json:"labels"`

	// LabelsRequested and LabelsResolved count the ids sent to and the
	// labels returned by the label lookups.
	LabelsRequested int64 `json:"labels_requested"`
	LabelsResolved  int64 `json:"labels_resolved"`
}

// TableMetrics holds the row counts of the comparison tables.
type TableMetrics struct {
	SourceRows    int64         `json:"source_rows"`
	TargetRows    int64         `json:"target_rows"`
	MergedRows    int64         `json:"merged_rows"`
	CommonRows    int64         `json:"common_rows"`
	DifferentRows int64         `json:"different_rows"`
	CompareTime   time.Duration `json:"compare_time"`
}

// OutputMetrics lists what the run wrote to disk.
type OutputMetrics struct {
	DataFiles   []string `json:"data_files"`
	ChartFiles  []string `json:"chart_files"`
	ReportFiles []string `json:"report_files"`
}

// RunReport aggregates the metrics of one comparison run.
type RunReport struct {
	Metadata RunMetadata   `json:"metadata"`
	API      APIMetrics    `json:"api"`
	Tables   TableMetrics  `json:"tables"`
	Outputs  OutputMetrics `json:"outputs"`
}

// -----------------------------
// Error Handling
// -----------------------------

// ValidationError describes an inconsistency in a collected report.
type ValidationError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("Validation Error [%s]: %s", e.Code, e.Message)
}

// Validate checks a finished report for internal consistency.
func (r *RunReport) Validate() error {
	if r.Metadata.EndTime.Before(r.Metadata.StartTime) {
		return &ValidationError{
			Code:    "clock",
			Message: "run ends before it starts",
			Details: map[string]interface{}{
				"start_time": r.Metadata.StartTime,
				"end_time":   r.Metadata.EndTime,
			},
		}
	}

	counters := []struct {
		name  string
		value int64
	}{
		{"search_calls", r.API.Search.Calls},
		{"search_failures", r.API.Search.Failures},
		{"claims_calls", r.API.Claims.Calls},
		{"claims_failures", r.API.Claims.Failures},
		{"labels_calls", r.API.Labels.Calls},
		{"labels_failures", r.API.Labels.Failures},
		{"labels_requested", r.API.LabelsRequested},
		{"labels_resolved", r.API.LabelsResolved},
		{"source_rows", r.Tables.SourceRows},
		{"target_rows", r.Tables.TargetRows},
		{"merged_rows", r.Tables.MergedRows},
		{"common_rows", r.Tables.CommonRows},
		{"different_rows", r.Tables.DifferentRows},
	}
	for _, counter := range counters {
		if counter.value < 0 {
			return &ValidationError{
				Code:    "negative_count",
				Message: fmt.Sprintf("%s is negative", counter.name),
				Details: map[string]interface{}{"value": counter.value},
			}
		}
	}

	calls := []struct {
		op   Operation
		call CallMetrics
	}{
		{OpSearch, r.API.Search},
		{OpClaims, r.API.Claims},
		{OpLabels, r.API.Labels},
	}
	for _, c := range calls {
		if c.call.Failures > c.call.Calls {
			return &ValidationError{
				Code:    "failures",
				Message: fmt.Sprintf("%s records more failures than calls", c.op),
				Details: map[string]interface{}{
					"calls":    c.call.Calls,
					"failures": c.call.Failures,
				},
			}
		}
	}

	if r.API.LabelsResolved > r.API.LabelsRequested {
		return &ValidationError{
			Code:    "labels",
			Message: "more labels resolved than requested",
			Details: map[string]interface{}{
				"requested": r.API.LabelsRequested,
				"resolved":  r.API.LabelsResolved,
			},
		}
	}
	return nil
}

// -----------------------------
// Collection
// -----------------------------

// Collector accumulates metrics during a run. All methods are safe for
// concurrent use.
type Collector struct {
	mu     sync.Mutex
	report RunReport
}

// NewCollector creates a collector with the run clock started.
func NewCollector() *Collector {
	c := &Collector{}
	c.report.Metadata.StartTime = time.Now()
	return c
}

// SetMetadata records the identifying fields of the run.
func (c *Collector) SetMetadata(meta RunMetadata) {
	c.mu.Lock()
	defer c.mu.Unlock()
	start := c.report.Metadata.StartTime
	c.report.Metadata = meta
	c.report.Metadata.StartTime = start
}

// RecordCall accumulates one API call under its operation.
func (c *Collector) RecordCall(op Operation, d time.Duration, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var call *CallMetrics
	switch op {
	case OpSearch:
		call = &c.report.API.Search
	case OpClaims:
		call = &c.report.API.Claims
	case OpLabels:
		call = &c.report.API.Labels
	default:
		return
	}

	call.Calls++
	call.Duration += d
	if err != nil {
		call.Failures++
	}
}

// RecordLabels accumulates the size of one label lookup.
func (c *Collector) RecordLabels(requested, resolved int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.report.API.LabelsRequested += int64(requested)
	c.report.API.LabelsResolved += int64(resolved)
}

// RecordComparison copies the table counts out of a comparison summary.
func (c *Collector) RecordComparison(summary core.ComparisonSummary, commonRows, differentRows int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.report.Tables = TableMetrics{
		SourceRows:    summary.SourceRows,
		TargetRows:    summary.TargetRows,
		MergedRows:    summary.MergedRows,
		CommonRows:    commonRows,
		DifferentRows: differentRows,
		CompareTime:   summary.CompareTime,
	}
}

// RecordDataFiles appends paths to the run's data file list.
func (c *Collector) RecordDataFiles(paths ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.report.Outputs.DataFiles = append(c.report.Outputs.DataFiles, paths...)
}

// RecordChartFiles appends paths to the run's chart file list.
func (c *Collector) RecordChartFiles(paths ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.report.Outputs.ChartFiles = append(c.report.Outputs.ChartFiles, paths...)
}

// RecordReportFiles appends paths to the run's report file list.
func (c *Collector) RecordReportFiles(paths ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.report.Outputs.ReportFiles = append(c.report.Outputs.ReportFiles, paths...)
}

// Finish stops the run clock and returns a snapshot of the report.
func (c *Collector) Finish() RunReport {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.report.Metadata.EndTime = time.Now()
	c.report.Metadata.Duration = c.report.Metadata.EndTime.Sub(c.report.Metadata.StartTime)

	snapshot := c.report
	snapshot.Outputs.DataFiles = append([]string(nil), c.report.Outputs.DataFiles...)
	snapshot.Outputs.ChartFiles = append([]string(nil), c.report.Outputs.ChartFiles...)
	snapshot.Outputs.ReportFiles = append([]string(nil), c.report.Outputs.ReportFiles...)
	return snapshot
}

// -----------------------------
// Provider Instrumentation
// -----------------------------

// InstrumentedProvider wraps an EntityProvider and records call metrics.
type InstrumentedProvider struct {
	inner     core.EntityProvider
	collector *Collector
}

// NewInstrumentedProvider wraps a provider with the given collector.
func NewInstrumentedProvider(inner core.EntityProvider, collector *Collector) *InstrumentedProvider {
	return &InstrumentedProvider{inner: inner, collector: collector}
}

// SearchEntities implements core.EntityProvider.
func (p *InstrumentedProvider) SearchEntities(ctx context.Context, term string) ([]core.Suggestion, error) {
	start := time.Now()
	suggestions, err := p.inner.SearchEntities(ctx, term)
	p.collector.RecordCall(OpSearch, time.Since(start), err)
	return suggestions, err
}

// GetEntityClaims implements core.EntityProvider.
func (p *InstrumentedProvider) GetEntityClaims(ctx context.Context, id string) (*core.EntityClaims, error) {
	start := time.Now()
	claims, err := p.inner.GetEntityClaims(ctx, id)
	p.collector.RecordCall(OpClaims, time.Since(start), err)
	return claims, err
}

// GetLabels implements core.EntityProvider.
func (p *InstrumentedProvider) GetLabels(ctx context.Context, ids []string) (map[string]string, error) {
	start := time.Now()
	labels, err := p.inner.GetLabels(ctx, ids)
	p.collector.RecordCall(OpLabels, time.Since(start), err)
	if err == nil {
		p.collector.RecordLabels(len(ids), len(labels))
	}
	return labels, err
}

// -----------------------------
// Metrics Storage
// -----------------------------

// MetricsStore abstracts run report storage.
type MetricsStore interface {
	Save(report RunReport) error
	SaveWithContext(ctx context.Context, report RunReport) error
}

// JSONMetricsStore stores reports as indented JSON.
type JSONMetricsStore struct {
	FilePath string
}

func (j *JSONMetricsStore) Save(report RunReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	if j.FilePath != "" {
		return os.WriteFile(j.FilePath, data, 0644)
	}
	fmt.Println(string(data))
	return nil
}

func (j *JSONMetricsStore) SaveWithContext(ctx context.Context, report RunReport) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return j.Save(report)
	}
}
