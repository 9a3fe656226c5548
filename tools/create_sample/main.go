// Command create_sample writes a full offline comparison run from canned
// Wikidata claims. The resulting folder can be browsed with the inspect,
// schema and serve commands without touching the network.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/wikiparity/wikiparity/metrics"
	"github.com/wikiparity/wikiparity/pkg/charts"
	"github.com/wikiparity/wikiparity/pkg/core"
	"github.com/wikiparity/wikiparity/pkg/dataset"
	"github.com/wikiparity/wikiparity/pkg/diff"
	"github.com/wikiparity/wikiparity/pkg/export"
	"github.com/wikiparity/wikiparity/report"
	"github.com/wikiparity/wikiparity/validation"
	"github.com/wikiparity/wikiparity/version"
)

func main() {
	outDir := flag.String("out", "sample_data", "Output folder for the sample run")
	withCharts := flag.Bool("charts", true, "Render the HTML diagrams")
	flag.Parse()

	if err := run(*outDir, *withCharts); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Sample comparison run written to %s\n", *outDir)
}

func run(dir string, withCharts bool) error {
	ctx := context.Background()
	started := time.Now()

	sourceClaims, targetClaims, labels := sampleData()
	sourceLabel := labels[sourceClaims.ID]
	targetLabel := labels[targetClaims.ID]

	collector := metrics.NewCollector()
	collector.SetMetadata(metrics.RunMetadata{
		SourceID:    sourceClaims.ID,
		TargetID:    targetClaims.ID,
		SourceLabel: sourceLabel,
		TargetLabel: targetLabel,
		Endpoint:    "offline",
		Language:    "en",
		Version:     version.GetVersion(),
		StartTime:   started,
	})

	builder := dataset.NewBuilder()
	source := builder.EntityRecord(sourceClaims, labels)
	defer source.Release()
	target := builder.EntityRecord(targetClaims, labels)
	defer target.Release()

	differ, err := diff.NewEntityDiffer()
	if err != nil {
		return err
	}
	defer differ.Close()

	result, err := differ.Compare(ctx, source, target, core.CompareOptions{ValidateSchema: true})
	if err != nil {
		return err
	}
	defer result.Release()

	result.Summary.SourceID = sourceClaims.ID
	result.Summary.TargetID = targetClaims.ID
	result.Summary.SourceLabel = sourceLabel
	result.Summary.TargetLabel = targetLabel
	collector.RecordComparison(result.Summary, result.Common.NumRows(), result.Different.NumRows())

	valReport, err := validation.NewValidator(nil).Validate(ctx, result)
	if err != nil {
		return err
	}

	dumper := export.NewDumper(dir, []string{"json", "csv", "arrow", "parquet"})
	paths, err := dumper.Dump(ctx, &export.Bundle{
		SourceClaims: sourceClaims,
		TargetClaims: targetClaims,
		Source:       source,
		Target:       target,
		Result:       result,
	})
	if err != nil {
		return err
	}
	for _, path := range paths {
		if rel, relErr := filepath.Rel(dir, path); relErr == nil {
			collector.RecordDataFiles(filepath.ToSlash(rel))
		}
	}

	var links []report.ChartLink
	if withCharts {
		sourceRows, err := dataset.Rows(source)
		if err != nil {
			return err
		}
		targetRows, err := dataset.Rows(target)
		if err != nil {
			return err
		}
		combinedRows, err := dataset.Rows(result.Combined)
		if err != nil {
			return err
		}

		renderer := charts.NewRenderer(filepath.Join(dir, "charts"), charts.Options{
			Theme:  "white",
			Width:  "1200px",
			Height: "800px",
		})
		chartPaths, err := renderer.RenderAll(sourceRows, targetRows, combinedRows, sourceLabel, targetLabel)
		if err != nil {
			return err
		}
		for _, path := range chartPaths {
			rel, relErr := filepath.Rel(dir, path)
			if relErr != nil {
				continue
			}
			file := filepath.ToSlash(rel)
			collector.RecordChartFiles(file)
			links = append(links, report.ChartLink{Title: filepath.Base(file), File: file})
		}
	}

	collector.RecordReportFiles(report.JSONReportFile, report.HTMLReportFile, metrics.MetricsFile)
	runReport := collector.Finish()

	store := &metrics.JSONMetricsStore{FilePath: filepath.Join(dir, metrics.MetricsFile)}
	if err := store.Save(runReport); err != nil {
		return err
	}

	return report.SaveReports(report.Run{
		Version:     version.GetVersion(),
		GeneratedAt: time.Now(),
		Summary:     result.Summary,
		Validation:  valReport,
		Metrics:     runReport,
		Charts:      links,
	}, filepath.Join(dir, report.JSONReportFile), filepath.Join(dir, report.HTMLReportFile))
}

// sampleData returns canned claims for Douglas Adams (Q42) and Terry
// Pratchett (Q46248) plus the labels they reference.
func sampleData() (*core.EntityClaims, *core.EntityClaims, map[string]string) {
	source := &core.EntityClaims{
		ID: "Q42",
		Groups: core.ClaimGroups{
			{Property: "P31", ValueIDs: []string{"Q5"}},
			{Property: "P106", ValueIDs: []string{"Q36180", "Q214917", "Q28389"}},
			{Property: "P27", ValueIDs: []string{"Q145"}},
			{Property: "P69", ValueIDs: []string{"Q691283"}},
			{Property: "P800", ValueIDs: []string{"Q25169"}},
		},
	}
	target := &core.EntityClaims{
		ID: "Q46248",
		Groups: core.ClaimGroups{
			{Property: "P31", ValueIDs: []string{"Q5"}},
			{Property: "P106", ValueIDs: []string{"Q36180", "Q6625963"}},
			{Property: "P27", ValueIDs: []string{"Q145"}},
			{Property: "P69", ValueIDs: []string{"Q1687642"}},
			{Property: "P800", ValueIDs: []string{"Q694134"}},
		},
	}
	labels := map[string]string{
		"Q42":      "Douglas Adams",
		"Q46248":   "Terry Pratchett",
		"P31":      "instance of",
		"P106":     "occupation",
		"P27":      "country of citizenship",
		"P69":      "educated at",
		"P800":     "notable work",
		"Q5":       "human",
		"Q36180":   "writer",
		"Q214917":  "playwright",
		"Q28389":   "screenwriter",
		"Q6625963": "novelist",
		"Q145":     "United Kingdom",
		"Q691283":  "St John's College",
		"Q1687642": "Wycombe Technical High School",
		"Q25169":   "The Hitchhiker's Guide to the Galaxy",
		"Q694134":  "Discworld",
	}
	return source, target, labels
}
