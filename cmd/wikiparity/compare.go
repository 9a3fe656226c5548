package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wikiparity/wikiparity/config"
	"github.com/wikiparity/wikiparity/integrations"
	"github.com/wikiparity/wikiparity/internal/console"
	"github.com/wikiparity/wikiparity/internal/ui"
	"github.com/wikiparity/wikiparity/logger"
	"github.com/wikiparity/wikiparity/metrics"
	"github.com/wikiparity/wikiparity/pkg/charts"
	"github.com/wikiparity/wikiparity/pkg/core"
	"github.com/wikiparity/wikiparity/pkg/dataset"
	"github.com/wikiparity/wikiparity/pkg/diff"
	"github.com/wikiparity/wikiparity/pkg/export"
	"github.com/wikiparity/wikiparity/pkg/wikidata"
	"github.com/wikiparity/wikiparity/report"
	"github.com/wikiparity/wikiparity/validation"
	"github.com/wikiparity/wikiparity/version"
)

// CompareOptions represents the flag overrides for the compare command.
type CompareOptions struct {
	OutputDir      string
	Formats        []string
	Language       string
	Database       string
	NoCharts       bool
	NonInteractive bool
	Serve          bool
}

// newCompareCommand creates the compare command.
func newCompareCommand() *cobra.Command {
	options := &CompareOptions{}

	cmd := &cobra.Command{
		Use:   "compare [entity] [entity]",
		Short: "Compare two Wikidata entities on their shared properties",
		Long: `Compare fetches both entities from the Wikidata Action API, joins their
statements on shared properties and reports which values agree and which
differ. Entities are given as Q-ids (Q42) or as search terms; search terms
open an interactive picker. Without arguments the command starts the
interactive menu.`,
		Example: `  wikiparity compare Q42 Q46248
  wikiparity compare "Douglas Adams" "Terry Pratchett" --format json,csv,parquet
  wikiparity compare`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			applyCompareOverrides(cmd, options)
			if err := cfg.Validate(); err != nil {
				return err
			}
			if len(args) == 1 {
				return fmt.Errorf("compare needs two entities, or none for the interactive menu")
			}
			if len(args) == 0 && cfg.UI.NonInteractive {
				return fmt.Errorf("compare needs two entities when running non-interactive")
			}

			ctx, cancel := signalContext()
			defer cancel()

			runner := newCompareRunner(cmd.OutOrStdout())
			if len(args) == 0 {
				return runner.menuLoop(ctx)
			}

			if err := runner.run(ctx, args[0], args[1]); err != nil {
				return err
			}
			if options.Serve {
				return runServer(ctx, cfg, cfg.Output.Dir)
			}
			return nil
		},
	}

	// Flags override the loaded configuration.
	cmd.Flags().StringVarP(&options.OutputDir, "output", "o", "", "Output folder for dump files, diagrams and reports")
	cmd.Flags().StringSliceVarP(&options.Formats, "format", "f", nil, "Dump formats (json, csv, arrow, parquet)")
	cmd.Flags().StringVarP(&options.Language, "language", "l", "", "Language code for labels and descriptions")
	cmd.Flags().StringVar(&options.Database, "database", "", "Database export target (.duckdb path or postgres:// URI)")
	cmd.Flags().BoolVar(&options.NoCharts, "no-charts", false, "Skip diagram rendering")
	cmd.Flags().BoolVar(&options.NonInteractive, "non-interactive", false, "Never prompt; take the best search match")
	cmd.Flags().BoolVar(&options.Serve, "serve", false, "Serve the output folder over HTTP when the run completes")

	return cmd
}

// applyCompareOverrides merges changed flags into the loaded configuration.
func applyCompareOverrides(cmd *cobra.Command, options *CompareOptions) {
	if cmd.Flags().Changed("output") {
		cfg.Output.Dir = options.OutputDir
	}
	if cmd.Flags().Changed("format") {
		cfg.Output.Formats = options.Formats
	}
	if cmd.Flags().Changed("language") {
		cfg.API.Language = options.Language
	}
	if cmd.Flags().Changed("database") {
		cfg.Output.Database = options.Database
	}
	if options.NoCharts {
		cfg.Output.Charts = false
	}
	if options.NonInteractive {
		cfg.UI.NonInteractive = true
	}
}

// compareRunner holds the shared pieces of one comparison session.
type compareRunner struct {
	cfg    *config.Config
	log    *zap.Logger
	con    *console.Console
	client *wikidata.Client
}

func newCompareRunner(out io.Writer) *compareRunner {
	return &compareRunner{
		cfg:    cfg,
		log:    logger.GetLogger(),
		con:    console.New(out),
		client: wikidata.NewClient(cfg.API),
	}
}

// menuLoop drives the interactive session: intro, menu, run, repeat until
// the user quits.
func (r *compareRunner) menuLoop(ctx context.Context) error {
	r.con.Intro()

	for ctx.Err() == nil {
		choice, ok, err := ui.MainMenu()
		if err != nil {
			return err
		}
		if !ok || choice == ui.ChoiceQuit {
			return nil
		}

		var source, target string
		switch choice {
		case ui.ChoiceCompare:
			source, ok, err = ui.PromptText("First entity", "name or Q-id, e.g. Douglas Adams or Q42")
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			target, ok, err = ui.PromptText("Second entity", "name or Q-id, e.g. Terry Pratchett or Q46248")
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
		case ui.ChoiceShowcases:
			showcase, picked, err := ui.PickShowcase(r.cfg.UI.Showcases)
			if err != nil {
				return err
			}
			if !picked {
				continue
			}
			source, target = showcase.Source, showcase.Target
		}

		if err := r.run(ctx, source, target); err != nil {
			if ctx.Err() != nil {
				return err
			}
			// A failed run should not end the session.
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}
	return ctx.Err()
}

// run executes one comparison end to end: resolve, fetch, build, compare,
// validate, dump, render, report.
func (r *compareRunner) run(ctx context.Context, sourceTerm, targetTerm string) error {
	started := time.Now()
	collector := metrics.NewCollector()
	provider := metrics.NewInstrumentedProvider(r.client, collector)

	sourceID, err := r.resolve(ctx, provider, sourceTerm)
	if err != nil {
		return err
	}
	targetID, err := r.resolve(ctx, provider, targetTerm)
	if err != nil {
		return err
	}
	if sourceID == targetID {
		r.log.Warn("Comparing an entity against itself", zap.String("id", sourceID))
	}
	r.log.Info("Comparing entities",
		zap.String("source", sourceID),
		zap.String("target", targetID))

	stop := r.progress("Fetching entity data from Wikidata...")
	sourceClaims, targetClaims, labels, err := r.fetch(ctx, provider, sourceID, targetID)
	stop()
	if err != nil {
		return err
	}

	sourceLabel := labelOr(labels, sourceID)
	targetLabel := labelOr(labels, targetID)
	collector.SetMetadata(metrics.RunMetadata{
		SourceID:    sourceID,
		TargetID:    targetID,
		SourceLabel: sourceLabel,
		TargetLabel: targetLabel,
		Endpoint:    r.cfg.API.BaseURL,
		Language:    r.cfg.API.Language,
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
		return fmt.Errorf("failed to create differ: %w", err)
	}
	defer differ.Close()

	result, err := differ.Compare(ctx, source, target, core.CompareOptions{ValidateSchema: true})
	if err != nil {
		return fmt.Errorf("failed to compare %s and %s: %w", sourceID, targetID, err)
	}
	defer result.Release()

	result.Summary.SourceID = sourceID
	result.Summary.TargetID = targetID
	result.Summary.SourceLabel = sourceLabel
	result.Summary.TargetLabel = targetLabel
	collector.RecordComparison(result.Summary, result.Common.NumRows(), result.Different.NumRows())

	valReport, valErr := validation.NewValidator(r.log).Validate(ctx, result)
	if valErr != nil {
		if ctx.Err() != nil {
			return valErr
		}
		// The report records the failed checks; the run still completes.
		r.log.Warn("Result validation failed", zap.Error(valErr))
	}

	if err := os.MkdirAll(r.cfg.Output.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create output folder: %w", err)
	}

	dumper := export.NewDumper(r.cfg.Output.Dir, r.cfg.Output.Formats)
	paths, err := dumper.Dump(ctx, &export.Bundle{
		SourceClaims: sourceClaims,
		TargetClaims: targetClaims,
		Source:       source,
		Target:       target,
		Result:       result,
	})
	if err != nil {
		return fmt.Errorf("failed to write dump files: %w", err)
	}
	collector.RecordDataFiles(relPaths(r.cfg.Output.Dir, paths)...)

	commonRows, err := dataset.MergedRows(result.Common)
	if err != nil {
		return fmt.Errorf("failed to read common rows: %w", err)
	}
	differentRows, err := dataset.MergedRows(result.Different)
	if err != nil {
		return fmt.Errorf("failed to read different rows: %w", err)
	}

	r.con.Header(result.Summary)
	r.con.Statistics(result.Summary)
	r.con.CommonTable(commonRows)
	r.con.DifferentTable(differentRows)
	r.con.Saved(r.cfg.Output.Dir, r.cfg.Output.Formats)

	var links []report.ChartLink
	if r.cfg.Output.Charts {
		links, err = r.renderCharts(collector, source, target, result.Combined, sourceLabel, targetLabel)
		if err != nil {
			return err
		}
	}

	collector.RecordReportFiles(report.JSONReportFile, report.HTMLReportFile, metrics.MetricsFile)

	runReport := collector.Finish()
	if err := runReport.Validate(); err != nil {
		r.log.Warn("Run metrics failed consistency checks", zap.Error(err))
	}
	store := &metrics.JSONMetricsStore{FilePath: filepath.Join(r.cfg.Output.Dir, metrics.MetricsFile)}
	if err := store.SaveWithContext(ctx, runReport); err != nil {
		return fmt.Errorf("failed to save run metrics: %w", err)
	}

	run := report.Run{
		Version:     version.GetVersion(),
		GeneratedAt: time.Now(),
		Summary:     result.Summary,
		Validation:  valReport,
		Metrics:     runReport,
		Charts:      links,
	}
	if err := report.SaveReports(run,
		filepath.Join(r.cfg.Output.Dir, report.JSONReportFile),
		filepath.Join(r.cfg.Output.Dir, report.HTMLReportFile)); err != nil {
		return fmt.Errorf("failed to save run report: %w", err)
	}

	if r.cfg.Output.Database != "" {
		r.exportDatabase(ctx, result)
	}

	r.log.Info("Comparison run finished",
		zap.String("source", sourceID),
		zap.String("target", targetID),
		zap.Duration("duration", time.Since(started)))
	return nil
}

var entityIDPattern = regexp.MustCompile(`^[Qq][0-9]+$`)

// resolve turns a search term into an entity id. Q-ids pass through, other
// terms go through entity search and, when interactive, the picker.
func (r *compareRunner) resolve(ctx context.Context, provider core.EntityProvider, term string) (string, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return "", fmt.Errorf("empty entity name")
	}
	if entityIDPattern.MatchString(term) {
		return strings.ToUpper(term), nil
	}

	suggestions, err := provider.SearchEntities(ctx, term)
	if err != nil {
		return "", fmt.Errorf("failed to search for %q: %w", term, err)
	}
	if len(suggestions) == 0 {
		return "", fmt.Errorf("no Wikidata entity matches %q", term)
	}
	if r.cfg.UI.NonInteractive {
		return suggestions[0].ID, nil
	}

	chosen, ok, err := ui.PickSuggestion(fmt.Sprintf("Results for %q", term), suggestions)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("no entity selected for %q", term)
	}
	return chosen.ID, nil
}

// fetch loads both claim sets and resolves every label they reference.
func (r *compareRunner) fetch(ctx context.Context, provider core.EntityProvider, sourceID, targetID string) (*core.EntityClaims, *core.EntityClaims, map[string]string, error) {
	sourceClaims, err := provider.GetEntityClaims(ctx, sourceID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to fetch claims for %s: %w", sourceID, err)
	}
	targetClaims, err := provider.GetEntityClaims(ctx, targetID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to fetch claims for %s: %w", targetID, err)
	}

	ids := append(dataset.LabelIDs(sourceClaims), dataset.LabelIDs(targetClaims)...)
	labels, err := provider.GetLabels(ctx, ids)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to resolve labels: %w", err)
	}
	return sourceClaims, targetClaims, labels, nil
}

// renderCharts renders all diagrams and returns report links for them.
func (r *compareRunner) renderCharts(collector *metrics.Collector, source, target, combined arrow.Record, sourceLabel, targetLabel string) ([]report.ChartLink, error) {
	sourceRows, err := dataset.Rows(source)
	if err != nil {
		return nil, fmt.Errorf("failed to read source rows: %w", err)
	}
	targetRows, err := dataset.Rows(target)
	if err != nil {
		return nil, fmt.Errorf("failed to read target rows: %w", err)
	}
	combinedRows, err := dataset.Rows(combined)
	if err != nil {
		return nil, fmt.Errorf("failed to read combined rows: %w", err)
	}

	chartsDir := filepath.Join(r.cfg.Output.Dir, "charts")
	renderer := charts.NewRenderer(chartsDir, charts.Options{
		Theme:  r.cfg.Charts.Theme,
		Width:  r.cfg.Charts.Width,
		Height: r.cfg.Charts.Height,
	})
	paths, err := renderer.RenderAll(sourceRows, targetRows, combinedRows, sourceLabel, targetLabel)
	if err != nil {
		return nil, fmt.Errorf("failed to render diagrams: %w", err)
	}

	rel := relPaths(r.cfg.Output.Dir, paths)
	collector.RecordChartFiles(rel...)
	r.con.ChartsSaved(chartsDir)

	titles := map[string]string{
		charts.SankeyFile:           "Property Flow Sankey",
		charts.SunburstSourceFile:   sourceLabel + " Sunburst",
		charts.SunburstTargetFile:   targetLabel + " Sunburst",
		charts.SunburstCombinedFile: "Combined Sunburst",
		charts.GraphFile:            "Property Graph",
	}
	links := make([]report.ChartLink, 0, len(rel))
	for _, file := range rel {
		title := titles[filepath.Base(file)]
		if title == "" {
			title = filepath.Base(file)
		}
		links = append(links, report.ChartLink{Title: title, File: file})
	}
	return links, nil
}

// exportDatabase ships the comparison tables to the configured database
// target. Export failures are logged, not fatal; the file output already
// exists at this point.
func (r *compareRunner) exportDatabase(ctx context.Context, result *core.ComparisonResult) {
	db, err := integrations.OpenTarget(r.cfg.Output.Database)
	if err != nil {
		r.log.Warn("Skipping database export", zap.Error(err))
		return
	}
	defer db.Close()

	if err := integrations.NewExporter(db, r.log).Export(ctx, result); err != nil {
		r.log.Warn("Database export failed", zap.Error(err))
		return
	}
	r.log.Info("Comparison tables exported", zap.String("target", r.cfg.Output.Database))
}

// progress starts a spinner unless the run is non-interactive. The returned
// func stops it.
func (r *compareRunner) progress(message string) func() {
	if r.cfg.UI.NonInteractive {
		return func() {}
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " " + message
	s.Start()
	return s.Stop
}

// labelOr returns the label for id, or the id itself when unresolved.
func labelOr(labels map[string]string, id string) string {
	if label, ok := labels[id]; ok && label != "" {
		return label
	}
	return id
}

// relPaths rebases written file paths onto the output folder so the run
// report can link them relatively.
func relPaths(dir string, paths []string) []string {
	rebased := make([]string, 0, len(paths))
	for _, path := range paths {
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			rebased = append(rebased, path)
			continue
		}
		rebased = append(rebased, filepath.ToSlash(rel))
	}
	return rebased
}
