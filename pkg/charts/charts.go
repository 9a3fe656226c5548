// Package charts renders comparison diagrams as self-contained HTML files.
package charts

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/wikiparity/wikiparity/pkg/core"
)

// File names of the rendered diagrams.
const (
	SankeyFile           = "sankey.html"
	SunburstSourceFile   = "sunburst_item1.html"
	SunburstTargetFile   = "sunburst_item2.html"
	SunburstCombinedFile = "sunburst_combined.html"
	GraphFile            = "graph.html"
)

// Node roles, used for category labels and collision suffixes.
const (
	roleItem     = "item"
	roleProperty = "property"
	roleValue    = "value"
)

// palette holds the item colors, assigned in first-appearance order.
var palette = []string{
	"#5470c6", "#91cc75", "#fac858", "#ee6666", "#73c0de",
	"#3ba272", "#fc8452", "#9a60b4", "#ea7ccc",
}

// Options configure the appearance of rendered diagrams.
type Options struct {
	Theme  string
	Width  string
	Height string
}

// Renderer writes comparison diagrams into a directory.
type Renderer struct {
	dir     string
	options Options
}

// NewRenderer creates a renderer writing into dir.
func NewRenderer(dir string, options Options) *Renderer {
	return &Renderer{dir: dir, options: options}
}

// renderable is the part of a go-echarts chart the renderer needs.
type renderable interface {
	Render(w io.Writer) error
}

// RenderAll writes every diagram for one comparison and returns the paths.
// The combined table drives the sankey and graph diagrams; each side and the
// combined table get a sunburst.
func (r *Renderer) RenderAll(source, target, combined []core.Row, sourceLabel, targetLabel string) ([]string, error) {
	if err := os.MkdirAll(r.dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create charts directory %s: %w", r.dir, err)
	}

	var written []string
	for _, chart := range []struct {
		name  string
		chart renderable
	}{
		{SankeyFile, r.Sankey(combined)},
		{SunburstSourceFile, r.Sunburst(source, "Sunburst Diagram for "+sourceLabel)},
		{SunburstTargetFile, r.Sunburst(target, "Sunburst Diagram for "+targetLabel)},
		{SunburstCombinedFile, r.Sunburst(combined, "Sunburst Diagram for Combined Data")},
		{GraphFile, r.Graph(combined)},
	} {
		path := filepath.Join(r.dir, chart.name)
		if err := renderTo(path, chart.chart); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

func renderTo(path string, chart renderable) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart file %s: %w", path, err)
	}
	if err := chart.Render(file); err != nil {
		file.Close()
		return fmt.Errorf("failed to render chart %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close chart file %s: %w", path, err)
	}
	return nil
}

// initOptions applies the configured theme and canvas size.
func (r *Renderer) initOptions(pageTitle string) opts.Initialization {
	return opts.Initialization{
		PageTitle: pageTitle,
		Theme:     r.options.Theme,
		Width:     r.options.Width,
		Height:    r.options.Height,
	}
}

// collidingNames reports the names that appear in more than one node role.
// Such names would otherwise merge into a single chart node.
func collidingNames(rows []core.Row) map[string]bool {
	roles := make(map[string]map[string]struct{})
	note := func(name, role string) {
		if roles[name] == nil {
			roles[name] = make(map[string]struct{})
		}
		roles[name][role] = struct{}{}
	}
	for _, row := range rows {
		note(row.Item, roleItem)
		note(row.Property, roleProperty)
		note(row.Value, roleValue)
	}

	collisions := make(map[string]bool)
	for name, r := range roles {
		if len(r) > 1 {
			collisions[name] = true
		}
	}
	return collisions
}

// displayName suffixes colliding names with their role.
func displayName(collisions map[string]bool, name, role string) string {
	if collisions[name] {
		return name + " (" + role + ")"
	}
	return name
}

// distinctColumn returns the distinct values of one column in first-appearance order.
func distinctColumn(rows []core.Row, pick func(core.Row) string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, row := range rows {
		value := pick(row)
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}
