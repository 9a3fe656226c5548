package charts

import (
	echarts "github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/wikiparity/wikiparity/pkg/core"
)

// Graph builds the force-directed item/property/value graph for the combined
// table. Parallel statements collapse into one edge; node size grows with the
// number of distinct neighbors.
func (r *Renderer) Graph(rows []core.Row) *echarts.Graph {
	collisions := collidingNames(rows)

	var (
		order    []string
		category = make(map[string]int)
		degree   = make(map[string]int)
		links    []opts.GraphLink
		seen     = make(map[[2]string]struct{})
	)

	node := func(name, role string) string {
		display := displayName(collisions, name, role)
		if _, ok := category[display]; !ok {
			category[display] = roleCategory(role)
			order = append(order, display)
		}
		return display
	}

	connect := func(source, target string) {
		key := [2]string{source, target}
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		degree[source]++
		degree[target]++
		links = append(links, opts.GraphLink{Source: source, Target: target})
	}

	for _, row := range rows {
		item := node(row.Item, roleItem)
		property := node(row.Property, roleProperty)
		value := node(row.Value, roleValue)
		connect(item, property)
		connect(property, value)
	}

	nodes := make([]opts.GraphNode, 0, len(order))
	for _, name := range order {
		nodes = append(nodes, opts.GraphNode{
			Name:       name,
			Category:   category[name],
			SymbolSize: symbolSize(degree[name]),
		})
	}

	categories := []*opts.GraphCategory{
		{Name: "Items"},
		{Name: "Properties"},
		{Name: "Values"},
	}

	graph := echarts.NewGraph()
	graph.SetGlobalOptions(
		echarts.WithInitializationOpts(r.initOptions("Wikidata Property Graph")),
		echarts.WithTitleOpts(opts.Title{Title: "Wikidata Property Graph"}),
		echarts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	graph.AddSeries("graph", nodes, links,
		echarts.WithGraphChartOpts(opts.GraphChart{
			Layout:     "force",
			Force:      &opts.GraphForce{Repulsion: 120},
			Categories: categories,
		}),
		echarts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "right"}),
	)
	return graph
}

// roleCategory maps a node role to its series category index.
func roleCategory(role string) int {
	switch role {
	case roleItem:
		return 0
	case roleProperty:
		return 1
	default:
		return 2
	}
}

// symbolSize scales node size with degree, capped to keep hubs readable.
func symbolSize(degree int) float32 {
	size := 8 + 2*float32(degree)
	if size > 40 {
		size = 40
	}
	return size
}
