package charts

import (
	echarts "github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/wikiparity/wikiparity/pkg/core"
)

// Sankey builds the item to property to value flow diagram for the combined
// table. Each statement contributes two links of weight 1; item nodes get
// deterministic palette colors and links render in their source node's color
// at reduced opacity.
func (r *Renderer) Sankey(rows []core.Row) *echarts.Sankey {
	collisions := collidingNames(rows)

	items := distinctColumn(rows, func(row core.Row) string { return row.Item })
	properties := distinctColumn(rows, func(row core.Row) string { return row.Property })
	values := distinctColumn(rows, func(row core.Row) string { return row.Value })

	nodes := make([]opts.SankeyNode, 0, len(items)+len(properties)+len(values))
	for i, item := range items {
		nodes = append(nodes, opts.SankeyNode{
			Name:      displayName(collisions, item, roleItem),
			ItemStyle: &opts.ItemStyle{Color: palette[i%len(palette)]},
		})
	}
	for _, property := range properties {
		nodes = append(nodes, opts.SankeyNode{Name: displayName(collisions, property, roleProperty)})
	}
	for _, value := range values {
		nodes = append(nodes, opts.SankeyNode{Name: displayName(collisions, value, roleValue)})
	}

	links := make([]opts.SankeyLink, 0, 2*len(rows))
	for _, row := range rows {
		links = append(links,
			opts.SankeyLink{
				Source: displayName(collisions, row.Item, roleItem),
				Target: displayName(collisions, row.Property, roleProperty),
				Value:  1,
			},
			opts.SankeyLink{
				Source: displayName(collisions, row.Property, roleProperty),
				Target: displayName(collisions, row.Value, roleValue),
				Value:  1,
			})
	}

	sankey := echarts.NewSankey()
	sankey.SetGlobalOptions(
		echarts.WithInitializationOpts(r.initOptions("Wikidata Sankey Diagram")),
		echarts.WithTitleOpts(opts.Title{Title: "Wikidata Sankey Diagram"}),
		echarts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item"}),
	)
	sankey.AddSeries("sankey", nodes, links,
		echarts.WithLabelOpts(opts.Label{Show: opts.Bool(true)}),
		echarts.WithLineStyleOpts(opts.LineStyle{Color: "source", Opacity: 0.4, Curveness: 0.5}),
	)
	return sankey
}
