package charts

import (
	echarts "github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/wikiparity/wikiparity/pkg/core"
)

// Sunburst builds the Item to Property to Value hierarchy for one claim table.
func (r *Renderer) Sunburst(rows []core.Row, title string) *echarts.Sunburst {
	sunburst := echarts.NewSunburst()
	sunburst.SetGlobalOptions(
		echarts.WithInitializationOpts(r.initOptions(title)),
		echarts.WithTitleOpts(opts.Title{Title: title}),
		echarts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	sunburst.AddSeries("sunburst", sunburstData(rows),
		echarts.WithLabelOpts(opts.Label{Show: opts.Bool(true)}),
	)
	return sunburst
}

// sunburstData groups rows into the Item/Property/Value tree, one leaf of
// weight 1 per statement. Ring segments keep first-appearance order.
func sunburstData(rows []core.Row) []opts.SunburstData {
	var data []opts.SunburstData
	itemIndex := make(map[string]int)
	propertyIndex := make(map[string]map[string]int)

	for _, row := range rows {
		i, ok := itemIndex[row.Item]
		if !ok {
			i = len(data)
			itemIndex[row.Item] = i
			propertyIndex[row.Item] = make(map[string]int)
			data = append(data, opts.SunburstData{Name: row.Item})
		}
		item := &data[i]

		j, ok := propertyIndex[row.Item][row.Property]
		if !ok {
			j = len(item.Children)
			propertyIndex[row.Item][row.Property] = j
			item.Children = append(item.Children, &opts.SunburstData{Name: row.Property})
		}

		property := item.Children[j]
		property.Children = append(property.Children, &opts.SunburstData{Name: row.Value, Value: 1})
	}
	return data
}
