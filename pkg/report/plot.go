package report

import (
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/Sumatoshi-tech/sampledmh/pkg/listdb"
)

const (
	chartWidth  = "100%"
	chartHeight = "500px"
	barColor    = "#5470c6"
)

// SizeHistogram counts the lists of db per size. Sizes are returned in
// ascending order.
func SizeHistogram(db *listdb.DB) (sizes, counts []int) {
	freq := make(map[int]int)
	for _, n := range db.Sizes() {
		freq[n]++
	}

	for n := range freq {
		sizes = append(sizes, n)
	}

	slices.Sort(sizes)

	counts = make([]int, len(sizes))
	for i, n := range sizes {
		counts[i] = freq[n]
	}

	return sizes, counts
}

// WriteSizeHistogram renders the size histogram of db as an HTML bar chart.
func WriteSizeHistogram(w io.Writer, title string, db *listdb.DB) error {
	sizes, counts := SizeHistogram(db)

	labels := make([]string, len(sizes))
	data := make([]opts.BarData, len(counts))

	for i := range sizes {
		labels[i] = strconv.Itoa(sizes[i])
		data[i] = opts.BarData{Value: counts[i]}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: chartHeight, PageTitle: title}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("%d sets", db.Len())}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Set size"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Sets"}),
	)

	bar.SetXAxis(labels).AddSeries("Sets", data, charts.WithItemStyleOpts(opts.ItemStyle{Color: barColor}))

	if err := bar.Render(w); err != nil {
		return fmt.Errorf("render histogram: %w", err)
	}

	return nil
}
