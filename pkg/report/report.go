// Package report summarizes and renders set databases: summary statistics,
// terminal tables, JSON/YAML documents, and size histograms.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"gonum.org/v1/gonum/stat"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/sampledmh/pkg/alg/lsh"
	"github.com/Sumatoshi-tech/sampledmh/pkg/listdb"
)

// yamlIndent is the indentation of YAML output.
const yamlIndent = 2

// Summary holds the size statistics of a database.
type Summary struct {
	Sets       int     `json:"sets"        yaml:"sets"`
	NonEmpty   int     `json:"non_empty"   yaml:"non_empty"`
	Dim        uint32  `json:"dim"         yaml:"dim"`
	TotalItems int     `json:"total_items" yaml:"total_items"`
	MinSize    int     `json:"min_size"    yaml:"min_size"`
	MaxSize    int     `json:"max_size"    yaml:"max_size"`
	MeanSize   float64 `json:"mean_size"   yaml:"mean_size"`
	StdDevSize float64 `json:"stddev_size" yaml:"stddev_size"`
	MedianSize float64 `json:"median_size" yaml:"median_size"`
}

// Summarize computes size statistics over every list of db.
func Summarize(db *listdb.DB) Summary {
	s := Summary{Sets: db.Len(), NonEmpty: db.NonEmpty(), Dim: db.Dim, TotalItems: db.TotalItems()}
	if db.Len() == 0 {
		return s
	}

	sizes := make([]float64, db.Len())
	for i, n := range db.Sizes() {
		sizes[i] = float64(n)
	}

	slices.Sort(sizes)

	s.MinSize = int(sizes[0])
	s.MaxSize = int(sizes[len(sizes)-1])
	s.MeanSize = stat.Mean(sizes, nil)
	s.MedianSize = stat.Quantile(0.5, stat.Empirical, sizes, nil)

	if len(sizes) > 1 {
		s.StdDevSize = stat.StdDev(sizes, nil)
	}

	return s
}

func newTable(w io.Writer) table.Writer {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)

	return tbl
}

// WriteTable renders a summary as a two-column table.
func WriteTable(w io.Writer, title string, s Summary) error {
	tbl := newTable(w)
	tbl.SetTitle(title)
	tbl.AppendHeader(table.Row{"Metric", "Value"})
	tbl.AppendRows([]table.Row{
		{"Sets", humanize.Comma(int64(s.Sets))},
		{"Non-empty sets", humanize.Comma(int64(s.NonEmpty))},
		{"Item domain", humanize.Comma(int64(s.Dim))},
		{"Total items", humanize.Comma(int64(s.TotalItems))},
		{"Min size", humanize.Comma(int64(s.MinSize))},
		{"Max size", humanize.Comma(int64(s.MaxSize))},
		{"Mean size", humanize.FormatFloat("#,###.##", s.MeanSize)},
		{"Std. dev.", humanize.FormatFloat("#,###.##", s.StdDevSize)},
		{"Median size", humanize.FormatFloat("#,###.##", s.MedianSize)},
	})
	tbl.Render()

	return nil
}

// WriteNeighbors renders search results, one table row per neighbor.
func WriteNeighbors(w io.Writer, query int, neighbors []lsh.Neighbor) error {
	tbl := newTable(w)
	tbl.SetTitle(fmt.Sprintf("Query %d", query))
	tbl.AppendHeader(table.Row{"#", "Set", "Score"})

	for i, nb := range neighbors {
		tbl.AppendRow(table.Row{i + 1, nb.ID, fmt.Sprintf("%.4f", nb.Score)})
	}

	tbl.Render()

	return nil
}

// WriteJSON encodes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}

	return nil
}

// WriteYAML encodes v as YAML.
func WriteYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(yamlIndent)

	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}

	return nil
}
