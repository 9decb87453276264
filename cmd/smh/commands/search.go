package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/sampledmh/pkg/alg/lsh"
	"github.com/Sumatoshi-tech/sampledmh/pkg/report"
)

// Output formats.
const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

// ErrUnknownFormat is returned for an unsupported --format value.
var ErrUnknownFormat = errors.New("unknown output format")

// searchResult holds the ranked neighbors of one query.
type searchResult struct {
	Query     int            `json:"query"     yaml:"query"`
	Neighbors []lsh.Neighbor `json:"neighbors" yaml:"neighbors"`
}

func newSearchCommand(opts *globalOptions) *cobra.Command {
	var (
		format  string
		weights string
	)

	cmd := &cobra.Command{
		Use:   "search DATABASE QUERIES",
		Short: "Find the sets of DATABASE most similar to every query set",
		Long: `Index DATABASE with several Min-Hash tables, then rank the candidates of
every set of QUERIES by exact similarity. Candidates below the threshold are
dropped and at most --top-k are reported per query.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, "search", func(_ context.Context, e *env) error {
				f := cmd.Flags()
				s := &e.cfg.Search

				err := errors.Join(
					override(cmd, "tables", &s.Tables, f.GetInt),
					override(cmd, "tuple-size", &s.TupleSize, f.GetInt),
					override(cmd, "table-size", &s.TableSize, f.GetInt),
					override(cmd, "threshold", &s.Threshold, f.GetFloat64),
					override(cmd, "similarity", &s.Similarity, f.GetString),
					override(cmd, "top-k", &s.TopK, f.GetInt),
					override(cmd, "seed", &s.Seed, f.GetUint64),
				)
				if err != nil {
					return err
				}

				db, err := loadDB(args[0])
				if err != nil {
					return err
				}

				queries, err := loadDB(args[1])
				if err != nil {
					return err
				}

				w, err := loadWeights(weights)
				if err != nil {
					return err
				}

				idxOpts, sim, err := e.cfg.SearchOptions(w)
				if err != nil {
					return err
				}

				idx, err := lsh.New(db, idxOpts)
				if err != nil {
					return err
				}
				defer idx.Close()

				results := make([]searchResult, 0, queries.Len())

				for i, q := range queries.Lists {
					neighbors, queryErr := idx.QueryThreshold(q, sim, s.Threshold)
					if queryErr != nil {
						return fmt.Errorf("query %d: %w", i, queryErr)
					}

					if s.TopK > 0 && len(neighbors) > s.TopK {
						neighbors = neighbors[:s.TopK]
					}

					results = append(results, searchResult{Query: i, Neighbors: neighbors})
				}

				e.logger.Info("search done", "queries", queries.Len(), "tables", idx.Len())

				return writeSearchResults(cmd, format, results)
			})
		},
	}

	f := cmd.Flags()
	f.Int("tables", 0, "number of Min-Hash tables (default from config)")
	f.IntP("tuple-size", "r", 0, "Min-Hash values per tuple (default from config)")
	f.IntP("table-size", "s", 0, "hash table size as a power of two exponent")
	f.Float64P("threshold", "o", 0, "minimum similarity of a reported neighbor")
	f.String("similarity", "", "similarity measure used for ranking")
	f.Int("top-k", 0, "maximum neighbors per query (0 = all)")
	f.Uint64("seed", 0, "random seed (0 = random)")
	f.StringVar(&weights, "weights", "", "item weight file")
	f.StringVar(&format, "format", formatTable, "output format: table, json, yaml")

	return cmd
}

func writeSearchResults(cmd *cobra.Command, format string, results []searchResult) error {
	out := cmd.OutOrStdout()

	switch format {
	case formatTable:
		for _, r := range results {
			if err := report.WriteNeighbors(out, r.Query, r.Neighbors); err != nil {
				return err
			}
		}

		return nil
	case formatJSON:
		return report.WriteJSON(out, results)
	case formatYAML:
		return report.WriteYAML(out, results)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}
