package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/sampledmh/pkg/ifindex"
	"github.com/Sumatoshi-tech/sampledmh/pkg/weights"
)

func newIfindexCommand(opts *globalOptions) *cobra.Command {
	var scheme string

	cmd := &cobra.Command{
		Use:   "ifindex CORPUS OUTPUT",
		Short: "Build an inverted index from a corpus",
		Long: `Invert a corpus of documents: row i of the output lists the documents
containing item i with the item's frequency in each.

With --scheme the frequencies are replaced by integer term weights.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, "ifindex", func(_ context.Context, e *env) error {
				corpus, err := loadDB(args[0])
				if err != nil {
					return err
				}

				ifx := ifindex.FromCorpus(corpus)

				if scheme != "" {
					fn, schemeErr := weights.ByName(scheme)
					if schemeErr != nil {
						return schemeErr
					}

					ifindex.Weight(ifx, fn)
				}

				if err = saveDB(args[1], ifx); err != nil {
					return err
				}

				e.logger.Info("inverted index written", "path", args[1], "items", ifx.Len(), "docs", ifx.Dim)
				status(cmd, opts, "indexed %s items over %s documents", count(ifx.Len()), count(int(ifx.Dim)))

				return nil
			})
		},
	}

	cmd.Flags().StringVar(&scheme, "scheme", "",
		fmt.Sprintf("replace frequencies with weights (%s)", strings.Join(weights.Names(), ", ")))

	return cmd
}
