package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/sampledmh/pkg/ifindex"
	"github.com/Sumatoshi-tech/sampledmh/pkg/weights"
)

func newWeightsCommand(opts *globalOptions) *cobra.Command {
	var scheme string

	cmd := &cobra.Command{
		Use:   "weights CORPUS OUTPUT",
		Short: "Compute one weight per item of a corpus",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, "weights", func(_ context.Context, e *env) error {
				fn, err := weights.ByName(scheme)
				if err != nil {
					return err
				}

				corpus, err := loadDB(args[0])
				if err != nil {
					return err
				}

				w := weights.FromCorpus(corpus, ifindex.FromCorpus(corpus), fn)

				if err = weights.Save(args[1], w); err != nil {
					return err
				}

				e.logger.Info("weights written", "path", args[1], "items", len(w), "scheme", scheme)
				status(cmd, opts, "wrote %s %s weights", count(len(w)), scheme)

				return nil
			})
		},
	}

	cmd.Flags().StringVar(&scheme, "scheme", weights.SchemeIDF,
		fmt.Sprintf("weighting scheme (%s)", strings.Join(weights.Names(), ", ")))

	return cmd
}
