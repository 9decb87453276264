package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/sampledmh/pkg/sampledmh"
)

// pruneFlags registers the pruning parameters on mine and prune.
type pruneFlags struct{}

func (pruneFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Int("min-size", 0, "drop sets with fewer items (default from config)")
	f.Int("min-hits", 0, "drop sets supported by fewer documents (default from config)")
	f.Float64("overlap", 0, "fraction of a set's items a supporting document must hold")
	f.Float64("cooccurrence", 0, "fraction of supporting documents an item must occur in")
	f.Bool("dedup", false, "drop sets with identical items")
}

func (pruneFlags) apply(cmd *cobra.Command, e *env) error {
	f := cmd.Flags()
	p := &e.cfg.Prune

	return errors.Join(
		override(cmd, "min-size", &p.MinSetSize, f.GetInt),
		override(cmd, "min-hits", &p.MinHits, f.GetInt),
		override(cmd, "overlap", &p.Overlap, f.GetFloat64),
		override(cmd, "cooccurrence", &p.Cooccurrence, f.GetFloat64),
		override(cmd, "dedup", &p.Dedup, f.GetBool),
	)
}

func newPruneCommand(opts *globalOptions) *cobra.Command {
	var pf pruneFlags

	cmd := &cobra.Command{
		Use:   "prune IFINDEX MINED OUTPUT",
		Short: "Prune mined item sets against an inverted index",
		Long: `Keep, for every mined set, only the items that co-occur in the documents
supporting the set, then drop sets that are too small or too weakly supported.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, "prune", func(_ context.Context, e *env) error {
				if err := errors.Join(pf.apply(cmd, e), e.cfg.Validate()); err != nil {
					return err
				}

				ifx, err := loadDB(args[0])
				if err != nil {
					return err
				}

				mined, err := loadDB(args[1])
				if err != nil {
					return err
				}

				before := mined.Len()

				if err = sampledmh.Prune(ifx, mined, e.cfg.PruneOptions()); err != nil {
					return err
				}

				if err = saveDB(args[2], mined); err != nil {
					return err
				}

				e.logger.Info("pruned", "before", before, "after", mined.Len())
				status(cmd, opts, "kept %s of %s sets", count(mined.Len()), count(before))

				return nil
			})
		},
	}

	pf.register(cmd)

	return cmd
}
