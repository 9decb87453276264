package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Sumatoshi-tech/sampledmh/pkg/ifindex"
	"github.com/Sumatoshi-tech/sampledmh/pkg/listdb"
	"github.com/Sumatoshi-tech/sampledmh/pkg/sampledmh"
	"github.com/Sumatoshi-tech/sampledmh/pkg/vocab"
)

// ErrExpandNeedsCorpus is returned when --expand is given without --corpus.
var ErrExpandNeedsCorpus = errors.New("--expand requires --corpus")

type mineCommand struct {
	opts      *globalOptions
	threshold float64
	corpus    string
	vocab     string
	prune     bool
	pruning   pruneFlags
}

func newMineCommand(opts *globalOptions) *cobra.Command {
	mc := &mineCommand{opts: opts}

	cmd := &cobra.Command{
		Use:     "mine IFINDEX OUTPUT",
		Aliases: []string{"discover"},
		Short:   "Mine co-occurring item sets with Sampled Min-Hashing",
		Long: `Mine groups of highly co-occurring items from an inverted index.

Every round draws fresh Min-Hash permutations, hashes every item's document
list into tuples and emits each group of items sharing a tuple. With
--threshold the number of rounds is chosen so that item pairs at that
similarity co-occur in at least one round with probability one half.`,
		Args: cobra.ExactArgs(2),
		RunE: mc.run,
	}

	f := cmd.Flags()
	f.IntP("tuple-size", "r", 0, "Min-Hash values per tuple (default from config)")
	f.IntP("tuples", "l", 0, "number of rounds (default from config)")
	f.IntP("table-size", "s", 0, "hash table size as a power of two exponent")
	f.Float64VarP(&mc.threshold, "threshold", "o", 0, "derive the number of rounds from this similarity")
	f.String("weights", "", "item weight file biasing the permutations")
	f.Uint64("seed", 0, "random seed (0 = random)")
	f.Int("workers", 0, "parallel hashing workers (0 = CPU count)")
	f.Bool("expand", false, "expand item frequencies into distinct items before mining")
	f.StringVar(&mc.corpus, "corpus", "", "corpus the inverted index was built from (needed by --expand)")
	f.BoolVar(&mc.prune, "prune", false, "prune the mined sets against the inverted index")
	f.StringVar(&mc.vocab, "vocab", "", "print mined sets as words from this vocabulary")
	mc.pruning.register(cmd)

	return cmd
}

func (mc *mineCommand) applyFlags(cmd *cobra.Command, e *env) error {
	f := cmd.Flags()
	m := &e.cfg.Mine

	err := errors.Join(
		override(cmd, "tuple-size", &m.TupleSize, f.GetInt),
		override(cmd, "tuples", &m.Tuples, f.GetInt),
		override(cmd, "table-size", &m.TableSize, f.GetInt),
		override(cmd, "weights", &m.Weights, f.GetString),
		override(cmd, "seed", &m.Seed, f.GetUint64),
		override(cmd, "workers", &m.Workers, f.GetInt),
		override(cmd, "expand", &m.Expand, f.GetBool),
		mc.pruning.apply(cmd, e),
	)
	if err != nil {
		return err
	}

	return e.cfg.Validate()
}

func (mc *mineCommand) run(cmd *cobra.Command, args []string) error {
	return mc.opts.run(cmd, "mine", func(ctx context.Context, e *env) error {
		if err := mc.applyFlags(cmd, e); err != nil {
			return err
		}

		if cmd.Flags().Changed("threshold") {
			tuples, err := sampledmh.NumberOfTuplesFor(mc.threshold, e.cfg.MinerConfig(nil).TupleSize)
			if err != nil {
				return err
			}

			e.cfg.Mine.Tuples = tuples
		}

		ifx, err := loadDB(args[0])
		if err != nil {
			return err
		}

		w, err := loadWeights(e.cfg.Mine.Weights)
		if err != nil {
			return err
		}

		if e.cfg.Mine.Expand {
			ifx, w, err = mc.expand(ifx, w)
			if err != nil {
				return err
			}
		}

		mined, err := mc.mine(ctx, cmd, e, ifx, w)
		if err != nil {
			return err
		}

		if mc.prune {
			if err = sampledmh.Prune(ifx, mined, e.cfg.PruneOptions()); err != nil {
				return err
			}
		}

		if err = saveDB(args[1], mined); err != nil {
			return err
		}

		status(cmd, mc.opts, "mined %s sets into %s", count(mined.Len()), args[1])

		return mc.printWords(cmd, mined)
	})
}

func (mc *mineCommand) mine(ctx context.Context, cmd *cobra.Command, e *env, ifx *listdb.DB, w []float64) (*listdb.DB, error) {
	minerCfg := e.cfg.MinerConfig(w)
	minerCfg.Progress = newProgress(cmd.ErrOrStderr(), "mining", mc.opts.quiet)

	miner := sampledmh.New(minerCfg)
	miner.Logger = e.logger
	miner.Tracer = e.providers.Tracer
	miner.Metrics = e.engine

	var mined *listdb.DB

	err := e.track(ctx, "mine.run", func(ctx context.Context) error {
		var mineErr error

		mined, mineErr = miner.Mine(ctx, ifx)

		return mineErr
	}, attribute.Int("smh.items", ifx.Len()), attribute.Bool("smh.expand", e.cfg.Mine.Expand))

	return mined, err
}

// expand re-indexes the corpus over the frequency-expanded item domain.
func (mc *mineCommand) expand(ifx *listdb.DB, w []float64) (*listdb.DB, []float64, error) {
	if mc.corpus == "" {
		return nil, nil, ErrExpandNeedsCorpus
	}

	corpus, err := loadDB(mc.corpus)
	if err != nil {
		return nil, nil, err
	}

	cum, err := sampledmh.CumulativeFrequency(ifx)
	if err != nil {
		return nil, nil, fmt.Errorf("expand index: %w", err)
	}

	expanded, err := sampledmh.Expand(corpus, cum)
	if err != nil {
		return nil, nil, fmt.Errorf("expand corpus: %w", err)
	}

	if w != nil {
		w, err = sampledmh.ExpandWeights(cum, w)
		if err != nil {
			return nil, nil, fmt.Errorf("expand weights: %w", err)
		}
	}

	return ifindex.FromCorpus(expanded), w, nil
}

func (mc *mineCommand) printWords(cmd *cobra.Command, mined *listdb.DB) error {
	if mc.vocab == "" {
		return nil
	}

	v, err := vocab.Load(mc.vocab)
	if err != nil {
		return err
	}

	return v.WriteWords(cmd.OutOrStdout(), mined)
}
