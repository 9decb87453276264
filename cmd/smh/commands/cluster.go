package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Sumatoshi-tech/sampledmh/pkg/alg/list"
	"github.com/Sumatoshi-tech/sampledmh/pkg/mhlink"
)

type clusterCommand struct {
	opts   *globalOptions
	models string
	verify bool
}

func newClusterCommand(opts *globalOptions) *cobra.Command {
	cc := &clusterCommand{opts: opts}

	cmd := &cobra.Command{
		Use:   "cluster INPUT OUTPUT",
		Short: "Cluster sets with Min-Hash-Link",
		Long: `Group the sets of INPUT by single-link clustering. Sets sharing a Min-Hash
tuple in any round are compared exactly and linked when their similarity is
above the threshold. OUTPUT receives one row of set indices per cluster.`,
		Args: cobra.ExactArgs(2),
		RunE: cc.run,
	}

	f := cmd.Flags()
	f.IntP("tuple-size", "r", 0, "Min-Hash values per tuple (default from config)")
	f.IntP("tuples", "l", 0, "number of rounds (default from config)")
	f.IntP("table-size", "s", 0, "hash table size as a power of two exponent")
	f.Float64P("threshold", "o", 0, "similarity above which two sets are linked")
	f.String("similarity", "",
		fmt.Sprintf("similarity measure (%s)", strings.Join(list.SimilarityNames(), ", ")))
	f.Int("min-size", 0, "drop clusters with fewer members")
	f.String("weights", "", "item weight file for permutations and weighted measures")
	f.Uint64("seed", 0, "random seed (0 = random)")
	f.Int("workers", 0, "parallel hashing workers (0 = CPU count)")
	f.StringVar(&cc.models, "models", "", "also write the item model of every cluster to this file")
	f.BoolVar(&cc.verify, "verify", false, "check the partition after every round")

	return cmd
}

func (cc *clusterCommand) applyFlags(cmd *cobra.Command, e *env) error {
	f := cmd.Flags()
	c := &e.cfg.Cluster

	err := errors.Join(
		override(cmd, "tuple-size", &c.TupleSize, f.GetInt),
		override(cmd, "tuples", &c.Tuples, f.GetInt),
		override(cmd, "table-size", &c.TableSize, f.GetInt),
		override(cmd, "threshold", &c.Threshold, f.GetFloat64),
		override(cmd, "similarity", &c.Similarity, f.GetString),
		override(cmd, "min-size", &c.MinClusterSize, f.GetInt),
		override(cmd, "weights", &c.Weights, f.GetString),
		override(cmd, "seed", &c.Seed, f.GetUint64),
		override(cmd, "workers", &c.Workers, f.GetInt),
	)
	if err != nil {
		return err
	}

	return e.cfg.Validate()
}

func (cc *clusterCommand) run(cmd *cobra.Command, args []string) error {
	return cc.opts.run(cmd, "cluster", func(ctx context.Context, e *env) error {
		if err := cc.applyFlags(cmd, e); err != nil {
			return err
		}

		db, err := loadDB(args[0])
		if err != nil {
			return err
		}

		w, err := loadWeights(e.cfg.Cluster.Weights)
		if err != nil {
			return err
		}

		clusterCfg, err := e.cfg.ClustererConfig(w)
		if err != nil {
			return err
		}

		clusterCfg.Verify = cc.verify
		clusterCfg.Progress = newProgress(cmd.ErrOrStderr(), "clustering", cc.opts.quiet)

		clusterer := mhlink.New(clusterCfg)
		clusterer.Logger = e.logger
		clusterer.Tracer = e.providers.Tracer
		clusterer.Metrics = e.engine

		var res *mhlink.Result

		err = e.track(ctx, "cluster.run", func(ctx context.Context) error {
			var clusterErr error

			res, clusterErr = clusterer.Cluster(ctx, db)

			return clusterErr
		}, attribute.Int("smh.sets", db.Len()))
		if err != nil {
			return err
		}

		if err = saveDB(args[1], res.Clusters); err != nil {
			return err
		}

		if cc.models != "" {
			if err = saveDB(cc.models, res.Models); err != nil {
				return err
			}
		}

		status(cmd, cc.opts, "%s clusters from %s sets", count(res.Clusters.Len()), count(db.Len()))

		return nil
	})
}
