// Package mhlink implements Min-Hash-Link: single-link clustering of a set
// database where candidate pairs come from Min-Hash bucket collisions and
// every candidate is verified with an exact similarity measure.
package mhlink

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/sampledmh/pkg/alg/list"
	"github.com/Sumatoshi-tech/sampledmh/pkg/alg/minhash"
	"github.com/Sumatoshi-tech/sampledmh/pkg/listdb"
	"github.com/Sumatoshi-tech/sampledmh/pkg/observability"
)

const (
	// DefaultTupleSize is the default number of Min-Hash values per tuple.
	DefaultTupleSize = 3

	// DefaultNumberOfTuples is the default number of rounds.
	DefaultNumberOfTuples = 255

	// DefaultTableSize is the default number of buckets per table.
	DefaultTableSize = 1 << 20

	// DefaultThreshold is the default linking threshold.
	DefaultThreshold = 0.7

	tracerName = "mhlink"
	opCluster  = "cluster"
)

var (
	// ErrNilDB is returned when clustering without a database.
	ErrNilDB = errors.New("mhlink: database must not be nil")

	// ErrZeroTuples is returned when the number of rounds is not positive.
	ErrZeroTuples = errors.New("mhlink: number of tuples must be positive")

	// ErrNilSimilarity is returned when no similarity measure is configured.
	ErrNilSimilarity = errors.New("mhlink: similarity function must not be nil")

	// ErrInvalidThreshold is returned for thresholds outside [0, 1].
	ErrInvalidThreshold = errors.New("mhlink: threshold must be in [0, 1]")

	// ErrSimilarityOutOfRange is returned when the measure yields a value outside [0, 1].
	ErrSimilarityOutOfRange = errors.New("mhlink: similarity outside [0, 1]")

	// ErrPartitionViolated is returned by verification when a set is not in
	// exactly one cluster.
	ErrPartitionViolated = errors.New("mhlink: clusters do not partition the checked sets")
)

// Config holds the clustering parameters.
type Config struct {
	TupleSize      int
	NumberOfTuples int
	// TableSize is the number of buckets. Must be a power of two.
	TableSize int
	// Similarity verifies candidate pairs. Defaults to list.Jaccard.
	Similarity list.Func
	// Threshold links two sets when their similarity is strictly greater.
	Threshold float64
	// MinClusterSize drops smaller clusters from the result.
	MinClusterSize int
	Weights        []float64
	// Seed makes runs reproducible. Ignored when Rand is set.
	Seed    uint64
	Rand    *rand.Rand
	Workers int
	// Verify checks the partition invariant after every processed set.
	Verify bool
	// Progress is called after each round with the 1-based round number.
	Progress func(round, total int)
}

// DefaultConfig returns the clustering defaults.
func DefaultConfig() Config {
	return Config{
		TupleSize:      DefaultTupleSize,
		NumberOfTuples: DefaultNumberOfTuples,
		TableSize:      DefaultTableSize,
		Similarity:     list.Jaccard,
		Threshold:      DefaultThreshold,
	}
}

// Result holds the clusters as lists of set ids and their models.
type Result struct {
	// Clusters has one row per cluster holding the ids of its member sets.
	Clusters *listdb.DB
	// Models has one row per cluster: the summed items of its members,
	// ordered by descending frequency.
	Models *listdb.DB
}

// Clusterer runs Min-Hash-Link.
type Clusterer struct {
	Config Config

	// Logger receives one debug line per round. Nil uses slog.Default().
	Logger *slog.Logger

	// Tracer creates the run span. Nil falls back to the global provider.
	Tracer trace.Tracer

	// Metrics records per-round statistics. Nil disables recording.
	Metrics *observability.EngineMetrics
}

// New returns a Clusterer with the given configuration.
func New(cfg Config) *Clusterer {
	return &Clusterer{Config: cfg}
}

func (c *Clusterer) tracer() trace.Tracer {
	if c.Tracer != nil {
		return c.Tracer
	}

	return otel.Tracer(tracerName)
}

func (c *Clusterer) rng() *rand.Rand {
	if c.Config.Rand != nil {
		return c.Config.Rand
	}

	return minhash.NewRand(c.Config.Seed)
}

func (c *Clusterer) validate(db *listdb.DB) error {
	switch {
	case db == nil:
		return ErrNilDB
	case c.Config.NumberOfTuples <= 0:
		return ErrZeroTuples
	case !(c.Config.Threshold >= 0 && c.Config.Threshold <= 1):
		return ErrInvalidThreshold
	}

	if err := minhash.ValidateShape(c.Config.TableSize, c.Config.TupleSize); err != nil {
		return err
	}

	if c.Config.Weights != nil {
		return minhash.ValidateWeights(c.Config.Weights, db.Dim)
	}

	return nil
}

func (c *Clusterer) similarity() list.Func {
	if c.Config.Similarity != nil {
		return c.Config.Similarity
	}

	return list.Jaccard
}

// Cluster groups the sets of db. Every set ends up in exactly one cluster
// before size filtering; merged-away clusters are dropped, as are clusters
// smaller than MinClusterSize. The remaining clusters are ordered by
// descending size. Cancellation is checked between rounds.
func (c *Clusterer) Cluster(ctx context.Context, db *listdb.DB) (*Result, error) {
	if err := c.validate(db); err != nil {
		return nil, err
	}

	ctx, span := c.tracer().Start(ctx, "smh.cluster",
		trace.WithAttributes(
			attribute.Int("cluster.sets", db.Len()),
			attribute.Int("cluster.dim", int(db.Dim)),
			attribute.Int("cluster.tuple_size", c.Config.TupleSize),
			attribute.Int("cluster.tuples", c.Config.NumberOfTuples),
			attribute.Float64("cluster.threshold", c.Config.Threshold),
		))
	defer span.End()

	st := newState(db.Len())

	if db.Dim > 0 && db.NonEmpty() > 0 {
		if err := c.run(ctx, db, st); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())

			return nil, err
		}
	}

	st.openUnchecked()

	clusters := st.result(db.Len())
	clusters.DeleteSmallest(c.Config.MinClusterSize)

	res := &Result{Clusters: clusters, Models: MakeModel(db, clusters)}

	span.SetAttributes(
		attribute.Int("cluster.clusters", clusters.Len()),
		attribute.Int64("cluster.merges", st.merges),
	)
	c.Metrics.RecordOutput(ctx, opCluster, clusters.Len())

	observability.LoggerOrDefault(c.Logger).InfoContext(ctx, "clustering done",
		slog.Int("rounds", c.Config.NumberOfTuples),
		slog.Int("clusters", clusters.Len()),
		slog.Int64("merges", st.merges))

	return res, nil
}

func (c *Clusterer) run(ctx context.Context, db *listdb.DB, st *state) error {
	logger := observability.LoggerOrDefault(c.Logger)

	tbl, err := minhash.New(minhash.Options{
		TableSize: c.Config.TableSize,
		TupleSize: c.Config.TupleSize,
		Dim:       db.Dim,
		Rand:      c.rng(),
		Workers:   c.Config.Workers,
	})
	if err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	defer tbl.Close()

	link := linker{db: db, st: st, sim: c.similarity(), threshold: c.Config.Threshold, verify: c.Config.Verify}
	total := c.Config.NumberOfTuples

	for round := range total {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("round %d: %w", round+1, ctxErr)
		}

		start := time.Now()
		before := tbl.Stats()
		mergesBefore := st.merges

		indices, hashErr := c.hashRound(tbl, db)
		if hashErr != nil {
			return fmt.Errorf("round %d: %w", round+1, hashErr)
		}

		used := tbl.Stats().UsedBuckets

		if linkErr := link.round(tbl, indices); linkErr != nil {
			tbl.Clear()

			return fmt.Errorf("round %d: %w", round+1, linkErr)
		}

		after := tbl.Stats()
		tbl.Clear()

		c.Metrics.RecordRound(ctx, observability.RoundStats{
			Op:          opCluster,
			Duration:    time.Since(start),
			Stored:      int64(after.Stored - before.Stored),
			UsedBuckets: used,
			Probes:      int64(after.Probes - before.Probes),
			Merges:      st.merges - mergesBefore,
		})

		logger.DebugContext(ctx, "clustering round",
			slog.Int("round", round+1),
			slog.Int("buckets", used),
			slog.Int64("merges", st.merges-mergesBefore))

		if c.Config.Progress != nil {
			c.Config.Progress(round+1, total)
		}
	}

	return nil
}

func (c *Clusterer) hashRound(tbl *minhash.Table, db *listdb.DB) ([]int, error) {
	if err := tbl.GeneratePermutations(); err != nil {
		return nil, err
	}

	if c.Config.Weights != nil {
		if err := tbl.WeightPermutations(c.Config.Weights); err != nil {
			return nil, err
		}
	}

	return tbl.StoreDB(db)
}

// MakeModel builds one list per cluster: the concatenation of its members'
// lists with repeated items summed, ordered by descending frequency.
func MakeModel(db *listdb.DB, clusters *listdb.DB) *listdb.DB {
	models := listdb.New(clusters.Len(), db.Dim)

	for _, members := range clusters.Lists {
		var model list.List

		for _, m := range members {
			model = model.Concat(db.Lists[m.ID])
		}

		model = model.Normalize()
		model.SortByFrequencyDesc()

		models.Lists = append(models.Lists, model)
	}

	return models
}
