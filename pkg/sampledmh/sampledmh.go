// Package sampledmh implements Sampled Min-Hashing (SMH): mining groups of
// co-occurring items from a database of sets.
//
// The input database is read as an inverted file: row i lists the documents
// that contain item i. Every round hashes all rows into a fresh Min-Hash
// table; rows that agree on a whole tuple of Min-Hash values share a bucket,
// and each used bucket becomes one mined set of row ids. Items that co-occur
// highly are likely to collide in at least one of many rounds.
package sampledmh

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
	"github.com/Sumatoshi-tech/sampledmh/pkg/safeconv"
)

const (
	// DefaultTupleSize is the default number of Min-Hash values per tuple.
	DefaultTupleSize = 4

	// DefaultNumberOfTuples is the default number of mining rounds.
	DefaultNumberOfTuples = 500

	// DefaultTableSize is the default number of buckets per table.
	DefaultTableSize = 1 << 20

	tracerName = "sampledmh"
	opMine     = "mine"
)

var (
	// ErrNilDB is returned when mining without a database.
	ErrNilDB = errors.New("sampledmh: database must not be nil")

	// ErrZeroTuples is returned when the number of rounds is not positive.
	ErrZeroTuples = errors.New("sampledmh: number of tuples must be positive")

	// ErrInvalidThreshold is returned for thresholds outside [0, 1].
	ErrInvalidThreshold = errors.New("sampledmh: threshold must be in [0, 1]")
)

// Config holds the mining parameters.
type Config struct {
	// TupleSize is the number of Min-Hash values combined into one bucket key.
	TupleSize int
	// NumberOfTuples is the number of rounds, one fresh table each.
	NumberOfTuples int
	// TableSize is the number of buckets. Must be a power of two.
	TableSize int
	// Weights optionally biases every round toward heavy items.
	Weights []float64
	// Seed makes runs reproducible. Ignored when Rand is set.
	Seed uint64
	// Rand overrides the random stream derived from Seed.
	Rand *rand.Rand
	// Workers bounds the goroutines hashing sets within a round.
	Workers int
	// Progress is called after each round with the 1-based round number.
	Progress func(round, total int)
}

// DefaultConfig returns the mining defaults.
func DefaultConfig() Config {
	return Config{
		TupleSize:      DefaultTupleSize,
		NumberOfTuples: DefaultNumberOfTuples,
		TableSize:      DefaultTableSize,
	}
}

// Miner runs Sampled Min-Hashing.
type Miner struct {
	Config Config

	// Logger receives one debug line per round. Nil uses slog.Default().
	Logger *slog.Logger

	// Tracer creates the run span. Nil falls back to the global provider.
	Tracer trace.Tracer

	// Metrics records per-round statistics. Nil disables recording.
	Metrics *observability.EngineMetrics
}

// New returns a Miner with the given configuration.
func New(cfg Config) *Miner {
	return &Miner{Config: cfg}
}

func (m *Miner) tracer() trace.Tracer {
	if m.Tracer != nil {
		return m.Tracer
	}

	return otel.Tracer(tracerName)
}

func (m *Miner) rng() *rand.Rand {
	if m.Config.Rand != nil {
		return m.Config.Rand
	}

	return minhash.NewRand(m.Config.Seed)
}

// validate rejects bad parameters before any early return, so an empty
// database does not mask them.
func (m *Miner) validate(db *listdb.DB) error {
	switch {
	case db == nil:
		return ErrNilDB
	case m.Config.NumberOfTuples <= 0:
		return ErrZeroTuples
	}

	if err := minhash.ValidateShape(m.Config.TableSize, m.Config.TupleSize); err != nil {
		return err
	}

	if m.Config.Weights != nil {
		return minhash.ValidateWeights(m.Config.Weights, db.Dim)
	}

	return nil
}

// Mine hashes every row of db NumberOfTuples times and returns the bucket
// contents of every round as a database of row ids. The result's Dim is
// db.Len(). Cancellation is checked between rounds.
func (m *Miner) Mine(ctx context.Context, db *listdb.DB) (*listdb.DB, error) {
	if err := m.validate(db); err != nil {
		return nil, err
	}

	out := listdb.New(0, safeconv.MustIntToUint32(db.Len()))
	if db.Dim == 0 || db.NonEmpty() == 0 {
		return out, nil
	}

	ctx, span := m.tracer().Start(ctx, "smh.mine",
		trace.WithAttributes(
			attribute.Int("mine.sets", db.Len()),
			attribute.Int("mine.dim", int(db.Dim)),
			attribute.Int("mine.tuple_size", m.Config.TupleSize),
			attribute.Int("mine.tuples", m.Config.NumberOfTuples),
			attribute.Int("mine.table_size", m.Config.TableSize),
			attribute.Bool("mine.weighted", m.Config.Weights != nil),
		))
	defer span.End()

	err := m.mine(ctx, db, out)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return nil, err
	}

	span.SetAttributes(attribute.Int("mine.mined", out.Len()))
	m.Metrics.RecordOutput(ctx, opMine, out.Len())

	observability.LoggerOrDefault(m.Logger).InfoContext(ctx, "mining done",
		slog.Int("rounds", m.Config.NumberOfTuples),
		slog.Int("mined", out.Len()))

	return out, nil
}

func (m *Miner) mine(ctx context.Context, db, out *listdb.DB) error {
	logger := observability.LoggerOrDefault(m.Logger)

	tbl, err := minhash.New(minhash.Options{
		TableSize: m.Config.TableSize,
		TupleSize: m.Config.TupleSize,
		Dim:       db.Dim,
		Rand:      m.rng(),
		Workers:   m.Config.Workers,
	})
	if err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	defer tbl.Close()

	total := m.Config.NumberOfTuples

	for round := range total {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("round %d: %w", round+1, ctxErr)
		}

		start := time.Now()
		before := tbl.Stats()

		if roundErr := m.hashRound(tbl, db); roundErr != nil {
			return fmt.Errorf("round %d: %w", round+1, roundErr)
		}

		after := tbl.Stats()

		tbl.Drain(func(members list.List) { out.Lists = append(out.Lists, members) })

		m.Metrics.RecordRound(ctx, observability.RoundStats{
			Op:          opMine,
			Duration:    time.Since(start),
			Stored:      int64(after.Stored - before.Stored),
			UsedBuckets: after.UsedBuckets,
			Probes:      int64(after.Probes - before.Probes),
		})

		logger.DebugContext(ctx, "mining round",
			slog.Int("round", round+1),
			slog.Int("buckets", after.UsedBuckets))

		if m.Config.Progress != nil {
			m.Config.Progress(round+1, total)
		}
	}

	return nil
}

func (m *Miner) hashRound(tbl *minhash.Table, db *listdb.DB) error {
	if err := tbl.GeneratePermutations(); err != nil {
		return err
	}

	if m.Config.Weights != nil {
		if err := tbl.WeightPermutations(m.Config.Weights); err != nil {
			return err
		}
	}

	_, err := tbl.StoreDB(db)

	return err
}
