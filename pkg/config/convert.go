package config

import (
	"fmt"
	"log/slog"

	"github.com/Sumatoshi-tech/sampledmh/pkg/alg/list"
	"github.com/Sumatoshi-tech/sampledmh/pkg/alg/lsh"
	"github.com/Sumatoshi-tech/sampledmh/pkg/mhlink"
	"github.com/Sumatoshi-tech/sampledmh/pkg/observability"
	"github.com/Sumatoshi-tech/sampledmh/pkg/sampledmh"
)

// TableSize converts a bucket count exponent into a bucket count.
func TableSize(exp int) int {
	return 1 << exp
}

// orDefault maps the zero value to def.
func orDefault[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}

	return v
}

// MinerConfig returns the miner settings. Zero sizes take the built-in
// defaults. Weights are loaded by the caller.
func (c *Config) MinerConfig(weights []float64) sampledmh.Config {
	return sampledmh.Config{
		TupleSize:      orDefault(c.Mine.TupleSize, DefaultMineTupleSize),
		NumberOfTuples: orDefault(c.Mine.Tuples, DefaultMineTuples),
		TableSize:      TableSize(orDefault(c.Mine.TableSize, DefaultMineTableSize)),
		Weights:        weights,
		Seed:           c.Mine.Seed,
		Workers:        c.Mine.Workers,
	}
}

// PruneOptions returns the pruning settings.
func (c *Config) PruneOptions() sampledmh.PruneOptions {
	return sampledmh.PruneOptions{
		MinSetSize:   c.Prune.MinSetSize,
		MinHits:      c.Prune.MinHits,
		Overlap:      c.Prune.Overlap,
		Cooccurrence: c.Prune.Cooccurrence,
		Dedup:        c.Prune.Dedup,
	}
}

// ClustererConfig returns the clustering settings. The weights serve both
// the permutations and weighted similarity measures.
func (c *Config) ClustererConfig(weights []float64) (mhlink.Config, error) {
	sim, err := list.ByName(orDefault(c.Cluster.Similarity, DefaultClusterSimilarity), weights)
	if err != nil {
		return mhlink.Config{}, fmt.Errorf("cluster.similarity: %w", err)
	}

	return mhlink.Config{
		TupleSize:      orDefault(c.Cluster.TupleSize, DefaultClusterTupleSize),
		NumberOfTuples: orDefault(c.Cluster.Tuples, DefaultClusterTuples),
		TableSize:      TableSize(orDefault(c.Cluster.TableSize, DefaultClusterTableSize)),
		Similarity:     sim,
		Threshold:      c.Cluster.Threshold,
		MinClusterSize: c.Cluster.MinClusterSize,
		Weights:        weights,
		Seed:           c.Cluster.Seed,
		Workers:        c.Cluster.Workers,
	}, nil
}

// SearchOptions returns the index settings and the verification measure.
func (c *Config) SearchOptions(weights []float64) (lsh.Options, list.Func, error) {
	sim, err := list.ByName(orDefault(c.Search.Similarity, DefaultSearchSimilarity), weights)
	if err != nil {
		return lsh.Options{}, nil, fmt.Errorf("search.similarity: %w", err)
	}

	return lsh.Options{
		NumberOfTables: orDefault(c.Search.Tables, DefaultSearchTables),
		TupleSize:      orDefault(c.Search.TupleSize, DefaultSearchTupleSize),
		TableSize:      TableSize(orDefault(c.Search.TableSize, DefaultSearchTableSize)),
		Seed:           c.Search.Seed,
		Weights:        weights,
	}, sim, nil
}

// ObservabilityConfig returns the telemetry settings for the given binary
// version and launch mode.
func (c *Config) ObservabilityConfig(version string, mode observability.AppMode) (observability.Config, error) {
	cfg := observability.DefaultConfig()
	cfg.ServiceVersion = version
	cfg.Mode = mode
	cfg.OTLPEndpoint = c.Observability.OTLPEndpoint
	cfg.OTLPHeaders = observability.ParseOTLPHeaders(c.Observability.OTLPHeaders)
	cfg.OTLPInsecure = c.Observability.OTLPInsecure
	cfg.SampleRatio = c.Observability.SampleRatio
	cfg.Prometheus = c.Observability.MetricsAddr != ""
	cfg.LogJSON = c.Logging.JSON

	if c.Logging.Level != "" {
		var level slog.Level

		if err := level.UnmarshalText([]byte(c.Logging.Level)); err != nil {
			return cfg, fmt.Errorf("logging.level: %w", err)
		}

		cfg.LogLevel = level
	}

	return cfg, nil
}
