// Package config provides YAML, environment, and default configuration for
// the smh command line and MCP server.
package config

import (
	"errors"
	"slices"
)

// Config is the top-level configuration struct for smh.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Mine          MineConfig          `mapstructure:"mine" yaml:"mine"`
	Cluster       ClusterConfig       `mapstructure:"cluster" yaml:"cluster"`
	Prune         PruneConfig         `mapstructure:"prune" yaml:"prune"`
	Search        SearchConfig        `mapstructure:"search" yaml:"search"`
	Logging       LoggingConfig       `mapstructure:"logging" yaml:"logging"`
	Observability ObservabilityConfig `mapstructure:"observability" yaml:"observability"`
}

// MineConfig holds Sampled Min-Hashing settings.
type MineConfig struct {
	TupleSize int `mapstructure:"tuple_size" yaml:"tuple_size"`
	Tuples    int `mapstructure:"tuples" yaml:"tuples"`
	// TableSize is the log2 of the bucket count.
	TableSize int    `mapstructure:"table_size" yaml:"table_size"`
	Weights   string `mapstructure:"weights" yaml:"weights"`
	Seed      uint64 `mapstructure:"seed" yaml:"seed"`
	Workers   int    `mapstructure:"workers" yaml:"workers"`
	Expand    bool   `mapstructure:"expand" yaml:"expand"`
}

// ClusterConfig holds Min-Hash-Link settings.
type ClusterConfig struct {
	TupleSize      int     `mapstructure:"tuple_size" yaml:"tuple_size"`
	Tuples         int     `mapstructure:"tuples" yaml:"tuples"`
	TableSize      int     `mapstructure:"table_size" yaml:"table_size"`
	Threshold      float64 `mapstructure:"threshold" yaml:"threshold"`
	MinClusterSize int     `mapstructure:"min_cluster_size" yaml:"min_cluster_size"`
	Similarity     string  `mapstructure:"similarity" yaml:"similarity"`
	Weights        string  `mapstructure:"weights" yaml:"weights"`
	Seed           uint64  `mapstructure:"seed" yaml:"seed"`
	Workers        int     `mapstructure:"workers" yaml:"workers"`
}

// PruneConfig holds mined-set pruning settings.
type PruneConfig struct {
	MinSetSize   int     `mapstructure:"min_set_size" yaml:"min_set_size"`
	MinHits      int     `mapstructure:"min_hits" yaml:"min_hits"`
	Overlap      float64 `mapstructure:"overlap" yaml:"overlap"`
	Cooccurrence float64 `mapstructure:"cooccurrence" yaml:"cooccurrence"`
	Dedup        bool    `mapstructure:"dedup" yaml:"dedup"`
}

// SearchConfig holds similarity search settings.
type SearchConfig struct {
	Tables     int     `mapstructure:"tables" yaml:"tables"`
	TupleSize  int     `mapstructure:"tuple_size" yaml:"tuple_size"`
	TableSize  int     `mapstructure:"table_size" yaml:"table_size"`
	Threshold  float64 `mapstructure:"threshold" yaml:"threshold"`
	Similarity string  `mapstructure:"similarity" yaml:"similarity"`
	TopK       int     `mapstructure:"top_k" yaml:"top_k"`
	Seed       uint64  `mapstructure:"seed" yaml:"seed"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	JSON  bool   `mapstructure:"json" yaml:"json"`
}

// ObservabilityConfig holds OpenTelemetry and Prometheus settings.
type ObservabilityConfig struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint" yaml:"otlp_endpoint"`
	OTLPHeaders  string  `mapstructure:"otlp_headers" yaml:"otlp_headers"`
	OTLPInsecure bool    `mapstructure:"otlp_insecure" yaml:"otlp_insecure"`
	SampleRatio  float64 `mapstructure:"sample_ratio" yaml:"sample_ratio"`
	MetricsAddr  string  `mapstructure:"metrics_addr" yaml:"metrics_addr"`
}

// maxTableSize bounds the bucket count exponent.
const maxTableSize = 30

var logLevels = []string{"debug", "info", "warn", "error"}

// Sentinel errors for configuration validation.
var (
	// ErrInvalidTupleSize indicates a negative tuple size.
	ErrInvalidTupleSize = errors.New("tuple_size must be non-negative")
	// ErrInvalidTuples indicates a negative number of tuples.
	ErrInvalidTuples = errors.New("tuples must be non-negative")
	// ErrInvalidTableSize indicates a bucket count exponent outside [0, 30].
	ErrInvalidTableSize = errors.New("table_size must be between 0 and 30")
	// ErrInvalidWorkers indicates a negative worker count.
	ErrInvalidWorkers = errors.New("workers must be non-negative")
	// ErrInvalidThreshold indicates a threshold outside [0, 1].
	ErrInvalidThreshold = errors.New("threshold must be between 0 and 1")
	// ErrInvalidMinSize indicates a negative minimum size or hit count.
	ErrInvalidMinSize = errors.New("minimum sizes must be non-negative")
	// ErrInvalidTables indicates a negative number of search tables.
	ErrInvalidTables = errors.New("search.tables must be non-negative")
	// ErrInvalidLogLevel indicates an unknown log level.
	ErrInvalidLogLevel = errors.New("logging.level must be one of debug, info, warn, error")
	// ErrInvalidSampleRatio indicates a sample ratio outside [0, 1].
	ErrInvalidSampleRatio = errors.New("observability.sample_ratio must be between 0 and 1")
)

// Validate checks Config invariants and returns the first error found.
// Zero values are valid and mean "use the built-in default".
func (c *Config) Validate() error {
	hashing := []struct {
		tupleSize, tuples, tableSize, workers int
	}{
		{c.Mine.TupleSize, c.Mine.Tuples, c.Mine.TableSize, c.Mine.Workers},
		{c.Cluster.TupleSize, c.Cluster.Tuples, c.Cluster.TableSize, c.Cluster.Workers},
		{c.Search.TupleSize, 0, c.Search.TableSize, 0},
	}

	for _, h := range hashing {
		if err := validateHashing(h.tupleSize, h.tuples, h.tableSize, h.workers); err != nil {
			return err
		}
	}

	if !fraction(c.Cluster.Threshold) || !fraction(c.Search.Threshold) ||
		!fraction(c.Prune.Overlap) || !fraction(c.Prune.Cooccurrence) {
		return ErrInvalidThreshold
	}

	if c.Cluster.MinClusterSize < 0 || c.Prune.MinSetSize < 0 || c.Prune.MinHits < 0 || c.Search.TopK < 0 {
		return ErrInvalidMinSize
	}

	if c.Search.Tables < 0 {
		return ErrInvalidTables
	}

	if c.Logging.Level != "" && !slices.Contains(logLevels, c.Logging.Level) {
		return ErrInvalidLogLevel
	}

	if !fraction(c.Observability.SampleRatio) {
		return ErrInvalidSampleRatio
	}

	return nil
}

func validateHashing(tupleSize, tuples, tableSize, workers int) error {
	switch {
	case tupleSize < 0:
		return ErrInvalidTupleSize
	case tuples < 0:
		return ErrInvalidTuples
	case tableSize < 0 || tableSize > maxTableSize:
		return ErrInvalidTableSize
	case workers < 0:
		return ErrInvalidWorkers
	}

	return nil
}

func fraction(v float64) bool {
	return v >= 0 && v <= 1
}
