package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// configName is the config file name without extension.
const configName = "smh"

// configType is the config file format.
const configType = "yaml"

// envPrefix is the environment variable prefix for smh settings.
const envPrefix = "SMH"

// envKeySeparator is the nested key separator in environment variable names.
const envKeySeparator = "_"

// LoadConfig loads configuration from file, env vars, and defaults.
// If configPath is non-empty, it is used as the explicit config file path.
// Otherwise smh.yaml is searched in the working directory, ./config and
// $HOME/.config/smh. A missing config file is not an error.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	applyDefaults(viperCfg)

	viperCfg.SetConfigType(configType)
	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	viperCfg.AutomaticEnv()

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath("./config")

		home, err := os.UserHomeDir()
		if err == nil {
			viperCfg.AddConfigPath(filepath.Join(home, ".config", configName))
		}
	}

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFound) {
			return nil, fmt.Errorf("read config: %w", readErr)
		}
	}

	var cfg Config

	unmarshalErr := viperCfg.Unmarshal(&cfg)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal config: %w", unmarshalErr)
	}

	validateErr := cfg.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("validate config: %w", validateErr)
	}

	return &cfg, nil
}

func applyDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("mine.tuple_size", DefaultMineTupleSize)
	viperCfg.SetDefault("mine.tuples", DefaultMineTuples)
	viperCfg.SetDefault("mine.table_size", DefaultMineTableSize)
	viperCfg.SetDefault("mine.weights", "")
	viperCfg.SetDefault("mine.seed", 0)
	viperCfg.SetDefault("mine.workers", 0)
	viperCfg.SetDefault("mine.expand", false)

	viperCfg.SetDefault("cluster.tuple_size", DefaultClusterTupleSize)
	viperCfg.SetDefault("cluster.tuples", DefaultClusterTuples)
	viperCfg.SetDefault("cluster.table_size", DefaultClusterTableSize)
	viperCfg.SetDefault("cluster.threshold", DefaultClusterThreshold)
	viperCfg.SetDefault("cluster.min_cluster_size", DefaultClusterMinClusterSize)
	viperCfg.SetDefault("cluster.similarity", DefaultClusterSimilarity)
	viperCfg.SetDefault("cluster.weights", "")
	viperCfg.SetDefault("cluster.seed", 0)
	viperCfg.SetDefault("cluster.workers", 0)

	viperCfg.SetDefault("prune.min_set_size", DefaultPruneMinSetSize)
	viperCfg.SetDefault("prune.min_hits", DefaultPruneMinHits)
	viperCfg.SetDefault("prune.overlap", DefaultPruneOverlap)
	viperCfg.SetDefault("prune.cooccurrence", DefaultPruneCooccurrence)
	viperCfg.SetDefault("prune.dedup", false)

	viperCfg.SetDefault("search.tables", DefaultSearchTables)
	viperCfg.SetDefault("search.tuple_size", DefaultSearchTupleSize)
	viperCfg.SetDefault("search.table_size", DefaultSearchTableSize)
	viperCfg.SetDefault("search.threshold", DefaultSearchThreshold)
	viperCfg.SetDefault("search.similarity", DefaultSearchSimilarity)
	viperCfg.SetDefault("search.top_k", DefaultSearchTopK)
	viperCfg.SetDefault("search.seed", 0)

	viperCfg.SetDefault("logging.level", DefaultLogLevel)
	viperCfg.SetDefault("logging.json", DefaultLogJSON)

	viperCfg.SetDefault("observability.otlp_endpoint", "")
	viperCfg.SetDefault("observability.otlp_headers", "")
	viperCfg.SetDefault("observability.otlp_insecure", false)
	viperCfg.SetDefault("observability.sample_ratio", 0.0)
	viperCfg.SetDefault("observability.metrics_addr", "")
}
