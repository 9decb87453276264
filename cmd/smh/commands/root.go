// Package commands implements CLI command handlers for smh.
package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/sampledmh/pkg/config"
	"github.com/Sumatoshi-tech/sampledmh/pkg/observability"
	"github.com/Sumatoshi-tech/sampledmh/pkg/version"
)

// globalOptions holds the persistent flags shared by every subcommand.
type globalOptions struct {
	configPath  string
	verbose     bool
	quiet       bool
	logJSON     bool
	metricsAddr string
}

// NewRootCommand creates the smh command tree.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "smh",
		Short: "Sampled Min-Hashing - discover co-occurring item sets and cluster sets",
		Long: `smh mines groups of highly co-occurring items from large set databases
with Sampled Min-Hashing and clusters sets with Min-Hash-Link.

Commands:
  ifindex   Build an inverted index from a corpus
  weights   Compute item weights
  mine      Mine co-occurring item sets
  prune     Prune mined item sets against an inverted index
  cluster   Cluster sets by single-link Min-Hash-Link
  search    Find similar sets with a Min-Hash index
  stats     Summarize a set database
  diff      Compare two set databases
  mcp       Start the MCP server`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "config file (default: smh.yaml in ., ./config, $HOME/.config/smh)")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")
	pf.BoolVarP(&opts.quiet, "quiet", "q", false, "suppress output")
	pf.BoolVar(&opts.logJSON, "log-json", false, "JSON-formatted logs")
	pf.StringVar(&opts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics at this address during the run")

	rootCmd.AddCommand(
		newIfindexCommand(opts),
		newWeightsCommand(opts),
		newMineCommand(opts),
		newPruneCommand(opts),
		newClusterCommand(opts),
		newSearchCommand(opts),
		newStatsCommand(opts),
		newDiffCommand(opts),
		newMCPCommand(opts),
		newConfigCommand(opts),
		newVersionCommand(),
	)

	return rootCmd
}

// env is the per-invocation runtime: configuration plus observability.
type env struct {
	cfg       *config.Config
	opts      *globalOptions
	providers observability.Providers
	logger    *slog.Logger
	red       *observability.REDMetrics
	engine    *observability.EngineMetrics
	diag      *observability.DiagnosticsServer
}

// setup loads configuration and initializes observability for one command.
func (o *globalOptions) setup(mode observability.AppMode) (*env, error) {
	cfg, err := config.LoadConfig(o.configPath)
	if err != nil {
		return nil, err
	}

	if o.logJSON {
		cfg.Logging.JSON = true
	}

	if o.metricsAddr != "" {
		cfg.Observability.MetricsAddr = o.metricsAddr
	}

	obsCfg, err := cfg.ObservabilityConfig(version.Version, mode)
	if err != nil {
		return nil, err
	}

	switch {
	case o.verbose:
		obsCfg.LogLevel = slog.LevelDebug
	case o.quiet:
		obsCfg.LogLevel = slog.LevelError
	}

	providers, err := observability.Init(obsCfg)
	if err != nil {
		return nil, fmt.Errorf("init observability: %w", err)
	}

	e := &env{cfg: cfg, opts: o, providers: providers, logger: providers.Logger}

	e.red, err = observability.NewREDMetrics(providers.Meter)
	if err == nil {
		e.engine, err = observability.NewEngineMetrics(providers.Meter)
	}

	if err == nil && cfg.Observability.MetricsAddr != "" {
		e.diag, err = observability.NewDiagnosticsServer(cfg.Observability.MetricsAddr, providers.MetricsHandler)
	}

	if err != nil {
		return nil, errors.Join(err, providers.Shutdown(context.Background()))
	}

	return e, nil
}

// close stops the diagnostics server and flushes telemetry.
func (e *env) close() {
	ctx := context.Background()

	if e.diag != nil {
		if err := e.diag.Close(ctx); err != nil {
			e.logger.Warn("diagnostics shutdown failed", "error", err)
		}
	}

	if err := e.providers.Shutdown(ctx); err != nil {
		e.logger.Warn("observability shutdown failed", "error", err)
	}
}

// track runs fn inside a command span and records RED metrics for it.
func (e *env) track(ctx context.Context, name string, fn func(ctx context.Context) error, attrs ...attribute.KeyValue) error {
	op := "cmd." + name

	ctx, span := e.providers.Tracer.Start(ctx, op,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
	defer span.End()

	done := e.red.TrackInflight(ctx, op)
	defer done()

	start := time.Now()
	err := fn(ctx)

	status := observability.StatusOK
	if err != nil {
		status = observability.StatusError

		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	e.red.RecordRequest(ctx, op, status, time.Since(start))

	return err
}

// run is the common RunE body: set up, track, tear down.
func (o *globalOptions) run(cmd *cobra.Command, name string, fn func(ctx context.Context, e *env) error) error {
	e, err := o.setup(observability.ModeCLI)
	if err != nil {
		return err
	}
	defer e.close()

	return e.track(cmd.Context(), name, func(ctx context.Context) error {
		return fn(ctx, e)
	})
}
