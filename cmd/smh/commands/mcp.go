package commands

import (
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/sampledmh/pkg/mcp"
	"github.com/Sumatoshi-tech/sampledmh/pkg/observability"
)

func newMCPCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for AI agent integration",
		Long: `Start a Model Context Protocol (MCP) server on stdio transport.

The MCP server exposes smh capabilities as tools that AI agents can discover
and invoke:
  - smh_mine: Mine co-occurring item sets from documents
  - smh_cluster: Cluster sets with Min-Hash-Link
  - smh_similarity: Exact similarity of two sets`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := opts.setup(observability.ModeMCP)
			if err != nil {
				return err
			}
			defer e.close()

			srv := mcp.NewServer(mcp.ServerDeps{
				Logger:  e.logger,
				Metrics: e.red,
				Engine:  e.engine,
				Tracer:  e.providers.Tracer,
			})

			return srv.Run(cmd.Context())
		},
	}
}
