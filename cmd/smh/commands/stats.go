package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/sampledmh/pkg/report"
)

func newStatsCommand(opts *globalOptions) *cobra.Command {
	var (
		format string
		plot   string
	)

	cmd := &cobra.Command{
		Use:   "stats DATABASE",
		Short: "Summarize the set sizes of a database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, "stats", func(_ context.Context, _ *env) error {
				db, err := loadDB(args[0])
				if err != nil {
					return err
				}

				summary := report.Summarize(db)
				out := cmd.OutOrStdout()

				switch format {
				case formatTable:
					err = report.WriteTable(out, filepath.Base(args[0]), summary)
				case formatJSON:
					err = report.WriteJSON(out, summary)
				case formatYAML:
					err = report.WriteYAML(out, summary)
				default:
					err = fmt.Errorf("%w: %q", ErrUnknownFormat, format)
				}

				if err != nil || plot == "" {
					return err
				}

				f, err := os.Create(plot)
				if err != nil {
					return fmt.Errorf("create %s: %w", plot, err)
				}

				plotErr := report.WriteSizeHistogram(f, filepath.Base(args[0]), db)
				closeErr := f.Close()

				if plotErr != nil {
					return plotErr
				}

				return closeErr
			})
		},
	}

	cmd.Flags().StringVar(&format, "format", formatTable, "output format: table, json, yaml")
	cmd.Flags().StringVar(&plot, "plot", "", "write an HTML set size histogram to this file")

	return cmd
}
