package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/sampledmh/pkg/report"
)

// ErrDatabasesDiffer is returned by diff --exit-code when the inputs differ.
var ErrDatabasesDiffer = errors.New("databases differ")

func newDiffCommand(opts *globalOptions) *cobra.Command {
	var (
		showEqual bool
		exitCode bool
	)

	cmd := &cobra.Command{
		Use:   "diff A B",
		Short: "Compare two set databases list by list",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, "diff", func(_ context.Context, _ *env) error {
				a, err := loadDB(args[0])
				if err != nil {
					return err
				}

				b, err := loadDB(args[1])
				if err != nil {
					return err
				}

				d := report.Diff(a, b)

				if err = report.WriteDiff(cmd.OutOrStdout(), d, showEqual); err != nil {
					return err
				}

				if exitCode && !d.Equal() {
					return ErrDatabasesDiffer
				}

				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&showEqual, "context", false, "also print unchanged lists")
	cmd.Flags().BoolVar(&exitCode, "exit-code", false, "fail when the databases differ")

	return cmd
}
