package commands

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/sampledmh/pkg/listdb"
	"github.com/Sumatoshi-tech/sampledmh/pkg/persist"
	"github.com/Sumatoshi-tech/sampledmh/pkg/weights"
)

// progressBarWidth is the rendered width of per-round progress bars.
const progressBarWidth = 40

func loadDB(path string) (*listdb.DB, error) {
	db, err := persist.LoadDB(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	return db, nil
}

func saveDB(path string, db *listdb.DB) error {
	err := persist.SaveDB(path, db)
	if err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}

	return nil
}

// loadWeights reads a weight vector, or returns nil when path is empty.
func loadWeights(path string) ([]float64, error) {
	if path == "" {
		return nil, nil
	}

	w, err := weights.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load weights %s: %w", path, err)
	}

	return w, nil
}

// newProgress returns a per-round progress callback drawing to w, or nil
// when quiet.
func newProgress(w io.Writer, description string, quiet bool) func(round, total int) {
	if quiet {
		return nil
	}

	var bar *progressbar.ProgressBar

	return func(round, total int) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetDescription(description),
				progressbar.OptionSetWidth(progressBarWidth),
				progressbar.OptionShowCount(),
				progressbar.OptionSetPredictTime(true),
				progressbar.OptionSetWriter(w),
				progressbar.OptionOnCompletion(func() {
					fmt.Fprintln(w)
				}),
			)
		}

		_ = bar.Set(round)
	}
}

// status prints a coloured one-line result unless quiet.
func status(cmd *cobra.Command, opts *globalOptions, format string, args ...any) {
	if opts.quiet {
		return
	}

	color.New(color.FgGreen).Fprintf(cmd.ErrOrStderr(), format+"\n", args...)
}

// count formats n with thousands separators.
func count(n int) string {
	return humanize.Comma(int64(n))
}

// override copies a flag's value into dst when the flag was set explicitly.
func override[T any](cmd *cobra.Command, name string, dst *T, get func(string) (T, error)) error {
	if !cmd.Flags().Changed(name) {
		return nil
	}

	v, err := get(name)
	if err != nil {
		return fmt.Errorf("flag --%s: %w", name, err)
	}

	*dst = v

	return nil
}
