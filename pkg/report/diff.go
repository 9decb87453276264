package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/Sumatoshi-tech/sampledmh/pkg/listdb"
)

// Line operations of a set database diff.
const (
	OpEqual  = " "
	OpInsert = "+"
	OpDelete = "-"
)

// DiffLine is one list of a diff with its operation.
type DiffLine struct {
	Op   string `json:"op"   yaml:"op"`
	Text string `json:"text" yaml:"text"`
}

// DiffSummary is the line diff of two set databases, one line per list.
type DiffSummary struct {
	Added     int        `json:"added"     yaml:"added"`
	Removed   int        `json:"removed"   yaml:"removed"`
	Unchanged int        `json:"unchanged" yaml:"unchanged"`
	Lines     []DiffLine `json:"lines"     yaml:"lines"`
}

// Equal reports whether the databases hold the same lists in the same order.
func (d DiffSummary) Equal() bool {
	return d.Added == 0 && d.Removed == 0
}

func renderLines(db *listdb.DB) string {
	var sb strings.Builder

	for _, l := range db.Lists {
		sb.WriteString(l.String())
		sb.WriteByte('\n')
	}

	return sb.String()
}

// Diff compares a and b list by list.
func Diff(a, b *listdb.DB) DiffSummary {
	dmp := diffmatchpatch.New()

	charsA, charsB, lines := dmp.DiffLinesToChars(renderLines(a), renderLines(b))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(charsA, charsB, false), lines)

	var out DiffSummary

	for _, d := range diffs {
		op := OpEqual

		switch d.Type {
		case diffmatchpatch.DiffInsert:
			op = OpInsert
		case diffmatchpatch.DiffDelete:
			op = OpDelete
		case diffmatchpatch.DiffEqual:
		}

		for _, text := range strings.Split(strings.TrimSuffix(d.Text, "\n"), "\n") {
			out.Lines = append(out.Lines, DiffLine{Op: op, Text: text})

			switch op {
			case OpInsert:
				out.Added++
			case OpDelete:
				out.Removed++
			default:
				out.Unchanged++
			}
		}
	}

	return out
}

// WriteDiff prints changed lines in colour. Unchanged lines are printed
// only when context is true.
func WriteDiff(w io.Writer, d DiffSummary, context bool) error {
	added := color.New(color.FgGreen)
	removed := color.New(color.FgRed)

	for _, line := range d.Lines {
		var err error

		switch line.Op {
		case OpInsert:
			_, err = added.Fprintf(w, "+ %s\n", line.Text)
		case OpDelete:
			_, err = removed.Fprintf(w, "- %s\n", line.Text)
		default:
			if context {
				_, err = fmt.Fprintf(w, "  %s\n", line.Text)
			}
		}

		if err != nil {
			return fmt.Errorf("write diff: %w", err)
		}
	}

	_, err := fmt.Fprintf(w, "%d added, %d removed, %d unchanged\n", d.Added, d.Removed, d.Unchanged)
	if err != nil {
		return fmt.Errorf("write diff: %w", err)
	}

	return nil
}
