package report_test

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"github.com/Sumatoshi-tech/sampledmh/pkg/alg/list"
	"github.com/Sumatoshi-tech/sampledmh/pkg/listdb"
	"github.com/Sumatoshi-tech/sampledmh/pkg/report"
)

func TestDiff(t *testing.T) {
	t.Parallel()

	a := listdb.FromLists(list.FromIDs(1, 2), list.FromIDs(3), list.FromIDs(4, 5))
	b := listdb.FromLists(list.FromIDs(1, 2), list.FromIDs(4, 5), list.FromIDs(6))

	d := report.Diff(a, b)

	assert.Equal(t, 1, d.Added)
	assert.Equal(t, 1, d.Removed)
	assert.Equal(t, 2, d.Unchanged)
	assert.False(t, d.Equal())
	assert.Equal(t, []report.DiffLine{
		{Op: report.OpEqual, Text: "1:1 2:1"},
		{Op: report.OpDelete, Text: "3:1"},
		{Op: report.OpEqual, Text: "4:1 5:1"},
		{Op: report.OpInsert, Text: "6:1"},
	}, d.Lines)
}

func TestDiff_Identical(t *testing.T) {
	t.Parallel()

	db := listdb.FromLists(list.FromIDs(1, 2), list.List{}, list.FromIDs(3))

	d := report.Diff(db, db.Clone())

	assert.True(t, d.Equal())
	assert.Equal(t, 3, d.Unchanged)
}

//nolint:paralleltest // mutates the color.NoColor global.
func TestWriteDiff(t *testing.T) {
	saved := color.NoColor
	color.NoColor = true

	t.Cleanup(func() { color.NoColor = saved })

	a := listdb.FromLists(list.FromIDs(1), list.FromIDs(2))
	b := listdb.FromLists(list.FromIDs(1), list.FromIDs(3))

	var buf bytes.Buffer
	assert.NoError(t, report.WriteDiff(&buf, report.Diff(a, b), false))

	assert.Equal(t, "- 2:1\n+ 3:1\n1 added, 1 removed, 1 unchanged\n", buf.String())
}
