package listdb_test

import (
	"bytes"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/sampledmh/pkg/alg/list"
	"github.com/Sumatoshi-tech/sampledmh/pkg/listdb"
)

// testRoundTripText is the canonical serialization of [{1:1,2:1},{3:2}].
const testRoundTripText = "2 1:1 2:1\n1 3:2\n"

func sizes(db *listdb.DB) []int { return db.Sizes() }

// --- Bulk Operation Tests ---.

func TestDeleteSmallest_KeepsExactMinimum(t *testing.T) {
	t.Parallel()

	db := listdb.FromLists(
		list.FromIDs(1),
		list.FromIDs(1, 2, 3),
		list.FromIDs(4, 5),
		list.FromIDs(6, 7, 8, 9),
	)

	db.DeleteSmallest(3)

	assert.Equal(t, []int{4, 3}, sizes(db))
}

func TestDeleteSmallest_AllTooSmall(t *testing.T) {
	t.Parallel()

	db := listdb.FromLists(list.FromIDs(1), list.FromIDs(2))

	db.DeleteSmallest(5)

	assert.Zero(t, db.Len())
}

func TestDeleteLargest_KeepsExactMaximum(t *testing.T) {
	t.Parallel()

	db := listdb.FromLists(list.FromIDs(1, 2, 3), list.FromIDs(1), list.FromIDs(1, 2))

	db.DeleteLargest(2)

	assert.Equal(t, []int{1, 2}, sizes(db))
}

func TestSortBySizeDesc_Stable(t *testing.T) {
	t.Parallel()

	a, b, c := list.FromIDs(1, 2), list.FromIDs(3, 4), list.FromIDs(5)
	db := listdb.FromLists(c, a, b)

	db.SortBySizeDesc()

	assert.Equal(t, []list.List{a, b, c}, db.Lists)
}

func TestPushInsertDelete(t *testing.T) {
	t.Parallel()

	db := listdb.New(4, 0)
	db.Push(list.FromIDs(1))
	db.Push(list.FromIDs(9))
	require.NoError(t, db.Insert(list.FromIDs(4), 1))

	assert.Equal(t, uint32(10), db.Dim)
	assert.Equal(t, []uint32{4}, db.At(1).IDs())

	require.NoError(t, db.DeletePosition(0))
	assert.Equal(t, 2, db.Len())
	assert.ErrorIs(t, db.DeletePosition(5), listdb.ErrPositionOutOfRange)

	last, err := db.Pop()
	require.NoError(t, err)
	assert.Equal(t, []uint32{9}, last.IDs())
}

func TestPop_Empty(t *testing.T) {
	t.Parallel()

	_, err := listdb.New(0, 0).Pop()

	assert.ErrorIs(t, err, listdb.ErrEmptyDB)
}

func TestAppend_MovesLists(t *testing.T) {
	t.Parallel()

	a := listdb.FromLists(list.FromIDs(1))
	b := listdb.FromLists(list.FromIDs(7), list.FromIDs(2))

	a.Append(b)

	assert.Equal(t, 3, a.Len())
	assert.Equal(t, uint32(8), a.Dim)
	assert.Zero(t, b.Len())
}

func TestMergeLists(t *testing.T) {
	t.Parallel()

	db := listdb.FromLists(list.FromIDs(1, 2), list.FromIDs(2, 3))

	require.NoError(t, db.MergeLists(0, 1))

	assert.Equal(t, list.List{{ID: 1, Freq: 1}, {ID: 2, Freq: 2}, {ID: 3, Freq: 1}}, db.At(0))
	assert.Empty(t, db.At(1))
}

func TestApplyToAll(t *testing.T) {
	t.Parallel()

	db := listdb.FromLists(list.List{{ID: 1, Freq: 1}, {ID: 2, Freq: 3}})

	db.ApplyToAll(func(l list.List) list.List { return l.DeleteLessFrequent(2) })

	assert.Equal(t, []uint32{2}, db.At(0).IDs())
}

func TestDedup(t *testing.T) {
	t.Parallel()

	db := listdb.FromLists(
		list.FromIDs(1, 2),
		list.FromIDs(3),
		list.List{{ID: 1, Freq: 4}, {ID: 2, Freq: 1}},
		list.FromIDs(3),
	)

	removed := db.Dedup()

	assert.Equal(t, 2, removed)
	assert.Equal(t, []int{2, 1}, sizes(db))
}

// --- Text Format Tests ---.

func TestWrite_CanonicalText(t *testing.T) {
	t.Parallel()

	db := listdb.FromLists(list.FromIDs(1, 2), list.List{{ID: 3, Freq: 2}})

	var buf bytes.Buffer
	require.NoError(t, db.Write(&buf))

	assert.Equal(t, testRoundTripText, buf.String())
}

func TestRead_RoundTrip(t *testing.T) {
	t.Parallel()

	db, err := listdb.Read(strings.NewReader(testRoundTripText))
	require.NoError(t, err)

	assert.Equal(t, uint32(4), db.Dim)
	assert.Equal(t, list.List{{ID: 3, Freq: 2}}, db.At(1))

	var buf bytes.Buffer
	require.NoError(t, db.Write(&buf))
	assert.Equal(t, testRoundTripText, buf.String())
}

func TestRead_SkipsBlankLinesAndSorts(t *testing.T) {
	t.Parallel()

	db, err := listdb.Read(strings.NewReader("\n2 5:1 2:1\n\n0\n"))
	require.NoError(t, err)

	require.Equal(t, 2, db.Len())
	assert.Equal(t, []uint32{2, 5}, db.At(0).IDs())
	assert.Empty(t, db.At(1))
}

func TestRead_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  error
	}{
		{name: "bad size", input: "x 1:1\n", want: listdb.ErrMalformedLine},
		{name: "truncated", input: "3 1:1 2:1\n", want: listdb.ErrSizeMismatch},
		{name: "missing colon", input: "1 7\n", want: listdb.ErrMalformedLine},
		{name: "bad id", input: "1 a:1\n", want: listdb.ErrMalformedLine},
		{name: "id past max", input: "2 1:1 4294967295:1\n", want: listdb.ErrMalformedLine},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := listdb.Read(strings.NewReader(tt.input))

			require.ErrorIs(t, err, tt.want)

			var fe *listdb.FormatError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, 1, fe.Line)
		})
	}
}

func TestSaveLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "db.txt")
	db := listdb.FromLists(list.FromIDs(1, 2), list.List{{ID: 3, Freq: 2}})

	require.NoError(t, db.Save(path))

	loaded, err := listdb.Load(path)
	require.NoError(t, err)
	assert.Equal(t, db.Lists, loaded.Lists)
}

func TestDim_SaturatesAtMaxID(t *testing.T) {
	t.Parallel()

	db := listdb.FromLists(list.FromIDs(1, listdb.MaxID))
	assert.Equal(t, uint32(math.MaxUint32), db.Dim)

	db.Push(list.FromIDs(math.MaxUint32))
	assert.Equal(t, uint32(math.MaxUint32), db.Dim)
	require.ErrorIs(t, db.Validate(), listdb.ErrIDOutOfRange)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		db   *listdb.DB
		want error
		row  int
	}{
		{name: "valid", db: listdb.FromLists(list.FromIDs(1, 2), list.FromIDs(3))},
		{
			name: "unsorted",
			db:   &listdb.DB{Lists: []list.List{list.FromIDs(1), {{ID: 5}, {ID: 2}}}, Dim: 6},
			want: listdb.ErrUnsorted,
			row:  2,
		},
		{
			name: "duplicate",
			db:   &listdb.DB{Lists: []list.List{{{ID: 2}, {ID: 2}}}, Dim: 3},
			want: listdb.ErrUnsorted,
			row:  1,
		},
		{
			name: "beyond dim",
			db:   &listdb.DB{Lists: []list.List{list.FromIDs(4)}, Dim: 4},
			want: listdb.ErrIDOutOfRange,
			row:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.db.Validate()
			if tt.want == nil {
				require.NoError(t, err)

				return
			}

			require.ErrorIs(t, err, tt.want)

			var fe *listdb.FormatError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tt.row, fe.Line)
		})
	}
}

func TestFitDim_UnsortedLists(t *testing.T) {
	t.Parallel()

	db := &listdb.DB{Lists: []list.List{{{ID: 5}, {ID: 2}}}}
	db.FitDim()

	assert.Equal(t, uint32(6), db.Dim)
}
