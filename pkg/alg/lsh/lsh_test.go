package lsh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/sampledmh/pkg/alg/list"
	"github.com/Sumatoshi-tech/sampledmh/pkg/listdb"
)

// Test constants for LSH index tests.
const (
	// testTables is the number of tables in the default index.
	testTables = 20

	// testTupleSize is the tuple size of the default index.
	testTupleSize = 2

	// testTableSize is the bucket count of the default index.
	testTableSize = 1 << 8

	// testSeed seeds the default index.
	testSeed = 99
)

func testDB() *listdb.DB {
	return listdb.FromLists(
		list.FromIDs(0, 1, 2, 3),
		list.FromIDs(0, 1, 2, 3),
		list.FromIDs(0, 1, 2, 4),
		list.FromIDs(10, 11, 12, 13),
		list.List{},
	)
}

func newTestIndex(t *testing.T) *Index {
	t.Helper()

	idx, err := New(testDB(), Options{
		NumberOfTables: testTables,
		TupleSize:      testTupleSize,
		TableSize:      testTableSize,
		Seed:           testSeed,
	})
	require.NoError(t, err)

	return idx
}

// --- Constructor Tests ---.

func TestNew_InvalidParams(t *testing.T) {
	t.Parallel()

	_, err := New(testDB(), Options{NumberOfTables: 0, TupleSize: 1, TableSize: 8})
	require.ErrorIs(t, err, ErrInvalidParams)

	_, err = New(nil, Options{NumberOfTables: 1, TupleSize: 1, TableSize: 8})
	require.ErrorIs(t, err, ErrNilDB)

	_, err = New(testDB(), Options{NumberOfTables: 1, TupleSize: 1, TableSize: 7})
	require.Error(t, err)
}

// --- Query Tests ---.

func TestQuery_FindsIdenticalSetsInEveryTable(t *testing.T) {
	t.Parallel()

	idx := newTestIndex(t)

	got, err := idx.Query(list.FromIDs(0, 1, 2, 3))
	require.NoError(t, err)

	first, ok := got.Find(0)
	require.True(t, ok)
	assert.Equal(t, uint32(testTables), first.Freq)

	second, ok := got.Find(1)
	require.True(t, ok)
	assert.Equal(t, uint32(testTables), second.Freq)

	assert.False(t, got.Contains(3))
}

func TestQuery_UnknownItemsYieldNothing(t *testing.T) {
	t.Parallel()

	idx := newTestIndex(t)

	got, err := idx.Query(list.FromIDs(500, 501))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCandidates_MatchesQuery(t *testing.T) {
	t.Parallel()

	idx := newTestIndex(t)
	q := list.FromIDs(0, 1, 2, 3)

	neighbors, err := idx.Query(q)
	require.NoError(t, err)

	bm, err := idx.Candidates(q)
	require.NoError(t, err)

	assert.Equal(t, neighbors.IDs(), bm.ToArray())
}

func TestQueryThreshold_RanksBySimilarity(t *testing.T) {
	t.Parallel()

	idx := newTestIndex(t)

	got, err := idx.QueryThreshold(list.FromIDs(0, 1, 2, 3), list.Jaccard, 1.0)
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, Neighbor{ID: 0, Score: 1}, got[0])
	assert.Equal(t, Neighbor{ID: 1, Score: 1}, got[1])

	_, err = idx.QueryThreshold(list.FromIDs(0), nil, 0)
	require.ErrorIs(t, err, ErrNilSimilarity)
}

func TestQueryMulti(t *testing.T) {
	t.Parallel()

	idx := newTestIndex(t)
	queries := listdb.FromLists(list.FromIDs(10, 11, 12, 13), list.List{})

	out, err := idx.QueryMulti(queries)
	require.NoError(t, err)

	require.Equal(t, 2, out.Len())
	assert.True(t, out.At(0).Contains(3))
	assert.Empty(t, out.At(1))
}

func TestIndex_DeterministicForSeed(t *testing.T) {
	t.Parallel()

	a, b := newTestIndex(t), newTestIndex(t)
	q := list.FromIDs(0, 1, 2, 4)

	ra, err := a.Query(q)
	require.NoError(t, err)

	rb, err := b.Query(q)
	require.NoError(t, err)

	assert.Equal(t, ra, rb)
}

func TestClose(t *testing.T) {
	t.Parallel()

	idx := newTestIndex(t)
	idx.Close()

	assert.Zero(t, idx.Len())
}
