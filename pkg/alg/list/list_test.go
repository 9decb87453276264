package list

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Construction Tests ---.

func TestNew_SortsAndMergesDuplicates(t *testing.T) {
	t.Parallel()

	l := New(Item{ID: 5, Freq: 1}, Item{ID: 2, Freq: 3}, Item{ID: 5, Freq: 2})

	assert.Equal(t, List{{ID: 2, Freq: 3}, {ID: 5, Freq: 3}}, l)
}

func TestFromIDs_BinaryFrequencies(t *testing.T) {
	t.Parallel()

	l := FromIDs(3, 1, 2)

	assert.Equal(t, []uint32{1, 2, 3}, l.IDs())
	assert.Equal(t, uint64(3), l.SumFreq())
}

func TestUnique_SumsAdjacentFrequencies(t *testing.T) {
	t.Parallel()

	l := List{{ID: 1, Freq: 1}, {ID: 1, Freq: 2}, {ID: 4, Freq: 1}, {ID: 4, Freq: 1}, {ID: 9, Freq: 7}}

	assert.Equal(t, List{{ID: 1, Freq: 3}, {ID: 4, Freq: 2}, {ID: 9, Freq: 7}}, l.Unique())
}

// --- Mutation Tests ---.

func TestPush_OutOfOrderFallsBackToAdd(t *testing.T) {
	t.Parallel()

	l := FromIDs(1, 5)
	l = l.Push(Item{ID: 7, Freq: 1})
	l = l.Push(Item{ID: 3, Freq: 1})
	l = l.Push(Item{ID: 5, Freq: 2})

	assert.Equal(t, List{{ID: 1, Freq: 1}, {ID: 3, Freq: 1}, {ID: 5, Freq: 3}, {ID: 7, Freq: 1}}, l)
}

func TestInsert_RejectsBadPosition(t *testing.T) {
	t.Parallel()

	l := FromIDs(1, 2)

	_, err := l.Insert(Item{ID: 3, Freq: 1}, 5)

	assert.ErrorIs(t, err, ErrPositionOutOfRange)
}

func TestInsert_KeepsOrderWhenPositionIsWrong(t *testing.T) {
	t.Parallel()

	l := FromIDs(1, 2, 8)

	l, err := l.Insert(Item{ID: 4, Freq: 1}, 0)
	require.NoError(t, err)

	assert.Equal(t, []uint32{1, 2, 4, 8}, l.IDs())
}

func TestDeleteItem(t *testing.T) {
	t.Parallel()

	l := FromIDs(1, 2, 3)

	l, err := l.DeleteItem(2)
	require.NoError(t, err)
	assert.Equal(t, []uint32{1, 3}, l.IDs())

	_, err = l.DeleteItem(2)
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestDeleteRange(t *testing.T) {
	t.Parallel()

	l := FromIDs(1, 2, 3, 4)

	l, err := l.DeleteRange(1, 3)
	require.NoError(t, err)
	assert.Equal(t, []uint32{1, 4}, l.IDs())

	_, err = l.DeleteRange(2, 1)
	assert.ErrorIs(t, err, ErrPositionOutOfRange)
}

func TestDeleteLessAndMoreFrequent(t *testing.T) {
	t.Parallel()

	l := List{{ID: 1, Freq: 1}, {ID: 2, Freq: 5}, {ID: 3, Freq: 3}}

	assert.Equal(t, []uint32{2, 3}, l.Clone().DeleteLessFrequent(3).IDs())
	assert.Equal(t, []uint32{1, 3}, l.Clone().DeleteMoreFrequent(3).IDs())
}

func TestConcatNormalize(t *testing.T) {
	t.Parallel()

	a := FromIDs(1, 4)
	b := FromIDs(4, 2)

	got := a.Clone().Concat(b).Normalize()

	assert.Equal(t, List{{ID: 1, Freq: 1}, {ID: 2, Freq: 1}, {ID: 4, Freq: 2}}, got)
}

func TestSortByFrequencyDesc_TiesByID(t *testing.T) {
	t.Parallel()

	l := List{{ID: 1, Freq: 2}, {ID: 2, Freq: 5}, {ID: 3, Freq: 2}, {ID: 0, Freq: 5}}
	l.SortByFrequencyDesc()

	assert.Equal(t, List{{ID: 0, Freq: 5}, {ID: 2, Freq: 5}, {ID: 1, Freq: 2}, {ID: 3, Freq: 2}}, l)
}

func TestFind(t *testing.T) {
	t.Parallel()

	l := List{{ID: 2, Freq: 4}, {ID: 6, Freq: 1}}

	it, ok := l.Find(2)
	require.True(t, ok)
	assert.Equal(t, uint32(4), it.Freq)

	_, ok = l.Find(3)
	assert.False(t, ok)
	assert.True(t, l.Contains(6))
}

func TestString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "1:1 2:3", List{{ID: 1, Freq: 1}, {ID: 2, Freq: 3}}.String())
	assert.Empty(t, List{}.String())
}

func TestClone_IsIndependent(t *testing.T) {
	t.Parallel()

	l := FromIDs(1, 2)
	c := l.Clone()
	c[0].Freq = 9

	assert.Equal(t, uint32(1), l[0].Freq)
	assert.Nil(t, List(nil).Clone())
}
