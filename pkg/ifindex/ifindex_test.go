package ifindex_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/sampledmh/pkg/alg/list"
	"github.com/Sumatoshi-tech/sampledmh/pkg/ifindex"
	"github.com/Sumatoshi-tech/sampledmh/pkg/listdb"
	"github.com/Sumatoshi-tech/sampledmh/pkg/weights"
)

func corpus() *listdb.DB {
	return listdb.FromLists(
		list.List{{ID: 0, Freq: 2}, {ID: 1, Freq: 1}},
		list.List{{ID: 1, Freq: 3}, {ID: 2, Freq: 1}},
		list.List{{ID: 0, Freq: 1}, {ID: 2, Freq: 1}, {ID: 3, Freq: 1}},
	)
}

func TestFromCorpus(t *testing.T) {
	t.Parallel()

	ifx := ifindex.FromCorpus(corpus())

	require.Equal(t, 4, ifx.Len())
	assert.Equal(t, uint32(3), ifx.Dim)
	assert.Equal(t, list.List{{ID: 0, Freq: 2}, {ID: 2, Freq: 1}}, ifx.At(0))
	assert.Equal(t, list.List{{ID: 0, Freq: 1}, {ID: 1, Freq: 3}}, ifx.At(1))
	assert.Equal(t, list.List{{ID: 2, Freq: 1}}, ifx.At(3))
}

func TestQuery_CountsMatchingItems(t *testing.T) {
	t.Parallel()

	ifx := ifindex.FromCorpus(corpus())

	got := ifindex.Query(ifx, list.FromIDs(0, 1, 99))

	assert.Equal(t, list.List{{ID: 0, Freq: 2}, {ID: 1, Freq: 1}, {ID: 2, Freq: 1}}, got)
}

func TestQueryFreq_SumsFrequencies(t *testing.T) {
	t.Parallel()

	ifx := ifindex.FromCorpus(corpus())

	got := ifindex.QueryFreq(ifx, list.FromIDs(0, 1))

	assert.Equal(t, list.List{{ID: 0, Freq: 3}, {ID: 1, Freq: 3}, {ID: 2, Freq: 1}}, got)
}

func TestQuery_Empty(t *testing.T) {
	t.Parallel()

	got := ifindex.Query(ifindex.FromCorpus(corpus()), nil)

	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestQueryMultiAndDiscard(t *testing.T) {
	t.Parallel()

	ifx := ifindex.FromCorpus(corpus())
	res := ifindex.QueryMulti(ifx, listdb.FromLists(list.FromIDs(0, 1), list.FromIDs(2, 3)))

	ifindex.DiscardLessFrequent(res, 2)

	assert.Equal(t, []uint32{0}, res.At(0).IDs())
	assert.Equal(t, []uint32{2}, res.At(1).IDs())

	res = ifindex.QueryMulti(ifx, listdb.FromLists(list.FromIDs(0, 1)))
	ifindex.DiscardMoreFrequent(res, 1)

	assert.Equal(t, []uint32{1, 2}, res.At(0).IDs())
}

func TestRankMoreFrequent(t *testing.T) {
	t.Parallel()

	res := listdb.FromLists(list.List{{ID: 0, Freq: 1}, {ID: 1, Freq: 4}})

	ifindex.RankMoreFrequent(res)

	assert.Equal(t, []uint32{1, 0}, res.At(0).IDs())
}

func TestWeight_AppliesIntWeight(t *testing.T) {
	t.Parallel()

	ifx := ifindex.FromCorpus(corpus())

	ifindex.Weight(ifx, weights.TermFreq)

	assert.Equal(t, weights.IntWeight(2), ifx.At(0)[0].Freq)

	ifx = ifindex.FromCorpus(corpus())
	ifindex.Weight(ifx, weights.BinTF)

	for _, postings := range ifx.Lists {
		for _, p := range postings {
			assert.Equal(t, uint32(1), p.Freq)
		}
	}
}

func TestWeight_ITF(t *testing.T) {
	t.Parallel()

	ifx := ifindex.FromCorpus(listdb.FromLists(
		list.FromIDs(0, 1),
		list.FromIDs(0, 2),
		list.FromIDs(0, 3),
	))

	ifindex.Weight(ifx, weights.ITF)

	want := weights.IntWeight(math.Log(6.0 / 3.0))
	for _, p := range ifx.At(0) {
		assert.Equal(t, want, p.Freq)
	}

	assert.Equal(t, weights.IntWeight(math.Log(6.0)), ifx.At(1)[0].Freq)
}

func TestWeight_PassesDocumentStats(t *testing.T) {
	t.Parallel()

	ifx := ifindex.FromCorpus(corpus())
	seen := map[[2]uint32]weights.Stats{}

	capture := func(s weights.Stats) float64 {
		seen[[2]uint32{s.TF, s.DF}] = s

		return 1
	}

	ifindex.Weight(ifx, capture)

	// item 1 in document 1: tf 3, df 2.
	s, ok := seen[[2]uint32{3, 2}]
	require.True(t, ok)

	assert.Equal(t, weights.Stats{
		TF:           3,
		DF:           2,
		CF:           4,
		CorpusSize:   3,
		CorpusTokens: 10,
		DocSize:      4,
		DocTerms:     2,
		VocabSize:    4,
	}, s)
}
