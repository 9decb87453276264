package sampledmh_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/sampledmh/pkg/alg/list"
	"github.com/Sumatoshi-tech/sampledmh/pkg/ifindex"
	"github.com/Sumatoshi-tech/sampledmh/pkg/listdb"
	"github.com/Sumatoshi-tech/sampledmh/pkg/sampledmh"
)

func pruneFixture() (ifx, mined *listdb.DB) {
	corpus := listdb.FromLists(
		list.FromIDs(0, 1, 2),
		list.FromIDs(0, 1, 2),
		list.FromIDs(0, 1, 2, 5),
		list.FromIDs(0, 1, 3),
		list.FromIDs(4),
	)

	mined = &listdb.DB{
		Lists: []list.List{
			list.FromIDs(0, 1, 2, 3),
			list.FromIDs(4, 5),
			list.FromIDs(0, 1),
			list.FromIDs(0, 1, 2),
		},
		Dim: 6,
	}

	return ifindex.FromCorpus(corpus), mined
}

func TestPrune(t *testing.T) {
	t.Parallel()

	ifx, mined := pruneFixture()

	require.NoError(t, sampledmh.Prune(ifx, mined, sampledmh.DefaultPruneOptions()))

	assert.Equal(t, []list.List{list.FromIDs(0, 1, 2), list.FromIDs(0, 1, 2)}, mined.Lists)
}

func TestPrune_Dedup(t *testing.T) {
	t.Parallel()

	ifx, mined := pruneFixture()

	opts := sampledmh.DefaultPruneOptions()
	opts.Dedup = true

	require.NoError(t, sampledmh.Prune(ifx, mined, opts))

	assert.Equal(t, []list.List{list.FromIDs(0, 1, 2)}, mined.Lists)
}

func TestPrune_LenientKeepsSmallSets(t *testing.T) {
	t.Parallel()

	ifx, mined := pruneFixture()

	require.NoError(t, sampledmh.Prune(ifx, mined, sampledmh.PruneOptions{MinSetSize: 2, MinHits: 1}))

	assert.Equal(t, 4, mined.Len())
	assert.Equal(t, list.FromIDs(0, 1, 2, 3), mined.At(0))
}

func TestPrune_InvalidThreshold(t *testing.T) {
	t.Parallel()

	ifx, mined := pruneFixture()

	opts := sampledmh.DefaultPruneOptions()
	opts.Overlap = 1.5

	require.ErrorIs(t, sampledmh.Prune(ifx, mined, opts), sampledmh.ErrInvalidThreshold)

	opts = sampledmh.DefaultPruneOptions()
	opts.Cooccurrence = -0.1

	require.ErrorIs(t, sampledmh.Prune(ifx, mined, opts), sampledmh.ErrInvalidThreshold)
	assert.Equal(t, 4, mined.Len())
}
