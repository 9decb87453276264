package mhlink

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/sampledmh/pkg/alg/list"
)

func TestState_JoinAndMerge(t *testing.T) {
	t.Parallel()

	st := newState(4)

	st.open(0)
	st.open(2)
	st.join(1, 1)
	require.NoError(t, st.verify())

	st.merge(1, 0)
	require.NoError(t, st.verify())

	assert.Equal(t, int64(1), st.merges)
	assert.Equal(t, []int{0, 0, 0}, st.clusterOf[:3])
	assert.Nil(t, st.clusters[1])

	st.openUnchecked()

	res := st.result(4)
	assert.Equal(t, []list.List{list.FromIDs(0, 1, 2), list.FromIDs(3)}, res.Lists)
	assert.Equal(t, uint32(4), res.Dim)
}

func TestState_VerifyDetectsViolations(t *testing.T) {
	t.Parallel()

	dup := newState(2)
	dup.open(0)
	dup.clusters = append(dup.clusters, []uint32{0})
	require.ErrorIs(t, dup.verify(), ErrPartitionViolated)

	stray := newState(2)
	stray.open(0)
	stray.clusters[0] = append(stray.clusters[0], 1)
	require.ErrorIs(t, stray.verify(), ErrPartitionViolated)

	wrongMap := newState(2)
	wrongMap.open(0)
	wrongMap.open(1)
	wrongMap.clusterOf[1] = 0
	require.ErrorIs(t, wrongMap.verify(), ErrPartitionViolated)

	lost := newState(2)
	lost.open(0)
	lost.clusters[0] = nil
	require.ErrorIs(t, lost.verify(), ErrPartitionViolated)
}
