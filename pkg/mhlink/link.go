package mhlink

import (
	"fmt"

	"github.com/Sumatoshi-tech/sampledmh/pkg/alg/list"
	"github.com/Sumatoshi-tech/sampledmh/pkg/alg/minhash"
	"github.com/Sumatoshi-tech/sampledmh/pkg/listdb"
	"github.com/Sumatoshi-tech/sampledmh/pkg/safeconv"
)

// state is the cluster assignment shared by all rounds. A set is checked
// once it belongs to a cluster; clusterOf is meaningful only for checked sets.
type state struct {
	checked   []bool
	clusterOf []int
	clusters  [][]uint32
	merges    int64
}

func newState(n int) *state {
	return &state{checked: make([]bool, n), clusterOf: make([]int, n)}
}

func (s *state) open(id uint32) {
	s.checked[id] = true
	s.clusterOf[id] = len(s.clusters)
	s.clusters = append(s.clusters, []uint32{id})
}

func (s *state) openUnchecked() {
	for id, ok := range s.checked {
		if !ok {
			s.open(safeconv.MustIntToUint32(id))
		}
	}
}

func (s *state) join(id uint32, cluster int) {
	s.checked[id] = true
	s.clusterOf[id] = cluster
	s.clusters[cluster] = append(s.clusters[cluster], id)
}

// merge moves every member of the higher-numbered cluster into the lower one.
func (s *state) merge(a, b int) {
	lo, hi := min(a, b), max(a, b)

	for _, id := range s.clusters[hi] {
		s.clusterOf[id] = lo
	}

	s.clusters[lo] = append(s.clusters[lo], s.clusters[hi]...)
	s.clusters[hi] = nil
	s.merges++
}

// verify checks that every checked set sits in exactly one cluster, the
// one clusterOf names, and that no unchecked set is in any cluster.
func (s *state) verify() error {
	seen := make([]bool, len(s.checked))

	for cid, members := range s.clusters {
		for _, id := range members {
			switch {
			case int(id) >= len(seen) || !s.checked[id]:
				return fmt.Errorf("set %d in cluster %d is unchecked: %w", id, cid, ErrPartitionViolated)
			case seen[id]:
				return fmt.Errorf("set %d appears twice: %w", id, ErrPartitionViolated)
			case s.clusterOf[id] != cid:
				return fmt.Errorf("set %d in cluster %d maps to %d: %w", id, cid, s.clusterOf[id], ErrPartitionViolated)
			}

			seen[id] = true
		}
	}

	for id, ok := range s.checked {
		if ok && !seen[id] {
			return fmt.Errorf("checked set %d has no cluster: %w", id, ErrPartitionViolated)
		}
	}

	return nil
}

// result returns the non-empty clusters with member ids in ascending order.
func (s *state) result(n int) *listdb.DB {
	out := listdb.New(len(s.clusters), safeconv.MustIntToUint32(n))

	for _, members := range s.clusters {
		if len(members) == 0 {
			continue
		}

		out.Lists = append(out.Lists, list.FromIDs(members...))
	}

	return out
}

type linker struct {
	db        *listdb.DB
	st        *state
	sim       list.Func
	threshold float64
	verify    bool
}

// round scans the sets in ascending id order. An unchecked set opens a new
// cluster; every other set sharing its bucket whose similarity exceeds the
// threshold joins that cluster, or has its cluster merged with it. The
// bucket is released once its first member has been processed.
func (lk *linker) round(tbl *minhash.Table, indices []int) error {
	for j := range lk.db.Lists {
		id := safeconv.MustIntToUint32(j)

		if !lk.st.checked[j] {
			lk.st.open(id)
		}

		if idx := indices[j]; idx >= 0 {
			if err := lk.link(id, tbl.Members(idx)); err != nil {
				return err
			}

			tbl.ReleaseBucket(idx)
		}

		if lk.verify {
			if err := lk.st.verify(); err != nil {
				return fmt.Errorf("after set %d: %w", j, err)
			}
		}
	}

	return nil
}

func (lk *linker) link(id uint32, neighbors list.List) error {
	for _, nb := range neighbors {
		k := nb.ID
		if k == id {
			continue
		}

		sim := lk.sim(lk.db.Lists[id], lk.db.Lists[k])
		if !(sim >= 0 && sim <= 1) {
			return fmt.Errorf("sets %d and %d scored %v: %w", id, k, sim, ErrSimilarityOutOfRange)
		}

		if sim <= lk.threshold {
			continue
		}

		own := lk.st.clusterOf[id]

		switch {
		case !lk.st.checked[k]:
			lk.st.join(k, own)
		case lk.st.clusterOf[k] != own:
			lk.st.merge(lk.st.clusterOf[k], own)
		}
	}

	return nil
}
