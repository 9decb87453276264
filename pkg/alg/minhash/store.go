package minhash

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/Sumatoshi-tech/sampledmh/pkg/listdb"
)

// hashChunk is the number of sets a worker hashes per task.
const hashChunk = 1024

type key struct {
	hashValue uint64
	index     int
}

// StoreDB stores every non-empty set of db under its position and returns
// the bucket index of each set (-1 for empty sets). Hashing runs on up to
// Workers goroutines; bucket resolution and insertion happen afterwards in
// ascending set order, so the outcome does not depend on Workers.
func (t *Table) StoreDB(db *listdb.DB) ([]int, error) {
	if t.closed {
		return nil, ErrClosed
	}

	keys, err := t.hashAll(db)
	if err != nil {
		return nil, err
	}

	indices := make([]int, db.Len())

	for i, l := range db.Lists {
		if len(l) == 0 {
			indices[i] = noBucket

			continue
		}

		idx, resolveErr := t.resolve(keys[i].hashValue, keys[i].index)
		if resolveErr != nil {
			return nil, fmt.Errorf("store set %d: %w", i, resolveErr)
		}

		t.insert(idx, uint32(i))
		indices[i] = idx
	}

	return indices, nil
}

func (t *Table) hashAll(db *listdb.DB) ([]key, error) {
	keys := make([]key, db.Len())

	hashRange := func(from, to int) error {
		for i := from; i < to; i++ {
			l := db.Lists[i]
			if len(l) == 0 {
				continue
			}

			hv, idx, err := t.UnivHash(l)
			if err != nil {
				return fmt.Errorf("hash set %d: %w", i, err)
			}

			keys[i] = key{hashValue: hv, index: idx}
		}

		return nil
	}

	if t.workers <= 1 || db.Len() <= hashChunk {
		return keys, hashRange(0, db.Len())
	}

	var g errgroup.Group

	g.SetLimit(t.workers)

	for from := 0; from < db.Len(); from += hashChunk {
		to := min(from+hashChunk, db.Len())

		g.Go(func() error { return hashRange(from, to) })
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return keys, nil
}
