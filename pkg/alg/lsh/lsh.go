// Package lsh provides a Min-Hash similarity search index.
//
// The index stores a set database in numberOfTables independent Min-Hash
// tables, each with its own permutations. A query collides with every stored
// set that shares its bucket key in at least one table; the probability of
// that for a set with Jaccard similarity s is 1 - (1 - s^r)^l for tuple size
// r and l tables.
//
// The index is immutable after New and safe for concurrent queries.
package lsh

import (
	"errors"
	"fmt"
	"slices"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/Sumatoshi-tech/sampledmh/pkg/alg/internal/hashutil"
	"github.com/Sumatoshi-tech/sampledmh/pkg/alg/list"
	"github.com/Sumatoshi-tech/sampledmh/pkg/alg/minhash"
	"github.com/Sumatoshi-tech/sampledmh/pkg/listdb"
	"github.com/Sumatoshi-tech/sampledmh/pkg/safeconv"
)

var (
	// ErrInvalidParams is returned when the number of tables is not positive.
	ErrInvalidParams = errors.New("lsh: number of tables must be positive")

	// ErrNilDB is returned when building an index without a database.
	ErrNilDB = errors.New("lsh: database must not be nil")

	// ErrNilSimilarity is returned when QueryThreshold gets no measure.
	ErrNilSimilarity = errors.New("lsh: similarity function must not be nil")
)

// Options configures an Index.
type Options struct {
	NumberOfTables int
	TupleSize      int
	TableSize      int
	Seed           uint64
	// Weights optionally biases the permutations toward heavy items.
	Weights []float64
	Workers int
}

// Neighbor is a candidate ranked by exact similarity.
type Neighbor struct {
	ID    uint32  `json:"id"`
	Score float64 `json:"score"`
}

// Index is a multi-table Min-Hash index.
type Index struct {
	tables []*minhash.Table
	db     *listdb.DB
}

// New builds an index over db. The database is retained for exact verification.
func New(db *listdb.DB, opts Options) (*Index, error) {
	if opts.NumberOfTables <= 0 {
		return nil, ErrInvalidParams
	}

	if db == nil {
		return nil, ErrNilDB
	}

	idx := &Index{tables: make([]*minhash.Table, 0, opts.NumberOfTables), db: db}

	for i := range opts.NumberOfTables {
		tbl, err := minhash.New(minhash.Options{
			TableSize: opts.TableSize,
			TupleSize: opts.TupleSize,
			Dim:       db.Dim,
			Rand:      hashutil.NewRand(hashutil.DeriveSeed(opts.Seed, i)),
			Workers:   opts.Workers,
		})
		if err != nil {
			return nil, fmt.Errorf("table %d: %w", i, err)
		}

		err = tbl.GeneratePermutations()
		if err == nil && opts.Weights != nil {
			err = tbl.WeightPermutations(opts.Weights)
		}

		if err == nil {
			_, err = tbl.StoreDB(db)
		}

		if err != nil {
			return nil, fmt.Errorf("table %d: %w", i, err)
		}

		idx.tables = append(idx.tables, tbl)
	}

	return idx, nil
}

// Len returns the number of tables.
func (idx *Index) Len() int { return len(idx.tables) }

// inDomain drops ids the index has never seen; they cannot collide.
func (idx *Index) inDomain(l list.List) list.List {
	pos, _ := l.BinarySearch(idx.db.Dim)

	return l[:pos]
}

// Query returns every stored set id colliding with l in at least one
// table. Each returned item's frequency is the number of tables in which
// the collision happened.
func (idx *Index) Query(l list.List) (list.List, error) {
	l = idx.inDomain(l)
	if len(l) == 0 {
		return list.List{}, nil
	}

	var neighbors list.List

	for i, tbl := range idx.tables {
		b, ok, err := tbl.Lookup(l)
		if err != nil {
			return nil, fmt.Errorf("table %d: %w", i, err)
		}

		if ok {
			neighbors = neighbors.Concat(tbl.Members(b))
		}
	}

	return neighbors.Normalize(), nil
}

// Candidates returns the union of colliding set ids as a bitmap.
func (idx *Index) Candidates(l list.List) (*roaring.Bitmap, error) {
	l = idx.inDomain(l)
	if len(l) == 0 {
		return roaring.New(), nil
	}

	hits := make([]*roaring.Bitmap, 0, len(idx.tables))

	for i, tbl := range idx.tables {
		b, ok, err := tbl.Lookup(l)
		if err != nil {
			return nil, fmt.Errorf("table %d: %w", i, err)
		}

		if ok {
			hits = append(hits, roaring.BitmapOf(tbl.Members(b).IDs()...))
		}
	}

	return roaring.FastOr(hits...), nil
}

// QueryThreshold returns the candidates whose exact similarity with l is at
// or above threshold, ranked by descending similarity (ties by id).
func (idx *Index) QueryThreshold(l list.List, sim list.Func, threshold float64) ([]Neighbor, error) {
	if sim == nil {
		return nil, ErrNilSimilarity
	}

	candidates, err := idx.Candidates(l)
	if err != nil {
		return nil, err
	}

	result := make([]Neighbor, 0, candidates.GetCardinality())

	it := candidates.Iterator()
	for it.HasNext() {
		id := it.Next()

		score := sim(l, idx.db.Lists[id])
		if score >= threshold {
			result = append(result, Neighbor{ID: id, Score: score})
		}
	}

	slices.SortStableFunc(result, func(a, b Neighbor) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return 0
		}
	})

	return result, nil
}

// QueryMulti runs Query for every set of queries and returns one row per query.
func (idx *Index) QueryMulti(queries *listdb.DB) (*listdb.DB, error) {
	out := listdb.New(queries.Len(), safeconv.MustIntToUint32(idx.db.Len()))

	for i, q := range queries.Lists {
		neighbors, err := idx.Query(q)
		if err != nil {
			return nil, fmt.Errorf("query %d: %w", i, err)
		}

		out.Lists = append(out.Lists, neighbors)
	}

	return out, nil
}

// Close releases the tables.
func (idx *Index) Close() {
	for _, tbl := range idx.tables {
		tbl.Close()
	}

	idx.tables = nil
}
