package minhash

import (
	"testing"

	"github.com/Sumatoshi-tech/sampledmh/pkg/alg/list"
	"github.com/Sumatoshi-tech/sampledmh/pkg/listdb"
)

// Benchmark constants.
const (
	// benchDim is the item domain for benchmarks.
	benchDim = 10000

	// benchSets is the number of sets stored per iteration.
	benchSets = 5000

	// benchSetSize is the number of items per set.
	benchSetSize = 40
)

func benchDB() *listdb.DB {
	r := NewRand(1)
	db := listdb.New(benchSets, benchDim)

	for range benchSets {
		items := make([]list.Item, benchSetSize)
		for i := range items {
			items[i] = list.Item{ID: uint32(r.IntN(benchDim)), Freq: 1}
		}

		db.Push(list.New(items...))
	}

	return db
}

func benchmarkStoreDB(b *testing.B, workers int) {
	b.Helper()

	db := benchDB()

	tbl, err := New(Options{TableSize: 1 << 16, TupleSize: 4, Dim: benchDim, Rand: NewRand(2), Workers: workers})
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.ResetTimer()

	for range b.N {
		if err := tbl.GeneratePermutations(); err != nil {
			b.Fatal(err)
		}

		if _, err := tbl.StoreDB(db); err != nil {
			b.Fatal(err)
		}

		tbl.Clear()
	}
}

func BenchmarkStoreDB_Serial(b *testing.B) { benchmarkStoreDB(b, 1) }

func BenchmarkStoreDB_Parallel(b *testing.B) { benchmarkStoreDB(b, 4) }
