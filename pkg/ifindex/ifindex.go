// Package ifindex builds and queries inverted indexes over set databases.
//
// The inverted index of a corpus is itself a listdb.DB: row i holds the
// documents containing item i, with the item's frequency in each document.
package ifindex

import (
	"github.com/Sumatoshi-tech/sampledmh/pkg/alg/list"
	"github.com/Sumatoshi-tech/sampledmh/pkg/listdb"
	"github.com/Sumatoshi-tech/sampledmh/pkg/safeconv"
	"github.com/Sumatoshi-tech/sampledmh/pkg/weights"
)

// FromCorpus inverts corpus. The result has one row per item of the corpus
// domain and Dim equal to the number of documents.
func FromCorpus(corpus *listdb.DB) *listdb.DB {
	ifx := &listdb.DB{Lists: make([]list.List, corpus.Dim), Dim: safeconv.MustIntToUint32(corpus.Len())}

	for doc, l := range corpus.Lists {
		for _, it := range l {
			ifx.Lists[it.ID] = append(ifx.Lists[it.ID], list.Item{ID: safeconv.MustIntToUint32(doc), Freq: it.Freq})
		}
	}

	return ifx
}

// Query returns the documents containing any item of q. Each document's
// frequency is the number of items of q it contains. Items outside the
// index are ignored.
func Query(ifx *listdb.DB, q list.List) list.List {
	return query(ifx, q, func(it list.Item) list.Item { return list.Item{ID: it.ID, Freq: 1} })
}

// QueryFreq is Query with document frequencies summed instead of counted.
func QueryFreq(ifx *listdb.DB, q list.List) list.List {
	return query(ifx, q, func(it list.Item) list.Item { return it })
}

func query(ifx *listdb.DB, q list.List, conv func(list.Item) list.Item) list.List {
	var out list.List

	for _, it := range q {
		if int(it.ID) >= ifx.Len() {
			continue
		}

		for _, posting := range ifx.Lists[it.ID] {
			out = append(out, conv(posting))
		}
	}

	if out == nil {
		return list.List{}
	}

	return out.Normalize()
}

// QueryMulti runs Query for every row of queries.
func QueryMulti(ifx *listdb.DB, queries *listdb.DB) *listdb.DB {
	out := listdb.New(queries.Len(), ifx.Dim)

	for _, q := range queries.Lists {
		out.Lists = append(out.Lists, Query(ifx, q))
	}

	return out
}

// DiscardLessFrequent drops, in every result row, documents below minFreq.
func DiscardLessFrequent(results *listdb.DB, minFreq uint32) {
	results.ApplyToAll(func(l list.List) list.List { return l.DeleteLessFrequent(minFreq) })
}

// DiscardMoreFrequent drops, in every result row, documents above maxFreq.
func DiscardMoreFrequent(results *listdb.DB, maxFreq uint32) {
	results.ApplyToAll(func(l list.List) list.List { return l.DeleteMoreFrequent(maxFreq) })
}

// RankMoreFrequent orders every result row by descending frequency.
func RankMoreFrequent(results *listdb.DB) {
	results.ApplyToAll(func(l list.List) list.List {
		l.SortByFrequencyDesc()

		return l
	})
}

// Weight replaces every posting frequency with the integer weight of the
// scheme. Document sizes and corpus totals are taken from ifx before any
// posting is rewritten.
func Weight(ifx *listdb.DB, scheme weights.Scheme) {
	docSize := make([]uint64, ifx.Dim)
	docTerms := make([]uint32, ifx.Dim)

	var tokens uint64

	for _, postings := range ifx.Lists {
		for _, p := range postings {
			docSize[p.ID] += uint64(p.Freq)
			docTerms[p.ID]++
			tokens += uint64(p.Freq)
		}
	}

	vocab := safeconv.MustIntToUint32(ifx.Len())

	for _, postings := range ifx.Lists {
		df := safeconv.MustIntToUint32(len(postings))
		cf := postings.SumFreq()

		for j := range postings {
			doc := postings[j].ID

			postings[j].Freq = weights.IntWeight(scheme(weights.Stats{
				TF:           postings[j].Freq,
				DF:           df,
				CF:           cf,
				CorpusSize:   ifx.Dim,
				CorpusTokens: tokens,
				DocSize:      docSize[doc],
				DocTerms:     docTerms[doc],
				VocabSize:    vocab,
			}))
		}
	}
}
