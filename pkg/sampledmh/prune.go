package sampledmh

import (
	"math"

	"github.com/Sumatoshi-tech/sampledmh/pkg/alg/list"
	"github.com/Sumatoshi-tech/sampledmh/pkg/ifindex"
	"github.com/Sumatoshi-tech/sampledmh/pkg/listdb"
)

// Default pruning parameters.
const (
	DefaultMinSetSize   = 3
	DefaultMinHits      = 3
	DefaultOverlap      = 0.7
	DefaultCooccurrence = 0.7
)

// fractionEpsilon absorbs rounding in products such as 10*0.7.
const fractionEpsilon = 1e-9

// PruneOptions controls Prune.
type PruneOptions struct {
	// MinSetSize drops mined sets left with fewer items.
	MinSetSize int
	// MinHits drops mined sets retrieving fewer documents.
	MinHits int
	// Overlap is the fraction of a set's items a document must contain to be retrieved.
	Overlap float64
	// Cooccurrence is the fraction of retrieved documents an item must appear in to stay.
	Cooccurrence float64
	// Dedup removes sets with identical items after pruning.
	Dedup bool
}

// DefaultPruneOptions returns the pruning defaults.
func DefaultPruneOptions() PruneOptions {
	return PruneOptions{
		MinSetSize:   DefaultMinSetSize,
		MinHits:      DefaultMinHits,
		Overlap:      DefaultOverlap,
		Cooccurrence: DefaultCooccurrence,
	}
}

func validFraction(v float64) bool {
	return v >= 0 && v <= 1
}

// Prune filters mined item sets against the inverted index ifx of the corpus.
// For every set it retrieves the documents holding at least
// ceil(Overlap*|set|) of its items, removes items present in fewer than
// Cooccurrence of those documents, and drops the set when it retrieved fewer
// than MinHits documents. Sets smaller than MinSetSize are dropped last, which
// leaves mined sorted by descending size.
func Prune(ifx, mined *listdb.DB, opts PruneOptions) error {
	if !validFraction(opts.Overlap) || !validFraction(opts.Cooccurrence) {
		return ErrInvalidThreshold
	}

	kept := mined.Lists[:0]

	for _, set := range mined.Lists {
		docs := ifindex.Query(ifx, set)
		docs = docs.DeleteLessFrequent(uint32(math.Ceil(float64(len(set))*opts.Overlap - fractionEpsilon)))

		if len(docs) < opts.MinHits {
			continue
		}

		kept = append(kept, cooccurring(ifx, set, docs, float64(len(docs))*opts.Cooccurrence-fractionEpsilon))
	}

	clear(mined.Lists[len(kept):])
	mined.Lists = kept

	mined.DeleteSmallest(opts.MinSetSize)

	if opts.Dedup {
		mined.Dedup()
	}

	return nil
}

// cooccurring keeps the items of set whose postings share at least minDocs
// documents with docs.
func cooccurring(ifx *listdb.DB, set, docs list.List, minDocs float64) list.List {
	out := set[:0]

	for _, it := range set {
		if int(it.ID) >= ifx.Len() {
			continue
		}

		if float64(list.IntersectionSize(ifx.Lists[it.ID], docs)) >= minDocs {
			out = append(out, it)
		}
	}

	return out
}
