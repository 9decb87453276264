package sampledmh

import (
	"errors"
	"fmt"
	"math"

	"github.com/Sumatoshi-tech/sampledmh/pkg/alg/list"
	"github.com/Sumatoshi-tech/sampledmh/pkg/listdb"
)

var (
	// ErrItemNotIndexed is returned when expanding an item the inverted index has no row for.
	ErrItemNotIndexed = errors.New("sampledmh: item not covered by the inverted index")

	// ErrFrequencyExceedsMax is returned when an item occurs more often than
	// the maximum frequency recorded for it.
	ErrFrequencyExceedsMax = errors.New("sampledmh: item frequency exceeds its maximum")

	// ErrExpandedDomainTooLarge is returned when the expanded ids would not
	// fit in uint32.
	ErrExpandedDomainTooLarge = errors.New("sampledmh: expanded domain exceeds uint32")
)

// CumulativeFrequency returns the running sum of every item's maximum
// frequency in ifx. Item i is expanded into ids [cum[i-1], cum[i]), with
// cum[-1] taken as zero.
func CumulativeFrequency(ifx *listdb.DB) ([]uint32, error) {
	cum := make([]uint32, ifx.Len())

	var total uint64

	for i, postings := range ifx.Lists {
		total += uint64(postings.MaxFreq())
		if total > math.MaxUint32 {
			return nil, fmt.Errorf("item %d: %w", i, ErrExpandedDomainTooLarge)
		}

		cum[i] = uint32(total)
	}

	return cum, nil
}

func expandedStart(cum []uint32, id uint32) uint32 {
	if id == 0 {
		return 0
	}

	return cum[id-1]
}

// Expand turns every frequency list of db into a binary list over the
// expanded domain: an item with frequency f becomes f consecutive ids
// starting at the item's offset. The expanded database can then be mined
// with plain set semantics while still accounting for repeated items.
func Expand(db *listdb.DB, cum []uint32) (*listdb.DB, error) {
	var dim uint32
	if len(cum) > 0 {
		dim = cum[len(cum)-1]
	}

	out := listdb.New(db.Len(), dim)

	for row, l := range db.Lists {
		expanded := make(list.List, 0, l.SumFreq())

		for _, it := range l {
			if int(it.ID) >= len(cum) {
				return nil, fmt.Errorf("row %d item %d: %w", row, it.ID, ErrItemNotIndexed)
			}

			from := expandedStart(cum, it.ID)
			if from > cum[it.ID] {
				return nil, fmt.Errorf("row %d item %d: offsets decrease: %w", row, it.ID, ErrExpandedDomainTooLarge)
			}

			if it.Freq > cum[it.ID]-from {
				return nil, fmt.Errorf("row %d item %d: %w", row, it.ID, ErrFrequencyExceedsMax)
			}

			for k := range it.Freq {
				expanded = append(expanded, list.Item{ID: from + k, Freq: 1})
			}
		}

		out.Lists = append(out.Lists, expanded)
	}

	return out, nil
}

// ExpandWeights spreads every item's weight over its expanded ids.
func ExpandWeights(cum []uint32, w []float64) ([]float64, error) {
	if len(w) < len(cum) {
		return nil, fmt.Errorf("%d weights for %d items: %w", len(w), len(cum), ErrItemNotIndexed)
	}

	if len(cum) == 0 {
		return []float64{}, nil
	}

	out := make([]float64, cum[len(cum)-1])

	for i := range cum {
		for j := expandedStart(cum, uint32(i)); j < cum[i]; j++ {
			out[j] = w[i]
		}
	}

	return out, nil
}
