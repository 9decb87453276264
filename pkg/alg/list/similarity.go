package list

import (
	"errors"
	"fmt"
	"slices"
)

// ErrUnknownSimilarity is returned by ByName for unregistered measures.
var ErrUnknownSimilarity = errors.New("list: unknown similarity measure")

// Func is a similarity measure between two ordered sets. Implementations
// must return a value in [0, 1].
type Func func(a, b List) float64

// Similarity measure names accepted by ByName.
const (
	SimilarityJaccard           = "jaccard"
	SimilarityOverlap           = "overlap"
	SimilarityHistogram         = "histogram"
	SimilarityWeighted          = "weighted"
	SimilarityWeightedHistogram = "weighted-histogram"
)

var unweighted = map[string]Func{
	SimilarityJaccard:   Jaccard,
	SimilarityOverlap:   Overlap,
	SimilarityHistogram: HistogramIntersection,
}

// SimilarityNames lists every name ByName accepts, sorted.
func SimilarityNames() []string {
	names := []string{SimilarityWeighted, SimilarityWeightedHistogram}
	for name := range unweighted {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// ByName resolves a similarity measure. Weighted measures require w and
// treat ids beyond len(w) as carrying zero weight; callers that need strict
// checking validate the item domain against len(w) up front.
func ByName(name string, w []float64) (Func, error) {
	if fn, ok := unweighted[name]; ok {
		return fn, nil
	}

	switch name {
	case SimilarityWeighted:
		if w == nil {
			return nil, fmt.Errorf("%w: %s needs weights", ErrUnknownSimilarity, name)
		}

		return func(a, b List) float64 { return weightedSimilarity(a, b, padded(a, b, w)) }, nil
	case SimilarityWeightedHistogram:
		if w == nil {
			return nil, fmt.Errorf("%w: %s needs weights", ErrUnknownSimilarity, name)
		}

		return func(a, b List) float64 { return weightedHistogram(a, b, padded(a, b, w)) }, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownSimilarity, name)
}

// padded extends w with zeros when a or b reference ids past its end.
func padded(a, b List, w []float64) []float64 {
	need := max(a.MaxID(), b.MaxID())
	if int(need) < len(w) {
		return w
	}

	ext := make([]float64, need+1)
	copy(ext, w)

	return ext
}
