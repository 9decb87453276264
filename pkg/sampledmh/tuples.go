package sampledmh

import (
	"math"

	"github.com/Sumatoshi-tech/sampledmh/pkg/alg/minhash"
)

const (
	// halfProbability is the collision probability NumberOfTuplesFor aims for.
	halfProbability = 0.5

	// maxTuples bounds the result for vanishing collision probabilities.
	maxTuples = math.MaxInt32
)

// NumberOfTuplesFor returns the number of rounds needed for a pair of rows
// with Jaccard similarity threshold to collide at least once with
// probability one half, given tupleSize Min-Hash values per key:
//
//	l = ceil(log 0.5 / log(1 - threshold^tupleSize))
func NumberOfTuplesFor(threshold float64, tupleSize int) (int, error) {
	if !(threshold > 0 && threshold <= 1) {
		return 0, ErrInvalidThreshold
	}

	if tupleSize <= 0 {
		return 0, minhash.ErrZeroTupleSize
	}

	p := math.Pow(threshold, float64(tupleSize))
	if p >= 1 {
		return 1, nil
	}

	l := math.Ceil(math.Log(halfProbability) / math.Log1p(-p))
	if math.IsInf(l, 0) || l > maxTuples {
		return maxTuples, nil
	}

	return int(l), nil
}
