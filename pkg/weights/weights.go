// Package weights provides term weighting schemes and weight vector I/O.
//
// A weight vector assigns one positive float to every item of a domain. It
// biases Min-Hash permutations toward heavy items and backs the weighted
// similarity measures.
package weights

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/Sumatoshi-tech/sampledmh/pkg/listdb"
	"github.com/Sumatoshi-tech/sampledmh/pkg/safeconv"
)

const (
	// intWeightScale converts a float weight into an integer frequency.
	intWeightScale = 1e8

	// MinWeight is the floor applied to computed item weights so every item
	// stays eligible for weighted Min-Hashing.
	MinWeight = 1e-9
)

// ErrUnknownScheme is returned by ByName for unregistered schemes.
var ErrUnknownScheme = errors.New("weights: unknown scheme")

// Stats are the corpus counts a scheme may use for one (item, document) pair
// or, for item weights, for one item across the corpus.
type Stats struct {
	// TF is the item frequency (in a document, or across the corpus).
	TF uint32
	// DF is the number of documents containing the item.
	DF uint32
	// CF is the total frequency of the item in the corpus.
	CF uint64
	// CorpusSize is the number of documents.
	CorpusSize uint32
	// CorpusTokens is the sum of all frequencies in the corpus.
	CorpusTokens uint64
	// DocSize is the sum of frequencies in the document. Zero for item weights.
	DocSize uint64
	// DocTerms is the number of distinct items in the document. Zero for item weights.
	DocTerms uint32
	// VocabSize is the number of items in the domain.
	VocabSize uint32
}

// Scheme computes a weight from corpus counts.
type Scheme func(s Stats) float64

// Scheme names accepted by ByName.
const (
	SchemeTF       = "tf"
	SchemeLogTF    = "logtf"
	SchemeBinTF    = "bintf"
	SchemeIDF      = "idf"
	SchemeITF      = "itf"
	SchemeTFIDF    = "tfidf"
	SchemeLogTFIDF = "logtfidf"
	SchemeITFIDF   = "itfidf"
)

// TermFreq weights by raw frequency.
func TermFreq(s Stats) float64 { return float64(s.TF) }

// LogTF weights by log(tf + 1).
func LogTF(s Stats) float64 { return math.Log(float64(s.TF) + 1) }

// BinTF gives every item the same negligible weight; after IntWeight every
// frequency becomes one.
func BinTF(Stats) float64 { return MinWeight }

// IDF weights by log(N / df).
func IDF(s Stats) float64 {
	if s.DF == 0 {
		return 0
	}

	return math.Log(float64(s.CorpusSize) / float64(s.DF))
}

// ITF weights by log(total tokens / cf).
func ITF(s Stats) float64 {
	if s.CF == 0 {
		return 0
	}

	return math.Log(float64(s.CorpusTokens) / float64(s.CF))
}

// TFIDF is TermFreq times IDF.
func TFIDF(s Stats) float64 { return TermFreq(s) * IDF(s) }

// LogTFIDF is LogTF times IDF.
func LogTFIDF(s Stats) float64 { return LogTF(s) * IDF(s) }

// ITFIDF is ITF times IDF.
func ITFIDF(s Stats) float64 { return ITF(s) * IDF(s) }

var schemes = map[string]Scheme{
	SchemeTF:       TermFreq,
	SchemeLogTF:    LogTF,
	SchemeBinTF:    BinTF,
	SchemeIDF:      IDF,
	SchemeITF:      ITF,
	SchemeTFIDF:    TFIDF,
	SchemeLogTFIDF: LogTFIDF,
	SchemeITFIDF:   ITFIDF,
}

// ByName resolves a weighting scheme.
func ByName(name string) (Scheme, error) {
	s, ok := schemes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScheme, name)
	}

	return s, nil
}

// Names lists the registered schemes, sorted.
func Names() []string {
	names := make([]string, 0, len(schemes))
	for name := range schemes {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// IntWeight converts a float weight into an integer frequency:
// round(w * 1e8), never below one.
func IntWeight(w float64) uint32 {
	return safeconv.RoundToUint32(w*intWeightScale, 1)
}

// FromCorpus computes one weight per item of the inverted index ifx built
// from corpus. TF is the item's corpus frequency. Results below MinWeight
// are raised to it.
func FromCorpus(corpus, ifx *listdb.DB, scheme Scheme) []float64 {
	tokens := uint64(0)
	for _, doc := range corpus.Lists {
		tokens += doc.SumFreq()
	}

	w := make([]float64, ifx.Len())

	for item, postings := range ifx.Lists {
		cf := postings.SumFreq()

		s := Stats{
			TF:           safeconv.SaturateUint32(cf),
			DF:           safeconv.MustIntToUint32(len(postings)),
			CF:           cf,
			CorpusSize:   safeconv.MustIntToUint32(corpus.Len()),
			CorpusTokens: tokens,
			VocabSize:    safeconv.MustIntToUint32(ifx.Len()),
		}

		v := scheme(s)
		if !(v >= MinWeight) || math.IsInf(v, 0) {
			v = MinWeight
		}

		w[item] = v
	}

	return w
}
