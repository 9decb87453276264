// Package minhash provides the Min-Hash table shared by the miners.
//
// A table holds one tuple of tupleSize Min-Hash functions over an item
// domain of dim ids. Each function is a random assignment of a token and an
// exponentially distributed rank to every item; the Min-Hash of a set is the
// token of its lowest-ranked item. A tuple of Min-Hash values is folded by two
// universal hash functions into a bucket index and a 2nd-level hash value, and
// sets that agree on the whole tuple land in the same bucket. Collisions on
// the index alone are resolved by linear probing on the 2nd-level value.
//
// A Table is owned by a single goroutine. StoreDB parallelizes only the pure
// hashing step and applies bucket mutations serially in id order.
package minhash

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
	"math/rand/v2"
	"slices"

	"github.com/Sumatoshi-tech/sampledmh/pkg/alg/internal/hashutil"
	"github.com/Sumatoshi-tech/sampledmh/pkg/alg/list"
)

const (
	// LargestPrime64 is the largest prime below 2^64, the modulus of the
	// universal hash functions.
	LargestPrime64 = 18446744073709551557

	// rankShift drops the low bits of a 64-bit draw, leaving 53 bits of
	// mantissa for the uniform variate.
	rankShift = 11

	// rankScale maps a 53-bit integer into (0, 1] after adding one.
	rankScale = 1.0 / (1 << 53)

	// coefficientShift keeps the top 32 bits of a draw for the universal
	// hash coefficients.
	coefficientShift = 32

	// noBucket marks sets that were not stored (empty sets).
	noBucket = -1
)

var (
	// ErrTableSizeNotPowerOfTwo is returned when the table size is not a power of two.
	ErrTableSizeNotPowerOfTwo = errors.New("minhash: table size must be a power of two")

	// ErrZeroTupleSize is returned when the tuple size is not positive.
	ErrZeroTupleSize = errors.New("minhash: tuple size must be positive")

	// ErrZeroDim is returned when the item domain is empty.
	ErrZeroDim = errors.New("minhash: item domain must not be empty")

	// ErrNilRand is returned when no random generator is supplied.
	ErrNilRand = errors.New("minhash: random generator must not be nil")

	// ErrEmptyList is returned when hashing a set with no items.
	ErrEmptyList = errors.New("minhash: cannot hash an empty set")

	// ErrItemOutOfDomain is returned when a set holds an id >= dim.
	ErrItemOutOfDomain = errors.New("minhash: item id outside the table domain")

	// ErrTableFull is returned when probing visits every bucket without success.
	ErrTableFull = errors.New("minhash: hash table is full")

	// ErrTableNotDrained is returned when permutations are regenerated while
	// buckets still hold ids hashed under the previous permutations.
	ErrTableNotDrained = errors.New("minhash: table still holds ids from the previous round")

	// ErrWeightsTooShort is returned when the weight vector does not cover the domain.
	ErrWeightsTooShort = errors.New("minhash: weight vector shorter than item domain")

	// ErrInvalidWeight is returned for non-positive or non-finite weights.
	ErrInvalidWeight = errors.New("minhash: weights must be positive and finite")

	// ErrClosed is returned when a table is used after Close.
	ErrClosed = errors.New("minhash: table is closed")
)

// RandomValue is the random assignment of one item under one Min-Hash function.
type RandomValue struct {
	Token uint64
	Rank  float64
}

// Bucket is one slot of the open-addressed table.
type Bucket struct {
	HashValue uint64
	Members   list.List
}

// Options configures a Table.
type Options struct {
	// TableSize is the number of buckets; it must be a power of two.
	TableSize int
	// TupleSize is the number of Min-Hash values per bucket key.
	TupleSize int
	// Dim is the size of the item domain.
	Dim uint32
	// Rand is the random stream used for permutations and coefficients.
	Rand *rand.Rand
	// Workers bounds the goroutines used by StoreDB. Zero or one hashes serially.
	Workers int
}

// Stats summarizes table activity since creation.
type Stats struct {
	UsedBuckets int
	Stored      uint64
	Probes      uint64
}

// Table is a Min-Hash hash table.
type Table struct {
	size      int
	tupleSize int
	dim       uint32
	workers   int

	perms   []RandomValue
	buckets []Bucket
	used    []int
	a, b    []uint64
	rng     *rand.Rand

	stored uint64
	probes uint64
	closed bool
}

// NewRand returns a reproducible random stream for the given seed.
func NewRand(seed uint64) *rand.Rand {
	return hashutil.NewRand(seed)
}

// New allocates a table and draws its universal hash coefficients. Call
// GeneratePermutations before storing anything.
func New(opts Options) (*Table, error) {
	if err := ValidateShape(opts.TableSize, opts.TupleSize); err != nil {
		return nil, err
	}

	switch {
	case opts.Dim == 0:
		return nil, ErrZeroDim
	case opts.Rand == nil:
		return nil, ErrNilRand
	}

	t := &Table{
		size:      opts.TableSize,
		tupleSize: opts.TupleSize,
		dim:       opts.Dim,
		workers:   max(opts.Workers, 1),
		perms:     make([]RandomValue, opts.TupleSize*int(opts.Dim)),
		buckets:   make([]Bucket, opts.TableSize),
		a:         make([]uint64, opts.TupleSize),
		b:         make([]uint64, opts.TupleSize),
		rng:       opts.Rand,
	}

	for i := range t.a {
		t.a[i] = t.rng.Uint64() >> coefficientShift
		t.b[i] = t.rng.Uint64() >> coefficientShift
	}

	return t, nil
}

// ValidateShape checks the table and tuple sizes New would reject, without
// allocating anything.
func ValidateShape(tableSize, tupleSize int) error {
	switch {
	case tableSize <= 0 || tableSize&(tableSize-1) != 0:
		return ErrTableSizeNotPowerOfTwo
	case tupleSize <= 0:
		return ErrZeroTupleSize
	}

	return nil
}

// ValidateWeights checks that weights covers dim items with positive,
// finite values.
func ValidateWeights(weights []float64, dim uint32) error {
	if len(weights) < int(dim) {
		return fmt.Errorf("%d weights for %d items: %w", len(weights), dim, ErrWeightsTooShort)
	}

	if slices.ContainsFunc(weights[:dim], invalidWeight) {
		return ErrInvalidWeight
	}

	return nil
}

// Size returns the number of buckets.
func (t *Table) Size() int { return t.size }

// TupleSize returns the number of Min-Hash values per key.
func (t *Table) TupleSize() int { return t.tupleSize }

// Dim returns the size of the item domain.
func (t *Table) Dim() uint32 { return t.dim }

// GeneratePermutations draws a fresh token and rank for every item under
// every Min-Hash function of the tuple.
func (t *Table) GeneratePermutations() error {
	if t.closed {
		return ErrClosed
	}

	if len(t.used) > 0 {
		return ErrTableNotDrained
	}

	for i := range t.perms {
		x := t.rng.Uint64()
		u := float64((x>>rankShift)+1) * rankScale
		t.perms[i] = RandomValue{Token: x, Rank: -math.Log(u)}
	}

	return nil
}

// WeightPermutations divides every rank by the item's weight so heavier
// items are more likely to be the minimum.
func (t *Table) WeightPermutations(weights []float64) error {
	if t.closed {
		return ErrClosed
	}

	if err := ValidateWeights(weights, t.dim); err != nil {
		return err
	}

	for k := range t.tupleSize {
		row := t.perms[k*int(t.dim) : (k+1)*int(t.dim)]
		for j := range row {
			row[j].Rank /= weights[j]
		}
	}

	return nil
}

func invalidWeight(w float64) bool {
	return !(w > 0) || math.IsInf(w, 0)
}

// MinHash returns the k-th Min-Hash value of l: the token of the item whose
// rank divided by its frequency is smallest.
func (t *Table) MinHash(l list.List, k int) (uint64, error) {
	if len(l) == 0 {
		return 0, ErrEmptyList
	}

	if l.MaxID() >= t.dim {
		return 0, ErrItemOutOfDomain
	}

	row := t.perms[k*int(t.dim) : (k+1)*int(t.dim)]

	best := row[l[0].ID]
	bestRank := best.Rank / freqOf(l[0])

	for _, it := range l[1:] {
		if r := row[it.ID].Rank / freqOf(it); r < bestRank {
			best, bestRank = row[it.ID], r
		}
	}

	return best.Token, nil
}

func freqOf(it list.Item) float64 {
	return float64(max(it.Freq, 1))
}

// UnivHash folds the Min-Hash tuple of l into a 2nd-level hash value and a
// bucket index.
func (t *Table) UnivHash(l list.List) (hashValue uint64, index int, err error) {
	var accA, accB uint128

	for k := range t.tupleSize {
		mh, mhErr := t.MinHash(l, k)
		if mhErr != nil {
			return 0, 0, mhErr
		}

		accA.addMul(t.a[k], mh)
		accB.addMul(t.b[k], mh)
	}

	hashValue = accB.mod(LargestPrime64)
	index = int(accA.mod(LargestPrime64) & uint64(t.size-1))

	return hashValue, index, nil
}

// uint128 is an unsigned 128-bit accumulator.
type uint128 struct{ hi, lo uint64 }

func (u *uint128) addMul(x, y uint64) {
	hi, lo := bits.Mul64(x, y)

	var carry uint64

	u.lo, carry = bits.Add64(u.lo, lo, 0)
	u.hi, _ = bits.Add64(u.hi, hi, carry)
}

func (u uint128) mod(m uint64) uint64 {
	return bits.Rem64(u.hi, u.lo, m)
}

// resolve finds the bucket for a key by linear probing: the first bucket
// that is empty or already carries hashValue. An empty bucket is claimed.
func (t *Table) resolve(hashValue uint64, index int) (int, error) {
	mask := t.size - 1

	for range t.size {
		t.probes++

		b := &t.buckets[index]
		if len(b.Members) == 0 {
			b.HashValue = hashValue

			return index, nil
		}

		if b.HashValue == hashValue {
			return index, nil
		}

		index = (index + 1) & mask
	}

	return noBucket, ErrTableFull
}

// GetIndex returns the bucket l hashes to, claiming an empty bucket if needed.
func (t *Table) GetIndex(l list.List) (int, error) {
	if t.closed {
		return noBucket, ErrClosed
	}

	hv, idx, err := t.UnivHash(l)
	if err != nil {
		return noBucket, err
	}

	return t.resolve(hv, idx)
}

// Lookup returns the bucket holding l's key without modifying the table.
func (t *Table) Lookup(l list.List) (int, bool, error) {
	if t.closed {
		return noBucket, false, ErrClosed
	}

	hv, idx, err := t.UnivHash(l)
	if err != nil {
		return noBucket, false, err
	}

	mask := t.size - 1

	for range t.size {
		b := &t.buckets[idx]

		switch {
		case len(b.Members) == 0:
			return noBucket, false, nil
		case b.HashValue == hv:
			return idx, true, nil
		}

		idx = (idx + 1) & mask
	}

	return noBucket, false, nil
}

func (t *Table) insert(index int, id uint32) {
	b := &t.buckets[index]
	if len(b.Members) == 0 {
		t.used = append(t.used, index)
	}

	b.Members = b.Members.Push(list.Item{ID: id, Freq: 1})
	t.stored++
}

// Store hashes l and records id in its bucket.
func (t *Table) Store(l list.List, id uint32) (int, error) {
	idx, err := t.GetIndex(l)
	if err != nil {
		return noBucket, err
	}

	t.insert(idx, id)

	return idx, nil
}

// Bucket returns the bucket at index.
func (t *Table) Bucket(index int) Bucket { return t.buckets[index] }

// Members returns the ids stored in the bucket at index.
func (t *Table) Members(index int) list.List { return t.buckets[index].Members }

// UsedBuckets returns the indices of buckets that received ids, in first-use order.
func (t *Table) UsedBuckets() []int { return slices.Clone(t.used) }

// ReleaseBucket frees the members of one bucket. The bucket index stays in
// the used list until Clear or Drain.
func (t *Table) ReleaseBucket(index int) {
	t.buckets[index].Members = nil
}

// Drain hands every used bucket's members to fn, in first-use order, and
// leaves the table empty. fn takes ownership of the list.
func (t *Table) Drain(fn func(members list.List)) {
	for _, idx := range t.used {
		b := &t.buckets[idx]
		if len(b.Members) > 0 {
			fn(b.Members)
		}

		b.Members = nil
		b.HashValue = 0
	}

	t.used = t.used[:0]
}

// Clear empties every used bucket. Permutations and coefficients are kept.
func (t *Table) Clear() {
	t.Drain(func(list.List) {})
}

// Close releases all table storage. Any later call returns ErrClosed.
func (t *Table) Close() {
	t.closed = true
	t.perms = nil
	t.buckets = nil
	t.used = nil
}

// Stats returns cumulative activity counters.
func (t *Table) Stats() Stats {
	return Stats{UsedBuckets: len(t.used), Stored: t.stored, Probes: t.probes}
}
