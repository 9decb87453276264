// Package hashutil derives the random streams used by the Min-Hash tables.
//
// A single user-facing seed is expanded with the splitmix64 generator by
// Vigna (2014) into PCG seed pairs, one pair per independent table.
package hashutil

import "math/rand/v2"

// Splitmix64 constants from the splitmix64 finalizer by Vigna (2014).
const (
	// MixShift1 is the first right-shift in the splitmix64 finalizer.
	MixShift1 = 30

	// MixMul1 is the first multiplier in the splitmix64 finalizer.
	MixMul1 = 0xbf58476d1ce4e5b9

	// MixShift2 is the second right-shift in the splitmix64 finalizer.
	MixShift2 = 27

	// MixMul2 is the second multiplier in the splitmix64 finalizer.
	MixMul2 = 0x94d049bb133111eb

	// MixShift3 is the third right-shift in the splitmix64 finalizer.
	MixShift3 = 31

	// splitmix64Increment is the golden-ratio-derived increment
	// used in the Splitmix64 state-advance function.
	splitmix64Increment = 0x9e3779b97f4a7c15
)

// Splitmix64 advances the state by the golden-ratio increment and applies
// the mix64 finalizer.
func Splitmix64(state uint64) uint64 {
	state += splitmix64Increment
	z := state
	z = (z ^ (z >> MixShift1)) * MixMul1
	z = (z ^ (z >> MixShift2)) * MixMul2
	z ^= z >> MixShift3

	return z
}

// SeedPair expands seed into the two words a PCG source needs.
func SeedPair(seed uint64) (uint64, uint64) {
	hi := Splitmix64(seed)
	lo := Splitmix64(hi)

	return hi, lo
}

// DeriveSeed returns the seed of the i-th independent stream under seed.
func DeriveSeed(seed uint64, i int) uint64 {
	state := seed
	for range i + 1 {
		state = Splitmix64(state)
	}

	return state
}

// NewRand returns a PCG-backed generator seeded deterministically from seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(SeedPair(seed)))
}
