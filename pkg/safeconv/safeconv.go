// Package safeconv provides checked conversions between the integer widths
// used by set ids, document counts, and frequencies.
package safeconv

import "math"

// MaxUint32 is the maximum value for uint32 type.
const MaxUint32 = uint32(math.MaxUint32)

// MustIntToUint32 converts int to uint32, panics on bounds violation.
// Use only for set positions and counts, which never exceed the id space.
func MustIntToUint32(v int) uint32 {
	if v < 0 || uint64(v) > uint64(MaxUint32) {
		panic("safeconv: int to uint32 out of bounds")
	}

	return uint32(v)
}

// SaturateUint32 converts v to uint32, clamping at MaxUint32.
func SaturateUint32(v uint64) uint32 {
	if v > uint64(MaxUint32) {
		return MaxUint32
	}

	return uint32(v)
}

// RoundToUint32 rounds f to the nearest integer in [lo, MaxUint32].
// NaN and values below lo map to lo.
func RoundToUint32(f float64, lo uint32) uint32 {
	v := math.Round(f)

	switch {
	case !(v >= float64(lo)):
		return lo
	case v >= float64(MaxUint32):
		return MaxUint32
	default:
		return uint32(v)
	}
}
