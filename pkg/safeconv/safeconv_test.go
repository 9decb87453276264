package safeconv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMustIntToUint32(t *testing.T) {
	t.Parallel()

	t.Run("normal_value", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, uint32(42), MustIntToUint32(42))
	})

	t.Run("max", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, MaxUint32, MustIntToUint32(int(MaxUint32)))
	})

	t.Run("negative_panics", func(t *testing.T) {
		t.Parallel()

		assert.PanicsWithValue(t, "safeconv: int to uint32 out of bounds", func() {
			MustIntToUint32(-1)
		})
	})

	t.Run("overflow_panics", func(t *testing.T) {
		t.Parallel()

		assert.PanicsWithValue(t, "safeconv: int to uint32 out of bounds", func() {
			MustIntToUint32(int(MaxUint32) + 1)
		})
	})
}

func TestSaturateUint32(t *testing.T) {
	t.Parallel()

	assert.Equal(t, uint32(7), SaturateUint32(7))
	assert.Equal(t, MaxUint32, SaturateUint32(uint64(MaxUint32)))
	assert.Equal(t, MaxUint32, SaturateUint32(math.MaxUint64))
}

func TestRoundToUint32(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   float64
		lo   uint32
		want uint32
	}{
		{name: "rounds_down", in: 2.4, lo: 0, want: 2},
		{name: "rounds_half_away", in: 2.5, lo: 0, want: 3},
		{name: "floor_applies", in: 0.2, lo: 1, want: 1},
		{name: "nan", in: math.NaN(), lo: 1, want: 1},
		{name: "negative", in: -5, lo: 0, want: 0},
		{name: "huge", in: 1e12, lo: 1, want: MaxUint32},
		{name: "inf", in: math.Inf(1), lo: 1, want: MaxUint32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, RoundToUint32(tt.in, tt.lo))
		})
	}
}
