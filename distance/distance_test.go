package distance

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestL1AndL2(t *testing.T) {
	tests := []struct {
		name   string
		a, b   []float64
		l1, l2 float64
	}{
		{"Simple", []float64{1, 2, 3}, []float64{4, 5, 6}, 9, math.Sqrt(27)},
		{"Identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 0, 0},
		{"Mixed", []float64{1, -1}, []float64{-1, 1}, 4, math.Sqrt(8)},
		{"Empty", []float64{}, []float64{}, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.l1, L1(tt.a, tt.b), 1e-9)
			assert.InDelta(t, tt.l2, L2(tt.a, tt.b), 1e-9)
			assert.InDelta(t, tt.l2*tt.l2, SquaredL2(tt.a, tt.b), 1e-9)
		})
	}
}

func TestWeightedL2(t *testing.T) {
	a := []float64{1, 1, 1}
	b := []float64{0, 0, 0}
	assert.InDelta(t, math.Sqrt(2+1+1), WeightedL2(a, b, []float64{2}), 1e-9)
	assert.InDelta(t, 0.0, WeightedL2(a, a, []float64{4, 2, 2}), 1e-9)
}

func TestRelativeL1(t *testing.T) {
	assert.InDelta(t, 0.0, RelativeL1([]float64{0.5, 0.2}, []float64{0.5, 0.2}), 1e-12)
	assert.InDelta(t, 1.0/3.0, RelativeL1([]float64{1}, []float64{0}), 1e-12)
}

func TestJensenShannon(t *testing.T) {
	t.Run("Identical", func(t *testing.T) {
		h := []float64{10, 20, 0, 5}
		assert.Equal(t, 0.0, JensenShannon(h, h))
	})

	t.Run("ScaleInvariant", func(t *testing.T) {
		assert.InDelta(t, 0.0, JensenShannon([]float64{1, 2, 3}, []float64{2, 4, 6}), 1e-12)
	})

	t.Run("Disjoint", func(t *testing.T) {
		assert.InDelta(t, 1.0, JensenShannon([]float64{1, 0}, []float64{0, 1}), 1e-12)
	})

	t.Run("Symmetric", func(t *testing.T) {
		a := []float64{3, 1, 4, 1, 5}
		b := []float64{9, 2, 6, 5, 3}
		assert.Equal(t, JensenShannon(a, b), JensenShannon(b, a))
	})

	t.Run("Empty", func(t *testing.T) {
		assert.Equal(t, 0.0, JensenShannon([]float64{0, 0}, []float64{0, 0}))
		assert.Equal(t, 1.0, JensenShannon([]float64{0, 0}, []float64{1, 0}))
	})
}

func TestSymmetryIsExact(t *testing.T) {
	a := make([]float64, 64)
	b := make([]float64, 64)
	for i := range a {
		a[i] = float64((i*37)%11) * 0.1
		b[i] = float64((i*53)%13)*0.07 + 1e-9
	}
	a[3], b[5] = 0, 0

	tests := []struct {
		name string
		fn   func(a, b []float64) float64
	}{
		{"L1", L1},
		{"SquaredL2", SquaredL2},
		{"L2", L2},
		{"RelativeL1", RelativeL1},
		{"JensenShannon", JensenShannon},
		{"Tanimoto", Tanimoto},
		{"WeightedL2", func(a, b []float64) float64 { return WeightedL2(a, b, []float64{2, 1, 0.5}) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.fn(a, b), tt.fn(b, a))
		})
	}
}

func TestTanimoto(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 0},
		{"disjoint", []float64{1, 0}, []float64{0, 1}, 1},
		{"both zero", []float64{0, 0}, []float64{0, 0}, 0},
		{"one zero", []float64{0, 0}, []float64{3, 4}, 1},
		{"partial", []float64{1, 1}, []float64{1, 0}, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Tanimoto(tt.a, tt.b), 1e-12)
		})
	}
}
