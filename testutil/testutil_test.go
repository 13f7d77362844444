package testutil

import (
	"bytes"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniformVectors(t *testing.T) {
	v := NewRNG(4711).UniformVectors(8, 33)

	require.Len(t, v, 8)
	for _, vec := range v {
		require.Len(t, vec, 33)
		assert.Equal(t, 33, cap(vec))
		for _, x := range vec {
			assert.GreaterOrEqual(t, x, 0.0)
			assert.Less(t, x, 1.0)
		}
	}
	assert.NotEqual(t, v[0], v[1])
}

func TestRNG_SameSeedSameSequence(t *testing.T) {
	a, b := NewRNG(9), NewRNG(9)
	for range 10 {
		assert.Equal(t, a.Intn(1000), b.Intn(1000))
		assert.Equal(t, a.Float64(), b.Float64())
	}
}

func TestReset(t *testing.T) {
	rng := NewRNG(4711)
	v1 := rng.UniformVectors(1, 10)
	rng.Reset()
	v2 := rng.UniformVectors(1, 10)

	assert.Equal(t, v1, v2)
	assert.Equal(t, int64(4711), rng.Seed())
}

func TestGradient(t *testing.T) {
	img := Gradient(16, 8)

	assert.Equal(t, 16, img.Bounds().Dx())
	assert.Equal(t, 8, img.Bounds().Dy())
	assert.Equal(t, color.NRGBA{R: 0, G: 0, B: 128, A: 255}, img.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{R: 255, G: 255, B: 128, A: 255}, img.NRGBAAt(15, 7))
}

func TestCheckerboard(t *testing.T) {
	img := Checkerboard(8, 8, 2, color.Black, color.White)

	assert.Equal(t, color.NRGBA{A: 255}, img.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, img.NRGBAAt(2, 0))
}

func TestNoiseDeterministic(t *testing.T) {
	a := NewRNG(1).Noise(4, 4)
	b := NewRNG(1).Noise(4, 4)

	assert.Equal(t, a.Pix, b.Pix)
}

func TestEncodePNG(t *testing.T) {
	data := EncodePNG(t, Gradient(4, 4))

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 4, img.Bounds().Dx())
}
