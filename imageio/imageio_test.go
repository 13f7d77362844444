package imageio

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/imgsim/testutil"
)

func TestDecode(t *testing.T) {
	img := testutil.Gradient(40, 20)

	tests := []struct {
		name   string
		data   []byte
		format string
	}{
		{"png", testutil.EncodePNG(t, img), "png"},
		{"jpeg", testutil.EncodeJPEG(t, img, 90), "jpeg"},
		{"tiff", testutil.EncodeTIFF(t, img), "tiff"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, format, err := Decode(tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.format, format)
			assert.Equal(t, 40, got.Bounds().Dx())
			assert.Equal(t, 20, got.Bounds().Dy())

			cfg, _, err := DecodeConfig(tt.data)
			require.NoError(t, err)
			assert.Equal(t, 40, cfg.Width)
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	_, _, err := Decode(nil)
	assert.ErrorIs(t, err, ErrNoContent)

	_, _, err = Decode([]byte("definitely not an image"))
	var decErr *DecodeError
	require.ErrorAs(t, err, &decErr)
	assert.ErrorIs(t, err, image.ErrFormat)
}

func TestFit(t *testing.T) {
	tests := []struct {
		name         string
		w, h, maxDim int
		wantW, wantH int
	}{
		{"landscape", 1000, 500, 100, 100, 50},
		{"portrait", 300, 600, 150, 75, 150},
		{"within bounds", 80, 60, 100, 80, 60},
		{"no bound", 80, 60, 0, 80, 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Fit(testutil.Gradient(tt.w, tt.h), tt.maxDim)
			assert.Equal(t, tt.wantW, got.Bounds().Dx())
			assert.Equal(t, tt.wantH, got.Bounds().Dy())
		})
	}
}

func TestBufferBytes(t *testing.T) {
	assert.Equal(t, int64(1024*1024*4), BufferBytes(1024, 1024))
}
