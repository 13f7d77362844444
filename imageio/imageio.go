// Package imageio decodes image bytes and bounds their size before feature extraction.
package imageio

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	// Registered decoders.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrNoContent is returned for empty input.
var ErrNoContent = errors.New("no image content")

// DecodeError indicates bytes that are not a decodable image.
//
// The original underlying error can be accessed via errors.Unwrap.
type DecodeError struct {
	cause error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode image: %v", e.cause)
}

func (e *DecodeError) Unwrap() error { return e.cause }

// Decode decodes data and returns the image with its format name
// ("jpeg", "png", "gif", "bmp", "tiff" or "webp").
func Decode(data []byte) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", ErrNoContent
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", &DecodeError{cause: err}
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, "", &DecodeError{cause: errors.New("image has zero area")}
	}
	return img, format, nil
}

// DecodeConfig returns the dimensions and format without decoding pixels.
func DecodeConfig(data []byte) (image.Config, string, error) {
	if len(data) == 0 {
		return image.Config{}, "", ErrNoContent
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return image.Config{}, "", &DecodeError{cause: err}
	}
	return cfg, format, nil
}

// Fit downscales img so that neither side exceeds maxDim, preserving the
// aspect ratio. Images already within bounds, or maxDim <= 0, are returned unchanged.
func Fit(img image.Image, maxDim int) image.Image {
	if maxDim <= 0 {
		return img
	}
	b := img.Bounds()
	if b.Dx() <= maxDim && b.Dy() <= maxDim {
		return img
	}
	return imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)
}

// BufferBytes estimates the memory held by a decoded image of the given size.
func BufferBytes(width, height int) int64 {
	return int64(width) * int64(height) * 4
}
