package feature

import (
	"encoding/binary"
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
)

type extractFunc func(img *image.NRGBA) ([]float64, error)

type distanceFunc func(a, b []float64) float64

type codecKind uint8

const (
	codecBytes codecKind = iota
	codecFloat32
)

type entry struct {
	length   int
	codec    codecKind
	extract  extractFunc
	distance distanceFunc
}

var registry = map[Kind]entry{
	KindColorLayout:          {length: colorLayoutLen, codec: codecBytes, extract: extractColorLayout, distance: colorLayoutDistance},
	KindEdgeHistogram:        {length: edgeHistogramLen, codec: codecBytes, extract: extractEdgeHistogram, distance: edgeHistogramDistance},
	KindSimpleColorHistogram: {length: colorHistogramLen, codec: codecBytes, extract: extractSimpleColorHistogram, distance: simpleColorHistogramDistance},
	KindAutoColorCorrelogram: {length: correlogramLen, codec: codecFloat32, extract: extractAutoColorCorrelogram, distance: correlogramDistance},
	KindLuminanceLayout:      {length: luminanceLayoutLen, codec: codecBytes, extract: extractLuminanceLayout, distance: luminanceLayoutDistance},
	KindOpponentHistogram:    {length: opponentHistogramLen, codec: codecBytes, extract: extractOpponentHistogram, distance: opponentHistogramDistance},
	KindCEDD:                 {length: ceddLen, codec: codecBytes, extract: extractCEDD, distance: ceddDistance},
}

func lookup(kind Kind) (entry, error) {
	e, ok := registry[kind]
	if !ok {
		return entry{}, fmt.Errorf("%w: %d", ErrUnknownKind, kind)
	}
	return e, nil
}

// Extract computes the descriptor of kind for img.
func Extract(kind Kind, img image.Image) (Descriptor, error) {
	e, err := lookup(kind)
	if err != nil {
		return Descriptor{}, err
	}
	if img == nil {
		return Descriptor{}, &ExtractionError{Kind: kind, Reason: "nil image"}
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return Descriptor{}, &ExtractionError{Kind: kind, Reason: "empty image"}
	}

	vec, err := e.extract(toNRGBA(img))
	if err != nil {
		return Descriptor{}, &ExtractionError{Kind: kind, Reason: "extraction failed", cause: err}
	}
	if len(vec) != e.length {
		return Descriptor{}, &ExtractionError{Kind: kind, Reason: fmt.Sprintf("produced %d components, want %d", len(vec), e.length)}
	}
	return Descriptor{Kind: kind, Vector: vec}, nil
}

// Encode serializes d into its kind's byte layout.
func Encode(d Descriptor) ([]byte, error) {
	e, err := lookup(d.Kind)
	if err != nil {
		return nil, err
	}
	if len(d.Vector) != e.length {
		return nil, fmt.Errorf("%w: %s has %d components, want %d", ErrCorruptRecord, d.Kind, len(d.Vector), e.length)
	}

	switch e.codec {
	case codecFloat32:
		buf := make([]byte, 4*e.length)
		for i, v := range d.Vector {
			binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(float32(v)))
		}
		return buf, nil
	default:
		buf := make([]byte, e.length)
		for i, v := range d.Vector {
			if v < 0 || v > 255 || v != math.Trunc(v) {
				return nil, fmt.Errorf("%w: %s component %d out of byte range: %v", ErrCorruptRecord, d.Kind, i, v)
			}
			buf[i] = byte(v)
		}
		return buf, nil
	}
}

// Decode parses a record produced by Encode for the given kind.
func Decode(kind Kind, data []byte) (Descriptor, error) {
	e, err := lookup(kind)
	if err != nil {
		return Descriptor{}, err
	}

	switch e.codec {
	case codecFloat32:
		if len(data) != 4*e.length {
			return Descriptor{}, fmt.Errorf("%w: %s record is %d bytes, want %d", ErrCorruptRecord, kind, len(data), 4*e.length)
		}
		vec := make([]float64, e.length)
		for i := range vec {
			f := math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
			if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
				return Descriptor{}, fmt.Errorf("%w: %s component %d is not finite", ErrCorruptRecord, kind, i)
			}
			vec[i] = float64(f)
		}
		return Descriptor{Kind: kind, Vector: vec}, nil
	default:
		if len(data) != e.length {
			return Descriptor{}, fmt.Errorf("%w: %s record is %d bytes, want %d", ErrCorruptRecord, kind, len(data), e.length)
		}
		vec := make([]float64, e.length)
		for i, b := range data {
			vec[i] = float64(b)
		}
		return Descriptor{Kind: kind, Vector: vec}, nil
	}
}

// Distance returns the kind-specific distance between a and b.
func Distance(a, b Descriptor) (float64, error) {
	if a.Kind != b.Kind {
		return 0, &KindMismatchError{Left: a.Kind, Right: b.Kind}
	}
	e, err := lookup(a.Kind)
	if err != nil {
		return 0, err
	}
	if len(a.Vector) != e.length || len(b.Vector) != e.length {
		return 0, fmt.Errorf("%w: %s descriptors have %d and %d components, want %d", ErrCorruptRecord, a.Kind, len(a.Vector), len(b.Vector), e.length)
	}
	for _, v := range [][]float64{a.Vector, b.Vector} {
		if i := nonFinite(v); i >= 0 {
			return 0, fmt.Errorf("%w: %s component %d is not finite", ErrCorruptRecord, a.Kind, i)
		}
	}
	d := e.distance(a.Vector, b.Vector)
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return 0, fmt.Errorf("%w: %s distance is not finite", ErrCorruptRecord, a.Kind)
	}
	if d < 0 {
		d = 0
	}
	return d, nil
}

// nonFinite returns the index of the first NaN or infinite component, or -1.
func nonFinite(v []float64) int {
	for i, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return i
		}
	}
	return -1
}

func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	return imaging.Clone(img)
}

// rgbAt returns 8 bit RGB at (x, y) relative to the image origin, with alpha ignored.
func rgbAt(img *image.NRGBA, x, y int) (r, g, b int) {
	i := img.PixOffset(x, y)
	return int(img.Pix[i]), int(img.Pix[i+1]), int(img.Pix[i+2])
}

func quantize(v, maxIn float64, levels int) float64 {
	if maxIn <= 0 {
		return 0
	}
	q := math.Floor(v/maxIn*float64(levels-1) + 0.5)
	if q < 0 {
		q = 0
	}
	if q > float64(levels-1) {
		q = float64(levels - 1)
	}
	return q
}
