package feature

import (
	"fmt"
	"strings"
)

// Kind identifies one entry in the descriptor registry.
type Kind uint8

const (
	// KindColorLayout is the MPEG-7 color layout descriptor (DCT of an 8x8 YCbCr thumbnail).
	KindColorLayout Kind = iota + 1
	// KindEdgeHistogram is the MPEG-7 edge histogram descriptor (80 bins).
	KindEdgeHistogram
	// KindSimpleColorHistogram is a 64 bin RGB histogram.
	KindSimpleColorHistogram
	// KindAutoColorCorrelogram is an auto color correlogram over 64 colors and 4 distances.
	KindAutoColorCorrelogram
	// KindLuminanceLayout is an 8x8 grayscale thumbnail.
	KindLuminanceLayout
	// KindOpponentHistogram is a 64 bin histogram in opponent color space.
	KindOpponentHistogram
	// KindCEDD is the color and edge directivity descriptor: 24 fuzzy colors
	// for each of 6 texture classes, quantized to 3 bits per bin.
	KindCEDD
)

var kindNames = map[Kind]string{
	KindColorLayout:          "COLOR_LAYOUT",
	KindEdgeHistogram:        "EDGE_HISTOGRAM",
	KindSimpleColorHistogram: "SIMPLE_COLOR_HISTOGRAM",
	KindAutoColorCorrelogram: "AUTO_COLOR_CORRELOGRAM",
	KindLuminanceLayout:      "LUMINANCE_LAYOUT",
	KindOpponentHistogram:    "OPPONENT_HISTOGRAM",
	KindCEDD:                 "CEDD",
}

// String returns the canonical upper snake case name (e.g. "COLOR_LAYOUT").
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(%d)", k)
}

// FieldName returns the lower snake case name used in field names (e.g. "color_layout").
func (k Kind) FieldName() string {
	return strings.ToLower(k.String())
}

// Valid reports whether k is a registered kind.
func (k Kind) Valid() bool {
	_, ok := registry[k]
	return ok
}

// Len returns the number of vector components of the kind's descriptor.
func (k Kind) Len() int {
	if e, ok := registry[k]; ok {
		return e.length
	}
	return 0
}

// ParseKind resolves a kind by name. Matching is case-insensitive and accepts
// both "COLOR_LAYOUT" and "color_layout".
func ParseKind(name string) (Kind, error) {
	want := strings.ToUpper(strings.TrimSpace(name))
	for k, n := range kindNames {
		if n == want {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, name)
}

// Kinds returns all registered kinds in ascending order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, len(kindNames))
	for k := KindColorLayout; k <= KindCEDD; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}
