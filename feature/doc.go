// Package feature is the descriptor registry: a closed catalogue of global
// image features, each with an extraction function, a byte codec and a
// distance function.
//
// The registry is a compile-time table keyed by Kind. Adding a feature is a
// registry edit; there is no runtime lookup by type name.
//
//	d, err := feature.Extract(feature.KindColorLayout, img)
//	b, err := feature.Encode(d)
//	stored, err := feature.Decode(feature.KindColorLayout, b)
//	dist, err := feature.Distance(d, stored)
//
// # Byte layouts
//
// Quantized kinds (COLOR_LAYOUT, EDGE_HISTOGRAM, SIMPLE_COLOR_HISTOGRAM,
// OPPONENT_HISTOGRAM, LUMINANCE_LAYOUT, CEDD) store one byte per component and
// round trip losslessly. AUTO_COLOR_CORRELOGRAM stores little-endian float32 values;
// extraction already rounds to float32, so the round trip is exact as well.
//
// Distances are exactly symmetric and non-negative, and identical descriptors
// are at distance 0. They are not guaranteed to be metrics. Descriptors with
// NaN or infinite components are rejected with ErrCorruptRecord.
package feature
