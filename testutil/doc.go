// Package testutil provides testing utilities for imgsim.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seeded RNG, synthetic image generators and encoders so tests
// never depend on image fixtures checked into the repository.
//
// # Synthetic Images
//
//	img := testutil.Gradient(64, 48)
//	img := testutil.Checkerboard(64, 64, 8, color.Black, color.White)
//	img := rng.Noise(32, 32)
//
// # Encoding
//
//	data := testutil.EncodePNG(t, img)
//	data := testutil.EncodeJPEG(t, img, 90)
package testutil
