// Package distance provides the vector distance functions used by the image
// descriptors.
//
// All functions operate on float64 slices of equal length. Callers are
// responsible for the length check; the descriptor registry guarantees it
// before dispatching.
//
//   - L1, L2, SquaredL2: Manhattan and Euclidean distance
//   - WeightedL2: per-component weights (colour layout coefficients)
//   - JensenShannon: divergence over sum-normalized histograms
//   - RelativeL1: L1 with per-bin normalization (correlograms)
package distance
