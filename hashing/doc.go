// Package hashing turns descriptor vectors into integer hash tokens that a
// term index can intersect cheaply.
//
// Two schemes are supported:
//
//   - BIT_SAMPLING: bundles of random hyperplanes; each bundle packs the signs
//     of its projections into one token.
//   - LSH: p-stable (gaussian) projections; each function emits
//     floor((a·v + b) / w).
//
// A Table holds one family of projections per vector dimension and is
// immutable once built. Tables are produced at build time by Generate and
// persisted in a small binary format (see Marshal); the running process
// loads them exactly once through LoadTables. A failed load is remembered per
// scheme and reported only to callers that ask for that scheme.
package hashing
