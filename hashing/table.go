package hashing

import (
	"math"
	"sort"
)

// Family is the set of projections applied to vectors of one dimension.
type Family struct {
	Dim int
	// Planes holds Bundles*Bits hyperplanes (BIT_SAMPLING) or Functions
	// projection vectors (LSH), each of length Dim.
	Planes [][]float32
	// Offsets holds one offset in [0, Width) per LSH function. Empty for BIT_SAMPLING.
	Offsets []float32
}

// Table is an immutable hash function table for one scheme.
type Table struct {
	scheme      Scheme
	params      Params
	seed        uint64
	families    map[int]*Family
	fingerprint uint64
}

// Scheme returns the table's scheme.
func (t *Table) Scheme() Scheme { return t.scheme }

// Params returns the parameters the table was generated with.
func (t *Table) Params() Params { return t.params }

// Seed returns the generator seed.
func (t *Table) Seed() uint64 { return t.seed }

// Fingerprint identifies the table content. Two tables hash identically iff
// their fingerprints are equal.
func (t *Table) Fingerprint() uint64 { return t.fingerprint }

// Dims returns the vector dimensions the table supports, ascending.
func (t *Table) Dims() []int {
	dims := make([]int, 0, len(t.families))
	for d := range t.families {
		dims = append(dims, d)
	}
	sort.Ints(dims)
	return dims
}

// Tokens returns the number of tokens Hash emits.
func (t *Table) Tokens() int { return t.params.Tokens(t.scheme) }

// Hash maps vector to its tokens. The result is deterministic for a given table.
func (t *Table) Hash(vector []float64) ([]int32, error) {
	fam, ok := t.families[len(vector)]
	if !ok {
		return nil, &ShapeMismatchError{Scheme: t.scheme, Dim: len(vector)}
	}

	switch t.scheme {
	case SchemeBitSampling:
		bits := t.params.Bits
		tokens := make([]int32, t.params.Bundles)
		for i := range tokens {
			var token int32
			for j := range bits {
				if dot(fam.Planes[i*bits+j], vector) >= 0 {
					token |= 1 << j
				}
			}
			tokens[i] = token
		}
		return tokens, nil
	default:
		w := t.params.Width
		tokens := make([]int32, t.params.Functions)
		for i := range tokens {
			v := math.Floor((dot(fam.Planes[i], vector) + float64(fam.Offsets[i])) / w)
			tokens[i] = clampInt32(v)
		}
		return tokens, nil
	}
}

func dot(plane []float32, v []float64) float64 {
	var s float64
	for i, p := range plane {
		s += float64(p) * v[i]
	}
	return s
}

func clampInt32(v float64) int32 {
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	if v < math.MinInt32 {
		return math.MinInt32
	}
	return int32(v)
}
