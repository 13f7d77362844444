package hashing

import (
	"fmt"
	"math/rand/v2"
)

// Generate builds a table for scheme with one projection family per entry of dims.
// The same (scheme, dims, seed, params) always yields the same table.
func Generate(scheme Scheme, dims []int, seed uint64, params Params) (*Table, error) {
	if err := params.validate(scheme); err != nil {
		return nil, err
	}
	if len(dims) == 0 {
		return nil, fmt.Errorf("%w: no dimensions", ErrInvalidParams)
	}

	families := make(map[int]*Family, len(dims))
	for _, dim := range dims {
		if dim <= 0 {
			return nil, fmt.Errorf("%w: dimension %d", ErrInvalidParams, dim)
		}
		if _, dup := families[dim]; dup {
			continue
		}
		// Each dimension gets its own stream so adding a dimension never changes existing families.
		rng := rand.New(rand.NewPCG(seed, uint64(dim)))
		families[dim] = generateFamily(rng, scheme, dim, params)
	}

	return newTable(scheme, params, seed, families)
}

func generateFamily(rng *rand.Rand, scheme Scheme, dim int, p Params) *Family {
	fam := &Family{Dim: dim}
	switch scheme {
	case SchemeBitSampling:
		fam.Planes = make([][]float32, p.Bundles*p.Bits)
		for i := range fam.Planes {
			plane := make([]float32, dim)
			for j := range plane {
				plane[j] = float32(rng.Float64()*2 - 1)
			}
			fam.Planes[i] = plane
		}
	case SchemeLSH:
		fam.Planes = make([][]float32, p.Functions)
		fam.Offsets = make([]float32, p.Functions)
		for i := range fam.Planes {
			plane := make([]float32, dim)
			for j := range plane {
				plane[j] = float32(rng.NormFloat64())
			}
			fam.Planes[i] = plane
			fam.Offsets[i] = float32(rng.Float64() * p.Width)
		}
	}
	return fam
}

func newTable(scheme Scheme, params Params, seed uint64, families map[int]*Family) (*Table, error) {
	t := &Table{
		scheme:   scheme,
		params:   params,
		seed:     seed,
		families: families,
	}
	payload, err := encodePayload(t)
	if err != nil {
		return nil, err
	}
	t.fingerprint = fingerprint(payload)
	return t, nil
}
