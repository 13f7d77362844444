package testutil

import (
	"math/rand/v2"
	"sync"
)

// RNG is a seeded, goroutine-safe source for test vectors and images.
// The same seed always yields the same sequence.
type RNG struct {
	mu   sync.Mutex
	seed int64
	src  *rand.PCG
	rand *rand.Rand
}

// NewRNG returns an RNG seeded with seed.
func NewRNG(seed int64) *RNG {
	src := rand.NewPCG(uint64(seed), 0)
	return &RNG{seed: seed, src: src, rand: rand.New(src)}
}

// Seed returns the seed the RNG was created with.
func (r *RNG) Seed() int64 { return r.seed }

// Reset rewinds the sequence to its start.
func (r *RNG) Reset() {
	r.mu.Lock()
	r.src.Seed(uint64(r.seed), 0)
	r.mu.Unlock()
}

// Intn returns a value in [0, n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.IntN(n)
}

// Float64 returns a value in [0, 1).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// UniformVectors returns num descriptor-shaped vectors of length dim with
// components in [0, 1). The vectors share one backing array.
func (r *RNG) UniformVectors(num, dim int) [][]float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	backing := make([]float64, num*dim)
	for i := range backing {
		backing[i] = r.rand.Float64()
	}
	out := make([][]float64, num)
	for i := range out {
		out[i] = backing[i*dim : (i+1)*dim : (i+1)*dim]
	}
	return out
}
