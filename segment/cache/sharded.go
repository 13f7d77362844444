package cache

import (
	"hash/maphash"

	"github.com/hupe1980/imgsim/resource"
)

const numShards = 16

// Sharded spreads entries over independent LRUs to reduce lock contention
// when many scorers read concurrently.
type Sharded struct {
	shards [numShards]*LRU
	seed   maphash.Seed
}

// NewSharded creates a sharded cache. The capacity is divided evenly across
// all shards.
func NewSharded(capacity int64, rc *resource.Controller) *Sharded {
	s := &Sharded{seed: maphash.MakeSeed()}
	per := max(capacity/numShards, 1)
	for i := range numShards {
		s.shards[i] = NewLRU(per, rc)
	}
	return s
}

func (s *Sharded) shard(key Key) *LRU {
	var h maphash.Hash
	h.SetSeed(s.seed)
	_, _ = h.WriteString(key.Field)
	var buf [8]byte
	for i := range buf {
		buf[i] = byte(uint64(key.Doc) >> (8 * i))
	}
	_, _ = h.Write(buf[:])
	return s.shards[h.Sum64()%numShards]
}

// Get returns a cached value.
func (s *Sharded) Get(key Key) ([]byte, bool) { return s.shard(key).Get(key) }

// Set caches a value.
func (s *Sharded) Set(key Key, b []byte) { s.shard(key).Set(key, b) }

// Purge empties every shard.
func (s *Sharded) Purge() {
	for _, sh := range s.shards {
		sh.Purge()
	}
}

// Stats returns aggregated hit and miss counts.
func (s *Sharded) Stats() (hits, misses int64) {
	for _, sh := range s.shards {
		h, m := sh.Stats()
		hits += h
		misses += m
	}
	return hits, misses
}

// Size returns the cached bytes across all shards.
func (s *Sharded) Size() int64 {
	var total int64
	for _, sh := range s.shards {
		total += sh.Size()
	}
	return total
}
