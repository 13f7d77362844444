package cache

import (
	"context"

	"github.com/hupe1980/imgsim/resource"
	"github.com/hupe1980/imgsim/segment"
)

// Reader serves Stored from a cache and forwards everything else.
type Reader struct {
	segment.Reader
	cache *Sharded
}

// NewReader wraps r with a cache of capacity bytes.
func NewReader(r segment.Reader, capacity int64, rc *resource.Controller) *Reader {
	return &Reader{Reader: r, cache: NewSharded(capacity, rc)}
}

// Stored returns the stored value of field for doc. Absent values are not
// cached.
func (r *Reader) Stored(ctx context.Context, doc int, field string) ([]byte, error) {
	key := Key{Doc: doc, Field: field}
	if b, ok := r.cache.Get(key); ok {
		return b, nil
	}
	b, err := r.Reader.Stored(ctx, doc, field)
	if err != nil || b == nil {
		return b, err
	}
	r.cache.Set(key, b)
	return b, nil
}

// Stats returns the cache hit and miss counts.
func (r *Reader) Stats() (hits, misses int64) { return r.cache.Stats() }

// Purge drops every cached value.
func (r *Reader) Purge() { r.cache.Purge() }
