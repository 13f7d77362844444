package segment

import (
	"bytes"
	"context"
	"slices"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/imgsim/pipeline"
)

var _ Segment = (*Memory)(nil)

// Memory is an in-memory segment.
type Memory struct {
	mu       sync.RWMutex
	closed   bool
	live     *roaring.Bitmap
	stored   []map[string][]byte
	postings map[string]map[string]*roaring.Bitmap // field -> term -> docs
}

// NewMemory creates an empty in-memory segment.
func NewMemory() *Memory {
	return &Memory{
		live:     roaring.New(),
		postings: make(map[string]map[string]*roaring.Bitmap),
	}
}

// MaxDoc implements Reader.
func (m *Memory) MaxDoc() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.stored)
}

// Live implements Reader.
func (m *Memory) Live(_ context.Context) (*roaring.Bitmap, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	return m.live.Clone(), nil
}

// Stored implements Reader.
func (m *Memory) Stored(_ context.Context, doc int, field string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	if doc < 0 || doc >= len(m.stored) {
		return nil, ErrDocNotFound
	}
	return m.stored[doc][field], nil
}

// Postings implements Reader.
func (m *Memory) Postings(_ context.Context, field, term string) (*roaring.Bitmap, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	if bm, ok := m.postings[field][term]; ok {
		return bm.Clone(), nil
	}
	return roaring.New(), nil
}

// Terms implements Reader.
func (m *Memory) Terms(_ context.Context, field string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	terms := make([]string, 0, len(m.postings[field]))
	for t := range m.postings[field] {
		terms = append(terms, t)
	}
	slices.Sort(terms)
	return terms, nil
}

// Add implements Writer.
func (m *Memory) Add(_ context.Context, fields []pipeline.Field) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, ErrClosed
	}

	doc := len(m.stored)
	stored := make(map[string][]byte)
	for _, f := range fields {
		if f.Stored {
			stored[f.Name] = bytes.Clone(f.Value)
		}
		if f.Indexed {
			terms, ok := m.postings[f.Name]
			if !ok {
				terms = make(map[string]*roaring.Bitmap)
				m.postings[f.Name] = terms
			}
			bm, ok := terms[string(f.Value)]
			if !ok {
				bm = roaring.New()
				terms[string(f.Value)] = bm
			}
			bm.Add(uint32(doc))
		}
	}
	m.stored = append(m.stored, stored)
	m.live.Add(uint32(doc))
	return doc, nil
}

// Delete implements Writer.
func (m *Memory) Delete(_ context.Context, doc int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if doc < 0 || doc >= len(m.stored) {
		return ErrDocNotFound
	}
	m.live.Remove(uint32(doc))
	return nil
}

// Close releases the segment. Further calls fail with ErrClosed.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.stored = nil
	m.postings = nil
	return nil
}
