// Package segmenttest provides a behavioural test suite shared by segment
// implementations.
package segmenttest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/imgsim/pipeline"
	"github.com/hupe1980/imgsim/segment"
)

// Run exercises open against the segment.Segment contract. open must return
// an empty segment; Run closes it.
func Run(t *testing.T, open func(t *testing.T) segment.Segment) {
	t.Helper()

	docs := [][]pipeline.Field{
		{
			{Name: "img.color_layout", Value: []byte{1, 2, 3}, Stored: true},
			{Name: "img.color_layout.hash.lsh.0", Value: []byte("7"), Indexed: true},
			{Name: "img.color_layout.hash.lsh.1", Value: []byte("-2"), Indexed: true},
			{Name: "img.metadata.exif.make", Value: []byte("Canon"), Stored: true, Indexed: true},
		},
		{
			{Name: "img.color_layout", Value: []byte{4, 5, 6}, Stored: true},
			{Name: "img.color_layout.hash.lsh.0", Value: []byte("7"), Indexed: true},
			{Name: "img.color_layout.hash.lsh.1", Value: []byte("3"), Indexed: true},
		},
		{
			{Name: "img.luminance_layout", Value: []byte{9}, Stored: true},
		},
	}

	fill := func(t *testing.T, s segment.Segment) {
		t.Helper()
		for i, fields := range docs {
			doc, err := s.Add(context.Background(), fields)
			require.NoError(t, err)
			require.Equal(t, i, doc)
		}
	}

	t.Run("empty", func(t *testing.T) {
		s := open(t)
		defer s.Close()

		assert.Zero(t, s.MaxDoc())
		live, err := s.Live(context.Background())
		require.NoError(t, err)
		assert.True(t, live.IsEmpty())

		_, err = s.Stored(context.Background(), 0, "img.color_layout")
		assert.ErrorIs(t, err, segment.ErrDocNotFound)
	})

	t.Run("stored", func(t *testing.T) {
		s := open(t)
		defer s.Close()
		fill(t, s)

		assert.Equal(t, 3, s.MaxDoc())

		v, err := s.Stored(context.Background(), 1, "img.color_layout")
		require.NoError(t, err)
		assert.Equal(t, []byte{4, 5, 6}, v)

		v, err = s.Stored(context.Background(), 2, "img.color_layout")
		require.NoError(t, err)
		assert.Nil(t, v)

		// Index-only fields are not stored.
		v, err = s.Stored(context.Background(), 0, "img.color_layout.hash.lsh.0")
		require.NoError(t, err)
		assert.Nil(t, v)

		_, err = s.Stored(context.Background(), 3, "img.color_layout")
		assert.ErrorIs(t, err, segment.ErrDocNotFound)
	})

	t.Run("postings", func(t *testing.T) {
		s := open(t)
		defer s.Close()
		fill(t, s)

		bm, err := s.Postings(context.Background(), "img.color_layout.hash.lsh.0", "7")
		require.NoError(t, err)
		assert.Equal(t, []uint32{0, 1}, bm.ToArray())

		bm, err = s.Postings(context.Background(), "img.color_layout.hash.lsh.1", "3")
		require.NoError(t, err)
		assert.Equal(t, []uint32{1}, bm.ToArray())

		bm, err = s.Postings(context.Background(), "img.color_layout.hash.lsh.1", "99")
		require.NoError(t, err)
		assert.True(t, bm.IsEmpty())

		// Stored-only fields have no postings.
		bm, err = s.Postings(context.Background(), "img.color_layout", "\x01\x02\x03")
		require.NoError(t, err)
		assert.True(t, bm.IsEmpty())

		terms, err := s.Terms(context.Background(), "img.color_layout.hash.lsh.1")
		require.NoError(t, err)
		assert.Equal(t, []string{"-2", "3"}, terms)

		terms, err = s.Terms(context.Background(), "missing")
		require.NoError(t, err)
		assert.Empty(t, terms)
	})

	t.Run("returned bitmaps are copies", func(t *testing.T) {
		s := open(t)
		defer s.Close()
		fill(t, s)

		bm, err := s.Postings(context.Background(), "img.color_layout.hash.lsh.0", "7")
		require.NoError(t, err)
		bm.Add(2)

		again, err := s.Postings(context.Background(), "img.color_layout.hash.lsh.0", "7")
		require.NoError(t, err)
		assert.Equal(t, uint64(2), again.GetCardinality())
	})

	t.Run("delete", func(t *testing.T) {
		s := open(t)
		defer s.Close()
		fill(t, s)

		require.NoError(t, s.Delete(context.Background(), 1))
		assert.ErrorIs(t, s.Delete(context.Background(), 10), segment.ErrDocNotFound)

		live, err := s.Live(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []uint32{0, 2}, live.ToArray())
		assert.Equal(t, 3, s.MaxDoc())

		// Deleted documents stay addressable.
		v, err := s.Stored(context.Background(), 1, "img.color_layout")
		require.NoError(t, err)
		assert.Equal(t, []byte{4, 5, 6}, v)

		doc, err := s.Add(context.Background(), docs[2])
		require.NoError(t, err)
		assert.Equal(t, 3, doc)
	})

	t.Run("closed", func(t *testing.T) {
		s := open(t)
		require.NoError(t, s.Close())

		_, err := s.Add(context.Background(), docs[0])
		assert.ErrorIs(t, err, segment.ErrClosed)
		_, err = s.Live(context.Background())
		assert.ErrorIs(t, err, segment.ErrClosed)
	})
}
