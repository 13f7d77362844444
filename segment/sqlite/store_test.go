package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/imgsim/feature"
	"github.com/hupe1980/imgsim/hashing"
	"github.com/hupe1980/imgsim/mapping"
	"github.com/hupe1980/imgsim/pipeline"
	"github.com/hupe1980/imgsim/segment"
	"github.com/hupe1980/imgsim/segment/segmenttest"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "segment.db"))
	require.NoError(t, err)
	return s
}

func TestStore(t *testing.T) {
	segmenttest.Run(t, func(t *testing.T) segment.Segment {
		return openTemp(t)
	})
}

func TestStore_InMemory(t *testing.T) {
	s, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	defer s.Close()

	doc, err := s.Add(context.Background(), []pipeline.Field{{Name: "f", Value: []byte{1}, Stored: true}})
	require.NoError(t, err)
	assert.Equal(t, 0, doc)

	v, err := s.Stored(context.Background(), 0, "f")
	require.NoError(t, err)
	assert.Equal(t, []byte{1}, v)
}

func TestStore_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "segment.db")

	s, err := Open(ctx, path)
	require.NoError(t, err)

	for i := range 3 {
		_, err := s.Add(ctx, []pipeline.Field{
			{Name: "img.luminance_layout", Value: []byte{byte(i)}, Stored: true},
			{Name: "tag", Value: []byte("x"), Indexed: true},
		})
		require.NoError(t, err)
	}
	require.NoError(t, s.Delete(ctx, 0))
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	s, err = Open(ctx, path)
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, 3, s.MaxDoc())
	live, err := s.Live(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uint32{1, 2}, live.ToArray())

	v, err := s.Stored(ctx, 2, "img.luminance_layout")
	require.NoError(t, err)
	assert.Equal(t, []byte{2}, v)

	doc, err := s.Add(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, doc)
	assert.Equal(t, "go-json", s.Codec().Name())
}

func TestStore_Mapping(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)
	defer s.Close()

	spec := mapping.FieldSpec{
		Name: "photo",
		Features: []mapping.FeatureSpec{
			{Kind: feature.KindColorLayout, Hashes: []hashing.Scheme{hashing.SchemeLSH}},
		},
	}
	require.NoError(t, s.SaveMapping(ctx, spec))

	got, err := s.Mapping(ctx, "photo")
	require.NoError(t, err)
	assert.Equal(t, spec, got)

	_, err = s.Mapping(ctx, "thumb")
	assert.Error(t, err)

	err = s.SaveMapping(ctx, mapping.FieldSpec{Name: "empty"})
	assert.ErrorIs(t, err, mapping.ErrNoFeatures)
}

func TestOpen_EmptyPath(t *testing.T) {
	_, err := Open(context.Background(), "")
	assert.Error(t, err)
}
