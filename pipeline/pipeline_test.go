package pipeline

import (
	"context"
	"errors"
	"image/color"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/imgsim/feature"
	"github.com/hupe1980/imgsim/hashing"
	"github.com/hupe1980/imgsim/imageio"
	"github.com/hupe1980/imgsim/mapping"
	"github.com/hupe1980/imgsim/metadata"
	"github.com/hupe1980/imgsim/resource"
	"github.com/hupe1980/imgsim/testutil"
)

func testTables(t *testing.T, schemes ...hashing.Scheme) *hashing.Tables {
	t.Helper()
	var dims []int
	for _, k := range feature.Kinds() {
		dims = append(dims, k.Len())
	}
	var tables []*hashing.Table
	for _, s := range schemes {
		tbl, err := hashing.Generate(s, dims, 42, hashing.DefaultParams())
		require.NoError(t, err)
		tables = append(tables, tbl)
	}
	return hashing.NewTables(tables...)
}

func newPipeline(t *testing.T, tables *hashing.Tables, opts ...Option) *Pipeline {
	t.Helper()
	p, err := New(tables, opts...)
	require.NoError(t, err)
	return p
}

func fieldNames(fields []Field) []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names
}

func TestIndex_Fields(t *testing.T) {
	tables := testTables(t, hashing.SchemeBitSampling, hashing.SchemeLSH)
	p := newPipeline(t, tables)
	data := testutil.EncodePNG(t, testutil.Gradient(64, 48))

	spec := mapping.FieldSpec{
		Name: "img",
		Features: []mapping.FeatureSpec{
			{Kind: feature.KindLuminanceLayout},
			{Kind: feature.KindColorLayout, Hashes: []hashing.Scheme{hashing.SchemeLSH, hashing.SchemeBitSampling}},
		},
	}

	fields, err := p.Index(context.Background(), data, spec)
	require.NoError(t, err)

	params := hashing.DefaultParams()
	bits := params.Tokens(hashing.SchemeBitSampling)
	lsh := params.Tokens(hashing.SchemeLSH)
	require.Len(t, fields, 1+bits+1+lsh+1+1)

	assert.Equal(t, "img.color_layout", fields[0].Name)
	assert.True(t, fields[0].Stored)
	assert.False(t, fields[0].Indexed)

	assert.Equal(t, "img.color_layout.hash.bit_sampling.0", fields[1].Name)
	assert.True(t, fields[1].Indexed)
	assert.False(t, fields[1].Stored)

	tableField := fields[1+bits]
	assert.Equal(t, "img.color_layout.hash.bit_sampling.table", tableField.Name)
	bs, err := tables.Get(hashing.SchemeBitSampling)
	require.NoError(t, err)
	assert.Equal(t, mapping.FormatFingerprint(bs.Fingerprint()), string(tableField.Value))

	assert.Equal(t, "img.color_layout.hash.lsh.0", fields[2+bits].Name)
	assert.Equal(t, "img.color_layout.hash.lsh.table", fields[2+bits+lsh].Name)
	assert.Equal(t, "img.luminance_layout", fields[len(fields)-1].Name)

	// Stored records decode to the descriptor of the decoded image.
	img, _, err := imageio.Decode(data)
	require.NoError(t, err)
	want, err := feature.Extract(feature.KindColorLayout, img)
	require.NoError(t, err)
	got, err := feature.Decode(feature.KindColorLayout, fields[0].Value)
	require.NoError(t, err)
	assert.True(t, want.Equal(got))

	// Token fields carry exactly the table's tokens.
	tokens, err := bs.Hash(want.Vector)
	require.NoError(t, err)
	for i, tok := range tokens {
		assert.Equal(t, mapping.HashToken(tok), string(fields[1+i].Value))
	}
}

func TestIndex_Deterministic(t *testing.T) {
	tables := testTables(t, hashing.SchemeBitSampling, hashing.SchemeLSH)
	data := testutil.EncodePNG(t, testutil.NewRNG(7).Noise(80, 60))

	spec := mapping.FieldSpec{Name: "img"}
	for _, k := range feature.Kinds() {
		spec.Features = append(spec.Features, mapping.FeatureSpec{
			Kind:   k,
			Hashes: []hashing.Scheme{hashing.SchemeBitSampling, hashing.SchemeLSH},
		})
	}

	parallelCfg := DefaultConfig()
	parallelCfg.MaxWorkers = 4
	sequentialCfg := DefaultConfig()
	sequentialCfg.UseParallelExtraction = false

	parallel := newPipeline(t, tables, WithConfig(parallelCfg))
	sequential := newPipeline(t, tables, WithConfig(sequentialCfg))

	first, err := parallel.Index(context.Background(), data, spec)
	require.NoError(t, err)

	for range 3 {
		again, err := parallel.Index(context.Background(), data, spec)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}

	seq, err := sequential.Index(context.Background(), data, spec)
	require.NoError(t, err)
	assert.Equal(t, first, seq)
}

func TestIndex_SchemesAreIndependent(t *testing.T) {
	tables := testTables(t, hashing.SchemeBitSampling, hashing.SchemeLSH)
	p := newPipeline(t, tables)
	data := testutil.EncodePNG(t, testutil.Gradient(32, 32))

	only := func(s hashing.Scheme) []Field {
		spec := mapping.FieldSpec{Name: "img", Features: []mapping.FeatureSpec{{Kind: feature.KindEdgeHistogram, Hashes: []hashing.Scheme{s}}}}
		fields, err := p.Index(context.Background(), data, spec)
		require.NoError(t, err)
		return fields[1:]
	}
	both := func() []Field {
		spec := mapping.FieldSpec{Name: "img", Features: []mapping.FeatureSpec{{Kind: feature.KindEdgeHistogram, Hashes: []hashing.Scheme{hashing.SchemeBitSampling, hashing.SchemeLSH}}}}
		fields, err := p.Index(context.Background(), data, spec)
		require.NoError(t, err)
		return fields[1:]
	}

	bits := only(hashing.SchemeBitSampling)
	lsh := only(hashing.SchemeLSH)

	names := make(map[string]struct{})
	for _, f := range bits {
		names[f.Name] = struct{}{}
	}
	for _, f := range lsh {
		_, clash := names[f.Name]
		assert.False(t, clash, f.Name)
	}

	assert.Equal(t, append(append([]Field{}, bits...), lsh...), both())
}

func TestIndex_NoContent(t *testing.T) {
	p := newPipeline(t, nil)
	spec := mapping.FieldSpec{Name: "img", Features: []mapping.FeatureSpec{{Kind: feature.KindColorLayout}}}

	fields, err := p.Index(context.Background(), nil, spec)
	assert.Nil(t, fields)
	assert.ErrorIs(t, err, ErrNoContent)
}

func TestIndex_DecodeError(t *testing.T) {
	p := newPipeline(t, nil)
	spec := mapping.FieldSpec{Name: "img", Features: []mapping.FeatureSpec{{Kind: feature.KindColorLayout}}}

	fields, err := p.Index(context.Background(), []byte("definitely not an image"), spec)
	assert.Nil(t, fields)
	var decErr *imageio.DecodeError
	assert.ErrorAs(t, err, &decErr)
}

func TestIndex_InvalidSpec(t *testing.T) {
	p := newPipeline(t, nil)
	data := testutil.EncodePNG(t, testutil.Gradient(16, 16))

	_, err := p.Index(context.Background(), data, mapping.FieldSpec{Name: "img"})
	assert.ErrorIs(t, err, mapping.ErrNoFeatures)
}

func TestIndex_AllOrNothing(t *testing.T) {
	for _, parallel := range []bool{true, false} {
		t.Run(map[bool]string{true: "parallel", false: "sequential"}[parallel], func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.UseParallelExtraction = parallel
			cfg.MaxWorkers = 4
			p := newPipeline(t, testTables(t, hashing.SchemeBitSampling), WithConfig(cfg))

			// 4x4 is too small for the color layout grid but fine for the others.
			data := testutil.EncodePNG(t, testutil.Gradient(4, 4))
			spec := mapping.FieldSpec{
				Name: "img",
				Features: []mapping.FeatureSpec{
					{Kind: feature.KindSimpleColorHistogram, Hashes: []hashing.Scheme{hashing.SchemeBitSampling}},
					{Kind: feature.KindColorLayout},
					{Kind: feature.KindLuminanceLayout},
				},
			}

			fields, err := p.Index(context.Background(), data, spec)
			require.Error(t, err)
			assert.Nil(t, fields)

			var fe *FeatureError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, feature.KindColorLayout, fe.Kind)
			assert.Equal(t, "img", fe.Field)

			var ee *feature.ExtractionError
			assert.ErrorAs(t, err, &ee)
			assert.Contains(t, err.Error(), "COLOR_LAYOUT")
		})
	}
}

func TestIndex_MissingTable(t *testing.T) {
	p := newPipeline(t, testTables(t, hashing.SchemeBitSampling))
	data := testutil.EncodePNG(t, testutil.Gradient(16, 16))

	// Fields without hashing are unaffected.
	plain := mapping.FieldSpec{Name: "img", Features: []mapping.FeatureSpec{{Kind: feature.KindColorLayout}}}
	_, err := p.Index(context.Background(), data, plain)
	require.NoError(t, err)

	hashed := mapping.FieldSpec{Name: "img", Features: []mapping.FeatureSpec{{Kind: feature.KindColorLayout, Hashes: []hashing.Scheme{hashing.SchemeLSH}}}}
	fields, err := p.Index(context.Background(), data, hashed)
	assert.Nil(t, fields)
	var loadErr *hashing.HashTableLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, hashing.SchemeLSH, loadErr.Scheme)
}

func TestIndex_Rescale(t *testing.T) {
	// Pure red and blue pixels alternate; downscaling blends them into purple.
	src := testutil.Checkerboard(1000, 500, 1, color.NRGBA{R: 255, A: 255}, color.NRGBA{B: 255, A: 255})
	data := testutil.EncodePNG(t, src)
	spec := mapping.FieldSpec{Name: "img", Features: []mapping.FeatureSpec{{Kind: feature.KindSimpleColorHistogram}}}

	cfg := DefaultConfig()
	cfg.MaxImageDimension = 100
	fields, err := newPipeline(t, nil, WithConfig(cfg)).Index(context.Background(), data, spec)
	require.NoError(t, err)

	fitted := imageio.Fit(src, 100)
	assert.Equal(t, 100, fitted.Bounds().Dx())
	assert.Equal(t, 50, fitted.Bounds().Dy())

	want, err := feature.Extract(feature.KindSimpleColorHistogram, fitted)
	require.NoError(t, err)
	wantRecord, err := feature.Encode(want)
	require.NoError(t, err)
	assert.Equal(t, wantRecord, fields[0].Value)

	cfg.MaxImageDimension = 0
	full, err := newPipeline(t, nil, WithConfig(cfg)).Index(context.Background(), data, spec)
	require.NoError(t, err)
	assert.NotEqual(t, full[0].Value, fields[0].Value)
}

func TestIndex_Metadata(t *testing.T) {
	data := testutil.EncodePNG(t, testutil.Gradient(16, 16))
	spec := mapping.FieldSpec{
		Name:     "img",
		Features: []mapping.FeatureSpec{{Kind: feature.KindLuminanceLayout}},
		Metadata: []metadata.Field{
			{Name: "exif.make", Type: metadata.FieldTypeString},
			{Name: "exif.iso_speed_ratings", Type: metadata.FieldTypeInt},
			{Name: "exif.artist", Type: metadata.FieldTypeString},
		},
	}

	tags := metadata.ReaderFunc(func([]byte) ([]metadata.Tag, error) {
		return []metadata.Tag{
			{Directory: "EXIF", Name: "ISOSpeedRatings", Value: "200"},
			{Directory: "EXIF", Name: "Make", Value: "Canon"},
		}, nil
	})
	broken := metadata.ReaderFunc(func([]byte) ([]metadata.Tag, error) {
		return nil, errors.New("truncated IFD")
	})
	badValue := metadata.ReaderFunc(func([]byte) ([]metadata.Tag, error) {
		return []metadata.Tag{{Directory: "EXIF", Name: "ISOSpeedRatings", Value: "fast"}}, nil
	})

	t.Run("declared order", func(t *testing.T) {
		fields, err := newPipeline(t, nil, WithMetadataReader(tags)).Index(context.Background(), data, spec)
		require.NoError(t, err)
		assert.Equal(t, []string{
			"img.luminance_layout",
			"img.metadata.exif.make",
			"img.metadata.exif.iso_speed_ratings",
		}, fieldNames(fields))
		assert.Equal(t, "Canon", string(fields[1].Value))
		assert.Equal(t, "200", string(fields[2].Value))
	})

	t.Run("disabled", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.ExtractMetadata = false
		fields, err := newPipeline(t, nil, WithConfig(cfg), WithMetadataReader(tags)).Index(context.Background(), data, spec)
		require.NoError(t, err)
		assert.Len(t, fields, 1)
	})

	for _, tc := range []struct {
		name   string
		reader metadata.Reader
	}{
		{"read failure", broken},
		{"conversion failure", badValue},
	} {
		t.Run(tc.name+" ignored", func(t *testing.T) {
			fields, err := newPipeline(t, nil, WithMetadataReader(tc.reader)).Index(context.Background(), data, spec)
			require.NoError(t, err)
			assert.Equal(t, []string{"img.luminance_layout"}, fieldNames(fields))
		})

		t.Run(tc.name+" fatal", func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.IgnoreMetadataErrors = false
			fields, err := newPipeline(t, nil, WithConfig(cfg), WithMetadataReader(tc.reader)).Index(context.Background(), data, spec)
			assert.Nil(t, fields)
			var mdErr *metadata.MetadataError
			assert.ErrorAs(t, err, &mdErr)
		})
	}
}

func TestIndex_MetadataExifReader(t *testing.T) {
	spec := mapping.FieldSpec{
		Name:     "img",
		Features: []mapping.FeatureSpec{{Kind: feature.KindLuminanceLayout}},
		Metadata: []metadata.Field{{Name: "exif.make", Type: metadata.FieldTypeString}},
	}
	cfg := DefaultConfig()
	cfg.IgnoreMetadataErrors = false

	tests := []struct {
		name string
		data []byte
	}{
		{"jpeg without exif", testutil.EncodeJPEG(t, testutil.Gradient(32, 32), 90)},
		{"png", testutil.EncodePNG(t, testutil.Gradient(32, 32))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields, err := newPipeline(t, nil, WithConfig(cfg), WithMetadataReader(metadata.ExifReader{})).Index(context.Background(), tt.data, spec)
			require.NoError(t, err)
			assert.Equal(t, []string{"img.luminance_layout"}, fieldNames(fields))
		})
	}
}

func TestIndex_MetadataReadErrorWrappedOnce(t *testing.T) {
	spec := mapping.FieldSpec{
		Name:     "img",
		Features: []mapping.FeatureSpec{{Kind: feature.KindLuminanceLayout}},
		Metadata: []metadata.Field{{Name: "exif.make", Type: metadata.FieldTypeString}},
	}
	cfg := DefaultConfig()
	cfg.IgnoreMetadataErrors = false
	data := testutil.EncodePNG(t, testutil.Gradient(16, 16))

	tests := []struct {
		name   string
		reader metadata.Reader
	}{
		{"plain error", metadata.ReaderFunc(func([]byte) ([]metadata.Tag, error) {
			return nil, errors.New("truncated IFD")
		})},
		{"metadata error", metadata.ReaderFunc(func([]byte) ([]metadata.Tag, error) {
			return nil, metadata.NewReadError(errors.New("truncated IFD"))
		})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newPipeline(t, nil, WithConfig(cfg), WithMetadataReader(tt.reader)).Index(context.Background(), data, spec)
			require.Error(t, err)
			assert.Equal(t, `field "img": read metadata: truncated IFD`, err.Error())
			assert.Equal(t, 1, strings.Count(err.Error(), "read metadata"))
		})
	}
}

func TestIndex_ResourceController(t *testing.T) {
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 1 << 20, MaxWorkers: 2})
	cfg := DefaultConfig()
	cfg.MaxWorkers = 4
	p := newPipeline(t, nil, WithConfig(cfg), WithResourceController(rc))

	spec := mapping.FieldSpec{Name: "img"}
	for _, k := range feature.Kinds() {
		spec.Features = append(spec.Features, mapping.FeatureSpec{Kind: k})
	}
	data := testutil.EncodePNG(t, testutil.Gradient(120, 90))

	fields, err := p.Index(context.Background(), data, spec)
	require.NoError(t, err)
	assert.Len(t, fields, len(feature.Kinds()))
	assert.Zero(t, rc.MemoryUsage())
	assert.True(t, rc.TryAcquireWorker())
	rc.ReleaseWorker()
}

func TestIndex_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rc := resource.NewController(resource.Config{MemoryLimitBytes: 1, MaxWorkers: 1})
	require.True(t, rc.TryAcquireMemory(1))
	p := newPipeline(t, nil, WithResourceController(rc))

	spec := mapping.FieldSpec{Name: "img", Features: []mapping.FeatureSpec{{Kind: feature.KindColorLayout}}}
	_, err := p.Index(ctx, testutil.EncodePNG(t, testutil.Gradient(16, 16)), spec)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConfigValidate(t *testing.T) {
	_, err := New(nil, WithConfig(Config{MaxImageDimension: -1}))
	assert.Error(t, err)

	_, err = New(nil, WithConfig(Config{MaxWorkers: -2}))
	assert.Error(t, err)

	p, err := New(nil, WithConfig(Config{}))
	require.NoError(t, err)
	assert.Equal(t, 1, p.Config().MaxWorkers)
}

func TestDescribe(t *testing.T) {
	fields := []Field{
		{Name: "a", Value: []byte{1, 2}, Stored: true},
		{Name: "b", Value: []byte("7"), Indexed: true},
		{Name: "c", Value: []byte("ff"), Stored: true, Indexed: true},
	}
	assert.Equal(t, "3 fields (2 stored, 2 indexed)", Describe(fields))
	assert.Equal(t, "a[S]=<2 bytes>", fields[0].String())
	assert.True(t, strings.HasPrefix(fields[2].String(), "c[SI]=ff"))
}
