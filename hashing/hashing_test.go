package hashing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/imgsim/blobstore"
	"github.com/hupe1980/imgsim/testutil"
)

func TestParseScheme(t *testing.T) {
	tests := []struct {
		in      string
		want    Scheme
		wantErr bool
	}{
		{"BIT_SAMPLING", SchemeBitSampling, false},
		{"bit_sampling", SchemeBitSampling, false},
		{"BitSampling", SchemeBitSampling, false},
		{"lsh", SchemeLSH, false},
		{"METRIC_SPACES", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseScheme(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnknownScheme)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Equal(t, "bit_sampling", SchemeBitSampling.FieldName())
	assert.Equal(t, "Unknown(9)", Scheme(9).String())
}

func TestHashDeterministic(t *testing.T) {
	rng := testutil.NewRNG(1)
	vecs := rng.UniformVectors(4, 33)

	for _, scheme := range Schemes() {
		t.Run(scheme.String(), func(t *testing.T) {
			a, err := Generate(scheme, []int{33, 64}, 7, DefaultParams())
			require.NoError(t, err)
			b, err := Generate(scheme, []int{64, 33}, 7, DefaultParams())
			require.NoError(t, err)
			assert.Equal(t, a.Fingerprint(), b.Fingerprint())

			for _, v := range vecs {
				ta, err := a.Hash(v)
				require.NoError(t, err)
				tb, err := b.Hash(v)
				require.NoError(t, err)
				assert.Equal(t, ta, tb)
				assert.Len(t, ta, a.Tokens())
			}
		})
	}
}

func TestHashSeedChangesFingerprint(t *testing.T) {
	a, err := Generate(SchemeLSH, []int{16}, 1, DefaultParams())
	require.NoError(t, err)
	b, err := Generate(SchemeLSH, []int{16}, 2, DefaultParams())
	require.NoError(t, err)

	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())
}

func TestBitSamplingTokenRange(t *testing.T) {
	params := DefaultParams()
	table, err := Generate(SchemeBitSampling, []int{8}, 3, params)
	require.NoError(t, err)

	tokens, err := table.Hash([]float64{1, -2, 3, -4, 5, -6, 7, -8})
	require.NoError(t, err)
	for _, tok := range tokens {
		assert.GreaterOrEqual(t, tok, int32(0))
		assert.Less(t, tok, int32(1)<<params.Bits)
	}
}

func TestHashShapeMismatch(t *testing.T) {
	table, err := Generate(SchemeLSH, []int{33}, 1, DefaultParams())
	require.NoError(t, err)

	_, err = table.Hash(make([]float64, 34))

	var shapeErr *ShapeMismatchError
	require.ErrorAs(t, err, &shapeErr)
	assert.Equal(t, 34, shapeErr.Dim)
	assert.Equal(t, SchemeLSH, shapeErr.Scheme)
}

func TestGenerateInvalid(t *testing.T) {
	tests := []struct {
		name   string
		scheme Scheme
		dims   []int
		params Params
	}{
		{"no dims", SchemeLSH, nil, DefaultParams()},
		{"zero dim", SchemeLSH, []int{0}, DefaultParams()},
		{"too many bits", SchemeBitSampling, []int{4}, Params{Bundles: 1, Bits: 32}},
		{"zero width", SchemeLSH, []int{4}, Params{Functions: 1}},
		{"unknown scheme", Scheme(9), []int{4}, DefaultParams()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Generate(tt.scheme, tt.dims, 1, tt.params)
			require.Error(t, err)
		})
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	rng := testutil.NewRNG(5)
	vec := rng.UniformVectors(1, 64)[0]

	for _, scheme := range Schemes() {
		for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
			t.Run(scheme.String()+"/"+c.String(), func(t *testing.T) {
				table, err := Generate(scheme, []int{33, 64}, 11, DefaultParams())
				require.NoError(t, err)

				data, err := Marshal(table, c)
				require.NoError(t, err)

				back, err := Unmarshal(data)
				require.NoError(t, err)
				assert.Equal(t, table.Fingerprint(), back.Fingerprint())
				assert.Equal(t, table.Params(), back.Params())
				assert.Equal(t, table.Seed(), back.Seed())
				assert.Equal(t, []int{33, 64}, back.Dims())

				want, err := table.Hash(vec)
				require.NoError(t, err)
				got, err := back.Hash(vec)
				require.NoError(t, err)
				assert.Equal(t, want, got)
			})
		}
	}
}

func TestUnmarshalCorrupt(t *testing.T) {
	table, err := Generate(SchemeLSH, []int{4}, 1, DefaultParams())
	require.NoError(t, err)
	data, err := Marshal(table, CompressionNone)
	require.NoError(t, err)

	badMagic := append([]byte("XXXX"), data[4:]...)
	truncated := data[:len(data)-3]
	badVersion := append([]byte(nil), data...)
	badVersion[4] = 9
	flipped := append([]byte(nil), data...)
	flipped[len(flipped)-1] ^= 0xff

	for name, blob := range map[string][]byte{
		"empty":       nil,
		"bad magic":   badMagic,
		"truncated":   truncated,
		"bad version": badVersion,
		"bad crc":     flipped,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Unmarshal(blob)
			require.ErrorIs(t, err, ErrCorruptTable)
		})
	}
}

func TestLoadTablesDefersFailures(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	lsh, err := Generate(SchemeLSH, []int{33}, 1, DefaultParams())
	require.NoError(t, err)
	data, err := Marshal(lsh, CompressionZSTD)
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, "lsh.imht", data))
	require.NoError(t, store.Put(ctx, "bits.imht", []byte("garbage")))

	var events []LoadEvent
	ts := LoadTables(ctx, store, map[Scheme]string{
		SchemeLSH:         "lsh.imht",
		SchemeBitSampling: "bits.imht",
	}, WithLoadObserver(func(ev LoadEvent) { events = append(events, ev) }))

	got, err := ts.Get(SchemeLSH)
	require.NoError(t, err)
	assert.Equal(t, lsh.Fingerprint(), got.Fingerprint())

	_, err = ts.Get(SchemeBitSampling)
	var loadErr *HashTableLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, SchemeBitSampling, loadErr.Scheme)
	assert.Equal(t, "bits.imht", loadErr.Name)
	assert.ErrorIs(t, err, ErrCorruptTable)

	// The failure is stable: every call reports the same error.
	_, err2 := ts.Get(SchemeBitSampling)
	assert.Same(t, err, err2)

	assert.Equal(t, []Scheme{SchemeLSH}, ts.Available())
	require.Len(t, events, 2)
	assert.Equal(t, SchemeBitSampling, events[0].Scheme)
	assert.Error(t, events[0].Err)
	assert.NoError(t, events[1].Err)
}

func TestLoadTablesMissingBlob(t *testing.T) {
	ts := LoadTables(context.Background(), blobstore.NewMemoryStore(), map[Scheme]string{SchemeLSH: "nope"})

	_, err := ts.Get(SchemeLSH)
	var loadErr *HashTableLoadError
	require.True(t, errors.As(err, &loadErr))
	assert.ErrorIs(t, err, blobstore.ErrNotFound)

	_, err = ts.Get(SchemeBitSampling)
	assert.ErrorIs(t, err, ErrNoTable)
}

func TestLoadTablesSchemeMismatch(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	bits, err := Generate(SchemeBitSampling, []int{4}, 1, DefaultParams())
	require.NoError(t, err)
	data, err := Marshal(bits, CompressionNone)
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, "t", data))

	ts := LoadTables(ctx, store, map[Scheme]string{SchemeLSH: "t"})
	_, err = ts.Get(SchemeLSH)
	assert.ErrorIs(t, err, ErrCorruptTable)
}

func TestPublishAndLoadCurrent(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	ts := LoadCurrent(ctx, store)
	_, err := ts.Get(SchemeLSH)
	assert.ErrorIs(t, err, blobstore.ErrNotFound)

	bits, err := Generate(SchemeBitSampling, []int{33}, 1, DefaultParams())
	require.NoError(t, err)
	lsh, err := Generate(SchemeLSH, []int{33}, 1, DefaultParams())
	require.NoError(t, err)
	require.NoError(t, Publish(ctx, store, "tables/v1", CompressionLZ4, bits, lsh))

	names, err := store.List(ctx, "tables/v1/")
	require.NoError(t, err)
	assert.Equal(t, []string{"tables/v1/bit_sampling.imht", "tables/v1/lsh.imht"}, names)

	ts = LoadCurrent(ctx, store)
	assert.Equal(t, []Scheme{SchemeBitSampling, SchemeLSH}, ts.Available())

	got, err := ts.Get(SchemeLSH)
	require.NoError(t, err)
	assert.Equal(t, lsh.Fingerprint(), got.Fingerprint())
}

func TestNilTables(t *testing.T) {
	var ts *Tables

	_, err := ts.Get(SchemeLSH)
	assert.ErrorIs(t, err, ErrNoTable)
	assert.Empty(t, ts.Available())
}
