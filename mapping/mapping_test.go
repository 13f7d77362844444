package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/imgsim/feature"
	"github.com/hupe1980/imgsim/hashing"
	"github.com/hupe1980/imgsim/metadata"
)

func TestParseObjectForm(t *testing.T) {
	doc := `{
		"type": "image",
		"feature": {
			"edge_histogram": {},
			"COLOR_LAYOUT": {"hash": ["LSH", "bit_sampling"]}
		},
		"metadata": {
			"exif.make": {"type": "keyword"},
			"EXIF.ISO_speed_ratings": {"type": "long"}
		}
	}`

	spec, err := Parse("photo", []byte(doc))
	require.NoError(t, err)

	assert.Equal(t, "photo", spec.Name)
	require.Len(t, spec.Features, 2)
	assert.Equal(t, feature.KindColorLayout, spec.Features[0].Kind)
	assert.Equal(t, []hashing.Scheme{hashing.SchemeLSH, hashing.SchemeBitSampling}, spec.Features[0].Hashes)
	assert.Equal(t, feature.KindEdgeHistogram, spec.Features[1].Kind)
	assert.Empty(t, spec.Features[1].Hashes)

	assert.Equal(t, []metadata.Field{
		{Name: "exif.iso_speed_ratings", Type: metadata.FieldTypeInt},
		{Name: "exif.make", Type: metadata.FieldTypeString},
	}, spec.Metadata)
}

func TestParseListForm(t *testing.T) {
	tests := []struct {
		name   string
		doc    string
		hashes []hashing.Scheme
	}{
		{"lsh", `{"type":"image","feature":["COLOR_LAYOUT","LUMINANCE_LAYOUT"],"hash":"LSH"}`, []hashing.Scheme{hashing.SchemeLSH}},
		{"bit sampling", `{"feature":["COLOR_LAYOUT","LUMINANCE_LAYOUT"],"hash":"BitSampling"}`, []hashing.Scheme{hashing.SchemeBitSampling}},
		{"none", `{"feature":["COLOR_LAYOUT","LUMINANCE_LAYOUT"],"hash":"None"}`, nil},
		{"missing", `{"feature":["COLOR_LAYOUT","LUMINANCE_LAYOUT"]}`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := Parse("img", []byte(tt.doc))
			require.NoError(t, err)
			require.Len(t, spec.Features, 2)
			for _, f := range spec.Features {
				assert.Equal(t, tt.hashes, f.Hashes)
			}
			assert.Equal(t, feature.KindLuminanceLayout, spec.Features[1].Kind)
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{"no features list", `{"type":"image","feature":[]}`, ErrNoFeatures},
		{"no features object", `{"type":"image","feature":{}}`, ErrNoFeatures},
		{"missing feature key", `{"type":"image"}`, ErrNoFeatures},
		{"unknown kind", `{"feature":["SIFT"]}`, feature.ErrUnknownKind},
		{"unknown scheme", `{"feature":{"color_layout":{"hash":["MINHASH"]}}}`, hashing.ErrUnknownScheme},
		{"duplicate scheme", `{"feature":{"color_layout":{"hash":["LSH","lsh"]}}}`, ErrInvalidMapping},
		{"duplicate kind", `{"feature":["COLOR_LAYOUT","color_layout"]}`, ErrInvalidMapping},
		{"wrong type", `{"type":"keyword","feature":["COLOR_LAYOUT"]}`, ErrInvalidMapping},
		{"bad metadata type", `{"feature":["COLOR_LAYOUT"],"metadata":{"exif.make":{"type":"geo"}}}`, ErrInvalidMapping},
		{"not json", `{"feature":`, ErrInvalidMapping},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("img", []byte(tt.doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestValidateEmptyName(t *testing.T) {
	err := FieldSpec{Features: []FeatureSpec{{Kind: feature.KindColorLayout}}}.Validate()
	assert.ErrorIs(t, err, ErrInvalidMapping)
}

func TestParseProperties(t *testing.T) {
	doc := `{"properties": {
		"title": {"type": "text"},
		"thumb": {"type": "image", "feature": ["LUMINANCE_LAYOUT"]},
		"photo": {"type": "image", "feature": {"color_layout": {"hash": ["LSH"]}}}
	}}`

	specs, err := ParseProperties([]byte(doc))
	require.NoError(t, err)
	require.Len(t, specs, 2)
	assert.Equal(t, "photo", specs[0].Name)
	assert.Equal(t, "thumb", specs[1].Name)
}

func TestMarshalRoundTrip(t *testing.T) {
	spec := FieldSpec{
		Name: "photo",
		Features: []FeatureSpec{
			{Kind: feature.KindColorLayout, Hashes: []hashing.Scheme{hashing.SchemeBitSampling, hashing.SchemeLSH}},
			{Kind: feature.KindOpponentHistogram},
		},
		Metadata: []metadata.Field{{Name: "exif.make", Type: metadata.FieldTypeString}},
	}

	data, err := spec.MarshalJSON()
	require.NoError(t, err)

	back, err := Parse("photo", data)
	require.NoError(t, err)
	assert.Equal(t, spec, back)
}

func TestSorted(t *testing.T) {
	spec := FieldSpec{
		Name: "img",
		Features: []FeatureSpec{
			{Kind: feature.KindOpponentHistogram},
			{Kind: feature.KindColorLayout, Hashes: []hashing.Scheme{hashing.SchemeLSH, hashing.SchemeBitSampling}},
		},
	}

	sorted := spec.Sorted()
	assert.Equal(t, feature.KindColorLayout, sorted[0].Kind)
	assert.Equal(t, []hashing.Scheme{hashing.SchemeBitSampling, hashing.SchemeLSH}, sorted[0].Hashes)
	assert.Equal(t, feature.KindOpponentHistogram, sorted[1].Kind)

	// The receiver is untouched.
	assert.Equal(t, feature.KindOpponentHistogram, spec.Features[0].Kind)
	assert.Equal(t, hashing.SchemeLSH, spec.Features[1].Hashes[0])

	assert.Equal(t, []hashing.Scheme{hashing.SchemeBitSampling, hashing.SchemeLSH}, spec.Schemes())
	assert.Equal(t, "img[opponent_histogram,color_layout(lsh,bit_sampling)]", spec.String())

	fs, ok := spec.Feature(feature.KindColorLayout)
	assert.True(t, ok)
	assert.Len(t, fs.Hashes, 2)
	_, ok = spec.Feature(feature.KindEdgeHistogram)
	assert.False(t, ok)
}

func TestFieldNames(t *testing.T) {
	k := feature.KindColorLayout

	assert.Equal(t, "img.color_layout", StoredField("img", k))
	assert.Equal(t, "img.color_layout.hash.lsh.7", HashField("img", k, hashing.SchemeLSH, 7))
	assert.Equal(t, "img.color_layout.hash.bit_sampling.table", TableField("img", k, hashing.SchemeBitSampling))
	assert.Equal(t, "img.metadata.exif.make", MetadataField("img", "EXIF.Make"))
	assert.Equal(t, "-3", HashToken(-3))
	assert.Equal(t, "ff", FormatFingerprint(255))

	// Scheme field names never collide.
	assert.NotEqual(t,
		HashField("img", k, hashing.SchemeBitSampling, 0),
		HashField("img", k, hashing.SchemeLSH, 0))
}
