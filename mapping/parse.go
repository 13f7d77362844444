package mapping

import (
	"bytes"
	"fmt"
	"slices"
	"strings"

	"github.com/hupe1980/imgsim/codec"
	"github.com/hupe1980/imgsim/feature"
	"github.com/hupe1980/imgsim/hashing"
	"github.com/hupe1980/imgsim/metadata"
)

// TypeImage is the mapping type of image fields.
const TypeImage = "image"

type rawField struct {
	Type     string                     `json:"type"`
	Feature  rawFeatures                `json:"feature"`
	Hash     string                     `json:"hash,omitempty"`
	Metadata map[string]rawMetadataType `json:"metadata,omitempty"`
}

type rawFeature struct {
	Hash []string `json:"hash,omitempty"`
}

type rawMetadataType struct {
	Type string `json:"type"`
}

// rawFeatures accepts both the list and the object form of "feature".
// Names are kept in list order; object keys are sorted by name.
type rawFeatures struct {
	names  []string
	hashes map[string][]string
	list   bool
}

func (f *rawFeatures) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		f.list = true
		return codec.Default.Unmarshal(data, &f.names)
	}

	var byName map[string]rawFeature
	if err := codec.Default.Unmarshal(data, &byName); err != nil {
		return err
	}
	f.hashes = make(map[string][]string, len(byName))
	for name, spec := range byName {
		f.names = append(f.names, name)
		f.hashes[name] = spec.Hash
	}
	// Object keys have no order in JSON; sort by name so parsing is stable.
	slices.Sort(f.names)
	return nil
}

func (f rawFeatures) MarshalJSON() ([]byte, error) {
	if f.list {
		return codec.Default.Marshal(f.names)
	}
	byName := make(map[string]rawFeature, len(f.names))
	for _, n := range f.names {
		byName[n] = rawFeature{Hash: f.hashes[n]}
	}
	return codec.Default.Marshal(byName)
}

// Parse decodes the mapping document of a single field.
func Parse(name string, data []byte) (FieldSpec, error) {
	var raw rawField
	if err := codec.Default.Unmarshal(data, &raw); err != nil {
		return FieldSpec{}, fmt.Errorf("%w: field %q: %w", ErrInvalidMapping, name, err)
	}
	return raw.spec(name)
}

// ParseProperties decodes a {"properties": {...}} document and returns the
// image fields sorted by name. Fields of other types are ignored.
func ParseProperties(data []byte) ([]FieldSpec, error) {
	var doc struct {
		Properties map[string]rawField `json:"properties"`
	}
	if err := codec.Default.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidMapping, err)
	}

	names := make([]string, 0, len(doc.Properties))
	for n, f := range doc.Properties {
		if f.Type == TypeImage {
			names = append(names, n)
		}
	}
	slices.Sort(names)

	specs := make([]FieldSpec, 0, len(names))
	for _, n := range names {
		s, err := doc.Properties[n].spec(n)
		if err != nil {
			return nil, err
		}
		specs = append(specs, s)
	}
	return specs, nil
}

func (r rawField) spec(name string) (FieldSpec, error) {
	if r.Type != "" && r.Type != TypeImage {
		return FieldSpec{}, fmt.Errorf("%w: field %q has type %q", ErrInvalidMapping, name, r.Type)
	}

	// The list form applies one hash mode to every feature. Unknown modes
	// (including "None") disable hashing.
	var shared []hashing.Scheme
	if r.Feature.list && r.Hash != "" {
		if s, err := hashing.ParseScheme(r.Hash); err == nil {
			shared = []hashing.Scheme{s}
		}
	}

	spec := FieldSpec{Name: name}
	for _, fname := range r.Feature.names {
		kind, err := feature.ParseKind(fname)
		if err != nil {
			return FieldSpec{}, fmt.Errorf("%w: field %q: %w", ErrInvalidMapping, name, err)
		}
		fs := FeatureSpec{Kind: kind, Hashes: slices.Clone(shared)}
		for _, h := range r.Feature.hashes[fname] {
			s, err := hashing.ParseScheme(h)
			if err != nil {
				return FieldSpec{}, fmt.Errorf("%w: field %q: feature %s: %w", ErrInvalidMapping, name, kind, err)
			}
			fs.Hashes = append(fs.Hashes, s)
		}
		spec.Features = append(spec.Features, fs)
	}

	mdNames := make([]string, 0, len(r.Metadata))
	for n := range r.Metadata {
		mdNames = append(mdNames, n)
	}
	slices.Sort(mdNames)
	for _, n := range mdNames {
		t, err := metadata.ParseFieldType(r.Metadata[n].Type)
		if err != nil {
			return FieldSpec{}, fmt.Errorf("%w: field %q: %w", ErrInvalidMapping, name, err)
		}
		spec.Metadata = append(spec.Metadata, metadata.Field{Name: metadata.NormalizeKey(n), Type: t})
	}

	if err := spec.Validate(); err != nil {
		return FieldSpec{}, err
	}
	return spec, nil
}

// MarshalJSON renders the field mapping in the object form accepted by Parse. The field
// name is not part of the document.
func (s FieldSpec) MarshalJSON() ([]byte, error) {
	raw := rawField{
		Type:    TypeImage,
		Feature: rawFeatures{hashes: make(map[string][]string, len(s.Features))},
	}
	for _, f := range s.Features {
		n := f.Kind.FieldName()
		raw.Feature.names = append(raw.Feature.names, n)
		for _, h := range f.Hashes {
			raw.Feature.hashes[n] = append(raw.Feature.hashes[n], h.String())
		}
	}
	if len(s.Metadata) > 0 {
		raw.Metadata = make(map[string]rawMetadataType, len(s.Metadata))
		for _, m := range s.Metadata {
			raw.Metadata[m.Name] = rawMetadataType{Type: m.Type.String()}
		}
	}
	return codec.Default.Marshal(raw)
}

// String returns a compact description such as
// "photo[color_layout(bit_sampling,lsh),edge_histogram]".
func (s FieldSpec) String() string {
	var b strings.Builder
	b.WriteString(s.Name)
	b.WriteByte('[')
	for i, f := range s.Features {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(f.Kind.FieldName())
		if len(f.Hashes) > 0 {
			b.WriteByte('(')
			for j, h := range f.Hashes {
				if j > 0 {
					b.WriteByte(',')
				}
				b.WriteString(h.FieldName())
			}
			b.WriteByte(')')
		}
	}
	b.WriteByte(']')
	return b.String()
}
