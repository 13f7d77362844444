package mapping

import (
	"errors"
	"fmt"
	"slices"

	"github.com/hupe1980/imgsim/feature"
	"github.com/hupe1980/imgsim/hashing"
	"github.com/hupe1980/imgsim/metadata"
)

var (
	// ErrNoFeatures is returned for a field that requests no descriptor kind.
	ErrNoFeatures = errors.New("mapping: at least one feature is required")

	// ErrInvalidMapping is returned for malformed mapping documents.
	ErrInvalidMapping = errors.New("mapping: invalid mapping")
)

// FeatureSpec requests one descriptor kind and the hash schemes applied to it.
type FeatureSpec struct {
	Kind   feature.Kind
	Hashes []hashing.Scheme
}

// FieldSpec is the immutable indexing configuration of one image field.
type FieldSpec struct {
	Name     string
	Features []FeatureSpec
	Metadata []metadata.Field
}

// Validate checks the field mapping: a non-empty name, at least one
// feature, known and unique kinds and schemes, and unique metadata names.
func (s FieldSpec) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: field name is empty", ErrInvalidMapping)
	}
	if len(s.Features) == 0 {
		return fmt.Errorf("%w: field %q", ErrNoFeatures, s.Name)
	}

	kinds := make(map[feature.Kind]struct{}, len(s.Features))
	for _, f := range s.Features {
		if !f.Kind.Valid() {
			return fmt.Errorf("%w: field %q: %w: %s", ErrInvalidMapping, s.Name, feature.ErrUnknownKind, f.Kind)
		}
		if _, dup := kinds[f.Kind]; dup {
			return fmt.Errorf("%w: field %q: duplicate feature %s", ErrInvalidMapping, s.Name, f.Kind)
		}
		kinds[f.Kind] = struct{}{}

		schemes := make(map[hashing.Scheme]struct{}, len(f.Hashes))
		for _, h := range f.Hashes {
			if h != hashing.SchemeBitSampling && h != hashing.SchemeLSH {
				return fmt.Errorf("%w: field %q: %w: %s", ErrInvalidMapping, s.Name, hashing.ErrUnknownScheme, h)
			}
			if _, dup := schemes[h]; dup {
				return fmt.Errorf("%w: field %q: feature %s: duplicate hash %s", ErrInvalidMapping, s.Name, f.Kind, h)
			}
			schemes[h] = struct{}{}
		}
	}

	names := make(map[string]struct{}, len(s.Metadata))
	for _, m := range s.Metadata {
		key := metadata.NormalizeKey(m.Name)
		if key == "" {
			return fmt.Errorf("%w: field %q: empty metadata name", ErrInvalidMapping, s.Name)
		}
		if _, dup := names[key]; dup {
			return fmt.Errorf("%w: field %q: duplicate metadata field %q", ErrInvalidMapping, s.Name, m.Name)
		}
		names[key] = struct{}{}
	}
	return nil
}

// Sorted returns the features ordered by kind, each with its hashes ordered by
// scheme. This is the emission order of the indexing pipeline.
func (s FieldSpec) Sorted() []FeatureSpec {
	out := make([]FeatureSpec, len(s.Features))
	for i, f := range s.Features {
		hashes := slices.Clone(f.Hashes)
		slices.Sort(hashes)
		out[i] = FeatureSpec{Kind: f.Kind, Hashes: hashes}
	}
	slices.SortFunc(out, func(a, b FeatureSpec) int { return int(a.Kind) - int(b.Kind) })
	return out
}

// Feature returns the feature settings for kind, if the field indexes it.
func (s FieldSpec) Feature(kind feature.Kind) (FeatureSpec, bool) {
	for _, f := range s.Features {
		if f.Kind == kind {
			return f, true
		}
	}
	return FeatureSpec{}, false
}

// Schemes returns the distinct hash schemes used by the field, in scheme order.
func (s FieldSpec) Schemes() []hashing.Scheme {
	var out []hashing.Scheme
	for _, f := range s.Features {
		for _, h := range f.Hashes {
			if !slices.Contains(out, h) {
				out = append(out, h)
			}
		}
	}
	slices.Sort(out)
	return out
}
