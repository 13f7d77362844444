package hashing

import (
	"fmt"
	"strings"
)

// Scheme identifies a hashing family.
type Scheme uint8

const (
	// SchemeBitSampling packs random hyperplane signs into tokens.
	SchemeBitSampling Scheme = iota + 1
	// SchemeLSH quantizes gaussian projections into buckets.
	SchemeLSH
)

// Schemes returns all schemes in emission order.
func Schemes() []Scheme {
	return []Scheme{SchemeBitSampling, SchemeLSH}
}

// String returns the canonical name ("BIT_SAMPLING" or "LSH").
func (s Scheme) String() string {
	switch s {
	case SchemeBitSampling:
		return "BIT_SAMPLING"
	case SchemeLSH:
		return "LSH"
	default:
		return fmt.Sprintf("Unknown(%d)", s)
	}
}

// FieldName returns the lower snake case name used in field names.
func (s Scheme) FieldName() string {
	return strings.ToLower(s.String())
}

// ParseScheme resolves a scheme by name. "BIT_SAMPLING", "bit_sampling" and
// "BitSampling" are equivalent.
func ParseScheme(name string) (Scheme, error) {
	norm := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(name), "_", ""))
	switch norm {
	case "BITSAMPLING":
		return SchemeBitSampling, nil
	case "LSH":
		return SchemeLSH, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownScheme, name)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Scheme) MarshalText() ([]byte, error) {
	if s != SchemeBitSampling && s != SchemeLSH {
		return nil, fmt.Errorf("%w: %d", ErrUnknownScheme, s)
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Scheme) UnmarshalText(text []byte) error {
	v, err := ParseScheme(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
