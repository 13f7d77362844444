package hashing

import "fmt"

// Params configures table generation.
type Params struct {
	// Bundles is the number of tokens emitted by BIT_SAMPLING.
	Bundles int
	// Bits is the number of hyperplanes per bundle (at most 31).
	Bits int
	// Functions is the number of tokens emitted by LSH.
	Functions int
	// Width is the LSH bucket width.
	Width float64
}

// DefaultParams returns the default generation parameters.
func DefaultParams() Params {
	return Params{
		Bundles:   50,
		Bits:      12,
		Functions: 100,
		Width:     4.0,
	}
}

func (p Params) validate(s Scheme) error {
	switch s {
	case SchemeBitSampling:
		if p.Bundles <= 0 || p.Bits <= 0 || p.Bits > 31 {
			return fmt.Errorf("%w: bundles=%d bits=%d", ErrInvalidParams, p.Bundles, p.Bits)
		}
	case SchemeLSH:
		if p.Functions <= 0 || !(p.Width > 0) {
			return fmt.Errorf("%w: functions=%d width=%v", ErrInvalidParams, p.Functions, p.Width)
		}
	default:
		return fmt.Errorf("%w: %d", ErrUnknownScheme, s)
	}
	return nil
}

// Tokens returns how many tokens a vector produces under scheme s.
func (p Params) Tokens(s Scheme) int {
	if s == SchemeBitSampling {
		return p.Bundles
	}
	return p.Functions
}
