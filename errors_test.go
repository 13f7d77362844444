package imgsim

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hupe1980/imgsim/hashing"
	"github.com/hupe1980/imgsim/mapping"
	"github.com/hupe1980/imgsim/segment"
)

func TestTranslateError(t *testing.T) {
	other := errors.New("other")
	loadErr := &hashing.HashTableLoadError{Scheme: hashing.SchemeLSH}

	tests := []struct {
		name string
		in   error
		want error
	}{
		{"DocNotFound", fmt.Errorf("delete: %w", segment.ErrDocNotFound), ErrNotFound},
		{"SegmentClosed", segment.ErrClosed, ErrClosed},
		{"NoFeatures", fmt.Errorf("%w: field %q", mapping.ErrNoFeatures, "img"), ErrInvalidMapping},
		{"InvalidMapping", fmt.Errorf("%w: bad", mapping.ErrInvalidMapping), ErrInvalidMapping},
		{"TableLoad", fmt.Errorf("field %q: %w", "img", loadErr), ErrHashUnavailable},
		{"Passthrough", other, other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translateError(tt.in)
			assert.ErrorIs(t, got, tt.want)
			assert.ErrorIs(t, got, tt.in)
		})
	}

	assert.NoError(t, translateError(nil))
}
