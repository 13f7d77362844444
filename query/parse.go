package query

import (
	"fmt"

	"github.com/hupe1980/imgsim/codec"
	"github.com/hupe1980/imgsim/feature"
	"github.com/hupe1980/imgsim/hashing"
)

type rawClause struct {
	Feature string   `json:"feature"`
	Image   []byte   `json:"image"`
	Boost   *float32 `json:"boost"`
	Hash    string   `json:"hash"`
}

// Parse builds a query from an image clause:
//
//	{"photo": {"feature": "COLOR_LAYOUT", "image": "<base64>", "boost": 2, "hash": "LSH"}}
//
// "boost" defaults to 1. "hash" is optional and resolves its table from
// tables.
func Parse(data []byte, tables *hashing.Tables, opts ...Option) (*ImageQuery, error) {
	var clause map[string]rawClause
	if err := codec.Default.Unmarshal(data, &clause); err != nil {
		return nil, fmt.Errorf("image query malformed: %w", err)
	}
	if len(clause) != 1 {
		return nil, fmt.Errorf("%w: expected exactly one field, got %d", ErrNoField, len(clause))
	}

	var (
		field string
		c     rawClause
	)
	for f, raw := range clause {
		field, c = f, raw
	}

	if c.Feature == "" {
		return nil, ErrNoFeatureSpecified
	}
	kind, err := feature.ParseKind(c.Feature)
	if err != nil {
		return nil, fmt.Errorf("image query: %w", err)
	}

	boost := float32(1)
	if c.Boost != nil {
		boost = *c.Boost
	}

	if c.Hash != "" {
		scheme, err := hashing.ParseScheme(c.Hash)
		if err != nil {
			return nil, fmt.Errorf("image query: %w", err)
		}
		opts = append(opts, WithHashFilter(scheme, tables))
	}
	return NewImageQuery(field, kind, c.Image, boost, opts...)
}
