package query

import (
	"context"
	"fmt"
	"slices"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/imgsim/feature"
	"github.com/hupe1980/imgsim/hashing"
	"github.com/hupe1980/imgsim/mapping"
	"github.com/hupe1980/imgsim/segment"
)

// hashFilter accepts documents that share at least one hash token with the
// query and were hashed with the same table.
type hashFilter struct {
	field       string
	kind        feature.Kind
	scheme      hashing.Scheme
	tokens      []int32
	fingerprint uint64
}

func newHashFilter(field string, d feature.Descriptor, scheme hashing.Scheme, tables *hashing.Tables) (*hashFilter, error) {
	t, err := tables.Get(scheme)
	if err != nil {
		return nil, err
	}
	tokens, err := t.Hash(d.Vector)
	if err != nil {
		return nil, err
	}
	return &hashFilter{
		field:       field,
		kind:        d.Kind,
		scheme:      scheme,
		tokens:      tokens,
		fingerprint: t.Fingerprint(),
	}, nil
}

// candidates returns the documents of seg accepted by the filter.
func (f *hashFilter) candidates(ctx context.Context, seg segment.Reader) (*roaring.Bitmap, error) {
	tableField := mapping.TableField(f.field, f.kind, f.scheme)
	fp := mapping.FormatFingerprint(f.fingerprint)

	fingerprints, err := seg.Terms(ctx, tableField)
	if err != nil {
		return nil, err
	}
	if len(fingerprints) == 0 {
		return roaring.New(), nil
	}
	if !slices.Contains(fingerprints, fp) {
		return nil, fmt.Errorf("%w: field %q %s tokens were produced by table %v, query uses %s",
			ErrTableMismatch, f.field, f.scheme, fingerprints, fp)
	}

	sameTable, err := seg.Postings(ctx, tableField, fp)
	if err != nil {
		return nil, err
	}

	lists := make([]*roaring.Bitmap, 0, len(f.tokens))
	for i, tok := range f.tokens {
		bm, err := seg.Postings(ctx, mapping.HashField(f.field, f.kind, f.scheme, i), mapping.HashToken(tok))
		if err != nil {
			return nil, err
		}
		lists = append(lists, bm)
	}

	shared := roaring.FastOr(lists...)
	shared.And(sameTable)
	return shared, nil
}
