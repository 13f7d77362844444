package query

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/hupe1980/imgsim/feature"
	"github.com/hupe1980/imgsim/hashing"
	"github.com/hupe1980/imgsim/imageio"
	"github.com/hupe1980/imgsim/mapping"
	"github.com/hupe1980/imgsim/segment"
)

// DefaultMaxImageDimension bounds the query image before extraction.
const DefaultMaxImageDimension = 1024

type options struct {
	maxImageDimension int
	hashScheme        hashing.Scheme
	tables            *hashing.Tables
}

// Option configures an ImageQuery.
type Option func(*options)

// WithMaxImageDimension sets the longest side the query image is scaled down
// to before extraction. Zero disables rescaling.
func WithMaxImageDimension(n int) Option {
	return func(o *options) { o.maxImageDimension = n }
}

// WithHashFilter restricts candidates to documents sharing at least one
// scheme token with the query. The table is resolved from tables when the
// query is built.
func WithHashFilter(scheme hashing.Scheme, tables *hashing.Tables) Option {
	return func(o *options) {
		o.hashScheme = scheme
		o.tables = tables
	}
}

// ImageQuery is an immutable similarity query for one field and kind.
// It is safe for concurrent use; every CreateScorer call is independent.
type ImageQuery struct {
	field      string
	descriptor feature.Descriptor
	boost      float32
	filter     *hashFilter
}

// NewImageQuery decodes data, scales it down and extracts the query
// descriptor of kind.
func NewImageQuery(field string, kind feature.Kind, data []byte, boost float32, opts ...Option) (*ImageQuery, error) {
	o := options{maxImageDimension: DefaultMaxImageDimension}
	for _, fn := range opts {
		fn(&o)
	}
	if err := checkArgs(field, kind, boost); err != nil {
		return nil, err
	}

	img, _, err := imageio.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("image query: %w", err)
	}
	img = imageio.Fit(img, o.maxImageDimension)

	d, err := feature.Extract(kind, img)
	if err != nil {
		return nil, fmt.Errorf("image query: %w", err)
	}
	return newQuery(field, d, boost, o)
}

// NewDescriptorQuery builds a query from an already extracted descriptor.
func NewDescriptorQuery(field string, d feature.Descriptor, boost float32, opts ...Option) (*ImageQuery, error) {
	o := options{maxImageDimension: DefaultMaxImageDimension}
	for _, fn := range opts {
		fn(&o)
	}
	if err := checkArgs(field, d.Kind, boost); err != nil {
		return nil, err
	}
	if len(d.Vector) != d.Kind.Len() {
		return nil, fmt.Errorf("image query: %w: %s descriptor has %d components, want %d",
			feature.ErrCorruptRecord, d.Kind, len(d.Vector), d.Kind.Len())
	}
	for i, v := range d.Vector {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("image query: %w: %s component %d is not finite", feature.ErrCorruptRecord, d.Kind, i)
		}
	}
	return newQuery(field, d, boost, o)
}

func checkArgs(field string, kind feature.Kind, boost float32) error {
	if field == "" {
		return ErrNoField
	}
	if kind == 0 {
		return ErrNoFeatureSpecified
	}
	if !kind.Valid() {
		return fmt.Errorf("image query: %w: %s", feature.ErrUnknownKind, kind)
	}
	if !(boost > 0) || math.IsInf(float64(boost), 0) {
		return fmt.Errorf("%w, got %v", ErrInvalidBoost, boost)
	}
	return nil
}

func newQuery(field string, d feature.Descriptor, boost float32, o options) (*ImageQuery, error) {
	q := &ImageQuery{field: field, descriptor: d, boost: boost}
	if o.hashScheme != 0 {
		f, err := newHashFilter(field, d, o.hashScheme, o.tables)
		if err != nil {
			return nil, fmt.Errorf("image query: %w", err)
		}
		q.filter = f
	}
	return q, nil
}

// Field returns the queried image field.
func (q *ImageQuery) Field() string { return q.field }

// Kind returns the queried descriptor kind.
func (q *ImageQuery) Kind() feature.Kind { return q.descriptor.Kind }

// Boost returns the score multiplier.
func (q *ImageQuery) Boost() float32 { return q.boost }

// Descriptor returns the query descriptor.
func (q *ImageQuery) Descriptor() feature.Descriptor { return q.descriptor }

// HashScheme returns the scheme of the hash filter, or 0 without one.
func (q *ImageQuery) HashScheme() hashing.Scheme {
	if q.filter == nil {
		return 0
	}
	return q.filter.scheme
}

// StoredField returns the name of the stored descriptor field the query reads.
func (q *ImageQuery) StoredField() string {
	return mapping.StoredField(q.field, q.descriptor.Kind)
}

// String returns "<field>,<KIND>" followed by "^<boost>" when the boost is not 1.
func (q *ImageQuery) String() string {
	s := q.field + "," + q.descriptor.Kind.String()
	if q.boost != 1 {
		s += "^" + strconv.FormatFloat(float64(q.boost), 'f', -1, 32)
	}
	return s
}

// CreateScorer binds the query to seg.
func (q *ImageQuery) CreateScorer(ctx context.Context, seg segment.Reader) (*Scorer, error) {
	live, err := seg.Live(ctx)
	if err != nil {
		return nil, err
	}
	maxDoc := seg.MaxDoc()
	if !live.IsEmpty() && int(live.Maximum()) >= maxDoc {
		live.RemoveRange(uint64(maxDoc), uint64(live.Maximum())+1)
	}

	s := &Scorer{
		query:  q,
		seg:    seg,
		field:  q.StoredField(),
		maxDoc: maxDoc,
		it:     live.Iterator(),
		cost:   int64(live.GetCardinality()),
		doc:    -1,
	}
	if q.filter != nil {
		candidates, err := q.filter.candidates(ctx, seg)
		if err != nil {
			return nil, err
		}
		s.filter = candidates
		s.matchCost = float32(len(q.filter.tokens))
	}
	return s, nil
}
