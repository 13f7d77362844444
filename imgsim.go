package imgsim

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hupe1980/imgsim/blobstore"
	"github.com/hupe1980/imgsim/feature"
	"github.com/hupe1980/imgsim/hashing"
	"github.com/hupe1980/imgsim/mapping"
	"github.com/hupe1980/imgsim/pipeline"
	"github.com/hupe1980/imgsim/query"
	"github.com/hupe1980/imgsim/resource"
	"github.com/hupe1980/imgsim/segment"
	"github.com/hupe1980/imgsim/segment/cache"
)

// Result is a scored document.
type Result = query.Hit

// mappingStore is implemented by segments that persist field mappings.
type mappingStore interface {
	SaveMapping(ctx context.Context, spec mapping.FieldSpec) error
	Mapping(ctx context.Context, field string) (mapping.FieldSpec, error)
}

// Engine indexes images into a segment and ranks them by similarity to a
// query image. It is safe for concurrent use.
type Engine struct {
	tables   *hashing.Tables
	pipeline *pipeline.Pipeline
	segment  segment.Segment
	readers  []segment.Reader
	logger   *Logger
	metrics  MetricsCollector

	parallelism int
	maxQueryDim int

	mu     sync.RWMutex
	fields map[string]mapping.FieldSpec

	closed atomic.Bool
}

// New creates an Engine.
func New(ctx context.Context, opts ...Option) (*Engine, error) {
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}

	if err := o.pipelineConfig.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		logger:      o.logger,
		metrics:     o.metricsCollector,
		segment:     o.segment,
		parallelism: o.parallelism,
		maxQueryDim: o.pipelineConfig.MaxImageDimension,
		fields:      make(map[string]mapping.FieldSpec),
	}
	if e.segment == nil {
		e.segment = segment.NewMemory()
	}
	e.readers = append([]segment.Reader{e.segment}, o.readers...)
	if o.cacheBytes > 0 {
		for i, r := range e.readers {
			e.readers[i] = cache.NewReader(r, o.cacheBytes, o.rc)
		}
	}

	switch {
	case o.tables != nil:
		e.tables = o.tables
	case o.tableStore != nil:
		e.tables = e.loadTables(ctx, o.tableStore, o.rc)
	default:
		e.tables = hashing.NewTables()
	}

	pipeOpts := []pipeline.Option{
		pipeline.WithConfig(o.pipelineConfig),
		pipeline.WithLogger(e.logger.Logger),
		pipeline.WithResourceController(o.rc),
		pipeline.WithMetadataSkipped(func(ctx context.Context, field string, err error) {
			e.logger.LogMetadataSkipped(ctx, field, err)
			e.metrics.RecordMetadataSkipped(field)
		}),
	}
	if o.metadataReader != nil {
		pipeOpts = append(pipeOpts, pipeline.WithMetadataReader(o.metadataReader))
	}

	p, err := pipeline.New(e.tables, pipeOpts...)
	if err != nil {
		return nil, err
	}
	e.pipeline = p

	return e, nil
}

func (e *Engine) loadTables(ctx context.Context, store blobstore.BlobStore, rc *resource.Controller) *hashing.Tables {
	if rc != nil {
		store = resource.NewLimitedStore(store, rc)
	}
	return hashing.LoadCurrent(ctx, store, hashing.WithLoadObserver(func(ev hashing.LoadEvent) {
		e.logger.LogTableLoad(ctx, ev)
		e.metrics.RecordTableLoad(ev.Scheme.String(), ev.Duration, ev.Err)
	}))
}

// Tables returns the hash tables the Engine was created with.
func (e *Engine) Tables() *hashing.Tables { return e.tables }

// Segment returns the writable segment.
func (e *Engine) Segment() segment.Segment { return e.segment }

// RegisterField declares an image field. Segments that persist mappings
// store it so a reopened Engine can index the field without redeclaring it.
func (e *Engine) RegisterField(ctx context.Context, spec mapping.FieldSpec) (err error) {
	defer func() { e.logger.LogRegister(ctx, spec.Name, spec.String(), err) }()

	if e.closed.Load() {
		return ErrClosed
	}
	if err := spec.Validate(); err != nil {
		return translateError(err)
	}
	if ms, ok := e.segment.(mappingStore); ok {
		if err := ms.SaveMapping(ctx, spec); err != nil {
			return translateError(err)
		}
	}

	e.mu.Lock()
	e.fields[spec.Name] = spec
	e.mu.Unlock()
	return nil
}

// RegisterMapping registers every image field of a {"properties": {...}}
// mapping document and returns them sorted by name.
func (e *Engine) RegisterMapping(ctx context.Context, data []byte) ([]mapping.FieldSpec, error) {
	specs, err := mapping.ParseProperties(data)
	if err != nil {
		return nil, translateError(err)
	}
	for _, s := range specs {
		if err := e.RegisterField(ctx, s); err != nil {
			return nil, err
		}
	}
	return specs, nil
}

// Field returns the mapping of an image field. Fields persisted by the
// segment are loaded on first use.
func (e *Engine) Field(ctx context.Context, name string) (mapping.FieldSpec, error) {
	e.mu.RLock()
	spec, ok := e.fields[name]
	e.mu.RUnlock()
	if ok {
		return spec, nil
	}

	ms, ok := e.segment.(mappingStore)
	if !ok {
		return mapping.FieldSpec{}, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	spec, err := ms.Mapping(ctx, name)
	if err != nil {
		return mapping.FieldSpec{}, fmt.Errorf("%w: %q: %w", ErrUnknownField, name, err)
	}

	e.mu.Lock()
	e.fields[name] = spec
	e.mu.Unlock()
	return spec, nil
}

// Fields returns the names of the registered fields, sorted.
func (e *Engine) Fields() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return slices.Sorted(maps.Keys(e.fields))
}

// Analyze runs the indexing pipeline for one field without storing anything.
func (e *Engine) Analyze(ctx context.Context, field string, data []byte) ([]pipeline.Field, error) {
	if e.closed.Load() {
		return nil, ErrClosed
	}
	spec, err := e.Field(ctx, field)
	if err != nil {
		return nil, err
	}
	fields, err := e.pipeline.Index(ctx, data, spec)
	return fields, translateError(err)
}

// IndexImage indexes one image into field and returns the new document number.
func (e *Engine) IndexImage(ctx context.Context, field string, data []byte) (int, error) {
	return e.Index(ctx, map[string][]byte{field: data})
}

// Index indexes a document with one image per field. The document is added
// only if every field indexes successfully.
func (e *Engine) Index(ctx context.Context, images map[string][]byte) (doc int, err error) {
	start := time.Now()
	var fields []pipeline.Field
	defer func() {
		e.metrics.RecordIndex(time.Since(start), len(fields), err)
		e.logger.LogIndex(ctx, doc, len(fields), err)
	}()

	if e.closed.Load() {
		return -1, ErrClosed
	}
	if len(images) == 0 {
		return -1, ErrNoContent
	}

	for _, name := range slices.Sorted(maps.Keys(images)) {
		spec, err := e.Field(ctx, name)
		if err != nil {
			return -1, err
		}
		f, err := e.pipeline.Index(ctx, images[name], spec)
		if err != nil {
			return -1, translateError(err)
		}
		fields = append(fields, f...)
	}

	doc, err = e.segment.Add(ctx, fields)
	if err != nil {
		return -1, translateError(err)
	}
	return doc, nil
}

// Delete removes a document from the writable segment.
func (e *Engine) Delete(ctx context.Context, doc int) (err error) {
	start := time.Now()
	defer func() {
		e.metrics.RecordDelete(time.Since(start), err)
		e.logger.LogDelete(ctx, doc, err)
	}()

	if e.closed.Load() {
		return ErrClosed
	}
	return translateError(e.segment.Delete(ctx, doc))
}

// NewQuery builds a query from an image. The image is decoded and fitted
// like indexed images, so the same bytes score 2*boost against themselves.
func (e *Engine) NewQuery(field string, kind feature.Kind, data []byte, opts ...QueryOption) (*query.ImageQuery, error) {
	qo := queryOptions{boost: 1}
	for _, fn := range opts {
		fn(&qo)
	}

	qopts := []query.Option{query.WithMaxImageDimension(e.maxQueryDim)}
	if qo.hashed {
		qopts = append(qopts, query.WithHashFilter(qo.scheme, e.tables))
	}

	q, err := query.NewImageQuery(field, kind, data, qo.boost, qopts...)
	return q, translateError(err)
}

// ParseQuery builds a query from a JSON image clause, see query.Parse.
func (e *Engine) ParseQuery(data []byte) (*query.ImageQuery, error) {
	q, err := query.Parse(data, e.tables, query.WithMaxImageDimension(e.maxQueryDim))
	return q, translateError(err)
}

// Search returns the k best documents for q across all segments, best first.
func (e *Engine) Search(ctx context.Context, q *query.ImageQuery, k int) (results []Result, err error) {
	if q == nil {
		return nil, query.ErrNoFeatureSpecified
	}

	start := time.Now()
	defer func() {
		e.metrics.RecordSearch(k, len(results), time.Since(start), err)
		e.logger.LogQuery(ctx, q.String(), k, len(results), err)
	}()

	if e.closed.Load() {
		return nil, ErrClosed
	}
	if k <= 0 {
		return nil, ErrInvalidK
	}

	results, err = query.Search(ctx, q, e.readers, k, query.SearchOptions{Parallelism: e.parallelism})
	if err != nil {
		return nil, translateError(err)
	}
	return results, nil
}

// Explain describes how doc of segment seg scores against q.
func (e *Engine) Explain(ctx context.Context, q *query.ImageQuery, seg, doc int) (query.Explanation, error) {
	if e.closed.Load() {
		return query.Explanation{}, ErrClosed
	}
	if seg < 0 || seg >= len(e.readers) {
		return query.Explanation{}, fmt.Errorf("%w: segment %d", ErrNotFound, seg)
	}
	ex, err := q.Explain(ctx, e.readers[seg], doc)
	return ex, translateError(err)
}

// Close releases the writable segment. Read-only segments stay open.
func (e *Engine) Close() error {
	if e == nil || e.closed.Swap(true) {
		return nil
	}
	return e.segment.Close()
}
