package imgsim

import (
	"github.com/hupe1980/imgsim/blobstore"
	"github.com/hupe1980/imgsim/hashing"
	"github.com/hupe1980/imgsim/metadata"
	"github.com/hupe1980/imgsim/pipeline"
	"github.com/hupe1980/imgsim/resource"
	"github.com/hupe1980/imgsim/segment"
)

type options struct {
	logger           *Logger
	metricsCollector MetricsCollector
	pipelineConfig   pipeline.Config
	tables           *hashing.Tables
	tableStore       blobstore.BlobStore
	segment          segment.Segment
	readers          []segment.Reader
	rc               *resource.Controller
	metadataReader   metadata.Reader
	parallelism      int
	cacheBytes       int64
}

func defaultOptions() options {
	return options{
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
		pipelineConfig:   pipeline.DefaultConfig(),
		parallelism:      1,
	}
}

// Option configures an Engine.
type Option func(*options)

// WithLogger sets the logger. Defaults to NoopLogger.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetricsCollector sets the metrics collector. Defaults to NoopMetricsCollector.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc != nil {
			o.metricsCollector = mc
		}
	}
}

// WithPipelineConfig replaces the indexing configuration. Its
// MaxImageDimension also bounds query images.
func WithPipelineConfig(cfg pipeline.Config) Option {
	return func(o *options) {
		o.pipelineConfig = cfg
	}
}

// WithTables uses an already loaded set of hash tables.
// It takes precedence over WithTableStore.
func WithTables(tables *hashing.Tables) Option {
	return func(o *options) {
		o.tables = tables
	}
}

// WithTableStore loads the hash tables named by the store's CURRENT pointer
// when the Engine is created.
func WithTableStore(store blobstore.BlobStore) Option {
	return func(o *options) {
		o.tableStore = store
	}
}

// WithSegment sets the segment documents are written to. Defaults to an
// in-memory segment. The Engine closes it on Close.
func WithSegment(seg segment.Segment) Option {
	return func(o *options) {
		o.segment = seg
	}
}

// WithReadOnlySegments adds segments that are searched but never written.
// Their hits report Segment 1, 2, ... in the order given; the writable
// segment is always 0.
func WithReadOnlySegments(readers ...segment.Reader) Option {
	return func(o *options) {
		o.readers = append(o.readers, readers...)
	}
}

// WithResourceController bounds decode memory, extraction workers and hash
// table reads.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.rc = rc
	}
}

// WithMetadataReader sets the metadata reader. Defaults to metadata.ExifReader.
func WithMetadataReader(r metadata.Reader) Option {
	return func(o *options) {
		o.metadataReader = r
	}
}

// WithSearchParallelism bounds the number of segments scored concurrently.
func WithSearchParallelism(n int) Option {
	return func(o *options) {
		o.parallelism = max(n, 1)
	}
}

// WithStoredCache keeps up to bytes of stored feature records read during
// scoring in memory, per segment. Zero disables the cache.
func WithStoredCache(bytes int64) Option {
	return func(o *options) {
		o.cacheBytes = bytes
	}
}

type queryOptions struct {
	boost  float32
	scheme hashing.Scheme
	hashed bool
}

// QueryOption configures a query built by Engine.NewQuery.
type QueryOption func(*queryOptions)

// WithBoost multiplies every score of the query. Defaults to 1.
func WithBoost(boost float32) QueryOption {
	return func(o *queryOptions) {
		o.boost = boost
	}
}

// WithHash restricts scoring to documents sharing a hash token with the
// query image under scheme.
func WithHash(scheme hashing.Scheme) QueryOption {
	return func(o *queryOptions) {
		o.scheme = scheme
		o.hashed = true
	}
}
