package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/imgsim/feature"
	"github.com/hupe1980/imgsim/hashing"
	"github.com/hupe1980/imgsim/imageio"
	"github.com/hupe1980/imgsim/mapping"
	"github.com/hupe1980/imgsim/metadata"
	"github.com/hupe1980/imgsim/resource"
)

// ErrNoContent is returned when the document carries no image bytes.
var ErrNoContent = imageio.ErrNoContent

// Pipeline indexes image fields. It is safe for concurrent use.
type Pipeline struct {
	cfg       Config
	tables    *hashing.Tables
	reader    metadata.Reader
	rc        *resource.Controller
	logger    *slog.Logger
	onSkipped MetadataSkippedFunc
}

// MetadataSkippedFunc is called when a metadata failure is ignored.
type MetadataSkippedFunc func(ctx context.Context, field string, err error)

type options struct {
	cfg       Config
	reader    metadata.Reader
	rc        *resource.Controller
	logger    *slog.Logger
	onSkipped MetadataSkippedFunc
}

// Option configures a Pipeline.
type Option func(*options)

// WithConfig replaces the default configuration.
func WithConfig(cfg Config) Option {
	return func(o *options) { o.cfg = cfg }
}

// WithMetadataReader sets the metadata reader. Defaults to metadata.ExifReader.
func WithMetadataReader(r metadata.Reader) Option {
	return func(o *options) {
		if r != nil {
			o.reader = r
		}
	}
}

// WithResourceController bounds decoded-buffer memory and extraction workers
// across all documents indexed through the controller.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) { o.rc = rc }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetadataSkipped replaces the default warning log for ignored metadata
// failures.
func WithMetadataSkipped(fn MetadataSkippedFunc) Option {
	return func(o *options) { o.onSkipped = fn }
}

// New creates a pipeline. tables may be nil when no field requests hashing;
// a field that does will then fail with a *hashing.HashTableLoadError.
func New(tables *hashing.Tables, opts ...Option) (*Pipeline, error) {
	o := options{
		cfg:    DefaultConfig(),
		reader: metadata.ExifReader{},
		logger: slog.Default(),
	}
	for _, fn := range opts {
		fn(&o)
	}
	if err := o.cfg.Validate(); err != nil {
		return nil, err
	}
	if o.cfg.MaxWorkers == 0 {
		o.cfg.MaxWorkers = 1
	}

	p := &Pipeline{
		cfg:       o.cfg,
		tables:    tables,
		reader:    o.reader,
		rc:        o.rc,
		logger:    o.logger,
		onSkipped: o.onSkipped,
	}
	if p.onSkipped == nil {
		p.onSkipped = p.logSkipped
	}
	return p, nil
}

// Config returns the effective configuration.
func (p *Pipeline) Config() Config { return p.cfg }

// Index decodes data and returns the fields of spec for one document.
//
// Fields are ordered by kind; each stored descriptor is followed by its hash
// token fields in scheme order. Metadata fields follow in declaration order.
func (p *Pipeline) Index(ctx context.Context, data []byte, spec mapping.FieldSpec) ([]Field, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("field %q: %w", spec.Name, ErrNoContent)
	}

	features := spec.Sorted()

	// Resolve tables before the expensive work so a missing table fails fast.
	tables := make(map[hashing.Scheme]*hashing.Table)
	for _, s := range spec.Schemes() {
		t, err := p.tables.Get(s)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", spec.Name, err)
		}
		tables[s] = t
	}

	cfg, _, err := imageio.DecodeConfig(data)
	if err != nil {
		return nil, fmt.Errorf("field %q: %w", spec.Name, err)
	}
	mem := imageio.BufferBytes(cfg.Width, cfg.Height)
	if err := p.rc.AcquireMemory(ctx, mem); err != nil {
		return nil, err
	}
	defer p.rc.ReleaseMemory(mem)

	img, _, err := imageio.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("field %q: %w", spec.Name, err)
	}
	img = imageio.Fit(img, p.cfg.MaxImageDimension)

	descriptors, err := p.extract(ctx, img, spec.Name, features)
	if err != nil {
		return nil, err
	}

	fields := make([]Field, 0, len(features)*2)
	for i, f := range features {
		d := descriptors[i]
		record, err := feature.Encode(d)
		if err != nil {
			return nil, &FeatureError{Field: spec.Name, Kind: f.Kind, cause: err}
		}
		fields = append(fields, Field{
			Name:   mapping.StoredField(spec.Name, f.Kind),
			Value:  record,
			Stored: true,
		})

		for _, s := range f.Hashes {
			t := tables[s]
			tokens, err := t.Hash(d.Vector)
			if err != nil {
				return nil, &FeatureError{Field: spec.Name, Kind: f.Kind, cause: err}
			}
			for j, tok := range tokens {
				fields = append(fields, Field{
					Name:    mapping.HashField(spec.Name, f.Kind, s, j),
					Value:   []byte(mapping.HashToken(tok)),
					Indexed: true,
				})
			}
			fields = append(fields, Field{
				Name:    mapping.TableField(spec.Name, f.Kind, s),
				Value:   []byte(mapping.FormatFingerprint(t.Fingerprint())),
				Stored:  true,
				Indexed: true,
			})
		}
	}

	if p.cfg.ExtractMetadata && len(spec.Metadata) > 0 {
		md, err := p.metadata(ctx, data, spec)
		if err != nil {
			return nil, err
		}
		fields = append(fields, md...)
	}

	return fields, nil
}

// extract computes one descriptor per feature. Results are written by index,
// so the output order never depends on completion order.
func (p *Pipeline) extract(ctx context.Context, img image.Image, field string, features []mapping.FeatureSpec) ([]feature.Descriptor, error) {
	out := make([]feature.Descriptor, len(features))

	run := func(i int) error {
		d, err := feature.Extract(features[i].Kind, img)
		if err != nil {
			return &FeatureError{Field: field, Kind: features[i].Kind, cause: err}
		}
		out[i] = d
		return nil
	}

	if !p.cfg.UseParallelExtraction || len(features) < 2 || p.cfg.MaxWorkers < 2 {
		for i := range features {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if err := run(i); err != nil {
				return nil, err
			}
		}
		return out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.MaxWorkers)
	for i := range features {
		g.Go(func() error {
			if err := p.rc.AcquireWorker(gctx); err != nil {
				return err
			}
			defer p.rc.ReleaseWorker()
			return run(i)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *Pipeline) metadata(ctx context.Context, data []byte, spec mapping.FieldSpec) ([]Field, error) {
	tags, err := p.reader.Read(data)
	if err != nil {
		var mdErr *metadata.MetadataError
		if !errors.As(err, &mdErr) {
			err = metadata.NewReadError(err)
		}
		return p.metadataFailed(ctx, spec, err)
	}

	values, err := metadata.Extract(tags, spec.Metadata)
	if err != nil {
		return p.metadataFailed(ctx, spec, err)
	}

	fields := make([]Field, 0, len(values))
	for _, v := range values {
		fields = append(fields, Field{
			Name:    mapping.MetadataField(spec.Name, v.Field.Name),
			Value:   []byte(v.Text),
			Stored:  true,
			Indexed: true,
		})
	}
	return fields, nil
}

func (p *Pipeline) metadataFailed(ctx context.Context, spec mapping.FieldSpec, err error) ([]Field, error) {
	if !p.cfg.IgnoreMetadataErrors {
		return nil, fmt.Errorf("field %q: %w", spec.Name, err)
	}
	p.onSkipped(ctx, spec.Name, err)
	return nil, nil
}

func (p *Pipeline) logSkipped(ctx context.Context, field string, err error) {
	attrs := []any{slog.String("field", field), slog.String("error", err.Error())}
	var mdErr *metadata.MetadataError
	if errors.As(err, &mdErr) && mdErr.Field != "" {
		attrs = append(attrs, slog.String("metadata_field", mdErr.Field))
	}
	p.logger.WarnContext(ctx, "metadata skipped", attrs...)
}

// Describe returns a one-line summary of the fields for debug logs.
func Describe(fields []Field) string {
	stored, indexed := 0, 0
	for _, f := range fields {
		if f.Stored {
			stored++
		}
		if f.Indexed {
			indexed++
		}
	}
	return fmt.Sprintf("%d fields (%d stored, %d indexed)", len(fields), stored, indexed)
}
