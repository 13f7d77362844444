package hashing

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"time"

	"github.com/hupe1980/imgsim/blobstore"
)

// Tables is the process-wide set of hash tables, one per scheme.
// It is immutable after construction and safe for concurrent use.
type Tables struct {
	tables map[Scheme]*Table
	errs   map[Scheme]error
}

// NewTables builds a Tables set from in-memory tables.
func NewTables(tables ...*Table) *Tables {
	ts := &Tables{
		tables: make(map[Scheme]*Table, len(tables)),
		errs:   make(map[Scheme]error),
	}
	for _, t := range tables {
		if t != nil {
			ts.tables[t.scheme] = t
		}
	}
	return ts
}

// Get returns the table for scheme. A scheme whose load failed, or that was
// never configured, yields a *HashTableLoadError.
func (ts *Tables) Get(scheme Scheme) (*Table, error) {
	if ts != nil {
		if t, ok := ts.tables[scheme]; ok {
			return t, nil
		}
		if err, ok := ts.errs[scheme]; ok {
			return nil, err
		}
	}
	return nil, &HashTableLoadError{Scheme: scheme, cause: ErrNoTable}
}

// Available returns the schemes whose tables loaded successfully.
func (ts *Tables) Available() []Scheme {
	var out []Scheme
	if ts == nil {
		return out
	}
	for _, s := range Schemes() {
		if _, ok := ts.tables[s]; ok {
			out = append(out, s)
		}
	}
	return out
}

// LoadEvent describes the outcome of loading one table.
type LoadEvent struct {
	Scheme   Scheme
	Name     string
	Duration time.Duration
	Err      error
}

type loadOptions struct {
	logger  *slog.Logger
	observe func(LoadEvent)
}

// LoadOption configures LoadTables.
type LoadOption func(*loadOptions)

// WithLoadLogger logs each table load.
func WithLoadLogger(l *slog.Logger) LoadOption {
	return func(o *loadOptions) { o.logger = l }
}

// WithLoadObserver reports each table load, e.g. to a metrics collector.
func WithLoadObserver(fn func(LoadEvent)) LoadOption {
	return func(o *loadOptions) { o.observe = fn }
}

// LoadTables reads one table per scheme from store. It never fails as a whole:
// a scheme whose blob is missing or corrupt is remembered and reported by Get.
func LoadTables(ctx context.Context, store blobstore.BlobStore, names map[Scheme]string, opts ...LoadOption) *Tables {
	o := loadOptions{}
	for _, fn := range opts {
		fn(&o)
	}

	ts := NewTables()
	for _, scheme := range Schemes() {
		name, ok := names[scheme]
		if !ok {
			continue
		}

		start := time.Now()
		t, err := loadTable(ctx, store, scheme, name)
		ev := LoadEvent{Scheme: scheme, Name: name, Duration: time.Since(start), Err: err}

		if err != nil {
			ts.errs[scheme] = err
		} else {
			ts.tables[scheme] = t
		}

		if o.logger != nil {
			if err != nil {
				o.logger.Error("hash table load failed", "scheme", scheme.String(), "name", name, "error", err)
			} else {
				o.logger.Info("hash table loaded", "scheme", scheme.String(), "name", name,
					"fingerprint", fmt.Sprintf("%016x", t.fingerprint), "duration", ev.Duration)
			}
		}
		if o.observe != nil {
			o.observe(ev)
		}
	}
	return ts
}

func loadTable(ctx context.Context, store blobstore.BlobStore, scheme Scheme, name string) (*Table, error) {
	data, err := blobstore.ReadAll(ctx, store, name)
	if err != nil {
		return nil, &HashTableLoadError{Scheme: scheme, Name: name, cause: err}
	}
	t, err := Unmarshal(data)
	if err != nil {
		return nil, &HashTableLoadError{Scheme: scheme, Name: name, cause: err}
	}
	if t.scheme != scheme {
		return nil, &HashTableLoadError{Scheme: scheme, Name: name, cause: fmt.Errorf("%w: blob holds a %s table", ErrCorruptTable, t.scheme)}
	}
	return t, nil
}

// BlobName returns the blob name of scheme's table inside a published set.
func BlobName(set string, scheme Scheme) string {
	return path.Join(set, scheme.FieldName()+".imht")
}

// SetNames returns the blob names of every scheme inside a published set.
func SetNames(set string) map[Scheme]string {
	names := make(map[Scheme]string, 2)
	for _, s := range Schemes() {
		names[s] = BlobName(set, s)
	}
	return names
}

// ResolveSet follows the CURRENT pointer to the blob names of the active set.
func ResolveSet(ctx context.Context, store blobstore.BlobStore) (map[Scheme]string, error) {
	set, err := blobstore.ResolveCurrent(ctx, store)
	if err != nil {
		return nil, err
	}
	return SetNames(set), nil
}

// LoadCurrent resolves the CURRENT pointer and loads the set it names.
// A missing or unreadable pointer marks every scheme as failed.
func LoadCurrent(ctx context.Context, store blobstore.BlobStore, opts ...LoadOption) *Tables {
	names, err := ResolveSet(ctx, store)
	if err != nil {
		ts := NewTables()
		for _, s := range Schemes() {
			ts.errs[s] = &HashTableLoadError{Scheme: s, Name: blobstore.CurrentPointer, cause: err}
		}
		return ts
	}
	return LoadTables(ctx, store, names, opts...)
}

// Publish writes tables under set and then moves the CURRENT pointer to it.
// Readers never observe a pointer to a partially written set.
func Publish(ctx context.Context, store blobstore.BlobStore, set string, c Compression, tables ...*Table) error {
	for _, t := range tables {
		data, err := Marshal(t, c)
		if err != nil {
			return err
		}
		if err := store.Put(ctx, BlobName(set, t.scheme), data); err != nil {
			return fmt.Errorf("publish %s table: %w", t.scheme, err)
		}
	}
	return store.Put(ctx, blobstore.CurrentPointer, []byte(set))
}
