package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/RoaringBitmap/roaring/v2"

	// Import the SQLite driver.
	_ "modernc.org/sqlite"

	"github.com/hupe1980/imgsim/codec"
	"github.com/hupe1980/imgsim/mapping"
	"github.com/hupe1980/imgsim/pipeline"
	"github.com/hupe1980/imgsim/segment"
)

var _ segment.Segment = (*Store)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value BLOB NOT NULL
);
CREATE TABLE IF NOT EXISTS docs (
	doc  INTEGER PRIMARY KEY,
	live INTEGER NOT NULL DEFAULT 1
);
CREATE TABLE IF NOT EXISTS stored (
	doc   INTEGER NOT NULL,
	field TEXT NOT NULL,
	value BLOB NOT NULL,
	PRIMARY KEY (doc, field)
) WITHOUT ROWID;
CREATE TABLE IF NOT EXISTS postings (
	field TEXT NOT NULL,
	term  TEXT NOT NULL,
	doc   INTEGER NOT NULL,
	PRIMARY KEY (field, term, doc)
) WITHOUT ROWID;
`

const (
	metaCodec       = "codec"
	metaMappingPref = "mapping."
)

// Store is a segment persisted in a SQLite database.
type Store struct {
	db    *sql.DB
	codec codec.Codec

	writeMu sync.Mutex
	maxDoc  atomic.Int64
	closed  atomic.Bool
}

// Open opens or creates the segment database at path. Use ":memory:" for a
// private in-memory database.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("sqlite: path required")
	}

	// Notes:
	// - When using the `modernc.org/sqlite` driver, each pragma must be prefixed with `_pragma=`.
	// - A single connection keeps ":memory:" databases shared across calls.
	dsn := path + "?_pragma=foreign_keys(0)&_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	s := &Store{db: db}
	if err := s.init(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("sqlite: create schema: %w", err)
	}

	var name string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM meta WHERE key = ?", metaCodec).Scan(&name)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		s.codec = codec.Default
		if _, err := s.db.ExecContext(ctx, "INSERT INTO meta(key, value) VALUES (?, ?)", metaCodec, s.codec.Name()); err != nil {
			return fmt.Errorf("sqlite: write codec: %w", err)
		}
	case err != nil:
		return fmt.Errorf("sqlite: read codec: %w", err)
	default:
		c, err := codec.ByName(name)
		if err != nil {
			return fmt.Errorf("sqlite: %w", err)
		}
		s.codec = c
	}

	var maxDoc sql.NullInt64
	if err := s.db.QueryRowContext(ctx, "SELECT MAX(doc) FROM docs").Scan(&maxDoc); err != nil {
		return fmt.Errorf("sqlite: read max doc: %w", err)
	}
	if maxDoc.Valid {
		s.maxDoc.Store(maxDoc.Int64 + 1)
	}
	return nil
}

// MaxDoc implements segment.Reader.
func (s *Store) MaxDoc() int { return int(s.maxDoc.Load()) }

// Live implements segment.Reader.
func (s *Store) Live(ctx context.Context) (*roaring.Bitmap, error) {
	if s.closed.Load() {
		return nil, segment.ErrClosed
	}
	return s.bitmap(ctx, "SELECT doc FROM docs WHERE live = 1 ORDER BY doc")
}

// Stored implements segment.Reader.
func (s *Store) Stored(ctx context.Context, doc int, field string) ([]byte, error) {
	if s.closed.Load() {
		return nil, segment.ErrClosed
	}
	if doc < 0 || doc >= s.MaxDoc() {
		return nil, segment.ErrDocNotFound
	}

	var value []byte
	err := s.db.QueryRowContext(ctx, "SELECT value FROM stored WHERE doc = ? AND field = ?", doc, field).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: read stored %q of doc %d: %w", field, doc, err)
	}
	return value, nil
}

// Postings implements segment.Reader.
func (s *Store) Postings(ctx context.Context, field, term string) (*roaring.Bitmap, error) {
	if s.closed.Load() {
		return nil, segment.ErrClosed
	}
	return s.bitmap(ctx, "SELECT doc FROM postings WHERE field = ? AND term = ? ORDER BY doc", field, term)
}

// Terms implements segment.Reader.
func (s *Store) Terms(ctx context.Context, field string) ([]string, error) {
	if s.closed.Load() {
		return nil, segment.ErrClosed
	}
	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT term FROM postings WHERE field = ? ORDER BY term", field)
	if err != nil {
		return nil, fmt.Errorf("sqlite: terms of %q: %w", field, err)
	}
	defer rows.Close()

	terms := []string{}
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		terms = append(terms, t)
	}
	return terms, rows.Err()
}

func (s *Store) bitmap(ctx context.Context, query string, args ...any) (*roaring.Bitmap, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query: %w", err)
	}
	defer rows.Close()

	bm := roaring.New()
	var buf []uint32
	for rows.Next() {
		var doc int64
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		buf = append(buf, uint32(doc))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	bm.AddMany(buf)
	return bm, nil
}

// Add implements segment.Writer.
func (s *Store) Add(ctx context.Context, fields []pipeline.Field) (int, error) {
	if s.closed.Load() {
		return 0, segment.ErrClosed
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	doc := s.maxDoc.Load()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "INSERT INTO docs(doc, live) VALUES (?, 1)", doc); err != nil {
		return 0, fmt.Errorf("sqlite: insert doc: %w", err)
	}

	storeStmt, err := tx.PrepareContext(ctx, "INSERT OR REPLACE INTO stored(doc, field, value) VALUES (?, ?, ?)")
	if err != nil {
		return 0, err
	}
	defer storeStmt.Close()

	postStmt, err := tx.PrepareContext(ctx, "INSERT OR IGNORE INTO postings(field, term, doc) VALUES (?, ?, ?)")
	if err != nil {
		return 0, err
	}
	defer postStmt.Close()

	for _, f := range fields {
		if f.Stored {
			value := f.Value
			if value == nil {
				value = []byte{}
			}
			if _, err := storeStmt.ExecContext(ctx, doc, f.Name, value); err != nil {
				return 0, fmt.Errorf("sqlite: store %q: %w", f.Name, err)
			}
		}
		if f.Indexed {
			if _, err := postStmt.ExecContext(ctx, f.Name, string(f.Value), doc); err != nil {
				return 0, fmt.Errorf("sqlite: index %q: %w", f.Name, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlite: commit: %w", err)
	}
	s.maxDoc.Store(doc + 1)
	return int(doc), nil
}

// Delete implements segment.Writer.
func (s *Store) Delete(ctx context.Context, doc int) error {
	if s.closed.Load() {
		return segment.ErrClosed
	}
	if doc < 0 || doc >= s.MaxDoc() {
		return segment.ErrDocNotFound
	}
	_, err := s.db.ExecContext(ctx, "UPDATE docs SET live = 0 WHERE doc = ?", doc)
	if err != nil {
		return fmt.Errorf("sqlite: delete doc %d: %w", doc, err)
	}
	return nil
}

// SaveMapping persists the mapping of one image field.
func (s *Store) SaveMapping(ctx context.Context, spec mapping.FieldSpec) error {
	if err := spec.Validate(); err != nil {
		return err
	}
	data, err := s.codec.Marshal(spec)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, "INSERT OR REPLACE INTO meta(key, value) VALUES (?, ?)", metaMappingPref+spec.Name, data)
	if err != nil {
		return fmt.Errorf("sqlite: save mapping %q: %w", spec.Name, err)
	}
	return nil
}

// Mapping loads the mapping of field.
func (s *Store) Mapping(ctx context.Context, field string) (mapping.FieldSpec, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, "SELECT value FROM meta WHERE key = ?", metaMappingPref+field).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return mapping.FieldSpec{}, fmt.Errorf("sqlite: no mapping for field %q", field)
	}
	if err != nil {
		return mapping.FieldSpec{}, fmt.Errorf("sqlite: load mapping %q: %w", field, err)
	}
	return mapping.Parse(field, data)
}

// Codec returns the codec used for persisted payloads.
func (s *Store) Codec() codec.Codec { return s.codec }

// Close closes the database.
func (s *Store) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.db.Close()
}
