package segment

import (
	"context"
	"errors"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/imgsim/pipeline"
)

var (
	// ErrDocNotFound is returned for doc ids outside the segment.
	ErrDocNotFound = errors.New("segment: document not found")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("segment: closed")
)

// Reader is the read side of a segment.
//
// Implementations must be safe for concurrent readers. Bitmaps returned by
// Live and Postings are owned by the caller.
type Reader interface {
	// MaxDoc returns one past the largest doc id ever assigned.
	MaxDoc() int

	// Live returns the ids of documents that are not deleted.
	Live(ctx context.Context) (*roaring.Bitmap, error)

	// Stored returns the stored value of field for doc, or nil if the
	// document has no such field.
	Stored(ctx context.Context, doc int, field string) ([]byte, error)

	// Postings returns the ids of documents that index term in field.
	Postings(ctx context.Context, field, term string) (*roaring.Bitmap, error)

	// Terms returns the distinct indexed terms of field in ascending order.
	Terms(ctx context.Context, field string) ([]string, error)
}

// Writer is the write side of a segment.
type Writer interface {
	// Add appends a document and returns its id. All fields of the
	// document become visible together.
	Add(ctx context.Context, fields []pipeline.Field) (int, error)

	// Delete removes doc from the live set.
	Delete(ctx context.Context, doc int) error
}

// Segment is a readable and writable segment.
type Segment interface {
	Reader
	Writer
	Close() error
}
