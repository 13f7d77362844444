package query

import (
	"errors"
	"fmt"

	"github.com/hupe1980/imgsim/feature"
)

var (
	// ErrNoFeatureSpecified is returned when a query names no descriptor kind.
	ErrNoFeatureSpecified = errors.New("no feature specified for image query")

	// ErrNoField is returned when a query names no field.
	ErrNoField = errors.New("image query malformed, no field")

	// ErrInvalidBoost is returned for a boost that is not a positive finite number.
	ErrInvalidBoost = errors.New("image query boost must be positive")

	// ErrNotPositioned is returned by Score when the scorer is not on a matching document.
	ErrNotPositioned = errors.New("scorer is not positioned on a matching document")

	// ErrTableMismatch is returned when a segment was hashed with a different
	// table than the one the query uses.
	ErrTableMismatch = errors.New("hash table fingerprint mismatch")
)

// MissingFeatureFieldError is returned when a candidate has no stored
// descriptor for the queried field and kind.
type MissingFeatureFieldError struct {
	Field string
	Kind  feature.Kind
	Doc   int
}

func (e *MissingFeatureFieldError) Error() string {
	return fmt.Sprintf("document %d has no stored %s feature in field %q", e.Doc, e.Kind, e.Field)
}
