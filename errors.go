package imgsim

import (
	"errors"
	"fmt"

	"github.com/hupe1980/imgsim/feature"
	"github.com/hupe1980/imgsim/hashing"
	"github.com/hupe1980/imgsim/imageio"
	"github.com/hupe1980/imgsim/mapping"
	"github.com/hupe1980/imgsim/pipeline"
	"github.com/hupe1980/imgsim/query"
	"github.com/hupe1980/imgsim/segment"
)

var (
	// ErrInvalidK is returned when k is not positive.
	ErrInvalidK = errors.New("k must be positive")

	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("not found")

	// ErrClosed is returned by operations on a closed Engine.
	ErrClosed = errors.New("engine closed")

	// ErrUnknownField is returned when an image field has no registered mapping.
	ErrUnknownField = errors.New("unknown image field")

	// ErrNoContent is returned when a document carries no image bytes.
	ErrNoContent = pipeline.ErrNoContent

	// ErrInvalidMapping is returned for a field mapping that cannot be used.
	ErrInvalidMapping = mapping.ErrInvalidMapping

	// ErrHashUnavailable is returned when a requested hash scheme has no
	// usable table.
	ErrHashUnavailable = errors.New("hash table unavailable")
)

// Typed errors of the underlying packages, re-exported for errors.As.
type (
	// DecodeError reports image bytes that could not be decoded.
	DecodeError = imageio.DecodeError
	// ExtractionError reports a descriptor that could not be computed.
	ExtractionError = feature.ExtractionError
	// KindMismatchError reports a distance between different descriptor kinds.
	KindMismatchError = feature.KindMismatchError
	// MissingFeatureFieldError reports a candidate without its stored descriptor.
	MissingFeatureFieldError = query.MissingFeatureFieldError
	// HashTableLoadError reports a hash table that could not be loaded.
	HashTableLoadError = hashing.HashTableLoadError
)

func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, segment.ErrDocNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	if errors.Is(err, segment.ErrClosed) {
		return fmt.Errorf("%w: %w", ErrClosed, err)
	}
	if errors.Is(err, mapping.ErrNoFeatures) && !errors.Is(err, ErrInvalidMapping) {
		return fmt.Errorf("%w: %w", ErrInvalidMapping, err)
	}

	var tl *hashing.HashTableLoadError
	if errors.As(err, &tl) {
		return fmt.Errorf("%w: %w", ErrHashUnavailable, err)
	}

	return err
}
