package pipeline

import (
	"fmt"

	"github.com/hupe1980/imgsim/feature"
)

// FeatureError names the field and kind whose extraction or hashing failed.
//
// The original underlying error can be accessed via errors.Unwrap.
type FeatureError struct {
	Field string
	Kind  feature.Kind
	cause error
}

func (e *FeatureError) Error() string {
	return fmt.Sprintf("field %q: feature %s: %v", e.Field, e.Kind, e.cause)
}

func (e *FeatureError) Unwrap() error { return e.cause }
