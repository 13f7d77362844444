package feature

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownKind is returned when a kind name or value is not registered.
	ErrUnknownKind = errors.New("unknown feature kind")

	// ErrCorruptRecord is returned when a stored record does not match the kind's byte layout.
	ErrCorruptRecord = errors.New("corrupt feature record")
)

// ExtractionError indicates that a kind's algorithm rejected the image.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ExtractionError struct {
	Kind   Kind
	Reason string
	cause  error
}

func (e *ExtractionError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("extract %s: %s: %v", e.Kind, e.Reason, e.cause)
	}
	return fmt.Sprintf("extract %s: %s", e.Kind, e.Reason)
}

func (e *ExtractionError) Unwrap() error { return e.cause }

// KindMismatchError indicates an attempt to compare descriptors of different kinds.
type KindMismatchError struct {
	Left  Kind
	Right Kind
}

func (e *KindMismatchError) Error() string {
	return fmt.Sprintf("feature kind mismatch: %s vs %s", e.Left, e.Right)
}
