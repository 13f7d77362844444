package hashing

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownScheme is returned for unregistered scheme names or values.
	ErrUnknownScheme = errors.New("unknown hash scheme")

	// ErrCorruptTable is returned when a table blob cannot be parsed.
	ErrCorruptTable = errors.New("corrupt hash table")

	// ErrNoTable is the cause reported for schemes that were never configured.
	ErrNoTable = errors.New("no hash table configured")

	// ErrInvalidParams is returned by Generate for unusable parameters.
	ErrInvalidParams = errors.New("invalid hash parameters")
)

// ShapeMismatchError indicates a vector whose length has no projection family in the table.
type ShapeMismatchError struct {
	Scheme Scheme
	Dim    int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("%s table has no family for %d-dimensional vectors", e.Scheme, e.Dim)
}

// HashTableLoadError reports that a scheme's table could not be loaded.
// It is returned for every use of that scheme; other schemes are unaffected.
//
// The original underlying error can be accessed via errors.Unwrap.
type HashTableLoadError struct {
	Scheme Scheme
	Name   string
	cause  error
}

func (e *HashTableLoadError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("load %s hash table: %v", e.Scheme, e.cause)
	}
	return fmt.Sprintf("load %s hash table %q: %v", e.Scheme, e.Name, e.cause)
}

func (e *HashTableLoadError) Unwrap() error { return e.cause }
