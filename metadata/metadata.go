package metadata

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Tag is one metadata entry read from an image.
type Tag struct {
	Directory string
	Name      string
	Value     string
}

// Key returns the normalized "<directory>.<name>" key.
func (t Tag) Key() string {
	return NormalizeKey(t.Directory) + "." + snake(t.Name)
}

// Reader extracts tags from raw image bytes.
type Reader interface {
	Read(data []byte) ([]Tag, error)
}

// ReaderFunc adapts a function to Reader.
type ReaderFunc func(data []byte) ([]Tag, error)

// Read calls f(data).
func (f ReaderFunc) Read(data []byte) ([]Tag, error) { return f(data) }

// Value is a converted metadata sub-field.
type Value struct {
	Field Field
	// Text is the canonical textual form (decimal for numbers, "true"/"false" for bools).
	Text string
}

// MetadataError reports a metadata read or conversion failure.
//
// The original underlying error can be accessed via errors.Unwrap.
type MetadataError struct {
	// Field is the sub-field being converted; empty for read failures.
	Field string
	cause error
}

func (e *MetadataError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("read metadata: %v", e.cause)
	}
	return fmt.Sprintf("metadata field %q: %v", e.Field, e.cause)
}

func (e *MetadataError) Unwrap() error { return e.cause }

// NewReadError wraps a reader failure.
func NewReadError(cause error) *MetadataError {
	return &MetadataError{cause: cause}
}

// Extract converts tags into values for the declared fields, in declaration order.
// Declared fields without a matching tag are skipped.
func Extract(tags []Tag, fields []Field) ([]Value, error) {
	byKey := make(map[string]string, len(tags))
	for _, t := range tags {
		k := t.Key()
		if _, dup := byKey[k]; !dup {
			byKey[k] = t.Value
		}
	}

	values := make([]Value, 0, len(fields))
	for _, f := range fields {
		raw, ok := byKey[NormalizeKey(f.Name)]
		if !ok {
			continue
		}
		text, err := Convert(raw, f.Type)
		if err != nil {
			return nil, &MetadataError{Field: f.Name, cause: err}
		}
		values = append(values, Value{Field: f, Text: text})
	}
	return values, nil
}

// Convert parses raw as t and returns its canonical text.
func Convert(raw string, t FieldType) (string, error) {
	raw = strings.TrimSpace(strings.TrimRight(raw, "\x00"))
	switch t {
	case FieldTypeString:
		return raw, nil
	case FieldTypeInt:
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return "", err
		}
		return strconv.FormatInt(v, 10), nil
	case FieldTypeFloat:
		v, err := parseFloat(raw)
		if err != nil {
			return "", err
		}
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	case FieldTypeBool:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return "", err
		}
		return strconv.FormatBool(v), nil
	default:
		return "", fmt.Errorf("unsupported field type %d", t)
	}
}

// parseFloat accepts decimals and EXIF rationals such as "72/1".
func parseFloat(raw string) (float64, error) {
	num, den, ok := strings.Cut(raw, "/")
	if !ok {
		return strconv.ParseFloat(raw, 64)
	}
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, err
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil {
		return 0, err
	}
	if d == 0 {
		return 0, errors.New("zero denominator")
	}
	return n / d, nil
}

// snake converts "DateTimeOriginal" to "date_time_original" and "GPSLatitude" to "gps_latitude".
func snake(name string) string {
	runes := []rune(strings.TrimSpace(name))
	var b strings.Builder
	for i, r := range runes {
		if r == ' ' || r == '-' || r == '_' {
			if b.Len() > 0 && !strings.HasSuffix(b.String(), "_") {
				b.WriteByte('_')
			}
			continue
		}
		if unicode.IsUpper(r) && i > 0 && !strings.HasSuffix(b.String(), "_") {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
