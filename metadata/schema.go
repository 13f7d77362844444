package metadata

import (
	"fmt"
	"strings"
)

// FieldType defines the data type of a metadata sub-field.
type FieldType uint8

const (
	FieldTypeString FieldType = iota
	FieldTypeInt
	FieldTypeFloat
	FieldTypeBool
)

// String returns the string representation of the FieldType.
func (t FieldType) String() string {
	switch t {
	case FieldTypeString:
		return "string"
	case FieldTypeInt:
		return "int"
	case FieldTypeFloat:
		return "float"
	case FieldTypeBool:
		return "bool"
	default:
		return "unknown"
	}
}

// ParseFieldType resolves a type name. Empty and "keyword"/"text" map to string;
// "long"/"integer" map to int and "double" maps to float.
func ParseFieldType(name string) (FieldType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "string", "keyword", "text":
		return FieldTypeString, nil
	case "int", "integer", "long":
		return FieldTypeInt, nil
	case "float", "double":
		return FieldTypeFloat, nil
	case "bool", "boolean":
		return FieldTypeBool, nil
	default:
		return 0, fmt.Errorf("unknown metadata field type %q", name)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t FieldType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *FieldType) UnmarshalText(text []byte) error {
	v, err := ParseFieldType(string(text))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Field declares one metadata sub-field.
type Field struct {
	// Name is the tag key, e.g. "exif.make".
	Name string
	Type FieldType
}

// Schema maps tag keys to their declared types.
type Schema map[string]FieldType

// Validate checks that every key is a normalized tag key.
func (s Schema) Validate() error {
	for k := range s {
		if k == "" || NormalizeKey(k) != k {
			return fmt.Errorf("metadata field %q is not a normalized key (want %q)", k, NormalizeKey(k))
		}
	}
	return nil
}

// NormalizeKey lowercases key and replaces spaces and dashes with underscores.
func NormalizeKey(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(key)
}
