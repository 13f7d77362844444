package pipeline

import "fmt"

// Field is one emitted document field.
type Field struct {
	Name  string
	Value []byte
	// Stored fields are retrievable per document.
	Stored bool
	// Indexed fields are searchable as exact terms.
	Indexed bool
}

// String returns a short description for logs and debugging.
func (f Field) String() string {
	flags := ""
	if f.Stored {
		flags += "S"
	}
	if f.Indexed {
		flags += "I"
	}
	if f.Indexed {
		return fmt.Sprintf("%s[%s]=%s", f.Name, flags, f.Value)
	}
	return fmt.Sprintf("%s[%s]=<%d bytes>", f.Name, flags, len(f.Value))
}
