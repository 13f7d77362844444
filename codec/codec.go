// Package codec encodes mapping documents and query clauses.
//
// The sqlite segment stores the name of the codec that wrote its mappings,
// so a segment written with one codec is read back with the same one.
package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"

	gojson "github.com/goccy/go-json"
)

// ErrUnknownCodec is returned by ByName for an unregistered name.
var ErrUnknownCodec = errors.New("unknown codec")

// Codec encodes and decodes values. Implementations are safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

type funcCodec struct {
	name      string
	marshal   func(any) ([]byte, error)
	unmarshal func([]byte, any) error
}

func (c funcCodec) Name() string { return c.name }

func (c funcCodec) Marshal(v any) ([]byte, error) {
	b, err := c.marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%s: marshal %T: %w", c.name, v, err)
	}
	return b, nil
}

func (c funcCodec) Unmarshal(data []byte, v any) error {
	if err := c.unmarshal(data, v); err != nil {
		return fmt.Errorf("%s: %w", c.name, err)
	}
	return nil
}

var (
	// JSON is backed by encoding/json.
	JSON Codec = funcCodec{name: "json", marshal: json.Marshal, unmarshal: json.Unmarshal}

	// GoJSON is backed by github.com/goccy/go-json and produces the same bytes
	// as JSON.
	GoJSON Codec = funcCodec{name: "go-json", marshal: gojson.Marshal, unmarshal: gojson.Unmarshal}

	// Default writes new payloads.
	Default = GoJSON
)

var registry = map[string]Codec{
	JSON.Name():   JSON,
	GoJSON.Name(): GoJSON,
}

// Names returns the registered codec names, sorted.
func Names() []string {
	return slices.Sorted(maps.Keys(registry))
}

// ByName returns a registered codec.
func ByName(name string) (Codec, error) {
	c, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w %q (have %v)", ErrUnknownCodec, name, Names())
	}
	return c, nil
}

// MustMarshal encodes v with c, or Default when c is nil, and panics on
// failure. It is meant for tests and literals.
func MustMarshal(c Codec, v any) []byte {
	if c == nil {
		c = Default
	}
	b, err := c.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
