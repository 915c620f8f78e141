package domtoml

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"
)

// FromStruct encodes v with go-toml's struct rules (`toml` tags, omitempty,
// embedded structs) and loads the result, so field order becomes key order.
func FromStruct(v any, opts ...Option) (*Document, error) {
	data, err := toml.Marshal(v)
	if err != nil {
		return nil, &UnsupportedTypeError{Type: typeName(v), Reason: err.Error()}
	}
	return LoadBytes(data, opts...)
}

// Decode stores the document into v, which must be a non-nil pointer, using
// go-toml's decoding rules.
func (d *Document) Decode(v any, opts ...Option) error {
	text, err := Dumps(d, opts...)
	if err != nil {
		return err
	}
	if err := toml.Unmarshal([]byte(text), v); err != nil {
		return fmt.Errorf("domtoml: decode into %T: %w", v, err)
	}
	return nil
}

// ToMap returns the document as nested Go maps. Tables become
// map[string]any and arrays []any; key order is lost.
func (d *Document) ToMap() map[string]any {
	out := make(map[string]any, d.Len())
	for k, v := range d.All() {
		out[k] = toPlain(v)
	}
	return out
}

func toPlain(v any) any {
	switch t := v.(type) {
	case *Document:
		return t.ToMap()
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = toPlain(e)
		}
		return out
	default:
		return v
	}
}

// Normalize returns a deep copy of doc in which every value has one of the
// document value types: Go integers become int64, Go maps become documents
// with sorted keys, and so on. It fails on the values Dump would reject.
func Normalize(doc *Document, opts ...Option) (*Document, error) {
	if doc == nil {
		return NewDocument(), nil
	}
	e := newEncoder(newOptions(opts))
	v, err := e.normalize(doc, "")
	if err != nil {
		return nil, err
	}
	return v.(*Document), nil
}

// FromMap builds a document from nested Go maps. Keys are sorted, since maps
// carry no order; values are converted as Dump would convert them.
func FromMap(m map[string]any, opts ...Option) (*Document, error) {
	e := newEncoder(newOptions(opts))
	v, err := e.normalize(m, "")
	if err != nil {
		return nil, err
	}
	return v.(*Document), nil
}
