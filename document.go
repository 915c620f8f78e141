package domtoml

import (
	"iter"
	"math"
	"reflect"
	"slices"
	"time"
)

// Document is an ordered TOML table. Keys keep their insertion order, which
// for loaded documents is the order in which they appear in the source.
//
// Values are string, int64, float64, bool, time.Time, LocalDateTime,
// LocalDate, LocalTime, []any or *Document. Other Go values may be stored
// and are converted (or rejected) when the document is dumped.
//
// A Document is not safe for concurrent mutation.
type Document struct {
	keys   []string
	values map[string]any
	style  TableStyle
}

// NewDocument returns an empty document with StyleSection.
func NewDocument() *Document {
	return &Document{values: make(map[string]any)}
}

// Len returns the number of keys.
func (d *Document) Len() int {
	if d == nil {
		return 0
	}
	return len(d.keys)
}

// Keys returns a copy of the keys in order.
func (d *Document) Keys() []string {
	if d == nil {
		return nil
	}
	return slices.Clone(d.keys)
}

// Has reports whether key is present.
func (d *Document) Has(key string) bool {
	if d == nil {
		return false
	}
	_, ok := d.values[key]
	return ok
}

// Get returns the value stored under key.
func (d *Document) Get(key string) (any, bool) {
	if d == nil {
		return nil, false
	}
	v, ok := d.values[key]
	return v, ok
}

// Set stores value under key. New keys are appended; existing keys keep
// their position.
func (d *Document) Set(key string, value any) {
	if d.values == nil {
		d.values = make(map[string]any)
	}
	if _, ok := d.values[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.values[key] = value
}

// Delete removes key and reports whether it was present.
func (d *Document) Delete(key string) bool {
	if d == nil {
		return false
	}
	if _, ok := d.values[key]; !ok {
		return false
	}
	delete(d.values, key)
	d.keys = slices.DeleteFunc(d.keys, func(k string) bool { return k == key })
	return true
}

// All iterates over key/value pairs in order.
func (d *Document) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		if d == nil {
			return
		}
		for _, k := range d.keys {
			if !yield(k, d.values[k]) {
				return
			}
		}
	}
}

// Style returns the table's formatting hint.
func (d *Document) Style() TableStyle {
	if d == nil {
		return StyleSection
	}
	return d.style
}

// SetStyle sets the table's formatting hint.
func (d *Document) SetStyle(s TableStyle) {
	d.style = s
}

// Clone returns a deep copy. Nested documents and arrays are copied; other
// values are shared.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := &Document{
		keys:   slices.Clone(d.keys),
		values: make(map[string]any, len(d.values)),
		style:  d.style,
	}
	for k, v := range d.values {
		out.values[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case *Document:
		return t.Clone()
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

// Equal reports whether d and other hold the same keys in the same order
// with equal values. Table styles are ignored, NaN equals NaN, and
// date-times must match in both instant and offset.
func (d *Document) Equal(other *Document) bool {
	if d.Len() != other.Len() {
		return false
	}
	if d == nil || other == nil {
		return true
	}
	for i, k := range d.keys {
		if other.keys[i] != k {
			return false
		}
		if !valuesEqual(d.values[k], other.values[k]) {
			return false
		}
	}
	return true
}

func valuesEqual(a, b any) bool {
	switch x := a.(type) {
	case *Document:
		y, ok := b.(*Document)
		return ok && x.Equal(y)
	case []any:
		y, ok := b.([]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !valuesEqual(x[i], y[i]) {
				return false
			}
		}
		return true
	case float64:
		y, ok := b.(float64)
		if !ok {
			return false
		}
		if math.IsNaN(x) && math.IsNaN(y) {
			return true
		}
		return x == y && math.Signbit(x) == math.Signbit(y)
	case time.Time:
		y, ok := b.(time.Time)
		return ok && x.Equal(y) && x.Format(time.RFC3339Nano) == y.Format(time.RFC3339Nano)
	case string, int64, bool, LocalDate, LocalTime, LocalDateTime:
		return a == b
	default:
		return reflect.DeepEqual(a, b)
	}
}
