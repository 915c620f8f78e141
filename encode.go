package domtoml

import (
	"bytes"
	"encoding"
	"fmt"
	"math"
	"reflect"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Azhovan/domtoml/internal/keypath"
)

// maxDepth bounds value nesting so that self-referencing slices fail instead
// of recursing forever.
const maxDepth = 512

// encoder renders documents as TOML text.
type encoder struct {
	opts   options
	buf    bytes.Buffer
	active map[*Document]bool
	depth  int
}

func newEncoder(cfg options) *encoder {
	return &encoder{opts: cfg, active: make(map[*Document]bool)}
}

// encode converts doc to its canonical form and writes it to e.buf.
func (e *encoder) encode(doc *Document) error {
	if doc == nil {
		return nil
	}
	v, err := e.normalize(doc, "")
	if err != nil {
		return err
	}
	e.writeTable(nil, v.(*Document), rootTable)
	return nil
}

// normalize converts v into one of the document value types, recursively.
// Go maps become documents with sorted keys; other Go numeric, slice and
// pointer types are flattened to their TOML equivalents.
func (e *encoder) normalize(v any, path string) (any, error) {
	e.depth++
	defer func() { e.depth-- }()
	if e.depth > maxDepth {
		return nil, &UnsupportedTypeError{Path: path, Type: typeName(v), Reason: "nesting too deep"}
	}

	switch t := v.(type) {
	case nil:
		return nil, &UnsupportedTypeError{Path: path, Reason: "nil value"}
	case string, int64, bool, float64, LocalDate, LocalTime, LocalDateTime:
		return t, nil
	case time.Time:
		if y := t.Year(); y < 0 || y > 9999 {
			return nil, &UnsupportedTypeError{Path: path, Type: "time.Time", Reason: "year outside 0000-9999"}
		}
		if _, offset := t.Zone(); offset%60 != 0 {
			return nil, &UnsupportedTypeError{Path: path, Type: "time.Time", Reason: "zone offset is not a whole number of minutes"}
		}
		return t, nil
	case *Document:
		return e.normalizeDocument(t, path)
	case []any:
		out := make([]any, len(t))
		for i, elem := range t {
			n, err := e.normalize(elem, keypath.Index(path, i))
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	}

	if m, ok := v.(encoding.TextMarshaler); ok && e.opts.textMarshalers {
		text, err := m.MarshalText()
		if err != nil {
			return nil, &UnsupportedTypeError{Path: path, Type: typeName(v), Reason: err.Error()}
		}
		return string(text), nil
	}

	return e.normalizeReflect(reflect.ValueOf(v), path)
}

func (e *encoder) normalizeDocument(d *Document, path string) (any, error) {
	if d == nil {
		return nil, &UnsupportedTypeError{Path: path, Type: "*domtoml.Document", Reason: "nil table"}
	}
	if e.active[d] {
		return nil, &UnsupportedTypeError{Path: path, Type: "*domtoml.Document", Reason: "cyclic reference"}
	}
	e.active[d] = true
	defer delete(e.active, d)

	out := &Document{values: make(map[string]any, len(d.keys)), style: d.style}
	for k, v := range d.All() {
		n, err := e.normalize(v, keypath.Child(path, k))
		if err != nil {
			return nil, err
		}
		out.Set(k, n)
	}
	return out, nil
}

func (e *encoder) normalizeReflect(rv reflect.Value, path string) (any, error) {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil, &UnsupportedTypeError{Path: path, Type: rv.Type().String(), Reason: "nil value"}
		}
		return e.normalize(rv.Elem().Interface(), path)
	case reflect.Bool:
		return rv.Bool(), nil
	case reflect.String:
		return rv.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return nil, &UnsupportedTypeError{Path: path, Type: rv.Type().String(), Reason: "value overflows a TOML integer"}
		}
		return int64(u), nil
	case reflect.Float32:
		// Re-parse the shortest float32 form so 0.1 stays 0.1.
		f, _ := strconv.ParseFloat(strconv.FormatFloat(rv.Float(), 'g', -1, 32), 64)
		return f, nil
	case reflect.Float64:
		return rv.Float(), nil
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			n, err := e.normalize(rv.Index(i).Interface(), keypath.Index(path, i))
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, &UnsupportedTypeError{Path: path, Type: rv.Type().String(), Reason: "map keys must be strings"}
		}
		keys := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)

		doc := &Document{values: make(map[string]any, len(keys))}
		for _, k := range keys {
			val := rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key()))
			n, err := e.normalize(val.Interface(), keypath.Child(path, k))
			if err != nil {
				return nil, err
			}
			doc.Set(k, n)
		}
		return doc, nil
	}

	var typ string
	if rv.IsValid() {
		typ = rv.Type().String()
	}
	return nil, &UnsupportedTypeError{Path: path, Type: typ}
}

func typeName(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%T", v)
}

type tableKind int

const (
	rootTable tableKind = iota
	sectionTable
	arrayElement
)

// tablePlan splits a table's keys by where they are written.
//
// Sub-tables and arrays of tables that come after the last plain value are
// written as trailing sections. In a [section] they may also come before the
// first plain value, in which case they are written ahead of the header.
// Any other sub-table is written as dotted keys or inline, so the key order
// of the table survives a reload.
type tablePlan struct {
	leading  []string
	body     []string
	trailing []string
}

func planTable(d *Document, allowLeading bool) tablePlan {
	first, last := -1, -1
	for i, k := range d.keys {
		if !isSection(d.values[k]) {
			if first < 0 {
				first = i
			}
			last = i
		}
	}

	var plan tablePlan
	for i, k := range d.keys {
		switch {
		case !isSection(d.values[k]):
			plan.body = append(plan.body, k)
		case i > last:
			plan.trailing = append(plan.trailing, k)
		case allowLeading && i < first:
			plan.leading = append(plan.leading, k)
		default:
			plan.body = append(plan.body, k)
		}
	}
	return plan
}

// isSection reports whether v is written under its own header when it
// appears outside an inline context.
func isSection(v any) bool {
	switch t := v.(type) {
	case *Document:
		return t.style == StyleSection
	case []any:
		return isArrayOfTables(t)
	}
	return false
}

// isArrayOfTables reports whether every element is a table and at least one
// of them is not inline.
func isArrayOfTables(arr []any) bool {
	if len(arr) == 0 {
		return false
	}
	inline := true
	for _, elem := range arr {
		d, ok := elem.(*Document)
		if !ok {
			return false
		}
		if d.style != StyleInline {
			inline = false
		}
	}
	return !inline
}

// hasPlainKeys reports whether d has at least one key that can be written as
// a dotted key/value line.
func hasPlainKeys(d *Document) bool {
	for _, v := range d.values {
		if !isSection(v) {
			return true
		}
	}
	return false
}

// section is a sub-table of a dotted table, written after the owning table.
type section struct {
	path  []string
	value any
}

func (e *encoder) writeTable(path []string, d *Document, kind tableKind) {
	plan := planTable(d, kind == sectionTable)

	for _, k := range plan.leading {
		e.writeSection(appendPath(path, k), d.values[k])
	}

	switch kind {
	case arrayElement:
		e.writeHeader("[[" + keypath.Join(path...) + "]]")
	case sectionTable:
		if len(plan.body) > 0 || len(plan.trailing) == 0 {
			e.writeHeader("[" + keypath.Join(path...) + "]")
		}
	}

	var deferred []section
	e.writeBody(path, nil, d, plan.body, &deferred)

	for _, s := range deferred {
		e.writeSection(s.path, s.value)
	}
	for _, k := range plan.trailing {
		e.writeSection(appendPath(path, k), d.values[k])
	}
}

func (e *encoder) writeSection(path []string, v any) {
	switch t := v.(type) {
	case *Document:
		e.writeTable(path, t, sectionTable)
	case []any:
		for _, elem := range t {
			e.writeTable(path, elem.(*Document), arrayElement)
		}
	}
}

func (e *encoder) writeHeader(h string) {
	if e.buf.Len() > 0 {
		e.buf.WriteByte('\n')
	}
	e.buf.WriteString(h)
	e.buf.WriteByte('\n')
}

// writeBody writes keys of d as key/value lines. rel is the dotted prefix of
// d relative to the table at path.
func (e *encoder) writeBody(path, rel []string, d *Document, keys []string, deferred *[]section) {
	for _, k := range keys {
		v := d.values[k]
		key := appendPath(rel, k)

		if sub, ok := v.(*Document); ok && sub.style != StyleInline && hasPlainKeys(sub) {
			plan := planTable(sub, false)
			e.writeBody(path, key, sub, plan.body, deferred)
			for _, t := range plan.trailing {
				*deferred = append(*deferred, section{
					path:  appendPath(slices.Concat(path, key), t),
					value: sub.values[t],
				})
			}
			continue
		}

		e.writeKeyValue(keypath.Join(key...), v)
	}
}

func (e *encoder) writeKeyValue(key string, v any) {
	prefix := key + " = "
	arr, ok := v.([]any)
	if !ok {
		e.buf.WriteString(prefix)
		e.buf.WriteString(formatInline(v))
		e.buf.WriteByte('\n')
		return
	}

	single := formatInline(arr)
	if !e.multiline(prefix+single, len(arr)) {
		e.buf.WriteString(prefix)
		e.buf.WriteString(single)
		e.buf.WriteByte('\n')
		return
	}

	e.buf.WriteString(prefix)
	e.buf.WriteString("[\n")
	for _, elem := range arr {
		e.buf.WriteString(e.opts.arrayIndent)
		e.buf.WriteString(formatInline(elem))
		e.buf.WriteString(",\n")
	}
	e.buf.WriteString("]\n")
}

func (e *encoder) multiline(line string, n int) bool {
	if n == 0 {
		return false
	}
	if e.opts.maxWidth <= 0 {
		return n > 1
	}
	return utf8.RuneCountInString(line) > e.opts.maxWidth
}

// formatInline renders a canonical value as a single-line TOML value.
func formatInline(v any) string {
	switch t := v.(type) {
	case *Document:
		if t.Len() == 0 {
			return "{}"
		}
		parts := make([]string, 0, t.Len())
		for k, val := range t.All() {
			parts = append(parts, keypath.Quote(k)+" = "+formatInline(val))
		}
		return "{ " + strings.Join(parts, ", ") + " }"
	case []any:
		parts := make([]string, len(t))
		for i, elem := range t {
			parts[i] = formatInline(elem)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return formatScalar(v)
	}
}

func formatScalar(v any) string {
	switch t := v.(type) {
	case string:
		return keypath.QuoteBasic(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return formatFloat(t)
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		return t.Format(time.RFC3339Nano)
	case LocalDate:
		return t.String()
	case LocalTime:
		return t.String()
	case LocalDateTime:
		return t.String()
	default:
		panic(fmt.Sprintf("domtoml: unexpected value of type %T", v))
	}
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}

	var s string
	if abs := math.Abs(f); abs != 0 && (abs < 1e-5 || abs >= 1e16) {
		s = strconv.FormatFloat(f, 'e', -1, 64)
	} else {
		s = strconv.FormatFloat(f, 'f', -1, 64)
	}
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

func appendPath(path []string, key string) []string {
	out := make([]string, len(path), len(path)+1)
	copy(out, path)
	return append(out, key)
}
