package domtoml

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pelletier/go-toml/v2"
	"github.com/pelletier/go-toml/v2/unstable"
	"go.uber.org/zap"
)

var utf8BOM = []byte("\xef\xbb\xbf")

// LoadFile reads and parses the TOML file at path.
// Returns NotFoundError if the file does not exist.
func LoadFile(path string, opts ...Option) (*Document, error) {
	cfg := newOptions(opts)
	start := time.Now()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &NotFoundError{Path: path, Err: err}
		}
		return nil, fmt.Errorf("domtoml: read %s: %w", path, err)
	}

	if cfg.sourceName == "" {
		cfg.sourceName = path
	}
	doc, err := decode(data, cfg)
	if err != nil {
		return nil, err
	}

	cfg.logger.Debug("loaded document",
		zap.String("path", path),
		zap.Int("bytes", len(data)),
		zap.Int("keys", doc.Len()),
		zap.Duration("elapsed", time.Since(start)))
	return doc, nil
}

// Load reads r to the end and parses it. r may carry a UTF-8 byte order mark.
func Load(r io.Reader, opts ...Option) (*Document, error) {
	cfg := newOptions(opts)
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("domtoml: read %s: %w", sourceName(cfg.sourceName), err)
	}
	return decode(data, cfg)
}

// Loads parses a TOML document held in a string.
func Loads(s string, opts ...Option) (*Document, error) {
	return decode([]byte(s), newOptions(opts))
}

// LoadBytes parses a TOML document held in b. b is not retained.
func LoadBytes(b []byte, opts ...Option) (*Document, error) {
	return decode(b, newOptions(opts))
}

func decode(data []byte, cfg options) (*Document, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	if off, ok := invalidUTF8(data); ok {
		line, col := position(data, off)
		return nil, &EncodingError{Source: cfg.sourceName, Offset: off, Line: line, Column: col}
	}

	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, newParseError(cfg.sourceName, err)
	}

	layout, err := scanOrder(data)
	if err != nil {
		// Unmarshal accepted the document, so the parser should too.
		return nil, newParseError(cfg.sourceName, err)
	}

	return build(raw, layout).(*Document), nil
}

func newParseError(source string, err error) *ParseError {
	pe := &ParseError{
		Source:  source,
		Message: strings.TrimPrefix(err.Error(), "toml: "),
		Err:     err,
	}

	var de *toml.DecodeError
	if errors.As(err, &de) {
		pe.Line, pe.Column = de.Position()
		pe.Context = de.String()
		return pe
	}

	var pErr *unstable.ParserError
	if errors.As(err, &pErr) {
		pe.Message = pErr.Message
	}
	return pe
}

// invalidUTF8 returns the offset of the first byte that does not start a
// valid UTF-8 sequence.
func invalidUTF8(b []byte) (int, bool) {
	if utf8.Valid(b) {
		return 0, false
	}
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size == 1 {
			return i, true
		}
		i += size
	}
	return 0, false
}

// position converts a byte offset into a 1-based line and rune column.
func position(b []byte, off int) (line, col int) {
	head := b[:off]
	line = bytes.Count(head, []byte{'\n'}) + 1
	if i := bytes.LastIndexByte(head, '\n'); i >= 0 {
		head = head[i+1:]
	}
	return line, utf8.RuneCount(head) + 1
}

// shape records the key order and table style of one table, or the
// element shapes of one array, as they appear in the source.
type shape struct {
	style  TableStyle
	order  []string
	fields map[string]*shape
	elems  []*shape
	array  bool
}

func newTableShape(style TableStyle) *shape {
	return &shape{style: style, fields: make(map[string]*shape)}
}

func (s *shape) set(key string, child *shape) {
	if _, ok := s.fields[key]; !ok {
		s.order = append(s.order, key)
	}
	s.fields[key] = child
}

// table returns the sub-table stored under key, creating it with style if
// absent. For arrays of tables it returns the last element. Returns nil if
// key holds a plain value.
func (s *shape) table(key string, style TableStyle) *shape {
	child, ok := s.fields[key]
	if !ok {
		child = newTableShape(style)
		s.set(key, child)
		return child
	}
	if child == nil {
		return nil
	}
	if child.array {
		if len(child.elems) == 0 {
			return nil
		}
		return child.elems[len(child.elems)-1]
	}
	return child
}

// scanOrder walks the document's expressions and returns the shape of the
// root table.
func scanOrder(data []byte) (*shape, error) {
	root := newTableShape(StyleSection)
	current := root

	var p unstable.Parser
	p.Reset(data)
	for p.NextExpression() {
		expr := p.Expression()
		switch expr.Kind {
		case unstable.Table:
			current = descend(root, keyParts(expr), StyleSection)
		case unstable.ArrayTable:
			current = appendArrayTable(root, keyParts(expr))
		case unstable.KeyValue:
			if current != nil {
				keyValue(current, expr)
			}
		}
	}
	if err := p.Error(); err != nil {
		return nil, err
	}
	return root, nil
}

func keyParts(n *unstable.Node) []string {
	var parts []string
	it := n.Key()
	for it.Next() {
		parts = append(parts, string(it.Node().Data))
	}
	return parts
}

func descend(t *shape, parts []string, style TableStyle) *shape {
	for _, part := range parts {
		if t == nil {
			return nil
		}
		t = t.table(part, style)
	}
	return t
}

func appendArrayTable(root *shape, parts []string) *shape {
	if len(parts) == 0 {
		return nil
	}
	parent := descend(root, parts[:len(parts)-1], StyleSection)
	if parent == nil {
		return nil
	}

	last := parts[len(parts)-1]
	arr, ok := parent.fields[last]
	if !ok || arr == nil || !arr.array {
		arr = &shape{array: true}
		parent.set(last, arr)
	}
	elem := newTableShape(StyleSection)
	arr.elems = append(arr.elems, elem)
	return elem
}

// keyValue records a (possibly dotted) key/value expression in t.
func keyValue(t *shape, kv *unstable.Node) {
	parts := keyParts(kv)
	if len(parts) == 0 {
		return
	}
	t = descend(t, parts[:len(parts)-1], StyleDotted)
	if t == nil {
		return
	}
	t.set(parts[len(parts)-1], valueShape(kv.Value()))
}

func valueShape(v *unstable.Node) *shape {
	switch v.Kind {
	case unstable.InlineTable:
		t := newTableShape(StyleInline)
		it := v.Children()
		for it.Next() {
			if it.Node().Kind == unstable.KeyValue {
				keyValue(t, it.Node())
			}
		}
		return t
	case unstable.Array:
		a := &shape{array: true}
		it := v.Children()
		for it.Next() {
			if it.Node().Kind == unstable.Comment {
				continue
			}
			a.elems = append(a.elems, valueShape(it.Node()))
		}
		return a
	default:
		return nil
	}
}

// build converts the decoder's output into documents, ordering keys by s.
// Keys the shape does not know about are appended in sorted order.
func build(v any, s *shape) any {
	switch t := v.(type) {
	case map[string]any:
		doc := &Document{values: make(map[string]any, len(t))}
		if s != nil && !s.array {
			doc.style = s.style
			for _, k := range s.order {
				if val, ok := t[k]; ok {
					doc.Set(k, build(val, s.fields[k]))
				}
			}
		}
		if len(doc.keys) < len(t) {
			rest := make([]string, 0, len(t)-len(doc.keys))
			for k := range t {
				if !doc.Has(k) {
					rest = append(rest, k)
				}
			}
			sort.Strings(rest)
			for _, k := range rest {
				doc.Set(k, build(t[k], nil))
			}
		}
		return doc
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			var es *shape
			if s != nil && s.array && i < len(s.elems) {
				es = s.elems[i]
			}
			out[i] = build(e, es)
		}
		return out
	default:
		return v
	}
}
