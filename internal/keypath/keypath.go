// Package keypath parses and renders TOML key paths such as
// `project.authors[0]."first name"`.
package keypath

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Step is one element of a parsed path: either a table key or an array index.
type Step struct {
	Key     string
	Index   int
	IsIndex bool
}

func (s Step) String() string {
	if s.IsIndex {
		return "[" + strconv.Itoa(s.Index) + "]"
	}
	return Quote(s.Key)
}

// ErrEmpty is returned when parsing an empty path.
var ErrEmpty = errors.New("empty path")

// Parse splits a path into steps.
// Examples:
//   - "a.b" → [a b]
//   - `a."b.c"` → [a b.c]
//   - "authors[0].name" → [authors [0] name]
func Parse(path string) ([]Step, error) {
	var steps []Step
	expectKey := true
	i := 0

	for i < len(path) {
		c := path[i]
		if c == ' ' || c == '\t' {
			i++
			continue
		}

		if expectKey {
			key, n, err := scanKey(path[i:])
			if err != nil {
				return nil, fmt.Errorf("at offset %d: %w", i, err)
			}
			steps = append(steps, Step{Key: key})
			i += n
			expectKey = false
			continue
		}

		switch c {
		case '.':
			expectKey = true
			i++
		case '[':
			end := strings.IndexByte(path[i:], ']')
			if end < 0 {
				return nil, fmt.Errorf("at offset %d: unterminated index", i)
			}
			idx, err := strconv.Atoi(strings.TrimSpace(path[i+1 : i+end]))
			if err != nil || idx < 0 {
				return nil, fmt.Errorf("at offset %d: invalid index %q", i, path[i+1:i+end])
			}
			steps = append(steps, Step{Index: idx, IsIndex: true})
			i += end + 1
		default:
			return nil, fmt.Errorf("at offset %d: unexpected character %q", i, c)
		}
	}

	if len(steps) == 0 {
		return nil, ErrEmpty
	}
	if expectKey {
		return nil, errors.New("path ends with '.'")
	}
	return steps, nil
}

// scanKey reads one simple key and returns it with the number of bytes consumed.
func scanKey(s string) (string, int, error) {
	switch s[0] {
	case '"':
		for i := 1; i < len(s); i++ {
			switch s[i] {
			case '\\':
				i++
			case '"':
				key, err := strconv.Unquote(s[:i+1])
				if err != nil {
					return "", 0, fmt.Errorf("invalid quoted key %s: %w", s[:i+1], err)
				}
				return key, i + 1, nil
			}
		}
		return "", 0, errors.New("unterminated quoted key")
	case '\'':
		end := strings.IndexByte(s[1:], '\'')
		if end < 0 {
			return "", 0, errors.New("unterminated literal key")
		}
		return s[1 : end+1], end + 2, nil
	}

	n := 0
	for n < len(s) && isBareChar(s[n]) {
		n++
	}
	if n == 0 {
		return "", 0, fmt.Errorf("unexpected character %q", s[0])
	}
	return s[:n], n, nil
}

// Join renders keys as a dotted path, quoting keys that are not bare.
// Examples:
//   - Join("foo", "bar") → "foo.bar"
//   - Join("foo", "hello world") → `foo."hello world"`
func Join(keys ...string) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = Quote(k)
	}
	return strings.Join(parts, ".")
}

// Child appends key to prefix. If prefix is empty, returns the quoted key.
func Child(prefix, key string) string {
	if prefix == "" {
		return Quote(key)
	}
	return prefix + "." + Quote(key)
}

// Index appends an array index to prefix.
func Index(prefix string, i int) string {
	return prefix + "[" + strconv.Itoa(i) + "]"
}

// Render turns steps back into a path string.
func Render(steps []Step) string {
	var b strings.Builder
	for i, s := range steps {
		if !s.IsIndex && i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(s.String())
	}
	return b.String()
}

// IsBare reports whether key can be written without quotes.
func IsBare(key string) bool {
	if key == "" {
		return false
	}
	for i := 0; i < len(key); i++ {
		if !isBareChar(key[i]) {
			return false
		}
	}
	return true
}

// Quote returns key unchanged if it is bare, otherwise as a basic string.
func Quote(key string) string {
	if IsBare(key) {
		return key
	}
	return QuoteBasic(key)
}

// QuoteBasic renders s as a TOML basic string.
func QuoteBasic(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\b':
			b.WriteString(`\b`)
		case '\t':
			b.WriteString(`\t`)
		case '\n':
			b.WriteString(`\n`)
		case '\f':
			b.WriteString(`\f`)
		case '\r':
			b.WriteString(`\r`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&b, `\u%04X`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}

func isBareChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '-' || c == '_'
}
