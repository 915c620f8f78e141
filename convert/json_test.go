package convert

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Azhovan/domtoml"
)

func TestFromJSON(t *testing.T) {
	doc, err := FromJSON(strings.NewReader(`{
  "name": "spam",
  "count": 3,
  "ratio": 1.5,
  "exp": 1e3,
  "huge": 100000000000000000000,
  "ok": true,
  "tags": ["a", 2],
  "nested": {"z": 1, "a": {}}
}`))
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "count", "ratio", "exp", "huge", "ok", "tags", "nested"}, doc.Keys())

	get := func(key string) any {
		v, ok := doc.Get(key)
		require.True(t, ok, "missing key %s", key)
		return v
	}
	assert.Equal(t, "spam", get("name"))
	assert.Equal(t, int64(3), get("count"))
	assert.Equal(t, 1.5, get("ratio"))
	assert.Equal(t, 1000.0, get("exp"))
	assert.Equal(t, 1e20, get("huge"))
	assert.Equal(t, true, get("ok"))
	assert.Equal(t, []any{"a", int64(2)}, get("tags"))

	nested, ok := get("nested").(*domtoml.Document)
	require.True(t, ok)
	assert.Equal(t, []string{"z", "a"}, nested.Keys())
}

func TestFromJSON_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		sentinel error
	}{
		{"top-level array", `[1, 2]`, domtoml.ErrParse},
		{"top-level string", `"x"`, domtoml.ErrParse},
		{"empty input", ``, domtoml.ErrParse},
		{"syntax error", "{\n  \"a\": }", domtoml.ErrParse},
		{"trailing data", `{} {}`, domtoml.ErrParse},
		{"duplicate member", `{"a": 1, "a": 2}`, domtoml.ErrParse},
		{"null", `{"a": {"b c": null}}`, domtoml.ErrUnsupportedType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromJSON(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.sentinel), "got %v", err)
		})
	}
}

func TestFromJSON_NullPath(t *testing.T) {
	_, err := FromJSON(strings.NewReader(`{"a": {"b c": [1, null]}}`))

	var ute *domtoml.UnsupportedTypeError
	require.True(t, errors.As(err, &ute))
	assert.Equal(t, `a."b c"[1]`, ute.Path)
}

func TestFromJSON_SyntaxErrorPosition(t *testing.T) {
	_, err := FromJSON(strings.NewReader("{\n  \"a\": 1,\n  \"b\": ]\n}"))

	var pe *domtoml.ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 3, pe.Line)
}

func TestToJSON(t *testing.T) {
	doc, err := domtoml.Loads(`
title = "x"
n = 1
f = 2.5
when = 1979-05-27T07:32:00Z
day = 1979-05-27
list = [1, 2]
empty = {}

[t]
k = true
`)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, ToJSON(&buf, doc, "  "))
	assert.Equal(t, `{
  "title": "x",
  "n": 1,
  "f": 2.5,
  "when": "1979-05-27T07:32:00Z",
  "day": "1979-05-27",
  "list": [
    1,
    2
  ],
  "empty": {},
  "t": {
    "k": true
  }
}
`, buf.String())
}

func TestToJSON_Compact(t *testing.T) {
	doc := domtoml.NewDocument()
	doc.Set("a", 1)
	doc.Set("b", []string{"x"})

	var buf bytes.Buffer
	require.NoError(t, ToJSON(&buf, doc, ""))
	assert.Equal(t, "{\"a\":1,\"b\":[\"x\"]}\n", buf.String())
}

func TestToJSON_Unsupported(t *testing.T) {
	doc := domtoml.NewDocument()
	doc.Set("fn", func() {})

	var buf bytes.Buffer
	err := ToJSON(&buf, doc, "")
	assert.True(t, errors.Is(err, domtoml.ErrUnsupportedType))
}

func TestToJSON_NonFiniteFloats(t *testing.T) {
	tests := []struct {
		name  string
		value any
		path  string
	}{
		{"nan", math.NaN(), "x"},
		{"inf", math.Inf(1), "x"},
		{"negative inf", math.Inf(-1), "x"},
		{"nested", []any{1.5, math.NaN()}, "x[1]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := domtoml.NewDocument()
			doc.Set("x", tt.value)

			var buf bytes.Buffer
			err := ToJSON(&buf, doc, "")
			require.Error(t, err)

			var ute *domtoml.UnsupportedTypeError
			require.True(t, errors.As(err, &ute))
			assert.Equal(t, tt.path, ute.Path)
			assert.Equal(t, "float", ute.Type)
			assert.NotContains(t, buf.String(), "NaN")
		})
	}
}

func TestJSON_RoundTrip(t *testing.T) {
	src := `{"b":1,"a":{"y":[true,"s",2.5],"x":{}}}` + "\n"

	doc, err := FromJSON(strings.NewReader(src))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, ToJSON(&buf, doc, ""))
	assert.Equal(t, src, buf.String())
}
