package convert

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-json-experiment/json/jsontext"

	"github.com/Azhovan/domtoml"
)

// FromJSON reads a JSON object, keeping member order. Numbers without a
// fraction or exponent become integers; all other numbers become floats.
func FromJSON(r io.Reader) (*domtoml.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read JSON: %w", err)
	}

	dec := jsontext.NewDecoder(bytes.NewReader(data))
	parseErr := func(err error) error {
		line, col := position(data, int(dec.InputOffset()))
		return &domtoml.ParseError{Line: line, Column: col, Message: err.Error(), Err: err}
	}

	if dec.PeekKind() != '{' {
		if _, err := dec.ReadToken(); err != nil {
			return nil, parseErr(err)
		}
		return nil, parseErr(errors.New("top-level JSON value must be an object"))
	}

	v, err := decodeJSON(dec, "")
	if err != nil {
		var ute *domtoml.UnsupportedTypeError
		if errors.As(err, &ute) {
			return nil, err
		}
		return nil, parseErr(err)
	}
	if _, err := dec.ReadToken(); err != io.EOF {
		if err == nil {
			err = errors.New("unexpected data after top-level object")
		}
		return nil, parseErr(err)
	}
	return v.(*domtoml.Document), nil
}

func decodeJSON(dec *jsontext.Decoder, path string) (any, error) {
	switch dec.PeekKind() {
	case '{':
		if _, err := dec.ReadToken(); err != nil { // '{'
			return nil, err
		}
		doc := domtoml.NewDocument()
		for dec.PeekKind() != '}' {
			tok, err := dec.ReadToken()
			if err != nil {
				return nil, err
			}
			key := tok.String()
			v, err := decodeJSON(dec, childPath(path, key))
			if err != nil {
				return nil, err
			}
			doc.Set(key, v)
		}
		if _, err := dec.ReadToken(); err != nil { // '}'
			return nil, err
		}
		return doc, nil
	case '[':
		if _, err := dec.ReadToken(); err != nil { // '['
			return nil, err
		}
		arr := make([]any, 0)
		for dec.PeekKind() != ']' {
			v, err := decodeJSON(dec, indexPath(path, len(arr)))
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		if _, err := dec.ReadToken(); err != nil { // ']'
			return nil, err
		}
		return arr, nil
	}

	tok, err := dec.ReadToken()
	if err != nil {
		return nil, err
	}
	switch tok.Kind() {
	case '"':
		return tok.String(), nil
	case 't', 'f':
		return tok.Bool(), nil
	case 'n':
		return nil, &domtoml.UnsupportedTypeError{Path: path, Type: "null", Reason: "JSON null has no TOML equivalent"}
	case '0':
		return parseNumber(tok.String())
	default:
		return nil, fmt.Errorf("unexpected JSON token %s", tok.Kind())
	}
}

// childPath appends a raw key to an already rendered key path.
func childPath(parent, key string) string {
	if parent == "" {
		return domtoml.JoinPath(key)
	}
	return parent + "." + domtoml.JoinPath(key)
}

func indexPath(parent string, i int) string {
	return parent + "[" + strconv.Itoa(i) + "]"
}

func parseNumber(raw string) (any, error) {
	if !strings.ContainsAny(raw, ".eE") {
		if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return i, nil
		}
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid number %s: %w", raw, err)
	}
	return f, nil
}

// ToJSON writes doc as a JSON object. Date-times are written as RFC 3339
// strings. An empty indent produces compact output.
func ToJSON(w io.Writer, doc *domtoml.Document, indent string, opts ...domtoml.Option) error {
	doc, err := domtoml.Normalize(doc, opts...)
	if err != nil {
		return err
	}

	var encOpts []jsontext.Options
	if indent != "" {
		encOpts = append(encOpts, jsontext.WithIndent(indent))
	}
	return encodeJSON(jsontext.NewEncoder(w, encOpts...), doc, "")
}

func encodeJSON(enc *jsontext.Encoder, v any, path string) error {
	var err error
	switch t := v.(type) {
	case *domtoml.Document:
		if err = enc.WriteToken(jsontext.BeginObject); err != nil {
			return &domtoml.WriteError{Err: err}
		}
		for k, val := range t.All() {
			if err = enc.WriteToken(jsontext.String(k)); err != nil {
				return &domtoml.WriteError{Err: err}
			}
			if err = encodeJSON(enc, val, childPath(path, k)); err != nil {
				return err
			}
		}
		err = enc.WriteToken(jsontext.EndObject)
	case []any:
		if err = enc.WriteToken(jsontext.BeginArray); err != nil {
			return &domtoml.WriteError{Err: err}
		}
		for i, elem := range t {
			if err = encodeJSON(enc, elem, indexPath(path, i)); err != nil {
				return err
			}
		}
		err = enc.WriteToken(jsontext.EndArray)
	case string:
		err = enc.WriteToken(jsontext.String(t))
	case int64:
		err = enc.WriteToken(jsontext.Int(t))
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return &domtoml.UnsupportedTypeError{Path: path, Type: "float", Reason: "JSON has no NaN or infinity"}
		}
		err = enc.WriteToken(jsontext.Float(t))
	case bool:
		err = enc.WriteToken(jsontext.Bool(t))
	case time.Time:
		err = enc.WriteToken(jsontext.String(t.Format(time.RFC3339Nano)))
	case domtoml.LocalDate, domtoml.LocalTime, domtoml.LocalDateTime:
		err = enc.WriteToken(jsontext.String(fmt.Sprint(t)))
	default:
		return &domtoml.UnsupportedTypeError{Path: path, Type: fmt.Sprintf("%T", v)}
	}
	if err != nil {
		return &domtoml.WriteError{Err: err}
	}
	return nil
}
