package convert

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Azhovan/domtoml"
)

// FromYAML reads a YAML mapping, keeping key order. Aliases are expanded.
// An empty stream yields an empty document.
func FromYAML(r io.Reader) (*domtoml.Document, error) {
	var root yaml.Node
	if err := yaml.NewDecoder(r).Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return domtoml.NewDocument(), nil
		}
		return nil, &domtoml.ParseError{Message: err.Error(), Err: err}
	}

	n := &root
	if n.Kind == yaml.DocumentNode {
		if len(n.Content) == 0 {
			return domtoml.NewDocument(), nil
		}
		n = n.Content[0]
	}
	n = resolveAlias(n)
	if n.Kind != yaml.MappingNode {
		return nil, &domtoml.ParseError{
			Line:    n.Line,
			Column:  n.Column,
			Message: "top-level YAML value must be a mapping",
		}
	}

	v, err := decodeYAML(n, "")
	if err != nil {
		return nil, err
	}
	return v.(*domtoml.Document), nil
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func decodeYAML(n *yaml.Node, path string) (any, error) {
	n = resolveAlias(n)
	switch n.Kind {
	case yaml.MappingNode:
		doc := domtoml.NewDocument()
		for i := 0; i+1 < len(n.Content); i += 2 {
			keyNode := resolveAlias(n.Content[i])
			if keyNode.Kind != yaml.ScalarNode {
				return nil, &domtoml.ParseError{
					Line:    keyNode.Line,
					Column:  keyNode.Column,
					Message: fmt.Sprintf("mapping key at %q is not a scalar", path),
				}
			}
			key := keyNode.Value
			v, err := decodeYAML(n.Content[i+1], childPath(path, key))
			if err != nil {
				return nil, err
			}
			doc.Set(key, v)
		}
		return doc, nil
	case yaml.SequenceNode:
		arr := make([]any, len(n.Content))
		for i, c := range n.Content {
			v, err := decodeYAML(c, indexPath(path, i))
			if err != nil {
				return nil, err
			}
			arr[i] = v
		}
		return arr, nil
	case yaml.ScalarNode:
		return decodeScalar(n, path)
	default:
		return nil, &domtoml.ParseError{Line: n.Line, Column: n.Column, Message: fmt.Sprintf("unexpected YAML node at %q", path)}
	}
}

func decodeScalar(n *yaml.Node, path string) (any, error) {
	scalarErr := func(err error) error {
		return &domtoml.ParseError{Line: n.Line, Column: n.Column, Message: err.Error(), Err: err}
	}

	switch n.ShortTag() {
	case "!!null":
		return nil, &domtoml.UnsupportedTypeError{Path: path, Type: "null", Reason: "YAML null has no TOML equivalent"}
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, scalarErr(err)
		}
		return b, nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			return nil, scalarErr(err)
		}
		return i, nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, scalarErr(err)
		}
		return f, nil
	case "!!timestamp":
		var d domtoml.LocalDate
		if err := d.UnmarshalText([]byte(n.Value)); err == nil {
			return d, nil
		}
		var t time.Time
		if err := n.Decode(&t); err != nil {
			return nil, scalarErr(err)
		}
		return t, nil
	default:
		return n.Value, nil
	}
}

// ToYAML writes doc as a YAML mapping with two-space indentation.
func ToYAML(w io.Writer, doc *domtoml.Document, opts ...domtoml.Option) error {
	doc, err := domtoml.Normalize(doc, opts...)
	if err != nil {
		return err
	}
	n, err := encodeYAML(doc, "")
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(n); err != nil {
		return &domtoml.WriteError{Err: err}
	}
	if err := enc.Close(); err != nil {
		return &domtoml.WriteError{Err: err}
	}
	return nil
}

func encodeYAML(v any, path string) (*yaml.Node, error) {
	scalar := func(tag, value string) *yaml.Node {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
	}

	switch t := v.(type) {
	case *domtoml.Document:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		if t.Len() == 0 {
			n.Style = yaml.FlowStyle
		}
		for k, val := range t.All() {
			c, err := encodeYAML(val, childPath(path, k))
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, scalar("!!str", k), c)
		}
		return n, nil
	case []any:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		if len(t) == 0 {
			n.Style = yaml.FlowStyle
		}
		for i, elem := range t {
			c, err := encodeYAML(elem, indexPath(path, i))
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, c)
		}
		return n, nil
	case string:
		return scalar("!!str", t), nil
	case int64:
		return scalar("!!int", strconv.FormatInt(t, 10)), nil
	case float64:
		return scalar("!!float", yamlFloat(t)), nil
	case bool:
		return scalar("!!bool", strconv.FormatBool(t)), nil
	case time.Time:
		return scalar("!!timestamp", t.Format(time.RFC3339Nano)), nil
	case domtoml.LocalDate:
		return scalar("!!timestamp", t.String()), nil
	case domtoml.LocalTime, domtoml.LocalDateTime:
		return scalar("!!str", fmt.Sprint(t)), nil
	default:
		return nil, &domtoml.UnsupportedTypeError{Path: path, Type: fmt.Sprintf("%T", v)}
	}
}

func yamlFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return ".nan"
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}
