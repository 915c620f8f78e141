package convert

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/Azhovan/domtoml"
	"github.com/Azhovan/domtoml/internal/fsutil"
)

// Format names a document syntax.
type Format string

const (
	TOML Format = "toml"
	JSON Format = "json"
	YAML Format = "yaml"
)

// InferFormat returns the format implied by the file extension of path, or
// "" if the extension is not recognized.
func InferFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return TOML
	case ".json":
		return JSON
	case ".yaml", ".yml":
		return YAML
	default:
		return ""
	}
}

// ParseFormat converts a user-supplied format name.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "toml":
		return TOML, nil
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	default:
		return "", fmt.Errorf("unsupported format: %s (supported: toml, json, yaml)", name)
	}
}

// Read parses a document in the given format.
func Read(r io.Reader, format Format, opts ...domtoml.Option) (*domtoml.Document, error) {
	switch format {
	case TOML:
		return domtoml.Load(r, opts...)
	case JSON:
		return FromJSON(r)
	case YAML:
		return FromYAML(r)
	default:
		return nil, fmt.Errorf("unsupported format: %q", format)
	}
}

// Write renders doc in the given format.
func Write(w io.Writer, doc *domtoml.Document, format Format, opts ...domtoml.Option) error {
	switch format {
	case TOML:
		return domtoml.Dump(w, doc, opts...)
	case JSON:
		return ToJSON(w, doc, "  ", opts...)
	case YAML:
		return ToYAML(w, doc, opts...)
	default:
		return fmt.Errorf("unsupported format: %q", format)
	}
}

// ReadFile loads the file at path. If format is empty it is inferred from
// the extension. A missing file yields domtoml.NotFoundError.
func ReadFile(path string, format Format, opts ...domtoml.Option) (*domtoml.Document, error) {
	if format == "" {
		format = InferFormat(path)
	}
	if format == TOML {
		return domtoml.LoadFile(path, opts...)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &domtoml.NotFoundError{Path: path, Err: err}
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	doc, err := Read(bytes.NewReader(data), format, opts...)
	if err != nil {
		var pe *domtoml.ParseError
		if errors.As(err, &pe) && pe.Source == "" {
			pe.Source = path
		}
		return nil, err
	}
	return doc, nil
}

// WriteFile renders doc in format and atomically replaces path with it.
// If format is empty it is inferred from the extension.
func WriteFile(path string, doc *domtoml.Document, format Format, opts ...domtoml.Option) error {
	if format == "" {
		format = InferFormat(path)
	}
	if format == TOML {
		return domtoml.DumpFile(path, doc, opts...)
	}

	var buf bytes.Buffer
	if err := Write(&buf, doc, format, opts...); err != nil {
		return err
	}
	if err := fsutil.AtomicWrite(path, buf.Bytes(), domtoml.DefaultFileMode); err != nil {
		return &domtoml.WriteError{Path: path, Err: err}
	}
	return nil
}

// position converts a byte offset into a 1-based line and column.
func position(b []byte, off int) (line, col int) {
	if off > len(b) {
		off = len(b)
	}
	head := b[:off]
	line = bytes.Count(head, []byte{'\n'}) + 1
	if i := bytes.LastIndexByte(head, '\n'); i >= 0 {
		head = head[i+1:]
	}
	return line, utf8.RuneCount(head) + 1
}
