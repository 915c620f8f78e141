package domtoml

import (
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/Azhovan/domtoml/internal/fsutil"
)

// Dump writes doc to w as TOML. Keys are written in document order.
// Returns UnsupportedTypeError if a value has no TOML representation and
// WriteError if w fails. Nothing is written when encoding fails.
func Dump(w io.Writer, doc *Document, opts ...Option) error {
	cfg := newOptions(opts)

	e := newEncoder(cfg)
	if err := e.encode(doc); err != nil {
		return err
	}

	if _, err := w.Write(e.buf.Bytes()); err != nil {
		return &WriteError{Err: err}
	}
	return nil
}

// Dumps returns doc rendered as TOML text.
func Dumps(doc *Document, opts ...Option) (string, error) {
	e := newEncoder(newOptions(opts))
	if err := e.encode(doc); err != nil {
		return "", err
	}
	return e.buf.String(), nil
}

// DumpFile writes doc to path atomically: the content goes to a temporary
// file in the same directory which then replaces path. An existing file at
// path is either fully replaced or left untouched.
// File permissions default to DefaultFileMode; see WithFileMode.
func DumpFile(path string, doc *Document, opts ...Option) error {
	cfg := newOptions(opts)
	start := time.Now()

	e := newEncoder(cfg)
	if err := e.encode(doc); err != nil {
		return err
	}

	if err := fsutil.AtomicWrite(path, e.buf.Bytes(), cfg.fileMode); err != nil {
		return &WriteError{Path: path, Err: err}
	}

	cfg.logger.Debug("wrote document",
		zap.String("path", path),
		zap.Int("bytes", e.buf.Len()),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

// FormatValue renders a single value as a TOML value expression, such as
// `"text"`, `[1, 2]` or `{ a = 1 }`. Tables are always rendered inline.
func FormatValue(v any, opts ...Option) (string, error) {
	e := newEncoder(newOptions(opts))
	n, err := e.normalize(v, "")
	if err != nil {
		return "", err
	}
	return formatInline(n), nil
}
