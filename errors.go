package domtoml

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors. Errors returned by this package match one of these through
// errors.Is. Failures of a caller-supplied io.Reader and go-toml errors from
// Document.Decode are wrapped instead.
var (
	ErrNotFound        = errors.New("domtoml: file not found")
	ErrEncoding        = errors.New("domtoml: input is not valid UTF-8")
	ErrParse           = errors.New("domtoml: invalid TOML document")
	ErrUnsupportedType = errors.New("domtoml: unsupported value type")
	ErrWrite           = errors.New("domtoml: write failed")
	ErrKeyNotFound     = errors.New("domtoml: key not found")
	ErrTypeMismatch    = errors.New("domtoml: type mismatch")
	ErrInvalidPath     = errors.New("domtoml: invalid key path")
)

// NotFoundError is returned when a path given to LoadFile does not exist.
type NotFoundError struct {
	Path string
	Err  error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("domtoml: file not found: %s", e.Path)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }
func (e *NotFoundError) Unwrap() error        { return e.Err }

// EncodingError reports input bytes that cannot be decoded as UTF-8 text.
// Offset is 0-based; Line and Column are 1-based.
type EncodingError struct {
	Source string
	Offset int
	Line   int
	Column int
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("domtoml: %s: invalid UTF-8 at line %d, column %d (byte %d)",
		sourceName(e.Source), e.Line, e.Column, e.Offset)
}

func (e *EncodingError) Is(target error) bool { return target == ErrEncoding }

// ParseError reports a syntactically or semantically invalid document.
// Line and Column are 1-based and zero when the parser gave no position.
type ParseError struct {
	Source  string
	Line    int
	Column  int
	Message string

	// Context is the parser's multi-line rendering of the offending
	// region, when available.
	Context string

	Err error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("domtoml: %s:%d:%d: %s", sourceName(e.Source), e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("domtoml: %s: %s", sourceName(e.Source), e.Message)
}

func (e *ParseError) Is(target error) bool { return target == ErrParse }
func (e *ParseError) Unwrap() error        { return e.Err }

// UnsupportedTypeError is returned by the dumper when a value has no TOML
// representation.
type UnsupportedTypeError struct {
	Path   string // Key path of the offending value (e.g., "server.handler")
	Type   string // Go type of the value
	Reason string // Optional detail
}

func (e *UnsupportedTypeError) Error() string {
	var b strings.Builder
	b.WriteString("domtoml: cannot encode ")
	if e.Type != "" {
		b.WriteString("value of type ")
		b.WriteString(e.Type)
	} else {
		b.WriteString("value")
	}
	if e.Path != "" {
		fmt.Fprintf(&b, " at %q", e.Path)
	}
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	return b.String()
}

func (e *UnsupportedTypeError) Is(target error) bool { return target == ErrUnsupportedType }

// WriteError wraps an I/O failure while dumping.
type WriteError struct {
	Path string // Destination file, empty for streams
	Err  error
}

func (e *WriteError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("domtoml: write %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("domtoml: write: %v", e.Err)
}

func (e *WriteError) Is(target error) bool { return target == ErrWrite }
func (e *WriteError) Unwrap() error        { return e.Err }

// KeyNotFoundError is returned by accessors when a key path does not resolve.
// Missing is the first segment that could not be found.
type KeyNotFoundError struct {
	Path    string
	Missing string
}

func (e *KeyNotFoundError) Error() string {
	if e.Missing != "" && e.Missing != e.Path {
		return fmt.Sprintf("domtoml: key not found: %q (no %q)", e.Path, e.Missing)
	}
	return fmt.Sprintf("domtoml: key not found: %q", e.Path)
}

func (e *KeyNotFoundError) Is(target error) bool { return target == ErrKeyNotFound }

// TypeMismatchError is returned when a resolved value does not have the
// expected type.
type TypeMismatchError struct {
	Path     string
	Expected string
	Actual   string
	Detail   string
}

func (e *TypeMismatchError) Error() string {
	msg := fmt.Sprintf("domtoml: invalid type for %q: expected %s, got %s", e.Path, e.Expected, e.Actual)
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg
}

func (e *TypeMismatchError) Is(target error) bool { return target == ErrTypeMismatch }

// InvalidPathError reports a key path that cannot be parsed.
type InvalidPathError struct {
	Path string
	Err  error
}

func (e *InvalidPathError) Error() string {
	return fmt.Sprintf("domtoml: invalid key path %q: %v", e.Path, e.Err)
}

func (e *InvalidPathError) Is(target error) bool { return target == ErrInvalidPath }
func (e *InvalidPathError) Unwrap() error        { return e.Err }

func sourceName(s string) string {
	if s == "" {
		return "<input>"
	}
	return s
}
