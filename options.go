package domtoml

import (
	"os"

	"go.uber.org/zap"
)

// Defaults used by the dumper.
const (
	DefaultMaxWidth    = 100
	DefaultArrayIndent = "    "
	DefaultFileMode    = os.FileMode(0o644)
)

// Option configures load and dump behavior using the functional options
// pattern. Options that do not apply to an operation are ignored.
type Option func(*options)

type options struct {
	logger         *zap.Logger
	maxWidth       int         // Widest single-line array, in columns
	arrayIndent    string      // Indentation of multi-line array elements
	textMarshalers bool        // Encode encoding.TextMarshaler values as strings
	fileMode       os.FileMode // Mode of files created by DumpFile
	sourceName     string      // Name reported in errors for stream input
}

func newOptions(opts []Option) options {
	cfg := options{
		logger:      zap.NewNop(),
		maxWidth:    DefaultMaxWidth,
		arrayIndent: DefaultArrayIndent,
		fileMode:    DefaultFileMode,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithLogger sets the logger used for debug output. Default: no-op.
func WithLogger(l *zap.Logger) Option {
	return func(cfg *options) {
		if l != nil {
			cfg.logger = l
		}
	}
}

// WithMaxWidth sets the widest line, in columns, on which an array is kept
// on a single line. Non-positive values force multi-line arrays for every
// array with more than one element.
func WithMaxWidth(n int) Option {
	return func(cfg *options) {
		cfg.maxWidth = n
	}
}

// WithArrayIndent sets the indentation of elements in multi-line arrays.
// Default is four spaces.
func WithArrayIndent(indent string) Option {
	return func(cfg *options) {
		cfg.arrayIndent = indent
	}
}

// WithTextMarshalers encodes values implementing encoding.TextMarshaler as
// TOML strings instead of rejecting them.
func WithTextMarshalers() Option {
	return func(cfg *options) {
		cfg.textMarshalers = true
	}
}

// WithFileMode sets the permissions of files written by DumpFile.
func WithFileMode(mode os.FileMode) Option {
	return func(cfg *options) {
		cfg.fileMode = mode
	}
}

// WithSourceName sets the name used for stream input in error messages.
func WithSourceName(name string) Option {
	return func(cfg *options) {
		cfg.sourceName = name
	}
}
