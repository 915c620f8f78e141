package domtoml

import (
	"errors"
	"io/fs"
	"testing"
)

func TestErrors_Is(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		message  string
	}{
		{
			name:     "not found",
			err:      &NotFoundError{Path: "/etc/app.toml", Err: fs.ErrNotExist},
			sentinel: ErrNotFound,
			message:  "domtoml: file not found: /etc/app.toml",
		},
		{
			name:     "encoding",
			err:      &EncodingError{Source: "app.toml", Offset: 13, Line: 2, Column: 6},
			sentinel: ErrEncoding,
			message:  "domtoml: app.toml: invalid UTF-8 at line 2, column 6 (byte 13)",
		},
		{
			name:     "parse with position",
			err:      &ParseError{Source: "app.toml", Line: 3, Column: 7, Message: "expected value"},
			sentinel: ErrParse,
			message:  "domtoml: app.toml:3:7: expected value",
		},
		{
			name:     "parse without position",
			err:      &ParseError{Message: "key a is already defined"},
			sentinel: ErrParse,
			message:  "domtoml: <input>: key a is already defined",
		},
		{
			name:     "unsupported type",
			err:      &UnsupportedTypeError{Path: "server.handler", Type: "func()"},
			sentinel: ErrUnsupportedType,
			message:  `domtoml: cannot encode value of type func() at "server.handler"`,
		},
		{
			name:     "unsupported type with reason",
			err:      &UnsupportedTypeError{Path: "x", Reason: "nil value"},
			sentinel: ErrUnsupportedType,
			message:  `domtoml: cannot encode value at "x": nil value`,
		},
		{
			name:     "write to file",
			err:      &WriteError{Path: "out.toml", Err: errors.New("disk full")},
			sentinel: ErrWrite,
			message:  "domtoml: write out.toml: disk full",
		},
		{
			name:     "write to stream",
			err:      &WriteError{Err: errors.New("broken pipe")},
			sentinel: ErrWrite,
			message:  "domtoml: write: broken pipe",
		},
		{
			name:     "key not found",
			err:      &KeyNotFoundError{Path: "a.b.c", Missing: "a.b"},
			sentinel: ErrKeyNotFound,
			message:  `domtoml: key not found: "a.b.c" (no "a.b")`,
		},
		{
			name:     "key not found at leaf",
			err:      &KeyNotFoundError{Path: "a.c", Missing: "a.c"},
			sentinel: ErrKeyNotFound,
			message:  `domtoml: key not found: "a.c"`,
		},
		{
			name:     "type mismatch",
			err:      &TypeMismatchError{Path: "a.b", Expected: "string", Actual: "integer"},
			sentinel: ErrTypeMismatch,
			message:  `domtoml: invalid type for "a.b": expected string, got integer`,
		},
		{
			name:     "invalid path",
			err:      &InvalidPathError{Path: "a..b", Err: errors.New("at offset 2: unexpected character '.'")},
			sentinel: ErrInvalidPath,
			message:  `domtoml: invalid key path "a..b": at offset 2: unexpected character '.'`,
		},
	}

	sentinels := []error{
		ErrNotFound, ErrEncoding, ErrParse, ErrUnsupportedType,
		ErrWrite, ErrKeyNotFound, ErrTypeMismatch, ErrInvalidPath,
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.message {
				t.Errorf("Error() = %q, want %q", got, tt.message)
			}

			for _, s := range sentinels {
				if got, want := errors.Is(tt.err, s), s == tt.sentinel; got != want {
					t.Errorf("errors.Is(%v) = %v, want %v", s, got, want)
				}
			}
		})
	}
}

func TestErrors_Unwrap(t *testing.T) {
	cause := errors.New("cause")

	wrapped := []error{
		&NotFoundError{Err: cause},
		&ParseError{Err: cause},
		&WriteError{Err: cause},
		&InvalidPathError{Err: cause},
	}
	for _, err := range wrapped {
		if !errors.Is(err, cause) {
			t.Errorf("%T does not unwrap to its cause", err)
		}
	}
}
