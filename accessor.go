package domtoml

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/Azhovan/domtoml/internal/keypath"
)

// JoinPath builds a key path from raw keys, quoting keys that are not bare.
//
//	JoinPath("tool", "hello world") // tool."hello world"
func JoinPath(keys ...string) string {
	return keypath.Join(keys...)
}

// Lookup resolves a dotted key path such as `server.ports[0]` in doc.
// Returns KeyNotFoundError if any segment is missing, or runs through a value
// that is not a table (or not an array, for an index).
func Lookup(doc *Document, path string) (any, error) {
	steps, err := keypath.Parse(path)
	if err != nil {
		return nil, &InvalidPathError{Path: path, Err: err}
	}

	var cur any = doc
	for i, step := range steps {
		missing := func() error {
			return &KeyNotFoundError{Path: path, Missing: keypath.Render(steps[:i+1])}
		}

		if step.IsIndex {
			arr, ok := cur.([]any)
			if !ok || step.Index >= len(arr) {
				return nil, missing()
			}
			cur = arr[step.Index]
			continue
		}

		table, ok := cur.(*Document)
		if !ok {
			return nil, missing()
		}
		v, ok := table.Get(step.Key)
		if !ok {
			return nil, missing()
		}
		cur = v
	}
	return cur, nil
}

// Get resolves path in doc and returns the value as T.
//
// Values are never coerced between TOML types: a string is not an integer and
// an integer is not a float. Within a type, the value is converted to T when
// it fits: integers to any Go integer type without overflow, floats to
// float32, arrays to slices and tables to map[string]E, element by element.
//
// Returns KeyNotFoundError if the path does not resolve and TypeMismatchError
// if the value cannot be represented as T.
func Get[T any](doc *Document, path string) (T, error) {
	v, err := Lookup(doc, path)
	if err != nil {
		var zero T
		return zero, err
	}
	return As[T](v, path)
}

// GetOr is like Get but returns def when the path does not resolve.
// Type mismatches are still reported.
func GetOr[T any](doc *Document, path string, def T) (T, error) {
	v, err := Get[T](doc, path)
	if errors.Is(err, ErrKeyNotFound) {
		return def, nil
	}
	return v, err
}

// As converts a document value to T using the same rules as Get. path is
// only used in error messages.
func As[T any](v any, path string) (T, error) {
	if t, ok := v.(T); ok {
		return t, nil
	}

	var zero T
	target := reflect.TypeOf((*T)(nil)).Elem()
	rv, err := convertValue(v, target, path)
	if err != nil {
		return zero, err
	}
	return rv.Interface().(T), nil
}

func convertValue(v any, target reflect.Type, path string) (reflect.Value, error) {
	mismatch := func(detail string) (reflect.Value, error) {
		return reflect.Value{}, &TypeMismatchError{
			Path:     path,
			Expected: expectedName(target),
			Actual:   TypeName(v),
			Detail:   detail,
		}
	}

	if v == nil {
		return mismatch("")
	}
	src := reflect.ValueOf(v)
	if src.Type() == target {
		return src, nil
	}
	if target.Kind() == reflect.Interface && src.Type().Implements(target) {
		out := reflect.New(target).Elem()
		out.Set(src)
		return out, nil
	}

	out := reflect.New(target).Elem()
	switch target.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, ok := v.(int64)
		if !ok {
			return mismatch("")
		}
		if out.OverflowInt(i) {
			return mismatch(fmt.Sprintf("%d overflows %s", i, target))
		}
		out.SetInt(i)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		i, ok := v.(int64)
		if !ok {
			return mismatch("")
		}
		if i < 0 || out.OverflowUint(uint64(i)) {
			return mismatch(fmt.Sprintf("%d overflows %s", i, target))
		}
		out.SetUint(uint64(i))
	case reflect.Float32, reflect.Float64:
		f, ok := v.(float64)
		if !ok {
			return mismatch("")
		}
		if out.OverflowFloat(f) {
			return mismatch(fmt.Sprintf("%g overflows %s", f, target))
		}
		out.SetFloat(f)
	case reflect.String:
		s, ok := v.(string)
		if !ok {
			return mismatch("")
		}
		out.SetString(s)
	case reflect.Bool:
		b, ok := v.(bool)
		if !ok {
			return mismatch("")
		}
		out.SetBool(b)
	case reflect.Slice:
		arr, ok := v.([]any)
		if !ok {
			return mismatch("")
		}
		out = reflect.MakeSlice(target, len(arr), len(arr))
		for i, elem := range arr {
			ev, err := convertValue(elem, target.Elem(), keypath.Index(path, i))
			if err != nil {
				return reflect.Value{}, err
			}
			out.Index(i).Set(ev)
		}
	case reflect.Map:
		table, ok := v.(*Document)
		if !ok || target.Key().Kind() != reflect.String {
			return mismatch("")
		}
		out = reflect.MakeMapWithSize(target, table.Len())
		for k, val := range table.All() {
			ev, err := convertValue(val, target.Elem(), keypath.Child(path, k))
			if err != nil {
				return reflect.Value{}, err
			}
			out.SetMapIndex(reflect.ValueOf(k).Convert(target.Key()), ev)
		}
	default:
		return mismatch("")
	}
	return out, nil
}

var (
	timeType          = reflect.TypeOf(time.Time{})
	documentType      = reflect.TypeOf((*Document)(nil))
	localDateType     = reflect.TypeOf(LocalDate{})
	localTimeType     = reflect.TypeOf(LocalTime{})
	localDateTimeType = reflect.TypeOf(LocalDateTime{})
)

func expectedName(t reflect.Type) string {
	switch t {
	case timeType:
		return "offset date-time"
	case localDateTimeType:
		return "local date-time"
	case localDateType:
		return "local date"
	case localTimeType:
		return "local time"
	case documentType:
		return "table"
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "float"
	case reflect.Slice:
		return "array"
	case reflect.Map:
		return "table"
	}
	return t.String()
}

// TypeName returns the TOML name of a document value's type, such as
// "integer" or "local date". Values outside the document model are described
// by their Go type.
func TypeName(v any) string {
	switch v.(type) {
	case string:
		return "string"
	case int64:
		return "integer"
	case float64:
		return "float"
	case bool:
		return "boolean"
	case time.Time:
		return "offset date-time"
	case LocalDateTime:
		return "local date-time"
	case LocalDate:
		return "local date"
	case LocalTime:
		return "local time"
	case []any:
		return "array"
	case *Document:
		return "table"
	case nil:
		return "nil"
	}
	return fmt.Sprintf("%T", v)
}
