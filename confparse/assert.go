package confparse

import (
	"errors"
	"fmt"

	"github.com/Azhovan/domtoml"
)

// TypeError reports a value with the wrong type. It matches
// domtoml.ErrTypeMismatch through errors.Is.
type TypeError struct {
	Path     string
	Expected string
	Actual   string

	// Element is set when the value is a member of a table, as checked by
	// AssertValueType.
	Element bool
}

func (e *TypeError) Error() string {
	what := "type"
	if e.Element {
		what = "value type"
	}
	return fmt.Sprintf("invalid %s for '%s': expected %s, got %s", what, e.Path, e.Expected, e.Actual)
}

func (e *TypeError) Is(target error) bool { return target == domtoml.ErrTypeMismatch }

// AssertType checks that value can be used as T and returns it converted.
// path is the key path of value, one key per element.
func AssertType[T any](value any, path ...string) (T, error) {
	return assertType[T](value, domtoml.JoinPath(path...), false)
}

// AssertIndexedType is like AssertType for the element at idx of the array
// at path.
func AssertIndexedType[T any](value any, idx int, path ...string) (T, error) {
	return assertType[T](value, fmt.Sprintf("%s[%d]", domtoml.JoinPath(path...), idx), false)
}

// AssertValueType is like AssertType for a value of a table whose keys are
// chosen by the user, such as the entries of [project.urls].
func AssertValueType[T any](value any, path ...string) (T, error) {
	return assertType[T](value, domtoml.JoinPath(path...), true)
}

func assertType[T any](value any, path string, element bool) (T, error) {
	v, err := domtoml.As[T](value, path)
	if err == nil {
		return v, nil
	}

	var tm *domtoml.TypeMismatchError
	if errors.As(err, &tm) {
		return v, &TypeError{Path: tm.Path, Expected: tm.Expected, Actual: tm.Actual, Element: element}
	}
	return v, err
}

// BadConfigError reports a configuration that is well-formed TOML but
// semantically invalid. Documentation optionally points the user to help.
type BadConfigError struct {
	Message       string
	Documentation string
}

func (e *BadConfigError) Error() string {
	return e.Message
}
