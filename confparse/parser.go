package confparse

import (
	"go.uber.org/multierr"

	"github.com/Azhovan/domtoml"
)

// ParseFunc parses one key of a table. It receives the whole table so that
// it can inspect related keys.
type ParseFunc func(table *domtoml.Document) (any, error)

// TableParser parses the keys of one table in registration order.
// Configure it before calling Parse; it is not safe for concurrent
// configuration changes.
type TableParser struct {
	name      string
	keys      []string
	handlers  map[string]ParseFunc
	defaults  *domtoml.Document
	factories []factory
}

type factory struct {
	key string
	fn  func() any
}

// NewTableParser creates a parser for the table at name, such as "project".
// name is only used in error messages.
func NewTableParser(name string) *TableParser {
	return &TableParser{
		name:     name,
		handlers: make(map[string]ParseFunc),
		defaults: domtoml.NewDocument(),
	}
}

// Name returns the table name passed to NewTableParser.
func (p *TableParser) Name() string {
	return p.name
}

// Handle registers fn for key. A nil fn copies the value unchanged.
// Registering a key twice replaces the function and keeps the first position.
func (p *TableParser) Handle(key string, fn ParseFunc) *TableParser {
	if _, ok := p.handlers[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.handlers[key] = fn
	return p
}

// Default sets the value used for key when Parse is asked to fill defaults.
func (p *TableParser) Default(key string, value any) *TableParser {
	p.defaults.Set(key, value)
	return p
}

// Factory is like Default but calls fn for every Parse, so that mutable
// defaults such as arrays are not shared.
func (p *TableParser) Factory(key string, fn func() any) *TableParser {
	p.factories = append(p.factories, factory{key: key, fn: fn})
	return p
}

// Keys returns the registered keys in order.
func (p *TableParser) Keys() []string {
	return append([]string(nil), p.keys...)
}

// Parse runs the handlers for the registered keys present in table. Keys
// that are not registered are ignored. When setDefaults is true, defaults
// and factories fill keys that are still missing.
//
// All handler failures are returned together; use multierr.Errors to list
// them.
func (p *TableParser) Parse(table *domtoml.Document, setDefaults bool) (*domtoml.Document, error) {
	out := domtoml.NewDocument()
	var errs error

	for _, key := range p.keys {
		value, ok := table.Get(key)
		if !ok {
			continue
		}

		fn := p.handlers[key]
		if fn == nil {
			out.Set(key, value)
			continue
		}

		parsed, err := fn(table)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		out.Set(key, parsed)
	}

	if errs != nil {
		return nil, errs
	}

	if setDefaults {
		for key, value := range p.defaults.All() {
			if !out.Has(key) {
				out.Set(key, value)
			}
		}
		for _, f := range p.factories {
			if !out.Has(f.key) {
				out.Set(f.key, f.fn())
			}
		}
	}
	return out, nil
}
