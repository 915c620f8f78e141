// Package confparse validates tables loaded by domtoml, such as the
// [project] table of a pyproject.toml.
//
// A TableParser holds one parse function per key. Parse runs the functions
// for the keys present in a table and reports every failure at once:
//
//	p := confparse.NewTableParser("project").
//		Handle("name", func(t *domtoml.Document) (any, error) {
//			v, _ := t.Get("name")
//			return confparse.AssertType[string](v, "project", "name")
//		})
//	parsed, err := p.Parse(table, false)
//
// Error messages name the offending key path using TOML syntax, for example
// "invalid type for 'project.keywords[0]': expected string, got integer".
package confparse
