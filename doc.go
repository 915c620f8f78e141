// Package domtoml loads and dumps TOML documents as ordered mappings and
// offers typed accessors for reading values by key path.
//
// Quick Start:
//
//	doc, err := domtoml.LoadFile("pyproject.toml")
//	if err != nil {
//	    return err
//	}
//
//	name, err := domtoml.Get[string](doc, "project.name")
//	port, err := domtoml.GetOr(doc, "server.port", 8080)
//
//	doc.Set("version", "1.2.0")
//	err = domtoml.DumpFile("pyproject.toml", doc)
//
// Keys keep the order in which they appear in the source, and dumping a
// loaded document reproduces that order. Each table also remembers whether
// it was written as a [section], an inline table or with dotted keys, and
// the dumper follows that choice where the TOML grammar allows.
//
// Key paths use TOML key syntax plus array indexes: `tool."my tool".enabled`,
// `project.authors[0].name`. See JoinPath for building them.
//
// Parsing is done by github.com/pelletier/go-toml/v2. DumpFile replaces the
// target file atomically.
//
// Errors match the sentinels in errors.go through errors.Is and carry the
// offending key path or source position.
//
// See example_test.go for detailed usage.
package domtoml
