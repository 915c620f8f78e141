package domtoml

import (
	"github.com/pelletier/go-toml/v2"
)

// Local date and time types, as decoded by go-toml.
type (
	LocalDate     = toml.LocalDate
	LocalTime     = toml.LocalTime
	LocalDateTime = toml.LocalDateTime
)

// TableStyle is a formatting hint telling the dumper how a table should be
// written. It is recorded by the loader and never affects equality.
type TableStyle int

const (
	// StyleSection writes the table under a [header].
	StyleSection TableStyle = iota
	// StyleInline writes the table as { key = value, ... }.
	StyleInline
	// StyleDotted writes the table as dotted keys inside its parent.
	StyleDotted
)

func (s TableStyle) String() string {
	switch s {
	case StyleSection:
		return "section"
	case StyleInline:
		return "inline"
	case StyleDotted:
		return "dotted"
	default:
		return "unknown"
	}
}
