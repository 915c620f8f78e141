// Package convert translates documents between TOML, JSON and YAML while
// keeping key order.
//
// Format is auto-detected from extension (.toml, .json, .yaml, .yml).
//
// Example:
//
//	doc, err := convert.ReadFile("config.yaml", "")
//	if err != nil {
//		return err
//	}
//	return convert.WriteFile("config.toml", doc, "")
//
// JSON and YAML null has no TOML equivalent and is rejected with
// domtoml.UnsupportedTypeError. YAML has no local date-time or local time,
// so those are written as strings.
package convert
