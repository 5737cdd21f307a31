// Package typemap converts PostgreSQL column types to Drizzle ORM column constructors
package typemap

import (
	"fmt"
	"regexp"
	"strings"
)

// Mapping is the Drizzle column constructor for a PostgreSQL type,
// plus options for parametrized types.
type Mapping struct {
	Name         string
	WithTimezone bool
	Precision    string
	Scale        string
}

var precisionScaleRe = regexp.MustCompile(`^(\w+)\((\d+),\s*(\d+)\)`)

// Map converts a PostgreSQL column type to its Drizzle constructor.
// Matching is case-insensitive and first match wins. Unrecognized types
// fall back to text rather than failing; inputs are best-effort by design.
func Map(pgType string) Mapping {
	t := strings.ToUpper(strings.TrimSpace(pgType))

	switch {
	case t == "UUID":
		return Mapping{Name: "uuid"}
	case t == "SERIAL":
		return Mapping{Name: "serial"}
	case strings.HasPrefix(t, "VARCHAR") || t == "TEXT":
		return Mapping{Name: "text"}
	case strings.HasPrefix(t, "INT") || t == "INTEGER":
		return Mapping{Name: "integer"}
	case t == "BOOLEAN":
		return Mapping{Name: "boolean"}
	case strings.HasPrefix(t, "TIMESTAMP"):
		if strings.Contains(t, "WITH TIME ZONE") {
			return Mapping{Name: "timestamp", WithTimezone: true}
		}
		return Mapping{Name: "timestamp"}
	case strings.HasPrefix(t, "DATE"):
		return Mapping{Name: "date"}
	case t == "JSON":
		return Mapping{Name: "json"}
	case t == "JSONB":
		return Mapping{Name: "jsonb"}
	case strings.HasPrefix(t, "DECIMAL") || strings.HasPrefix(t, "NUMERIC"):
		if m := precisionScaleRe.FindStringSubmatch(t); m != nil {
			return Mapping{Name: "decimal", Precision: m[2], Scale: m[3]}
		}
		return Mapping{Name: "decimal"}
	}

	return Mapping{Name: "text"}
}

// Options renders the Drizzle options object literal for the mapping,
// or an empty string when the type takes no options.
func (m Mapping) Options() string {
	switch {
	case m.WithTimezone:
		return "{ withTimezone: true }"
	case m.Precision != "":
		return fmt.Sprintf("{ precision: %s, scale: %s }", m.Precision, m.Scale)
	}
	return ""
}

// IsTextual reports whether the mapped type stores text, which controls
// auto-quoting of literal default values.
func (m Mapping) IsTextual() bool {
	return m.Name == "text" || m.Name == "varchar"
}
