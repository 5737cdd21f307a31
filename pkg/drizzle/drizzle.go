// Package drizzle emits Drizzle ORM table definitions from schema-migration documents
package drizzle

import (
	"fmt"
	"strings"

	"github.com/veldtlabs/pg-schema-gen/pkg/schema"
	"github.com/veldtlabs/pg-schema-gen/pkg/typemap"
)

const header = "import { pgTable, serial, uuid, text, integer, boolean, " +
	"timestamp, date, json, jsonb, decimal, primaryKey, foreignKey } " +
	"from 'drizzle-orm/pg-core';\n" +
	"import { sql } from 'drizzle-orm';\n\n"

// Generate emits one exported pgTable definition per addTable command, with
// one field per addColumn child in document order, plus warnings for skipped
// elements. The output is a snapshot of the declared columns: removeColumn
// and other non-addColumn children are deliberately ignored, since the ORM
// view reflects the latest full declaration rather than an incremental diff.
func Generate(doc *schema.Document) (string, []string) {
	var tables []string
	var warnings []string

	for i := range doc.Commands {
		cmd := &doc.Commands[i]
		if cmd.Kind != schema.AddTable {
			continue
		}
		if cmd.Name == "" {
			warnings = append(warnings, "<addTable> without a name attribute")
			continue
		}
		def, w := tableDef(cmd)
		tables = append(tables, def)
		warnings = append(warnings, w...)
	}

	return header + strings.Join(tables, "\n") + "\n", warnings
}

func tableDef(cmd *schema.Command) (string, []string) {
	var warnings []string
	var columns []string

	for _, op := range cmd.Children {
		if op.Kind != schema.AddColumn {
			continue
		}
		if op.Name == "" || op.Type == "" {
			warnings = append(warnings,
				fmt.Sprintf("<addColumn> missing name or type in table %s", cmd.Name))
			continue
		}
		columns = append(columns, columnDef(op))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "export const %s = pgTable('%s', {\n", cmd.Name, cmd.Name)
	sb.WriteString(strings.Join(columns, "\n"))
	sb.WriteString("\n});\n")

	return sb.String(), warnings
}

func columnDef(op schema.Operation) string {
	m := typemap.Map(op.Type)

	var sb strings.Builder
	fmt.Fprintf(&sb, "  %s: %s('%s'", op.Name, m.Name, op.Name)
	if opts := m.Options(); opts != "" {
		sb.WriteString(", " + opts)
	}
	sb.WriteString(")")

	if !op.Nullable {
		sb.WriteString(".notNull()")
	}
	if op.Default != nil {
		sb.WriteString(defaultModifier(*op.Default, m))
	}
	if op.PrimaryKey {
		sb.WriteString(".primaryKey()")
	}

	sb.WriteString(",")
	return sb.String()
}

// defaultModifier renders the default-value chain. Raw sql`...` fragments
// pass through verbatim, now() and uuid_generate_v4() get their dedicated
// markers, and bare literals for textual types are auto-quoted.
func defaultModifier(val string, m typemap.Mapping) string {
	switch {
	case strings.HasPrefix(val, "sql`") && strings.HasSuffix(val, "`"):
		return fmt.Sprintf(".default(%s)", val)
	case val == "now()":
		return ".defaultNow()"
	case val == "uuid_generate_v4()":
		return ".default(sql`uuid_generate_v4()`)"
	}

	if m.IsTextual() && !strings.HasPrefix(val, "'") && !strings.HasPrefix(val, `"`) {
		val = "'" + val + "'"
	}
	return fmt.Sprintf(".default(%s)", val)
}
