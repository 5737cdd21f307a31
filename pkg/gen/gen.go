// Package gen interprets schema-migration documents and generates idempotent PostgreSQL statements
package gen

import (
	"fmt"
	"strings"

	"github.com/veldtlabs/pg-schema-gen/pkg/schema"
)

// Options configures statement generation
type Options struct {
	// DropHistory drops a table's history table and its orphaned trigger
	// function when the table itself is removed. Disabled by default so
	// the audit trail survives table removal.
	DropHistory bool
}

// Statements interprets doc and returns the generated statements in document
// order, plus warnings for malformed or unrecognized elements that were
// skipped. Warnings are never fatal; generation continues with the next
// element.
func Statements(doc *schema.Document, opts Options) ([]string, []string) {
	g := &generator{opts: opts}
	for i := range doc.Commands {
		g.command(&doc.Commands[i])
	}
	return g.stmts, g.warnings
}

// Script generates the full migration script: all statements wrapped in a
// single transaction, blank-line separated.
func Script(doc *schema.Document, opts Options) (string, []string) {
	stmts, warnings := Statements(doc, opts)

	all := make([]string, 0, len(stmts)+2)
	all = append(all, "BEGIN;")
	all = append(all, stmts...)
	all = append(all, "COMMIT;")

	return strings.Join(all, "\n\n"), warnings
}

type generator struct {
	opts     Options
	stmts    []string
	warnings []string
}

func (g *generator) emit(stmts ...string) {
	g.stmts = append(g.stmts, stmts...)
}

func (g *generator) warnf(format string, args ...any) {
	g.warnings = append(g.warnings, fmt.Sprintf(format, args...))
}

func (g *generator) command(cmd *schema.Command) {
	switch cmd.Kind {
	case schema.CreateExtension:
		g.createExtension(cmd)
	case schema.AddTable:
		g.addTable(cmd)
	case schema.RemoveTable:
		g.removeTable(cmd)
	default:
		g.warnf("unrecognized top-level element <%s>", cmd.Tag)
	}
}

func (g *generator) createExtension(cmd *schema.Command) {
	if cmd.Name == "" {
		g.warnf("<createExtension> without a name attribute")
		return
	}
	g.emit(fmt.Sprintf("CREATE EXTENSION IF NOT EXISTS %q;", cmd.Name))
}

func (g *generator) addTable(cmd *schema.Command) {
	if cmd.Name == "" {
		g.warnf("<addTable> without a name attribute")
		return
	}

	table := cmd.QualifiedName()
	cols := newColumnSet()

	// Schema-shape changes accumulate separately from constraint changes so
	// foreign keys land after all column and index statements for the table.
	var alterOps []string
	var foreignKeys []string

	for _, op := range cmd.Children {
		switch op.Kind {
		case schema.AddColumn:
			if op.Name == "" || op.Type == "" {
				g.warnf("<addColumn> missing name or type in table %s", cmd.Name)
				continue
			}
			def := columnDef(op)
			cols.set(op.Name, def)
			alterOps = append(alterOps,
				fmt.Sprintf("ALTER TABLE %s ADD COLUMN IF NOT EXISTS %s;", table, def))

			if op.Unique {
				constraint := fmt.Sprintf("uk_%s_%s", cmd.Name, op.Name)
				alterOps = append(alterOps,
					fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT IF EXISTS %s;", table, constraint),
					fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s UNIQUE (%s);", table, constraint, op.Name),
				)
			}

		case schema.RemoveColumn:
			if op.Name == "" {
				g.warnf("<removeColumn> missing name in table %s", cmd.Name)
				continue
			}
			cols.remove(op.Name)
			alterOps = append(alterOps,
				fmt.Sprintf("ALTER TABLE %s DROP COLUMN IF EXISTS %s;", table, op.Name))

		case schema.AddForeignKey:
			if op.Column == "" || op.RefTable == "" || op.RefColumn == "" {
				g.warnf("<addForeignKey> missing required attributes in table %s", cmd.Name)
				continue
			}
			constraint := fmt.Sprintf("fk_%s_%s", cmd.Name, op.Column)
			stmt := fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s(%s)",
				table, constraint, op.Column, op.RefTable, op.RefColumn)
			if op.OnDelete != "" {
				stmt += " ON DELETE " + op.OnDelete
			}
			if op.OnUpdate != "" {
				stmt += " ON UPDATE " + op.OnUpdate
			}
			foreignKeys = append(foreignKeys,
				fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT IF EXISTS %s;", table, constraint),
				stmt+";",
			)

		case schema.AddIndex:
			if op.Name == "" || op.Columns == "" {
				g.warnf("<addIndex> missing required attributes in table %s", cmd.Name)
				continue
			}
			index := "INDEX_" + op.Name
			if op.Update {
				// DROP INDEX takes a schema-qualified name; CREATE INDEX
				// takes a bare one since the index inherits the table's schema.
				alterOps = append(alterOps,
					fmt.Sprintf("DROP INDEX IF EXISTS %s;", schema.Qualify(cmd.Namespace, index)),
					fmt.Sprintf("CREATE INDEX %s ON %s (%s);", index, table, op.Columns),
				)
			} else {
				alterOps = append(alterOps,
					fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s);", index, table, op.Columns))
			}

		case schema.RemoveIndex:
			if op.Name == "" {
				g.warnf("<removeIndex> missing required name attribute in table %s", cmd.Name)
				continue
			}
			alterOps = append(alterOps,
				fmt.Sprintf("DROP INDEX IF EXISTS %s;", schema.Qualify(cmd.Namespace, "INDEX_"+op.Name)))

		default:
			g.warnf("unrecognized element <%s> in <addTable> for table %s", op.Tag, cmd.Name)
		}
	}

	if cols.len() > 0 {
		g.emit(fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n    %s\n);",
			table, strings.Join(cols.defs(), ",\n    ")))
	}
	g.emit(alterOps...)
	g.emit(foreignKeys...)

	if cmd.History {
		g.history(cmd, cols)
	}
}

func (g *generator) removeTable(cmd *schema.Command) {
	if cmd.Name == "" {
		g.warnf("<removeTable> without a name attribute")
		return
	}
	g.emit(fmt.Sprintf("DROP TABLE IF EXISTS %s;", cmd.QualifiedName()))

	if g.opts.DropHistory {
		g.emit(
			fmt.Sprintf("DROP TABLE IF EXISTS %s;", schema.Qualify(cmd.Namespace, historyTablePrefix+cmd.Name)),
			fmt.Sprintf("DROP FUNCTION IF EXISTS %s();", schema.Qualify(cmd.Namespace, triggerPrefix+cmd.Name)),
		)
	}
}

// columnDef renders a column definition. The default value is interpolated
// verbatim; the document is trusted to supply valid SQL literal text.
func columnDef(op schema.Operation) string {
	parts := []string{op.Name + " " + op.Type}
	if op.PrimaryKey {
		parts = append(parts, "PRIMARY KEY")
	}
	if !op.Nullable {
		parts = append(parts, "NOT NULL")
	}
	if op.Default != nil {
		parts = append(parts, "DEFAULT "+*op.Default)
	}
	return strings.Join(parts, " ")
}

// columnSet tracks a table's effective columns: the column list as of a
// given point in document order, after applying all add and remove
// operations seen so far. Insertion preserves first-seen order; a re-added
// column after removal appears once, at its new position.
type columnSet struct {
	names []string
	byCol map[string]string
}

func newColumnSet() *columnSet {
	return &columnSet{byCol: make(map[string]string)}
}

func (c *columnSet) set(name, def string) {
	if _, ok := c.byCol[name]; !ok {
		c.names = append(c.names, name)
	}
	c.byCol[name] = def
}

func (c *columnSet) remove(name string) {
	if _, ok := c.byCol[name]; !ok {
		return
	}
	delete(c.byCol, name)
	for i, n := range c.names {
		if n == name {
			c.names = append(c.names[:i], c.names[i+1:]...)
			break
		}
	}
}

func (c *columnSet) len() int {
	return len(c.byCol)
}

// defs returns the column definitions in effective order
func (c *columnSet) defs() []string {
	defs := make([]string, len(c.names))
	for i, n := range c.names {
		defs[i] = c.byCol[n]
	}
	return defs
}
