// Package schema provides types for representing XML schema-migration documents
package schema

import "strings"

// Document represents a parsed schema-migration document.
// Command order matches document order; statement generation depends on it.
type Document struct {
	Commands []Command
}

// CommandKind identifies a top-level schema-change directive
type CommandKind string

const (
	CreateExtension CommandKind = "createExtension"
	AddTable        CommandKind = "addTable"
	RemoveTable     CommandKind = "removeTable"
	UnknownCommand  CommandKind = "unknown"
)

// Command is one top-level schema-change directive
type Command struct {
	Kind      CommandKind
	Tag       string // original element name, kept for warnings
	Name      string
	Namespace string // optional schema qualifier; empty means the database default
	History   bool   // change-history tracking requested
	Children  []Operation
}

// QualifiedName returns the table identifier, namespace-qualified when one was given
func (c *Command) QualifiedName() string {
	return Qualify(c.Namespace, c.Name)
}

// Qualify prefixes name with a namespace when one is present
func Qualify(namespace, name string) string {
	if namespace == "" {
		return name
	}
	return namespace + "." + name
}

// OpKind identifies a column-level operation inside an addTable command
type OpKind string

const (
	AddColumn     OpKind = "addColumn"
	RemoveColumn  OpKind = "removeColumn"
	AddForeignKey OpKind = "addForeignKey"
	AddIndex      OpKind = "addIndex"
	RemoveIndex   OpKind = "removeIndex"
	UnknownOp     OpKind = "unknown"
)

// Operation is one column-level schema operation.
// Only the fields relevant to its Kind are populated.
type Operation struct {
	Kind OpKind
	Tag  string // original element name, kept for warnings

	// addColumn / removeColumn / addIndex / removeIndex
	Name string

	// addColumn
	Type       string
	Nullable   bool    // defaults to true
	Default    *string // nil when the attribute was absent
	PrimaryKey bool
	Unique     bool

	// addForeignKey
	Column    string
	RefTable  string
	RefColumn string
	OnDelete  string
	OnUpdate  string

	// addIndex
	Columns string // verbatim comma-joined column list
	Update  bool
}

// ParseBool interprets a boolean attribute value.
// Absent attributes take the per-attribute default; present values are true
// iff they match "true", "yes" or "1" case-insensitively.
func ParseBool(s string, def bool) bool {
	if s == "" {
		return def
	}
	switch strings.ToLower(s) {
	case "true", "yes", "1":
		return true
	}
	return false
}

// TableNames returns the names of all addTable commands in document order
func (d *Document) TableNames() []string {
	var names []string
	for _, c := range d.Commands {
		if c.Kind == AddTable && c.Name != "" {
			names = append(names, c.Name)
		}
	}
	return names
}

// HasColumn checks whether an addTable command declares a column by name
func (c *Command) HasColumn(name string) bool {
	for _, op := range c.Children {
		if op.Kind == AddColumn && op.Name == name {
			return true
		}
	}
	return false
}
