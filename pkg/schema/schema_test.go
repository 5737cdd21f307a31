package schema

import (
	"testing"
)

func TestParseBool(t *testing.T) {
	tests := []struct {
		name string
		s    string
		def  bool
		want bool
	}{
		{"absent uses default true", "", true, true},
		{"absent uses default false", "", false, false},
		{"true", "true", false, true},
		{"TRUE", "TRUE", false, true},
		{"yes", "yes", false, true},
		{"Yes", "Yes", false, true},
		{"1", "1", false, true},
		{"false", "false", true, false},
		{"FALSE", "FALSE", true, false},
		{"0", "0", true, false},
		{"garbage overrides default", "garbage", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseBool(tt.s, tt.def); got != tt.want {
				t.Errorf("ParseBool(%q, %v) = %v, want %v", tt.s, tt.def, got, tt.want)
			}
		})
	}
}

func TestQualify(t *testing.T) {
	if got := Qualify("", "users"); got != "users" {
		t.Errorf("unqualified name changed: %q", got)
	}
	if got := Qualify("billing", "orders"); got != "billing.orders" {
		t.Errorf("qualified name = %q, want billing.orders", got)
	}
}

func TestCommandQualifiedName(t *testing.T) {
	cmd := Command{Kind: AddTable, Name: "users"}
	if got := cmd.QualifiedName(); got != "users" {
		t.Errorf("QualifiedName() = %q, want users", got)
	}

	cmd.Namespace = "auth"
	if got := cmd.QualifiedName(); got != "auth.users" {
		t.Errorf("QualifiedName() = %q, want auth.users", got)
	}
}

func TestDocumentTableNames(t *testing.T) {
	doc := &Document{Commands: []Command{
		{Kind: CreateExtension, Name: "pgcrypto"},
		{Kind: AddTable, Name: "users"},
		{Kind: RemoveTable, Name: "carts"},
		{Kind: AddTable, Name: "orders"},
		{Kind: AddTable}, // nameless, skipped
	}}

	names := doc.TableNames()
	if len(names) != 2 {
		t.Fatalf("expected 2 table names, got %d: %v", len(names), names)
	}
	if names[0] != "users" || names[1] != "orders" {
		t.Errorf("unexpected table names: %v", names)
	}
}

func TestCommandHasColumn(t *testing.T) {
	cmd := Command{
		Kind: AddTable,
		Name: "users",
		Children: []Operation{
			{Kind: AddColumn, Name: "id", Type: "UUID"},
			{Kind: RemoveColumn, Name: "email"},
		},
	}

	if !cmd.HasColumn("id") {
		t.Error("HasColumn should return true for 'id'")
	}

	// removeColumn does not count as a declared column
	if cmd.HasColumn("email") {
		t.Error("HasColumn should return false for 'email'")
	}

	if cmd.HasColumn("missing") {
		t.Error("HasColumn should return false for 'missing'")
	}
}
