package gen

import (
	"strings"
	"testing"

	"github.com/veldtlabs/pg-schema-gen/pkg/schema"
)

func historyDoc(namespace string) *schema.Document {
	id := addColumn("id", "UUID")
	id.PrimaryKey = true
	email := addColumn("email", "VARCHAR(255)")
	email.Nullable = false

	return &schema.Document{Commands: []schema.Command{
		{Kind: schema.AddTable, Tag: "addTable", Name: "users", Namespace: namespace,
			History: true, Children: []schema.Operation{id, email}},
	}}
}

func TestHistory_TableShape(t *testing.T) {
	stmts, warnings := Statements(historyDoc(""), Options{})
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}

	histCreate := findStatement(t, stmts, "CREATE TABLE IF NOT EXISTS history_users")
	for _, col := range []string{
		"historyid BIGSERIAL PRIMARY KEY",
		"changed_at TIMESTAMP WITH TIME ZONE DEFAULT now()",
		"operation CHAR(1)",
		"historyjson JSONB",
	} {
		if !strings.Contains(histCreate, col) {
			t.Errorf("history table missing column %q:\n%s", col, histCreate)
		}
	}
}

func TestHistory_TriggerFunction(t *testing.T) {
	stmts, _ := Statements(historyDoc(""), Options{})

	fn := findStatement(t, stmts, "CREATE OR REPLACE FUNCTION log_history_users()")
	for _, want := range []string{
		"RETURNS trigger",
		"TG_OP = 'INSERT'",
		"VALUES ('I', to_jsonb(NEW))",
		"TG_OP = 'UPDATE'",
		"jsonb_object_agg",
		"IS DISTINCT FROM",
		"VALUES ('U', COALESCE(diff, '{}'::jsonb))",
		"TG_OP = 'DELETE'",
		"VALUES ('D', to_jsonb(OLD))",
		"LANGUAGE plpgsql",
	} {
		if !strings.Contains(fn, want) {
			t.Errorf("trigger function missing %q:\n%s", want, fn)
		}
	}
}

func TestHistory_TriggerBinding(t *testing.T) {
	stmts, _ := Statements(historyDoc(""), Options{})

	findStatement(t, stmts, "DROP TRIGGER IF EXISTS log_history_users ON users;")
	trigger := findStatement(t, stmts, "CREATE TRIGGER log_history_users")
	want := "CREATE TRIGGER log_history_users AFTER INSERT OR UPDATE OR DELETE ON users FOR EACH ROW EXECUTE FUNCTION log_history_users();"
	if trigger != want {
		t.Errorf("trigger = %q, want %q", trigger, want)
	}

	// exactly one function and one trigger per tracked table
	if n := countStatements(stmts, "CREATE OR REPLACE FUNCTION"); n != 1 {
		t.Errorf("got %d trigger functions, want 1", n)
	}
	if n := countStatements(stmts, "CREATE TRIGGER"); n != 1 {
		t.Errorf("got %d triggers, want 1", n)
	}
}

func TestHistory_Namespaced(t *testing.T) {
	stmts, _ := Statements(historyDoc("auth"), Options{})

	findStatement(t, stmts, "CREATE TABLE IF NOT EXISTS auth.history_users")
	findStatement(t, stmts, "CREATE OR REPLACE FUNCTION auth.log_history_users()")
	findStatement(t, stmts, "DROP TRIGGER IF EXISTS log_history_users ON auth.users;")

	trigger := findStatement(t, stmts, "CREATE TRIGGER log_history_users")
	if !strings.Contains(trigger, "ON auth.users") ||
		!strings.Contains(trigger, "EXECUTE FUNCTION auth.log_history_users()") {
		t.Errorf("trigger not namespace-qualified: %q", trigger)
	}
}

func TestHistory_HistoryRowInsertsTargetHistoryTable(t *testing.T) {
	stmts, _ := Statements(historyDoc("auth"), Options{})

	fn := findStatement(t, stmts, "CREATE OR REPLACE FUNCTION")
	if n := strings.Count(fn, "INSERT INTO auth.history_users"); n != 3 {
		t.Errorf("trigger function has %d inserts into auth.history_users, want 3:\n%s", n, fn)
	}
}

func TestHistory_SkippedWithoutColumns(t *testing.T) {
	doc := &schema.Document{Commands: []schema.Command{
		{Kind: schema.AddTable, Tag: "addTable", Name: "ghost", History: true,
			Children: []schema.Operation{
				addColumn("a", "TEXT"),
				{Kind: schema.RemoveColumn, Tag: "removeColumn", Name: "a"},
			}},
	}}

	stmts, warnings := Statements(doc, Options{})
	for _, s := range stmts {
		if strings.Contains(s, "history") || strings.Contains(s, "TRIGGER") {
			t.Errorf("history artifact generated for empty table: %q", s)
		}
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "skipping history generation") {
		t.Errorf("warnings = %v, want history skip warning", warnings)
	}
}

func findStatement(t *testing.T, stmts []string, prefix string) string {
	t.Helper()
	for _, s := range stmts {
		if strings.HasPrefix(s, prefix) {
			return s
		}
	}
	t.Fatalf("no statement starting with %q in %q", prefix, stmts)
	return ""
}

func countStatements(stmts []string, prefix string) int {
	n := 0
	for _, s := range stmts {
		if strings.HasPrefix(s, prefix) {
			n++
		}
	}
	return n
}
