package gen

import (
	"fmt"

	"github.com/veldtlabs/pg-schema-gen/pkg/schema"
)

const (
	historyTablePrefix = "history_"
	triggerPrefix      = "log_history_"
)

// history emits the change-audit artifacts for a tracked table: a
// fixed-shape history table, a plpgsql trigger function recording each row
// change as JSON, and the trigger binding. Inserts and deletes record the
// full row; updates record only the keys whose values differ between OLD
// and NEW. Function and trigger are replaced idempotently, so re-running
// the script never produces duplicates.
func (g *generator) history(cmd *schema.Command, cols *columnSet) {
	if cols.len() == 0 {
		g.warnf("no effective columns for table %s; skipping history generation", cmd.Name)
		return
	}

	table := cmd.QualifiedName()
	histTable := schema.Qualify(cmd.Namespace, historyTablePrefix+cmd.Name)
	function := schema.Qualify(cmd.Namespace, triggerPrefix+cmd.Name)
	trigger := triggerPrefix + cmd.Name

	g.emit(fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    historyid BIGSERIAL PRIMARY KEY,
    changed_at TIMESTAMP WITH TIME ZONE DEFAULT now(),
    operation CHAR(1),
    historyjson JSONB
);`, histTable))

	g.emit(fmt.Sprintf(`CREATE OR REPLACE FUNCTION %s() RETURNS trigger AS $$
DECLARE
    diff JSONB;
BEGIN
    IF (TG_OP = 'INSERT') THEN
        INSERT INTO %s (operation, historyjson)
        VALUES ('I', to_jsonb(NEW));
        RETURN NEW;
    ELSIF (TG_OP = 'UPDATE') THEN
        SELECT jsonb_object_agg(n.key, n.value) INTO diff
        FROM jsonb_each(to_jsonb(NEW)) AS n
        WHERE to_jsonb(OLD) -> n.key IS DISTINCT FROM n.value;
        INSERT INTO %s (operation, historyjson)
        VALUES ('U', COALESCE(diff, '{}'::jsonb));
        RETURN NEW;
    ELSIF (TG_OP = 'DELETE') THEN
        INSERT INTO %s (operation, historyjson)
        VALUES ('D', to_jsonb(OLD));
        RETURN OLD;
    END IF;
    RETURN NULL;
END;
$$ LANGUAGE plpgsql;`, function, histTable, histTable, histTable))

	g.emit(
		fmt.Sprintf("DROP TRIGGER IF EXISTS %s ON %s;", trigger, table),
		fmt.Sprintf("CREATE TRIGGER %s AFTER INSERT OR UPDATE OR DELETE ON %s FOR EACH ROW EXECUTE FUNCTION %s();",
			trigger, table, function),
	)
}
