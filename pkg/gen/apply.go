package gen

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// ApplyOptions configures how generated statements are applied
type ApplyOptions struct {
	DryRun bool
}

// Apply executes generated statements against a database in one transaction.
// The statement list form is used rather than the script text so trigger
// function bodies, which contain semicolons, need no re-splitting.
func Apply(ctx context.Context, db *sql.DB, stmts []string, opts ApplyOptions) error {
	if opts.DryRun || len(stmts) == 0 {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, stmt := range stmts {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" || strings.HasPrefix(stmt, "--") {
			continue
		}
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("execute statement: %w\nSQL: %s", err, stmt)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	return nil
}
