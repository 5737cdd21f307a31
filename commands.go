package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/lib/pq"
	"github.com/urfave/cli/v3"

	"github.com/veldtlabs/pg-schema-gen/pkg/drizzle"
	"github.com/veldtlabs/pg-schema-gen/pkg/gen"
	"github.com/veldtlabs/pg-schema-gen/pkg/parser"
)

var commands = []*cli.Command{sqlCMD, drizzleCMD, applyCMD}

var sqlCMD = &cli.Command{
	Name:      "sql",
	Usage:     "Generate an idempotent PostgreSQL migration script from an XML schema document",
	ArgsUsage: "<schema.xml>",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "output",
			Aliases:  []string{"o"},
			Usage:    "Path to the output SQL file",
			Required: true,
		},
		&cli.BoolFlag{
			Name:  "drop-history",
			Usage: "Drop a table's history table when the table itself is removed",
		},
	},
	Action: func(ctx context.Context, cmd *cli.Command) error {
		input := cmd.Args().First()
		if input == "" {
			return fmt.Errorf("missing input schema document")
		}

		doc, err := parser.FromFile(input)
		if err != nil {
			return err
		}

		script, warnings := gen.Script(doc, gen.Options{
			DropHistory: cmd.Bool("drop-history"),
		})
		printWarnings(warnings)

		output := cmd.String("output")
		if err := writeOutput(output, script+"\n"); err != nil {
			return err
		}

		fmt.Printf("SQL schema written to %s\n", output)
		return nil
	},
}

var drizzleCMD = &cli.Command{
	Name:      "drizzle",
	Usage:     "Generate Drizzle ORM table definitions from an XML schema document",
	ArgsUsage: "<schema.xml>",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "output",
			Aliases:  []string{"o"},
			Usage:    "Path to the output Drizzle schema file",
			Required: true,
		},
	},
	Action: func(ctx context.Context, cmd *cli.Command) error {
		input := cmd.Args().First()
		if input == "" {
			return fmt.Errorf("missing input schema document")
		}

		doc, err := parser.FromFile(input)
		if err != nil {
			return err
		}

		out, warnings := drizzle.Generate(doc)
		printWarnings(warnings)

		output := cmd.String("output")
		if err := writeOutput(output, out); err != nil {
			return err
		}

		fmt.Printf("Drizzle schema written to %s\n", output)
		return nil
	},
}

var applyCMD = &cli.Command{
	Name:      "apply",
	Usage:     "Generate the migration and apply it to a PostgreSQL database",
	ArgsUsage: "<schema.xml>",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "dsn",
			Usage:    "PostgreSQL connection string",
			Required: true,
		},
		&cli.BoolFlag{
			Name:  "dry-run",
			Usage: "Show generated statements without executing them",
		},
		&cli.BoolFlag{
			Name:  "drop-history",
			Usage: "Drop a table's history table when the table itself is removed",
		},
	},
	Action: func(ctx context.Context, cmd *cli.Command) error {
		input := cmd.Args().First()
		if input == "" {
			return fmt.Errorf("missing input schema document")
		}

		doc, err := parser.FromFile(input)
		if err != nil {
			return err
		}

		stmts, warnings := gen.Statements(doc, gen.Options{
			DropHistory: cmd.Bool("drop-history"),
		})
		printWarnings(warnings)

		if len(stmts) == 0 {
			fmt.Println("No statements generated.")
			return nil
		}

		if cmd.Bool("dry-run") {
			for _, stmt := range stmts {
				fmt.Println(stmt)
				fmt.Println()
			}
			fmt.Println("Dry run - no changes applied.")
			return nil
		}

		db, err := sql.Open("postgres", cmd.String("dsn"))
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer func() {
			_ = db.Close()
		}()

		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}

		if err := gen.Apply(ctx, db, stmts, gen.ApplyOptions{}); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}

		fmt.Printf("Applied %d statements.\n", len(stmts))
		return nil
	},
}

func printWarnings(warnings []string) {
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
	}
}

func writeOutput(path, content string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(filepath.Clean(path), []byte(content), 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
