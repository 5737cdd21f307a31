package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	cmd := &cli.Command{
		EnableShellCompletion: true,
		Suggest:               true,
		Name:                  "pg-schema-gen",
		Version:               Version,
		Usage:                 "pg-schema-gen [command]",
		Description:           `Generates idempotent PostgreSQL migrations and Drizzle ORM table definitions from declarative XML schema documents`,
		DefaultCommand:        "help",
		Commands:              commands,
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cmd.Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}
