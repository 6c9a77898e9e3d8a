// Command migrate applies or rolls back the database schema.
//
//	migrate up       apply every pending migration (default)
//	migrate down     roll back the latest migration
//	migrate status   print the current schema version
//
// It reads the same DB_* settings as the server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/sakif/movie-platform/internal/config"
	"github.com/sakif/movie-platform/internal/logger"
	"github.com/sakif/movie-platform/internal/repository/sqlstore"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [up|down|status]\n", os.Args[0])
	}
	flag.Parse()

	command := "up"
	if flag.NArg() > 0 {
		command = flag.Arg(0)
	}

	if err := run(command); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(command string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.IsDevelopment(), cfg.SentryDSN)
	if err != nil {
		return err
	}
	defer log.Flush()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := sqlstore.Open(ctx, cfg.DB.Driver, cfg.DB.DSN())
	if err != nil {
		return err
	}
	defer db.Close()

	switch command {
	case "up":
		err = db.Migrate(ctx)
	case "down":
		err = db.MigrateDown(ctx)
	case "status":
	default:
		flag.Usage()
		return fmt.Errorf("unknown command %q", command)
	}
	if err != nil {
		return err
	}

	version, err := db.MigrationVersion(ctx)
	if err != nil {
		return err
	}
	log.Info("schema version", slog.String("command", command), slog.Int64("version", version))
	return nil
}
