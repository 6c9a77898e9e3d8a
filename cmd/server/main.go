// Command server runs the movie platform API.
//
// Configuration comes from the environment (and an optional .env file);
// see internal/config for the full list. Run cmd/migrate before the first
// start, or set DB_AUTO_MIGRATE=true in development.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/sakif/movie-platform/internal/config"
	"github.com/sakif/movie-platform/internal/logger"
	"github.com/sakif/movie-platform/internal/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.IsDevelopment(), cfg.SentryDSN)
	if err != nil {
		return err
	}
	defer log.Flush()
	slog.SetDefault(log.Logger)

	srv, err := server.New(context.Background(), cfg, log.Logger)
	if err != nil {
		log.Error("failed to create server", slog.String("error", err.Error()))
		return err
	}

	// Start blocks until SIGINT/SIGTERM.
	if err := srv.Start(); err != nil {
		log.Error("server error", slog.String("error", err.Error()))
		return err
	}
	return nil
}
