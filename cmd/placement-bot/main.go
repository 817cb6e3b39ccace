package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/placementcal/placement-calendar-bot/internal/app"
	"github.com/placementcal/placement-calendar-bot/internal/platform/config"
	"github.com/placementcal/placement-calendar-bot/internal/storage"
)

func main() {
	mode := flag.String("mode", "run", "Service mode (run, worker)")

	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := newLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var database *storage.DB

	if cfg.DedupBackend == "postgres" {
		database, err = storage.New(ctx, cfg.PostgresDSN, &logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer database.Close()

		if err := database.Migrate(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to run migrations")
		}
	}

	application, err := app.New(ctx, cfg, database, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to wire application")
	}

	if err := runMode(ctx, application, *mode); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info().Msg("application stopped")
			return
		}

		logger.Fatal().Err(err).Msg("application error")
	}
}

func newLogger(appEnv string) zerolog.Logger {
	if appEnv == "local" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	}

	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

func runMode(ctx context.Context, application *app.App, mode string) error {
	switch mode {
	case "run":
		return application.RunOnce(ctx)
	case "worker":
		// Health server lives alongside the worker loop only; one-shot runs
		// have nothing long-lived to probe.
		go func() {
			if err := application.StartHealthServer(ctx); err != nil {
				log.Printf("health check server error: %v", err)
			}
		}()

		return application.RunWorker(ctx)
	default:
		log.Fatalf("Usage: %s --mode=[run|worker]", os.Args[0])

		return nil
	}
}
