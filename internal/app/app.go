// Package app provides the application bootstrap and runtime orchestration.
//
// The App type wires together all dependencies and exposes methods to run
// different operational modes:
//
//   - Run mode: one fetch-evaluate-emit cycle, then exit (cron-friendly)
//   - Worker mode: the same cycle on a ticker, with the health server
//
// The dedup backend is pluggable: Postgres (with processed-message tracking
// and the cross-instance run lock), Redis (TTL-based expiry), or in-memory
// for development.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/placementcal/placement-calendar-bot/internal/calendar"
	apperrors "github.com/placementcal/placement-calendar-bot/internal/core/errors"
	"github.com/placementcal/placement-calendar-bot/internal/dedup"
	"github.com/placementcal/placement-calendar-bot/internal/engine"
	"github.com/placementcal/placement-calendar-bot/internal/ingest"
	"github.com/placementcal/placement-calendar-bot/internal/platform/config"
	"github.com/placementcal/placement-calendar-bot/internal/platform/observability"
	"github.com/placementcal/placement-calendar-bot/internal/platform/worker"
	"github.com/placementcal/placement-calendar-bot/internal/runner"
	"github.com/placementcal/placement-calendar-bot/internal/storage"
)

const (
	workerName = "placement-run"

	// runLeaseTTL bounds how long a crashed holder blocks the next cycle on
	// the Redis backend.
	runLeaseTTL = 15 * time.Minute
)

// App holds the wired dependencies for one process.
type App struct {
	cfg      *config.Config
	database *storage.DB
	logger   *zerolog.Logger

	runner *runner.Runner
}

// New wires the full collaborator chain. database may be nil when the dedup
// backend does not need Postgres.
func New(ctx context.Context, cfg *config.Config, database *storage.DB, logger *zerolog.Logger) (*App, error) {
	gmail, err := ingest.NewGmail(ctx, ingest.Options{
		ClientID:       cfg.GoogleClientID,
		ClientSecret:   cfg.GoogleClientSecret,
		RefreshToken:   cfg.GoogleRefreshToken,
		AllowedSenders: cfg.AllowedSenders,
		ProcessedLabel: cfg.ProcessedLabel,
	}, *logger)
	if err != nil {
		return nil, fmt.Errorf("gmail init: %w", err)
	}

	gcal, err := calendar.NewGoogle(ctx, calendar.Credentials{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RefreshToken: cfg.GoogleRefreshToken,
	}, cfg.CalendarID, cfg.CalendarRPS, cfg.Location())
	if err != nil {
		return nil, fmt.Errorf("calendar init: %w", err)
	}

	store, locker, processed, err := buildDedup(cfg, database)
	if err != nil {
		return nil, err
	}

	eng := engine.New(engine.Options{
		Keywords:        cfg.Keywords(),
		Profile:         cfg.Profile(),
		OpenVocabulary:  config.OpenToAllVocabulary,
		PortalKeyword:   cfg.PortalKeyword,
		Location:        cfg.Location(),
		DefaultDuration: cfg.DefaultEventDuration,
	})

	run := runner.New(runner.Options{
		Fetcher:       gmail,
		Engine:        eng,
		Store:         store,
		Calendar:      gcal,
		Locker:        locker,
		Processed:     processed,
		Mailer:        gmail,
		SearchWindow:  cfg.SearchWindow,
		Retention:     cfg.Retention(),
		PortalURL:     cfg.PortalURL,
		SendSummary:   cfg.SendSummary,
		SummaryTo:     cfg.MyEmail,
		MarkWithLabel: cfg.ProcessedLabel != "",
		Logger:        *logger,
	})

	return &App{
		cfg:      cfg,
		database: database,
		logger:   logger,
		runner:   run,
	}, nil
}

// buildDedup selects the dedup store, run locker and processed-message
// tracker for the configured backend. Only Postgres offers all three.
func buildDedup(cfg *config.Config, database *storage.DB) (dedup.Store, runner.Locker, runner.ProcessedTracker, error) {
	switch cfg.DedupBackend {
	case "postgres":
		if database == nil {
			return nil, nil, nil, fmt.Errorf("%w: postgres backend without database", apperrors.ErrInvalidConfig)
		}

		store := storage.NewEventKeyStore(database)
		locker := runner.PGLocker{DB: database, LockID: storage.RunLockID}

		return store, locker, database, nil

	case "redis":
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("%w: parse redis url: %v", apperrors.ErrInvalidConfig, err)
		}

		client := redis.NewClient(opts)

		return dedup.NewRedisStore(client, cfg.Retention()), dedup.NewRunLease(client, runLeaseTTL), nil, nil

	case "memory":
		return dedup.NewMemoryStore(), nil, nil, nil

	default:
		return nil, nil, nil, fmt.Errorf("%w: unknown dedup backend %q", apperrors.ErrInvalidConfig, cfg.DedupBackend)
	}
}

// RunOnce executes a single processing cycle. A busy run lock is a clean
// exit: another instance already covers this window.
func (a *App) RunOnce(ctx context.Context) error {
	err := a.runner.Run(ctx)
	if apperrors.Is(err, apperrors.ErrLockNotAcquired) {
		return nil
	}

	return err
}

// RunWorker loops the processing cycle on the poll interval until the
// context ends. The first cycle starts immediately; a busy run lock or a
// failed cycle is logged and the loop keeps going.
func (a *App) RunWorker(ctx context.Context) error {
	return worker.Loop(ctx, worker.Config{
		Name:         workerName,
		PollInterval: a.cfg.PollInterval,
		Process:      a.runner.Run,
		OnError: func(err error) bool {
			if !apperrors.Is(err, apperrors.ErrLockNotAcquired) {
				a.logger.Error().Err(err).Msg("processing cycle failed")
			}

			return true
		},
		Logger: a.logger,
	})
}

// StartHealthServer serves /healthz, /readyz and /metrics until the context
// ends.
func (a *App) StartHealthServer(ctx context.Context) error {
	return observability.NewServer(a.database, a.cfg.HealthPort, a.logger).Start(ctx)
}
