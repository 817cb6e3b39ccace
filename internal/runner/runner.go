// Package runner drives one processing cycle end to end: acquire the run
// lock, prune expired state, fetch mail, evaluate each message through the
// engine, and emit guarded calendar events. Every per-message failure is
// isolated; only a failed lock acquisition aborts a cycle.
package runner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/placementcal/placement-calendar-bot/internal/calendar"
	"github.com/placementcal/placement-calendar-bot/internal/core/domain"
	"github.com/placementcal/placement-calendar-bot/internal/core/errors"
	"github.com/placementcal/placement-calendar-bot/internal/dedup"
	"github.com/placementcal/placement-calendar-bot/internal/engine"
	"github.com/placementcal/placement-calendar-bot/internal/extract"
	"github.com/placementcal/placement-calendar-bot/internal/ingest"
	"github.com/placementcal/placement-calendar-bot/internal/platform/observability"
	"github.com/placementcal/placement-calendar-bot/internal/platform/worker"
	"github.com/placementcal/placement-calendar-bot/internal/report"
	"github.com/placementcal/placement-calendar-bot/internal/storage"
)

var (
	_ Fetcher          = (*ingest.Gmail)(nil)
	_ SummaryMailer    = (*ingest.Gmail)(nil)
	_ Calendar         = (*calendar.Google)(nil)
	_ ProcessedTracker = (*storage.DB)(nil)
	_ Locker           = PGLocker{}
	_ Locker           = (*dedup.RunLease)(nil)
)

// Fetcher pulls candidate messages from the mailbox.
type Fetcher interface {
	Fetch(ctx context.Context, since time.Time) ([]domain.Message, error)
	MarkProcessed(ctx context.Context, msgID string) error
}

// Calendar is the event collaborator.
type Calendar interface {
	Exists(ctx context.Context, title string, start time.Time) (bool, error)
	Create(ctx context.Context, title string, start, end time.Time, location, description string, reminderMinutes []int) (string, error)
}

// Locker serializes runs. Release must be called when ok is true.
type Locker interface {
	TryLock(ctx context.Context) (release func(context.Context) error, ok bool, err error)
}

// ProcessedTracker remembers which messages already have a recorded verdict.
type ProcessedTracker interface {
	IsMessageProcessed(ctx context.Context, messageID string) (bool, error)
	MarkMessageProcessed(ctx context.Context, messageID, threadID, disposition, reason string) error
	DeleteProcessedOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// SummaryMailer delivers the run summary.
type SummaryMailer interface {
	SendSelf(ctx context.Context, to, subject, body string) error
}

// Options carries the runner's collaborators and tuning.
type Options struct {
	Fetcher   Fetcher
	Engine    *engine.Engine
	Store     dedup.Store
	Calendar  Calendar
	Locker    Locker
	Processed ProcessedTracker
	Mailer    SummaryMailer

	SearchWindow time.Duration
	Retention    time.Duration

	// PortalURL replaces the named-portal sentinel in event descriptions
	// when the notification carries no registration URL.
	PortalURL string

	SendSummary   bool
	SummaryTo     string
	MarkWithLabel bool

	Logger zerolog.Logger
}

// Runner executes processing cycles.
type Runner struct {
	opts Options
}

// New creates a runner. Fetcher, Engine, Store and Calendar are required;
// Locker, Processed and Mailer degrade to no-ops when nil.
func New(opts Options) *Runner {
	if opts.Locker == nil {
		opts.Locker = NopLocker{}
	}

	return &Runner{opts: opts}
}

// Run executes one full cycle. Returns ErrLockNotAcquired when another run
// holds the lock; the caller decides whether that is fatal.
func (r *Runner) Run(ctx context.Context) error {
	runID := uuid.NewString()[:8]
	logger := r.opts.Logger.With().Str("run_id", runID).Logger()
	started := time.Now()

	release, ok, err := r.opts.Locker.TryLock(ctx)
	if err != nil {
		observability.RunsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("acquire run lock: %w", err)
	}

	if !ok {
		observability.RunsTotal.WithLabelValues("lock_busy").Inc()
		logger.Warn().Msg("another run holds the lock, skipping cycle")

		return errors.ErrLockNotAcquired
	}

	defer func() {
		if err := release(ctx); err != nil {
			logger.Warn().Err(err).Msg("releasing run lock failed")
		}
	}()

	r.cleanup(ctx, started, logger)

	summary := report.NewSummary(runID, started)

	messages, err := r.opts.Fetcher.Fetch(ctx, started.Add(-r.opts.SearchWindow))
	if err != nil {
		observability.RunsTotal.WithLabelValues("error").Inc()
		observability.CollaboratorErrors.WithLabelValues("fetcher").Inc()

		return fmt.Errorf("fetch messages: %w", err)
	}

	summary.Fetched = len(messages)
	observability.MessagesFetched.Add(float64(len(messages)))
	logger.Info().Int("count", len(messages)).Msg("fetched messages")

	for _, msg := range messages {
		r.processOne(ctx, msg, started, summary, logger)
	}

	summary.Duration = time.Since(started)

	r.sendSummary(ctx, summary, logger)

	observability.RunsTotal.WithLabelValues("ok").Inc()
	observability.RunDurationSeconds.Observe(summary.Duration.Seconds())

	logger.Info().
		Int("fetched", summary.Fetched).
		Int("created", summary.Created).
		Int("deduplicated", summary.Deduplicated).
		Int("errors", summary.Errors).
		Dur("took", summary.Duration).
		Msg("run complete")

	return nil
}

// cleanup trims dedup keys and processed-message records past retention.
func (r *Runner) cleanup(ctx context.Context, now time.Time, logger zerolog.Logger) {
	if r.opts.Retention <= 0 {
		return
	}

	cutoff := now.Add(-r.opts.Retention)

	pruned, err := r.opts.Store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		logger.Warn().Err(err).Msg("dedup retention cleanup failed")
	} else if pruned > 0 {
		observability.DedupKeysPruned.Add(float64(pruned))
		logger.Info().Int64("pruned", pruned).Msg("expired dedup keys removed")
	}

	if r.opts.Processed != nil {
		if _, err := r.opts.Processed.DeleteProcessedOlderThan(ctx, cutoff); err != nil {
			logger.Warn().Err(err).Msg("processed retention cleanup failed")
		}
	}
}

// processOne isolates a single message: a panic or collaborator failure is
// recorded and the batch moves on.
func (r *Runner) processOne(ctx context.Context, msg domain.Message, now time.Time, summary *report.Summary, logger zerolog.Logger) {
	defer worker.RecoverPanic(&logger, "process message")

	msgLogger := logger.With().Str("message_id", msg.ID).Logger()

	if r.opts.Processed != nil {
		done, err := r.opts.Processed.IsMessageProcessed(ctx, msg.ID)
		if err != nil {
			msgLogger.Warn().Err(err).Msg("processed lookup failed")
		} else if done {
			observability.EventsDeduplicated.WithLabelValues("message").Inc()
			return
		}
	}

	decision := r.opts.Engine.Evaluate(msg, now)
	observability.MessagesProcessed.WithLabelValues(string(decision.Disposition)).Inc()
	summary.RecordDecision(msg, decision)

	msgLogger.Debug().
		Str("disposition", string(decision.Disposition)).
		Str("reason", decision.Reason).
		Int("events", len(decision.Events)).
		Msg("message evaluated")

	if !decision.Skipped() {
		if err := r.emit(ctx, msg, decision, summary, msgLogger); err != nil {
			summary.RecordError(msg, err)
			msgLogger.Error().Err(err).Msg("emission failed")

			return
		}
	}

	r.markProcessed(ctx, msg, decision, msgLogger)
}

// emit pushes each planned event through the two idempotency guards: the
// dedup store first, then a calendar existence probe. A duplicate found by
// the probe is backfilled into the store so the cheaper guard wins next time.
func (r *Runner) emit(ctx context.Context, msg domain.Message, decision domain.Decision, summary *report.Summary, logger zerolog.Logger) error {
	description := buildDescription(msg, decision, r.opts.PortalURL)

	for _, event := range decision.Events {
		seen, err := r.opts.Store.Has(ctx, event.Key)
		if err != nil {
			observability.CollaboratorErrors.WithLabelValues("store").Inc()
			return fmt.Errorf("dedup lookup: %w", err)
		}

		if seen {
			observability.EventsDeduplicated.WithLabelValues("store").Inc()
			summary.RecordDeduplicated()

			continue
		}

		exists, err := r.opts.Calendar.Exists(ctx, event.Title, event.Start)
		if err != nil {
			observability.CollaboratorErrors.WithLabelValues("calendar").Inc()
			return fmt.Errorf("calendar existence check: %w", err)
		}

		if exists {
			observability.EventsDeduplicated.WithLabelValues("calendar").Inc()
			summary.RecordDeduplicated()

			if err := r.opts.Store.Put(ctx, event.Key, time.Now()); err != nil {
				logger.Warn().Err(err).Msg("dedup backfill failed")
			}

			continue
		}

		eventID, err := r.opts.Calendar.Create(ctx, event.Title, event.Start, event.End, decision.Venue, description, event.ReminderMinutes)
		if err != nil {
			observability.CollaboratorErrors.WithLabelValues("calendar").Inc()
			return fmt.Errorf("calendar create: %w", err)
		}

		if err := r.opts.Store.Put(ctx, event.Key, time.Now()); err != nil {
			observability.CollaboratorErrors.WithLabelValues("store").Inc()
			logger.Warn().Err(err).Str("event_id", eventID).Msg("dedup record failed after create")
		}

		observability.EventsCreated.Inc()
		summary.RecordCreated(event.Title, event.Start)
		logger.Info().Str("event_id", eventID).Str("title", event.Title).Time("start", event.Start).Msg("calendar event created")
	}

	return nil
}

func (r *Runner) markProcessed(ctx context.Context, msg domain.Message, decision domain.Decision, logger zerolog.Logger) {
	if r.opts.Processed != nil {
		err := r.opts.Processed.MarkMessageProcessed(ctx, msg.ID, msg.ThreadID, string(decision.Disposition), decision.Reason)
		if err != nil {
			logger.Warn().Err(err).Msg("mark processed failed")
		}
	}

	if r.opts.MarkWithLabel {
		if err := r.opts.Fetcher.MarkProcessed(ctx, msg.ID); err != nil {
			logger.Warn().Err(err).Msg("label apply failed")
		}
	}
}

func (r *Runner) sendSummary(ctx context.Context, summary *report.Summary, logger zerolog.Logger) {
	if !r.opts.SendSummary || r.opts.Mailer == nil || !summary.HasActivity() {
		return
	}

	subject := fmt.Sprintf("Placement bot summary: %d created, %d errors", summary.Created, summary.Errors)

	if err := r.opts.Mailer.SendSelf(ctx, r.opts.SummaryTo, subject, summary.Render()); err != nil {
		observability.CollaboratorErrors.WithLabelValues("mailer").Inc()
		logger.Warn().Err(err).Msg("summary delivery failed")
	}
}

// buildDescription renders the calendar event body from the decision. The
// named-portal sentinel (no URL in the mail, portal mentioned by name) is
// swapped for the configured portal URL when one is known.
func buildDescription(msg domain.Message, decision domain.Decision, portalURL string) string {
	var b strings.Builder

	b.WriteString("From: " + msg.Sender + "\n")
	b.WriteString("Venue: " + decision.Venue + "\n")

	if decision.Venue == extract.VenueFallback || decision.Venue == extract.VenueOnline {
		b.WriteString("Venue not confirmed yet, watch for a follow-up mail.\n")
	}

	if minutes := decision.DateTimes.DurationMinutes; minutes != nil && *minutes > 0 {
		b.WriteString(fmt.Sprintf("Duration: %d min\n", *minutes))
	}

	switch {
	case decision.FoundInList:
		b.WriteString("Status: you are named in this notification.\n")
	case decision.OpenToAll:
		b.WriteString("Status: open to all eligible students.\n")
	}

	if len(decision.Eligibility.Criteria) > 0 {
		b.WriteString("Criteria: " + strings.Join(decision.Eligibility.Criteria, "; ") + "\n")
	}

	if link := decision.RegLink; link != "" {
		if portalURL != "" && !strings.HasPrefix(link, "http") {
			link = portalURL
		}

		b.WriteString("Registration: " + link + "\n")
	}

	if deadline := decision.DateTimes.RegistrationDeadline; deadline != nil {
		b.WriteString("Register before: " + deadline.Format("2006-01-02 15:04") + "\n")
	}

	b.WriteString("Checklist: college ID card, updated resume, pen.\n")

	return b.String()
}

// NopLocker allows unserialised runs for backends without shared state.
type NopLocker struct{}

func (NopLocker) TryLock(context.Context) (func(context.Context) error, bool, error) {
	return func(context.Context) error { return nil }, true, nil
}

// PGLocker adapts the Postgres advisory lock to the Locker interface.
type PGLocker struct {
	DB     *storage.DB
	LockID int64
}

func (l PGLocker) TryLock(ctx context.Context) (func(context.Context) error, bool, error) {
	lock, ok, err := l.DB.TryAcquireRunLock(ctx, l.LockID)
	if err != nil || !ok {
		return nil, false, err
	}

	return lock.Release, true, nil
}
