// Package engine composes the per-message verdict: is this notification
// relevant, is the reader eligible and named, and which calendar events
// should exist because of it.
//
// The engine is purely functional over one message and the immutable
// profile. It performs no I/O; the caller owns dedup checks, calendar
// writes, and persistence.
package engine

import (
	"time"

	"github.com/placementcal/placement-calendar-bot/internal/classify"
	"github.com/placementcal/placement-calendar-bot/internal/core/domain"
	"github.com/placementcal/placement-calendar-bot/internal/dedup"
	"github.com/placementcal/placement-calendar-bot/internal/eligibility"
	"github.com/placementcal/placement-calendar-bot/internal/extract"
	"github.com/placementcal/placement-calendar-bot/internal/identity"
)

const (
	// registrationWindow is the fixed span booked for a deadline reminder.
	registrationWindow = 30 * time.Minute

	placeholderHour = 10

	fallbackDays = 2
)

// Reminder offsets in minutes, by emission kind.
var (
	registrationReminders = []int{1440, 120}
	eventReminders        = []int{60, 15}
	fallbackReminders     = []int{1440, 60}
)

// Engine evaluates messages against one profile.
type Engine struct {
	classifier *classify.Classifier
	evaluator  *eligibility.Evaluator
	matcher    *identity.Matcher
	datetimes  *extract.DateTimeExtractor
	links      *extract.LinkSelector

	loc             *time.Location
	defaultDuration time.Duration
}

// Options carries the engine's fixed parameters.
type Options struct {
	Keywords        []string
	Profile         domain.Profile
	OpenVocabulary  []string
	PortalKeyword   string
	Location        *time.Location
	DefaultDuration time.Duration
}

// New wires the component chain for one profile.
func New(opts Options) *Engine {
	if opts.Location == nil {
		opts.Location = time.Local
	}

	if opts.DefaultDuration <= 0 {
		opts.DefaultDuration = time.Hour
	}

	openDet := eligibility.NewOpenToAllDetector(opts.OpenVocabulary)

	return &Engine{
		classifier:      classify.New(opts.Keywords),
		evaluator:       eligibility.New(opts.Profile, openDet),
		matcher:         identity.New(opts.Profile),
		datetimes:       extract.NewDateTimeExtractor(opts.Location),
		links:           extract.NewLinkSelector(opts.PortalKeyword),
		loc:             opts.Location,
		defaultDuration: opts.DefaultDuration,
	}
}

// Evaluate runs the full decision chain for one message. now anchors the
// placeholder and fallback emissions.
func (e *Engine) Evaluate(msg domain.Message, now time.Time) domain.Decision {
	if !e.classifier.Relevant(msg) {
		return domain.Decision{Disposition: domain.DispositionNotRelevant, Reason: "no placement keywords"}
	}

	surface := classify.NewSurface(msg)

	elig := e.evaluator.Evaluate(surface.Full)
	if elig.StrictlyIneligible {
		return domain.Decision{
			Disposition: domain.DispositionDisqualified,
			Reason:      elig.Reason,
			Eligibility: elig,
		}
	}

	match := e.findIdentity(msg, surface.Full)

	// Strict verification: a notice that neither names the reader nor opens
	// itself to everyone is someone else's notice, even when it carries a
	// perfectly extractable schedule.
	if !match.Found && !elig.IsOpenToAll {
		return domain.Decision{
			Disposition: domain.DispositionNotSelected,
			Reason:      "neither named nor open to all",
			Eligibility: elig,
		}
	}

	dts := e.datetimes.DateTimes(surface.Full)

	decision := domain.Decision{
		Disposition: domain.DispositionActionable,
		FoundInList: match.Found,
		OpenToAll:   elig.IsOpenToAll,
		Venue:       extract.Venue(msg, surface.Full, match.Venue),
		RegLink:     e.links.Select(surface.Full),
		Eligibility: elig,
		DateTimes:   dts,
	}

	e.planEvents(msg, &decision, now)

	return decision
}

// findIdentity scans the combined text first, then each attachment.
func (e *Engine) findIdentity(msg domain.Message, text string) identity.Match {
	if match := e.matcher.InText(text); match.Found {
		return match
	}

	for _, att := range msg.Attachments {
		if match := e.matcher.InAttachment(att); match.Found {
			return match
		}
	}

	return identity.Match{}
}

// planEvents derives the emissions for an actionable message. A parseable
// calendar invite attachment is authoritative: it becomes the only emission
// and every text-derived candidate, deadline included, is suppressed. The
// deadline emission is otherwise independent and may fire alongside the
// main event.
func (e *Engine) planEvents(msg domain.Message, decision *domain.Decision, now time.Time) {
	if ics, ok := e.inviteEvent(msg); ok {
		title := ics.Summary
		if title == "" {
			title = msg.Subject
		}

		if decision.Venue == extract.VenueFallback && ics.Location != "" {
			decision.Venue = ics.Location
		}

		decision.Events = append(decision.Events, e.plan(title, ics.Start, ics.End, eventReminders, msg.ThreadID))

		return
	}

	if deadline := decision.DateTimes.RegistrationDeadline; deadline != nil {
		decision.Events = append(decision.Events, e.plan(
			"Register: "+msg.Subject,
			*deadline,
			deadline.Add(registrationWindow),
			registrationReminders,
			msg.ThreadID,
		))
	}

	if eventTime := decision.DateTimes.EventDateTime; eventTime != nil {
		decision.Events = append(decision.Events, e.plan(
			msg.Subject,
			*eventTime,
			eventTime.Add(e.eventDuration(decision.DateTimes.DurationMinutes)),
			eventReminders,
			msg.ThreadID,
		))

		return
	}

	// No concrete event time. A personal mention or open invite with no
	// deadline gets a placeholder tomorrow; the two-days-out fallback below
	// is the last resort so an actionable message is never silently lost.
	if (decision.FoundInList || decision.OpenToAll) && decision.DateTimes.RegistrationDeadline == nil {
		start := atHour(now.AddDate(0, 0, 1), placeholderHour, e.loc)
		decision.Events = append(decision.Events, e.plan(
			msg.Subject, start, start.Add(e.defaultDuration), eventReminders, msg.ThreadID,
		))

		return
	}

	if len(decision.Events) == 0 {
		start := atHour(now.AddDate(0, 0, fallbackDays), placeholderHour, e.loc)
		decision.Events = append(decision.Events, e.plan(
			msg.Subject, start, start.Add(e.defaultDuration), fallbackReminders, msg.ThreadID,
		))
	}
}

// inviteEvent returns the first parseable calendar-invite attachment.
func (e *Engine) inviteEvent(msg domain.Message) (extract.ICSEvent, bool) {
	for _, att := range msg.Attachments {
		if !att.IsCalendarInvite() || att.ExtractedText == "" {
			continue
		}

		if event, ok := extract.ParseICS(att.ExtractedText, e.loc); ok {
			return event, true
		}
	}

	return extract.ICSEvent{}, false
}

// eventDuration substitutes the default when extraction produced nothing or
// a non-positive range.
func (e *Engine) eventDuration(minutes *int) time.Duration {
	if minutes == nil || *minutes <= 0 {
		return e.defaultDuration
	}

	return time.Duration(*minutes) * time.Minute
}

func (e *Engine) plan(title string, start, end time.Time, reminders []int, threadID string) domain.EventPlan {
	return domain.EventPlan{
		Key:             dedup.EventKey(title, start, threadID),
		Title:           title,
		Start:           start,
		End:             end,
		ReminderMinutes: reminders,
	}
}

func atHour(day time.Time, hour int, loc *time.Location) time.Time {
	local := day.In(loc)

	return time.Date(local.Year(), local.Month(), local.Day(), hour, 0, 0, 0, loc)
}
