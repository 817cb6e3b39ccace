// Package report aggregates the outcome of one processing run and renders
// the plain-text summary that can be mailed back to the account owner.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/placementcal/placement-calendar-bot/internal/core/domain"
)

const maxNotes = 20

// Summary accumulates per-run counters. Not safe for concurrent use; one
// run owns one Summary.
type Summary struct {
	RunID     string
	StartedAt time.Time
	Duration  time.Duration

	Fetched      int
	Created      int
	Deduplicated int
	Errors       int

	Skipped map[domain.Disposition]int

	notes []string
}

// NewSummary starts an empty summary for one run.
func NewSummary(runID string, startedAt time.Time) *Summary {
	return &Summary{
		RunID:     runID,
		StartedAt: startedAt,
		Skipped:   make(map[domain.Disposition]int),
	}
}

// RecordDecision tallies one message's verdict.
func (s *Summary) RecordDecision(msg domain.Message, decision domain.Decision) {
	if decision.Skipped() {
		s.Skipped[decision.Disposition]++

		if decision.Reason != "" {
			s.note(fmt.Sprintf("%s: %s (%s)", decision.Disposition, truncate(msg.Subject, 60), decision.Reason))
		}

		return
	}
}

// RecordCreated tallies one calendar event creation.
func (s *Summary) RecordCreated(title string, start time.Time) {
	s.Created++
	s.note(fmt.Sprintf("created: %s at %s", truncate(title, 60), start.Format("2006-01-02 15:04")))
}

// RecordDeduplicated tallies an emission suppressed by an idempotency guard.
func (s *Summary) RecordDeduplicated() {
	s.Deduplicated++
}

// RecordError tallies a per-message failure.
func (s *Summary) RecordError(msg domain.Message, err error) {
	s.Errors++
	s.note(fmt.Sprintf("error: %s: %v", truncate(msg.Subject, 60), err))
}

func (s *Summary) note(line string) {
	if len(s.notes) < maxNotes {
		s.notes = append(s.notes, line)
	}
}

// HasActivity reports whether anything worth mailing happened.
func (s *Summary) HasActivity() bool {
	return s.Created > 0 || s.Errors > 0
}

// Render produces the summary body.
func (s *Summary) Render() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Placement bot run %s\n", s.RunID)
	fmt.Fprintf(&b, "Started: %s, took %s\n\n", s.StartedAt.Format(time.RFC1123), s.Duration.Round(time.Second))
	fmt.Fprintf(&b, "Messages fetched:    %d\n", s.Fetched)
	fmt.Fprintf(&b, "Events created:      %d\n", s.Created)
	fmt.Fprintf(&b, "Duplicates skipped:  %d\n", s.Deduplicated)
	fmt.Fprintf(&b, "Errors:              %d\n", s.Errors)

	if len(s.Skipped) > 0 {
		b.WriteString("\nSkipped messages:\n")

		dispositions := make([]string, 0, len(s.Skipped))
		for d := range s.Skipped {
			dispositions = append(dispositions, string(d))
		}

		sort.Strings(dispositions)

		for _, d := range dispositions {
			fmt.Fprintf(&b, "  %-14s %d\n", d, s.Skipped[domain.Disposition(d)])
		}
	}

	if len(s.notes) > 0 {
		b.WriteString("\nDetails:\n")

		for _, line := range s.notes {
			fmt.Fprintf(&b, "  - %s\n", line)
		}
	}

	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}

	return s[:n] + "..."
}
