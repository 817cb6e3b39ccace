package report

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/placementcal/placement-calendar-bot/internal/core/domain"
)

func TestSummary_HasActivity(t *testing.T) {
	s := NewSummary("run1", time.Now())
	assert.False(t, s.HasActivity())

	s.RecordDeduplicated()
	assert.False(t, s.HasActivity(), "duplicates alone are not worth a mail")

	s.RecordCreated("Drive", time.Now())
	assert.True(t, s.HasActivity())
}

func TestSummary_Render(t *testing.T) {
	start := time.Date(2025, time.September, 15, 8, 0, 0, 0, time.UTC)
	s := NewSummary("ab12cd34", start)
	s.Fetched = 3
	s.Duration = 4200 * time.Millisecond

	s.RecordDecision(domain.Message{Subject: "Canteen menu"}, domain.Decision{
		Disposition: domain.DispositionNotRelevant,
		Reason:      "no placement keywords",
	})
	s.RecordCreated("Pre-Placement Talk - XYZ Corp", time.Date(2025, time.November, 12, 11, 0, 0, 0, time.UTC))
	s.RecordError(domain.Message{Subject: "Interview schedule"}, errors.New("calendar create: boom"))

	body := s.Render()

	assert.Contains(t, body, "run ab12cd34")
	assert.Contains(t, body, "Messages fetched:    3")
	assert.Contains(t, body, "Events created:      1")
	assert.Contains(t, body, "Errors:              1")
	assert.Contains(t, body, "not_relevant   1")
	assert.Contains(t, body, "created: Pre-Placement Talk - XYZ Corp at 2025-11-12 11:00")
	assert.Contains(t, body, "error: Interview schedule: calendar create: boom")
}

func TestSummary_NoteCapped(t *testing.T) {
	s := NewSummary("run1", time.Now())

	for i := 0; i < maxNotes+10; i++ {
		s.RecordError(domain.Message{Subject: "x"}, errors.New("boom"))
	}

	assert.Equal(t, maxNotes+10, s.Errors)
	assert.Len(t, s.notes, maxNotes)
}
