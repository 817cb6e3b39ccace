package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/placementcal/placement-calendar-bot/internal/core/domain"
)

func newTestMatcher() *Matcher {
	return New(domain.Profile{
		Name:      "Arun Kumar",
		RegNumber: "REG123",
	})
}

func TestInText(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantFound bool
		wantVenue string
	}{
		{
			name:      "name present without venue",
			text:      "Shortlisted: Arun Kumar, Priya S",
			wantFound: true,
		},
		{
			name:      "reg number case insensitive",
			text:      "Candidates: reg123, reg456",
			wantFound: true,
		},
		{
			name:      "reg then venue co-location",
			text:      "Slot 2 - Registration No: REG123 - Venue: Lab 4 - 10:00 AM",
			wantFound: true,
			wantVenue: "Lab 4 - 10:00 AM",
		},
		{
			name:      "venue then name co-location",
			text:      "Venue: Seminar Hall, reporting for Arun Kumar",
			wantFound: true,
			wantVenue: "Seminar Hall, reporting for",
		},
		{
			name:      "absent",
			text:      "Shortlisted: Priya S, Rahul V",
			wantFound: false,
		},
	}

	m := newTestMatcher()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.InText(tt.text)
			assert.Equal(t, tt.wantFound, got.Found)

			if tt.wantVenue != "" {
				assert.Equal(t, tt.wantVenue, got.Venue)
			}
		})
	}
}

func TestInRows(t *testing.T) {
	m := newTestMatcher()

	rows := [][]string{
		{"S.No", "Name", "Reg No", "Venue"},
		{"1", "Priya S", "REG456", "Lab 2"},
		{"2", "Arun Kumar", "REG123", "Lab 4"},
	}

	got := m.InRows(rows)
	assert.True(t, got.Found)
	assert.Equal(t, "Lab 4", got.Venue)
}

func TestInRows_NoVenueColumn(t *testing.T) {
	m := newTestMatcher()

	rows := [][]string{
		{"S.No", "Name"},
		{"1", "Arun Kumar"},
	}

	got := m.InRows(rows)
	assert.True(t, got.Found)
	assert.Empty(t, got.Venue)
}

func TestInRows_HeaderOnlyOrEmpty(t *testing.T) {
	m := newTestMatcher()

	assert.False(t, m.InRows(nil).Found)
	assert.False(t, m.InRows([][]string{{"Name", "Venue"}}).Found)
}

func TestInAttachment(t *testing.T) {
	m := newTestMatcher()

	att := domain.Attachment{
		Filename:      "shortlist.csv",
		ContentKind:   "text/csv",
		ExtractedText: "",
		Rows: [][]string{
			{"Name", "Room"},
			{"Arun Kumar", "AB1-301"},
		},
	}

	got := m.InAttachment(att)
	assert.True(t, got.Found)
	assert.Equal(t, "AB1-301", got.Venue)
}
