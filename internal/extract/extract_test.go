package extract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/placementcal/placement-calendar-bot/internal/core/domain"
)

func TestVenue(t *testing.T) {
	tests := []struct {
		name     string
		msg      domain.Message
		text     string
		ownVenue string
		want     string
	}{
		{
			name:     "identity venue wins",
			text:     "Venue: Auditorium",
			ownVenue: "Lab 4",
			want:     "Lab 4",
		},
		{
			name: "labelled venue",
			text: "Talk on 12th November 2025 at 11:00 AM. Venue: Auditorium.",
			want: "Auditorium",
		},
		{
			name: "room label",
			text: "Report to Room No: AB1-301 before 9 AM",
			want: "AB1-301 before 9 AM",
		},
		{
			name: "own location marker",
			text: "Take the test from your own location.",
			want: VenueOwnLocation,
		},
		{
			name: "online marker",
			text: "The session will be conducted via Zoom.",
			want: VenueOnline,
		},
		{
			name: "attachment rows fallback",
			msg: domain.Message{
				Attachments: []domain.Attachment{{
					Rows: [][]string{
						{"Name", "Venue"},
						{"Priya S", "Lab 2"},
					},
				}},
			},
			text: "Shortlist attached.",
			want: "Lab 2",
		},
		{
			name: "nothing resolves",
			text: "Carry your ID card.",
			want: VenueFallback,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Venue(tt.msg, tt.text, tt.ownVenue))
		})
	}
}

func TestVenue_URLCaptureSkipped(t *testing.T) {
	// "location" followed by a link must not become the venue.
	got := Venue(domain.Message{}, "Location: https://maps.example.com/xyz", "")
	assert.Equal(t, VenueFallback, got)
}

func TestLinkSelector(t *testing.T) {
	s := NewLinkSelector("neopat")

	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "priority keyword beats first url",
			text: "About us: https://example.com/company. Apply here: https://forms.gle/registerXYZ",
			want: "https://forms.gle/registerXYZ",
		},
		{
			name: "first url when no keyword matches",
			text: "See https://example.com/a and https://example.com/b",
			want: "https://example.com/a",
		},
		{
			name: "portal sentinel without url",
			text: "Submit your application on NeoPAT before Friday",
			want: "NEOPAT Portal",
		},
		{
			name: "portal keyword in url",
			text: "Login at https://neopat.example.com/drive/42",
			want: "https://neopat.example.com/drive/42",
		},
		{
			name: "no link at all",
			text: "Details will be shared later",
			want: "",
		},
		{
			name: "trailing punctuation trimmed",
			text: "Register at https://example.com/apply.",
			want: "https://example.com/apply",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Select(tt.text))
		})
	}
}

func TestLinkSelector_NoPortalConfigured(t *testing.T) {
	s := NewLinkSelector("")

	assert.Empty(t, s.Select("Submit on the portal mentioned in class"))
	assert.Equal(t, "https://example.com/x", s.Select("Visit https://example.com/x"))
}

func TestParseICS(t *testing.T) {
	raw := "BEGIN:VCALENDAR\r\n" +
		"BEGIN:VEVENT\r\n" +
		"SUMMARY:Aptitude Test - XYZ Corp\r\n" +
		"DTSTART;TZID=Asia/Kolkata:20251112T110000\r\n" +
		"DTEND;TZID=Asia/Kolkata:20251112T130000\r\n" +
		"LOCATION:Lab 4\\, Tech Park\r\n" +
		"DESCRIPTION:Carry your ID card\r\n" +
		" and a pen.\r\n" +
		"END:VEVENT\r\n" +
		"END:VCALENDAR\r\n"

	event, ok := ParseICS(raw, testLoc)
	require.True(t, ok)

	assert.Equal(t, "Aptitude Test - XYZ Corp", event.Summary)
	assert.Equal(t, "Lab 4, Tech Park", event.Location)
	assert.Equal(t, "Carry your ID cardand a pen.", event.Description)
	assert.Equal(t, ts(2025, time.November, 12, 11, 0), event.Start)
	assert.Equal(t, ts(2025, time.November, 12, 13, 0), event.End)
}

func TestParseICS_DefaultEnd(t *testing.T) {
	raw := "BEGIN:VEVENT\nSUMMARY:Briefing\nDTSTART:20251112T090000\nEND:VEVENT"

	event, ok := ParseICS(raw, testLoc)
	require.True(t, ok)
	assert.Equal(t, event.Start.Add(time.Hour), event.End)
}

func TestParseICS_NoStart(t *testing.T) {
	_, ok := ParseICS("BEGIN:VEVENT\nSUMMARY:Broken\nEND:VEVENT", testLoc)
	assert.False(t, ok)
}

func TestParseICS_UTCAndAllDay(t *testing.T) {
	event, ok := ParseICS("DTSTART:20251112T053000Z", testLoc)
	require.True(t, ok)
	assert.Equal(t, ts(2025, time.November, 12, 11, 0), event.Start)

	event, ok = ParseICS("DTSTART;VALUE=DATE:20251112", testLoc)
	require.True(t, ok)
	assert.Equal(t, ts(2025, time.November, 12, 0, 0), event.Start)
}
