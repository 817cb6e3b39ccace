package extract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLoc = time.FixedZone("IST", 19800)

func newTestExtractor() *DateTimeExtractor {
	return NewDateTimeExtractor(testLoc)
}

func ts(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, testLoc)
}

func TestDateTimes_DeadlineOnly(t *testing.T) {
	x := newTestExtractor()

	tests := []struct {
		name string
		text string
		want time.Time
	}{
		{
			name: "numeric date with pm time",
			text: "Last date: 30/09/2025 by 5:00 pm",
			want: ts(2025, time.September, 30, 17, 0),
		},
		{
			name: "deadline keyword without time defaults to ten",
			text: "Deadline: 15-10-2025",
			want: ts(2025, time.October, 15, 10, 0),
		},
		{
			name: "ordinal month name form",
			text: "Registration deadline: 1st Nov 2025 by 11 pm",
			want: ts(2025, time.November, 1, 23, 0),
		},
		{
			name: "two digit year expands",
			text: "Register by 05/10/25",
			want: ts(2025, time.October, 5, 10, 0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := x.DateTimes(tt.text)
			require.NotNil(t, got.RegistrationDeadline)
			assert.Equal(t, tt.want, *got.RegistrationDeadline)
		})
	}
}

func TestDateTimes_EventOnly(t *testing.T) {
	x := newTestExtractor()

	tests := []struct {
		name string
		text string
		want time.Time
	}{
		{
			name: "generic date label with pm time",
			text: "Date: 05-10-2025 at 2:00 PM",
			want: ts(2025, time.October, 5, 14, 0),
		},
		{
			name: "keyword with ordinal month name",
			text: "Assessment on 15th October 2025 by 2:30 PM",
			want: ts(2025, time.October, 15, 14, 30),
		},
		{
			name: "bare numeric date with time",
			text: "05/10/2025, 14:30 sharp reporting",
			want: ts(2025, time.October, 5, 14, 30),
		},
		{
			name: "conducted on phrasing",
			text: "The drive will be conducted on 20th November 2025",
			want: ts(2025, time.November, 20, 10, 0),
		},
		{
			name: "month name with am time",
			text: "Join us: 12th November 2025 at 11:00 AM",
			want: ts(2025, time.November, 12, 11, 0),
		},
		{
			name: "bare hour below twelve reads as am",
			text: "Date: 05/10/2025 at 9",
			want: ts(2025, time.October, 5, 9, 0),
		},
		{
			name: "twelve am is midnight",
			text: "Date: 05/10/2025 at 12:00 am",
			want: ts(2025, time.October, 5, 0, 0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := x.DateTimes(tt.text)
			require.NotNil(t, got.EventDateTime, "no event extracted")
			assert.Equal(t, tt.want, *got.EventDateTime)
			assert.Nil(t, got.RegistrationDeadline)
		})
	}
}

func TestDateTimes_DeadlineEventDisambiguation(t *testing.T) {
	// The deadline sentence must not be reused as the event.
	x := newTestExtractor()

	got := x.DateTimes("Last date: 30/09/2025 by 5:00 pm. Interview on 05/10/2025 at 10:00 AM")

	require.NotNil(t, got.RegistrationDeadline)
	assert.Equal(t, ts(2025, time.September, 30, 17, 0), *got.RegistrationDeadline)

	require.NotNil(t, got.EventDateTime)
	assert.Equal(t, ts(2025, time.October, 5, 10, 0), *got.EventDateTime)
}

func TestDateTimes_EndToEndTalk(t *testing.T) {
	x := newTestExtractor()

	got := x.DateTimes("Open to all branches. Talk on 12th November 2025 at 11:00 AM. Venue: Auditorium.")

	require.NotNil(t, got.EventDateTime)
	assert.Equal(t, ts(2025, time.November, 12, 11, 0), *got.EventDateTime)
	assert.Nil(t, got.RegistrationDeadline)
	assert.Nil(t, got.DurationMinutes)
}

func TestDateTimes_InvalidDatesRejected(t *testing.T) {
	x := newTestExtractor()

	got := x.DateTimes("Date: 32/13/2025 at 10:00 AM")

	assert.Nil(t, got.EventDateTime)
	assert.Nil(t, got.RegistrationDeadline)
}

func TestDateTimes_NothingToExtract(t *testing.T) {
	x := newTestExtractor()

	got := x.DateTimes("Please carry your ID card and two copies of your resume.")

	assert.Nil(t, got.EventDateTime)
	assert.Nil(t, got.RegistrationDeadline)
	assert.Nil(t, got.DurationMinutes)
}

func TestExtractDuration(t *testing.T) {
	tests := []struct {
		name string
		text string
		want *int
	}{
		{
			name: "explicit duration hours",
			text: "Duration: 2 hours",
			want: intPtr(120),
		},
		{
			name: "hours long phrasing",
			text: "It will be a 3 hrs long session",
			want: intPtr(180),
		},
		{
			name: "clock range",
			text: "Timing: 10:00 to 13:30",
			want: intPtr(210),
		},
		{
			name: "reversed clock range stays negative",
			text: "Timing: 13:00 to 11:00",
			want: intPtr(-120),
		},
		{
			name: "no duration",
			text: "Report at the venue on time",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractDuration(tt.text)

			if tt.want == nil {
				assert.Nil(t, got)
				return
			}

			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func intPtr(v int) *int { return &v }
