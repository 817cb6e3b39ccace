package runner

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/placementcal/placement-calendar-bot/internal/core/domain"
	"github.com/placementcal/placement-calendar-bot/internal/core/errors"
	"github.com/placementcal/placement-calendar-bot/internal/dedup"
	"github.com/placementcal/placement-calendar-bot/internal/engine"
)

var testLoc = time.FixedZone("IST", 19800)

type fakeFetcher struct {
	messages []domain.Message
	fetchErr error

	marked    []string
	summaries []string
}

func (f *fakeFetcher) Fetch(_ context.Context, _ time.Time) ([]domain.Message, error) {
	return f.messages, f.fetchErr
}

func (f *fakeFetcher) MarkProcessed(_ context.Context, msgID string) error {
	f.marked = append(f.marked, msgID)
	return nil
}

func (f *fakeFetcher) SendSelf(_ context.Context, _, subject, body string) error {
	f.summaries = append(f.summaries, subject+"\n"+body)
	return nil
}

type createdEvent struct {
	title    string
	start    time.Time
	end      time.Time
	location string
}

type fakeCalendar struct {
	existing  map[string]bool
	createErr map[string]error

	created []createdEvent
}

func (c *fakeCalendar) Exists(_ context.Context, title string, _ time.Time) (bool, error) {
	return c.existing[title], nil
}

func (c *fakeCalendar) Create(_ context.Context, title string, start, end time.Time, location, _ string, _ []int) (string, error) {
	if err := c.createErr[title]; err != nil {
		return "", err
	}

	c.created = append(c.created, createdEvent{title: title, start: start, end: end, location: location})

	return fmt.Sprintf("evt-%d", len(c.created)), nil
}

type busyLocker struct{}

func (busyLocker) TryLock(context.Context) (func(context.Context) error, bool, error) {
	return nil, false, nil
}

func newTestEngine() *engine.Engine {
	return engine.New(engine.Options{
		Keywords:       []string{"placement", "drive", "interview", "talk", "test", "shortlist"},
		OpenVocabulary: []string{"all students", "open to all", "all registered"},
		PortalKeyword:  "neopat",
		Location:       testLoc,
		Profile: domain.Profile{
			Name:      "Arun Kumar",
			RegNumber: "REG123",
			Branch:    "Computer Science Engineering",
			CGPA:      8.0,
			BranchAliases: map[string]string{
				"cse": "Computer Science Engineering",
			},
		},
	})
}

func talkMessage() domain.Message {
	return domain.Message{
		ID:       "m1",
		ThreadID: "t1",
		Subject:  "Pre-Placement Talk - XYZ Corp",
		Sender:   "placement@college.edu",
		PlainBody: "Talk on 12th November 2025 at 11:00 AM. Venue: Seminar Hall. " +
			"Open to all registered students.",
	}
}

func newTestRunner(fetcher *fakeFetcher, cal *fakeCalendar, store dedup.Store) *Runner {
	return New(Options{
		Fetcher:       fetcher,
		Engine:        newTestEngine(),
		Store:         store,
		Calendar:      cal,
		Mailer:        fetcher,
		SearchWindow:  24 * time.Hour,
		SendSummary:   true,
		SummaryTo:     "me@college.edu",
		MarkWithLabel: true,
		Logger:        zerolog.Nop(),
	})
}

func TestRun_CreatesEventAndMarksProcessed(t *testing.T) {
	fetcher := &fakeFetcher{messages: []domain.Message{
		talkMessage(),
		{ID: "m2", ThreadID: "t2", Subject: "Library fine reminder", PlainBody: "Your books are overdue."},
	}}
	cal := &fakeCalendar{}
	r := newTestRunner(fetcher, cal, dedup.NewMemoryStore())

	require.NoError(t, r.Run(context.Background()))

	require.Len(t, cal.created, 1)
	assert.Equal(t, "Pre-Placement Talk - XYZ Corp", cal.created[0].title)
	assert.Equal(t, time.Date(2025, time.November, 12, 11, 0, 0, 0, testLoc), cal.created[0].start)
	assert.Equal(t, "Seminar Hall", cal.created[0].location)

	// Both messages get the label, including the skipped one.
	assert.ElementsMatch(t, []string{"m1", "m2"}, fetcher.marked)
}

func TestRun_SecondRunIsDeduplicated(t *testing.T) {
	fetcher := &fakeFetcher{messages: []domain.Message{talkMessage()}}
	cal := &fakeCalendar{}
	r := newTestRunner(fetcher, cal, dedup.NewMemoryStore())

	require.NoError(t, r.Run(context.Background()))
	require.NoError(t, r.Run(context.Background()))

	assert.Len(t, cal.created, 1)
}

func TestRun_CalendarDuplicateBackfillsStore(t *testing.T) {
	fetcher := &fakeFetcher{messages: []domain.Message{talkMessage()}}
	cal := &fakeCalendar{existing: map[string]bool{"Pre-Placement Talk - XYZ Corp": true}}
	store := dedup.NewMemoryStore()
	r := newTestRunner(fetcher, cal, store)

	require.NoError(t, r.Run(context.Background()))

	assert.Empty(t, cal.created)

	start := time.Date(2025, time.November, 12, 11, 0, 0, 0, testLoc)
	key := dedup.EventKey("Pre-Placement Talk - XYZ Corp", start, "t1")

	seen, err := store.Has(context.Background(), key)
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestRun_LockBusySkipsCycle(t *testing.T) {
	fetcher := &fakeFetcher{messages: []domain.Message{talkMessage()}}
	cal := &fakeCalendar{}
	r := New(Options{
		Fetcher:  fetcher,
		Engine:   newTestEngine(),
		Store:    dedup.NewMemoryStore(),
		Calendar: cal,
		Locker:   busyLocker{},
		Logger:   zerolog.Nop(),
	})

	err := r.Run(context.Background())

	require.ErrorIs(t, err, errors.ErrLockNotAcquired)
	assert.Empty(t, cal.created)
	assert.Empty(t, fetcher.marked)
}

func TestRun_FetchErrorAbortsRun(t *testing.T) {
	fetcher := &fakeFetcher{fetchErr: errors.ErrFetcherUnavailable}
	r := newTestRunner(fetcher, &fakeCalendar{}, dedup.NewMemoryStore())

	err := r.Run(context.Background())

	require.ErrorIs(t, err, errors.ErrFetcherUnavailable)
}

func TestRun_CalendarFailureIsolatedPerMessage(t *testing.T) {
	broken := domain.Message{
		ID:        "m0",
		ThreadID:  "t0",
		Subject:   "Coding Test - ABC Ltd",
		PlainBody: "Test on 10/11/2025 at 09:00 AM. Open to all students.",
	}

	fetcher := &fakeFetcher{messages: []domain.Message{broken, talkMessage()}}
	cal := &fakeCalendar{createErr: map[string]error{
		"Coding Test - ABC Ltd": errors.ErrCalendarUnavailable,
	}}
	r := newTestRunner(fetcher, cal, dedup.NewMemoryStore())

	require.NoError(t, r.Run(context.Background()))

	// The talk still lands despite the earlier failure, and the failed
	// message stays unmarked so the next run retries it.
	require.Len(t, cal.created, 1)
	assert.Equal(t, "Pre-Placement Talk - XYZ Corp", cal.created[0].title)
	assert.ElementsMatch(t, []string{"m1"}, fetcher.marked)
}

func TestRun_SummarySentOnActivity(t *testing.T) {
	fetcher := &fakeFetcher{messages: []domain.Message{talkMessage()}}
	r := newTestRunner(fetcher, &fakeCalendar{}, dedup.NewMemoryStore())

	require.NoError(t, r.Run(context.Background()))

	require.Len(t, fetcher.summaries, 1)
	assert.Contains(t, fetcher.summaries[0], "1 created")
	assert.Contains(t, fetcher.summaries[0], "Pre-Placement Talk - XYZ Corp")
}

func TestBuildDescription_PortalSentinelExpansion(t *testing.T) {
	deadline := time.Date(2025, time.September, 30, 17, 0, 0, 0, testLoc)
	decision := domain.Decision{
		Disposition: domain.DispositionActionable,
		OpenToAll:   true,
		Venue:       "TBD",
		RegLink:     "NEOPAT Portal",
		Eligibility: domain.Eligibility{Criteria: []string{"CGPA >= 7.5"}},
		DateTimes:   domain.DateTimes{RegistrationDeadline: &deadline},
	}

	body := buildDescription(domain.Message{Sender: "cdc@college.edu"}, decision, "https://portal.college.edu")

	assert.Contains(t, body, "Venue: TBD")
	assert.Contains(t, body, "Venue not confirmed")
	assert.Contains(t, body, "Registration: https://portal.college.edu")
	assert.Contains(t, body, "CGPA >= 7.5")
	assert.Contains(t, body, "Register before: 2025-09-30 17:00")
}

func TestBuildDescription_RealLinkKept(t *testing.T) {
	decision := domain.Decision{
		Disposition: domain.DispositionActionable,
		Venue:       "Seminar Hall",
		RegLink:     "https://forms.example.com/register",
	}

	body := buildDescription(domain.Message{Sender: "hr@xyz.com"}, decision, "https://portal.college.edu")

	assert.Contains(t, body, "Registration: https://forms.example.com/register")
	assert.NotContains(t, body, "portal.college.edu")
	assert.NotContains(t, body, "Venue not confirmed")
}

func TestRun_NoSummaryWithoutActivity(t *testing.T) {
	fetcher := &fakeFetcher{messages: []domain.Message{
		{ID: "m9", Subject: "Canteen menu", PlainBody: "Lunch today."},
	}}
	r := newTestRunner(fetcher, &fakeCalendar{}, dedup.NewMemoryStore())

	require.NoError(t, r.Run(context.Background()))

	assert.Empty(t, fetcher.summaries)
}
