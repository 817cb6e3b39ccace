// Package calendar is the Google Calendar collaborator: existence probes
// and event creation, rate limited so a burst of notifications cannot trip
// API quotas.
package calendar

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/time/rate"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/placementcal/placement-calendar-bot/internal/core/errors"
)

// existsWindow is how far around the intended start the existence probe
// looks. Wide enough to catch the same event booked off a slightly
// different extraction, narrow enough not to collide with adjacent slots.
const existsWindow = 5 * time.Minute

// Google talks to one calendar on behalf of one account.
type Google struct {
	svc        *gcal.Service
	calendarID string
	limiter    *rate.Limiter
	loc        *time.Location
}

// Credentials carries the OAuth client and refresh token for the account.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
}

// NewGoogle builds an authenticated client. The refresh token is exchanged
// lazily by the oauth2 transport; rps caps calendar API calls per second.
func NewGoogle(ctx context.Context, creds Credentials, calendarID string, rps int, loc *time.Location) (*Google, error) {
	if creds.ClientID == "" || creds.ClientSecret == "" || creds.RefreshToken == "" {
		return nil, fmt.Errorf("%w: missing google credentials", errors.ErrInvalidConfig)
	}

	config := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Endpoint:     google.Endpoint,
	}

	token := &oauth2.Token{
		RefreshToken: creds.RefreshToken,
		TokenType:    "Bearer",
		Expiry:       time.Now(),
	}

	client := oauth2.NewClient(ctx, config.TokenSource(ctx, token))

	svc, err := gcal.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}

	if rps <= 0 {
		rps = 1
	}

	if loc == nil {
		loc = time.Local
	}

	return &Google{
		svc:        svc,
		calendarID: calendarID,
		limiter:    rate.NewLimiter(rate.Limit(rps), rps),
		loc:        loc,
	}, nil
}

// Exists reports whether an event with the same title (case-insensitive)
// already sits within the probe window around start.
func (g *Google) Exists(ctx context.Context, title string, start time.Time) (bool, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return false, fmt.Errorf("rate limit wait: %w", err)
	}

	list, err := g.svc.Events.List(g.calendarID).
		TimeMin(start.Add(-existsWindow).Format(time.RFC3339)).
		TimeMax(start.Add(existsWindow).Format(time.RFC3339)).
		SingleEvents(true).
		Context(ctx).
		Do()
	if err != nil {
		return false, fmt.Errorf("%w: list events: %v", errors.ErrCalendarUnavailable, err)
	}

	want := strings.ToLower(strings.TrimSpace(title))

	for _, item := range list.Items {
		if strings.ToLower(strings.TrimSpace(item.Summary)) == want {
			return true, nil
		}
	}

	return false, nil
}

// Create inserts an event with popup reminders at the given minute offsets
// and returns the created event id.
func (g *Google) Create(ctx context.Context, title string, start, end time.Time, location, description string, reminderMinutes []int) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	overrides := make([]*gcal.EventReminder, 0, len(reminderMinutes))
	for _, m := range reminderMinutes {
		overrides = append(overrides, &gcal.EventReminder{Method: "popup", Minutes: int64(m)})
	}

	event := &gcal.Event{
		Summary:     title,
		Location:    location,
		Description: description,
		Start: &gcal.EventDateTime{
			DateTime: start.Format(time.RFC3339),
			TimeZone: g.loc.String(),
		},
		End: &gcal.EventDateTime{
			DateTime: end.Format(time.RFC3339),
			TimeZone: g.loc.String(),
		},
		Reminders: &gcal.EventReminders{
			UseDefault:      false,
			Overrides:       overrides,
			ForceSendFields: []string{"UseDefault"},
		},
	}

	created, err := g.svc.Events.Insert(g.calendarID, event).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("%w: insert event: %v", errors.ErrCalendarUnavailable, err)
	}

	return created.Id, nil
}
