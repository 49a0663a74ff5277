package calendar

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/teemow/macbridge/internal/google"
)

const primaryCalendar = "primary"

// GoogleSource reads events from the Google Calendar API.
type GoogleSource struct {
	svc      *gcal.Service
	account  string
	calendar string
	loc      *time.Location
}

// NewGoogleSource creates a Google Calendar source for account. The token is
// taken from provider and refreshed through conf.
func NewGoogleSource(ctx context.Context, account string, provider google.TokenProvider, conf *oauth2.Config, calendarFilter string, loc *time.Location) (*GoogleSource, error) {
	if provider == nil {
		return nil, fmt.Errorf("token provider cannot be nil")
	}

	token, err := provider.GetTokenForAccount(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("failed to get Google OAuth token for account %s: %w", account, err)
	}

	client := oauth2.NewClient(ctx, conf.TokenSource(ctx, token))

	// Force HTTP/1.1, the calendar API occasionally resets HTTP/2 streams.
	if transport, ok := client.Transport.(*oauth2.Transport); ok {
		transport.Base = &http.Transport{ForceAttemptHTTP2: false}
	}

	svc, err := gcal.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}
	return NewGoogleSourceWithService(svc, account, calendarFilter, loc), nil
}

// NewGoogleSourceWithService wraps an existing calendar service.
func NewGoogleSourceWithService(svc *gcal.Service, account, calendarFilter string, loc *time.Location) *GoogleSource {
	if loc == nil {
		loc = time.Local
	}
	return &GoogleSource{svc: svc, account: account, calendar: calendarFilter, loc: loc}
}

// Name returns "google".
func (s *GoogleSource) Name() string { return "google" }

// Events lists single (expanded) events overlapping [from, to).
func (s *GoogleSource) Events(ctx context.Context, from, to time.Time) ([]Event, error) {
	calendarID, calendarName, err := s.resolveCalendar(ctx)
	if err != nil {
		return nil, err
	}

	var events []Event
	err = s.svc.Events.List(calendarID).
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Pages(ctx, func(page *gcal.Events) error {
			for _, item := range page.Items {
				if item.Status == "cancelled" {
					continue
				}
				e, err := s.toEvent(item, calendarName)
				if err != nil {
					return err
				}
				events = append(events, e)
			}
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

// resolveCalendar returns the primary calendar, or the first calendar in the
// user's list whose name matches the filter.
func (s *GoogleSource) resolveCalendar(ctx context.Context) (id, name string, err error) {
	if s.calendar == "" {
		return primaryCalendar, s.account, nil
	}

	var names []string
	err = s.svc.CalendarList.List().Pages(ctx, func(page *gcal.CalendarList) error {
		for _, entry := range page.Items {
			if id == "" && MatchesCalendar(entry.Summary, s.calendar) {
				id, name = entry.Id, entry.Summary
			}
			names = append(names, entry.Summary)
		}
		return nil
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to list calendars: %w", err)
	}
	if id == "" {
		return "", "", fmt.Errorf("%w: no calendar matching %q (available: %v)", ErrCalendarNotFound, s.calendar, names)
	}
	return id, name, nil
}

func (s *GoogleSource) toEvent(item *gcal.Event, calendarName string) (Event, error) {
	e := Event{
		ID:       item.Id,
		Title:    item.Summary,
		Calendar: calendarName,
		Location: item.Location,
	}

	var err error
	if e.Start, e.AllDay, err = parseEventTime(item.Start, s.loc); err != nil {
		return Event{}, fmt.Errorf("event %s: invalid start: %w", item.Id, err)
	}
	if e.End, _, err = parseEventTime(item.End, s.loc); err != nil {
		return Event{}, fmt.Errorf("event %s: invalid end: %w", item.Id, err)
	}
	return e, nil
}

// parseEventTime reads either a timed or an all-day event boundary. All-day
// dates are interpreted as midnight in loc.
func parseEventTime(t *gcal.EventDateTime, loc *time.Location) (time.Time, bool, error) {
	if t == nil {
		return time.Time{}, false, fmt.Errorf("missing time")
	}
	if t.DateTime != "" {
		parsed, err := time.Parse(time.RFC3339, t.DateTime)
		if err != nil {
			return time.Time{}, false, err
		}
		return parsed.In(loc), false, nil
	}
	parsed, err := time.ParseInLocation(time.DateOnly, t.Date, loc)
	if err != nil {
		return time.Time{}, false, err
	}
	return parsed, true, nil
}
