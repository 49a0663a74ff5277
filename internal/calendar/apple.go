package calendar

import (
	"context"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/teemow/macbridge/internal/osascript"
)

// appleEventsScript lists Calendar.app events overlapping a range. When a
// filter is set only the first calendar whose name contains it is read.
var appleEventsScript = template.Must(template.New("events").Parse(`
function run() {
  const app = Application('Calendar');
  const filter = {{.Filter}}.toLowerCase();
  const from = new Date({{.From}});
  const to = new Date({{.To}});

  let calendars = app.calendars();
  if (filter) {
    const match = calendars.find(c => c.name().toLowerCase().includes(filter));
    if (!match) {
      return JSON.stringify({error: 'calendar_not_found', calendars: calendars.map(c => c.name())});
    }
    calendars = [match];
  }

  const events = [];
  for (const cal of calendars) {
    const found = cal.events.whose({_and: [
      {startDate: {_lessThan: to}},
      {endDate: {_greaterThan: from}}
    ]})();
    for (const e of found) {
      events.push({
        id: e.uid(),
        title: e.summary() || '',
        calendar: cal.name(),
        location: e.location() || '',
        start: e.startDate().toISOString(),
        end: e.endDate().toISOString(),
        allDay: e.alldayEvent()
      });
    }
  }
  return JSON.stringify({events: events});
}
`))

type appleResult struct {
	Error     string   `json:"error"`
	Calendars []string `json:"calendars"`
	Events    []Event  `json:"events"`
}

// AppleSource reads events from the macOS Calendar app.
type AppleSource struct {
	runner   osascript.Runner
	calendar string
	loc      *time.Location
}

// NewAppleSource creates a Calendar.app source. Event times are converted to
// loc; nil means time.Local.
func NewAppleSource(runner osascript.Runner, calendarFilter string, loc *time.Location) *AppleSource {
	if loc == nil {
		loc = time.Local
	}
	return &AppleSource{runner: runner, calendar: calendarFilter, loc: loc}
}

// Name returns "apple".
func (s *AppleSource) Name() string { return "apple" }

// Events reads the events overlapping [from, to).
func (s *AppleSource) Events(ctx context.Context, from, to time.Time) ([]Event, error) {
	script, err := s.script(from, to)
	if err != nil {
		return nil, err
	}

	var res appleResult
	if err := osascript.RunJSON(ctx, s.runner, script, &res); err != nil {
		return nil, fmt.Errorf("failed to read Calendar.app events: %w", err)
	}
	if res.Error == "calendar_not_found" {
		return nil, fmt.Errorf("%w: no calendar matching %q (available: %s)",
			ErrCalendarNotFound, s.calendar, strings.Join(res.Calendars, ", "))
	}
	if res.Error != "" {
		return nil, fmt.Errorf("failed to read Calendar.app events: %s", res.Error)
	}

	for i := range res.Events {
		res.Events[i].Start = res.Events[i].Start.In(s.loc)
		res.Events[i].End = res.Events[i].End.In(s.loc)
	}
	SortByStart(res.Events)
	return res.Events, nil
}

func (s *AppleSource) script(from, to time.Time) (string, error) {
	filter, err := osascript.Literal(s.calendar)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	err = appleEventsScript.Execute(&b, map[string]any{
		"Filter": filter,
		"From":   from.UnixMilli(),
		"To":     to.UnixMilli(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to render Calendar.app script: %w", err)
	}
	return b.String(), nil
}
