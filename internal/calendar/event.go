package calendar

import (
	"slices"
	"time"
)

// Event is a calendar entry as read from any event source.
type Event struct {
	ID       string    `json:"id,omitempty"`
	Title    string    `json:"title"`
	Calendar string    `json:"calendar,omitempty"`
	Location string    `json:"location,omitempty"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	AllDay   bool      `json:"allDay,omitempty"`
}

// Span converts the event to the busy period the slot finder works on.
func (e Event) Span() EventSpan {
	return EventSpan{Start: e.Start, End: e.End, Title: e.Title}
}

// Overlaps reports whether any part of the event falls inside the interval.
func (e Event) Overlaps(i TimeInterval) bool {
	return e.Start.Before(i.End) && e.End.After(i.Start)
}

// SpansForDay returns the busy periods of the events that touch day. All-day
// entries are skipped when skipAllDay is set, since they usually mark
// availability (holidays, office location) rather than meetings.
func SpansForDay(day TimeInterval, events []Event, skipAllDay bool) []EventSpan {
	var spans []EventSpan
	for _, e := range events {
		if skipAllDay && e.AllDay {
			continue
		}
		if e.Overlaps(day) {
			spans = append(spans, e.Span())
		}
	}
	return spans
}

// Upcoming returns the events starting within days days of now, sorted by
// start time.
func Upcoming(now time.Time, days int, events []Event) []Event {
	until := now.AddDate(0, 0, days)
	var out []Event
	for _, e := range events {
		if e.Start.Before(now) || e.Start.After(until) {
			continue
		}
		out = append(out, e)
	}
	SortByStart(out)
	return out
}

// SortByStart orders events by start time, keeping the source order for ties.
func SortByStart(events []Event) {
	slices.SortStableFunc(events, func(a, b Event) int {
		return a.Start.Compare(b.Start)
	})
}
