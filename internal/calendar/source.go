package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// ErrCalendarNotFound is returned when a calendar name filter matches no calendar.
var ErrCalendarNotFound = errors.New("calendar not found")

// EventSource reads the events overlapping [from, to).
type EventSource interface {
	// Name identifies the source in logs and metrics.
	Name() string
	Events(ctx context.Context, from, to time.Time) ([]Event, error)
}

// MatchesCalendar reports whether name matches filter: an empty filter matches
// everything, otherwise a case-insensitive substring match is used.
func MatchesCalendar(name, filter string) bool {
	return filter == "" || strings.Contains(strings.ToLower(name), strings.ToLower(filter))
}

// FileSource reads events from a JSON array, as written by `macbridge calendar
// upcoming --json` or by hand:
//
//	[{"title": "Standup", "start": "2026-10-16T09:30:00+02:00", "end": "2026-10-16T09:45:00+02:00"}]
type FileSource struct {
	path     string
	reader   io.Reader
	calendar string
}

// NewFileSource reads events from path. A path of "-" reads stdin.
func NewFileSource(path, calendarFilter string) *FileSource {
	if path == "-" {
		return &FileSource{path: "stdin", reader: os.Stdin, calendar: calendarFilter}
	}
	return &FileSource{path: path, calendar: calendarFilter}
}

// NewReaderSource reads events from r once.
func NewReaderSource(r io.Reader, calendarFilter string) *FileSource {
	return &FileSource{path: "reader", reader: r, calendar: calendarFilter}
}

// Name returns "file".
func (s *FileSource) Name() string { return "file" }

// Events decodes the file and keeps the events overlapping the range whose
// calendar matches the filter.
func (s *FileSource) Events(_ context.Context, from, to time.Time) ([]Event, error) {
	r := s.reader
	if r == nil {
		f, err := os.Open(s.path)
		if err != nil {
			return nil, fmt.Errorf("failed to open events file: %w", err)
		}
		defer f.Close()
		r = f
	}

	var all []Event
	if err := json.NewDecoder(r).Decode(&all); err != nil {
		return nil, fmt.Errorf("failed to decode events from %s: %w", s.path, err)
	}

	window := TimeInterval{Start: from, End: to}
	var events []Event
	for i, e := range all {
		if e.End.Before(e.Start) {
			return nil, fmt.Errorf("event %d (%q) ends before it starts", i, e.Title)
		}
		if MatchesCalendar(e.Calendar, s.calendar) && e.Overlaps(window) {
			events = append(events, e)
		}
	}
	SortByStart(events)
	return events, nil
}
