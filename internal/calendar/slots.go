package calendar

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"
)

// ErrInvalidArgument is returned when a slot search is asked for an empty day
// window or a non-positive minimum duration.
var ErrInvalidArgument = errors.New("invalid argument")

// ArgumentError names the argument that failed validation.
type ArgumentError struct {
	Field  string
	Reason string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("invalid argument %s: %s", e.Field, e.Reason)
}

// Unwrap lets errors.Is match ErrInvalidArgument.
func (e *ArgumentError) Unwrap() error {
	return ErrInvalidArgument
}

func newArgumentError(field, reason string) error {
	return &ArgumentError{Field: field, Reason: reason}
}

// TimeInterval is a half-open window [Start, End).
type TimeInterval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Duration returns the length of the interval.
func (i TimeInterval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// EventSpan is a busy period as seen by the slot finder.
type EventSpan struct {
	Start time.Time
	End   time.Time
	Title string
}

// FreeSlot is a gap between busy periods that is long enough for a meeting.
type FreeSlot struct {
	Start    time.Time
	End      time.Time
	Duration time.Duration
}

// Minutes returns the slot length in minutes.
func (s FreeSlot) Minutes() float64 {
	return s.Duration.Minutes()
}

// MarshalJSON writes the duration in minutes.
func (s FreeSlot) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Start           time.Time `json:"start"`
		End             time.Time `json:"end"`
		DurationMinutes float64   `json:"durationMinutes"`
	}{s.Start, s.End, s.Minutes()})
}

// clip restricts the span to the day window. The boolean is false when nothing
// of the span is left inside the window.
func (e EventSpan) clip(day TimeInterval) (EventSpan, bool) {
	start := e.Start
	if start.Before(day.Start) {
		start = day.Start
	}
	end := e.End
	if end.After(day.End) {
		end = day.End
	}
	if !start.Before(end) {
		return EventSpan{}, false
	}
	return EventSpan{Start: start, End: end, Title: e.Title}, true
}

func checkArguments(day TimeInterval, minDurationMinutes int) error {
	if !day.Start.Before(day.End) {
		return newArgumentError("day", fmt.Sprintf("start %s is not before end %s",
			day.Start.Format(time.RFC3339), day.End.Format(time.RFC3339)))
	}
	if minDurationMinutes <= 0 {
		return newArgumentError("minDurationMinutes", fmt.Sprintf("must be positive, got %d", minDurationMinutes))
	}
	return nil
}

// FindFreeSlots returns the gaps inside day that are at least minDurationMinutes
// long, in chronological order.
//
// Events are clipped to the day window first. Events that end up empty are
// ignored, as are events entirely outside the window. Overlapping events are
// handled by advancing a cursor to the latest end time seen so far, so nested
// meetings never produce a gap. The events slice is not modified.
func FindFreeSlots(day TimeInterval, events []EventSpan, minDurationMinutes int) ([]FreeSlot, error) {
	if err := checkArguments(day, minDurationMinutes); err != nil {
		return nil, err
	}
	minimum := time.Duration(minDurationMinutes) * time.Minute

	clipped := make([]EventSpan, 0, len(events))
	for _, e := range events {
		if c, ok := e.clip(day); ok {
			clipped = append(clipped, c)
		}
	}
	slices.SortStableFunc(clipped, func(a, b EventSpan) int {
		return a.Start.Compare(b.Start)
	})

	var slots []FreeSlot
	emit := func(start, end time.Time) {
		if gap := end.Sub(start); gap >= minimum {
			slots = append(slots, FreeSlot{Start: start, End: end, Duration: gap})
		}
	}

	cursor := day.Start
	for _, e := range clipped {
		if cursor.Before(e.Start) {
			emit(cursor, e.Start)
		}
		if e.End.After(cursor) {
			cursor = e.End
		}
	}
	if cursor.Before(day.End) {
		emit(cursor, day.End)
	}

	return slots, nil
}
