package calendar

import (
	"context"
	"time"
)

// SlotQuery asks for the free slots of one workday.
type SlotQuery struct {
	Date        time.Time
	Start       Clock
	End         Clock
	Location    *time.Location
	MinDuration int
	SkipAllDay  bool
}

// SlotReport is the answer to a SlotQuery.
type SlotReport struct {
	Day         TimeInterval `json:"day"`
	MinDuration int          `json:"minDurationMinutes"`
	Events      int          `json:"events"`
	Slots       []FreeSlot   `json:"slots"`
}

// SearchFreeSlots reads the events of the query's workday from src and runs
// FindFreeSlots on them. Arguments are checked before src is read.
func SearchFreeSlots(ctx context.Context, src EventSource, q SlotQuery) (*SlotReport, error) {
	day := Workday(q.Date, q.Start, q.End, q.Location)
	if err := checkArguments(day, q.MinDuration); err != nil {
		return nil, err
	}

	events, err := src.Events(ctx, day.Start, day.End)
	if err != nil {
		return nil, err
	}

	spans := SpansForDay(day, events, q.SkipAllDay)
	slots, err := FindFreeSlots(day, spans, q.MinDuration)
	if err != nil {
		return nil, err
	}
	return &SlotReport{
		Day:         day,
		MinDuration: q.MinDuration,
		Events:      len(spans),
		Slots:       slots,
	}, nil
}
