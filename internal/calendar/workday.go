package calendar

import (
	"fmt"
	"time"
)

// Clock is a wall-clock time of day with minute precision.
type Clock struct {
	Hour   int
	Minute int
}

// Default workday bounds.
var (
	DefaultWorkdayStart = Clock{Hour: 9}
	DefaultWorkdayEnd   = Clock{Hour: 17}
)

// ParseClock parses "HH:MM" (24 hour).
func ParseClock(s string) (Clock, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return Clock{}, fmt.Errorf("invalid time of day %q, expected HH:MM: %w", s, err)
	}
	return Clock{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// Before reports whether c is earlier in the day than other.
func (c Clock) Before(other Clock) bool {
	return c.Hour*60+c.Minute < other.Hour*60+other.Minute
}

// on returns the instant of c on the calendar date of day in loc.
func (c Clock) on(day time.Time, loc *time.Location) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, c.Hour, c.Minute, 0, 0, loc)
}

// Workday builds the day window for date between start and end wall-clock
// times in loc. Only the calendar date of the date argument is used.
func Workday(date time.Time, start, end Clock, loc *time.Location) TimeInterval {
	if loc == nil {
		loc = time.Local
	}
	date = date.In(loc)
	return TimeInterval{Start: start.on(date, loc), End: end.on(date, loc)}
}

// ParseDate parses a YYYY-MM-DD date in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(time.DateOnly, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", s, err)
	}
	return t, nil
}

// DateRange returns the window from the start of the first date to the end of
// the last date, both taken as calendar dates in their own location.
func DateRange(first, last time.Time) (TimeInterval, error) {
	y, m, d := first.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, first.Location())
	y, m, d = last.Date()
	end := time.Date(y, m, d+1, 0, 0, 0, 0, last.Location())
	if !start.Before(end) {
		return TimeInterval{}, newArgumentError("to", fmt.Sprintf("%s is before %s",
			last.Format(time.DateOnly), first.Format(time.DateOnly)))
	}
	return TimeInterval{Start: start, End: end}, nil
}
