package calendar

import (
	"cmp"
	"slices"
	"time"
)

const untitled = "Untitled"

// topTitleCount is the number of recurring titles reported in a Summary.
const topTitleCount = 5

// Summary aggregates the events of a date range.
type Summary struct {
	From        time.Time     `json:"from"`
	To          time.Time     `json:"to"`
	TotalEvents int           `json:"totalEvents"`
	TotalTime   time.Duration `json:"totalTime"`
	ByCalendar  []Count       `json:"byCalendar"`
	Days        []DaySummary  `json:"days"`
	TopTitles   []Count       `json:"topTitles"`
}

// TotalHours returns the summed event time in hours.
func (s Summary) TotalHours() float64 {
	return s.TotalTime.Hours()
}

// Count is a name with an occurrence count.
type Count struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// DaySummary lists the events starting on one calendar date.
type DaySummary struct {
	Date   string  `json:"date"`
	Events []Event `json:"events"`
}

// Summarize builds a report over events. Only events overlapping [from, to)
// are counted.
func Summarize(from, to time.Time, events []Event) Summary {
	window := TimeInterval{Start: from, End: to}
	s := Summary{From: from, To: to}

	var kept []Event
	for _, e := range events {
		if e.Overlaps(window) {
			kept = append(kept, e)
		}
	}
	SortByStart(kept)

	calendars := map[string]int{}
	titles := map[string]int{}
	days := map[string]int{}
	for _, e := range kept {
		s.TotalEvents++
		s.TotalTime += e.End.Sub(e.Start)
		calendars[e.Calendar]++

		title := e.Title
		if title == "" {
			title = untitled
		}
		titles[title]++

		date := e.Start.In(from.Location()).Format(time.DateOnly)
		idx, ok := days[date]
		if !ok {
			idx = len(s.Days)
			days[date] = idx
			s.Days = append(s.Days, DaySummary{Date: date})
		}
		s.Days[idx].Events = append(s.Days[idx].Events, e)
	}

	s.ByCalendar = sortedCounts(calendars)
	s.TopTitles = sortedCounts(titles)
	if len(s.TopTitles) > topTitleCount {
		s.TopTitles = s.TopTitles[:topTitleCount]
	}
	return s
}

// sortedCounts orders by count descending, then name.
func sortedCounts(m map[string]int) []Count {
	out := make([]Count, 0, len(m))
	for name, n := range m {
		out = append(out, Count{Name: name, Count: n})
	}
	slices.SortFunc(out, func(a, b Count) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return out
}

// Duration returns the summed length of the day's events.
func (d DaySummary) Duration() time.Duration {
	var total time.Duration
	for _, e := range d.Events {
		total += e.End.Sub(e.Start)
	}
	return total
}
