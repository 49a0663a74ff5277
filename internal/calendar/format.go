package calendar

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// Styler decorates report text for a terminal. A nil Styler prints plain text.
type Styler interface {
	Heading(s string) string
	Muted(s string) string
}

type plain struct{}

func (plain) Heading(s string) string { return s }
func (plain) Muted(s string) string   { return s }

func styler(s Styler) Styler {
	if s == nil {
		return plain{}
	}
	return s
}

// WriteSlots prints a slot report as a numbered list:
//
//	Free 60-minute slots on 2026-10-16:
//	1. 09:45 - 11:00 (75 minutes)
func WriteSlots(w io.Writer, st Styler, r *SlotReport) error {
	st = styler(st)
	date := r.Day.Start.Format(time.DateOnly)
	if len(r.Slots) == 0 {
		_, err := fmt.Fprintf(w, "No free %d-minute slots found on %s\n", r.MinDuration, date)
		return err
	}

	var b strings.Builder
	b.WriteString(st.Heading(fmt.Sprintf("Free %d-minute slots on %s:", r.MinDuration, date)))
	b.WriteString("\n")
	for i, s := range r.Slots {
		fmt.Fprintf(&b, "%d. %s - %s (%.0f minutes)\n", i+1, s.Start.Format("15:04"), s.End.Format("15:04"), s.Minutes())
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteUpcoming prints events grouped one block per event.
func WriteUpcoming(w io.Writer, st Styler, days int, events []Event) error {
	st = styler(st)
	if len(events) == 0 {
		_, err := fmt.Fprintf(w, "No upcoming events found in the next %d days.\n", days)
		return err
	}

	var b strings.Builder
	b.WriteString(st.Heading(fmt.Sprintf("Upcoming events in the next %d days:", days)))
	b.WriteString("\n\n")
	for _, e := range events {
		b.WriteString(titleOf(e))
		b.WriteString("\n")
		if e.AllDay {
			fmt.Fprintf(&b, "   %s (all day)\n", e.Start.Format(time.DateOnly))
		} else {
			fmt.Fprintf(&b, "   %s - %s\n", e.Start.Format("2006-01-02 15:04"), e.End.Format("15:04"))
		}
		if e.Calendar != "" {
			b.WriteString(st.Muted("   " + e.Calendar))
			b.WriteString("\n")
		}
		if e.Location != "" {
			b.WriteString(st.Muted("   " + e.Location))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteSummary prints a Summary report.
func WriteSummary(w io.Writer, st Styler, s Summary) error {
	st = styler(st)

	var b strings.Builder
	// The window is half-open, so the last covered date is the one just
	// before To.
	b.WriteString(st.Heading(fmt.Sprintf("Calendar Summary: %s to %s",
		s.From.Format(time.DateOnly), s.To.Add(-time.Nanosecond).Format(time.DateOnly))))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Total Events: %d\n", s.TotalEvents)
	fmt.Fprintf(&b, "Total Duration: %.1f hours\n", s.TotalHours())

	names := make([]string, len(s.ByCalendar))
	for i, c := range s.ByCalendar {
		names[i] = c.Name
	}
	fmt.Fprintf(&b, "Calendars: %s\n\n", strings.Join(names, ", "))

	b.WriteString(st.Heading("Events by Calendar:"))
	b.WriteString("\n")
	for _, c := range s.ByCalendar {
		fmt.Fprintf(&b, "  %s: %d events\n", c.Name, c.Count)
	}
	b.WriteString("\n")

	b.WriteString(st.Heading("Daily Breakdown:"))
	b.WriteString("\n")
	for _, d := range s.Days {
		fmt.Fprintf(&b, "  %s: %d events (%.1f hours)\n", d.Date, len(d.Events), d.Duration().Hours())
		for _, e := range d.Events {
			b.WriteString(st.Muted(fmt.Sprintf("    %s: %s", e.Start.In(s.From.Location()).Format("15:04"), titleOf(e))))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")

	b.WriteString(st.Heading("Most Common Event Titles:"))
	b.WriteString("\n")
	for _, c := range s.TopTitles {
		fmt.Fprintf(&b, "  %s: %d times\n", c.Name, c.Count)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func titleOf(e Event) string {
	if e.Title == "" {
		return untitled
	}
	return e.Title
}
