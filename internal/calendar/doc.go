// Package calendar finds free meeting slots in a day and reports on calendar
// events.
//
// FindFreeSlots is a pure function over a day window and a set of busy
// periods. Events come from an EventSource: a JSON file, the macOS Calendar
// app (through the osascript bridge) or the Google Calendar API.
//
// Example usage:
//
//	loc, _ := time.LoadLocation("Europe/Berlin")
//	date, _ := calendar.ParseDate("2026-10-16", loc)
//	day := calendar.Workday(date, calendar.DefaultWorkdayStart, calendar.DefaultWorkdayEnd, loc)
//
//	events, err := source.Events(ctx, day.Start, day.End)
//	if err != nil {
//	    return err
//	}
//	slots, err := calendar.FindFreeSlots(day, calendar.SpansForDay(day, events, true), 30)
package calendar
