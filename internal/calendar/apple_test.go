package calendar

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/macbridge/internal/osascript"
)

func TestAppleSource_Events(t *testing.T) {
	var script string
	runner := osascript.RunnerFunc(func(_ context.Context, s string) ([]byte, error) {
		script = s
		return []byte(`{"events": [
			{"id": "2", "title": "Review", "calendar": "Work", "start": "2026-10-16T12:00:00.000Z", "end": "2026-10-16T13:00:00.000Z", "allDay": false},
			{"id": "1", "title": "Standup", "calendar": "Work", "start": "2026-10-16T07:30:00.000Z", "end": "2026-10-16T07:45:00.000Z", "allDay": false}
		]}`), nil
	})

	src := NewAppleSource(runner, `Work "Team"`, berlin)
	assert.Equal(t, "apple", src.Name())

	events, err := src.Events(context.Background(), at(9, 0), at(17, 0))
	require.NoError(t, err)

	require.Len(t, events, 2)
	assert.Equal(t, "Standup", events[0].Title)
	assert.Equal(t, berlin, events[0].Start.Location())
	assert.True(t, events[0].Start.Equal(at(9, 30)))

	assert.Contains(t, script, "Application('Calendar')")
	assert.Contains(t, script, `"Work \"Team\""`)
	assert.Contains(t, script, "new Date(1792134000000)")
}

func TestAppleSource_CalendarNotFound(t *testing.T) {
	runner := osascript.RunnerFunc(func(context.Context, string) ([]byte, error) {
		return []byte(`{"error": "calendar_not_found", "calendars": ["Home", "Work"]}`), nil
	})

	_, err := NewAppleSource(runner, "Holidays", berlin).Events(context.Background(), at(9, 0), at(17, 0))
	require.ErrorIs(t, err, ErrCalendarNotFound)
	assert.Contains(t, err.Error(), "Home, Work")
}

func TestAppleSource_BridgeError(t *testing.T) {
	runner := osascript.RunnerFunc(func(context.Context, string) ([]byte, error) {
		return nil, &osascript.ScriptError{ExitCode: 1, Stderr: "Not authorized to send Apple events to Calendar."}
	})

	_, err := NewAppleSource(runner, "", nil).Events(context.Background(), at(9, 0), at(17, 0))
	var scriptErr *osascript.ScriptError
	require.True(t, errors.As(err, &scriptErr))
	assert.Contains(t, err.Error(), "Not authorized")
}
