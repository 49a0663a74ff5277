package server

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/macbridge/internal/calendar"
	"github.com/teemow/macbridge/internal/config"
	"github.com/teemow/macbridge/internal/google"
	"github.com/teemow/macbridge/internal/osascript"
	"github.com/teemow/macbridge/internal/presentation"
	"github.com/teemow/macbridge/internal/slides"
)

const dayEvents = `[
  {"title": "Standup", "calendar": "Work", "start": "2026-10-16T09:30:00+02:00", "end": "2026-10-16T09:45:00+02:00"},
  {"title": "Lunch", "calendar": "Personal", "start": "2026-10-16T12:00:00+02:00", "end": "2026-10-16T13:00:00+02:00"}
]`

func berlinConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Workday.Timezone = "Europe/Berlin"
	return cfg
}

func writeEvents(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "events.json")
	require.NoError(t, os.WriteFile(path, []byte(dayEvents), 0o600))
	return path
}

func TestNewServerContext(t *testing.T) {
	sc, err := NewServerContext(context.Background(), berlinConfig(t))
	require.NoError(t, err)

	assert.Equal(t, "Europe/Berlin", sc.Location().String())
	assert.NotNil(t, sc.Runner())
	assert.NotNil(t, sc.Logger())
	assert.Nil(t, sc.Metrics())
	assert.Nil(t, sc.AuditLogger())
	assert.Equal(t, config.SourceApple, sc.DefaultSourceSpec().Source)

	cfg := berlinConfig(t)
	cfg.Workday.Timezone = "Nowhere/Special"
	_, err = NewServerContext(context.Background(), cfg)
	assert.Error(t, err)
}

func TestServerContext_Shutdown(t *testing.T) {
	sc, err := NewServerContext(context.Background(), nil)
	require.NoError(t, err)
	assert.False(t, sc.IsShutdown())

	require.NoError(t, sc.Shutdown())
	require.NoError(t, sc.Shutdown())
	assert.True(t, sc.IsShutdown())
	assert.Error(t, sc.Context().Err())
}

func TestServerContext_Resolve(t *testing.T) {
	cfg := berlinConfig(t)
	cfg.Slots.Source = config.SourceFile
	cfg.Slots.Calendar = "Work"
	cfg.Slots.EventsFile = "/tmp/events.json"

	sc, err := NewServerContext(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, SourceSpec{
		Source:     config.SourceFile,
		Calendar:   "Work",
		Account:    google.DefaultAccount,
		EventsFile: "/tmp/events.json",
	}, sc.Resolve(SourceSpec{}))

	assert.Equal(t, SourceSpec{
		Source:     config.SourceApple,
		Calendar:   "Home",
		Account:    "work",
		EventsFile: "/tmp/events.json",
	}, sc.Resolve(SourceSpec{Source: config.SourceApple, Calendar: "Home", Account: "work"}))
}

func TestServerContext_EventSourceCaching(t *testing.T) {
	var opened atomic.Int32
	factory := func(_ context.Context, spec SourceSpec) (calendar.EventSource, error) {
		opened.Add(1)
		return calendar.NewFileSource(spec.EventsFile, spec.Calendar), nil
	}

	sc, err := NewServerContext(context.Background(), berlinConfig(t), WithSourceFactory(factory))
	require.NoError(t, err)

	path := writeEvents(t)
	for range 3 {
		_, err := sc.EventSource(context.Background(), SourceSpec{Source: config.SourceApple})
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), opened.Load())

	_, err = sc.EventSource(context.Background(), SourceSpec{Source: config.SourceApple, Calendar: "Work"})
	require.NoError(t, err)
	assert.Equal(t, int32(2), opened.Load())

	for range 2 {
		_, err := sc.EventSource(context.Background(), SourceSpec{Source: config.SourceFile, EventsFile: path})
		require.NoError(t, err)
	}
	assert.Equal(t, int32(4), opened.Load())
}

func TestServerContext_OpenSource(t *testing.T) {
	cfg := berlinConfig(t)
	cfg.Google.TokenDir = t.TempDir()

	sc, err := NewServerContext(context.Background(), cfg)
	require.NoError(t, err)
	ctx := context.Background()

	src, err := sc.EventSource(ctx, SourceSpec{Source: config.SourceApple})
	require.NoError(t, err)
	assert.Equal(t, "apple", src.Name())

	src, err = sc.EventSource(ctx, SourceSpec{Source: config.SourceFile, EventsFile: writeEvents(t)})
	require.NoError(t, err)
	assert.Equal(t, "file", src.Name())

	_, err = sc.EventSource(ctx, SourceSpec{Source: config.SourceFile})
	assert.ErrorContains(t, err, "events file")

	_, err = sc.EventSource(ctx, SourceSpec{Source: "outlook"})
	assert.ErrorContains(t, err, "unknown event source")

	_, err = sc.EventSource(ctx, SourceSpec{Source: config.SourceGoogle})
	assert.ErrorContains(t, err, "client id and secret")

	cfg.Google.ClientID, cfg.Google.ClientSecret = "id", "secret"
	_, err = sc.EventSource(ctx, SourceSpec{Source: config.SourceGoogle, Account: "work"})
	assert.True(t, errors.Is(err, google.ErrNoToken))
	assert.ErrorContains(t, err, "macbridge auth google --account work")
}

func TestServerContext_FindFreeSlots(t *testing.T) {
	sc, err := NewServerContext(context.Background(), berlinConfig(t))
	require.NoError(t, err)

	date, err := calendar.ParseDate("2026-10-16", sc.Location())
	require.NoError(t, err)

	report, err := sc.FindFreeSlots(context.Background(),
		SourceSpec{Source: config.SourceFile, EventsFile: writeEvents(t), Calendar: "Work"},
		calendar.SlotQuery{
			Date:        date,
			Start:       calendar.DefaultWorkdayStart,
			End:         calendar.DefaultWorkdayEnd,
			MinDuration: 60,
		})
	require.NoError(t, err)

	// Lunch is on the Personal calendar and filtered out.
	require.Len(t, report.Slots, 1)
	assert.Equal(t, "09:45", report.Slots[0].Start.Format("15:04"))
	assert.Equal(t, "17:00", report.Slots[0].End.Format("15:04"))
	assert.Equal(t, 1, report.Events)
}

func TestServerContext_FindFreeSlotsInvalid(t *testing.T) {
	sc, err := NewServerContext(context.Background(), berlinConfig(t))
	require.NoError(t, err)

	_, err = sc.FindFreeSlots(context.Background(),
		SourceSpec{Source: config.SourceFile, EventsFile: writeEvents(t)},
		calendar.SlotQuery{
			Date:        time.Now(),
			Start:       calendar.DefaultWorkdayStart,
			End:         calendar.DefaultWorkdayEnd,
			MinDuration: 0,
		})
	assert.ErrorIs(t, err, calendar.ErrInvalidArgument)
}

func TestServerContext_Renderer(t *testing.T) {
	var script string
	runner := osascript.RunnerFunc(func(_ context.Context, s string) ([]byte, error) {
		script = s
		return []byte(`{"slides": 1}`), nil
	})

	sc, err := NewServerContext(context.Background(), nil, WithRunner(runner))
	require.NoError(t, err)

	r, err := sc.Renderer(presentation.PowerPoint)
	require.NoError(t, err)
	res, err := r.Render(context.Background(), presentation.Request{
		Title:  "Deck",
		Slides: []slides.Slide{{Title: "One"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Slides)
	assert.Contains(t, script, "Microsoft PowerPoint")

	_, err = sc.Renderer("impress")
	assert.Error(t, err)
}
