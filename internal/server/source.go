package server

import (
	"context"
	"time"

	"github.com/teemow/macbridge/internal/calendar"
	"github.com/teemow/macbridge/internal/instrumentation"
)

// instrumentedSource records every read of the wrapped source.
type instrumentedSource struct {
	calendar.EventSource
	calendarName string
	metrics      *instrumentation.Metrics
}

func (sc *ServerContext) instrument(src calendar.EventSource, spec SourceSpec) calendar.EventSource {
	return &instrumentedSource{EventSource: src, calendarName: spec.Calendar, metrics: sc.metrics}
}

func (s *instrumentedSource) Events(ctx context.Context, from, to time.Time) ([]calendar.Event, error) {
	ctx, span := instrumentation.StartSpan(ctx, "calendar.events",
		instrumentation.NewSpanAttributeBuilder().WithSource(s.Name(), s.calendarName).Build()...)
	defer span.End()

	events, err := s.EventSource.Events(ctx, from, to)
	if err != nil {
		s.metrics.RecordEventFetch(ctx, s.Name(), s.calendarName, instrumentation.StatusError)
		instrumentation.SetSpanError(span, err)
		return nil, err
	}
	s.metrics.RecordEventFetch(ctx, s.Name(), s.calendarName, instrumentation.StatusSuccess)
	instrumentation.SetSpanSuccess(span)
	return events, nil
}
