package presentation

import (
	"context"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/teemow/macbridge/internal/instrumentation"
	"github.com/teemow/macbridge/internal/logging"
	"github.com/teemow/macbridge/internal/osascript"
)

// Renderer builds a presentation document.
type Renderer interface {
	Render(ctx context.Context, req Request) (*Result, error)
}

// BridgeRenderer renders through a JXA script run by an osascript.Runner.
type BridgeRenderer struct {
	target  Target
	script  *template.Template
	runner  osascript.Runner
	logger  logging.Logger
	metrics *instrumentation.Metrics
}

// Option configures a BridgeRenderer.
type Option func(*BridgeRenderer)

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(r *BridgeRenderer) { r.logger = l }
}

// WithMetrics records renders on m.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(r *BridgeRenderer) { r.metrics = m }
}

// New returns the renderer for target.
func New(target Target, runner osascript.Runner, opts ...Option) (*BridgeRenderer, error) {
	var script *template.Template
	switch target {
	case Keynote:
		script = keynoteScript
	case PowerPoint:
		script = powerPointScript
	default:
		return nil, fmt.Errorf("unknown presentation target %q", target)
	}

	r := &BridgeRenderer{
		target: target,
		script: script,
		runner: runner,
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Target returns the app this renderer drives.
func (r *BridgeRenderer) Target() Target { return r.target }

type scriptSlide struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type scriptData struct {
	Title    string        `json:"title"`
	Theme    string        `json:"theme"`
	SavePath string        `json:"savePath"`
	Slides   []scriptSlide `json:"slides"`
}

type scriptResult struct {
	Error   string   `json:"error"`
	Themes  []string `json:"themes"`
	Slides  int      `json:"slides"`
	Skipped int      `json:"skipped"`
}

// Render validates req, runs the app script and reports what was built.
func (r *BridgeRenderer) Render(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	attrs := instrumentation.NewSpanAttributeBuilder().
		WithPresentation(string(r.target), len(req.Slides)).
		Build()
	attrs = append(attrs, attribute.String(instrumentation.SpanAttrRunID, runID))
	ctx, span := instrumentation.StartSpan(ctx, "presentation.render", attrs...)
	defer span.End()

	start := time.Now()
	res, err := r.run(ctx, req)
	if err != nil {
		r.metrics.RecordPresentationRender(ctx, string(r.target), instrumentation.StatusError)
		instrumentation.SetSpanError(span, err)
		r.logger.Warn("presentation render failed",
			logging.KeyTarget, string(r.target),
			logging.KeyRunID, runID,
			logging.KeyDuration, time.Since(start),
			logging.Err(err))
		return nil, err
	}

	r.metrics.RecordPresentationRender(ctx, string(r.target), instrumentation.StatusSuccess)
	instrumentation.SetSpanSuccess(span)
	r.logger.Info("presentation rendered",
		logging.KeyTarget, string(r.target),
		logging.KeyRunID, runID,
		logging.KeyDuration, time.Since(start),
		"slides", res.Slides,
		"skipped", res.Skipped)

	return &Result{
		RunID:   runID,
		Target:  r.target,
		Slides:  res.Slides,
		Skipped: res.Skipped,
		SavedTo: req.SavePath,
	}, nil
}

func (r *BridgeRenderer) run(ctx context.Context, req Request) (*scriptResult, error) {
	data := scriptData{
		Title:    req.Title,
		Theme:    req.Theme,
		SavePath: req.SavePath,
		Slides:   make([]scriptSlide, len(req.Slides)),
	}
	for i, s := range req.Slides {
		data.Slides[i] = scriptSlide{Title: s.Title, Body: s.Body()}
	}

	script, err := renderScript(r.script, data)
	if err != nil {
		return nil, err
	}

	var res scriptResult
	if err := osascript.RunJSON(ctx, r.runner, script, &res); err != nil {
		return nil, fmt.Errorf("failed to create %s presentation: %w", r.target, err)
	}
	switch res.Error {
	case "":
	case "theme_not_found":
		return nil, fmt.Errorf("keynote theme %q not found (available: %s)", req.Theme, strings.Join(res.Themes, ", "))
	default:
		return nil, fmt.Errorf("failed to create %s presentation: %s", r.target, res.Error)
	}
	return &res, nil
}

func renderScript(t *template.Template, data any) (string, error) {
	literal, err := osascript.Literal(data)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	if err := t.Execute(&b, map[string]any{"Data": literal}); err != nil {
		return "", fmt.Errorf("failed to render %s script: %w", t.Name(), err)
	}
	return b.String(), nil
}
