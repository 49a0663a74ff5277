package server

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/teemow/macbridge/internal/calendar"
	"github.com/teemow/macbridge/internal/config"
	"github.com/teemow/macbridge/internal/google"
	"github.com/teemow/macbridge/internal/instrumentation"
	"github.com/teemow/macbridge/internal/logging"
	"github.com/teemow/macbridge/internal/osascript"
	"github.com/teemow/macbridge/internal/presentation"
)

// SourceSpec selects a calendar event source.
type SourceSpec struct {
	// Source is "apple", "google" or "file".
	Source   string
	Calendar string
	// Account is the Google account whose token is used.
	Account string
	// EventsFile is read by the file source. "-" is stdin.
	EventsFile string
}

func (s SourceSpec) key() string {
	return s.Source + "|" + s.Account + "|" + s.Calendar
}

// SourceFactory opens an event source.
type SourceFactory func(ctx context.Context, spec SourceSpec) (calendar.EventSource, error)

// ServerContext holds the dependencies shared by the CLI commands and the MCP
// tools. Apple and Google sources are cached per spec.
type ServerContext struct {
	ctx       context.Context
	cancel    context.CancelFunc
	cfg       *config.Config
	loc       *time.Location
	runner    osascript.Runner
	metrics   *instrumentation.Metrics
	audit     *instrumentation.AuditLogger
	logger    *slog.Logger
	newSource SourceFactory
	sources   map[string]calendar.EventSource
	mu        sync.RWMutex
	shutdown  bool
}

// Option configures a ServerContext.
type Option func(*ServerContext)

// WithRunner sets the scripting bridge runner.
func WithRunner(r osascript.Runner) Option {
	return func(sc *ServerContext) { sc.runner = r }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(sc *ServerContext) { sc.metrics = m }
}

// WithAuditLogger sets the tool audit logger.
func WithAuditLogger(a *instrumentation.AuditLogger) Option {
	return func(sc *ServerContext) { sc.audit = a }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(sc *ServerContext) { sc.logger = l }
}

// WithSourceFactory replaces the default event source factory.
func WithSourceFactory(f SourceFactory) Option {
	return func(sc *ServerContext) { sc.newSource = f }
}

// NewServerContext creates a new server context
func NewServerContext(ctx context.Context, cfg *config.Config, opts ...Option) (*ServerContext, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	shutdownCtx, cancel := context.WithCancel(ctx)
	sc := &ServerContext{
		ctx:     shutdownCtx,
		cancel:  cancel,
		cfg:     cfg,
		loc:     loc,
		logger:  slog.Default(),
		sources: make(map[string]calendar.EventSource),
	}
	for _, opt := range opts {
		opt(sc)
	}
	if sc.runner == nil {
		sc.runner = osascript.NewExecRunner(
			osascript.WithLogger(logging.NewSlogAdapter(sc.logger)),
			osascript.WithMetrics(sc.metrics),
		)
	}
	if sc.newSource == nil {
		sc.newSource = sc.openSource
	}
	return sc, nil
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Config returns the loaded configuration.
func (sc *ServerContext) Config() *config.Config {
	return sc.cfg
}

// Location returns the configured workday time zone.
func (sc *ServerContext) Location() *time.Location {
	return sc.loc
}

// Runner returns the scripting bridge runner.
func (sc *ServerContext) Runner() osascript.Runner {
	return sc.runner
}

// Metrics returns the metrics recorder. It may be nil.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	return sc.metrics
}

// AuditLogger returns the audit logger. It may be nil.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	return sc.audit
}

// Logger returns the logger.
func (sc *ServerContext) Logger() *slog.Logger {
	return sc.logger
}

// DefaultSourceSpec returns the [slots] source settings of the config file.
func (sc *ServerContext) DefaultSourceSpec() SourceSpec {
	return SourceSpec{
		Source:     sc.cfg.Slots.Source,
		Calendar:   sc.cfg.Slots.Calendar,
		Account:    sc.cfg.Slots.Account,
		EventsFile: sc.cfg.Slots.EventsFile,
	}
}

// Resolve fills the empty fields of spec from the config file.
func (sc *ServerContext) Resolve(spec SourceSpec) SourceSpec {
	def := sc.DefaultSourceSpec()
	if spec.Source == "" {
		spec.Source = def.Source
	}
	if spec.Calendar == "" {
		spec.Calendar = def.Calendar
	}
	if spec.Account == "" {
		spec.Account = def.Account
	}
	if spec.EventsFile == "" {
		spec.EventsFile = def.EventsFile
	}
	return spec
}

// EventSource returns the source for spec after Resolve. File sources are
// opened on every call, the others are cached.
func (sc *ServerContext) EventSource(ctx context.Context, spec SourceSpec) (calendar.EventSource, error) {
	spec = sc.Resolve(spec)

	if spec.Source == config.SourceFile {
		src, err := sc.newSource(ctx, spec)
		if err != nil {
			return nil, err
		}
		return sc.instrument(src, spec), nil
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()

	if src, ok := sc.sources[spec.key()]; ok {
		return src, nil
	}
	src, err := sc.newSource(ctx, spec)
	if err != nil {
		return nil, err
	}
	src = sc.instrument(src, spec)
	sc.sources[spec.key()] = src
	return src, nil
}

func (sc *ServerContext) openSource(ctx context.Context, spec SourceSpec) (calendar.EventSource, error) {
	switch spec.Source {
	case config.SourceApple:
		return calendar.NewAppleSource(sc.runner, spec.Calendar, sc.loc), nil

	case config.SourceGoogle:
		creds := sc.cfg.GoogleCredentials()
		if err := creds.Validate(); err != nil {
			return nil, err
		}
		store, err := google.NewTokenStore(sc.cfg.Google.TokenDir)
		if err != nil {
			return nil, err
		}
		conf := google.OAuthConfig(creds)
		provider := google.NewFileTokenProvider(store, conf)
		if !provider.HasTokenForAccount(spec.Account) {
			return nil, fmt.Errorf("%w for account %s; run 'macbridge auth google --account %s'",
				google.ErrNoToken, spec.Account, spec.Account)
		}
		return calendar.NewGoogleSource(sc.ctx, spec.Account, provider, conf, spec.Calendar, sc.loc)

	case config.SourceFile:
		if spec.EventsFile == "" {
			return nil, fmt.Errorf("the file event source needs an events file")
		}
		return calendar.NewFileSource(spec.EventsFile, spec.Calendar), nil

	default:
		return nil, fmt.Errorf("unknown event source %q, expected apple, google or file", spec.Source)
	}
}

// FindFreeSlots runs a slot search against the source of spec and records it.
func (sc *ServerContext) FindFreeSlots(ctx context.Context, spec SourceSpec, q calendar.SlotQuery) (*calendar.SlotReport, error) {
	spec = sc.Resolve(spec)
	src, err := sc.EventSource(ctx, spec)
	if err != nil {
		return nil, err
	}
	if q.Location == nil {
		q.Location = sc.loc
	}

	attrs := instrumentation.NewSpanAttributeBuilder().
		WithSource(src.Name(), spec.Calendar).
		WithSlotSearch(q.Date.Format(time.DateOnly), q.MinDuration).
		Build()
	ctx, span := instrumentation.StartSpan(ctx, "calendar.find_free_slots", attrs...)
	defer span.End()

	report, err := calendar.SearchFreeSlots(ctx, src, q)
	if err != nil {
		sc.metrics.RecordSlotSearch(ctx, src.Name(), instrumentation.StatusError, 0)
		instrumentation.SetSpanError(span, err)
		return nil, err
	}
	sc.metrics.RecordSlotSearch(ctx, src.Name(), instrumentation.StatusSuccess, len(report.Slots))
	instrumentation.SetSpanSuccess(span)
	sc.logger.Debug("free slot search finished",
		logging.Source(src.Name()),
		"date", q.Date.Format(time.DateOnly),
		"slots", len(report.Slots))
	return report, nil
}

// Renderer returns the presentation renderer for target.
func (sc *ServerContext) Renderer(target presentation.Target) (*presentation.BridgeRenderer, error) {
	return presentation.New(target, sc.runner,
		presentation.WithLogger(logging.NewSlogAdapter(sc.logger)),
		presentation.WithMetrics(sc.metrics),
	)
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
