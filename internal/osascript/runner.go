package osascript

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/teemow/macbridge/internal/instrumentation"
	"github.com/teemow/macbridge/internal/logging"
)

// DefaultTimeout bounds a single script run. Keynote and Calendar.app can
// take a while to launch on first use.
const DefaultTimeout = 60 * time.Second

// ErrUnavailable is returned when the osascript binary cannot be found,
// which is the case on every platform but macOS.
var ErrUnavailable = errors.New("osascript is not available on this system")

// Runner executes a JXA script and returns what it printed on stdout.
type Runner interface {
	Run(ctx context.Context, script string) ([]byte, error)
}

// RunnerFunc adapts a function to the Runner interface.
type RunnerFunc func(ctx context.Context, script string) ([]byte, error)

// Run calls f(ctx, script).
func (f RunnerFunc) Run(ctx context.Context, script string) ([]byte, error) {
	return f(ctx, script)
}

// ScriptError is a script that ran but exited non-zero.
type ScriptError struct {
	ExitCode int
	Stderr   string
}

func (e *ScriptError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		msg = "no output"
	}
	return fmt.Sprintf("script exited with status %d: %s", e.ExitCode, msg)
}

// ExecRunner runs scripts with `osascript -l JavaScript`.
type ExecRunner struct {
	path    string
	timeout time.Duration
	logger  logging.Logger
	metrics *instrumentation.Metrics
}

// Option configures an ExecRunner.
type Option func(*ExecRunner)

// WithTimeout overrides DefaultTimeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(r *ExecRunner) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithPath sets the osascript binary to use.
func WithPath(path string) Option {
	return func(r *ExecRunner) { r.path = path }
}

// WithLogger sets the logger for run diagnostics.
func WithLogger(l logging.Logger) Option {
	return func(r *ExecRunner) { r.logger = l }
}

// WithMetrics records bridge metrics for every run.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(r *ExecRunner) { r.metrics = m }
}

// NewExecRunner creates an ExecRunner.
func NewExecRunner(opts ...Option) *ExecRunner {
	r := &ExecRunner{
		path:    "osascript",
		timeout: DefaultTimeout,
		logger:  logging.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Check reports ErrUnavailable when the osascript binary cannot be found. It
// matches server.CheckFunc for use as a readiness check.
func (r *ExecRunner) Check(_ context.Context) error {
	if _, err := exec.LookPath(r.path); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Run executes script and returns its stdout.
func (r *ExecRunner) Run(ctx context.Context, script string) ([]byte, error) {
	bin, err := exec.LookPath(r.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	ctx, span := instrumentation.StartBridgeSpan(ctx, "run",
		attribute.Int(instrumentation.SpanAttrScriptLen, len(script)))
	defer span.End()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, "-l", "JavaScript", "-e", script)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	start := time.Now()
	err = cmd.Run()
	duration := time.Since(start)

	if err != nil {
		r.metrics.RecordBridgeScript(ctx, instrumentation.StatusError, duration)
		var exitErr *exec.ExitError
		switch {
		case ctx.Err() != nil:
			err = fmt.Errorf("script did not finish within %s: %w", r.timeout, ctx.Err())
		case errors.As(err, &exitErr):
			err = &ScriptError{ExitCode: exitErr.ExitCode(), Stderr: stderr.String()}
		default:
			err = fmt.Errorf("failed to run osascript: %w", err)
		}
		instrumentation.SetSpanError(span, err)
		r.logger.Debug("bridge script failed", "duration", duration, logging.Err(err))
		return nil, err
	}

	r.metrics.RecordBridgeScript(ctx, instrumentation.StatusSuccess, duration)
	instrumentation.SetSpanSuccess(span)
	r.logger.Debug("bridge script finished", "duration", duration, "bytes", stdout.Len())
	return stdout.Bytes(), nil
}

// Literal encodes v as a JavaScript literal. JSON is valid JavaScript, so
// strings and nested values need no further escaping.
func Literal(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("failed to encode script data: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// RunJSON runs script and decodes its stdout as JSON into out.
func RunJSON(ctx context.Context, r Runner, script string, out any) error {
	data, err := r.Run(ctx, script)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(bytes.TrimSpace(data), out); err != nil {
		return fmt.Errorf("failed to decode script output: %w", err)
	}
	return nil
}
