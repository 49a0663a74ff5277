package presentation

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/macbridge/internal/osascript"
	"github.com/teemow/macbridge/internal/slides"
)

var dataLine = regexp.MustCompile(`const data = (.*);`)

// recordingRunner captures the script and decodes the data literal it carries.
type recordingRunner struct {
	script string
	data   scriptData
	output string
	err    error
}

func (r *recordingRunner) Run(_ context.Context, script string) ([]byte, error) {
	r.script = script
	if m := dataLine.FindStringSubmatch(script); m != nil {
		if err := json.Unmarshal([]byte(m[1]), &r.data); err != nil {
			return nil, err
		}
	}
	if r.err != nil {
		return nil, r.err
	}
	return []byte(r.output), nil
}

func deck() []slides.Slide {
	return slides.Parse("# Intro\nHello\n- a\n- b\n# Outro\n## Thanks\nBye")
}

func TestParseTarget(t *testing.T) {
	tests := []struct {
		in      string
		want    Target
		wantErr bool
	}{
		{in: "keynote", want: Keynote},
		{in: "PowerPoint", want: PowerPoint},
		{in: " keynote ", want: Keynote},
		{in: "impress", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseTarget(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		wantErr string
	}{
		{name: "valid", req: Request{Title: "Deck", Slides: deck()}},
		{name: "valid with save path", req: Request{Title: "Deck", Slides: deck(), SavePath: "/tmp/deck.key"}},
		{name: "no slides", req: Request{Title: "Deck"}, wantErr: "no slides found"},
		{name: "no title", req: Request{Slides: deck()}, wantErr: "cannot be blank"},
		{name: "relative save path", req: Request{Title: "Deck", Slides: deck(), SavePath: "deck.key"}, wantErr: "absolute path"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
	assert.ErrorIs(t, Request{Title: "x"}.Validate(), ErrNoSlides)
}

func TestNew_UnknownTarget(t *testing.T) {
	_, err := New("impress", &recordingRunner{})
	assert.Error(t, err)
}

func TestRender_Keynote(t *testing.T) {
	runner := &recordingRunner{output: `{"slides": 2, "skipped": 1}`}
	r, err := New(Keynote, runner)
	require.NoError(t, err)
	assert.Equal(t, Keynote, r.Target())

	res, err := r.Render(context.Background(), Request{
		Title:    `Q3 "Review"`,
		Theme:    "White",
		Slides:   deck(),
		SavePath: "/tmp/q3.key",
	})
	require.NoError(t, err)

	assert.Equal(t, Keynote, res.Target)
	assert.Equal(t, 2, res.Slides)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, "/tmp/q3.key", res.SavedTo)
	_, err = uuid.Parse(res.RunID)
	assert.NoError(t, err)

	assert.Contains(t, runner.script, "Application('Keynote')")
	assert.Contains(t, runner.script, "defaultTitleItem")
	assert.Contains(t, runner.script, "defaultBodyItem")

	assert.Equal(t, `Q3 "Review"`, runner.data.Title)
	assert.Equal(t, "White", runner.data.Theme)
	assert.Equal(t, "/tmp/q3.key", runner.data.SavePath)
	assert.Equal(t, []scriptSlide{
		{Title: "Intro", Body: "Hello\n- a\n- b"},
		{Title: "Outro", Body: "## Thanks\nBye"},
	}, runner.data.Slides)
}

func TestRender_PowerPoint(t *testing.T) {
	runner := &recordingRunner{output: `{"slides": 2, "skipped": 0}`}
	r, err := New(PowerPoint, runner)
	require.NoError(t, err)

	res, err := r.Render(context.Background(), Request{Title: "Deck", Slides: deck()})
	require.NoError(t, err)
	assert.Equal(t, PowerPoint, res.Target)
	assert.Empty(t, res.SavedTo)

	assert.Contains(t, runner.script, "Application('Microsoft PowerPoint')")
	assert.Contains(t, runner.script, "'content', 'body'")
}

func TestRender_RunIDsDiffer(t *testing.T) {
	runner := &recordingRunner{output: `{"slides": 2}`}
	r, err := New(Keynote, runner)
	require.NoError(t, err)

	a, err := r.Render(context.Background(), Request{Title: "A", Slides: deck()})
	require.NoError(t, err)
	b, err := r.Render(context.Background(), Request{Title: "B", Slides: deck()})
	require.NoError(t, err)
	assert.NotEqual(t, a.RunID, b.RunID)
}

func TestRender_Errors(t *testing.T) {
	tests := []struct {
		name    string
		runner  *recordingRunner
		req     Request
		wantErr string
		wantIs  error
	}{
		{
			name:    "no slides never runs the bridge",
			runner:  &recordingRunner{},
			req:     Request{Title: "Deck"},
			wantIs:  ErrNoSlides,
			wantErr: "no slides found",
		},
		{
			name:    "theme not found",
			runner:  &recordingRunner{output: `{"error": "theme_not_found", "themes": ["White", "Black"]}`},
			req:     Request{Title: "Deck", Theme: "Neon", Slides: deck()},
			wantErr: `keynote theme "Neon" not found (available: White, Black)`,
		},
		{
			name:    "script error",
			runner:  &recordingRunner{err: &osascript.ScriptError{ExitCode: 1, Stderr: "Keynote got an error"}},
			req:     Request{Title: "Deck", Slides: deck()},
			wantErr: "Keynote got an error",
		},
		{
			name:    "other script failure",
			runner:  &recordingRunner{output: `{"error": "boom"}`},
			req:     Request{Title: "Deck", Slides: deck()},
			wantErr: "failed to create keynote presentation: boom",
		},
		{
			name:    "garbage output",
			runner:  &recordingRunner{output: `not json`},
			req:     Request{Title: "Deck", Slides: deck()},
			wantErr: "failed to decode script output",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := New(Keynote, tt.runner)
			require.NoError(t, err)

			_, err = r.Render(context.Background(), tt.req)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			if tt.wantIs != nil {
				assert.True(t, errors.Is(err, tt.wantIs))
				assert.Empty(t, tt.runner.script)
			}
		})
	}
}
