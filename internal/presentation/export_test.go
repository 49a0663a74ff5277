package presentation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path string
		want Format
		ok   bool
	}{
		{path: "/tmp/a.pdf", want: FormatPDF, ok: true},
		{path: "/tmp/a.PPTX", want: FormatPowerPoint, ok: true},
		{path: "/tmp/a.html", want: FormatHTML, ok: true},
		{path: "/tmp/a.key", ok: false},
		{path: "/tmp/a", ok: false},
	}
	for _, tt := range tests {
		got, ok := FormatFromPath(tt.path)
		assert.Equal(t, tt.ok, ok, tt.path)
		assert.Equal(t, tt.want, got, tt.path)
	}
}

func TestExport(t *testing.T) {
	var script string
	runner := runnerFunc(func(s string) ([]byte, error) {
		script = s
		return []byte(`{"output": "/tmp/deck.pdf"}`), nil
	})

	err := Export(context.Background(), runner, ExportRequest{
		Input:  "/tmp/deck.key",
		Output: "/tmp/deck.pdf",
		Format: FormatPDF,
	})
	require.NoError(t, err)
	assert.Contains(t, script, `"format":"PDF"`)
	assert.Contains(t, script, `"input":"/tmp/deck.key"`)
	assert.Contains(t, script, "doc.close({saving: 'no'})")
}

func TestExport_Invalid(t *testing.T) {
	called := false
	runner := runnerFunc(func(string) ([]byte, error) {
		called = true
		return nil, nil
	})

	tests := []ExportRequest{
		{Input: "deck.key", Output: "/tmp/deck.pdf", Format: FormatPDF},
		{Input: "/tmp/deck.key", Output: "", Format: FormatPDF},
		{Input: "/tmp/deck.key", Output: "/tmp/deck.doc", Format: "docx"},
	}
	for _, req := range tests {
		assert.Error(t, Export(context.Background(), runner, req))
	}
	assert.False(t, called)
}

type runnerFunc func(script string) ([]byte, error)

func (f runnerFunc) Run(_ context.Context, script string) ([]byte, error) { return f(script) }
