package cmd

import (
	"encoding/json"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/teemow/macbridge/internal/calendar"
)

var (
	colorPrimary = lipgloss.Color("12")  // bright blue
	colorDim     = lipgloss.Color("240") // gray

	styleHeading = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	styleMuted = lipgloss.NewStyle().
			Foreground(colorDim)
)

// termStyler renders report headings and secondary lines for a terminal.
// lipgloss drops the colors when stdout is not a terminal.
type termStyler struct{}

func (termStyler) Heading(s string) string { return styleHeading.Render(s) }
func (termStyler) Muted(s string) string   { return styleMuted.Render(s) }

var _ calendar.Styler = termStyler{}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
