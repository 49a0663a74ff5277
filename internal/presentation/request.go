package presentation

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/teemow/macbridge/internal/slides"
)

// Target is the presentation app.
type Target string

const (
	Keynote    Target = "keynote"
	PowerPoint Target = "powerpoint"
)

// ErrNoSlides is returned for a request without slides.
var ErrNoSlides = errors.New("no slides found")

// ParseTarget accepts "keynote" or "powerpoint", case-insensitively.
func ParseTarget(s string) (Target, error) {
	switch t := Target(strings.ToLower(strings.TrimSpace(s))); t {
	case Keynote, PowerPoint:
		return t, nil
	default:
		return "", fmt.Errorf("unknown presentation target %q, expected keynote or powerpoint", s)
	}
}

// Request describes a presentation to build.
type Request struct {
	Title string
	// Theme is a Keynote theme name. PowerPoint ignores it.
	Theme  string
	Slides []slides.Slide
	// SavePath is the absolute path the document is saved to. Empty leaves
	// the document open and unsaved.
	SavePath string
}

// Validate rejects requests without slides or title and relative save paths.
func (r Request) Validate() error {
	if len(r.Slides) == 0 {
		return ErrNoSlides
	}
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 255)),
		validation.Field(&r.SavePath, validation.By(isAbsPath)),
	)
}

func isAbsPath(value any) error {
	s, _ := value.(string)
	if s != "" && !filepath.IsAbs(s) {
		return validation.NewError("validation_is_abs_path", "must be an absolute path")
	}
	return nil
}

// Result reports a finished render.
type Result struct {
	RunID  string `json:"runId"`
	Target Target `json:"target"`
	Slides int    `json:"slides"`
	// Skipped counts titles and bodies that had no placeholder.
	Skipped int    `json:"skipped"`
	SavedTo string `json:"savedTo,omitempty"`
}
