package slides

import (
	"strings"
)

const (
	titlePrefix    = "# "
	subtitlePrefix = "## "
)

// Slide is one slide of a deck. Only the first slide of a deck can have an
// empty title: it holds whatever came before the first heading.
type Slide struct {
	Title   string   `json:"title"`
	Content []string `json:"content"`
}

// Body returns the content lines joined by newlines, as placed into a slide's
// body placeholder.
func (s Slide) Body() string {
	return strings.Join(s.Content, "\n")
}

func (s Slide) empty() bool {
	return s.Title == "" && len(s.Content) == 0
}

// Parse splits a markdown outline into slides.
//
// Lines are trimmed and blank lines dropped. A "# " heading always starts a
// new slide. A "## " heading starts a new slide only when the current slide
// already has content; otherwise it is kept as a content line, so a slide can
// carry a subtitle under its title. Every other line, list items included, is
// content. Slides with neither title nor content are never returned.
//
// Parse never fails. Empty input gives an empty (nil) result.
func Parse(markdown string) []Slide {
	var (
		slides  []Slide
		current Slide
	)

	flush := func(next Slide) {
		if !current.empty() {
			slides = append(slides, current)
		}
		current = next
	}

	for _, line := range strings.Split(markdown, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, titlePrefix):
			flush(Slide{Title: strings.TrimSpace(line[len(titlePrefix):])})

		case strings.HasPrefix(line, subtitlePrefix):
			rest := strings.TrimSpace(line[len(subtitlePrefix):])
			if len(current.Content) > 0 {
				flush(Slide{Title: rest})
			} else {
				current.Content = append(current.Content, subtitlePrefix+rest)
			}

		default:
			current.Content = append(current.Content, line)
		}
	}
	flush(Slide{})

	return slides
}

// Markdown renders slides back to an outline that Parse reads as the same
// slides. A slide without a title is written without a heading, which only
// round-trips for the first slide.
func Markdown(slides []Slide) string {
	var b strings.Builder
	for i, s := range slides {
		if i > 0 {
			b.WriteString("\n")
		}
		if s.Title != "" {
			b.WriteString(titlePrefix)
			b.WriteString(s.Title)
			b.WriteString("\n")
		}
		for _, line := range s.Content {
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	return b.String()
}
