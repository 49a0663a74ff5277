package slides

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Slide
	}{
		{
			name:  "empty input",
			input: "",
			want:  nil,
		},
		{
			name:  "whitespace only",
			input: "  \n\t\n   \n",
			want:  nil,
		},
		{
			name:  "single title",
			input: "# Welcome",
			want:  []Slide{{Title: "Welcome"}},
		},
		{
			name:  "title with bullets",
			input: "# Agenda\n- Intro\n* Demo\n\nQuestions",
			want:  []Slide{{Title: "Agenda", Content: []string{"- Intro", "* Demo", "Questions"}}},
		},
		{
			name:  "lines are trimmed",
			input: "   #  Padded title  \n    - indented bullet   \n",
			want:  []Slide{{Title: "Padded title", Content: []string{"- indented bullet"}}},
		},
		{
			name:  "two title slides",
			input: "# One\ntext\n# Two\nmore",
			want: []Slide{
				{Title: "One", Content: []string{"text"}},
				{Title: "Two", Content: []string{"more"}},
			},
		},
		{
			name:  "subheading right after title stays content",
			input: "# Title\n## Subtitle\nBody",
			want:  []Slide{{Title: "Title", Content: []string{"## Subtitle", "Body"}}},
		},
		{
			name:  "subheading after content starts a slide",
			input: "# Title\nBody\n##   Next  \nMore",
			want: []Slide{
				{Title: "Title", Content: []string{"Body"}},
				{Title: "Next", Content: []string{"More"}},
			},
		},
		{
			name:  "content before first heading",
			input: "Preamble\n# First",
			want: []Slide{
				{Content: []string{"Preamble"}},
				{Title: "First"},
			},
		},
		{
			name:  "leading subheading is content of an untitled slide",
			input: "## Only a subtitle",
			want:  []Slide{{Content: []string{"## Only a subtitle"}}},
		},
		{
			name:  "heading markers without space are content",
			input: "# T\n#hashtag\n###  Deep\n#",
			want:  []Slide{{Title: "T", Content: []string{"#hashtag", "###  Deep", "#"}}},
		},
		{
			name:  "carriage returns are trimmed",
			input: "# Windows\r\nline\r\n",
			want:  []Slide{{Title: "Windows", Content: []string{"line"}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.input))
		})
	}
}

func TestSlide_Body(t *testing.T) {
	s := Slide{Title: "T", Content: []string{"- a", "- b"}}
	assert.Equal(t, "- a\n- b", s.Body())
	assert.Equal(t, "", Slide{Title: "T"}.Body())
}

func TestMarkdown(t *testing.T) {
	got := Markdown([]Slide{
		{Content: []string{"Preamble"}},
		{Title: "One", Content: []string{"## Sub", "- a"}},
		{Title: "Two"},
	})
	assert.Equal(t, "Preamble\n\n# One\n## Sub\n- a\n\n# Two\n", got)
	assert.Equal(t, "", Markdown(nil))
}

// lineKinds are the building blocks of random outlines.
var lineKinds = []string{"# Title %d", "## Sub %d", "- item %d", "* star %d", "text %d", "", "   ", "#tag %d", "### deep %d"}

func randomOutline(rng *rand.Rand) string {
	n := rng.IntN(15)
	lines := make([]string, n)
	for i := range lines {
		kind := lineKinds[rng.IntN(len(lineKinds))]
		line := strings.ReplaceAll(kind, "%d", string(rune('a'+rng.IntN(26))))
		if rng.IntN(4) == 0 {
			line = "  " + line + " "
		}
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}

func TestParse_Properties(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))

	for i := 0; i < 1000; i++ {
		input := randomOutline(rng)
		got := Parse(input)

		// Round trip.
		require.Equal(t, got, Parse(Markdown(got)), "input %q", input)

		var lines int
		for j, s := range got {
			assert.False(t, s.empty(), "empty slide in %q", input)
			if j > 0 {
				assert.NotEmpty(t, s.Title, "only the first slide may be untitled: %q", input)
			}
			for _, c := range s.Content {
				assert.Equal(t, strings.TrimSpace(c), c)
				assert.NotEmpty(t, c)
			}
			lines += len(s.Content)
			if s.Title != "" {
				lines++
			}
		}

		// No non-blank line is lost or invented.
		var nonBlank int
		for _, l := range strings.Split(input, "\n") {
			if strings.TrimSpace(l) != "" {
				nonBlank++
			}
		}
		assert.Equal(t, nonBlank, lines, "input %q", input)
	}
}
