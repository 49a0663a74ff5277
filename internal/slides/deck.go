package slides

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/adrg/frontmatter"
)

// Meta is the optional front matter of a deck file:
//
//	---
//	title: Quarterly review
//	target: powerpoint
//	theme: Gradient
//	---
type Meta struct {
	Title  string `yaml:"title" toml:"title" json:"title"`
	Target string `yaml:"target" toml:"target" json:"target"`
	Theme  string `yaml:"theme" toml:"theme" json:"theme"`
}

// Deck is a parsed deck file.
type Deck struct {
	Meta   Meta
	Slides []Slide
}

// LoadDeck reads a deck: optional front matter followed by a markdown outline.
// A leading block only counts as front matter when it sets at least one Meta
// field. Anything else, such as a deck opening with a "---" rule, is parsed
// as plain markdown, so the slides always match Parse on the same text.
func LoadDeck(r io.Reader) (*Deck, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read deck: %w", err)
	}

	var meta Meta
	body, err := frontmatter.Parse(bytes.NewReader(data), &meta)
	if err != nil || meta == (Meta{}) {
		return &Deck{Slides: Parse(string(data))}, nil
	}
	return &Deck{Meta: meta, Slides: Parse(string(body))}, nil
}

// LoadDeckFile reads the deck at path.
func LoadDeckFile(path string) (*Deck, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read deck: %w", err)
	}
	deck, err := LoadDeck(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return deck, nil
}
