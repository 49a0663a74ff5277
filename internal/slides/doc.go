// Package slides turns markdown outlines into slide records.
//
// An outline uses "# " headings for slide titles; everything under a heading
// becomes the slide's content. Parse and Markdown are inverse to each other
// for any outline Parse produced:
//
//	slides := slides.Parse(src)
//	slides.Parse(slides.Markdown(slides)) // same slides
//
// Deck files may start with YAML, TOML or JSON front matter naming the title,
// target application and theme. WritePreview renders a deck to HTML for a
// quick look without Keynote or PowerPoint.
package slides
