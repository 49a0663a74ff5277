package slides

import (
	"bytes"
	"fmt"
	"html/template"
	"io"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var engine = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

var previewPage = template.Must(template.New("preview").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: -apple-system, sans-serif; background: #eee; margin: 0; padding: 2em; }
section.slide { background: #fff; width: 960px; min-height: 540px; margin: 0 auto 2em; padding: 3em; box-sizing: border-box; box-shadow: 0 2px 8px rgba(0,0,0,.2); }
section.slide .number { float: right; color: #999; }
</style>
</head>
<body>
{{range $i, $s := .Slides}}<section class="slide" id="slide-{{inc $i}}"><span class="number">{{inc $i}}</span>
{{$s}}</section>
{{end}}</body>
</html>
`))

// RenderHTML renders one slide as an HTML fragment. Raw HTML in the
// content is not passed through.
func RenderHTML(s Slide) (string, error) {
	var buf bytes.Buffer
	if err := engine.Convert([]byte(Markdown([]Slide{s})), &buf); err != nil {
		return "", fmt.Errorf("failed to render slide %q: %w", s.Title, err)
	}
	return buf.String(), nil
}

// WritePreview writes a standalone HTML page showing every slide.
func WritePreview(w io.Writer, title string, slides []Slide) error {
	sections := make([]template.HTML, 0, len(slides))
	for _, s := range slides {
		fragment, err := RenderHTML(s)
		if err != nil {
			return err
		}
		sections = append(sections, template.HTML(fragment))
	}

	return previewPage.Execute(w, struct {
		Title  string
		Slides []template.HTML
	}{Title: title, Slides: sections})
}
