// Package slides_tools provides MCP tools that turn markdown outlines into
// slides and drive Keynote or PowerPoint through the scripting bridge.
//
// Available tools:
//   - slides_parse: Split a markdown outline into slides (read-only)
//   - slides_to_markdown: Normalise an outline to one heading per slide (read-only)
//   - slides_preview_html: Render the slides as a standalone HTML page (read-only)
//   - slides_create_presentation: Build a Keynote or PowerPoint deck
//   - slides_export: Export a Keynote document to PDF, PowerPoint or HTML
//
// The last two open and modify documents on the Mac, so they are only
// registered when the server is not read-only.
//
// The markdown may start with front matter that sets the title, target and
// theme:
//
//	slides_create_presentation({
//	  markdown: "---\ntitle: Q3 review\ntheme: Gradient\n---\n# Results\n- Revenue up",
//	  target: "keynote",
//	  savePath: "/Users/me/Documents/q3.key"
//	})
package slides_tools
