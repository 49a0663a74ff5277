// Package presentation builds Keynote and PowerPoint documents from parsed
// slides by driving the apps through the scripting bridge.
//
// The first slide of the new document is reused and further slides are
// appended. A slide's title goes into the layout's title placeholder and
// its body (the content lines joined with newlines) into the body
// placeholder. Placeholders a layout lacks are skipped and counted in
// Result.Skipped.
package presentation
