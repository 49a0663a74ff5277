// Package osascript runs JavaScript for Automation (JXA) scripts through the
// macOS osascript binary.
//
// Scripts receive their data as JSON literals produced by Literal, and hand
// results back by returning a JSON string from run(). RunJSON decodes that
// output into a Go value:
//
//	script := "function run() { return JSON.stringify(Application('Calendar').calendars.name()); }"
//	var names []string
//	err := osascript.RunJSON(ctx, osascript.NewExecRunner(), script, &names)
package osascript
