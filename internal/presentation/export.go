package presentation

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/teemow/macbridge/internal/instrumentation"
	"github.com/teemow/macbridge/internal/osascript"
)

// Format is a Keynote export format.
type Format string

const (
	FormatPDF        Format = "pdf"
	FormatPowerPoint Format = "pptx"
	FormatHTML       Format = "html"
)

// keynoteFormats maps formats to the names Keynote's export command takes.
var keynoteFormats = map[Format]string{
	FormatPDF:        "PDF",
	FormatPowerPoint: "Microsoft PowerPoint",
	FormatHTML:       "HTML",
}

// ExportRequest converts a Keynote document into another format.
type ExportRequest struct {
	Input  string
	Output string
	Format Format
}

// FormatFromPath guesses the export format from the output file extension.
func FormatFromPath(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return FormatPDF, true
	case ".pptx", ".ppt":
		return FormatPowerPoint, true
	case ".html", ".htm":
		return FormatHTML, true
	}
	return "", false
}

// Validate requires absolute paths and a known format.
func (r ExportRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Input, validation.Required, validation.By(isAbsPath)),
		validation.Field(&r.Output, validation.Required, validation.By(isAbsPath)),
		validation.Field(&r.Format, validation.Required, validation.In(FormatPDF, FormatPowerPoint, FormatHTML)),
	)
}

// Export runs Keynote's export on req.Input.
func Export(ctx context.Context, runner osascript.Runner, req ExportRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	ctx, span := instrumentation.StartSpan(ctx, "presentation.export")
	defer span.End()

	script, err := renderScript(exportScript, map[string]string{
		"input":  req.Input,
		"output": req.Output,
		"format": keynoteFormats[req.Format],
	})
	if err != nil {
		instrumentation.SetSpanError(span, err)
		return err
	}

	var res struct {
		Output string `json:"output"`
	}
	if err := osascript.RunJSON(ctx, runner, script, &res); err != nil {
		err = fmt.Errorf("failed to export %s: %w", req.Input, err)
		instrumentation.SetSpanError(span, err)
		return err
	}
	instrumentation.SetSpanSuccess(span)
	return nil
}
