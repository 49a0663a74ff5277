package slides_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/macbridge/internal/presentation"
	"github.com/teemow/macbridge/internal/server"
	"github.com/teemow/macbridge/internal/tools/common"
)

func registerPresentationTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	createTool := mcp.NewTool("slides_create_presentation",
		mcp.WithDescription("Create a Keynote or PowerPoint presentation from a markdown outline, one slide per heading"),
		mcp.WithString("markdown",
			mcp.Required(),
			mcp.Description("Markdown outline, optionally with front matter setting title, target and theme"),
		),
		mcp.WithString("title",
			mcp.Description("Presentation title (default: front matter title or the first slide title)"),
		),
		mcp.WithString("target",
			mcp.Description("Presentation app (default from front matter or config)"),
			mcp.Enum(string(presentation.Keynote), string(presentation.PowerPoint)),
		),
		mcp.WithString("theme",
			mcp.Description("Keynote theme name, e.g. 'White' or 'Gradient'. Ignored by PowerPoint"),
		),
		mcp.WithString("savePath",
			mcp.Description("Absolute path to save the document to. Leave empty to keep it open unsaved"),
		),
	)
	s.AddTool(createTool, common.InstrumentedToolHandler("slides_create_presentation", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreatePresentation(ctx, request, sc)
		}))

	exportTool := mcp.NewTool("slides_export",
		mcp.WithDescription("Export a Keynote document to PDF, PowerPoint or HTML"),
		mcp.WithString("input",
			mcp.Required(),
			mcp.Description("Absolute path of the Keynote document"),
		),
		mcp.WithString("output",
			mcp.Required(),
			mcp.Description("Absolute path of the exported file"),
		),
		mcp.WithString("format",
			mcp.Description("Export format (default: guessed from the output extension)"),
			mcp.Enum(string(presentation.FormatPDF), string(presentation.FormatPowerPoint), string(presentation.FormatHTML)),
		),
	)
	s.AddTool(exportTool, common.InstrumentedToolHandler("slides_export", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleExport(ctx, request, sc)
		}))

	return nil
}

func handleCreatePresentation(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	cfg := sc.Config()

	deck, err := loadDeck(common.StringArg(args, "markdown"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(deck.Slides) == 0 {
		return mcp.NewToolResultError(presentation.ErrNoSlides.Error()), nil
	}
	sc.Metrics().RecordSlidesParsed(ctx, len(deck.Slides))

	target, err := presentation.ParseTarget(firstNonEmpty(common.StringArg(args, "target"), deck.Meta.Target, cfg.Slides.Target))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	renderer, err := sc.Renderer(target)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := renderer.Render(ctx, presentation.Request{
		Title:    firstNonEmpty(common.StringArg(args, "title"), deck.Meta.Title, deck.Slides[0].Title),
		Theme:    firstNonEmpty(common.StringArg(args, "theme"), deck.Meta.Theme, cfg.Slides.Theme),
		Slides:   deck.Slides,
		SavePath: common.StringArg(args, "savePath"),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	msg := fmt.Sprintf("Created %s presentation with %d slides", result.Target, result.Slides)
	if result.Skipped > 0 {
		msg += fmt.Sprintf(" (%d placeholders could not be filled)", result.Skipped)
	}
	if result.SavedTo != "" {
		msg += fmt.Sprintf("\nSaved to: %s", result.SavedTo)
	}
	msg += fmt.Sprintf("\nRun ID: %s", result.RunID)
	return mcp.NewToolResultText(msg), nil
}

func handleExport(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	req := presentation.ExportRequest{
		Input:  common.StringArg(args, "input"),
		Output: common.StringArg(args, "output"),
		Format: presentation.Format(common.StringArg(args, "format")),
	}
	if req.Format == "" {
		format, ok := presentation.FormatFromPath(req.Output)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("cannot tell the export format from %q, set format", req.Output)), nil
		}
		req.Format = format
	}

	if err := presentation.Export(ctx, sc.Runner(), req); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Exported %s to %s (%s)", req.Input, req.Output, req.Format)), nil
}
