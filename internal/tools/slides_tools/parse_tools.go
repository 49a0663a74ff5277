package slides_tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/macbridge/internal/server"
	"github.com/teemow/macbridge/internal/slides"
	"github.com/teemow/macbridge/internal/tools/common"
)

type parseResult struct {
	Meta   slides.Meta    `json:"meta"`
	Count  int            `json:"count"`
	Slides []slides.Slide `json:"slides"`
}

func registerParseTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	parseTool := mcp.NewTool("slides_parse",
		mcp.WithDescription("Split a markdown outline into slides. '# ' headings start a slide, '## ' headings start one only after content"),
		mcp.WithString("markdown",
			mcp.Required(),
			mcp.Description("Markdown outline, optionally with YAML or TOML front matter"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	s.AddTool(parseTool, common.InstrumentedToolHandler("slides_parse", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleParse(ctx, request, sc)
		}))

	markdownTool := mcp.NewTool("slides_to_markdown",
		mcp.WithDescription("Normalise a markdown outline: one '# ' heading per slide, blank lines between slides, front matter removed"),
		mcp.WithString("markdown",
			mcp.Required(),
			mcp.Description("Markdown outline, optionally with front matter"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	s.AddTool(markdownTool, common.InstrumentedToolHandler("slides_to_markdown", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleToMarkdown(ctx, request, sc)
		}))

	previewTool := mcp.NewTool("slides_preview_html",
		mcp.WithDescription("Render a markdown outline as a standalone HTML page with one section per slide"),
		mcp.WithString("markdown",
			mcp.Required(),
			mcp.Description("Markdown outline, optionally with front matter"),
		),
		mcp.WithString("title",
			mcp.Description("Page title (default: front matter title or the first slide title)"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	s.AddTool(previewTool, common.InstrumentedToolHandler("slides_preview_html", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handlePreview(ctx, request, sc)
		}))

	return nil
}

func handleParse(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	deck, err := loadDeck(common.StringArg(args, "markdown"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sc.Metrics().RecordSlidesParsed(ctx, len(deck.Slides))

	out := parseResult{Meta: deck.Meta, Count: len(deck.Slides), Slides: deck.Slides}
	if out.Slides == nil {
		out.Slides = []slides.Slide{}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode slides: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

func handleToMarkdown(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	deck, err := loadDeck(common.StringArg(request.GetArguments(), "markdown"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sc.Metrics().RecordSlidesParsed(ctx, len(deck.Slides))
	return mcp.NewToolResultText(slides.Markdown(deck.Slides)), nil
}

func handlePreview(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	deck, err := loadDeck(common.StringArg(args, "markdown"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(deck.Slides) == 0 {
		return mcp.NewToolResultError("no slides found"), nil
	}
	sc.Metrics().RecordSlidesParsed(ctx, len(deck.Slides))

	title := firstNonEmpty(common.StringArg(args, "title"), deck.Meta.Title, deck.Slides[0].Title, "Slides")

	var b strings.Builder
	if err := slides.WritePreview(&b, title, deck.Slides); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to render preview: %v", err)), nil
	}
	return mcp.NewToolResultText(b.String()), nil
}
