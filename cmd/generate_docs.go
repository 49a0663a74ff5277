package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/teemow/macbridge/internal/resources"
	"github.com/teemow/macbridge/internal/server"
)

// docSections orders the reference by tool name prefix.
var docSections = []struct {
	prefix string
	title  string
	intro  string
}{
	{
		prefix: "calendar_",
		title:  "Calendar Tools",
		intro: "Calendar tools accept an optional `source`: `apple` reads Calendar.app through the scripting bridge " +
			"(default), `google` reads Google Calendar for an `account` authorized with `macbridge auth google`, " +
			"and `file` reads the JSON events file set in the config file.",
	},
	{
		prefix: "slides_",
		title:  "Slides Tools",
		intro: "Slides tools take a markdown outline. `# ` starts a slide, and `## ` starts one only after the " +
			"current slide has content.",
	},
}

func newGenerateDocsCmd() *cobra.Command {
	var outputFile string

	cmd := &cobra.Command{
		Use:   "generate-docs",
		Short: "Generate the MCP tool reference",
		Long: `Generate a markdown reference of the MCP tools and resources macbridge serves.
The reference is built from the registered tool definitions, and marks the
tools that are only available with 'macbridge serve --yolo'.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if outputFile == "" {
				return writeToolsReference(cmd.OutOrStdout())
			}

			f, err := os.Create(outputFile)
			if err != nil {
				return fmt.Errorf("failed to create output file: %w", err)
			}
			if err := writeToolsReference(f); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("failed to write output file: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Documentation written to: %s\n", outputFile)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

// writeToolsReference registers the tools twice, read-only and with write
// tools, so the reference can tell which ones need --yolo.
func writeToolsReference(w io.Writer) error {
	all, err := listTools(false)
	if err != nil {
		return err
	}
	readOnly, err := listTools(true)
	if err != nil {
		return err
	}

	safe := make(map[string]bool, len(readOnly))
	for _, tool := range readOnly {
		safe[tool.Name] = true
	}

	_, err = io.WriteString(w, toolsReference(all, safe))
	return err
}

// listTools registers the tools on a throwaway server and returns their
// definitions sorted by name. Tools only read the config when called, so
// defaults are enough here.
func listTools(readOnly bool) ([]mcp.Tool, error) {
	serverContext, err := server.NewServerContext(context.Background(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		_ = serverContext.Shutdown()
	}()

	mcpSrv := mcpserver.NewMCPServer("macbridge", version, mcpserver.WithToolCapabilities(true))
	if err := registerAllTools(mcpSrv, serverContext, readOnly); err != nil {
		return nil, err
	}

	tools := make([]mcp.Tool, 0)
	for _, serverTool := range mcpSrv.ListTools() {
		tools = append(tools, serverTool.Tool)
	}
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name < tools[j].Name })
	return tools, nil
}

// toolsReference renders tools grouped by docSections. safe holds the names
// of tools registered in read-only mode.
func toolsReference(tools []mcp.Tool, safe map[string]bool) string {
	var sb strings.Builder

	sb.WriteString("# MCP Tools Reference\n\n")
	sb.WriteString("Tools and resources served by `macbridge serve`. Generated with `macbridge generate-docs`.\n\n")
	sb.WriteString("The server starts read-only. Tools marked **write** open and save documents on the Mac and are " +
		"only registered with `--yolo`.\n\n")

	for _, section := range docSections {
		var inSection []mcp.Tool
		for _, tool := range tools {
			if strings.HasPrefix(tool.Name, section.prefix) {
				inSection = append(inSection, tool)
			}
		}
		if len(inSection) == 0 {
			continue
		}

		fmt.Fprintf(&sb, "## %s\n\n%s\n\n", section.title, section.intro)
		for _, tool := range inSection {
			writeToolSection(&sb, tool, !safe[tool.Name])
		}
	}

	sb.WriteString("## Resources\n\n")
	fmt.Fprintf(&sb, "- `%s`: effective workday, free slot and presentation defaults (JSON)\n", resources.SettingsURI)
	fmt.Fprintf(&sb, "- `%s`: free slots of today's workday with the configured defaults\n", resources.TodayFreeSlotsURI)

	return sb.String()
}

func writeToolSection(sb *strings.Builder, tool mcp.Tool, write bool) {
	mode := "read-only"
	if write {
		mode = "**write**, needs `--yolo`"
	}
	fmt.Fprintf(sb, "### %s\n\n%s (%s)\n\n", tool.Name, tool.Description, mode)

	if len(tool.InputSchema.Properties) == 0 {
		return
	}

	names := make([]string, 0, len(tool.InputSchema.Properties))
	for name := range tool.InputSchema.Properties {
		names = append(names, name)
	}
	// Required arguments first, then alphabetical.
	sort.Slice(names, func(i, j int) bool {
		ri := slices.Contains(tool.InputSchema.Required, names[i])
		rj := slices.Contains(tool.InputSchema.Required, names[j])
		if ri != rj {
			return ri
		}
		return names[i] < names[j]
	})

	sb.WriteString("| Argument | Type | Required | Description |\n")
	sb.WriteString("|---|---|---|---|\n")
	for _, name := range names {
		prop, _ := tool.InputSchema.Properties[name].(map[string]any)
		required := "no"
		if slices.Contains(tool.InputSchema.Required, name) {
			required = "yes"
		}
		fmt.Fprintf(sb, "| `%s` | %s | %s | %s |\n", name, argType(prop), required, argDescription(prop))
	}
	sb.WriteString("\n")
}

// argType returns the JSON schema type, with "[]" for arrays of a typed item.
func argType(prop map[string]any) string {
	t, _ := prop["type"].(string)
	if t == "" {
		return "any"
	}
	if t == "array" {
		if items, ok := prop["items"].(map[string]any); ok {
			if it, ok := items["type"].(string); ok {
				return it + "[]"
			}
		}
	}
	return t
}

// argDescription returns the description plus the allowed values of an enum.
func argDescription(prop map[string]any) string {
	desc, _ := prop["description"].(string)
	desc = strings.ReplaceAll(desc, "|", `\|`)

	var values []string
	switch enum := prop["enum"].(type) {
	case []string:
		values = enum
	case []any:
		for _, v := range enum {
			values = append(values, fmt.Sprint(v))
		}
	}
	if len(values) > 0 {
		desc += " One of: `" + strings.Join(values, "`, `") + "`."
	}
	return desc
}
