package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teemow/macbridge/internal/presentation"
	"github.com/teemow/macbridge/internal/slides"
)

func newSlidesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slides",
		Short: "Turn markdown outlines into slides",
		Long: `Turn markdown outlines into slides.

A "# " heading starts a slide. A "## " heading starts a slide only when the
current slide already has content, otherwise it stays on the slide as a
subtitle. Every other non-blank line is slide content. A deck file may start
with front matter setting title, target and theme.`,
	}
	cmd.AddCommand(newSlidesParseCmd())
	cmd.AddCommand(newSlidesPreviewCmd())
	cmd.AddCommand(newSlidesCreateCmd())
	cmd.AddCommand(newSlidesExportCmd())
	return cmd
}

// loadDeckArg reads the deck named by a command argument, "-" meaning stdin.
func loadDeckArg(cmd *cobra.Command, path string) (*slides.Deck, error) {
	if path == "-" {
		return slides.LoadDeck(cmd.InOrStdin())
	}
	return slides.LoadDeckFile(path)
}

func newSlidesParseCmd() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "parse FILE",
		Short: "Print the slides of a markdown outline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deck, err := loadDeckArg(cmd, args[0])
			if err != nil {
				return err
			}

			if jsonOut {
				records := deck.Slides
				if records == nil {
					records = []slides.Slide{}
				}
				return writeJSON(cmd.OutOrStdout(), records)
			}

			w := cmd.OutOrStdout()
			if len(deck.Slides) == 0 {
				_, err := fmt.Fprintln(w, "No slides found.")
				return err
			}
			for i, s := range deck.Slides {
				title := s.Title
				if title == "" {
					title = "(untitled)"
				}
				fmt.Fprintln(w, termStyler{}.Heading(fmt.Sprintf("Slide %d: %s", i+1, title)))
				for _, line := range s.Content {
					fmt.Fprintf(w, "  %s\n", line)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the slides as JSON records")
	return cmd
}

func newSlidesPreviewCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "preview FILE",
		Short: "Render a markdown outline as an HTML page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deck, err := loadDeckArg(cmd, args[0])
			if err != nil {
				return err
			}
			if len(deck.Slides) == 0 {
				return presentation.ErrNoSlides
			}

			title := deck.Meta.Title
			if title == "" {
				title = deck.Slides[0].Title
			}

			if output == "" {
				return slides.WritePreview(cmd.OutOrStdout(), title, deck.Slides)
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", output, err)
			}
			if err := slides.WritePreview(f, title, deck.Slides); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Preview written to: %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	return cmd
}

func newSlidesCreateCmd() *cobra.Command {
	var (
		target string
		theme  string
		save   string
	)

	cmd := &cobra.Command{
		Use:   "create FILE [TITLE]",
		Short: "Build a Keynote or PowerPoint presentation from a markdown outline",
		Example: `  macbridge slides create talk.md "Quarterly review"
  macbridge slides create talk.md --target powerpoint --save ~/Documents/talk.pptx`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			deck, err := loadDeckArg(cmd, args[0])
			if err != nil {
				return err
			}
			if len(deck.Slides) == 0 {
				return presentation.ErrNoSlides
			}

			sc, err := newCLIContext(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = sc.Shutdown() }()
			cfg := sc.Config()

			title := firstNonEmpty(deck.Meta.Title, deck.Slides[0].Title)
			if len(args) == 2 {
				title = args[1]
			}

			t, err := presentation.ParseTarget(firstNonEmpty(target, deck.Meta.Target, cfg.Slides.Target))
			if err != nil {
				return err
			}

			savePath := save
			if savePath != "" {
				if savePath, err = filepath.Abs(expandTilde(savePath)); err != nil {
					return err
				}
			}

			renderer, err := sc.Renderer(t)
			if err != nil {
				return err
			}
			result, err := renderer.Render(cmd.Context(), presentation.Request{
				Title:    title,
				Theme:    firstNonEmpty(theme, deck.Meta.Theme, cfg.Slides.Theme),
				Slides:   deck.Slides,
				SavePath: savePath,
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Created %s presentation %q with %d slides\n", result.Target, title, result.Slides)
			if result.Skipped > 0 {
				fmt.Fprintln(w, termStyler{}.Muted(fmt.Sprintf("%d placeholders could not be filled", result.Skipped)))
			}
			if result.SavedTo != "" {
				fmt.Fprintf(w, "Saved to: %s\n", result.SavedTo)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&target, "target", "", "keynote or powerpoint (default from front matter or config)")
	cmd.Flags().StringVar(&theme, "theme", "", "Keynote theme name (default from front matter or config)")
	cmd.Flags().StringVar(&save, "save", "", "Save the document to this path")
	return cmd
}

func newSlidesExportCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "export INPUT OUTPUT",
		Short: "Export a Keynote document to PDF, PowerPoint or HTML",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := filepath.Abs(expandTilde(args[0]))
			if err != nil {
				return err
			}
			output, err := filepath.Abs(expandTilde(args[1]))
			if err != nil {
				return err
			}

			f := presentation.Format(strings.ToLower(format))
			if f == "" {
				var ok bool
				if f, ok = presentation.FormatFromPath(output); !ok {
					return fmt.Errorf("cannot tell the export format from %s, use --format pdf|pptx|html", output)
				}
			}

			sc, err := newCLIContext(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = sc.Shutdown() }()

			if err := presentation.Export(cmd.Context(), sc.Runner(), presentation.ExportRequest{
				Input:  input,
				Output: output,
				Format: f,
			}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported to: %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "pdf, pptx or html (default: from the output extension)")
	return cmd
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// expandTilde expands a leading ~/ to the home directory.
func expandTilde(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
