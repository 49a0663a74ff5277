package slides_tools

import (
	"fmt"
	"strings"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/macbridge/internal/server"
	"github.com/teemow/macbridge/internal/slides"
)

// RegisterSlidesTools registers the slide tools. Tools that create or export
// documents are left out when readOnly is set.
func RegisterSlidesTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	if err := registerParseTools(s, sc); err != nil {
		return fmt.Errorf("failed to register parse tools: %w", err)
	}

	if readOnly {
		return nil
	}

	if err := registerPresentationTools(s, sc); err != nil {
		return fmt.Errorf("failed to register presentation tools: %w", err)
	}

	return nil
}

// loadDeck parses markdown with optional front matter.
func loadDeck(markdown string) (*slides.Deck, error) {
	if strings.TrimSpace(markdown) == "" {
		return nil, fmt.Errorf("markdown is required")
	}
	return slides.LoadDeck(strings.NewReader(markdown))
}

// firstNonEmpty returns the first value that is not blank.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
