package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/fsmagent/pkg/domain"
	"github.com/charmbracelet/glamour"
)

// Renderer turns markdown into terminal output.
type Renderer func(markdown string) (string, error)

// NewRenderer returns a glamour-backed renderer.
// If glamour cannot be initialized the markdown is returned as-is.
func NewRenderer() Renderer {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
	)
	if err != nil {
		return PlainRenderer
	}
	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// PlainRenderer passes markdown through, for pipes and tests.
func PlainRenderer(markdown string) (string, error) {
	return markdown, nil
}

// StepMarkdown formats one interactive step.
func StepMarkdown(step int, state string, legal []string, guide string, last *domain.ToolResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## Step %d: `%s`\n\n", step, state)
	sb.WriteString("```\n")
	sb.WriteString(guide)
	sb.WriteString("\n```\n")

	if last != nil {
		sb.WriteString("\n")
		if last.IsError {
			fmt.Fprintf(&sb, "> **%s failed:** %s\n", last.Name, last.Error)
		} else {
			fmt.Fprintf(&sb, "> **%s:** %v\n", last.Name, last.Result)
		}
	}

	if len(legal) > 0 {
		sb.WriteString("\nChoose the next state:\n\n")
		for i, s := range legal {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, s)
		}
	}
	return sb.String()
}
