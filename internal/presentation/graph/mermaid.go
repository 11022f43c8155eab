package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/fsmagent/pkg/domain"
)

// Overlay contains run data to visualize on the graph.
type Overlay struct {
	Visited []string
	Current string
}

// GenerateMermaid produces a Mermaid flowchart for a graph.
// It applies semantic styling:
// - Initial: ((Circle))
// - Terminal: (((Double circle)))
// - Dead end: [/Trapezoid\]
// - Default: [Rectangle]
// States are emitted in sorted order so output is stable.
func GenerateMermaid(cfg domain.GraphConfig, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	terminal := make(map[string]bool, len(cfg.Terminal))
	for _, s := range cfg.Terminal {
		terminal[s] = true
	}

	names := make([]string, 0, len(cfg.States))
	for name := range cfg.States {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		targets := cfg.States[name]
		safeID := sanitizeMermaidID(name)

		opener, closer := "[", "]"
		switch {
		case terminal[name]:
			opener, closer = "(((", ")))"
		case name == cfg.Initial:
			opener, closer = "((", "))"
		case len(targets) == 0:
			opener, closer = "[/", "\\]"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, escapeLabel(name), closer)

		for _, to := range targets {
			arrow := "-->"
			if to == name {
				arrow = "-.->"
			}
			fmt.Fprintf(&sb, "    %s %s %s\n", safeID, arrow, sanitizeMermaidID(to))
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Black text keeps contrast on light fills in both themes.
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, id := range overlay.Visited {
			safeID := sanitizeMermaidID(id)
			if safeID == "" || seen[safeID] || id == overlay.Current {
				continue
			}
			seen[safeID] = true
			fmt.Fprintf(&sb, "    class %s visited;\n", safeID)
		}

		if overlay.Current != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(overlay.Current))
		}
	}

	return sb.String()
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	r := strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_", "\"", "_")
	s := r.Replace(id)
	// "end" is a Mermaid keyword.
	if strings.EqualFold(s, "end") {
		s += "_"
	}
	return s
}
