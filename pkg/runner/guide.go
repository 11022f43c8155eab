package runner

import (
	"fmt"
	"strings"

	"github.com/aretw0/fsmagent/pkg/fsm"
	"github.com/aretw0/fsmagent/pkg/registry"
)

// Guide renders the orchestrator guide: the current state and its legal next
// states as line-oriented text. When reg is non-nil the registered tools are listed too.
// The guide is advisory; Machine.Transition enforces legality regardless.
func Guide(m *fsm.Machine, reg *registry.Registry) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Current State: %s\n", m.Current())

	next := m.LegalNextStates()
	switch {
	case len(next) > 0:
		fmt.Fprintf(&sb, "Valid Next States: %s", strings.Join(next, ", "))
	case m.IsTerminal():
		sb.WriteString("Valid Next States: None (Terminal State)")
	default:
		sb.WriteString("Valid Next States: None (Dead End)")
	}

	if reg != nil {
		tools := reg.List()
		if len(tools) > 0 {
			sb.WriteString("\n\nAvailable Tools:")
			for _, t := range tools {
				desc := t.Description()
				if desc == "" {
					desc = "No description"
				}
				fmt.Fprintf(&sb, "\n- %s: %s", t.Name(), desc)
			}
		}
	}

	return sb.String()
}
