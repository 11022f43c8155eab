package runner

import (
	"context"
	"fmt"

	"github.com/aretw0/fsmagent/pkg/domain"
	"github.com/aretw0/fsmagent/pkg/fsm"
	"github.com/aretw0/fsmagent/pkg/registry"
)

// TransitionToolName is the name of the tool returned by TransitionTool.
const TransitionToolName = "transition_state"

// TransitionTool exposes Machine.Transition as a tool, so a decision source can
// advance the workflow. Invalid targets surface as *domain.InvalidTransitionError.
func TransitionTool(m *fsm.Machine) registry.Tool {
	return registry.Func(TransitionToolName,
		"Transitions the agent to the next state. Call it once the work of the current state is done.",
		func(ctx context.Context, args registry.Args) (any, error) {
			next, err := args.String("next_state")
			if err != nil {
				return nil, err
			}
			if _, err := args.StringOr("reason", ""); err != nil {
				return nil, err
			}
			if _, err := m.Transition(next); err != nil {
				return nil, err
			}
			return fmt.Sprintf("Successfully transitioned to %s", next), nil
		},
		registry.Param("next_state", domain.ParamString, "One of the valid next states", true),
		registry.Param("reason", domain.ParamString, "Why the transition is taken", false),
	)
}
