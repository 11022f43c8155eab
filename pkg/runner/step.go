package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/fsmagent/pkg/domain"
	"github.com/aretw0/fsmagent/pkg/registry"
	"github.com/google/uuid"
)

// ErrInterceptor wraps a failure of the interceptor itself, as opposed to a
// denial. It always stops the run, even in feedback mode.
var ErrInterceptor = errors.New("tool interceptor failed")

// Snapshot is what a decision source is guaranteed to see at each step.
type Snapshot struct {
	Step     int      `json:"step"`
	State    string   `json:"state"`
	Legal    []string `json:"legal"`
	Terminal bool     `json:"terminal"`

	// Guide is the orchestrator guide text for this step.
	Guide string `json:"guide"`

	// Observations holds every tool result of the run so far, oldest first.
	Observations []domain.ToolResult `json:"observations,omitempty"`
}

// Step is the per-iteration handle given to a Driver.
// Dispatching through Step (rather than the registry directly) applies the
// runner's interceptor, fires tool hooks and records observations.
type Step struct {
	Snapshot

	runner  *Runner
	runID   string
	results []domain.ToolResult
}

// Execute dispatches a tool by name for this step.
func (s *Step) Execute(ctx context.Context, name string, args registry.Args) (any, error) {
	return s.Dispatch(ctx, domain.ToolCall{Name: name, Args: args})
}

// Dispatch runs a ToolCall through the interceptor and the registry.
// The result, success or failure, is recorded as an observation.
func (s *Step) Dispatch(ctx context.Context, call domain.ToolCall) (any, error) {
	r := s.runner
	if call.ID == "" {
		call.ID = uuid.NewString()
	}

	if r.interceptor != nil {
		allowed, denial, err := r.interceptor(ctx, s.State, call)
		if err != nil {
			s.record(domain.ToolResult{ID: call.ID, Name: call.Name, IsError: true, Error: err.Error()})
			return nil, fmt.Errorf("%w: %w", ErrInterceptor, err)
		}
		if !allowed {
			denial.ID = call.ID
			denial.Name = call.Name
			denial.IsError = true
			if denial.Error == "" {
				denial.Error = fmt.Sprintf("tool %q denied in state %q", call.Name, s.State)
			}
			s.record(denial)
			return nil, fmt.Errorf("%w: %s", domain.ErrToolDenied, denial.Error)
		}
	}

	if r.hooks.OnToolCall != nil {
		r.hooks.OnToolCall(ctx, &domain.ToolEvent{
			EventBase: r.event(domain.EventToolCall, s.runID),
			State:     s.State,
			ToolName:  call.Name,
			Input:     call.Args,
		})
	}

	started := time.Now()
	output, err := r.registry.Execute(ctx, call.Name, call.Args)
	elapsed := time.Since(started)

	result := domain.ToolResult{ID: call.ID, Name: call.Name, Result: output}
	if err != nil {
		result.IsError = true
		result.Error = err.Error()
	}
	s.record(result)

	r.logger.Debug("tool", "run_id", s.runID, "tool", call.Name, "is_error", result.IsError, "duration", elapsed)
	if r.hooks.OnToolReturn != nil {
		r.hooks.OnToolReturn(ctx, &domain.ToolEvent{
			EventBase: r.event(domain.EventToolReturn, s.runID),
			State:     s.State,
			ToolName:  call.Name,
			Input:     call.Args,
			Output:    output,
			IsError:   result.IsError,
			Duration:  elapsed,
		})
	}

	return output, err
}

// Transition moves the machine directly, without going through a tool.
func (s *Step) Transition(target string) error {
	_, err := s.runner.machine.Transition(target)
	return err
}

func (s *Step) record(result domain.ToolResult) {
	s.results = append(s.results, result)
}
