package runner

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/fsmagent/pkg/domain"
)

// Driver performs one loop step: pick an action and carry it out.
type Driver interface {
	Step(ctx context.Context, step *Step) error
}

// DriverFunc adapts a function into a Driver.
type DriverFunc func(ctx context.Context, step *Step) error

func (f DriverFunc) Step(ctx context.Context, step *Step) error { return f(ctx, step) }

// Handler is the deterministic work for one state.
// It is expected to leave the state, typically via step.Transition or a tool.
type Handler func(ctx context.Context, step *Step) error

// Handlers is a deterministic decision table keyed by state name.
type Handlers map[string]Handler

// Step runs the handler registered for the current state.
// A missing entry is reported as domain.ErrNoHandler.
func (h Handlers) Step(ctx context.Context, step *Step) error {
	fn, ok := h[step.State]
	if !ok || fn == nil {
		return fmt.Errorf("%w: %q", domain.ErrNoHandler, step.State)
	}
	return fn(ctx, step)
}

// Decider selects exactly one tool call per step.
// Returning domain.ErrNoDecision ends the run as OutcomeNoHandlerFatal.
type Decider interface {
	Decide(ctx context.Context, snap Snapshot) (domain.ToolCall, error)
}

// DeciderFunc adapts a function into a Decider.
type DeciderFunc func(ctx context.Context, snap Snapshot) (domain.ToolCall, error)

func (f DeciderFunc) Decide(ctx context.Context, snap Snapshot) (domain.ToolCall, error) {
	return f(ctx, snap)
}

// Delegate returns a Driver that asks d for a tool call and dispatches it.
func Delegate(d Decider) Driver {
	return &delegate{decider: d}
}

type delegate struct {
	decider Decider
}

func (d *delegate) Step(ctx context.Context, step *Step) error {
	call, err := d.decider.Decide(ctx, step.Snapshot)
	if err != nil {
		if errors.Is(err, domain.ErrNoDecision) {
			return fmt.Errorf("%w: %q: %w", domain.ErrNoHandler, step.State, err)
		}
		return fmt.Errorf("decide: %w", err)
	}

	_, err = step.Dispatch(ctx, call)
	if err != nil && step.runner.feedback && recoverable(err) {
		// Already recorded as an observation for the next decision.
		step.runner.logger.Debug("tool error fed back", "run_id", step.runID, "tool", call.Name, "error", err)
		return nil
	}
	return err
}

// recoverable reports whether a dispatch error can be shown to the decision
// source. Context and interceptor errors always stop the run.
func recoverable(err error) bool {
	return !errors.Is(err, context.Canceled) &&
		!errors.Is(err, context.DeadlineExceeded) &&
		!errors.Is(err, ErrInterceptor)
}
