package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/aretw0/fsmagent/pkg/domain"
	"github.com/aretw0/fsmagent/pkg/fsm"
	"github.com/aretw0/fsmagent/pkg/registry"
	"github.com/google/uuid"
)

// Runner drives a Machine to completion, one step at a time.
// A Runner and the Machine/Registry it owns belong to a single workflow.
type Runner struct {
	machine     *fsm.Machine
	registry    *registry.Registry
	maxSteps    int
	logger      *slog.Logger
	hooks       domain.LifecycleHooks
	feedback    bool
	guideTools  bool
	interceptor ToolInterceptor
}

// Report summarizes a finished run.
type Report struct {
	RunID        string              `json:"run_id"`
	Outcome      domain.Outcome      `json:"outcome"`
	Steps        int                 `json:"steps"`
	FinalState   string              `json:"final_state"`
	Path         []string            `json:"path"`
	Observations []domain.ToolResult `json:"observations,omitempty"`
}

// New creates a Runner for the given machine and registry.
func New(m *fsm.Machine, reg *registry.Registry, opts ...Option) *Runner {
	r := &Runner{
		machine:  m,
		registry: reg,
		maxSteps: DefaultMaxSteps,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.registry == nil {
		r.registry = registry.NewRegistry()
	}
	return r
}

// Machine returns the state machine driven by the runner.
func (r *Runner) Machine() *fsm.Machine { return r.machine }

// Registry returns the tool registry used for dispatch.
func (r *Runner) Registry() *registry.Registry { return r.registry }

// Run executes the loop until the machine is terminal, the budget is exhausted,
// the driver cannot act, or a step fails. The Report is always returned; the
// error is nil only for OutcomeTerminal.
func (r *Runner) Run(ctx context.Context, driver Driver) (*Report, error) {
	report := &Report{
		RunID:   uuid.NewString(),
		Outcome: domain.OutcomeRunning,
	}
	logger := r.logger.With("run_id", report.RunID)
	startIdx := len(r.machine.History()) - 1

	var runErr error
	for {
		state := r.machine.Current()

		if r.machine.IsTerminal() {
			report.Outcome = domain.OutcomeTerminal
			break
		}
		if r.machine.IsDeadEnd() {
			report.Outcome = domain.OutcomeNoHandlerFatal
			runErr = fmt.Errorf("%w: %q has no legal next states and is not terminal", domain.ErrDeadEnd, state)
			break
		}
		if r.maxSteps > 0 && report.Steps >= r.maxSteps {
			report.Outcome = domain.OutcomeBudgetExceeded
			runErr = fmt.Errorf("%w: stopped after %d steps in state %q", domain.ErrBudgetExceeded, report.Steps, state)
			break
		}
		if err := ctx.Err(); err != nil {
			report.Outcome = domain.OutcomeAborted
			runErr = err
			break
		}

		report.Steps++
		step := r.newStep(report, state)

		logger.Debug("step", "step", report.Steps, "state", state, "legal", step.Legal)
		if r.hooks.OnStep != nil {
			r.hooks.OnStep(ctx, &domain.StepEvent{
				EventBase: r.event(domain.EventStep, report.RunID),
				Step:      report.Steps,
				State:     state,
				Legal:     slices.Clone(step.Legal),
			})
		}

		err := driver.Step(ctx, step)
		report.Observations = append(report.Observations, step.results...)

		if next := r.machine.Current(); next != state {
			logger.Debug("transition", "from", state, "to", next)
			if r.hooks.OnTransition != nil {
				r.hooks.OnTransition(ctx, &domain.TransitionEvent{
					EventBase: r.event(domain.EventTransition, report.RunID),
					Step:      report.Steps,
					From:      state,
					To:        next,
				})
			}
		}

		if err != nil {
			if errors.Is(err, domain.ErrNoHandler) {
				report.Outcome = domain.OutcomeNoHandlerFatal
			} else {
				report.Outcome = domain.OutcomeAborted
			}
			runErr = fmt.Errorf("step %d in state %q: %w", report.Steps, state, err)
			break
		}
	}

	report.FinalState = r.machine.Current()
	if history := r.machine.History(); startIdx >= 0 && startIdx < len(history) {
		report.Path = history[startIdx:]
	}

	if runErr != nil {
		logger.Warn("run stopped", "outcome", report.Outcome, "steps", report.Steps, "state", report.FinalState, "error", runErr)
	} else {
		logger.Info("run finished", "outcome", report.Outcome, "steps", report.Steps, "state", report.FinalState)
	}

	if r.hooks.OnRunEnd != nil {
		ev := &domain.RunEvent{
			EventBase:  r.event(domain.EventRunEnd, report.RunID),
			Outcome:    report.Outcome,
			Steps:      report.Steps,
			FinalState: report.FinalState,
		}
		if runErr != nil {
			ev.Error = runErr.Error()
		}
		r.hooks.OnRunEnd(ctx, ev)
	}

	return report, runErr
}

func (r *Runner) newStep(report *Report, state string) *Step {
	var tools *registry.Registry
	if r.guideTools {
		tools = r.registry
	}
	observations := make([]domain.ToolResult, len(report.Observations))
	copy(observations, report.Observations)

	return &Step{
		Snapshot: Snapshot{
			Step:         report.Steps,
			State:        state,
			Legal:        r.machine.LegalNextStates(),
			Terminal:     r.machine.IsTerminal(),
			Guide:        Guide(r.machine, tools),
			Observations: observations,
		},
		runner: r,
		runID:  report.RunID,
	}
}

func (r *Runner) event(t domain.EventType, runID string) domain.EventBase {
	return domain.EventBase{
		Timestamp: time.Now(),
		Type:      t,
		RunID:     runID,
	}
}
