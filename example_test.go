package fsmagent_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/fsmagent"
	"github.com/aretw0/fsmagent/pkg/domain"
	"github.com/aretw0/fsmagent/pkg/dsl"
	"github.com/aretw0/fsmagent/pkg/registry"
	"github.com/aretw0/fsmagent/pkg/runner"
)

// ExampleNew shows a deterministic workflow driven by per-state handlers.
func ExampleNew() {
	agent, err := fsmagent.New(domain.GraphConfig{
		States: map[string][]string{
			"start":     {"analyzing"},
			"analyzing": {"approved", "rejected"},
			"approved":  {"end"},
			"rejected":  {"end"},
			"end":       {},
		},
		Initial:  "start",
		Terminal: []string{"end"},
	})
	if err != nil {
		log.Fatal(err)
	}

	finish := func(ctx context.Context, s *runner.Step) error { return s.Transition("end") }
	report, err := agent.Run(context.Background(), runner.Handlers{
		"start":     func(ctx context.Context, s *runner.Step) error { return s.Transition("analyzing") },
		"analyzing": func(ctx context.Context, s *runner.Step) error { return s.Transition("approved") },
		"approved":  finish,
		"rejected":  finish,
	})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(report.Outcome, report.Path)
	// Output: terminal_success [start analyzing approved end]
}

// ExampleAgent_Guide shows the orchestrator guide handed to a model.
func ExampleAgent_Guide() {
	b := dsl.New()
	b.Add("start").Go("researching").
		Add("researching").Go("writing").
		Add("writing").Go("end").
		Add("end").Terminal()

	agent, err := fsmagent.New(b.Config(), fsmagent.WithTools(
		registry.Func("research_web", "Researches a topic on the web.", func(ctx context.Context, args registry.Args) (any, error) {
			return "results", nil
		}),
	))
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(agent.Guide(true))
	// Output:
	// Current State: start
	// Valid Next States: researching
	//
	// Available Tools:
	// - transition_state: Transitions the agent to the next state. Call it once the work of the current state is done.
	// - research_web: Researches a topic on the web.
}

// ExampleAgent_Run_delegate shows a decision source choosing one tool call per step.
func ExampleAgent_Run_delegate() {
	agent, err := fsmagent.New(domain.GraphConfig{
		States:   map[string][]string{"start": {"end"}, "end": {}},
		Initial:  "start",
		Terminal: []string{"end"},
	}, fsmagent.WithFeedback(true))
	if err != nil {
		log.Fatal(err)
	}

	decider := runner.DeciderFunc(func(ctx context.Context, snap runner.Snapshot) (domain.ToolCall, error) {
		return runner.ParseToolCall(fmt.Sprintf(`{"name": "transition_state", "args": {"next_state": %q}}`, snap.Legal[0]))
	})

	report, err := agent.Run(context.Background(), runner.Delegate(decider))
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(report.Outcome, report.Steps, report.Observations[0].Result)
	// Output: terminal_success 1 Successfully transitioned to end
}
