/*
Package fsmagent is a deterministic control layer for multi-step agent workflows.

It pairs a finite-state machine, which decides which transitions are legal, with a
named-tool registry that executes side effects on behalf of an external decision
source: plain Go code or a language model.

# Concept

The graph is data: a map from each state to its allowed next states, an initial
state and an optional set of terminal states. The machine only moves along declared
edges; anything else is rejected with a typed error and the state is left unchanged.
The decision source never mutates state directly. It either calls Transition or
invokes the transition_state tool, which goes through the same check.

# Key Features

  - Strict Transitions: illegal moves fail with domain.InvalidTransitionError.
  - Tool Registry: named tools with keyword arguments, declared parameters and MCP export.
  - Bounded Loop: a step budget, dead-end detection and explicit run outcomes.
  - Adapters: YAML/JSON/TOML graph documents, HTTP (chi), MCP, Redis event journal.

# Usage

	cfg := domain.GraphConfig{
		States: map[string][]string{
			"start":     {"analyzing"},
			"analyzing": {"approved", "rejected"},
			"approved":  {"end"},
			"rejected":  {"end"},
			"end":       {},
		},
		Initial:  "start",
		Terminal: []string{"end"},
	}

	agent, err := fsmagent.New(cfg)
	if err != nil {
		log.Fatal(err)
	}

	report, err := agent.Run(ctx, runner.Handlers{
		"start":     func(ctx context.Context, s *runner.Step) error { return s.Transition("analyzing") },
		"analyzing": func(ctx context.Context, s *runner.Step) error { return s.Transition("approved") },
		"approved":  func(ctx context.Context, s *runner.Step) error { return s.Transition("end") },
	})
*/
package fsmagent
