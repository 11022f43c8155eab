/*
Package fsm implements the finite-state machine that constrains an agent workflow.

A Machine is built once from a closed graph (every transition target is itself a
declared state) and only ever moves along declared edges through Transition.
It never changes state on its own and has no knowledge of which tool or actor
asked for the move.

	m, err := fsm.New(domain.GraphConfig{
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

Terminal detection is membership in the terminal set only. A state with no
outgoing edges that is not terminal is a dead end (see Machine.IsDeadEnd).
*/
package fsm
