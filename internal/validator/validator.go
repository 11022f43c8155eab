package validator

import (
	"fmt"
	"sort"

	"github.com/aretw0/fsmagent/pkg/domain"
)

// Report lists structural warnings for a graph that already passed
// fsm.Validate. None of them make the graph unusable.
type Report struct {
	// Unreachable states cannot be entered from the initial state.
	Unreachable []string
	// DeadEnds are reachable, non-terminal and have no outgoing edges.
	DeadEnds []string
	// NoExit are reachable states from which no terminal state can be reached.
	// Empty when the graph declares no terminal states.
	NoExit []string
}

// OK reports whether there is nothing to warn about.
func (r Report) OK() bool {
	return len(r.Unreachable) == 0 && len(r.DeadEnds) == 0 && len(r.NoExit) == 0
}

// Warnings renders the report as one line per finding.
func (r Report) Warnings() []string {
	var out []string
	for _, s := range r.Unreachable {
		out = append(out, fmt.Sprintf("state %q is unreachable from the initial state", s))
	}
	for _, s := range r.DeadEnds {
		out = append(out, fmt.Sprintf("state %q is a dead end (no transitions, not terminal)", s))
	}
	for _, s := range r.NoExit {
		out = append(out, fmt.Sprintf("no terminal state is reachable from %q", s))
	}
	return out
}

// Inspect crawls the graph breadth-first from the initial state.
func Inspect(cfg domain.GraphConfig) Report {
	var r Report

	terminal := make(map[string]bool, len(cfg.Terminal))
	for _, s := range cfg.Terminal {
		terminal[s] = true
	}

	visited := make(map[string]bool)
	queue := []string{cfg.Initial}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if visited[current] {
			continue
		}
		visited[current] = true

		if _, ok := cfg.States[current]; !ok {
			continue
		}
		for _, target := range cfg.States[current] {
			if !visited[target] {
				queue = append(queue, target)
			}
		}
	}

	// Reverse crawl from terminal states.
	exits := make(map[string]bool)
	if len(terminal) > 0 {
		incoming := make(map[string][]string)
		for from, targets := range cfg.States {
			for _, to := range targets {
				incoming[to] = append(incoming[to], from)
			}
		}
		queue = queue[:0]
		for s := range terminal {
			queue = append(queue, s)
		}
		for len(queue) > 0 {
			current := queue[0]
			queue = queue[1:]
			if exits[current] {
				continue
			}
			exits[current] = true
			queue = append(queue, incoming[current]...)
		}
	}

	for state, targets := range cfg.States {
		switch {
		case !visited[state]:
			r.Unreachable = append(r.Unreachable, state)
		case len(targets) == 0 && !terminal[state]:
			r.DeadEnds = append(r.DeadEnds, state)
		case len(terminal) > 0 && !exits[state]:
			r.NoExit = append(r.NoExit, state)
		}
	}

	sort.Strings(r.Unreachable)
	sort.Strings(r.DeadEnds)
	sort.Strings(r.NoExit)
	return r
}
