package dsl

import "slices"

// StateBuilder provides a fluent API for configuring a state.
type StateBuilder struct {
	name    string
	targets []string
	builder *Builder
}

// Go adds an allowed transition to target. Order is preserved; duplicates are ignored.
func (s *StateBuilder) Go(targets ...string) *StateBuilder {
	for _, t := range targets {
		if !slices.Contains(s.targets, t) {
			s.targets = append(s.targets, t)
		}
	}
	return s
}

// Terminal marks the state as ending the workflow.
func (s *StateBuilder) Terminal() *StateBuilder {
	if !slices.Contains(s.builder.terminal, s.name) {
		s.builder.terminal = append(s.builder.terminal, s.name)
	}
	return s
}

// Add is a shortcut to declare the next state on the same builder.
func (s *StateBuilder) Add(name string) *StateBuilder {
	return s.builder.Add(name)
}
