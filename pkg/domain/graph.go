package domain

import "slices"

// GraphConfig is the only configuration format the state machine consumes.
// It can be written as a literal, built with the dsl package or parsed from a
// YAML, JSON or TOML document.
type GraphConfig struct {
	// States maps a state name to its ordered list of allowed next states.
	States map[string][]string `json:"states" yaml:"states" toml:"states" mapstructure:"states"`

	// Initial is the state the machine starts in.
	Initial string `json:"initial_state" yaml:"initial_state" toml:"initial_state" mapstructure:"initial_state"`

	// Terminal lists the states that end the workflow successfully.
	// Empty means the workflow never terminates on its own.
	Terminal []string `json:"terminal_states,omitempty" yaml:"terminal_states,omitempty" toml:"terminal_states" mapstructure:"terminal_states"`
}

// Clone returns a deep copy of the configuration.
func (c GraphConfig) Clone() GraphConfig {
	out := GraphConfig{
		States:   make(map[string][]string, len(c.States)),
		Initial:  c.Initial,
		Terminal: slices.Clone(c.Terminal),
	}
	for state, targets := range c.States {
		out.States[state] = slices.Clone(targets)
	}
	return out
}
