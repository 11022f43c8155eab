package fsm

import (
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/aretw0/fsmagent/pkg/domain"
)

// Machine holds an immutable transition graph and the mutable current state.
type Machine struct {
	mu       sync.RWMutex
	states   map[string][]string
	order    []string
	terminal map[string]struct{}
	initial  string
	current  string
	history  []string
}

// New validates the configuration and returns a Machine positioned at its initial state.
// It fails with a *domain.ConfigurationError when the initial state, a transition
// target or a terminal state is not declared in the graph.
func New(cfg domain.GraphConfig) (*Machine, error) {
	if err := Validate(cfg); err != nil {
		return nil, err
	}

	cfg = cfg.Clone()
	m := &Machine{
		states:   cfg.States,
		order:    sortedKeys(cfg.States),
		terminal: make(map[string]struct{}, len(cfg.Terminal)),
		initial:  cfg.Initial,
		current:  cfg.Initial,
		history:  []string{cfg.Initial},
	}
	for _, t := range cfg.Terminal {
		m.terminal[t] = struct{}{}
	}
	return m, nil
}

// NewMachine is a shorthand for New with positional arguments.
func NewMachine(states map[string][]string, initial string, terminal ...string) (*Machine, error) {
	return New(domain.GraphConfig{States: states, Initial: initial, Terminal: terminal})
}

// Validate checks the closed-graph invariants without building a Machine.
// Problems are reported in a stable order.
func Validate(cfg domain.GraphConfig) error {
	var problems []string

	if cfg.Initial == "" {
		problems = append(problems, "initial state is empty")
	} else if _, ok := cfg.States[cfg.Initial]; !ok {
		problems = append(problems, fmt.Sprintf("initial state %q is not defined in states", cfg.Initial))
	}

	for _, state := range sortedKeys(cfg.States) {
		for _, target := range cfg.States[state] {
			if _, ok := cfg.States[target]; !ok {
				problems = append(problems, fmt.Sprintf("transition target %q from %q is not defined in states", target, state))
			}
		}
	}

	for _, t := range cfg.Terminal {
		if _, ok := cfg.States[t]; !ok {
			problems = append(problems, fmt.Sprintf("terminal state %q is not defined in states", t))
		}
	}

	if len(problems) > 0 {
		return &domain.ConfigurationError{Problems: problems}
	}
	return nil
}

// Current returns the current state name.
func (m *Machine) Current() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Initial returns the state the machine was created in.
func (m *Machine) Initial() string {
	return m.initial
}

// LegalNextStates returns the ordered targets allowed from the current state.
// The slice is a copy and is empty (never nil) when there are no outgoing edges.
func (m *Machine) LegalNextStates() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.legalLocked()
}

func (m *Machine) legalLocked() []string {
	targets := m.states[m.current]
	out := make([]string, len(targets))
	copy(out, targets)
	return out
}

// CanTransition reports whether target is reachable from the current state.
func (m *Machine) CanTransition(target string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Contains(m.states[m.current], target)
}

// Transition moves the machine to target and returns the new state.
// If target is not a legal next state it returns a *domain.InvalidTransitionError
// and the current state is unchanged.
func (m *Machine) Transition(target string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !slices.Contains(m.states[m.current], target) {
		return m.current, &domain.InvalidTransitionError{
			From:    m.current,
			To:      target,
			Allowed: m.legalLocked(),
		}
	}

	m.current = target
	m.history = append(m.history, target)
	return m.current, nil
}

// IsTerminal reports whether the current state is in the terminal set.
// It does not look at outgoing edges.
func (m *Machine) IsTerminal() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.terminal[m.current]
	return ok
}

// IsDeadEnd reports whether the current state has no outgoing edges and is not terminal.
// Loops must treat this as fatal rather than as success.
func (m *Machine) IsDeadEnd() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.terminal[m.current]; ok {
		return false
	}
	return len(m.states[m.current]) == 0
}

// History returns every state visited, starting with the initial state.
func (m *Machine) History() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.history)
}

// States returns the declared state names, sorted.
func (m *Machine) States() []string {
	return slices.Clone(m.order)
}

// Terminal returns the terminal state names, sorted.
func (m *Machine) Terminal() []string {
	return sortedKeys(m.terminal)
}

// Config returns a copy of the graph the machine was built from.
func (m *Machine) Config() domain.GraphConfig {
	cfg := domain.GraphConfig{
		States:   m.states,
		Initial:  m.initial,
		Terminal: m.Terminal(),
	}
	return cfg.Clone()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
