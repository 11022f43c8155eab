package dsl

import (
	"fmt"

	"github.com/aretw0/fsmagent/pkg/domain"
	"github.com/aretw0/fsmagent/pkg/fsm"
)

// Builder manages the graph construction.
type Builder struct {
	states   map[string]*StateBuilder
	order    []string
	initial  string
	terminal []string
}

// New creates a new graph builder.
func New() *Builder {
	return &Builder{
		states: make(map[string]*StateBuilder),
	}
}

// Add declares a state in the graph.
// If the state already exists, it returns the existing builder.
// The first state added is the initial state unless Start says otherwise.
func (b *Builder) Add(name string) *StateBuilder {
	if sb, ok := b.states[name]; ok {
		return sb
	}
	sb := &StateBuilder{
		name:    name,
		builder: b,
	}
	b.states[name] = sb
	b.order = append(b.order, name)
	return sb
}

// Start sets the initial state.
func (b *Builder) Start(name string) *Builder {
	b.initial = name
	return b
}

// Config compiles the declared states into a GraphConfig without validating it.
func (b *Builder) Config() domain.GraphConfig {
	cfg := domain.GraphConfig{
		States:   make(map[string][]string, len(b.states)),
		Initial:  b.initial,
		Terminal: append([]string(nil), b.terminal...),
	}
	if cfg.Initial == "" && len(b.order) > 0 {
		cfg.Initial = b.order[0]
	}
	for _, name := range b.order {
		cfg.States[name] = append([]string{}, b.states[name].targets...)
	}
	return cfg
}

// Build compiles the graph into a validated Machine.
func (b *Builder) Build() (*fsm.Machine, error) {
	m, err := fsm.New(b.Config())
	if err != nil {
		return nil, fmt.Errorf("failed to build state machine: %w", err)
	}
	return m, nil
}
