package fsmagent

import (
	"context"
	"io"
	"log/slog"

	"github.com/aretw0/fsmagent/pkg/adapters/file"
	"github.com/aretw0/fsmagent/pkg/domain"
	"github.com/aretw0/fsmagent/pkg/fsm"
	"github.com/aretw0/fsmagent/pkg/registry"
	"github.com/aretw0/fsmagent/pkg/runner"
)

// Agent is the high-level entry point for the library.
// It bundles one state machine, its tool registry (with transition_state
// pre-registered) and a runner. An Agent serves a single workflow.
type Agent struct {
	machine    *fsm.Machine
	registry   *registry.Registry
	runnerOpts []runner.Option
	tools      []registry.Tool
	logger     *slog.Logger
}

// Option defines a functional option for configuring the Agent.
type Option func(*Agent)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Agent) {
		a.logger = logger
		a.runnerOpts = append(a.runnerOpts, runner.WithLogger(logger))
	}
}

// WithMaxSteps sets the step ceiling for Run.
func WithMaxSteps(n int) Option {
	return func(a *Agent) {
		a.runnerOpts = append(a.runnerOpts, runner.WithMaxSteps(n))
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(a *Agent) {
		a.runnerOpts = append(a.runnerOpts, runner.WithLifecycleHooks(hooks))
	}
}

// WithFeedback feeds tool failures back to deciders instead of aborting.
func WithFeedback(enabled bool) Option {
	return func(a *Agent) {
		a.runnerOpts = append(a.runnerOpts, runner.WithFeedback(enabled))
	}
}

// WithGuideTools lists registered tools in every guide.
func WithGuideTools(enabled bool) Option {
	return func(a *Agent) {
		a.runnerOpts = append(a.runnerOpts, runner.WithGuideTools(enabled))
	}
}

// WithInterceptor configures the tool dispatch policy.
func WithInterceptor(interceptor runner.ToolInterceptor) Option {
	return func(a *Agent) {
		a.runnerOpts = append(a.runnerOpts, runner.WithInterceptor(interceptor))
	}
}

// WithTools registers tools at construction time.
func WithTools(tools ...registry.Tool) Option {
	return func(a *Agent) {
		a.tools = append(a.tools, tools...)
	}
}

// New validates cfg and creates an Agent positioned at its initial state.
func New(cfg domain.GraphConfig, opts ...Option) (*Agent, error) {
	m, err := fsm.New(cfg)
	if err != nil {
		return nil, err
	}
	return NewFromMachine(m, opts...), nil
}

// Load reads a graph document (YAML, JSON or TOML) and creates an Agent.
func Load(path string, opts ...Option) (*Agent, error) {
	m, err := file.LoadMachine(path)
	if err != nil {
		return nil, err
	}
	return NewFromMachine(m, opts...), nil
}

// NewFromMachine wraps an existing machine.
func NewFromMachine(m *fsm.Machine, opts ...Option) *Agent {
	a := &Agent{
		machine:  m,
		registry: registry.NewRegistry(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(a)
	}

	a.registry.Register(runner.TransitionTool(m))
	for _, t := range a.tools {
		a.registry.Register(t)
	}
	return a
}

// Machine returns the state machine.
func (a *Agent) Machine() *fsm.Machine { return a.machine }

// Registry returns the tool registry.
func (a *Agent) Registry() *registry.Registry { return a.registry }

// Register adds or replaces a tool.
func (a *Agent) Register(tool registry.Tool) registry.Tool {
	a.logger.Debug("tool registered", "tool", tool.Name())
	return a.registry.Register(tool)
}

// Execute runs one tool by name.
func (a *Agent) Execute(ctx context.Context, name string, args registry.Args) (any, error) {
	return a.registry.Execute(ctx, name, args)
}

// Transition moves the machine directly.
func (a *Agent) Transition(target string) (string, error) {
	return a.machine.Transition(target)
}

// Guide renders the orchestrator guide for the current state.
func (a *Agent) Guide(withTools bool) string {
	if withTools {
		return runner.Guide(a.machine, a.registry)
	}
	return runner.Guide(a.machine, nil)
}

// Runner builds a runner over the agent's machine and registry.
// Extra options are applied after the agent's own.
func (a *Agent) Runner(opts ...runner.Option) *runner.Runner {
	all := append(append([]runner.Option{}, a.runnerOpts...), opts...)
	return runner.New(a.machine, a.registry, all...)
}

// Run drives the workflow until it ends. See runner.Runner.Run.
func (a *Agent) Run(ctx context.Context, driver runner.Driver) (*runner.Report, error) {
	return a.Runner().Run(ctx, driver)
}
