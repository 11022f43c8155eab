package registry

import (
	"context"
	"sync"

	"github.com/aretw0/fsmagent/pkg/domain"
)

// Registry manages the available tools, keyed by name, in registration order.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
	order []string
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
	}
}

// Register adds a tool to the registry and returns it unchanged.
// If a tool with the same name exists, it is overwritten and keeps its original
// position in List. No signature validation happens here; argument problems
// surface when the tool is executed.
func (r *Registry) Register(tool Tool) Tool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.putLocked(tool)
	return tool
}

// Add is the strict form of Register.
// It fails with a *domain.DuplicateToolError when the name is already taken.
func (r *Registry) Add(tool Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[tool.Name()]; exists {
		return &domain.DuplicateToolError{Name: tool.Name()}
	}
	r.putLocked(tool)
	return nil
}

func (r *Registry) putLocked(tool Tool) {
	name := tool.Name()
	if _, exists := r.tools[name]; !exists {
		r.order = append(r.order, name)
	}
	r.tools[name] = tool
}

// Execute looks up a tool by name and invokes it once with args.
// It returns a *domain.UnknownToolError, without invoking anything, when the
// name is not registered. Errors raised by the tool itself are returned as is.
func (r *Registry) Execute(ctx context.Context, name string, args Args) (any, error) {
	r.mu.RLock()
	tool, ok := r.tools[name]
	r.mu.RUnlock()

	if !ok {
		return nil, &domain.UnknownToolError{Name: name}
	}
	if args == nil {
		args = Args{}
	}

	return tool.Invoke(ctx, args)
}

// Get returns the tool registered under name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.tools[name]
	return tool, ok
}

// List returns the registered tools in registration order.
func (r *Registry) List() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}
	return out
}

// Names returns the registered tool names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Specs returns a capability manifest for every registered tool.
func (r *Registry) Specs() []domain.ToolSpec {
	tools := r.List()
	out := make([]domain.ToolSpec, 0, len(tools))
	for _, t := range tools {
		out = append(out, SpecOf(t))
	}
	return out
}
