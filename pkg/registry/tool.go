package registry

import (
	"context"

	"github.com/aretw0/fsmagent/pkg/domain"
)

// Tool is a named unit of work invocable through a Registry.
type Tool interface {
	Name() string
	Description() string
	Invoke(ctx context.Context, args Args) (any, error)
}

// ParameterDescriber is implemented by tools that declare their arguments.
type ParameterDescriber interface {
	Parameters() []domain.ParamSpec
}

// ToolFunction defines the signature for a closure-backed tool.
type ToolFunction func(ctx context.Context, args Args) (any, error)

// FuncTool adapts a ToolFunction into a Tool.
type FuncTool struct {
	name        string
	description string
	params      []domain.ParamSpec
	fn          ToolFunction
}

// Func creates a Tool from a closure.
func Func(name, description string, fn ToolFunction, params ...domain.ParamSpec) *FuncTool {
	return &FuncTool{
		name:        name,
		description: description,
		params:      params,
		fn:          fn,
	}
}

func (t *FuncTool) Name() string        { return t.name }
func (t *FuncTool) Description() string { return t.description }

func (t *FuncTool) Invoke(ctx context.Context, args Args) (any, error) {
	return t.fn(ctx, args)
}

func (t *FuncTool) Parameters() []domain.ParamSpec {
	out := make([]domain.ParamSpec, len(t.params))
	copy(out, t.params)
	return out
}

// Param declares an argument for Func.
func Param(name, typ, description string, required bool) domain.ParamSpec {
	return domain.ParamSpec{Name: name, Type: typ, Description: description, Required: required}
}

// SpecOf describes any Tool, including ones that do not declare parameters.
func SpecOf(t Tool) domain.ToolSpec {
	spec := domain.ToolSpec{
		Name:        t.Name(),
		Description: t.Description(),
	}
	if pd, ok := t.(ParameterDescriber); ok {
		spec.Parameters = pd.Parameters()
	}
	return spec
}
