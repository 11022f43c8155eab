package runner

import (
	"context"
	"slices"

	"github.com/aretw0/fsmagent/pkg/domain"
)

// ToolInterceptor is a policy consulted before every dispatch made through a Step.
// It returns true if execution should proceed. When it returns false the
// optional ToolResult describes the denial.
type ToolInterceptor func(ctx context.Context, state string, call domain.ToolCall) (bool, domain.ToolResult, error)

// MultiInterceptor chains multiple interceptors. The first denial wins.
func MultiInterceptor(interceptors ...ToolInterceptor) ToolInterceptor {
	return func(ctx context.Context, state string, call domain.ToolCall) (bool, domain.ToolResult, error) {
		for _, interceptor := range interceptors {
			allowed, result, err := interceptor(ctx, state, call)
			if err != nil {
				return false, domain.ToolResult{}, err
			}
			if !allowed {
				return false, result, nil
			}
		}
		return true, domain.ToolResult{}, nil
	}
}

// AllowTools only lets the named tools through, whatever the state.
func AllowTools(names ...string) ToolInterceptor {
	return func(ctx context.Context, state string, call domain.ToolCall) (bool, domain.ToolResult, error) {
		if slices.Contains(names, call.Name) {
			return true, domain.ToolResult{}, nil
		}
		return false, domain.ToolResult{}, nil
	}
}

// StateTools restricts tools per state. States absent from the table are unrestricted.
// The transition tool is always allowed so the workflow can move on.
func StateTools(table map[string][]string) ToolInterceptor {
	return func(ctx context.Context, state string, call domain.ToolCall) (bool, domain.ToolResult, error) {
		allowed, scoped := table[state]
		if !scoped || call.Name == TransitionToolName || slices.Contains(allowed, call.Name) {
			return true, domain.ToolResult{}, nil
		}
		return false, domain.ToolResult{}, nil
	}
}
