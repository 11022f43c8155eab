package observability

import (
	"context"
	"fmt"
	"regexp"

	"github.com/aretw0/fsmagent/pkg/domain"
)

// Mask replaces redacted values.
const Mask = "***"

// Redact wraps next so that tool arguments whose key matches any pattern are
// masked before next sees them. Nested maps and lists are masked too. The runner's own
// copy of the arguments is never modified.
func Redact(patterns []string, next domain.LifecycleHooks) (domain.LifecycleHooks, error) {
	compiled := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return domain.LifecycleHooks{}, fmt.Errorf("invalid redaction pattern %q: %w", p, err)
		}
		compiled[i] = re
	}
	if len(compiled) == 0 {
		return next, nil
	}

	mask := func(hook func(context.Context, *domain.ToolEvent)) func(context.Context, *domain.ToolEvent) {
		if hook == nil {
			return nil
		}
		return func(ctx context.Context, e *domain.ToolEvent) {
			cloned := *e
			if in, ok := e.Input.(map[string]any); ok {
				cloned.Input = maskMap(in, compiled)
			}
			hook(ctx, &cloned)
		}
	}

	wrapped := next
	wrapped.OnToolCall = mask(next.OnToolCall)
	wrapped.OnToolReturn = mask(next.OnToolReturn)
	return wrapped, nil
}

func maskMap(m map[string]any, patterns []*regexp.Regexp) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if matchesAny(k, patterns) {
			out[k] = Mask
			continue
		}
		out[k] = maskValue(v, patterns)
	}
	return out
}

func maskValue(v any, patterns []*regexp.Regexp) any {
	switch val := v.(type) {
	case map[string]any:
		return maskMap(val, patterns)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = maskValue(item, patterns)
		}
		return out
	default:
		return v
	}
}

func matchesAny(key string, patterns []*regexp.Regexp) bool {
	for _, p := range patterns {
		if p.MatchString(key) {
			return true
		}
	}
	return false
}
