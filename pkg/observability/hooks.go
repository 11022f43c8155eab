package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/fsmagent/pkg/domain"
)

// Merge combines multiple hook sets into one. Hooks fire in argument order.
func Merge(all ...domain.LifecycleHooks) domain.LifecycleHooks {
	var merged domain.LifecycleHooks

	for _, h := range all {
		merged.OnStep = chain(merged.OnStep, h.OnStep)
		merged.OnTransition = chain(merged.OnTransition, h.OnTransition)
		merged.OnToolCall = chain(merged.OnToolCall, h.OnToolCall)
		merged.OnToolReturn = chain(merged.OnToolReturn, h.OnToolReturn)
		merged.OnRunEnd = chain(merged.OnRunEnd, h.OnRunEnd)
	}
	return merged
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}

// LoggingHooks writes every lifecycle event to logger.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStep: func(ctx context.Context, e *domain.StepEvent) {
			logger.InfoContext(ctx, "step",
				"run_id", e.RunID,
				"step", e.Step,
				"state", e.State,
				"legal", e.Legal,
			)
		},
		OnTransition: func(ctx context.Context, e *domain.TransitionEvent) {
			logger.InfoContext(ctx, "transition", "run_id", e.RunID, "from", e.From, "to", e.To)
		},
		OnToolCall: func(ctx context.Context, e *domain.ToolEvent) {
			logger.InfoContext(ctx, "tool_call", "run_id", e.RunID, "tool_name", e.ToolName)
		},
		OnToolReturn: func(ctx context.Context, e *domain.ToolEvent) {
			logger.InfoContext(ctx, "tool_return",
				"run_id", e.RunID,
				"tool_name", e.ToolName,
				"is_error", e.IsError,
				"duration", e.Duration,
			)
		},
		OnRunEnd: func(ctx context.Context, e *domain.RunEvent) {
			level := slog.LevelInfo
			if e.Outcome != domain.OutcomeTerminal {
				level = slog.LevelWarn
			}
			logger.Log(ctx, level, "run_end",
				"run_id", e.RunID,
				"outcome", e.Outcome,
				"steps", e.Steps,
				"final_state", e.FinalState,
				"error", e.Error,
			)
		},
	}
}
