package runner

import (
	"log/slog"

	"github.com/aretw0/fsmagent/pkg/domain"
)

// DefaultMaxSteps is the step ceiling used when none is configured.
const DefaultMaxSteps = 15

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithMaxSteps sets the step ceiling. Zero or a negative value disables it.
func WithMaxSteps(n int) Option {
	return func(r *Runner) {
		r.maxSteps = n
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(r *Runner) {
		r.hooks = hooks
	}
}

// WithFeedback controls whether Delegate records failed tool calls as
// observations and keeps going (true) or aborts the run (false, default).
func WithFeedback(enabled bool) Option {
	return func(r *Runner) {
		r.feedback = enabled
	}
}

// WithGuideTools includes the tool listing in every Snapshot guide.
func WithGuideTools(enabled bool) Option {
	return func(r *Runner) {
		r.guideTools = enabled
	}
}

// WithInterceptor configures the tool dispatch policy.
func WithInterceptor(interceptor ToolInterceptor) Option {
	return func(r *Runner) {
		r.interceptor = interceptor
	}
}
