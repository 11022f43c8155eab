package observability

import (
	"context"

	"github.com/aretw0/fsmagent/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors fed by runner hooks.
type Metrics struct {
	Steps        prometheus.Counter
	Transitions  *prometheus.CounterVec
	ToolCalls    *prometheus.CounterVec
	ToolDuration *prometheus.HistogramVec
	Runs         *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Steps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fsmagent_steps_total",
			Help: "Total number of orchestration loop steps",
		}),
		Transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fsmagent_transitions_total",
			Help: "Total number of state transitions",
		}, []string{"from", "to"}),
		ToolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fsmagent_tool_calls_total",
			Help: "Total number of tool dispatches",
		}, []string{"tool_name", "status"}),
		ToolDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fsmagent_tool_duration_seconds",
			Help:    "Duration of tool executions",
			Buckets: prometheus.DefBuckets,
		}, []string{"tool_name"}),
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fsmagent_runs_total",
			Help: "Total number of finished runs by outcome",
		}, []string{"outcome"}),
	}

	if reg != nil {
		reg.MustRegister(m.Steps, m.Transitions, m.ToolCalls, m.ToolDuration, m.Runs)
	}
	return m
}

// Hooks returns lifecycle hooks recording into the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStep: func(ctx context.Context, e *domain.StepEvent) {
			m.Steps.Inc()
		},
		OnTransition: func(ctx context.Context, e *domain.TransitionEvent) {
			m.Transitions.WithLabelValues(e.From, e.To).Inc()
		},
		OnToolReturn: func(ctx context.Context, e *domain.ToolEvent) {
			status := "ok"
			if e.IsError {
				status = "error"
			}
			m.ToolCalls.WithLabelValues(e.ToolName, status).Inc()
			m.ToolDuration.WithLabelValues(e.ToolName).Observe(e.Duration.Seconds())
		},
		OnRunEnd: func(ctx context.Context, e *domain.RunEvent) {
			m.Runs.WithLabelValues(string(e.Outcome)).Inc()
		},
	}
}
