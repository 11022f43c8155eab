package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStep       EventType = "step"
	EventTransition EventType = "transition"
	EventToolCall   EventType = "tool_call"
	EventToolReturn EventType = "tool_return"
	EventRunEnd     EventType = "run_end"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	RunID     string    `json:"run_id"`
}

// StepEvent is emitted at the start of every loop step.
type StepEvent struct {
	EventBase
	Step  int      `json:"step"`
	State string   `json:"state"`
	Legal []string `json:"legal"`
}

// TransitionEvent is emitted when a step moved the machine to another state.
type TransitionEvent struct {
	EventBase
	Step int    `json:"step"`
	From string `json:"from"`
	To   string `json:"to"`
}

// ToolEvent represents a tool dispatch.
type ToolEvent struct {
	EventBase
	State    string        `json:"state"`
	ToolName string        `json:"tool_name"`
	Input    any           `json:"input,omitempty"`
	Output   any           `json:"output,omitempty"`
	IsError  bool          `json:"is_error,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
}

// RunEvent is emitted once, when the loop exits.
type RunEvent struct {
	EventBase
	Outcome    Outcome `json:"outcome"`
	Steps      int     `json:"steps"`
	FinalState string  `json:"final_state"`
	Error      string  `json:"error,omitempty"`
}

// LifecycleHooks defines callbacks for runner observability.
// Any field may be nil.
type LifecycleHooks struct {
	OnStep       func(context.Context, *StepEvent)
	OnTransition func(context.Context, *TransitionEvent)
	OnToolCall   func(context.Context, *ToolEvent)
	OnToolReturn func(context.Context, *ToolEvent)
	OnRunEnd     func(context.Context, *RunEvent)
}
