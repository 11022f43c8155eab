package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfiguration is the sentinel behind every ConfigurationError.
	ErrConfiguration = errors.New("invalid state machine configuration")

	// ErrInvalidTransition is the sentinel behind every InvalidTransitionError.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrUnknownTool is the sentinel behind every UnknownToolError.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrDuplicateTool is returned by strict registration when the name is taken.
	ErrDuplicateTool = errors.New("duplicate tool")

	// ErrToolDenied is returned when a runner policy blocks a tool call.
	ErrToolDenied = errors.New("tool call denied")

	// ErrInvalidArgument is the sentinel behind every ArgumentError.
	ErrInvalidArgument = errors.New("invalid tool argument")

	// ErrBudgetExceeded is returned when a run hits its step ceiling before a terminal state.
	ErrBudgetExceeded = errors.New("step budget exceeded")

	// ErrNoHandler is returned when no handler or decision exists for the current state.
	ErrNoHandler = errors.New("no handler for state")

	// ErrDeadEnd is returned when the current state has no legal next states and is not terminal.
	ErrDeadEnd = errors.New("dead end state")

	// ErrNoDecision can be returned by a decider that has nothing to propose.
	// The runner treats it like a missing handler.
	ErrNoDecision = errors.New("no decision available")
)

// ConfigurationError reports every problem found while validating a GraphConfig.
type ConfigurationError struct {
	Problems []string
}

func (e *ConfigurationError) Error() string {
	if len(e.Problems) == 1 {
		return fmt.Sprintf("%s: %s", ErrConfiguration, e.Problems[0])
	}
	return fmt.Sprintf("%s: %d problems:\n  - %s", ErrConfiguration, len(e.Problems), strings.Join(e.Problems, "\n  - "))
}

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// InvalidTransitionError is returned when the requested target is not reachable
// from the current state. The machine state is left untouched.
type InvalidTransitionError struct {
	From    string
	To      string
	Allowed []string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition: cannot move from %q to %q (allowed: [%s])",
		e.From, e.To, strings.Join(e.Allowed, ", "))
}

func (e *InvalidTransitionError) Is(target error) bool { return target == ErrInvalidTransition }

// UnknownToolError is returned when a tool name is not registered.
type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("tool not found: %s", e.Name)
}

func (e *UnknownToolError) Is(target error) bool { return target == ErrUnknownTool }

// DuplicateToolError is returned by strict registration.
type DuplicateToolError struct {
	Name string
}

func (e *DuplicateToolError) Error() string {
	return fmt.Sprintf("tool already registered: %s", e.Name)
}

func (e *DuplicateToolError) Is(target error) bool { return target == ErrDuplicateTool }

// ArgumentError reports a missing or mistyped tool argument.
type ArgumentError struct {
	Key    string
	Reason string
	Value  any
}

func (e *ArgumentError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("argument %q: %s", e.Key, e.Reason)
	}
	return fmt.Sprintf("argument %q: %s (got %T)", e.Key, e.Reason, e.Value)
}

func (e *ArgumentError) Is(target error) bool { return target == ErrInvalidArgument }
