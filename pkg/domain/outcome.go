package domain

// Outcome is the exit state of an orchestration loop.
type Outcome string

const (
	// OutcomeRunning means the loop has not exited.
	OutcomeRunning Outcome = "running"

	// OutcomeTerminal means a terminal state was reached.
	OutcomeTerminal Outcome = "terminal_success"

	// OutcomeBudgetExceeded means the step ceiling was reached first.
	OutcomeBudgetExceeded Outcome = "budget_exceeded"

	// OutcomeNoHandlerFatal covers a missing handler, a missing decision and a dead end.
	OutcomeNoHandlerFatal Outcome = "no_handler_fatal"

	// OutcomeAborted means a step failed or the context was cancelled.
	OutcomeAborted Outcome = "aborted"
)
