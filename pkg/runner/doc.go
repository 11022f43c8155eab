/*
Package runner couples a fsm.Machine and a registry.Registry into an orchestration loop.

Each step the runner reads the current state and its legal next states, hands
them to a Driver, and lets the driver act, usually by dispatching one tool.
Tools that advance the workflow call Machine.Transition themselves; the
built-in TransitionTool is the common way to expose that to a model.

The loop exits with one of:

  - OutcomeTerminal: the machine reached a terminal state.
  - OutcomeBudgetExceeded: the step ceiling (WithMaxSteps) was hit first.
  - OutcomeNoHandlerFatal: no handler or decision for the state, or a dead end.
  - OutcomeAborted: a step returned an error or the context was cancelled.

Two drivers are provided. Handlers is a deterministic table keyed by state.
Delegate wraps a Decider (a model, a human prompt, a script) that picks a tool
call from a Snapshot; with feedback enabled, failed calls are recorded as
observations for the next decision instead of aborting the run.
*/
package runner
