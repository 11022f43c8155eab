/*
Package domain contains the core types shared by the fsmagent packages.

It is kept pure and free of I/O: the graph configuration consumed by the state
machine, the tool call/result envelopes exchanged with decision sources, the
lifecycle events emitted by the runner and the error taxonomy returned by every
core operation.

# Key Entities

  - GraphConfig: states, their ordered transition targets, the initial state and the terminal set.
  - ToolCall / ToolResult: a request to invoke a named tool and what came back.
  - ToolSpec: the declared name, description and parameters of a tool.
  - LifecycleHooks: callbacks for observing steps, transitions and tool calls.
*/
package domain
