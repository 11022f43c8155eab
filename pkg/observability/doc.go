/*
Package observability provides lifecycle hooks for monitoring fsmagent runs.

It includes Prometheus metrics for steps, transitions, tool calls and run
outcomes, structured logging through slog, and Merge to install several hook
sets on one runner.
*/
package observability
