package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/aretw0/fsmagent/internal/presentation/tui"
	"github.com/aretw0/fsmagent/pkg/domain"
	"github.com/aretw0/fsmagent/pkg/runner"
)

var errQuit = errors.New("quit requested")

// promptDecider asks a human for each step's tool call.
// Input is a choice number, a state name, a JSON tool call, or q to quit.
type promptDecider struct {
	in     *bufio.Reader
	out    io.Writer
	render tui.Renderer
}

func newPromptDecider(in io.Reader, out io.Writer, render tui.Renderer) *promptDecider {
	return &promptDecider{in: bufio.NewReader(in), out: out, render: render}
}

func (d *promptDecider) Decide(ctx context.Context, snap runner.Snapshot) (domain.ToolCall, error) {
	var last *domain.ToolResult
	if n := len(snap.Observations); n > 0 {
		last = &snap.Observations[n-1]
	}

	text, err := d.render(tui.StepMarkdown(snap.Step, snap.State, snap.Legal, snap.Guide, last))
	if err != nil {
		return domain.ToolCall{}, err
	}
	fmt.Fprint(d.out, text)

	for {
		fmt.Fprint(d.out, "> ")
		line, err := d.in.ReadString('\n')
		line = strings.TrimSpace(line)
		if err != nil && line == "" {
			if errors.Is(err, io.EOF) {
				return domain.ToolCall{}, domain.ErrNoDecision
			}
			return domain.ToolCall{}, err
		}

		call, perr := parseChoice(line, snap.Legal)
		if perr == nil {
			return call, nil
		}
		if errors.Is(perr, errQuit) {
			return domain.ToolCall{}, perr
		}
		fmt.Fprintf(d.out, "%v\n", perr)
	}
}

// parseChoice turns one line of input into a tool call.
func parseChoice(line string, legal []string) (domain.ToolCall, error) {
	switch {
	case line == "":
		return domain.ToolCall{}, errors.New("enter a choice")
	case line == "q" || line == "quit" || line == "exit":
		return domain.ToolCall{}, errQuit
	case strings.HasPrefix(line, "{") || strings.HasPrefix(line, "```"):
		return runner.ParseToolCall(line)
	}

	target := line
	if n, err := strconv.Atoi(line); err == nil {
		if n < 1 || n > len(legal) {
			return domain.ToolCall{}, fmt.Errorf("choice %d out of range", n)
		}
		target = legal[n-1]
	}

	return domain.ToolCall{
		Name: runner.TransitionToolName,
		Args: map[string]any{"next_state": target},
	}, nil
}

// autoDecider always takes the first legal next state.
func autoDecider(ctx context.Context, snap runner.Snapshot) (domain.ToolCall, error) {
	if len(snap.Legal) == 0 {
		return domain.ToolCall{}, domain.ErrNoDecision
	}
	return domain.ToolCall{
		Name: runner.TransitionToolName,
		Args: map[string]any{"next_state": snap.Legal[0], "reason": "auto"},
	}, nil
}
