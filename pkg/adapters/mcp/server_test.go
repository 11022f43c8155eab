package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/fsmagent/internal/logging"
	"github.com/aretw0/fsmagent/pkg/domain"
	"github.com/aretw0/fsmagent/pkg/fsm"
	"github.com/aretw0/fsmagent/pkg/registry"
	"github.com/aretw0/fsmagent/pkg/runner"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, *fsm.Machine) {
	t.Helper()
	m, err := fsm.NewMachine(map[string][]string{
		"start":     {"analyzing"},
		"analyzing": {"end"},
		"end":       {},
	}, "start", "end")
	require.NoError(t, err)

	reg := registry.NewRegistry()
	reg.Register(registry.Func("report_sentiment", "Report the sentiment score of the text.",
		func(ctx context.Context, args registry.Args) (any, error) {
			score, err := args.Int("score")
			if err != nil {
				return nil, err
			}
			return map[string]any{"score": score}, nil
		},
		registry.Param("score", domain.ParamInteger, "Score from 0 to 100.", true),
		registry.Param("reason", domain.ParamString, "", false),
	))
	reg.Register(runner.TransitionTool(m))

	return NewServer(m, reg, WithLogger(logging.NewNop())), m
}

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return text.Text
}

func TestNewTool(t *testing.T) {
	tool := NewTool(domain.ToolSpec{
		Name: "report_sentiment",
		Parameters: []domain.ParamSpec{
			{Name: "score", Type: domain.ParamInteger, Required: true},
			{Name: "reason", Type: domain.ParamString},
			{Name: "tags", Type: domain.ParamArray},
		},
	})

	assert.Equal(t, "report_sentiment", tool.Name)
	assert.Equal(t, "No description", tool.Description)
	assert.Equal(t, []string{"score"}, tool.InputSchema.Required)
	require.Contains(t, tool.InputSchema.Properties, "score")
	assert.Equal(t, "number", tool.InputSchema.Properties["score"].(map[string]any)["type"])
	assert.Equal(t, "array", tool.InputSchema.Properties["tags"].(map[string]any)["type"])
}

func TestToolHandler(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()

	res, err := s.ToolHandler("report_sentiment")(ctx, callRequest("report_sentiment", map[string]any{"score": float64(95)}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.JSONEq(t, `{"score": 95}`, resultText(t, res))

	res, err = s.ToolHandler("report_sentiment")(ctx, callRequest("report_sentiment", map[string]any{"score": 9.5}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), `argument "score"`)
}

func TestToolHandler_Transition(t *testing.T) {
	s, m := newTestServer(t)
	ctx := context.Background()
	handler := s.ToolHandler(runner.TransitionToolName)

	res, err := handler(ctx, callRequest(runner.TransitionToolName, map[string]any{"next_state": "end"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "invalid transition")
	assert.Equal(t, "start", m.Current())

	res, err = handler(ctx, callRequest(runner.TransitionToolName, map[string]any{"next_state": "analyzing"}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, "Successfully transitioned to analyzing", resultText(t, res))
	assert.Equal(t, "analyzing", m.Current())
}

func TestToolHandler_UnknownTool(t *testing.T) {
	s, _ := newTestServer(t)
	res, err := s.ToolHandler("summon_unicorn")(context.Background(), callRequest("summon_unicorn", nil))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Equal(t, "tool not found: summon_unicorn", resultText(t, res))
}

func TestGetState(t *testing.T) {
	s, _ := newTestServer(t)
	state, err := s.handleGetState(context.Background(), callRequest(StateToolName, nil), nil)
	require.NoError(t, err)
	assert.Equal(t, "start", state.State)
	assert.Equal(t, []string{"analyzing"}, state.Legal)
	assert.False(t, state.Terminal)
	assert.Contains(t, state.Guide, "- report_sentiment:")
}

func TestProtocol(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()

	send := func(msg string) string {
		resp := s.MCPServer().HandleMessage(ctx, json.RawMessage(msg))
		data, err := json.Marshal(resp)
		require.NoError(t, err)
		return string(data)
	}

	tools := send(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)
	assert.Contains(t, tools, `"get_state"`)
	assert.Contains(t, tools, `"report_sentiment"`)
	assert.Contains(t, tools, `"transition_state"`)

	graph := send(`{"jsonrpc":"2.0","id":2,"method":"resources/read","params":{"uri":"fsm://graph"}}`)
	assert.Contains(t, graph, `initial_state`)
	assert.Contains(t, graph, `analyzing`)
}
