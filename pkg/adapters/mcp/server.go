package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/fsmagent"
	"github.com/aretw0/fsmagent/pkg/domain"
	"github.com/aretw0/fsmagent/pkg/fsm"
	"github.com/aretw0/fsmagent/pkg/registry"
	"github.com/aretw0/fsmagent/pkg/runner"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	// StateToolName is the built-in tool reporting the machine state.
	StateToolName = "get_state"
	// GraphURI is the resource holding the graph document.
	GraphURI = "fsm://graph"
)

// StateResponse is the payload of the get_state tool.
type StateResponse struct {
	State    string   `json:"state" jsonschema_description:"The current state"`
	Legal    []string `json:"legal" jsonschema_description:"States reachable with transition_state"`
	Terminal bool     `json:"terminal" jsonschema_description:"Indicates if the workflow is finished"`
	Guide    string   `json:"guide" jsonschema_description:"Orchestrator guide for the current state"`
}

// Server exposes a machine and its tool registry as an MCP server.
// Every registry tool becomes an MCP tool; calls are serialized.
type Server struct {
	mu        sync.Mutex
	machine   *fsm.Machine
	registry  *registry.Registry
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

type Option func(*Server)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(m *fsm.Machine, reg *registry.Registry, opts ...Option) *Server {
	if reg == nil {
		reg = registry.NewRegistry()
	}
	s := &Server{
		machine:   m,
		registry:  reg,
		logger:    slog.Default(),
		mcpServer: server.NewMCPServer("fsmagent-mcp", strings.TrimSpace(fsmagent.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves MCP over SSE on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool(StateToolName,
		mcp.WithDescription("Get the current state, the legal next states and the orchestrator guide."),
		mcp.WithOutputSchema[StateResponse](),
	), mcp.NewStructuredToolHandler(s.handleGetState))

	for _, spec := range s.registry.Specs() {
		s.mcpServer.AddTool(NewTool(spec), s.ToolHandler(spec.Name))
	}
}

// NewTool converts a tool description into an MCP tool declaration.
func NewTool(spec domain.ToolSpec) mcp.Tool {
	desc := spec.Description
	if desc == "" {
		desc = "No description"
	}
	opts := []mcp.ToolOption{mcp.WithDescription(desc)}

	for _, p := range spec.Parameters {
		var popts []mcp.PropertyOption
		if p.Required {
			popts = append(popts, mcp.Required())
		}
		if p.Description != "" {
			popts = append(popts, mcp.Description(p.Description))
		}

		switch p.Type {
		case domain.ParamInteger, domain.ParamNumber:
			opts = append(opts, mcp.WithNumber(p.Name, popts...))
		case domain.ParamBoolean:
			opts = append(opts, mcp.WithBoolean(p.Name, popts...))
		case domain.ParamObject:
			opts = append(opts, mcp.WithObject(p.Name, popts...))
		case domain.ParamArray:
			opts = append(opts, mcp.WithArray(p.Name, popts...))
		default:
			opts = append(opts, mcp.WithString(p.Name, popts...))
		}
	}
	return mcp.NewTool(spec.Name, opts...)
}

// ToolHandler dispatches an MCP call to the registry tool name.
// Tool failures, including invalid transitions, become MCP error results so
// the model can read them.
func (s *Server) ToolHandler(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := registry.Args(request.GetArguments())

		s.mu.Lock()
		from := s.machine.Current()
		output, err := s.registry.Execute(ctx, name, args)
		to := s.machine.Current()
		s.mu.Unlock()

		if err != nil {
			s.logger.Warn("MCP tool failed", "tool", name, "state", from, "error", err)
			return mcp.NewToolResultError(err.Error()), nil
		}
		if from != to {
			s.logger.Info("MCP transition", "from", from, "to", to)
		}

		text, err := stringify(output)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
		}
		return mcp.NewToolResultText(text), nil
	}
}

func (s *Server) handleGetState(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (StateResponse, error) {
	return StateResponse{
		State:    s.machine.Current(),
		Legal:    s.machine.LegalNextStates(),
		Terminal: s.machine.IsTerminal(),
		Guide:    runner.Guide(s.machine, s.registry),
	}, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(GraphURI, "State Graph",
		mcp.WithResourceDescription("The workflow graph: states, initial_state and terminal_states."),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data, err := json.Marshal(s.machine.Config())
		if err != nil {
			return nil, fmt.Errorf("failed to encode graph: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      GraphURI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}

func stringify(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case fmt.Stringer:
		return t.String(), nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
