package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/fsmagent"
	"github.com/aretw0/fsmagent/internal/presentation/graph"
	"github.com/aretw0/fsmagent/pkg/domain"
	"github.com/aretw0/fsmagent/pkg/fsm"
	"github.com/aretw0/fsmagent/pkg/registry"
	"github.com/aretw0/fsmagent/pkg/runner"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Server exposes one workflow session (a machine and its registry) over HTTP.
// Mutating calls are serialized; the session is single-agent.
type Server struct {
	mu        sync.Mutex
	machine   *fsm.Machine
	registry  *registry.Registry
	hooks     domain.LifecycleHooks
	logger    *slog.Logger
	sessionID string
	Streams   *StreamManager
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

// WithLifecycleHooks fires tool and transition hooks for HTTP-driven actions.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Server) {
		s.hooks = hooks
	}
}

// NewServer creates a server for the session. A nil registry is replaced by an
// empty one.
func NewServer(m *fsm.Machine, reg *registry.Registry, opts ...Option) *Server {
	if reg == nil {
		reg = registry.NewRegistry()
	}
	s := &Server{
		machine:   m,
		registry:  reg,
		logger:    slog.Default(),
		sessionID: uuid.NewString(),
		Streams:   NewStreamManager(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewHandler creates the HTTP handler for a session.
func NewHandler(m *fsm.Machine, reg *registry.Registry, opts ...Option) http.Handler {
	return NewServer(m, reg, opts...).Routes()
}

// Routes builds the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/state", s.GetState)
	r.Get("/guide", s.GetGuide)
	r.Get("/graph", s.GetGraph)
	r.Get("/tools", s.ListTools)
	r.Post("/tools/{name}", s.CallTool)
	r.Post("/transition", s.PostTransition)
	r.Get("/events", s.SubscribeEvents)
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// StateResponse is the body of GET /state and POST /transition.
type StateResponse struct {
	SessionID string   `json:"session_id"`
	State     string   `json:"state"`
	Legal     []string `json:"legal"`
	Terminal  bool     `json:"terminal"`
	DeadEnd   bool     `json:"dead_end"`
	History   []string `json:"history"`
}

// TransitionRequest is the body of POST /transition.
type TransitionRequest struct {
	NextState string `json:"next_state"`
	Reason    string `json:"reason,omitempty"`
}

// ErrorResponse is returned for every failed request.
type ErrorResponse struct {
	Error   string   `json:"error"`
	State   string   `json:"state,omitempty"`
	Allowed []string `json:"allowed,omitempty"`
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.logger, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.logger, http.StatusOK, map[string]string{
		"app":     "fsmagent-http",
		"version": strings.TrimSpace(fsmagent.Version),
	})
}

// GetState handles the GET /state request.
func (s *Server) GetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.logger, http.StatusOK, s.state())
}

// GetGuide handles the GET /guide request. ?tools=true appends the tool listing.
func (s *Server) GetGuide(w http.ResponseWriter, r *http.Request) {
	var tools *registry.Registry
	if r.URL.Query().Get("tools") == "true" {
		tools = s.registry
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, runner.Guide(s.machine, tools))
}

// GetGraph handles the GET /graph request.
// It returns Mermaid text with the session overlay, or the raw graph with ?format=json.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	cfg := s.machine.Config()
	if r.URL.Query().Get("format") == "json" {
		writeJSON(w, s.logger, http.StatusOK, cfg)
		return
	}

	overlay := &graph.Overlay{
		Visited: s.machine.History(),
		Current: s.machine.Current(),
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, graph.GenerateMermaid(cfg, overlay))
}

// ListTools handles the GET /tools request.
func (s *Server) ListTools(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.logger, http.StatusOK, s.registry.Specs())
}

// CallTool handles the POST /tools/{name} request. The body is a JSON object
// of arguments; an empty body means no arguments.
func (s *Server) CallTool(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	args, err := decodeArgs(r.Body)
	if err != nil {
		s.logger.Warn("CallTool: invalid request body", "tool", name, "error", err)
		writeJSON(w, s.logger, http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	s.mu.Lock()
	from := s.machine.Current()
	call := domain.ToolCall{ID: uuid.NewString(), Name: name, Args: args}
	result, err := s.execute(r, from, call)
	to := s.machine.Current()
	s.mu.Unlock()

	s.afterMove(r, from, to)

	if err != nil {
		s.writeError(w, err, from)
		return
	}
	writeJSON(w, s.logger, http.StatusOK, result)
}

// PostTransition handles the POST /transition request.
func (s *Server) PostTransition(w http.ResponseWriter, r *http.Request) {
	var body TransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.logger.Warn("Transition: invalid request body", "error", err)
		writeJSON(w, s.logger, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	s.mu.Lock()
	from := s.machine.Current()
	to, err := s.machine.Transition(body.NextState)
	s.mu.Unlock()

	if err != nil {
		s.writeError(w, err, from)
		return
	}
	s.logger.Info("transition", "session_id", s.sessionID, "from", from, "to", to, "reason", body.Reason)
	s.afterMove(r, from, to)
	writeJSON(w, s.logger, http.StatusOK, s.state())
}

func (s *Server) execute(r *http.Request, state string, call domain.ToolCall) (domain.ToolResult, error) {
	ctx := r.Context()
	if s.hooks.OnToolCall != nil {
		s.hooks.OnToolCall(ctx, &domain.ToolEvent{
			EventBase: s.event(domain.EventToolCall),
			State:     state,
			ToolName:  call.Name,
			Input:     call.Args,
		})
	}

	started := time.Now()
	output, err := s.registry.Execute(ctx, call.Name, call.Args)
	elapsed := time.Since(started)

	result := domain.ToolResult{ID: call.ID, Name: call.Name, Result: output}
	if err != nil {
		result.IsError = true
		result.Error = err.Error()
	}

	if s.hooks.OnToolReturn != nil {
		s.hooks.OnToolReturn(ctx, &domain.ToolEvent{
			EventBase: s.event(domain.EventToolReturn),
			State:     state,
			ToolName:  call.Name,
			Input:     call.Args,
			Output:    output,
			IsError:   result.IsError,
			Duration:  elapsed,
		})
	}
	return result, err
}

func (s *Server) afterMove(r *http.Request, from, to string) {
	if from == to {
		return
	}
	ev := &domain.TransitionEvent{
		EventBase: s.event(domain.EventTransition),
		From:      from,
		To:        to,
	}
	if s.hooks.OnTransition != nil {
		s.hooks.OnTransition(r.Context(), ev)
	}
	if data, err := json.Marshal(ev); err == nil {
		s.Streams.Broadcast(string(data))
	}
}

func (s *Server) event(t domain.EventType) domain.EventBase {
	return domain.EventBase{Timestamp: time.Now(), Type: t, RunID: s.sessionID}
}

func (s *Server) state() StateResponse {
	return StateResponse{
		SessionID: s.sessionID,
		State:     s.machine.Current(),
		Legal:     s.machine.LegalNextStates(),
		Terminal:  s.machine.IsTerminal(),
		DeadEnd:   s.machine.IsDeadEnd(),
		History:   s.machine.History(),
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error, state string) {
	status := StatusFor(err)
	resp := ErrorResponse{Error: err.Error(), State: state}

	var invalid *domain.InvalidTransitionError
	if errors.As(err, &invalid) {
		resp.Allowed = invalid.Allowed
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "state", state, "error", err)
	} else {
		s.logger.Warn("request rejected", "state", state, "status", status, "error", err)
	}
	writeJSON(w, s.logger, status, resp)
}

// StatusFor maps the error taxonomy onto HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnknownTool):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrToolDenied):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func decodeArgs(body io.Reader) (registry.Args, error) {
	dec := json.NewDecoder(body)
	dec.UseNumber()

	args := registry.Args{}
	if err := dec.Decode(&args); err != nil {
		if errors.Is(err, io.EOF) {
			return registry.Args{}, nil
		}
		return nil, err
	}
	if args == nil {
		args = registry.Args{}
	}
	return args, nil
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("response encode failed", "error", err)
	}
}

// StreamManager fans transition events out to SSE subscribers.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[chan<- string]struct{}
	logger      *slog.Logger
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[chan<- string]struct{}),
		logger:      slog.Default(),
	}
}

func (sm *StreamManager) Subscribe() (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	sm.subscribers[ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if _, ok := sm.subscribers[ch]; ok {
			delete(sm.subscribers, ch)
			close(ch)
		}
	}
}

func (sm *StreamManager) Broadcast(msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers {
		select {
		case ch <- msg:
		default:
			// Slow client.
			sm.logger.Warn("SSE: client buffer full, dropping message")
		}
	}
}

// SubscribeEvents handles the GET /events request (SSE of transitions).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe()
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: transition\ndata: %s\n\n", msg)
			flusher.Flush()
		}
	}
}
