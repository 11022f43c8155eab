package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/fsmagent/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// Journal appends runner lifecycle events to one Redis stream per run.
// It records what happened; it is not a state store and cannot resume a run.
type Journal struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
	maxLen int64
	logger *slog.Logger
}

// Entry is one journaled event.
type Entry struct {
	ID    string           `json:"id"`
	Type  domain.EventType `json:"type"`
	Event json.RawMessage  `json:"event"`
}

type Option func(*Journal)

// WithTTL sets the expiration for run streams.
func WithTTL(ttl time.Duration) Option {
	return func(j *Journal) {
		j.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(j *Journal) {
		j.prefix = prefix
	}
}

// WithMaxLen caps each run stream (approximate trimming).
func WithMaxLen(n int64) Option {
	return func(j *Journal) {
		j.maxLen = n
	}
}

// WithLogger sets the logger used to report write failures.
func WithLogger(logger *slog.Logger) Option {
	return func(j *Journal) {
		j.logger = logger
	}
}

// New creates a journal with its own client.
func New(address, password string, db int, opts ...Option) *Journal {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a journal from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Journal {
	j := &Journal{
		client: client,
		prefix: "fsmagent:run:",
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

func (j *Journal) key(runID string) string {
	return j.prefix + runID
}

func (j *Journal) indexKey() string {
	return j.prefix + "index"
}

// Append writes one event to the run's stream and indexes the run.
func (j *Journal) Append(ctx context.Context, runID string, typ domain.EventType, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	args := &backend.XAddArgs{
		Stream: j.key(runID),
		Values: map[string]any{
			"type":  string(typ),
			"event": string(data),
		},
	}
	if j.maxLen > 0 {
		args.MaxLen = j.maxLen
		args.Approx = true
	}

	pipe := j.client.Pipeline()
	pipe.XAdd(ctx, args)
	if j.ttl > 0 {
		pipe.Expire(ctx, j.key(runID), j.ttl)
	}
	pipe.ZAdd(ctx, j.indexKey(), backend.Z{
		Score:  float64(time.Now().UnixNano()),
		Member: runID,
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append to redis: %w", err)
	}
	return nil
}

// Read returns the run's events, oldest first.
func (j *Journal) Read(ctx context.Context, runID string) ([]Entry, error) {
	msgs, err := j.client.XRange(ctx, j.key(runID), "-", "+").Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read from redis: %w", err)
	}

	entries := make([]Entry, 0, len(msgs))
	for _, msg := range msgs {
		typ, _ := msg.Values["type"].(string)
		raw, _ := msg.Values["event"].(string)
		entries = append(entries, Entry{
			ID:    msg.ID,
			Type:  domain.EventType(typ),
			Event: json.RawMessage(raw),
		})
	}
	return entries, nil
}

// Runs lists journaled run IDs, most recent last.
func (j *Journal) Runs(ctx context.Context) ([]string, error) {
	runs, err := j.client.ZRange(ctx, j.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// Hooks returns lifecycle hooks that journal every event.
// Write failures are logged; hooks cannot fail a run.
func (j *Journal) Hooks() domain.LifecycleHooks {
	write := func(ctx context.Context, runID string, typ domain.EventType, event any) {
		if err := j.Append(ctx, runID, typ, event); err != nil {
			j.logger.Error("journal append failed", "run_id", runID, "type", typ, "error", err)
		}
	}

	return domain.LifecycleHooks{
		OnStep: func(ctx context.Context, e *domain.StepEvent) {
			write(ctx, e.RunID, e.Type, e)
		},
		OnTransition: func(ctx context.Context, e *domain.TransitionEvent) {
			write(ctx, e.RunID, e.Type, e)
		},
		OnToolCall: func(ctx context.Context, e *domain.ToolEvent) {
			write(ctx, e.RunID, e.Type, e)
		},
		OnToolReturn: func(ctx context.Context, e *domain.ToolEvent) {
			write(ctx, e.RunID, e.Type, e)
		},
		OnRunEnd: func(ctx context.Context, e *domain.RunEvent) {
			write(ctx, e.RunID, e.Type, e)
		},
	}
}

// Ping checks connectivity.
func (j *Journal) Ping(ctx context.Context) error {
	if err := j.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to reach redis: %w", err)
	}
	return nil
}

// Close closes the redis client.
func (j *Journal) Close() error {
	return j.client.Close()
}
