package redis_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/fsmagent/pkg/adapters/redis"
	"github.com/aretw0/fsmagent/pkg/domain"
	"github.com/aretw0/fsmagent/pkg/fsm"
	"github.com/aretw0/fsmagent/pkg/runner"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T, opts ...redis.Option) (*miniredis.Miniredis, *redis.Journal) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	return mr, redis.NewFromClient(client, opts...)
}

func TestJournal_RecordsRun(t *testing.T) {
	_, journal := setup(t)
	ctx := context.Background()

	m, err := fsm.NewMachine(map[string][]string{
		"start": {"end"},
		"end":   {},
	}, "start", "end")
	require.NoError(t, err)

	driver := runner.DriverFunc(func(ctx context.Context, step *runner.Step) error {
		return step.Transition("end")
	})
	report, err := runner.New(m, nil, runner.WithLifecycleHooks(journal.Hooks())).Run(ctx, driver)
	require.NoError(t, err)

	entries, err := journal.Read(ctx, report.RunID)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, domain.EventStep, entries[0].Type)
	assert.Equal(t, domain.EventTransition, entries[1].Type)
	assert.Equal(t, domain.EventRunEnd, entries[2].Type)

	var end domain.RunEvent
	require.NoError(t, json.Unmarshal(entries[2].Event, &end))
	assert.Equal(t, domain.OutcomeTerminal, end.Outcome)
	assert.Equal(t, "end", end.FinalState)

	runs, err := journal.Runs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{report.RunID}, runs)
}

func TestJournal_TTL(t *testing.T) {
	mr, journal := setup(t, redis.WithTTL(time.Second), redis.WithPrefix("test:"))
	ctx := context.Background()

	require.NoError(t, journal.Append(ctx, "run-1", domain.EventStep, &domain.StepEvent{Step: 1}))
	assert.True(t, mr.Exists("test:run-1"))

	mr.FastForward(2 * time.Second)
	assert.False(t, mr.Exists("test:run-1"), "stream should expire")

	entries, err := journal.Read(ctx, "run-1")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestJournal_ConnectionFailureIsLoggedNotFatal(t *testing.T) {
	mr, journal := setup(t)
	mr.Close()

	assert.Error(t, journal.Ping(context.Background()))
	err := journal.Append(context.Background(), "run-1", domain.EventStep, &domain.StepEvent{})
	assert.Error(t, err)

	assert.NotPanics(t, func() {
		journal.Hooks().OnStep(context.Background(), &domain.StepEvent{EventBase: domain.EventBase{RunID: "run-1"}})
	})
}
