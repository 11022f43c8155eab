package main

import (
	"context"

	"github.com/aretw0/fsmagent/pkg/adapters/redis"
	"github.com/aretw0/fsmagent/pkg/domain"
	"github.com/spf13/cobra"
)

func addJournalFlags(cmd *cobra.Command) {
	cmd.Flags().String("redis", "", "Redis address for the event journal (disabled when empty)")
	cmd.Flags().String("redis-password", "", "Redis password")
	cmd.Flags().Int("redis-db", 0, "Redis database")
}

// openJournal connects the event journal when --redis is set.
// The returned close function is always safe to call.
func openJournal(ctx context.Context, cmd *cobra.Command) (domain.LifecycleHooks, func(), error) {
	addr, _ := cmd.Flags().GetString("redis")
	if addr == "" {
		return domain.LifecycleHooks{}, func() {}, nil
	}
	password, _ := cmd.Flags().GetString("redis-password")
	db, _ := cmd.Flags().GetInt("redis-db")

	journal := redis.New(addr, password, db, redis.WithLogger(logger))
	if err := journal.Ping(ctx); err != nil {
		journal.Close()
		return domain.LifecycleHooks{}, func() {}, err
	}
	logger.Info("event journal enabled", "redis", addr)
	return journal.Hooks(), func() { journal.Close() }, nil
}
