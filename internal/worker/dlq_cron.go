package worker

// dlq_cron.go
// Background goroutine that periodically moves dead-lettered jobs back to
// their source queue so transient outages (database, SMTP) heal on their own.

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	defaultReplayInterval = 5 * time.Minute
	defaultMaxReplays     = 3
)

// DLQReplayConfig holds all dependencies for the replay goroutine.
type DLQReplayConfig struct {
	RDB        *redis.Client
	Queues     []string
	Interval   time.Duration
	MaxReplays int
}

// StartDLQReplayCron launches a goroutine that ticks every Interval and replays
// the DLQ of each configured queue. It respects ctx for graceful shutdown.
func StartDLQReplayCron(ctx context.Context, cfg DLQReplayConfig) {
	if cfg.Interval <= 0 {
		cfg.Interval = defaultReplayInterval
	}
	if cfg.MaxReplays <= 0 {
		cfg.MaxReplays = defaultMaxReplays
	}
	go func() {
		ticker := time.NewTicker(cfg.Interval)
		defer ticker.Stop()

		log.Info().Dur("interval", cfg.Interval).Msg("dlq_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("dlq_cron: shutting down")
				return
			case <-ticker.C:
				replayAll(ctx, cfg)
			}
		}
	}()
}

func replayAll(ctx context.Context, cfg DLQReplayConfig) {
	for _, q := range cfg.Queues {
		n, err := ReplayDLQ(ctx, cfg.RDB, q, cfg.MaxReplays)
		if err != nil {
			log.Error().Err(err).Str("queue", q).Msg("dlq_cron: replay failed")
			continue
		}
		if n > 0 {
			log.Info().Str("queue", q).Int("replayed", n).Msg("dlq_cron: jobs re-queued")
		}
	}
}
