package worker

// dlq.go: jobs that exhaust their attempts are parked in dlq:{queue} and
// periodically replayed by the DLQ cron.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const DLQPrefix = "dlq:"

// DLQEntry wraps a failed job with metadata for debugging and replay.
type DLQEntry struct {
	OriginalQueue string          `json:"original_queue"`
	JobType       string          `json:"job_type"`
	Payload       json.RawMessage `json:"payload"`
	Reason        string          `json:"reason"`
	FailedAt      string          `json:"failed_at"` // ISO 8601
	Attempts      int             `json:"attempts"`
	Replays       int             `json:"replays"`
}

// SendToDLQ pushes a failed job to the dead letter queue.
func SendToDLQ(ctx context.Context, rdb *redis.Client, queue string, job Job, reason string, attempts int) {
	entry := DLQEntry{
		OriginalQueue: queue,
		JobType:       job.Type,
		Payload:       job.Payload,
		Reason:        reason,
		FailedAt:      time.Now().UTC().Format(time.RFC3339),
		Attempts:      attempts,
		Replays:       job.Replays,
	}

	data, err := json.Marshal(entry)
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dlq: failed to marshal entry")
		return
	}

	dlqKey := DLQPrefix + queue
	if err := rdb.LPush(context.WithoutCancel(ctx), dlqKey, data).Err(); err != nil {
		log.Error().Err(err).Str("dlq_key", dlqKey).Str("payload", string(job.Payload)).Msg("dlq: failed to push to DLQ")
		return
	}

	log.Warn().
		Str("queue", queue).
		Str("job_type", job.Type).
		Str("reason", reason).
		Int("attempts", attempts).
		Int("replays", job.Replays).
		Msg("dlq: job moved to dead letter queue")
}

// DLQLength returns the number of entries in a DLQ for monitoring.
func DLQLength(ctx context.Context, rdb *redis.Client, queue string) (int64, error) {
	return rdb.LLen(ctx, DLQPrefix+queue).Result()
}

// ReplayDLQ walks the entries present in dlq:{queue} when called. Entries with
// fewer than maxReplays replays go back to the source queue; the rest are put
// back at the head of the DLQ for manual inspection. Returns how many were
// re-queued.
func ReplayDLQ(ctx context.Context, rdb *redis.Client, queue string, maxReplays int) (int, error) {
	dlqKey := DLQPrefix + queue
	n, err := rdb.LLen(ctx, dlqKey).Result()
	if err != nil {
		return 0, err
	}

	replayed := 0
	for i := int64(0); i < n; i++ {
		raw, err := rdb.RPop(ctx, dlqKey).Result()
		if err == redis.Nil {
			break
		}
		if err != nil {
			return replayed, err
		}

		var entry DLQEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			log.Error().Err(err).Str("dlq_key", dlqKey).Msg("dlq: dropping unreadable entry")
			continue
		}
		if entry.Replays >= maxReplays {
			if err := rdb.LPush(ctx, dlqKey, raw).Err(); err != nil {
				return replayed, err
			}
			continue
		}

		job, err := json.Marshal(Job{Type: entry.JobType, Payload: entry.Payload, Replays: entry.Replays + 1})
		if err != nil {
			return replayed, err
		}
		if err := rdb.LPush(ctx, queue, job).Err(); err != nil {
			// put it back so the entry is not lost
			_ = rdb.LPush(context.WithoutCancel(ctx), dlqKey, raw).Err()
			return replayed, err
		}
		replayed++
	}
	return replayed, nil
}
