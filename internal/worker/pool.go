package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/JoakoBallesteros/DonNildo-sub000/internal/model"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueAuditoria = "jobs:auditoria"
	QueueEmail     = "jobs:email"

	maxAttempts = 3
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
	Replays int             `json:"replays,omitempty"`
}

// Handler processes one job payload. Returning a permanent error skips the
// remaining attempts.
type Handler func(ctx context.Context, payload json.RawMessage) error

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueAuditoria pushes an audit row to Redis.
func (d *Dispatcher) EnqueueAuditoria(ctx context.Context, entry model.Auditoria) error {
	return d.enqueue(ctx, QueueAuditoria, "auditoria", entry)
}

// EnqueueReporteEmail pushes a report delivery job to Redis.
func (d *Dispatcher) EnqueueReporteEmail(ctx context.Context, reporteID int64, to string) error {
	return d.enqueue(ctx, QueueEmail, "reporte_email", ReporteEmailPayload{ReporteID: reporteID, To: to})
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(Job{Type: jobType, Payload: data})
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// Pool consumes the job queues with a fixed number of goroutines.
type Pool struct {
	rdb      *redis.Client
	handlers map[string]Handler
	wg       sync.WaitGroup
	// deadLetter receives jobs whose attempts ran out.
	deadLetter func(ctx context.Context, queue string, job Job, reason string, attempts int)
}

// NewPool wires one handler per queue name.
func NewPool(rdb *redis.Client, handlers map[string]Handler) *Pool {
	p := &Pool{rdb: rdb, handlers: handlers}
	p.deadLetter = func(ctx context.Context, queue string, job Job, reason string, attempts int) {
		SendToDLQ(ctx, rdb, queue, job, reason, attempts)
	}
	return p
}

func (p *Pool) queues() []string {
	qs := make([]string, 0, len(p.handlers))
	for _, q := range []string{QueueAuditoria, QueueEmail} {
		if _, ok := p.handlers[q]; ok {
			qs = append(qs, q)
		}
	}
	return qs
}

// Start launches numWorkers goroutines consuming every configured queue.
// Each goroutine blocks on BRPOP, so idle workers cost nothing.
func (p *Pool) Start(ctx context.Context, numWorkers int) {
	if numWorkers < 1 {
		numWorkers = 1
	}
	for i := 0; i < numWorkers; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			p.run(ctx, id)
		}(i)
	}
	log.Info().Int("workers", numWorkers).Strs("queues", p.queues()).Msg("worker pool started")
}

// Wait blocks until every worker returned after its context was cancelled,
// or until timeout. It reports whether the pool drained in time.
func (p *Pool) Wait(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}

func (p *Pool) run(ctx context.Context, id int) {
	queues := p.queues()
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// waits up to 5s then loops to check ctx
			result, err := p.rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
					log.Warn().Err(err).Int("worker", id).Msg("worker: BRPOP failed")
					time.Sleep(time.Second)
				}
				continue
			}
			if len(result) < 2 {
				continue
			}
			p.process(ctx, result[0], result[1])
		}
	}
}

func (p *Pool) process(ctx context.Context, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		return
	}
	handle, ok := p.handlers[queue]
	if !ok {
		log.Error().Str("queue", queue).Str("type", job.Type).Msg("no handler for queue")
		return
	}

	attempts := 0
	err := withRetry(ctx, maxAttempts, func(attempt int) error {
		attempts = attempt + 1
		return handle(ctx, job.Payload)
	})
	if err == nil {
		log.Debug().Str("type", job.Type).Str("queue", queue).Int("attempts", attempts).Msg("job processed")
		return
	}
	if ctx.Err() != nil {
		// shutting down mid-retry: keep the job for the next start
		if pushErr := p.rdb.LPush(context.WithoutCancel(ctx), queue, raw).Err(); pushErr != nil {
			log.Error().Err(pushErr).Str("queue", queue).Msg("worker: failed to requeue job on shutdown")
		}
		return
	}
	p.deadLetter(ctx, queue, job, fmt.Sprintf("failed after %d attempts: %v", attempts, err), attempts)
}
