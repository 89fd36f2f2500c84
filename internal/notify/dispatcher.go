package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"eventhub/internal/domain"
	"eventhub/pkg/retry"
)

// popBackoff is the pause after a failed Pop before a worker polls again.
const popBackoff = time.Second

// Dispatcher implements domain.Dispatcher. Enqueue only pushes to the queue; workers started by
// Start run the registered handler for each job with retry and bury jobs that keep failing.
type Dispatcher struct {
	queue    Queue
	logger   *slog.Logger
	retry    retry.Config
	workers  int
	handlers map[domain.JobType]domain.JobHandler
	wg       sync.WaitGroup
}

// NewDispatcher returns a Dispatcher with workers goroutines (at least one).
func NewDispatcher(queue Queue, logger *slog.Logger, cfg retry.Config, workers int) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	return &Dispatcher{
		queue:    queue,
		logger:   logger,
		retry:    cfg,
		workers:  workers,
		handlers: make(map[domain.JobType]domain.JobHandler),
	}
}

// Handle registers h for jobType. Call before Start.
func (d *Dispatcher) Handle(jobType domain.JobType, h domain.JobHandler) {
	d.handlers[jobType] = h
}

// HandleAll registers every handler in hs.
func (d *Dispatcher) HandleAll(hs map[domain.JobType]domain.JobHandler) {
	for t, h := range hs {
		d.Handle(t, h)
	}
}

// Enqueue queues a job. Failures are logged and never reach the caller.
func (d *Dispatcher) Enqueue(ctx context.Context, jobType domain.JobType, entityID string) {
	job := domain.Job{
		ID:         uuid.NewString(),
		Type:       jobType,
		EntityID:   entityID,
		EnqueuedAt: time.Now().UTC(),
	}
	// The request may finish before the push does.
	if err := d.queue.Push(context.WithoutCancel(ctx), job); err != nil {
		d.logger.ErrorContext(ctx, "enqueue job failed", "job_id", job.ID, "type", jobType, "entity_id", entityID, "err", err)
		return
	}
	d.logger.DebugContext(ctx, "job enqueued", "job_id", job.ID, "type", jobType, "entity_id", entityID)
}

// Start launches the workers. They stop when ctx is done or the queue is closed and drained.
func (d *Dispatcher) Start(ctx context.Context) {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.work(ctx, i)
	}
	d.logger.Info("notification workers started", "workers", d.workers)
}

// Shutdown closes the queue and waits for the workers to finish in-flight and buffered jobs.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	if err := d.queue.Close(); err != nil {
		return fmt.Errorf("close queue: %w", err)
	}
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for notification workers: %w", ctx.Err())
	}
}

func (d *Dispatcher) work(ctx context.Context, id int) {
	defer d.wg.Done()
	for {
		job, err := d.queue.Pop(ctx)
		if err != nil {
			if errors.Is(err, ErrQueueClosed) || ctx.Err() != nil {
				return
			}
			d.logger.Error("pop job failed", "worker", id, "err", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(popBackoff):
			}
			continue
		}
		d.process(ctx, job)
	}
}

func (d *Dispatcher) process(ctx context.Context, job domain.Job) {
	log := d.logger.With("job_id", job.ID, "type", job.Type, "entity_id", job.EntityID)
	h, ok := d.handlers[job.Type]
	if !ok {
		log.Warn("no handler for job type")
		d.bury(ctx, log, job, fmt.Errorf("unknown job type %q", job.Type))
		return
	}

	start := time.Now()
	var result string
	err := retry.DoWithLog(ctx, d.retry, string(job.Type), func() error {
		job.Attempts++
		var herr error
		result, herr = h(ctx, job.EntityID)
		return herr
	}, func(attempt int, err error, next time.Duration) {
		log.Warn("job attempt failed", "attempt", attempt, "retry_in", next, "err", err)
	})
	if err != nil {
		log.Error("job failed", "attempts", job.Attempts, "err", err)
		d.bury(ctx, log, job, err)
		return
	}
	log.Info("job done", "result", result, "attempts", job.Attempts, "duration", time.Since(start))
}

func (d *Dispatcher) bury(ctx context.Context, log *slog.Logger, job domain.Job, cause error) {
	if err := d.queue.Bury(context.WithoutCancel(ctx), job, cause); err != nil {
		log.Error("bury job failed", "err", err)
	}
}
