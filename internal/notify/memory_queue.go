package notify

import (
	"context"
	"sync"

	"eventhub/internal/domain"
)

// maxDead bounds how many buried jobs a MemoryQueue keeps.
const maxDead = 100

// MemoryQueue is a bounded in-process Queue. Jobs are lost on restart.
type MemoryQueue struct {
	mu     sync.RWMutex
	jobs   chan domain.Job
	closed bool

	deadMu sync.Mutex
	dead   []domain.Job
}

// NewMemoryQueue returns a queue holding up to size pending jobs.
func NewMemoryQueue(size int) *MemoryQueue {
	if size < 1 {
		size = 1
	}
	return &MemoryQueue{jobs: make(chan domain.Job, size)}
}

func (q *MemoryQueue) Push(ctx context.Context, job domain.Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}
	select {
	case q.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrQueueFull
	}
}

// Pop keeps returning buffered jobs after Close until the buffer is empty.
func (q *MemoryQueue) Pop(ctx context.Context) (domain.Job, error) {
	select {
	case job, ok := <-q.jobs:
		if !ok {
			return domain.Job{}, ErrQueueClosed
		}
		return job, nil
	case <-ctx.Done():
		return domain.Job{}, ctx.Err()
	}
}

func (q *MemoryQueue) Bury(_ context.Context, job domain.Job, _ error) error {
	q.deadMu.Lock()
	defer q.deadMu.Unlock()
	q.dead = append(q.dead, job)
	if len(q.dead) > maxDead {
		q.dead = q.dead[len(q.dead)-maxDead:]
	}
	return nil
}

// Dead returns the most recently buried jobs, oldest first.
func (q *MemoryQueue) Dead() []domain.Job {
	q.deadMu.Lock()
	defer q.deadMu.Unlock()
	out := make([]domain.Job, len(q.dead))
	copy(out, q.dead)
	return out
}

func (q *MemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
	return nil
}
