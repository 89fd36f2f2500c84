// Package notify runs notification jobs on a pool of workers fed by a Queue.
package notify

import (
	"context"
	"errors"

	"eventhub/internal/domain"
)

var (
	// ErrQueueClosed is returned by Pop once the queue is closed and drained, and by Push after Close.
	ErrQueueClosed = errors.New("queue closed")
	// ErrQueueFull is returned by Push when a bounded queue has no room.
	ErrQueueFull = errors.New("queue full")
)

// Queue stores jobs between Enqueue and a worker picking them up.
type Queue interface {
	Push(ctx context.Context, job domain.Job) error
	// Pop blocks until a job is available, ctx is done or the queue is closed.
	Pop(ctx context.Context) (domain.Job, error)
	// Bury parks a job that exhausted its attempts.
	Bury(ctx context.Context, job domain.Job, cause error) error
	Close() error
}
