package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"eventhub/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisQueue(t *testing.T) (*RedisQueue, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := NewRedisClient(context.Background(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisQueue(client, "eventhub:jobs"), mr
}

func TestRedisQueue_PushPopFIFO(t *testing.T) {
	ctx := context.Background()
	q, _ := newTestRedisQueue(t)

	enqueued := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, q.Push(ctx, domain.Job{ID: "1", Type: domain.JobEventCreated, EntityID: "ev-1", EnqueuedAt: enqueued}))
	require.NoError(t, q.Push(ctx, domain.Job{ID: "2", Type: domain.JobRSVPChanged, EntityID: "r-1"}))

	job, err := q.Pop(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1", job.ID)
	assert.Equal(t, domain.JobEventCreated, job.Type)
	assert.Equal(t, "ev-1", job.EntityID)
	assert.True(t, enqueued.Equal(job.EnqueuedAt))

	job, err = q.Pop(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2", job.ID)
}

func TestRedisQueue_PopWaitsForContext(t *testing.T) {
	q, _ := newTestRedisQueue(t)
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Millisecond)
	defer cancel()
	_, err := q.Pop(ctx)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestRedisQueue_Close(t *testing.T) {
	ctx := context.Background()
	q, mr := newTestRedisQueue(t)
	require.NoError(t, q.Push(ctx, domain.Job{ID: "pending"}))
	require.NoError(t, q.Close())

	_, err := q.Pop(ctx)
	assert.ErrorIs(t, err, ErrQueueClosed)
	assert.ErrorIs(t, q.Push(ctx, domain.Job{ID: "late"}), ErrQueueClosed)

	pending, err := mr.List("eventhub:jobs")
	require.NoError(t, err)
	assert.Len(t, pending, 1, "pending jobs stay in redis for the next run")
}

func TestRedisQueue_Bury(t *testing.T) {
	ctx := context.Background()
	q, mr := newTestRedisQueue(t)
	require.NoError(t, q.Bury(ctx, domain.Job{ID: "x", Attempts: 5}, errors.New("smtp down")))

	dead, err := mr.List("eventhub:jobs:dead")
	require.NoError(t, err)
	require.Len(t, dead, 1)
	var d deadJob
	require.NoError(t, json.Unmarshal([]byte(dead[0]), &d))
	assert.Equal(t, "x", d.ID)
	assert.Equal(t, 5, d.Attempts)
	assert.Equal(t, "smtp down", d.Error)
}

func TestRedisQueue_WithDispatcher(t *testing.T) {
	q, _ := newTestRedisQueue(t)
	d := NewDispatcher(q, testLogger(), fastRetry(), 2)
	rec := newRecorder()
	d.Handle(domain.JobInvitationCreated, rec.handler(0, nil))

	d.Enqueue(context.Background(), domain.JobInvitationCreated, "inv-1")

	d.Start(context.Background())
	require.Eventually(t, func() bool { return rec.count("inv-1") == 1 }, 2*time.Second, 10*time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, d.Shutdown(ctx))
}

func TestNewRedisClient_BadURL(t *testing.T) {
	_, err := NewRedisClient(context.Background(), "not a url")
	assert.Error(t, err)
}
