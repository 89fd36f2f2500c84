package domain

import (
	"context"
	"time"
)

// JobType names a notification job. Each job carries the ID of one entity.
type JobType string

const (
	JobUserWelcome       JobType = "user.welcome"
	JobEventCreated      JobType = "event.created"
	JobEventUpdated      JobType = "event.updated"
	JobRSVPChanged       JobType = "rsvp.changed"
	JobReviewPosted      JobType = "review.posted"
	JobInvitationCreated JobType = "invitation.created"
)

// Job is a queued notification.
type Job struct {
	ID         string    `json:"id"`
	Type       JobType   `json:"type"`
	EntityID   string    `json:"entity_id"`
	EnqueuedAt time.Time `json:"enqueued_at"`
	Attempts   int       `json:"attempts"`
}

// Dispatcher queues notification jobs. Enqueue is fire-and-forget: failures are logged, never returned.
type Dispatcher interface {
	Enqueue(ctx context.Context, jobType JobType, entityID string)
}

// JobHandler executes one job type. The result is a short outcome recorded in the job log.
// A missing entity is reported through the result with a nil error.
type JobHandler func(ctx context.Context, entityID string) (result string, err error)
