package domain

import (
	"context"
	"time"
)

// Rating bounds for reviews.
const (
	MinRating = 1
	MaxRating = 5
)

// ValidateRating rejects ratings outside [MinRating, MaxRating].
func ValidateRating(rating int) error {
	if rating < MinRating || rating > MaxRating {
		return NewValidationError("rating", "must be between 1 and 5")
	}
	return nil
}

// Review is a user's rating of an event. At most one exists per (event, user).
// swagger:model Review
type Review struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username,omitempty"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ReviewInput carries a submitted review.
type ReviewInput struct {
	Rating  int
	Comment string
}

// ReviewRepository defines storage operations for reviews.
type ReviewRepository interface {
	Upsert(ctx context.Context, review *Review) (created bool, err error)
	GetByID(ctx context.Context, id string) (*Review, error)
	ListByEventID(ctx context.Context, eventID string) ([]*Review, error)
}

// ReviewService defines review operations.
type ReviewService interface {
	ListReviews(ctx context.Context, viewer Viewer, eventID string) ([]*Review, error)
	SubmitReview(ctx context.Context, viewer Viewer, eventID string, in ReviewInput) (review *Review, created bool, err error)
}
