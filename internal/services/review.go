package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"eventhub/internal/domain"
)

const maxReviewCommentLength = 2000

type reviewService struct {
	reviewRepo     domain.ReviewRepository
	resolver       domain.VisibilityResolver
	dispatcher     domain.Dispatcher
	contextTimeout time.Duration
}

// NewReviewService creates a ReviewService.
func NewReviewService(
	reviewRepo domain.ReviewRepository,
	resolver domain.VisibilityResolver,
	dispatcher domain.Dispatcher,
	timeout time.Duration,
) domain.ReviewService {
	return &reviewService{
		reviewRepo:     reviewRepo,
		resolver:       resolver,
		dispatcher:     dispatcher,
		contextTimeout: timeout,
	}
}

func (s *reviewService) ListReviews(ctx context.Context, viewer domain.Viewer, eventID string) ([]*domain.Review, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, _, err := s.resolver.RequireVisible(ctx, viewer, eventID); err != nil {
		return nil, err
	}
	reviews, err := s.reviewRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}

func (s *reviewService) SubmitReview(ctx context.Context, viewer domain.Viewer, eventID string, in domain.ReviewInput) (*domain.Review, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if viewer.IsAnonymous() {
		return nil, false, domain.ErrUnauthenticated
	}
	if err := domain.ValidateRating(in.Rating); err != nil {
		return nil, false, err
	}
	comment := strings.TrimSpace(in.Comment)
	if len(comment) > maxReviewCommentLength {
		return nil, false, domain.NewValidationError("comment", "must be at most 2000 characters")
	}
	if _, _, err := s.resolver.RequireVisible(ctx, viewer, eventID); err != nil {
		return nil, false, err
	}

	now := time.Now().UTC()
	review := &domain.Review{
		EventID:   eventID,
		UserID:    viewer.UserID,
		Rating:    in.Rating,
		Comment:   comment,
		CreatedAt: now,
		UpdatedAt: now,
	}
	created, err := s.reviewRepo.Upsert(ctx, review)
	if err != nil {
		return nil, false, fmt.Errorf("upsert review: %w", err)
	}

	s.dispatcher.Enqueue(ctx, domain.JobReviewPosted, review.ID)
	return review, created, nil
}
