package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventhub/internal/domain"
)

type rsvpService struct {
	rsvpRepo       domain.RSVPRepository
	resolver       domain.VisibilityResolver
	dispatcher     domain.Dispatcher
	contextTimeout time.Duration
}

// NewRSVPService creates an RSVPService.
func NewRSVPService(
	rsvpRepo domain.RSVPRepository,
	resolver domain.VisibilityResolver,
	dispatcher domain.Dispatcher,
	timeout time.Duration,
) domain.RSVPService {
	return &rsvpService{
		rsvpRepo:       rsvpRepo,
		resolver:       resolver,
		dispatcher:     dispatcher,
		contextTimeout: timeout,
	}
}

func (s *rsvpService) Respond(ctx context.Context, viewer domain.Viewer, eventID, status string) (*domain.RSVP, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if viewer.IsAnonymous() {
		return nil, false, domain.ErrUnauthenticated
	}
	// An empty status keeps the current answer; the repository stores Going for a new RSVP.
	var st domain.RSVPStatus
	if status != "" {
		parsed, err := domain.ParseRSVPStatus(status)
		if err != nil {
			return nil, false, err
		}
		st = parsed
	}
	if _, _, err := s.resolver.RequireVisible(ctx, viewer, eventID); err != nil {
		return nil, false, err
	}

	now := time.Now().UTC()
	rsvp := domain.NewRSVP(eventID, viewer.UserID, st, now, now)
	created, err := s.rsvpRepo.Upsert(ctx, rsvp)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, false, domain.ErrNotFound
		}
		return nil, false, fmt.Errorf("upsert rsvp: %w", err)
	}

	s.dispatcher.Enqueue(ctx, domain.JobRSVPChanged, rsvp.ID)
	return rsvp, created, nil
}

// UpdateStatus lets the organizer set any status for any attendee's existing RSVP.
func (s *rsvpService) UpdateStatus(ctx context.Context, viewer domain.Viewer, eventID, userID, status string) (*domain.RSVP, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if viewer.IsAnonymous() {
		return nil, domain.ErrUnauthenticated
	}
	st, err := domain.ParseRSVPStatus(status)
	if err != nil {
		return nil, err
	}
	_, access, err := s.resolver.RequireVisible(ctx, viewer, eventID)
	if err != nil {
		return nil, err
	}
	if userID != viewer.UserID && !access.CanManage() {
		return nil, domain.ErrForbidden
	}

	rsvp := &domain.RSVP{EventID: eventID, UserID: userID, Status: st, UpdatedAt: time.Now().UTC()}
	if err := s.rsvpRepo.UpdateStatus(ctx, rsvp); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update rsvp: %w", err)
	}

	s.dispatcher.Enqueue(ctx, domain.JobRSVPChanged, rsvp.ID)
	return rsvp, nil
}
