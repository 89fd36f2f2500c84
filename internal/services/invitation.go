package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventhub/internal/domain"
)

type invitationService struct {
	invitationRepo domain.InvitationRepository
	userRepo       domain.UserRepository
	resolver       domain.VisibilityResolver
	dispatcher     domain.Dispatcher
	contextTimeout time.Duration
}

// NewInvitationService creates an InvitationService.
func NewInvitationService(
	invitationRepo domain.InvitationRepository,
	userRepo domain.UserRepository,
	resolver domain.VisibilityResolver,
	dispatcher domain.Dispatcher,
	timeout time.Duration,
) domain.InvitationService {
	return &invitationService{
		invitationRepo: invitationRepo,
		userRepo:       userRepo,
		resolver:       resolver,
		dispatcher:     dispatcher,
		contextTimeout: timeout,
	}
}

// organizerOnly hides events the caller cannot see, then requires the organizer.
func (s *invitationService) organizerOnly(ctx context.Context, viewer domain.Viewer, eventID string) error {
	if viewer.IsAnonymous() {
		return domain.ErrUnauthenticated
	}
	_, access, err := s.resolver.RequireVisible(ctx, viewer, eventID)
	if err != nil {
		return err
	}
	if !access.CanManage() {
		return domain.ErrForbidden
	}
	return nil
}

func (s *invitationService) InviteUser(ctx context.Context, viewer domain.Viewer, eventID, userID string) (*domain.Invitation, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if userID == "" {
		return nil, false, domain.NewValidationError("user_id", "is required")
	}
	if err := s.organizerOnly(ctx, viewer, eventID); err != nil {
		return nil, false, err
	}
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, false, domain.ErrUserNotFound
		}
		return nil, false, fmt.Errorf("get invitee: %w", err)
	}

	inv := &domain.Invitation{
		EventID:     eventID,
		UserID:      userID,
		InvitedByID: viewer.UserID,
		CreatedAt:   time.Now().UTC(),
	}
	created, err := s.invitationRepo.CreateIfAbsent(ctx, inv)
	if err != nil {
		return nil, false, fmt.Errorf("create invitation: %w", err)
	}
	if created {
		s.dispatcher.Enqueue(ctx, domain.JobInvitationCreated, inv.ID)
	}
	return inv, created, nil
}

func (s *invitationService) ListInvitations(ctx context.Context, viewer domain.Viewer, eventID string) ([]*domain.Invitation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.organizerOnly(ctx, viewer, eventID); err != nil {
		return nil, err
	}
	invs, err := s.invitationRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}
	return invs, nil
}
