package services

import (
	"context"
	"errors"
	"fmt"

	"eventhub/internal/domain"
)

type visibilityResolver struct {
	eventRepo      domain.EventRepository
	invitationRepo domain.InvitationRepository
	rsvpRepo       domain.RSVPRepository
}

// NewVisibilityResolver returns the resolver shared by every event-scoped service.
func NewVisibilityResolver(
	eventRepo domain.EventRepository,
	invitationRepo domain.InvitationRepository,
	rsvpRepo domain.RSVPRepository,
) domain.VisibilityResolver {
	return &visibilityResolver{
		eventRepo:      eventRepo,
		invitationRepo: invitationRepo,
		rsvpRepo:       rsvpRepo,
	}
}

// Resolve stops looking up relations as soon as one grants visibility, so Invited and HasRSVP
// are only populated for callers that need them.
func (v *visibilityResolver) Resolve(ctx context.Context, viewer domain.Viewer, eventID string) (*domain.Event, domain.Access, error) {
	event, err := v.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.Access{}, domain.ErrNotFound
		}
		return nil, domain.Access{}, fmt.Errorf("get event: %w", err)
	}

	access := domain.Access{Public: event.IsPublic}
	if viewer.IsAnonymous() {
		return event, access, nil
	}
	access.Organizer = event.OrganizerID == viewer.UserID
	if access.CanView() {
		return event, access, nil
	}

	if _, err := v.invitationRepo.GetByEventAndUser(ctx, eventID, viewer.UserID); err == nil {
		access.Invited = true
		return event, access, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, domain.Access{}, fmt.Errorf("get invitation: %w", err)
	}

	if _, err := v.rsvpRepo.GetByEventAndUser(ctx, eventID, viewer.UserID); err == nil {
		access.HasRSVP = true
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, domain.Access{}, fmt.Errorf("get rsvp: %w", err)
	}
	return event, access, nil
}

func (v *visibilityResolver) RequireVisible(ctx context.Context, viewer domain.Viewer, eventID string) (*domain.Event, domain.Access, error) {
	event, access, err := v.Resolve(ctx, viewer, eventID)
	if err != nil {
		return nil, domain.Access{}, err
	}
	if !access.CanView() {
		return nil, domain.Access{}, domain.ErrNotFound
	}
	return event, access, nil
}

func (v *visibilityResolver) Scope(viewer domain.Viewer) domain.VisibilityScope {
	return domain.ScopeFor(viewer)
}
