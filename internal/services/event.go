package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventhub/internal/domain"
)

type eventService struct {
	eventRepo      domain.EventRepository
	userRepo       domain.UserRepository
	rsvpRepo       domain.RSVPRepository
	resolver       domain.VisibilityResolver
	dispatcher     domain.Dispatcher
	contextTimeout time.Duration
}

func NewEventService(
	eventRepo domain.EventRepository,
	userRepo domain.UserRepository,
	rsvpRepo domain.RSVPRepository,
	resolver domain.VisibilityResolver,
	dispatcher domain.Dispatcher,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		userRepo:       userRepo,
		rsvpRepo:       rsvpRepo,
		resolver:       resolver,
		dispatcher:     dispatcher,
		contextTimeout: timeout,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, viewer domain.Viewer, in domain.EventInput) (*domain.EventView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if viewer.IsAnonymous() {
		return nil, domain.ErrUnauthenticated
	}

	organizerID := viewer.UserID
	if in.OrganizerID != "" && in.OrganizerID != viewer.UserID {
		if !viewer.IsStaff() {
			return nil, domain.ErrForbidden
		}
		organizerID = in.OrganizerID
	}
	organizer, err := s.userRepo.GetByID(ctx, organizerID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.NewValidationError("organizer_id", "user does not exist")
		}
		return nil, fmt.Errorf("get organizer: %w", err)
	}

	isPublic := true
	if in.IsPublic != nil {
		isPublic = *in.IsPublic
	}
	now := time.Now().UTC()
	event := &domain.Event{
		Title:             in.Title,
		Description:       in.Description,
		OrganizerID:       organizer.ID,
		OrganizerUsername: organizer.Username,
		Location:          in.Location,
		StartTime:         in.StartTime,
		EndTime:           in.EndTime,
		IsPublic:          isPublic,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := event.Validate(); err != nil {
		return nil, err
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	s.dispatcher.Enqueue(ctx, domain.JobEventCreated, event.ID)
	return &domain.EventView{Event: event}, nil
}

func (s *eventService) GetEvent(ctx context.Context, viewer domain.Viewer, eventID string) (*domain.EventView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, _, err := s.resolver.RequireVisible(ctx, viewer, eventID)
	if err != nil {
		return nil, err
	}
	views, err := s.decorate(ctx, viewer, []*domain.Event{event})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

func (s *eventService) ListEvents(ctx context.Context, viewer domain.Viewer, filter domain.EventFilter, params domain.PaginationParams) ([]*domain.EventView, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	filter.Scope = s.resolver.Scope(viewer)
	events, total, err := s.eventRepo.List(ctx, filter, params)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return nil, 0, err
		}
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	views, err := s.decorate(ctx, viewer, events)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

// decorate attaches aggregates and the viewer's RSVP using one query each for the whole page.
func (s *eventService) decorate(ctx context.Context, viewer domain.Viewer, events []*domain.Event) ([]*domain.EventView, error) {
	views := make([]*domain.EventView, 0, len(events))
	if len(events) == 0 {
		return views, nil
	}
	ids := make([]string, len(events))
	for i, ev := range events {
		ids[i] = ev.ID
	}

	stats, err := s.eventRepo.Stats(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("event stats: %w", err)
	}
	mine := map[string]*domain.RSVP{}
	if !viewer.IsAnonymous() {
		mine, err = s.rsvpRepo.ListByUserForEvents(ctx, viewer.UserID, ids)
		if err != nil {
			return nil, fmt.Errorf("list viewer rsvps: %w", err)
		}
	}

	for _, ev := range events {
		views = append(views, &domain.EventView{
			Event:      ev,
			Stats:      stats[ev.ID],
			ViewerRSVP: mine[ev.ID],
		})
	}
	return views, nil
}

// manageable loads the event for a mutation. Non-organizers get ErrForbidden even when they cannot see it.
func (s *eventService) manageable(ctx context.Context, viewer domain.Viewer, eventID string) (*domain.Event, error) {
	if viewer.IsAnonymous() {
		return nil, domain.ErrUnauthenticated
	}
	event, access, err := s.resolver.Resolve(ctx, viewer, eventID)
	if err != nil {
		return nil, err
	}
	if !access.CanManage() {
		return nil, domain.ErrForbidden
	}
	return event, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, viewer domain.Viewer, eventID string, patch domain.EventPatch) (*domain.EventView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.manageable(ctx, viewer, eventID)
	if err != nil {
		return nil, err
	}
	patch.Apply(event)
	if err := event.Validate(); err != nil {
		return nil, err
	}
	event.UpdatedAt = time.Now().UTC()
	if err := s.eventRepo.Update(ctx, event); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}

	s.dispatcher.Enqueue(ctx, domain.JobEventUpdated, event.ID)

	views, err := s.decorate(ctx, viewer, []*domain.Event{event})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

func (s *eventService) DeleteEvent(ctx context.Context, viewer domain.Viewer, eventID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.manageable(ctx, viewer, eventID); err != nil {
		return err
	}
	if err := s.eventRepo.Delete(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}
