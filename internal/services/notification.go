package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"eventhub/internal/domain"
)

// NotificationService turns queued jobs into emails. Handlers load the entity named by the job;
// an entity deleted since the job was queued is not an error.
type NotificationService struct {
	users       domain.UserRepository
	events      domain.EventRepository
	rsvps       domain.RSVPRepository
	reviews     domain.ReviewRepository
	invitations domain.InvitationRepository
	email       domain.EmailService
	logger      *slog.Logger
}

// NewNotificationService creates a NotificationService.
func NewNotificationService(
	users domain.UserRepository,
	events domain.EventRepository,
	rsvps domain.RSVPRepository,
	reviews domain.ReviewRepository,
	invitations domain.InvitationRepository,
	email domain.EmailService,
	logger *slog.Logger,
) *NotificationService {
	return &NotificationService{
		users:       users,
		events:      events,
		rsvps:       rsvps,
		reviews:     reviews,
		invitations: invitations,
		email:       email,
		logger:      logger,
	}
}

// Handlers returns the handler for every job type.
func (s *NotificationService) Handlers() map[domain.JobType]domain.JobHandler {
	return map[domain.JobType]domain.JobHandler{
		domain.JobUserWelcome:       s.welcome,
		domain.JobEventCreated:      s.eventCreated,
		domain.JobEventUpdated:      s.eventUpdated,
		domain.JobRSVPChanged:       s.rsvpChanged,
		domain.JobReviewPosted:      s.reviewPosted,
		domain.JobInvitationCreated: s.invitationCreated,
	}
}

func isMissing(err error) bool {
	return errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrUserNotFound)
}

func missing(kind, id string) string {
	return fmt.Sprintf("%s %s not found", kind, id)
}

func (s *NotificationService) welcome(ctx context.Context, userID string) (string, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if isMissing(err) {
			return missing("user", userID), nil
		}
		return "", err
	}
	if user.Email == "" {
		return "user has no email", nil
	}
	err = s.email.SendWelcome(ctx, &domain.WelcomeEmailData{
		Email:     user.Email,
		FirstName: user.FirstName,
		Username:  user.Username,
	})
	if err != nil {
		return "", err
	}
	return "sent welcome to " + user.Email, nil
}

func (s *NotificationService) eventCreated(ctx context.Context, eventID string) (string, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		if isMissing(err) {
			return missing("event", eventID), nil
		}
		return "", err
	}
	invitations, err := s.invitations.ListByEventID(ctx, eventID)
	if err != nil {
		return "", err
	}
	recipients := make([]string, 0, len(invitations))
	for _, inv := range invitations {
		recipients = append(recipients, inv.UserID)
	}
	return s.fanOut(ctx, event, recipients, s.email.SendEventCreated)
}

func (s *NotificationService) eventUpdated(ctx context.Context, eventID string) (string, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		if isMissing(err) {
			return missing("event", eventID), nil
		}
		return "", err
	}
	rsvps, err := s.rsvps.ListByEventID(ctx, eventID)
	if err != nil {
		return "", err
	}
	recipients := make([]string, 0, len(rsvps))
	for _, r := range rsvps {
		recipients = append(recipients, r.UserID)
	}
	return s.fanOut(ctx, event, recipients, s.email.SendEventUpdated)
}

// fanOut sends one event email per recipient. Individual failures are logged; the job only fails
// when every send failed, so a retry does not repeat emails that already went out.
func (s *NotificationService) fanOut(
	ctx context.Context,
	event *domain.Event,
	userIDs []string,
	send func(context.Context, *domain.EventEmailData) error,
) (string, error) {
	if len(userIDs) == 0 {
		return "no recipients", nil
	}
	organizerName := event.OrganizerUsername
	if organizer, err := s.users.GetByID(ctx, event.OrganizerID); err == nil {
		organizerName = organizer.DisplayName()
	}

	var sent, attempted int
	var lastErr error
	for _, id := range userIDs {
		user, err := s.users.GetByID(ctx, id)
		if err != nil {
			if !isMissing(err) {
				s.logger.WarnContext(ctx, "load recipient failed", "user_id", id, "err", err)
			}
			continue
		}
		if user.Email == "" {
			continue
		}
		attempted++
		err = send(ctx, &domain.EventEmailData{
			Email:         user.Email,
			RecipientName: user.DisplayName(),
			OrganizerName: organizerName,
			Title:         event.Title,
			Description:   event.Description,
			Location:      event.Location,
			StartTime:     event.StartTime,
			EndTime:       event.EndTime,
		})
		if err != nil {
			lastErr = err
			s.logger.WarnContext(ctx, "event email failed", "event_id", event.ID, "user_id", id, "err", err)
			continue
		}
		sent++
	}
	if attempted > 0 && sent == 0 {
		return "", fmt.Errorf("all %d event emails failed: %w", attempted, lastErr)
	}
	return fmt.Sprintf("sent %d of %d", sent, attempted), nil
}

func (s *NotificationService) rsvpChanged(ctx context.Context, rsvpID string) (string, error) {
	rsvp, err := s.rsvps.GetByID(ctx, rsvpID)
	if err != nil {
		if isMissing(err) {
			return missing("rsvp", rsvpID), nil
		}
		return "", err
	}
	event, organizer, res, err := s.eventWithOrganizer(ctx, rsvp.EventID)
	if event == nil {
		return res, err
	}
	attendee, err := s.users.GetByID(ctx, rsvp.UserID)
	if err != nil {
		if isMissing(err) {
			return missing("user", rsvp.UserID), nil
		}
		return "", err
	}
	count, err := s.rsvps.CountByEventID(ctx, event.ID)
	if err != nil {
		return "", err
	}
	err = s.email.SendRSVPNotice(ctx, &domain.RSVPEmailData{
		Email:         organizer.Email,
		OrganizerName: organizer.DisplayName(),
		Username:      attendee.Username,
		Title:         event.Title,
		Status:        rsvp.Status,
		RSVPCount:     count,
	})
	if err != nil {
		return "", err
	}
	return "sent rsvp notice to " + organizer.Email, nil
}

func (s *NotificationService) reviewPosted(ctx context.Context, reviewID string) (string, error) {
	review, err := s.reviews.GetByID(ctx, reviewID)
	if err != nil {
		if isMissing(err) {
			return missing("review", reviewID), nil
		}
		return "", err
	}
	event, organizer, res, err := s.eventWithOrganizer(ctx, review.EventID)
	if event == nil {
		return res, err
	}
	username := review.Username
	if username == "" {
		if reviewer, err := s.users.GetByID(ctx, review.UserID); err == nil {
			username = reviewer.Username
		}
	}
	err = s.email.SendReviewNotice(ctx, &domain.ReviewEmailData{
		Email:         organizer.Email,
		OrganizerName: organizer.DisplayName(),
		Username:      username,
		Title:         event.Title,
		Rating:        review.Rating,
		Comment:       review.Comment,
	})
	if err != nil {
		return "", err
	}
	return "sent review notice to " + organizer.Email, nil
}

func (s *NotificationService) invitationCreated(ctx context.Context, invitationID string) (string, error) {
	inv, err := s.invitations.GetByID(ctx, invitationID)
	if err != nil {
		if isMissing(err) {
			return missing("invitation", invitationID), nil
		}
		return "", err
	}
	event, err := s.events.GetByID(ctx, inv.EventID)
	if err != nil {
		if isMissing(err) {
			return missing("event", inv.EventID), nil
		}
		return "", err
	}
	invitee, err := s.users.GetByID(ctx, inv.UserID)
	if err != nil {
		if isMissing(err) {
			return missing("user", inv.UserID), nil
		}
		return "", err
	}
	if invitee.Email == "" {
		return "invitee has no email", nil
	}
	inviterName := event.OrganizerUsername
	if inviter, err := s.users.GetByID(ctx, inv.InvitedByID); err == nil {
		inviterName = inviter.DisplayName()
	}
	err = s.email.SendInvitation(ctx, &domain.InvitationEmailData{
		Email:         invitee.Email,
		RecipientName: invitee.DisplayName(),
		InviterName:   inviterName,
		Title:         event.Title,
		Location:      event.Location,
		StartTime:     event.StartTime,
	})
	if err != nil {
		return "", err
	}
	return "sent invitation to " + invitee.Email, nil
}

// eventWithOrganizer loads the event and its organizer. A nil event means the job is finished
// with the returned result and error.
func (s *NotificationService) eventWithOrganizer(ctx context.Context, eventID string) (*domain.Event, *domain.User, string, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		if isMissing(err) {
			return nil, nil, missing("event", eventID), nil
		}
		return nil, nil, "", err
	}
	organizer, err := s.users.GetByID(ctx, event.OrganizerID)
	if err != nil {
		if isMissing(err) {
			return nil, nil, missing("user", event.OrganizerID), nil
		}
		return nil, nil, "", err
	}
	if organizer.Email == "" {
		return nil, nil, "organizer has no email", nil
	}
	return event, organizer, "", nil
}
