package services

import (
	"context"
	"fmt"
	"log/slog"

	"eventhub/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	logger   *slog.Logger
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, logger *slog.Logger) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer, logger: logger}
}

func (s *emailService) send(ctx context.Context, templateName, to string, data any) error {
	if to == "" {
		return fmt.Errorf("%s email: recipient address is empty", templateName)
	}
	subject, htmlBody, textBody, err := s.renderer.Render(templateName, data)
	if err != nil {
		return fmt.Errorf("render %s template: %w", templateName, err)
	}
	if err := s.mailer.Send(to, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("send %s email: %w", templateName, err)
	}
	s.logger.DebugContext(ctx, "email sent", "template", templateName, "to", to)
	return nil
}

func (s *emailService) SendWelcome(ctx context.Context, data *domain.WelcomeEmailData) error {
	if data == nil {
		return fmt.Errorf("welcome email data is nil")
	}
	return s.send(ctx, "welcome", data.Email, data)
}

func (s *emailService) SendEventCreated(ctx context.Context, data *domain.EventEmailData) error {
	if data == nil {
		return fmt.Errorf("event email data is nil")
	}
	return s.send(ctx, "event_created", data.Email, data)
}

func (s *emailService) SendEventUpdated(ctx context.Context, data *domain.EventEmailData) error {
	if data == nil {
		return fmt.Errorf("event email data is nil")
	}
	return s.send(ctx, "event_updated", data.Email, data)
}

func (s *emailService) SendRSVPNotice(ctx context.Context, data *domain.RSVPEmailData) error {
	if data == nil {
		return fmt.Errorf("rsvp email data is nil")
	}
	return s.send(ctx, "rsvp_changed", data.Email, data)
}

func (s *emailService) SendReviewNotice(ctx context.Context, data *domain.ReviewEmailData) error {
	if data == nil {
		return fmt.Errorf("review email data is nil")
	}
	return s.send(ctx, "review_posted", data.Email, data)
}

func (s *emailService) SendInvitation(ctx context.Context, data *domain.InvitationEmailData) error {
	if data == nil {
		return fmt.Errorf("invitation email data is nil")
	}
	return s.send(ctx, "invitation_created", data.Email, data)
}
