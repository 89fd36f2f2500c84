package domain

import (
	"context"
	"time"
)

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// WelcomeEmailData holds data for the welcome email.
type WelcomeEmailData struct {
	Email     string
	FirstName string
	Username  string
}

// EventEmailData holds data for event announcements sent to invitees and attendees.
type EventEmailData struct {
	Email         string
	RecipientName string
	OrganizerName string
	Title         string
	Description   string
	Location      string
	StartTime     time.Time
	EndTime       time.Time
}

// RSVPEmailData holds data for the organizer's RSVP notice.
type RSVPEmailData struct {
	Email         string
	OrganizerName string
	Username      string
	Title         string
	Status        RSVPStatus
	RSVPCount     int
}

// ReviewEmailData holds data for the organizer's review notice.
type ReviewEmailData struct {
	Email         string
	OrganizerName string
	Username      string
	Title         string
	Rating        int
	Comment       string
}

// InvitationEmailData holds data for the invitee's notice.
type InvitationEmailData struct {
	Email         string
	RecipientName string
	InviterName   string
	Title         string
	Location      string
	StartTime     time.Time
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendWelcome(ctx context.Context, data *WelcomeEmailData) error
	SendEventCreated(ctx context.Context, data *EventEmailData) error
	SendEventUpdated(ctx context.Context, data *EventEmailData) error
	SendRSVPNotice(ctx context.Context, data *RSVPEmailData) error
	SendReviewNotice(ctx context.Context, data *ReviewEmailData) error
	SendInvitation(ctx context.Context, data *InvitationEmailData) error
}
