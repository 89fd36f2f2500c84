package domain

import (
	"context"
	"time"
)

// RSVPStatus is an attendance answer.
type RSVPStatus string

const (
	RSVPGoing    RSVPStatus = "Going"
	RSVPMaybe    RSVPStatus = "Maybe"
	RSVPNotGoing RSVPStatus = "Not Going"
)

// ParseRSVPStatus validates s. An empty value defaults to RSVPGoing.
func ParseRSVPStatus(s string) (RSVPStatus, error) {
	switch RSVPStatus(s) {
	case "":
		return RSVPGoing, nil
	case RSVPGoing, RSVPMaybe, RSVPNotGoing:
		return RSVPStatus(s), nil
	}
	return "", NewValidationError("status", "must be one of Going, Maybe, Not Going")
}

// RSVP is a user's answer for an event. At most one exists per (event, user).
// swagger:model RSVP
type RSVP struct {
	ID        string     `json:"id"`
	EventID   string     `json:"event_id"`
	UserID    string     `json:"user_id"`
	Username  string     `json:"username,omitempty"`
	Status    RSVPStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewRSVP creates a new RSVP. ID is typically set by the repository on create.
func NewRSVP(eventID, userID string, status RSVPStatus, createdAt, updatedAt time.Time) *RSVP {
	return &RSVP{
		EventID:   eventID,
		UserID:    userID,
		Status:    status,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

// RSVPRepository defines storage operations for RSVPs.
type RSVPRepository interface {
	// Upsert inserts the RSVP or updates the status of the existing (event, user) row in one statement.
	// ID and CreatedAt are filled from the stored row.
	Upsert(ctx context.Context, rsvp *RSVP) (created bool, err error)
	GetByID(ctx context.Context, id string) (*RSVP, error)
	GetByEventAndUser(ctx context.Context, eventID, userID string) (*RSVP, error)
	// UpdateStatus changes the status of an existing (event, user) row; ErrNotFound if absent.
	UpdateStatus(ctx context.Context, rsvp *RSVP) error
	ListByEventID(ctx context.Context, eventID string) ([]*RSVP, error)
	// ListByUserForEvents returns the user's RSVPs keyed by event ID.
	ListByUserForEvents(ctx context.Context, userID string, eventIDs []string) (map[string]*RSVP, error)
	CountByEventID(ctx context.Context, eventID string) (int, error)
}

// RSVPService defines RSVP operations.
type RSVPService interface {
	// Respond records the caller's own RSVP. created is true when no RSVP existed.
	Respond(ctx context.Context, viewer Viewer, eventID, status string) (rsvp *RSVP, created bool, err error)
	// UpdateStatus changes the RSVP of userID. Allowed for that user and the event organizer.
	UpdateStatus(ctx context.Context, viewer Viewer, eventID, userID, status string) (*RSVP, error)
}
