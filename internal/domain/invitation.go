package domain

import (
	"context"
	"time"
)

// Invitation grants a user visibility of an event.
// swagger:model Invitation
type Invitation struct {
	ID          string    `json:"id"`
	EventID     string    `json:"event_id"`
	UserID      string    `json:"user_id"`
	InvitedByID string    `json:"invited_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// InvitationRepository defines storage operations for invitations.
type InvitationRepository interface {
	// CreateIfAbsent inserts inv unless (event, user) is already invited, in which case inv is
	// overwritten with the stored row and created is false.
	CreateIfAbsent(ctx context.Context, inv *Invitation) (created bool, err error)
	GetByID(ctx context.Context, id string) (*Invitation, error)
	GetByEventAndUser(ctx context.Context, eventID, userID string) (*Invitation, error)
	ListByEventID(ctx context.Context, eventID string) ([]*Invitation, error)
}

// InvitationService defines invitation operations. Only the event organizer may use them.
type InvitationService interface {
	InviteUser(ctx context.Context, viewer Viewer, eventID, userID string) (inv *Invitation, created bool, err error)
	ListInvitations(ctx context.Context, viewer Viewer, eventID string) ([]*Invitation, error)
}
