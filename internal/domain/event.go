package domain

import (
	"context"
	"math"
	"strings"
	"time"
)

// MaxEventTitleLength bounds Event.Title.
const MaxEventTitleLength = 200

// Event represents a scheduled gathering owned by an organizer.
// swagger:model Event
type Event struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	OrganizerID       string    `json:"organizer_id"`
	OrganizerUsername string    `json:"organizer_username"`
	Location          string    `json:"location"`
	StartTime         time.Time `json:"start_time"`
	EndTime           time.Time `json:"end_time"`
	IsPublic          bool      `json:"is_public"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Validate checks the fields a stored event must satisfy.
func (e *Event) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return NewValidationError("title", "is required")
	}
	if len(e.Title) > MaxEventTitleLength {
		return NewValidationError("title", "must be at most 200 characters")
	}
	if e.StartTime.IsZero() {
		return NewValidationError("start_time", "is required")
	}
	if e.EndTime.IsZero() {
		return NewValidationError("end_time", "is required")
	}
	if e.EndTime.Before(e.StartTime) {
		return NewValidationError("end_time", "must not be before start_time")
	}
	return nil
}

// EventInput holds the fields accepted when creating an event.
// OrganizerID is honored only for staff callers.
type EventInput struct {
	Title       string
	Description string
	Location    string
	StartTime   time.Time
	EndTime     time.Time
	IsPublic    *bool
	OrganizerID string
}

// EventPatch is a partial update. Nil fields are left unchanged; the organizer is not patchable.
type EventPatch struct {
	Title       *string
	Description *string
	Location    *string
	StartTime   *time.Time
	EndTime     *time.Time
	IsPublic    *bool
}

// Apply copies the non-nil fields of p onto e.
func (p EventPatch) Apply(e *Event) {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Location != nil {
		e.Location = *p.Location
	}
	if p.StartTime != nil {
		e.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		e.EndTime = *p.EndTime
	}
	if p.IsPublic != nil {
		e.IsPublic = *p.IsPublic
	}
}

// EventStats are the aggregates reported alongside an event.
type EventStats struct {
	RSVPCount     int
	ReviewCount   int
	AverageRating *float64
}

// RoundRating rounds an average rating to two decimal places.
func RoundRating(avg float64) float64 {
	return math.Round(avg*100) / 100
}

// EventView bundles an event with its aggregates and the viewer's own RSVP, if any.
type EventView struct {
	Event      *Event
	Stats      EventStats
	ViewerRSVP *RSVP
}

// Event list ordering keys. A leading "-" sorts descending.
const (
	OrderCreatedAt       = "created_at"
	OrderStartTime       = "start_time"
	OrderTitle           = "title"
	DefaultEventOrdering = "-created_at"
)

// ParseEventOrdering validates an ordering value and returns the column key and direction.
// An empty value yields DefaultEventOrdering.
func ParseEventOrdering(s string) (field string, desc bool, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		s = DefaultEventOrdering
	}
	if strings.HasPrefix(s, "-") {
		desc = true
		s = s[1:]
	}
	switch s {
	case OrderCreatedAt, OrderStartTime, OrderTitle:
		return s, desc, nil
	}
	return "", false, NewValidationError("ordering", "must be one of created_at, start_time, title")
}

// EventFilter narrows an event listing. Scope is always set by the service from the caller's identity.
type EventFilter struct {
	Search      string
	OrganizerID string
	Location    string
	IsPublic    *bool
	Ordering    string
	Scope       VisibilityScope
}

// EventRepository defines the interface for event storage
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	// List returns one page of events matching filter and the total number of matches.
	List(ctx context.Context, filter EventFilter, params PaginationParams) ([]*Event, int, error)
	Update(ctx context.Context, event *Event) error
	// Delete removes the event with its RSVPs, reviews and invitations.
	Delete(ctx context.Context, id string) error
	// Stats returns aggregates keyed by event ID. Events without activity are present with zero counts.
	Stats(ctx context.Context, eventIDs []string) (map[string]EventStats, error)
}

// EventService defines the business logic for events. Every call receives the caller's identity.
type EventService interface {
	CreateEvent(ctx context.Context, viewer Viewer, in EventInput) (*EventView, error)
	GetEvent(ctx context.Context, viewer Viewer, eventID string) (*EventView, error)
	ListEvents(ctx context.Context, viewer Viewer, filter EventFilter, params PaginationParams) ([]*EventView, int, error)
	UpdateEvent(ctx context.Context, viewer Viewer, eventID string, patch EventPatch) (*EventView, error)
	DeleteEvent(ctx context.Context, viewer Viewer, eventID string) error
}
