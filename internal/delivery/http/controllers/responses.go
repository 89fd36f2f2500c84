package controllers

import (
	"encoding/json"
	"net/http"
	"time"

	"eventhub/internal/delivery/http/helpers"
	"eventhub/internal/domain"
)

// RSVPStatusField renders the caller's RSVP status, or null when the caller has none.
type RSVPStatusField struct {
	Status domain.RSVPStatus
}

func (f RSVPStatusField) MarshalJSON() ([]byte, error) {
	if f.Status == "" {
		return []byte("null"), nil
	}
	return json.Marshal(string(f.Status))
}

// EventResponse is the API representation of an event with its aggregates.
// user_rsvp is omitted for anonymous callers.
type EventResponse struct {
	ID                string           `json:"id"`
	Title             string           `json:"title"`
	Description       string           `json:"description"`
	OrganizerID       string           `json:"organizer_id"`
	OrganizerUsername string           `json:"organizer_username"`
	Location          string           `json:"location"`
	StartTime         time.Time        `json:"start_time"`
	EndTime           time.Time        `json:"end_time"`
	IsPublic          bool             `json:"is_public"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
	RSVPsCount        int              `json:"rsvps_count"`
	ReviewsCount      int              `json:"reviews_count"`
	AverageRating     *float64         `json:"average_rating"`
	UserRSVP          *RSVPStatusField `json:"user_rsvp,omitempty" swaggertype:"string"`
}

func newEventResponse(v *domain.EventView, viewer domain.Viewer) EventResponse {
	e := v.Event
	resp := EventResponse{
		ID:                e.ID,
		Title:             e.Title,
		Description:       e.Description,
		OrganizerID:       e.OrganizerID,
		OrganizerUsername: e.OrganizerUsername,
		Location:          e.Location,
		StartTime:         e.StartTime,
		EndTime:           e.EndTime,
		IsPublic:          e.IsPublic,
		CreatedAt:         e.CreatedAt,
		UpdatedAt:         e.UpdatedAt,
		RSVPsCount:        v.Stats.RSVPCount,
		ReviewsCount:      v.Stats.ReviewCount,
		AverageRating:     v.Stats.AverageRating,
	}
	if !viewer.IsAnonymous() {
		field := &RSVPStatusField{}
		if v.ViewerRSVP != nil {
			field.Status = v.ViewerRSVP.Status
		}
		resp.UserRSVP = field
	}
	return resp
}

func newEventResponses(views []*domain.EventView, viewer domain.Viewer) []EventResponse {
	out := make([]EventResponse, 0, len(views))
	for _, v := range views {
		out = append(out, newEventResponse(v, viewer))
	}
	return out
}

// ListEventsResponse is the response body for GET /events.
type ListEventsResponse struct {
	Items      []EventResponse        `json:"items"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// RSVPResponse is the API representation of an RSVP.
type RSVPResponse struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	UserID    string    `json:"user_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newRSVPResponse(r *domain.RSVP) RSVPResponse {
	return RSVPResponse{
		ID:        r.ID,
		EventID:   r.EventID,
		UserID:    r.UserID,
		Status:    string(r.Status),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// ReviewResponse is the API representation of a review.
type ReviewResponse struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username,omitempty"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newReviewResponse(r *domain.Review) ReviewResponse {
	return ReviewResponse{
		ID:        r.ID,
		EventID:   r.EventID,
		UserID:    r.UserID,
		Username:  r.Username,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// InvitationResponse is the API representation of an invitation.
type InvitationResponse struct {
	ID          string    `json:"id"`
	EventID     string    `json:"event_id"`
	UserID      string    `json:"user_id"`
	InvitedByID string    `json:"invited_by"`
	CreatedAt   time.Time `json:"created_at"`
}

func newInvitationResponse(inv *domain.Invitation) InvitationResponse {
	return InvitationResponse{
		ID:          inv.ID,
		EventID:     inv.EventID,
		UserID:      inv.UserID,
		InvitedByID: inv.InvitedByID,
		CreatedAt:   inv.CreatedAt,
	}
}

// UserResponse is the API representation of a user. Credentials are never included.
type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	IsStaff   bool      `json:"is_staff"`
	CreatedAt time.Time `json:"created_at"`
}

func newUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		IsStaff:   u.IsStaff,
		CreatedAt: u.CreatedAt,
	}
}

// ProfileResponse is the API representation of a profile.
type ProfileResponse struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	FullName       string    `json:"full_name"`
	Bio            string    `json:"bio"`
	Location       string    `json:"location"`
	ProfilePicture string    `json:"profile_picture"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func newProfileResponse(p *domain.Profile) ProfileResponse {
	return ProfileResponse{
		ID:             p.ID,
		UserID:         p.UserID,
		FullName:       p.FullName,
		Bio:            p.Bio,
		Location:       p.Location,
		ProfilePicture: p.ProfilePicture,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

// createdStatus is 201 for a new row and 200 for an update of an existing one.
func createdStatus(created bool) int {
	if created {
		return http.StatusCreated
	}
	return http.StatusOK
}
