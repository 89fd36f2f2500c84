package domain

import "context"

// VisibilityScope restricts listings to what one caller may see.
// An empty ViewerID means public events only.
type VisibilityScope struct {
	ViewerID string
}

// ScopeFor returns the visibility scope of viewer.
func ScopeFor(viewer Viewer) VisibilityScope {
	return VisibilityScope{ViewerID: viewer.UserID}
}

// Access records which relations grant a caller access to an event.
type Access struct {
	Public    bool
	Organizer bool
	Invited   bool
	HasRSVP   bool
}

// CanView is the union rule: public, organizer, invited or holding an RSVP.
func (a Access) CanView() bool {
	return a.Public || a.Organizer || a.Invited || a.HasRSVP
}

// CanManage reports whether the caller may update, delete or invite for the event.
func (a Access) CanManage() bool {
	return a.Organizer
}

// VisibilityResolver decides what a caller may see and do with events.
type VisibilityResolver interface {
	// Resolve loads the event and the caller's access to it. ErrNotFound only when the event does not exist.
	Resolve(ctx context.Context, viewer Viewer, eventID string) (*Event, Access, error)
	// RequireVisible is Resolve that also reports ErrNotFound when the caller cannot see the event.
	RequireVisible(ctx context.Context, viewer Viewer, eventID string) (*Event, Access, error)
	Scope(viewer Viewer) VisibilityScope
}
