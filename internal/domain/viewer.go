package domain

import "slices"

// RoleStaff marks a privileged caller (may create events on behalf of another organizer).
const RoleStaff = "staff"

// Viewer is the identity a request acts as. The zero value is an anonymous caller.
type Viewer struct {
	UserID string
	Roles  []string
}

// NewViewer returns an authenticated Viewer.
func NewViewer(userID string, roles []string) Viewer {
	return Viewer{UserID: userID, Roles: roles}
}

// AnonymousViewer returns the identity of an unauthenticated caller.
func AnonymousViewer() Viewer {
	return Viewer{}
}

// IsAnonymous reports whether the viewer carries no user identity.
func (v Viewer) IsAnonymous() bool {
	return v.UserID == ""
}

// IsStaff reports whether the viewer holds the staff role.
func (v Viewer) IsStaff() bool {
	return slices.Contains(v.Roles, RoleStaff)
}
