package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccess_CanView(t *testing.T) {
	tests := []struct {
		name   string
		access Access
		want   bool
	}{
		{"private event, no relation", Access{}, false},
		{"public event", Access{Public: true}, true},
		{"organizer of private event", Access{Organizer: true}, true},
		{"invited to private event", Access{Invited: true}, true},
		{"rsvp on private event", Access{HasRSVP: true}, true},
		{"invited and rsvp", Access{Invited: true, HasRSVP: true}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.access.CanView())
		})
	}
}

func TestAccess_CanManage(t *testing.T) {
	assert.True(t, Access{Organizer: true}.CanManage())
	assert.False(t, Access{Public: true, Invited: true, HasRSVP: true}.CanManage())
}

func TestScopeFor(t *testing.T) {
	assert.Equal(t, VisibilityScope{}, ScopeFor(AnonymousViewer()))
	assert.Equal(t, VisibilityScope{ViewerID: "u1"}, ScopeFor(NewViewer("u1", nil)))
}

func TestViewer(t *testing.T) {
	assert.True(t, AnonymousViewer().IsAnonymous())
	assert.False(t, NewViewer("u1", nil).IsAnonymous())
	assert.True(t, NewViewer("u1", []string{RoleStaff}).IsStaff())
	assert.False(t, NewViewer("u1", []string{"attendee"}).IsStaff())
}
