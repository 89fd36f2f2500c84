package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"eventhub/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserController_GetMe(t *testing.T) {
	fake := &fakeUserService{user: &domain.User{ID: testUserID, Username: "alice", Email: "alice@example.com", IsStaff: true}}
	ctrl := NewUserController(testLogger, fake)
	rr := httptest.NewRecorder()

	ctrl.GetMe(rr, newRequest(http.MethodGet, "/users/me", "", authedViewer, nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var resp UserResponse
	decodeData(t, decodeEnvelope(t, rr), &resp)
	assert.Equal(t, "alice", resp.Username)
	assert.True(t, resp.IsStaff)
}

func TestUserController_DeleteMe(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		fake := &fakeUserService{}
		ctrl := NewUserController(testLogger, fake)
		rr := httptest.NewRecorder()

		ctrl.DeleteMe(rr, newRequest(http.MethodDelete, "/users/me", "", authedViewer, nil))

		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Equal(t, testUserID, fake.deleted)
	})

	t.Run("anonymous", func(t *testing.T) {
		fake := &fakeUserService{err: domain.ErrUnauthenticated}
		ctrl := NewUserController(testLogger, fake)
		rr := httptest.NewRecorder()

		ctrl.DeleteMe(rr, newRequest(http.MethodDelete, "/users/me", "", domain.AnonymousViewer(), nil))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestUserController_Profile(t *testing.T) {
	t.Run("missing profile", func(t *testing.T) {
		fake := &fakeUserService{err: domain.ErrNotFound}
		ctrl := NewUserController(testLogger, fake)
		rr := httptest.NewRecorder()

		ctrl.GetProfile(rr, newRequest(http.MethodGet, "/users/me/profile", "", authedViewer, nil))

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	tests := []struct {
		name       string
		body       string
		created    bool
		fakeErr    error
		wantStatus int
	}{
		{"created", `{"full_name":"Alice A","bio":"hi"}`, true, nil, http.StatusCreated},
		{"updated", `{"full_name":"Alice B"}`, false, nil, http.StatusOK},
		{"bad picture url", `{"profile_picture":"ftp://x"}`, false, domain.NewValidationError("profile_picture", "must be an http(s) URL"), http.StatusBadRequest},
		{"unknown field", `{"user_id":"x"}`, false, nil, http.StatusBadRequest},
		{"store failure", `{}`, false, errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeUserService{err: tt.fakeErr, created: tt.created}
			ctrl := NewUserController(testLogger, fake)
			rr := httptest.NewRecorder()

			ctrl.PutProfile(rr, newRequest(http.MethodPut, "/users/me/profile", tt.body, authedViewer, nil))

			require.Equal(t, tt.wantStatus, rr.Code)
			if rr.Code < 300 {
				var resp ProfileResponse
				decodeData(t, decodeEnvelope(t, rr), &resp)
				assert.Equal(t, testUserID, resp.UserID)
				assert.Equal(t, fake.lastInput.FullName, resp.FullName)
			}
		})
	}
}

type fakePinger struct{ err error }

func (f fakePinger) PingContext(context.Context) error { return f.err }

func TestHealthController(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		rr := httptest.NewRecorder()
		NewHealthController(testLogger, fakePinger{}).Health(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		require.Equal(t, http.StatusOK, rr.Code)
		var resp HealthResponse
		decodeData(t, decodeEnvelope(t, rr), &resp)
		assert.Equal(t, "ok", resp.Status)
	})

	t.Run("database down", func(t *testing.T) {
		rr := httptest.NewRecorder()
		NewHealthController(testLogger, fakePinger{err: errors.New("conn refused")}).Health(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	})
}
