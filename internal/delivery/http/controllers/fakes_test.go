package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"eventhub/internal/delivery/http/helpers"
	"eventhub/internal/delivery/http/middleware"
	"eventhub/internal/domain"

	"github.com/stretchr/testify/require"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

const (
	testEventID = "6f1c1b0e-4a57-4c53-9a31-0d3f5b4f8a10"
	testUserID  = "a3d7e4c2-91b8-4f0e-8d6a-2b5c7e9f1a34"
	otherUserID = "c8e2f6a1-3b4d-4e5f-9a8b-7c6d5e4f3a21"
)

// newRequest builds a request with an optional JSON body, the given viewer and path values.
func newRequest(method, target, body string, viewer domain.Viewer, pathValues map[string]string) *http.Request {
	var rdr io.Reader
	if body != "" {
		rdr = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, target, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range pathValues {
		req.SetPathValue(k, v)
	}
	return req.WithContext(middleware.SetViewer(req.Context(), viewer))
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) helpers.APIResponse {
	t.Helper()
	var envelope helpers.APIResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope), "response must be valid JSON envelope")
	return envelope
}

// decodeData re-encodes envelope.Data into dest.
func decodeData(t *testing.T, envelope helpers.APIResponse, dest any) {
	t.Helper()
	require.Nil(t, envelope.Error, "success response must have error nil")
	raw, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, dest))
}

var authedViewer = domain.NewViewer(testUserID, nil)

// fakeEventService implements domain.EventService for handler tests.
type fakeEventService struct {
	err        error
	view       *domain.EventView
	views      []*domain.EventView
	total      int
	lastInput  domain.EventInput
	lastFilter domain.EventFilter
	lastParams domain.PaginationParams
	lastPatch  domain.EventPatch
	lastID     string
	lastViewer domain.Viewer
}

func (f *fakeEventService) CreateEvent(_ context.Context, viewer domain.Viewer, in domain.EventInput) (*domain.EventView, error) {
	f.lastViewer, f.lastInput = viewer, in
	return f.view, f.err
}

func (f *fakeEventService) GetEvent(_ context.Context, viewer domain.Viewer, eventID string) (*domain.EventView, error) {
	f.lastViewer, f.lastID = viewer, eventID
	return f.view, f.err
}

func (f *fakeEventService) ListEvents(_ context.Context, viewer domain.Viewer, filter domain.EventFilter, params domain.PaginationParams) ([]*domain.EventView, int, error) {
	f.lastViewer, f.lastFilter, f.lastParams = viewer, filter, params
	return f.views, f.total, f.err
}

func (f *fakeEventService) UpdateEvent(_ context.Context, viewer domain.Viewer, eventID string, patch domain.EventPatch) (*domain.EventView, error) {
	f.lastViewer, f.lastID, f.lastPatch = viewer, eventID, patch
	return f.view, f.err
}

func (f *fakeEventService) DeleteEvent(_ context.Context, viewer domain.Viewer, eventID string) error {
	f.lastViewer, f.lastID = viewer, eventID
	return f.err
}

// fakeRSVPService implements domain.RSVPService.
type fakeRSVPService struct {
	err        error
	created    bool
	lastEvent  string
	lastUser   string
	lastStatus string
}

func (f *fakeRSVPService) Respond(_ context.Context, viewer domain.Viewer, eventID, status string) (*domain.RSVP, bool, error) {
	f.lastEvent, f.lastUser, f.lastStatus = eventID, viewer.UserID, status
	if f.err != nil {
		return nil, false, f.err
	}
	st, _ := domain.ParseRSVPStatus(status)
	return &domain.RSVP{ID: "r-1", EventID: eventID, UserID: viewer.UserID, Status: st}, f.created, nil
}

func (f *fakeRSVPService) UpdateStatus(_ context.Context, _ domain.Viewer, eventID, userID, status string) (*domain.RSVP, error) {
	f.lastEvent, f.lastUser, f.lastStatus = eventID, userID, status
	if f.err != nil {
		return nil, f.err
	}
	return &domain.RSVP{ID: "r-1", EventID: eventID, UserID: userID, Status: domain.RSVPStatus(status)}, nil
}

// fakeReviewService implements domain.ReviewService.
type fakeReviewService struct {
	err       error
	created   bool
	reviews   []*domain.Review
	lastInput domain.ReviewInput
	calls     int
}

func (f *fakeReviewService) ListReviews(_ context.Context, _ domain.Viewer, _ string) ([]*domain.Review, error) {
	return f.reviews, f.err
}

func (f *fakeReviewService) SubmitReview(_ context.Context, viewer domain.Viewer, eventID string, in domain.ReviewInput) (*domain.Review, bool, error) {
	f.calls++
	f.lastInput = in
	if f.err != nil {
		return nil, false, f.err
	}
	return &domain.Review{ID: "rv-1", EventID: eventID, UserID: viewer.UserID, Rating: in.Rating, Comment: in.Comment}, f.created, nil
}

// fakeInvitationService implements domain.InvitationService.
type fakeInvitationService struct {
	err         error
	created     bool
	invitations []*domain.Invitation
	lastUserID  string
}

func (f *fakeInvitationService) InviteUser(_ context.Context, viewer domain.Viewer, eventID, userID string) (*domain.Invitation, bool, error) {
	f.lastUserID = userID
	if f.err != nil {
		return nil, false, f.err
	}
	return &domain.Invitation{ID: "inv-1", EventID: eventID, UserID: userID, InvitedByID: viewer.UserID}, f.created, nil
}

func (f *fakeInvitationService) ListInvitations(_ context.Context, _ domain.Viewer, _ string) ([]*domain.Invitation, error) {
	return f.invitations, f.err
}

// fakeAuthService implements domain.AuthService.
type fakeAuthService struct {
	err        error
	token      string
	lastSignUp domain.SignUpInput
	lastEmail  string
}

func (f *fakeAuthService) SignUp(_ context.Context, in domain.SignUpInput) (*domain.User, error) {
	f.lastSignUp = in
	if f.err != nil {
		return nil, f.err
	}
	return &domain.User{ID: testUserID, Username: in.Username, Email: in.Email, PasswordHash: "hash", Salt: "salt"}, nil
}

func (f *fakeAuthService) Login(_ context.Context, email, _ string) (string, *domain.User, error) {
	f.lastEmail = email
	if f.err != nil {
		return "", nil, f.err
	}
	return f.token, &domain.User{ID: testUserID, Username: "alice", Email: email}, nil
}

// fakeUserService implements domain.UserService.
type fakeUserService struct {
	err       error
	user      *domain.User
	profile   *domain.Profile
	created   bool
	deleted   string
	lastInput domain.ProfileInput
}

func (f *fakeUserService) GetMe(_ context.Context, _ domain.Viewer) (*domain.User, error) {
	return f.user, f.err
}

func (f *fakeUserService) DeleteMe(_ context.Context, viewer domain.Viewer) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = viewer.UserID
	return nil
}

func (f *fakeUserService) GetProfile(_ context.Context, _ domain.Viewer) (*domain.Profile, error) {
	return f.profile, f.err
}

func (f *fakeUserService) UpsertProfile(_ context.Context, viewer domain.Viewer, in domain.ProfileInput) (*domain.Profile, bool, error) {
	f.lastInput = in
	if f.err != nil {
		return nil, false, f.err
	}
	return &domain.Profile{ID: "p-1", UserID: viewer.UserID, FullName: in.FullName, Bio: in.Bio}, f.created, nil
}
