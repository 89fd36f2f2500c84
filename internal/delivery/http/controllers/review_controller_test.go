package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"eventhub/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewController_SubmitReview(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		created    bool
		fakeErr    error
		wantStatus int
		wantCalls  int
	}{
		{"new review", `{"rating":5,"comment":"great"}`, true, nil, http.StatusCreated, 1},
		{"replaced review", `{"rating":3}`, false, nil, http.StatusOK, 1},
		{"rating required", `{"comment":"no rating"}`, false, nil, http.StatusBadRequest, 0},
		{"rating out of range", `{"rating":6}`, false, domain.NewValidationError("rating", "must be between 1 and 5"), http.StatusBadRequest, 1},
		{"invisible event", `{"rating":4}`, false, domain.ErrNotFound, http.StatusNotFound, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeReviewService{err: tt.fakeErr, created: tt.created}
			ctrl := NewReviewController(testLogger, fake)
			rr := httptest.NewRecorder()

			ctrl.SubmitReview(rr, newRequest(http.MethodPost, "/events/"+testEventID+"/reviews", tt.body, authedViewer, map[string]string{"eventID": testEventID}))

			require.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantCalls, fake.calls)
			if rr.Code == http.StatusBadRequest && tt.fakeErr != nil {
				envelope := decodeEnvelope(t, rr)
				require.NotNil(t, envelope.Error)
				assert.Contains(t, envelope.Error.Fields, "rating")
			}
		})
	}
}

func TestReviewController_ListReviews(t *testing.T) {
	fake := &fakeReviewService{reviews: []*domain.Review{
		{ID: "rv-1", EventID: testEventID, UserID: testUserID, Username: "alice", Rating: 4},
		{ID: "rv-2", EventID: testEventID, UserID: otherUserID, Username: "bob", Rating: 2},
	}}
	ctrl := NewReviewController(testLogger, fake)
	rr := httptest.NewRecorder()

	ctrl.ListReviews(rr, newRequest(http.MethodGet, "/events/"+testEventID+"/reviews", "", domain.AnonymousViewer(), map[string]string{"eventID": testEventID}))

	require.Equal(t, http.StatusOK, rr.Code)
	var out []ReviewResponse
	decodeData(t, decodeEnvelope(t, rr), &out)
	require.Len(t, out, 2)
	assert.Equal(t, "alice", out[0].Username)
	assert.Equal(t, 2, out[1].Rating)
}
