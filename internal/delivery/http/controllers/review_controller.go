package controllers

import (
	"log/slog"
	"net/http"

	"eventhub/internal/delivery/http/helpers"
	"eventhub/internal/delivery/http/middleware"
	"eventhub/internal/domain"
)

// ReviewRequest is the request body for POST /events/{eventID}/reviews.
type ReviewRequest struct {
	Rating  *int   `json:"rating"`
	Comment string `json:"comment"`
}

// Validate implements Validator. The rating range is checked by the service.
func (rr ReviewRequest) Validate() []string {
	if rr.Rating == nil {
		return []string{"rating is required"}
	}
	return nil
}

// ReviewSuccessResponse is the success response envelope for POST /events/{eventID}/reviews.
type ReviewSuccessResponse struct {
	Data  ReviewResponse    `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ListReviewsSuccessResponse is the success response envelope for GET /events/{eventID}/reviews.
type ListReviewsSuccessResponse struct {
	Data  []ReviewResponse  `json:"data"`
	Error *helpers.APIError `json:"error"`
}

type ReviewController struct {
	Logger  *slog.Logger
	Service domain.ReviewService
}

func NewReviewController(logger *slog.Logger, svc domain.ReviewService) *ReviewController {
	return &ReviewController{Logger: logger, Service: svc}
}

// ListReviews godoc
// @Summary List reviews of an event
// @Tags reviews
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.ListReviewsSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/reviews [get]
func (c *ReviewController) ListReviews(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	reviews, err := c.Service.ListReviews(r.Context(), middleware.ViewerFromContext(r.Context()), eventID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	out := make([]ReviewResponse, 0, len(reviews))
	for _, rv := range reviews {
		out = append(out, newReviewResponse(rv))
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, out)
}

// SubmitReview godoc
// @Summary Review an event
// @Description Creates or replaces the caller's review. Rating must be between 1 and 5. The organizer is notified by email.
// @Tags reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body ReviewRequest true "Rating and optional comment"
// @Success 201 {object} controllers.ReviewSuccessResponse "review created"
// @Success 200 {object} controllers.ReviewSuccessResponse "review updated"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/reviews [post]
func (c *ReviewController) SubmitReview(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	var req ReviewRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	review, created, err := c.Service.SubmitReview(r.Context(), middleware.ViewerFromContext(r.Context()), eventID, domain.ReviewInput{
		Rating:  *req.Rating,
		Comment: req.Comment,
	})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, createdStatus(created), newReviewResponse(review))
}
