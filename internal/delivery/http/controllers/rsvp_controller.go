package controllers

import (
	"log/slog"
	"net/http"

	"eventhub/internal/delivery/http/helpers"
	"eventhub/internal/delivery/http/middleware"
	"eventhub/internal/domain"
)

// RSVPRequest is the request body for RSVP endpoints. Status is Going, Maybe or Not Going.
type RSVPRequest struct {
	Status string `json:"status"`
}

// RSVPSuccessResponse is the success response envelope for RSVP endpoints.
type RSVPSuccessResponse struct {
	Data  RSVPResponse      `json:"data"`
	Error *helpers.APIError `json:"error"`
}

type RSVPController struct {
	Logger  *slog.Logger
	Service domain.RSVPService
}

func NewRSVPController(logger *slog.Logger, svc domain.RSVPService) *RSVPController {
	return &RSVPController{Logger: logger, Service: svc}
}

// Respond godoc
// @Summary RSVP to an event
// @Description Creates or updates the caller's RSVP. A new RSVP without status is Going; an omitted status keeps an existing answer. The organizer is notified by email.
// @Tags rsvps
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body RSVPRequest false "RSVP status"
// @Success 201 {object} controllers.RSVPSuccessResponse "RSVP created"
// @Success 200 {object} controllers.RSVPSuccessResponse "RSVP updated"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/rsvp [post]
func (c *RSVPController) Respond(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	var req RSVPRequest
	if r.ContentLength != 0 && !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	rsvp, created, err := c.Service.Respond(r.Context(), middleware.ViewerFromContext(r.Context()), eventID, req.Status)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, createdStatus(created), newRSVPResponse(rsvp))
}

// UpdateStatus godoc
// @Summary Change a user's RSVP
// @Description Changes the RSVP of userID. Allowed for that user and for the event organizer, who may set any status.
// @Tags rsvps
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param userID path string true "User ID (UUID)"
// @Param body body RSVPRequest true "RSVP status"
// @Success 200 {object} controllers.RSVPSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/rsvp/{userID} [patch]
func (c *RSVPController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	userID, ok := helpers.PathUUID(w, r, "userID")
	if !ok {
		return
	}
	var req RSVPRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	if req.Status == "" {
		helpers.WriteValidationError(w, "status", "is required")
		return
	}
	rsvp, err := c.Service.UpdateStatus(r.Context(), middleware.ViewerFromContext(r.Context()), eventID, userID, req.Status)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, newRSVPResponse(rsvp))
}
