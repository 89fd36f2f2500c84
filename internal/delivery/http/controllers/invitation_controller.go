package controllers

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"eventhub/internal/delivery/http/helpers"
	"eventhub/internal/delivery/http/middleware"
	"eventhub/internal/domain"
)

// InviteRequest is the request body for POST /events/{eventID}/invitations.
type InviteRequest struct {
	UserID string `json:"user_id"`
}

// Validate implements Validator.
func (i InviteRequest) Validate() []string {
	if i.UserID == "" {
		return []string{"user_id is required"}
	}
	if _, err := uuid.Parse(i.UserID); err != nil {
		return []string{"user_id must be a UUID"}
	}
	return nil
}

// InvitationSuccessResponse is the success response envelope for POST /events/{eventID}/invitations.
type InvitationSuccessResponse struct {
	Data  InvitationResponse `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

// ListInvitationsSuccessResponse is the success response envelope for GET /events/{eventID}/invitations.
type ListInvitationsSuccessResponse struct {
	Data  []InvitationResponse `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

type InvitationController struct {
	Logger  *slog.Logger
	Service domain.InvitationService
}

func NewInvitationController(logger *slog.Logger, svc domain.InvitationService) *InvitationController {
	return &InvitationController{Logger: logger, Service: svc}
}

// InviteUser godoc
// @Summary Invite a user to an event
// @Description Invites user_id to the event, granting visibility of private events. Only the organizer may invite. Inviting the same user twice returns the existing invitation.
// @Tags invitations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body InviteRequest true "User to invite"
// @Success 201 {object} controllers.InvitationSuccessResponse "invitation created"
// @Success 200 {object} controllers.InvitationSuccessResponse "already invited"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not organizer)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (event or user)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/invitations [post]
func (c *InvitationController) InviteUser(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	var req InviteRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	inv, created, err := c.Service.InviteUser(r.Context(), middleware.ViewerFromContext(r.Context()), eventID, req.UserID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, createdStatus(created), newInvitationResponse(inv))
}

// ListInvitations godoc
// @Summary List invitations of an event
// @Description Only the organizer may list invitations.
// @Tags invitations
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.ListInvitationsSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not organizer)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/invitations [get]
func (c *InvitationController) ListInvitations(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	invs, err := c.Service.ListInvitations(r.Context(), middleware.ViewerFromContext(r.Context()), eventID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	out := make([]InvitationResponse, 0, len(invs))
	for _, inv := range invs {
		out = append(out, newInvitationResponse(inv))
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, out)
}
