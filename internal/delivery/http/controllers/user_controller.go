package controllers

import (
	"log/slog"
	"net/http"

	"eventhub/internal/delivery/http/helpers"
	"eventhub/internal/delivery/http/middleware"
	"eventhub/internal/domain"
)

// ProfileRequest is the request body for PUT /users/me/profile. Omitted fields are cleared.
type ProfileRequest struct {
	FullName       string `json:"full_name"`
	Bio            string `json:"bio"`
	Location       string `json:"location"`
	ProfilePicture string `json:"profile_picture"`
}

// Validate implements Validator.
func (p ProfileRequest) Validate() []string {
	var errs []string
	if len(p.FullName) > 255 {
		errs = append(errs, "full_name must be at most 255 characters")
	}
	if len(p.Location) > 255 {
		errs = append(errs, "location must be at most 255 characters")
	}
	return errs
}

type UserController struct {
	Logger  *slog.Logger
	Service domain.UserService
}

func NewUserController(logger *slog.Logger, svc domain.UserService) *UserController {
	return &UserController{
		Logger:  logger,
		Service: svc,
	}
}

// GetMe godoc
// @Summary Get current user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the user"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/me [get]
func (c *UserController) GetMe(w http.ResponseWriter, r *http.Request) {
	user, err := c.Service.GetMe(r.Context(), middleware.ViewerFromContext(r.Context()))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, newUserResponse(user))
}

// DeleteMe godoc
// @Summary Delete current user
// @Description Deletes the account with its profile, organized events, RSVPs, reviews and invitations.
// @Tags users
// @Security BearerAuth
// @Success 204 "No Content"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/me [delete]
func (c *UserController) DeleteMe(w http.ResponseWriter, r *http.Request) {
	if err := c.Service.DeleteMe(r.Context(), middleware.ViewerFromContext(r.Context())); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetProfile godoc
// @Summary Get current user's profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the profile"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (no profile yet)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/me/profile [get]
func (c *UserController) GetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := c.Service.GetProfile(r.Context(), middleware.ViewerFromContext(r.Context()))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, newProfileResponse(p))
}

// PutProfile godoc
// @Summary Create or replace current user's profile
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ProfileRequest true "Profile"
// @Success 201 {object} helpers.APIResponse "profile created"
// @Success 200 {object} helpers.APIResponse "profile updated"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/me/profile [put]
func (c *UserController) PutProfile(w http.ResponseWriter, r *http.Request) {
	var req ProfileRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	p, created, err := c.Service.UpsertProfile(r.Context(), middleware.ViewerFromContext(r.Context()), domain.ProfileInput{
		FullName:       req.FullName,
		Bio:            req.Bio,
		Location:       req.Location,
		ProfilePicture: req.ProfilePicture,
	})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, createdStatus(created), newProfileResponse(p))
}
