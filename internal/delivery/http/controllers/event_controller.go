package controllers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"eventhub/internal/delivery/http/helpers"
	"eventhub/internal/delivery/http/middleware"
	"eventhub/internal/domain"
)

// CreateEventRequest is the request body for POST /events.
type CreateEventRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Location    string     `json:"location"`
	StartTime   *time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	IsPublic    *bool      `json:"is_public"`
	OrganizerID string     `json:"organizer_id"`
}

// Validate implements Validator. Returns error messages for required and format rules.
func (c CreateEventRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Title) == "" {
		errs = append(errs, "title is required")
	}
	if c.StartTime == nil {
		errs = append(errs, "start_time is required")
	}
	if c.EndTime == nil {
		errs = append(errs, "end_time is required")
	}
	if c.OrganizerID != "" {
		if _, err := uuid.Parse(c.OrganizerID); err != nil {
			errs = append(errs, "organizer_id must be a UUID")
		}
	}
	return errs
}

// UpdateEventRequest is the request body for PATCH /events/{eventID}. All fields optional; omitted fields are unchanged.
// The organizer cannot be changed.
type UpdateEventRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Location    *string    `json:"location"`
	StartTime   *time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	IsPublic    *bool      `json:"is_public"`
}

// Validate implements Validator.
func (u UpdateEventRequest) Validate() []string {
	if u.Title != nil && strings.TrimSpace(*u.Title) == "" {
		return []string{"title cannot be empty"}
	}
	return nil
}

// EventSuccessResponse is the success response envelope for single-event endpoints.
type EventSuccessResponse struct {
	Data  EventResponse     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ListEventsSuccessResponse is the success response envelope for GET /events.
type ListEventsSuccessResponse struct {
	Data  ListEventsResponse `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
	}
}

// ListEvents godoc
// @Summary List events
// @Description Lists the events the caller can see: public events, plus for authenticated callers the events they organize, are invited to or hold an RSVP for.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param search query string false "Case-insensitive match on title, description, location or organizer username"
// @Param organizer query string false "Organizer user ID"
// @Param location query string false "Exact location"
// @Param is_public query bool false "Visibility flag"
// @Param ordering query string false "created_at, start_time or title; prefix with - for descending (default -created_at)"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.ListEventsSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized (invalid token)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.EventFilter{
		Search:   strings.TrimSpace(q.Get("search")),
		Location: strings.TrimSpace(q.Get("location")),
		Ordering: q.Get("ordering"),
	}
	if organizer := q.Get("organizer"); organizer != "" {
		if _, err := uuid.Parse(organizer); err != nil {
			helpers.WriteValidationError(w, "organizer", "must be a UUID")
			return
		}
		filter.OrganizerID = organizer
	}
	if raw := q.Get("is_public"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			helpers.WriteValidationError(w, "is_public", "must be true or false")
			return
		}
		filter.IsPublic = &v
	}
	if _, _, err := domain.ParseEventOrdering(filter.Ordering); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	params := helpers.ParsePagination(r)
	viewer := middleware.ViewerFromContext(r.Context())

	views, total, err := c.Service.ListEvents(r.Context(), viewer, filter, params)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ListEventsResponse{
		Items:      newEventResponses(views, viewer),
		Pagination: helpers.NewPaginationMeta(params.Page, params.PageSize, total),
	})
}

// CreateEvent godoc
// @Summary Create a new event
// @Description Creates an event organized by the caller. Staff callers may set organizer_id to create the event for another user. Invited users are notified by email.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param event body CreateEventRequest true "Event data"
// @Success 201 {object} controllers.EventSuccessResponse "data contains the created event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (organizer_id without staff role)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	viewer := middleware.ViewerFromContext(r.Context())
	view, err := c.Service.CreateEvent(r.Context(), viewer, domain.EventInput{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Location:    strings.TrimSpace(req.Location),
		StartTime:   req.StartTime.UTC(),
		EndTime:     req.EndTime.UTC(),
		IsPublic:    req.IsPublic,
		OrganizerID: req.OrganizerID,
	})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, newEventResponse(view, viewer))
}

// GetEvent godoc
// @Summary Get an event by ID
// @Description Returns the event with its aggregates. Events the caller cannot see are reported as not found.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	viewer := middleware.ViewerFromContext(r.Context())
	view, err := c.Service.GetEvent(r.Context(), viewer, eventID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, newEventResponse(view, viewer))
}

// UpdateEvent godoc
// @Summary Update an event
// @Description Partially updates an event. Only the organizer may update; attendees holding an RSVP are notified by email.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body UpdateEventRequest true "Fields to update (all optional)"
// @Success 200 {object} controllers.EventSuccessResponse "data contains the updated event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not organizer)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [patch]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	var req UpdateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	patch := domain.EventPatch{
		Title:       trimmed(req.Title),
		Description: req.Description,
		Location:    trimmed(req.Location),
		StartTime:   utc(req.StartTime),
		EndTime:     utc(req.EndTime),
		IsPublic:    req.IsPublic,
	}
	viewer := middleware.ViewerFromContext(r.Context())
	view, err := c.Service.UpdateEvent(r.Context(), viewer, eventID, patch)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, newEventResponse(view, viewer))
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Deletes the event with its RSVPs, reviews and invitations. Only the organizer may delete.
// @Tags events
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 204 "No Content"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not organizer)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	if err := c.Service.DeleteEvent(r.Context(), middleware.ViewerFromContext(r.Context()), eventID); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
