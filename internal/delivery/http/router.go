package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"eventhub/internal/delivery/http/controllers"
	"eventhub/internal/delivery/http/middleware"
	"eventhub/internal/domain"
)

// Controllers groups the handlers mounted by NewRouter.
type Controllers struct {
	Auth       *controllers.AuthController
	User       *controllers.UserController
	Event      *controllers.EventController
	RSVP       *controllers.RSVPController
	Review     *controllers.ReviewController
	Invitation *controllers.InvitationController
	Health     *controllers.HealthController
}

// NewRouter initializes the HTTP router with all application routes
func NewRouter(c Controllers, verifier domain.TokenVerifier, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	required := middleware.RequireAuth(verifier, logger)
	optional := middleware.OptionalAuth(verifier, logger)

	// Auth
	mux.HandleFunc("POST /auth/signup", c.Auth.SignUp)
	mux.HandleFunc("POST /auth/login", c.Auth.Login)

	// Current user
	mux.HandleFunc("GET /users/me", required(c.User.GetMe))
	mux.HandleFunc("DELETE /users/me", required(c.User.DeleteMe))
	mux.HandleFunc("GET /users/me/profile", required(c.User.GetProfile))
	mux.HandleFunc("PUT /users/me/profile", required(c.User.PutProfile))

	// Events
	mux.HandleFunc("GET /events", optional(c.Event.ListEvents))
	mux.HandleFunc("POST /events", required(c.Event.CreateEvent))
	mux.HandleFunc("GET /events/{eventID}", optional(c.Event.GetEvent))
	mux.HandleFunc("PATCH /events/{eventID}", required(c.Event.UpdateEvent))
	mux.HandleFunc("DELETE /events/{eventID}", required(c.Event.DeleteEvent))

	// RSVPs
	mux.HandleFunc("POST /events/{eventID}/rsvp", required(c.RSVP.Respond))
	mux.HandleFunc("PATCH /events/{eventID}/rsvp/{userID}", required(c.RSVP.UpdateStatus))

	// Reviews
	mux.HandleFunc("GET /events/{eventID}/reviews", optional(c.Review.ListReviews))
	mux.HandleFunc("POST /events/{eventID}/reviews", required(c.Review.SubmitReview))

	// Invitations
	mux.HandleFunc("GET /events/{eventID}/invitations", required(c.Invitation.ListInvitations))
	mux.HandleFunc("POST /events/{eventID}/invitations", required(c.Invitation.InviteUser))

	mux.HandleFunc("GET /healthz", c.Health.Health)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
