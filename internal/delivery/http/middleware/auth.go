package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	h "eventhub/internal/delivery/http/helpers"
	"eventhub/internal/domain"
)

type contextKey string

const viewerKey contextKey = "viewer"

// SetViewer returns a context carrying the caller's identity. Used by the auth middleware.
func SetViewer(ctx context.Context, v domain.Viewer) context.Context {
	return context.WithValue(ctx, viewerKey, v)
}

// ViewerFromContext returns the caller's identity. Requests without one are anonymous.
func ViewerFromContext(ctx context.Context) domain.Viewer {
	v, ok := ctx.Value(viewerKey).(domain.Viewer)
	if !ok {
		return domain.AnonymousViewer()
	}
	return v
}

// bearerToken extracts the token from the Authorization header. present is false when no header
// was sent; a non-empty reason means the header is malformed.
func bearerToken(r *http.Request) (token string, present bool, reason string) {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return "", false, ""
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return "", true, "invalid authorization format"
	}
	token = strings.TrimSpace(auth[len(prefix):])
	if token == "" {
		return "", true, "missing token"
	}
	return token, true, ""
}

// authenticate resolves the request identity. ok is false when a response has been written.
func authenticate(w http.ResponseWriter, r *http.Request, verifier domain.TokenVerifier, logger *slog.Logger, required bool) (*http.Request, bool) {
	token, present, reason := bearerToken(r)
	if !present {
		if required {
			h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "missing authorization header")
			return r, false
		}
		return r.WithContext(SetViewer(r.Context(), domain.AnonymousViewer())), true
	}
	if reason != "" {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, reason)
		return r, false
	}
	viewer, err := verifier.Verify(token)
	if err != nil {
		logger.DebugContext(r.Context(), "token rejected", "path", r.URL.Path, "err", err)
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "invalid or expired token")
		return r, false
	}
	return r.WithContext(SetViewer(r.Context(), viewer)), true
}

// RequireAuth returns a wrapper that validates the Bearer token and sets the viewer in the request context.
// If the token is missing or invalid, it responds with 401 and does not call next.
func RequireAuth(verifier domain.TokenVerifier, logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			r, ok := authenticate(w, r, verifier, logger, true)
			if !ok {
				return
			}
			next(w, r)
		}
	}
}

// OptionalAuth lets anonymous requests through. A token that is sent must still be valid.
func OptionalAuth(verifier domain.TokenVerifier, logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			r, ok := authenticate(w, r, verifier, logger, false)
			if !ok {
				return
			}
			next(w, r)
		}
	}
}
