// ABOUTME: Session authentication middleware resolving the portal session cookie
// ABOUTME: Loads the user record into request context for downstream handlers

package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gaelxxl34/whoiswho-portal/models"
)

// SessionReader is the slice of the session store the middleware needs.
type SessionReader interface {
	Get(id string) *models.UserRecord
	GetToken(id string) string
	IsExpired(id string) bool
}

// contextKey is a private type for context keys to avoid collisions
type contextKey string

const (
	userKey      contextKey = "user"
	sessionIDKey contextKey = "sessionID"
	expiredKey   contextKey = "sessionExpired"
)

// SessionAuth returns middleware that resolves the session cookie into a user
// record. It never rejects: requests without a session, or with an expired or
// unreadable one, continue anonymously and it is up to route guards or
// handlers to act on that. An expired-but-present session is flagged in the
// context so the user-info endpoint can distinguish "expired" from
// "never logged in".
func SessionAuth(store SessionReader) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				next(w, r)
				return
			}

			sessionID := cookie.Value
			user := store.Get(sessionID)
			if user == nil {
				next(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), sessionIDKey, sessionID)
			if store.IsExpired(sessionID) {
				slog.Debug("Session expired", "path", r.URL.Path, "user", user.Email)
				ctx = context.WithValue(ctx, expiredKey, true)
				next(w, r.WithContext(ctx))
				return
			}

			ctx = context.WithValue(ctx, userKey, user)
			next(w, r.WithContext(ctx))
		}
	}
}

// CurrentUser extracts the authenticated user from request context.
// Returns nil for anonymous or expired sessions.
func CurrentUser(r *http.Request) *models.UserRecord {
	user, ok := r.Context().Value(userKey).(*models.UserRecord)
	if !ok {
		return nil
	}
	return user
}

// SessionID extracts the session ID from request context. Present whenever a
// session cookie resolved to a stored record, expired or not.
func SessionID(r *http.Request) string {
	id, ok := r.Context().Value(sessionIDKey).(string)
	if !ok {
		return ""
	}
	return id
}

// SessionExpired reports whether the request carried a session that exists
// but whose token expiry has passed or is inside the look-ahead window.
func SessionExpired(r *http.Request) bool {
	expired, ok := r.Context().Value(expiredKey).(bool)
	return ok && expired
}

// IsAdmin reports whether the request's user holds any administrative role.
// Deliberately broad: platform admins and university admins both have an
// admin dashboard of their own.
func IsAdmin(r *http.Request) bool {
	user := CurrentUser(r)
	return user != nil && user.IsElevated()
}

// RequireSession returns middleware for API endpoints that must be called
// with a live session. Anonymous and expired sessions get 401 JSON.
func RequireSession() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if CurrentUser(r) == nil {
				message := "Authentication required"
				if SessionExpired(r) {
					message = "Session expired, please log in again"
				}
				slog.Debug("Auth rejected", "path", r.URL.Path, "expired", SessionExpired(r))
				writeJSONError(w, message, http.StatusUnauthorized)
				return
			}
			next(w, r)
		}
	}
}
