// ABOUTME: Role-gating middleware for page and API routes
// ABOUTME: Pages redirect with a return-path hint; APIs answer 401/403 JSON

package middleware

import (
	"log/slog"
	"net/http"
	"slices"

	"github.com/gaelxxl34/whoiswho-portal/models"
)

// RedirectHintCookie carries the path a visitor tried to reach before being
// bounced to the login screen, so login can send them back there.
const RedirectHintCookie = "redirectAfterLogin"

// RequireRoles returns middleware for page routes. Anonymous visitors are
// redirected to the login screen with a return-path hint cookie; authenticated
// users whose role is not in the allow-list are redirected to their own
// dashboard. An empty allow-list admits any authenticated user.
//
// This gate is a navigation convenience, not a security boundary: every API
// endpoint enforces its own session and role checks regardless of which pages
// a browser rendered.
func RequireRoles(roles ...string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			user := CurrentUser(r)
			if user == nil {
				http.SetCookie(w, &http.Cookie{
					Name:     RedirectHintCookie,
					Value:    r.URL.Path,
					Path:     "/",
					MaxAge:   300,
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
				slog.Debug("Page guard: anonymous visitor", "path", r.URL.Path)
				http.Redirect(w, r, "/login", http.StatusFound)
				return
			}

			if len(roles) > 0 && !slices.Contains(roles, user.UserType) {
				slog.Debug("Page guard: role not allowed",
					"path", r.URL.Path,
					"user_role", user.UserType,
					"allowed", roles,
				)
				http.Redirect(w, r, user.DashboardPath(), http.StatusFound)
				return
			}

			next(w, r)
		}
	}
}

// RequireRolesAPI returns middleware for API endpoints. Anonymous or expired
// sessions get 401; authenticated users outside the allow-list get 403. An
// empty allow-list admits any authenticated user.
func RequireRolesAPI(roles ...string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			user := CurrentUser(r)
			if user == nil {
				message := "Authentication required"
				if SessionExpired(r) {
					message = "Session expired, please log in again"
				}
				writeJSONError(w, message, http.StatusUnauthorized)
				return
			}

			if len(roles) > 0 && !slices.Contains(roles, user.UserType) {
				slog.Warn("API authorization denied",
					"path", r.URL.Path,
					"method", r.Method,
					"user_role", user.UserType,
					"allowed", roles,
					"user", user.Email,
				)
				writeJSONError(w, "Insufficient permissions", http.StatusForbidden)
				return
			}

			next(w, r)
		}
	}
}

// RequireAdmin gates an API endpoint to platform admins.
func RequireAdmin() func(http.HandlerFunc) http.HandlerFunc {
	return RequireRolesAPI(models.RoleAdmin)
}
