// ABOUTME: CSRF protection middleware using double-submit cookie pattern
// ABOUTME: Validates X-CSRF-Token header matches the portal CSRF cookie for session requests

package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
)

const (
	// SessionCookieName is the browser-facing session cookie.
	SessionCookieName = "WHOISWHO_SESSION"
	// CSRFCookieName is the double-submit CSRF cookie, readable by scripts.
	CSRFCookieName = "WHOISWHO_CSRF"

	// CSRFHeaderName is the request header clients echo the CSRF cookie in.
	CSRFHeaderName = "X-CSRF-Token"

	// base64url encoding of 32 bytes produces 44 characters (with padding)
	csrfTokenLength = 44
)

// csrfExemptPaths are state-changing endpoints that must work without an
// established session: the auth entry points (which mint the session and CSRF
// cookies) and the public credential-verification endpoint.
var csrfExemptPaths = map[string]bool{
	"/api/v1/auth/login":           true,
	"/api/v1/auth/register":        true,
	"/api/v1/auth/forgot-password": true,
	"/api/v1/auth/reset-password":  true,
	"/api/v1/verify":               true,
}

// CSRF returns middleware that validates CSRF tokens for state-changing requests.
// Validation is skipped for:
//   - GET, HEAD, OPTIONS requests (safe methods)
//   - Auth entry points and the public verify endpoint (no session yet)
//   - Requests without a session cookie (not session-authenticated)
func CSRF() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			// Skip safe methods
			if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
				next(w, r)
				return
			}

			if csrfExemptPaths[r.URL.Path] {
				slog.Debug("CSRF skipped: exempt endpoint", "path", r.URL.Path)
				next(w, r)
				return
			}

			// Skip if no session cookie (not session-authenticated)
			sessionCookie, err := r.Cookie(SessionCookieName)
			if err != nil || sessionCookie.Value == "" {
				next(w, r)
				return
			}

			// Session-authenticated request - validate CSRF token
			csrfCookie, err := r.Cookie(CSRFCookieName)
			if err != nil || csrfCookie.Value == "" {
				slog.Debug("CSRF rejected: missing cookie", "path", r.URL.Path)
				writeJSONError(w, "CSRF token missing or invalid", http.StatusForbidden)
				return
			}

			csrfHeader := r.Header.Get(CSRFHeaderName)
			if csrfHeader == "" {
				slog.Debug("CSRF rejected: missing header", "path", r.URL.Path)
				writeJSONError(w, "CSRF token missing or invalid", http.StatusForbidden)
				return
			}

			// Validate token lengths before comparison
			if len(csrfCookie.Value) != csrfTokenLength || len(csrfHeader) != csrfTokenLength {
				slog.Debug("CSRF rejected: invalid token length", "path", r.URL.Path)
				writeJSONError(w, "CSRF token missing or invalid", http.StatusForbidden)
				return
			}

			// Constant-time comparison to prevent timing attacks
			if subtle.ConstantTimeCompare([]byte(csrfCookie.Value), []byte(csrfHeader)) != 1 {
				slog.Debug("CSRF rejected: token mismatch", "path", r.URL.Path)
				writeJSONError(w, "CSRF token missing or invalid", http.StatusForbidden)
				return
			}

			slog.Debug("CSRF validated", "path", r.URL.Path)
			next(w, r)
		}
	}
}
