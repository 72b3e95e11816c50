// ABOUTME: CORS middleware for API cross-origin requests
// ABOUTME: Reflects allowed origins and handles preflight OPTIONS

package middleware

import (
	"net/http"
	"slices"
)

// CORS returns middleware that adds CORS headers for origins in the
// allow-list. Credentials are allowed because the portal authenticates with
// cookies, which is exactly why the wildcard origin is never used: the
// browser rejects Access-Control-Allow-Origin "*" on credentialed requests.
// Requests from unlisted origins get no CORS headers and the browser blocks
// the response.
func CORS(allowedOrigins []string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && slices.Contains(allowedOrigins, origin) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-CSRF-Token")
				w.Header().Set("Vary", "Origin")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next(w, r)
		}
	}
}
