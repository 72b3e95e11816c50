// ABOUTME: Upstream API proxy handlers for the BFF session pattern
// ABOUTME: Forwards domain calls with session-stored bearer tokens, never exposed to the browser

package handlers

import (
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gaelxxl34/whoiswho-portal/middleware"
	"github.com/gaelxxl34/whoiswho-portal/services"
)

// Universities proxies university CRUD to the upstream API.
func (h *Handler) Universities(w http.ResponseWriter, r *http.Request) {
	h.proxyResource(w, r)
}

// UniversityAdmins proxies university-admin account management upstream.
func (h *Handler) UniversityAdmins(w http.ResponseWriter, r *http.Request) {
	h.proxyResource(w, r)
}

// Users proxies platform user management upstream.
func (h *Handler) Users(w http.ResponseWriter, r *http.Request) {
	h.proxyResource(w, r)
}

// AcademicRecords proxies academic-record CRUD upstream.
func (h *Handler) AcademicRecords(w http.ResponseWriter, r *http.Request) {
	h.proxyResource(w, r)
}

// Settings proxies portal settings reads and writes upstream.
func (h *Handler) Settings(w http.ResponseWriter, r *http.Request) {
	h.proxyResource(w, r)
}

// Verify handles the public credential-verification endpoint. No session is
// required; employers use it before creating an account.
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	h.proxyUpstream(w, r, upstreamPath(r), "")
}

// proxyResource forwards an authenticated resource request upstream using the
// session's bearer token. Path identifiers are validated before they are
// spliced into the upstream URL.
func (h *Handler) proxyResource(w http.ResponseWriter, r *http.Request) {
	if id := r.PathValue("id"); id != "" {
		if err := services.ValidateResourceID(id); err != nil {
			slog.Warn("Proxy: rejected resource ID", "path", r.URL.Path, "error", err)
			h.writeError(w, "Invalid resource ID", http.StatusBadRequest)
			return
		}
	}

	token := h.sessionToken(w, r)
	if token == "" {
		return
	}
	h.proxyUpstream(w, r, upstreamPath(r), token)
}

// sessionToken retrieves the upstream bearer token for the request's session.
// Writes a 401 and returns empty when there is no live session.
func (h *Handler) sessionToken(w http.ResponseWriter, r *http.Request) string {
	sessionID := middleware.SessionID(r)
	if sessionID == "" || middleware.CurrentUser(r) == nil {
		slog.Debug("Proxy: no live session", "path", r.URL.Path)
		h.writeError(w, "Authentication required", http.StatusUnauthorized)
		return ""
	}

	token := h.sessions.GetToken(sessionID)
	if token == "" {
		slog.Debug("Proxy: session has no token", "path", r.URL.Path)
		h.writeError(w, "Authentication required", http.StatusUnauthorized)
		return ""
	}
	return token
}

// proxyUpstream forwards the request to the upstream API preserving method,
// query, and body, and streams the response back.
func (h *Handler) proxyUpstream(w http.ResponseWriter, r *http.Request, path, token string) {
	resp, err := h.upstream.Do(r.Context(), r.Method, path, r.URL.RawQuery, r.Body, r.Header.Get("Content-Type"), token)
	if err != nil {
		slog.Error("Proxy: upstream request failed", "path", path, "error", err)
		h.writeError(w, "Upstream service unavailable", http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()

	for key, values := range resp.Header {
		for _, value := range values {
			w.Header().Add(key, value)
		}
	}

	w.WriteHeader(resp.StatusCode)
	io.Copy(w, resp.Body)
}

// upstreamPath maps a portal API path onto the upstream API, which serves the
// same resources without the version segment: /api/v1/universities/42 becomes
// /api/universities/42.
func upstreamPath(r *http.Request) string {
	return "/api" + strings.TrimPrefix(r.URL.Path, "/api/v1")
}
