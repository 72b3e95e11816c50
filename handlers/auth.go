// ABOUTME: Auth handlers implementing the BFF session pattern
// ABOUTME: Handles login, logout, registration, and password flows with httpOnly cookies

package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gaelxxl34/whoiswho-portal/middleware"
	"github.com/gaelxxl34/whoiswho-portal/models"
	"github.com/gaelxxl34/whoiswho-portal/services"
)

// Login authenticates against the upstream API and creates a server-side
// session. The bearer token never reaches the browser; only the opaque
// session cookie does.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Email == "" || req.Password == "" {
		h.writeError(w, "Email and password are required", http.StatusBadRequest)
		return
	}

	result, err := h.gateway.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		slog.Error("Login request failed", "error", err)
		h.writeError(w, "Authentication service unavailable", http.StatusBadGateway)
		return
	}

	if !result.Success {
		slog.Warn("Login rejected", "email", req.Email)
		h.writeJSON(w, http.StatusUnauthorized, models.AuthResponse{
			Success: false,
			Message: result.Message,
		})
		return
	}

	if result.User == nil || result.Token == "" {
		slog.Error("Login response incomplete", "has_user", result.User != nil)
		h.writeError(w, "Authentication service returned an incomplete response", http.StatusBadGateway)
		return
	}

	sessionID, err := h.sessions.NewID()
	if err != nil {
		slog.Error("Failed to mint session ID", "error", err)
		h.writeError(w, "Failed to create session", http.StatusInternalServerError)
		return
	}

	// Sessions last one session-TTL, bounded by the token's own expiry when
	// the upstream token carries one that is sooner.
	expiry := time.Now().Add(time.Duration(h.cfg.SessionTTL) * time.Second)
	if !result.TokenExpiry.IsZero() && result.TokenExpiry.Before(expiry) {
		expiry = result.TokenExpiry
	}

	if err := h.sessions.SetWithExpiry(sessionID, result.Token, *result.User, expiry); err != nil {
		slog.Error("Failed to store session", "error", err)
		h.writeError(w, "Failed to create session", http.StatusInternalServerError)
		return
	}

	h.setSessionCookie(w, sessionID)

	csrfToken, err := h.sessions.NewID()
	if err == nil {
		h.setCSRFCookie(w, csrfToken)
	}

	slog.Info("Login succeeded", "user", result.User.Email, "role", result.User.UserType)

	h.writeJSON(w, http.StatusOK, models.AuthResponse{
		Success:      true,
		User:         result.User,
		RedirectPath: h.postLoginPath(w, r, result.User),
	})
}

// Register creates an account upstream. Registration does not log the user
// in; the browser is pointed at the login screen afterwards.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Email == "" || req.Password == "" {
		h.writeError(w, "Email and password are required", http.StatusBadRequest)
		return
	}
	if req.UserType != "" && !models.ValidRole(req.UserType) {
		h.writeError(w, "Unknown account type", http.StatusBadRequest)
		return
	}

	result, err := h.gateway.Register(r.Context(), req)
	if err != nil {
		slog.Error("Register request failed", "error", err)
		h.writeError(w, "Registration service unavailable", http.StatusBadGateway)
		return
	}

	if !result.Success {
		h.writeJSON(w, http.StatusBadRequest, models.AuthResponse{
			Success: false,
			Message: result.Message,
		})
		return
	}

	slog.Info("Registration succeeded", "email", req.Email)

	h.writeJSON(w, http.StatusCreated, models.AuthResponse{
		Success:      true,
		User:         result.User,
		RedirectPath: "/login",
		Message:      result.Message,
	})
}

// Logout clears the session and cookies. Idempotent: logging out without a
// session still succeeds.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil && cookie.Value != "" {
		h.sessions.Clear(cookie.Value)
		if h.corrector != nil {
			h.corrector.Forget(cookie.Value)
		}
	}

	h.clearSessionCookie(w)
	h.clearCSRFCookie(w)

	h.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Me returns the current session state. Anonymous and expired sessions are
// 200 responses, not errors; "expired" tells the dashboard to show the login
// screen with a session-timeout notice.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r)
	if user == nil {
		h.writeJSON(w, http.StatusOK, models.UserInfoResponse{
			Authenticated: false,
			Expired:       middleware.SessionExpired(r),
		})
		return
	}

	h.writeJSON(w, http.StatusOK, models.UserInfoResponse{
		Authenticated: true,
		User:          user,
		IsAdmin:       user.IsElevated(),
	})
}

// ForgotPassword relays a reset-link request upstream. The upstream responds
// identically whether or not the address exists, and so do we.
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		h.writeError(w, "Email is required", http.StatusBadRequest)
		return
	}

	result, err := h.gateway.ForgotPassword(r.Context(), req.Email)
	if err != nil {
		slog.Error("Forgot-password request failed", "error", err)
		h.writeError(w, "Password service unavailable", http.StatusBadGateway)
		return
	}

	status := http.StatusOK
	if !result.Success {
		status = http.StatusBadRequest
	}
	h.writeJSON(w, status, models.AuthResponse{
		Success: result.Success,
		Message: result.Message,
	})
}

// ResetPassword completes a password reset using the tokens from the emailed
// link. An expired link is a business failure with the upstream's message.
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password     string `json:"password"`
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Password == "" || req.AccessToken == "" {
		h.writeError(w, "Password and reset token are required", http.StatusBadRequest)
		return
	}

	result, err := h.gateway.ResetPassword(r.Context(), req.Password, req.AccessToken, req.RefreshToken)
	if err != nil {
		slog.Error("Reset-password request failed", "error", err)
		h.writeError(w, "Password service unavailable", http.StatusBadGateway)
		return
	}

	status := http.StatusOK
	if !result.Success {
		status = http.StatusBadRequest
	}
	h.writeJSON(w, status, models.AuthResponse{
		Success:      result.Success,
		Message:      result.Message,
		RedirectPath: "/login",
	})
}

// postLoginPath picks the landing page after login: the pre-login hint cookie
// wins when it points at a sane in-portal path, otherwise the role's
// dashboard. The hint cookie is cleared either way.
func (h *Handler) postLoginPath(w http.ResponseWriter, r *http.Request, user *models.UserRecord) string {
	if hint, err := r.Cookie(middleware.RedirectHintCookie); err == nil && hint.Value != "" {
		http.SetCookie(w, &http.Cookie{
			Name:   middleware.RedirectHintCookie,
			Value:  "",
			Path:   "/",
			MaxAge: -1,
		})
		// Only same-site absolute paths; anything else would be an open redirect.
		if strings.HasPrefix(hint.Value, "/") && !strings.HasPrefix(hint.Value, "//") {
			return hint.Value
		}
	}
	return services.RedirectPath(user)
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    sessionID,
		HttpOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   h.cfg.SessionTTL,
	})
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   -1,
	})
}

// setCSRFCookie sets the double-submit token. Not httpOnly: the dashboard
// scripts read it to populate the X-CSRF-Token header.
func (h *Handler) setCSRFCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.CSRFCookieName,
		Value:    token,
		HttpOnly: false,
		Secure:   h.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   h.cfg.SessionTTL,
	})
}

func (h *Handler) clearCSRFCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.CSRFCookieName,
		Value:    "",
		Secure:   h.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   -1,
	})
}
