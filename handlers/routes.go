// ABOUTME: Declarative route tables for API and page endpoints
// ABOUTME: Defines routes with methods, handlers, guards, and rate-limit classes

package handlers

import (
	"net/http"

	"github.com/gaelxxl34/whoiswho-portal/middleware"
	"github.com/gaelxxl34/whoiswho-portal/models"
)

// Rate-limit classes. The server maps each class to its own limiter.
const (
	LimitAuth    = "auth"    // credential-guessing surface, tightest
	LimitVerify  = "verify"  // public verification endpoint
	LimitDefault = "default" // everything else
)

// Route defines an endpoint with its HTTP method, handler, and rate class.
type Route struct {
	Method  string           // HTTP method (GET, POST, etc.)
	Path    string           // URL path (e.g., "/api/v1/health")
	Handler http.HandlerFunc // Handler function
	Limit   string           // rate-limit class; empty means LimitDefault
}

// Routes returns all API routes for registration. Role guards are baked into
// the handlers here; the server applies the shared middleware stack (logging,
// CORS, CSRF, session resolution, rate limits) around them.
func (h *Handler) Routes() []Route {
	adminOnly := middleware.RequireRolesAPI(models.RoleAdmin)
	recordKeepers := middleware.RequireRolesAPI(models.RoleAdmin, models.RoleUniversityAdmin)

	return []Route{
		// Health
		{Method: http.MethodGet, Path: "/api/v1/health", Handler: h.Health},

		// Auth
		{Method: http.MethodPost, Path: "/api/v1/auth/login", Handler: h.Login, Limit: LimitAuth},
		{Method: http.MethodPost, Path: "/api/v1/auth/register", Handler: h.Register, Limit: LimitAuth},
		{Method: http.MethodPost, Path: "/api/v1/auth/logout", Handler: h.Logout},
		{Method: http.MethodGet, Path: "/api/v1/auth/me", Handler: h.Me},
		{Method: http.MethodPost, Path: "/api/v1/auth/forgot-password", Handler: h.ForgotPassword, Limit: LimitAuth},
		{Method: http.MethodPost, Path: "/api/v1/auth/reset-password", Handler: h.ResetPassword, Limit: LimitAuth},

		// Public credential verification
		{Method: http.MethodPost, Path: "/api/v1/verify", Handler: h.Verify, Limit: LimitVerify},

		// Admin dashboard aggregate
		{Method: http.MethodGet, Path: "/api/v1/dashboard", Handler: adminOnly(h.Dashboard)},

		// Universities
		{Method: http.MethodGet, Path: "/api/v1/universities", Handler: adminOnly(h.Universities)},
		{Method: http.MethodPost, Path: "/api/v1/universities", Handler: adminOnly(h.Universities)},
		{Method: http.MethodGet, Path: "/api/v1/universities/{id}", Handler: adminOnly(h.Universities)},
		{Method: http.MethodPut, Path: "/api/v1/universities/{id}", Handler: adminOnly(h.Universities)},
		{Method: http.MethodDelete, Path: "/api/v1/universities/{id}", Handler: adminOnly(h.Universities)},

		// University admin accounts
		{Method: http.MethodGet, Path: "/api/v1/university-admins", Handler: adminOnly(h.UniversityAdmins)},
		{Method: http.MethodPost, Path: "/api/v1/university-admins", Handler: adminOnly(h.UniversityAdmins)},
		{Method: http.MethodGet, Path: "/api/v1/university-admins/{id}", Handler: adminOnly(h.UniversityAdmins)},
		{Method: http.MethodPut, Path: "/api/v1/university-admins/{id}", Handler: adminOnly(h.UniversityAdmins)},
		{Method: http.MethodDelete, Path: "/api/v1/university-admins/{id}", Handler: adminOnly(h.UniversityAdmins)},

		// Platform users
		{Method: http.MethodGet, Path: "/api/v1/users", Handler: adminOnly(h.Users)},
		{Method: http.MethodGet, Path: "/api/v1/users/{id}", Handler: adminOnly(h.Users)},
		{Method: http.MethodPut, Path: "/api/v1/users/{id}", Handler: adminOnly(h.Users)},
		{Method: http.MethodDelete, Path: "/api/v1/users/{id}", Handler: adminOnly(h.Users)},

		// Academic records
		{Method: http.MethodGet, Path: "/api/v1/academic-records", Handler: recordKeepers(h.AcademicRecords)},
		{Method: http.MethodPost, Path: "/api/v1/academic-records", Handler: recordKeepers(h.AcademicRecords)},
		{Method: http.MethodGet, Path: "/api/v1/academic-records/{id}", Handler: recordKeepers(h.AcademicRecords)},
		{Method: http.MethodPut, Path: "/api/v1/academic-records/{id}", Handler: recordKeepers(h.AcademicRecords)},
		{Method: http.MethodDelete, Path: "/api/v1/academic-records/{id}", Handler: recordKeepers(h.AcademicRecords)},

		// Settings
		{Method: http.MethodGet, Path: "/api/v1/settings", Handler: adminOnly(h.Settings)},
		{Method: http.MethodPut, Path: "/api/v1/settings", Handler: adminOnly(h.Settings)},

		// Documentation
		{Method: http.MethodGet, Path: "/api/v1/openapi.yaml", Handler: h.OpenAPISpec},
	}
}

// PageRoutes returns the server-rendered page routes. Route correction runs
// on every page; role guards on the protected sections. The guards are a
// navigation convenience only -- the API routes enforce authorization.
func (h *Handler) PageRoutes() []Route {
	correct := h.corrector.Middleware()
	anyUser := middleware.RequireRoles()
	admin := middleware.RequireRoles(models.RoleAdmin)
	universityAdmin := middleware.RequireRoles(models.RoleUniversityAdmin)

	page := func(title, slug string, guards ...func(http.HandlerFunc) http.HandlerFunc) http.HandlerFunc {
		return middleware.Chain(h.Page(title, slug), append([]func(http.HandlerFunc) http.HandlerFunc{correct}, guards...)...)
	}

	return []Route{
		{Method: http.MethodGet, Path: "/", Handler: h.Home},
		{Method: http.MethodGet, Path: "/static/portal.js", Handler: h.PortalScript},
		{Method: http.MethodGet, Path: "/login", Handler: page("Sign in", "login")},
		{Method: http.MethodGet, Path: "/register", Handler: page("Create account", "register")},
		{Method: http.MethodGet, Path: "/forgot-password", Handler: page("Forgot password", "forgot-password")},
		{Method: http.MethodGet, Path: "/reset-password", Handler: page("Reset password", "reset-password")},
		{Method: http.MethodGet, Path: "/verify", Handler: page("Verify a credential", "verify")},

		{Method: http.MethodGet, Path: "/dashboard", Handler: page("Dashboard", "dashboard", anyUser)},

		{Method: http.MethodGet, Path: "/admin/dashboard", Handler: page("Admin dashboard", "admin-dashboard", admin)},
		{Method: http.MethodGet, Path: "/admin/universities", Handler: page("Universities", "admin-universities", admin)},
		{Method: http.MethodGet, Path: "/admin/university-admins", Handler: page("University admins", "admin-university-admins", admin)},
		{Method: http.MethodGet, Path: "/admin/users", Handler: page("Users", "admin-users", admin)},
		{Method: http.MethodGet, Path: "/admin/settings", Handler: page("Settings", "admin-settings", admin)},

		{Method: http.MethodGet, Path: "/university-admin/dashboard", Handler: page("University dashboard", "university-dashboard", universityAdmin)},
		{Method: http.MethodGet, Path: "/university-admin/records", Handler: page("Academic records", "university-records", universityAdmin)},
	}
}
