// ABOUTME: Test helpers for e2e tests
// ABOUTME: Stands up the full portal middleware chain against a mock registry

package e2e

import (
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gaelxxl34/whoiswho-portal/cache"
	"github.com/gaelxxl34/whoiswho-portal/config"
	"github.com/gaelxxl34/whoiswho-portal/handlers"
	"github.com/gaelxxl34/whoiswho-portal/middleware"
	"github.com/gaelxxl34/whoiswho-portal/services"
)

const registryToken = "registry-bearer-token"

// registryUsers are the accounts the mock registry accepts. Password is
// "secret123" for all of them.
var registryUsers = map[string]map[string]any{
	"admin@iuea.ac.ug": {
		"id":       "a-1",
		"email":    "admin@iuea.ac.ug",
		"userType": "admin",
	},
	"registrar@iuea.ac.ug": {
		"id":       "r-1",
		"email":    "registrar@iuea.ac.ug",
		"userType": "university_admin",
	},
	"student@iuea.ac.ug": {
		"id":        "s-1",
		"email":     "student@iuea.ac.ug",
		"userType":  "student",
		"firstName": "Ada",
		"lastName":  "Lovelace",
	},
}

// mockRegistry emulates the upstream credential API.
func mockRegistry() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/auth/login":
			var creds struct {
				Email    string `json:"email"`
				Password string `json:"password"`
			}
			json.NewDecoder(r.Body).Decode(&creds)
			user, ok := registryUsers[creds.Email]
			if !ok || creds.Password != "secret123" {
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "Invalid credentials"})
				return
			}
			json.NewEncoder(w).Encode(map[string]any{"success": true, "token": registryToken, "user": user})

		case r.Method == http.MethodPost && r.URL.Path == "/api/verify":
			var input struct {
				CredentialID string `json:"credentialId"`
			}
			json.NewDecoder(r.Body).Decode(&input)
			verified := strings.HasPrefix(input.CredentialID, "WW-")
			json.NewEncoder(w).Encode(map[string]any{"success": true, "verified": verified})

		case r.URL.Path == "/api/health":
			json.NewEncoder(w).Encode(map[string]any{"success": true})

		default:
			// Authenticated resource endpoints require the bearer token the
			// portal holds server-side.
			if r.Header.Get("Authorization") != "Bearer "+registryToken {
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "Unauthorized"})
				return
			}
			json.NewEncoder(w).Encode(map[string]any{"success": true, "data": []any{}})
		}
	}
}

// newPortal wires the portal exactly as main.go does and serves it over
// httptest. mutate adjusts the config before wiring; nil keeps defaults
// (rate limiting off so unrelated tests never trip a limiter).
func newPortal(t *testing.T, registry http.Handler, mutate func(*config.Config)) *httptest.Server {
	t.Helper()

	if registry == nil {
		registry = mockRegistry()
	}
	registrySrv := httptest.NewServer(registry)
	t.Cleanup(registrySrv.Close)

	cfg := &config.Config{
		Port:             "8080",
		CacheTTL:         300,
		DashboardTTL:     30,
		CookieSecure:     false,
		SessionTTL:       3600,
		APIBaseURL:       registrySrv.URL,
		APITimeout:       5,
		RateLimitEnabled: false,
		RateLimitAuth:    5,
		RateLimitVerify:  20,
		RateLimitDefault: 100,
	}
	if mutate != nil {
		mutate(cfg)
	}

	c := cache.New(time.Duration(cfg.CacheTTL) * time.Second)
	sessions := services.NewSessionStore(c, time.Duration(cfg.SessionTTL)*time.Second)
	upstream := services.NewUpstream(cfg.APIBaseURL, services.UpstreamOptions{
		Timeout: time.Duration(cfg.APITimeout) * time.Second,
	})
	gateway := services.NewGateway(upstream)
	corrector := middleware.NewRouteCorrector()
	h := handlers.NewHandler(cfg, c, sessions, gateway, upstream, corrector)

	var authLimiter, verifyLimiter, defaultLimiter *middleware.RateLimiter
	if cfg.RateLimitEnabled {
		authLimiter = middleware.NewRateLimiter(cfg.RateLimitAuth, time.Minute)
		verifyLimiter = middleware.NewRateLimiter(cfg.RateLimitVerify, time.Minute)
		defaultLimiter = middleware.NewRateLimiter(cfg.RateLimitDefault, time.Minute)
	}
	limiterFor := func(class string) func(http.HandlerFunc) http.HandlerFunc {
		switch class {
		case handlers.LimitAuth:
			return middleware.RateLimit(authLimiter, middleware.ClientIP)
		case handlers.LimitVerify:
			return middleware.RateLimit(verifyLimiter, middleware.ClientIP)
		default:
			return middleware.RateLimit(defaultLimiter, middleware.UserOrIP)
		}
	}

	sessionAuth := middleware.SessionAuth(sessions)
	mux := http.NewServeMux()
	for _, route := range h.Routes() {
		handler := middleware.Chain(route.Handler,
			middleware.LogRequest,
			middleware.CORS(cfg.CORSAllowedOrigins),
			middleware.CSRF(),
			sessionAuth,
			limiterFor(route.Limit),
		)
		mux.HandleFunc(route.Method+" "+route.Path, handler)
	}
	mux.HandleFunc("OPTIONS /api/", middleware.Chain(func(w http.ResponseWriter, r *http.Request) {},
		middleware.LogRequest,
		middleware.CORS(cfg.CORSAllowedOrigins),
	))
	for _, route := range h.PageRoutes() {
		handler := middleware.Chain(route.Handler,
			middleware.LogRequest,
			sessionAuth,
		)
		mux.HandleFunc(route.Method+" "+route.Path, handler)
	}

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

// newBrowser returns a client with a cookie jar that does not follow
// redirects, so tests can assert on Location headers.
func newBrowser(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// login authenticates through the real login endpoint and returns the decoded
// response body. Cookies land in the browser's jar.
func login(t *testing.T, portal *httptest.Server, browser *http.Client, email string) map[string]any {
	t.Helper()

	body := strings.NewReader(`{"email":"` + email + `","password":"secret123"}`)
	resp, err := browser.Post(portal.URL+"/api/v1/auth/login", "application/json", body)
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d", resp.StatusCode)
	}

	var decoded map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	return decoded
}

// csrfToken reads the CSRF cookie out of the browser's jar.
func csrfToken(t *testing.T, portal *httptest.Server, browser *http.Client) string {
	t.Helper()

	u, _ := url.Parse(portal.URL)
	for _, cookie := range browser.Jar.Cookies(u) {
		if cookie.Name == middleware.CSRFCookieName {
			return cookie.Value
		}
	}
	t.Fatal("no CSRF cookie in jar")
	return ""
}
