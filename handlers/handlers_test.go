// ABOUTME: Shared test fixtures for handler tests
// ABOUTME: Builds a handler wired to a mock upstream API

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gaelxxl34/whoiswho-portal/cache"
	"github.com/gaelxxl34/whoiswho-portal/config"
	"github.com/gaelxxl34/whoiswho-portal/middleware"
	"github.com/gaelxxl34/whoiswho-portal/models"
	"github.com/gaelxxl34/whoiswho-portal/services"
)

// testEnv bundles the handler with the pieces tests poke at directly.
type testEnv struct {
	handler  *Handler
	sessions *services.SessionStore
	cache    *cache.Cache
	upstream *httptest.Server
}

// newTestEnv builds a handler against a mock upstream. The upstream handler
// may be nil for tests that never reach it.
func newTestEnv(t *testing.T, upstream http.HandlerFunc) *testEnv {
	t.Helper()

	if upstream == nil {
		upstream = func(w http.ResponseWriter, r *http.Request) {
			t.Errorf("unexpected upstream call: %s %s", r.Method, r.URL.Path)
		}
	}
	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		Port:         "8080",
		CacheTTL:     300,
		DashboardTTL: 30,
		CookieSecure: false,
		SessionTTL:   86400,
		APIBaseURL:   srv.URL,
		APITimeout:   5,
	}

	c := cache.New(time.Duration(cfg.CacheTTL) * time.Second)
	sessions := services.NewSessionStore(c, time.Duration(cfg.SessionTTL)*time.Second)
	up := services.NewUpstream(cfg.APIBaseURL, services.UpstreamOptions{Timeout: 5 * time.Second})
	gateway := services.NewGateway(up)

	return &testEnv{
		handler:  NewHandler(cfg, c, sessions, gateway, up, middleware.NewRouteCorrector()),
		sessions: sessions,
		cache:    c,
		upstream: srv,
	}
}

// login stores a session directly and returns its cookie.
func (e *testEnv) login(t *testing.T, user models.UserRecord) *http.Cookie {
	t.Helper()
	id, err := e.sessions.NewID()
	if err != nil {
		t.Fatalf("NewID: %v", err)
	}
	if err := e.sessions.Set(id, "upstream-token", user); err != nil {
		t.Fatalf("Set session: %v", err)
	}
	return &http.Cookie{Name: middleware.SessionCookieName, Value: id}
}

// serve runs a request through the session middleware and the given handler,
// the way the server wires them.
func (e *testEnv) serve(h http.HandlerFunc, r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	middleware.SessionAuth(e.sessions)(h)(rec, r)
	return rec
}
