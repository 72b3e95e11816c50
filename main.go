// ABOUTME: Entry point for the Who is Who portal service
// ABOUTME: Wires config, session store, upstream client, and HTTP routes

package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gaelxxl34/whoiswho-portal/cache"
	"github.com/gaelxxl34/whoiswho-portal/config"
	"github.com/gaelxxl34/whoiswho-portal/handlers"
	"github.com/gaelxxl34/whoiswho-portal/logger"
	"github.com/gaelxxl34/whoiswho-portal/middleware"
	"github.com/gaelxxl34/whoiswho-portal/services"
)

func main() {
	// Initialize structured logging
	logger.Init()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting Who is Who portal")
	slog.Info("Upstream API configured", "url", cfg.APIBaseURL, "timeout_s", cfg.APITimeout)
	if cfg.APIProxy != "" {
		slog.Info("Upstream proxy configured")
	}

	// Initialize cache and session store
	cacheTTL := time.Duration(cfg.CacheTTL) * time.Second
	c := cache.New(cacheTTL)
	slog.Info("Cache initialized", "ttl", cacheTTL)

	sessions := services.NewSessionStore(c, time.Duration(cfg.SessionTTL)*time.Second)

	// Upstream client shared by gateway, proxies, and dashboard
	upstream := services.NewUpstream(cfg.APIBaseURL, services.UpstreamOptions{
		Timeout:           time.Duration(cfg.APITimeout) * time.Second,
		SkipSSLValidation: cfg.APISkipSSLValidation,
		AllProxy:          cfg.APIProxy,
	})
	gateway := services.NewGateway(upstream)
	corrector := middleware.NewRouteCorrector()

	h := handlers.NewHandler(cfg, c, sessions, gateway, upstream, corrector)

	// Rate limiters per class; nil limiter disables a class
	var authLimiter, verifyLimiter, defaultLimiter *middleware.RateLimiter
	if cfg.RateLimitEnabled {
		authLimiter = middleware.NewRateLimiter(cfg.RateLimitAuth, time.Minute)
		verifyLimiter = middleware.NewRateLimiter(cfg.RateLimitVerify, time.Minute)
		defaultLimiter = middleware.NewRateLimiter(cfg.RateLimitDefault, time.Minute)
		slog.Info("Rate limiting enabled",
			"auth_per_min", cfg.RateLimitAuth,
			"verify_per_min", cfg.RateLimitVerify,
			"default_per_min", cfg.RateLimitDefault,
		)
	} else {
		slog.Warn("Rate limiting disabled")
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

	// API routes: logging, CORS, CSRF, session resolution, then rate limits
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

	// CORS preflight; the middleware answers 204 for allowed origins
	mux.HandleFunc("OPTIONS /api/", middleware.Chain(func(w http.ResponseWriter, r *http.Request) {},
		middleware.LogRequest,
		middleware.CORS(cfg.CORSAllowedOrigins),
	))

	// Page routes: guards are baked into the table
	for _, route := range h.PageRoutes() {
		handler := middleware.Chain(route.Handler,
			middleware.LogRequest,
			sessionAuth,
		)
		mux.HandleFunc(route.Method+" "+route.Path, handler)
	}

	// Start server
	addr := ":" + cfg.Port
	slog.Info("Server listening", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
