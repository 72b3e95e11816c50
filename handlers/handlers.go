// ABOUTME: HTTP handlers for the credential portal API endpoints
// ABOUTME: Provides auth, upstream proxy, dashboard, and page handlers

package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gaelxxl34/whoiswho-portal/cache"
	"github.com/gaelxxl34/whoiswho-portal/config"
	"github.com/gaelxxl34/whoiswho-portal/middleware"
	"github.com/gaelxxl34/whoiswho-portal/models"
	"github.com/gaelxxl34/whoiswho-portal/services"
)

type Handler struct {
	cfg       *config.Config
	cache     *cache.Cache
	sessions  *services.SessionStore
	gateway   *services.Gateway
	upstream  *services.Upstream
	corrector *middleware.RouteCorrector
}

func NewHandler(cfg *config.Config, c *cache.Cache, sessions *services.SessionStore, gateway *services.Gateway, upstream *services.Upstream, corrector *middleware.RouteCorrector) *Handler {
	return &Handler{
		cfg:       cfg,
		cache:     c,
		sessions:  sessions,
		gateway:   gateway,
		upstream:  upstream,
		corrector: corrector,
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	h.writeJSON(w, code, models.ErrorResponse{
		Error: message,
		Code:  code,
	})
}
