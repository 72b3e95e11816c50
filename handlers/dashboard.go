// ABOUTME: Admin dashboard aggregation endpoint
// ABOUTME: Fans out to upstream resources concurrently and caches the bundle

package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gaelxxl34/whoiswho-portal/models"
)

const dashboardCacheKey = "dashboard:admin"

// Dashboard returns the aggregated admin dashboard bundle: universities,
// users, and academic records fetched from the upstream API in parallel.
// Fail-fast: if any fetch fails the whole request fails, so the dashboard
// never renders a partial picture as if it were complete.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	if cached, found := h.cache.Get(dashboardCacheKey); found {
		slog.Debug("Dashboard cache hit")
		resp := cached.(models.DashboardResponse)
		resp.Metadata.Cached = true
		h.writeJSON(w, http.StatusOK, resp)
		return
	}

	slog.Debug("Dashboard cache miss, fetching fresh data")

	token := h.sessionToken(w, r)
	if token == "" {
		return
	}

	resp := models.DashboardResponse{
		Metadata: models.Metadata{
			Timestamp: time.Now(),
			Cached:    false,
		},
	}

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		payload, err := h.fetchUpstream(ctx, "/api/universities", token)
		if err != nil {
			return fmt.Errorf("universities: %w", err)
		}
		resp.Universities = payload
		return nil
	})
	g.Go(func() error {
		payload, err := h.fetchUpstream(ctx, "/api/users", token)
		if err != nil {
			return fmt.Errorf("users: %w", err)
		}
		resp.Users = payload
		return nil
	})
	g.Go(func() error {
		payload, err := h.fetchUpstream(ctx, "/api/academic-records", token)
		if err != nil {
			return fmt.Errorf("academic records: %w", err)
		}
		resp.Records = payload
		return nil
	})

	if err := g.Wait(); err != nil {
		slog.Error("Dashboard aggregation failed", "error", err)
		h.writeError(w, "Failed to load dashboard data", http.StatusBadGateway)
		return
	}

	h.cache.SetWithTTL(dashboardCacheKey, resp, time.Duration(h.cfg.DashboardTTL)*time.Second)

	h.writeJSON(w, http.StatusOK, resp)
}

// fetchUpstream performs one authenticated GET and returns the raw JSON body.
// Non-2xx responses are errors here; partial dashboards are not served.
func (h *Handler) fetchUpstream(ctx context.Context, path, token string) (json.RawMessage, error) {
	resp, err := h.upstream.Do(ctx, http.MethodGet, path, "", nil, "", token)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("upstream status %d", resp.StatusCode)
	}

	if !json.Valid(body) {
		return nil, fmt.Errorf("upstream returned invalid JSON")
	}

	return json.RawMessage(body), nil
}
