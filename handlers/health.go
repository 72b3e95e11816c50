// ABOUTME: HTTP handler for the portal health endpoint
// ABOUTME: Reports portal status and upstream API reachability

package handlers

import (
	"context"
	"net/http"
	"time"
)

// Health returns portal health including upstream API reachability. The
// upstream probe is best-effort with a short timeout; an unreachable upstream
// degrades the report but the endpoint itself still answers 200 so load
// balancers keep the portal in rotation.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"status":       "ok",
		"upstream":     "ok",
		"upstream_url": h.upstream.BaseURL(),
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	probe, err := h.upstream.Do(ctx, http.MethodGet, "/api/health", "", nil, "", "")
	if err != nil {
		resp["upstream"] = "unreachable"
	} else {
		probe.Body.Close()
		if probe.StatusCode >= 500 {
			resp["upstream"] = "degraded"
		}
	}

	h.writeJSON(w, http.StatusOK, resp)
}
