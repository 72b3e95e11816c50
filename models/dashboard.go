// ABOUTME: Aggregated dashboard response models
// ABOUTME: Bundles upstream resource payloads with cache metadata

package models

import (
	"encoding/json"
	"time"
)

// DashboardResponse bundles the upstream payloads the admin dashboard renders
// in one round trip. Payloads are passed through untouched; the portal only
// aggregates.
type DashboardResponse struct {
	Universities json.RawMessage `json:"universities"`
	Users        json.RawMessage `json:"users"`
	Records      json.RawMessage `json:"records"`
	Metadata     Metadata        `json:"metadata"`
}

// Metadata describes how the dashboard payload was produced.
type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
	Cached    bool      `json:"cached"`
}
