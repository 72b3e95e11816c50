// ABOUTME: Handler for the shared page-shell script
// ABOUTME: Embeds static/portal.js at compile time

package handlers

import (
	_ "embed"
	"net/http"
)

//go:embed static/portal.js
var portalScript []byte

// PortalScript serves the shell script every rendered page loads.
func (h *Handler) PortalScript(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Write(portalScript)
}
