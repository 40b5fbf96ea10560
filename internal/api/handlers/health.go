package handlers

import (
	"net/http"
)

// Health reports liveness. It does not probe Postgres, Redis or the routing
// provider, since each of them has a local fallback.
func Health(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok", "service": "triptracks"})
}
