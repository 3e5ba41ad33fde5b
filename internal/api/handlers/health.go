package handlers

import (
	"net/http"
	"vrp-solver-service/internal/platform/obs"
)

// Health provides a minimal liveness check endpoint.
func Health(w http.ResponseWriter, r *http.Request) {
	res := map[string]string{"status": "ok"}
	writeJSON(w, r, http.StatusOK, res)
}

func requestID(r *http.Request) string {
	return obs.RequestID(r.Context())
}
