package handlers

import (
	"net/http"
)

const serviceName = "schedule-optimizer"

// Health provides a minimal liveness check endpoint identifying the
// service.
func Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	res := map[string]string{
		"status":  "ok",
		"service": serviceName,
	}
	writeJSON(w, r, http.StatusOK, res)
}
