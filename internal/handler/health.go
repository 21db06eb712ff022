package handler

import (
	"net/http"
	"time"
)

type healthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// HandleHealth reports process liveness.
//
// HTTP: GET /health
//
// Deliberately does NOT touch the database: load balancers poll this
// endpoint, and a transient storage hiccup shouldn't take the instance out
// of rotation — storage failures surface per-request as 500s instead.
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "OK",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
