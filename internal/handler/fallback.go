package handler

import "net/http"

// HandleRouteNotFound answers any request that matched no route. Registered
// as the router's NotFound handler so even a typo'd path gets the standard
// JSON envelope instead of a plain-text 404.
func HandleRouteNotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, ErrorResponse{
		Error: "Route not found",
	})
}

// HandleMethodNotAllowed answers a known path hit with the wrong method
// (e.g. GET /score).
func HandleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{
		Error: "method_not_allowed",
	})
}
