package api

import (
	"net/http"
)

type reloadResponse struct {
	Status string `json:"status"`
}

// ReloadHandler accepts snapshot reload requests.
type ReloadHandler struct {
	deps Dependencies
}

// NewReloadHandler creates a new reload handler.
func NewReloadHandler(deps Dependencies) *ReloadHandler {
	return &ReloadHandler{deps: deps}
}

// HandleReload handles POST /api/reload. The reload runs in the background;
// "pending" means an earlier request has not been served yet and covers
// this one.
func (h *ReloadHandler) HandleReload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	if h.deps.RequestReload(r.Context()) {
		writeJSON(w, http.StatusAccepted, reloadResponse{Status: "queued"})
		return
	}
	writeJSON(w, http.StatusAccepted, reloadResponse{Status: "pending"})
}
