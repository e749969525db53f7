package api

import (
	"net/http"
	"strings"
)

// RegionHandler serves map popup figures.
type RegionHandler struct {
	deps Dependencies
}

// NewRegionHandler creates a new region handler.
func NewRegionHandler(deps Dependencies) *RegionHandler {
	return &RegionHandler{deps: deps}
}

// HandleGetRegion handles GET /api/regions/{name} requests. The active
// selection is read from the query string.
func (h *RegionHandler) HandleGetRegion(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_region"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	name := strings.TrimPrefix(r.URL.Path, "/api/regions/")
	if strings.TrimSpace(name) == "" || strings.Contains(name, "/") {
		fail(w, NewKind(op, ErrBadRequest))
		return
	}
	popup, err := h.deps.RegionDetail(r.Context(), name, selection(r))
	if err != nil {
		fail(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, popup)
}
