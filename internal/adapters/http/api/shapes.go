package api

import (
	"net/http"
)

// RegionPropertyHeader names the feature property the page joins on.
const RegionPropertyHeader = "X-Region-Property"

// ShapesHandler serves the region GeoJSON the map layer draws.
type ShapesHandler struct {
	deps Dependencies
}

// NewShapesHandler creates a new shapes handler.
func NewShapesHandler(deps Dependencies) *ShapesHandler {
	return &ShapesHandler{deps: deps}
}

// HandleShapes handles GET /api/shapes. It answers 404 when no shapes are
// configured so the page can hide the map. The feature property holding the
// region name is sent in RegionPropertyHeader.
func (h *ShapesHandler) HandleShapes(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_shapes"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	shapes, err := h.deps.Shapes(r.Context())
	if err != nil {
		fail(w, Wrap(op, err))
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.Header().Set(RegionPropertyHeader, shapes.Property)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(shapes.Raw)
}
