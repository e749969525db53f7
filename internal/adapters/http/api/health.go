package api

import (
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/stemmap/pkg/metrics"
)

type healthResponse struct {
	Status        string `json:"status"`
	DataAvailable bool   `json:"data_available"`
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	deps    Dependencies
	metrics http.Handler
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(deps Dependencies) *HealthHandler {
	return &HealthHandler{
		deps:    deps,
		metrics: promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}),
	}
}

// HandleHealth handles GET /healthz requests.
// A client asking for application/json gets the liveness status; everyone
// else gets the Prometheus exposition. The process is live even without
// data, so the JSON status is always 200.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if !strings.Contains(r.Header.Get("Accept"), "application/json") {
		h.metrics.ServeHTTP(w, r)
		return
	}
	_, err := h.deps.Options(r.Context())
	resp := healthResponse{Status: "ok", DataAvailable: err == nil}
	if err != nil {
		resp.Status = "degraded"
	}
	writeJSON(w, http.StatusOK, resp)
}
