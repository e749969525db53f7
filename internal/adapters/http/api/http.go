// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/stemmap/internal/domain/dashboard"
	"github.com/okian/stemmap/internal/domain/geo"
	"github.com/okian/stemmap/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Render(ctx context.Context, sel model.Selection) (dashboard.View, error)
	RegionDetail(ctx context.Context, name string, sel model.Selection) (dashboard.Popup, error)
	Options(ctx context.Context) (model.FilterOptions, error)
	Filtered(ctx context.Context, sel model.Selection) ([]model.Event, error)
	Shapes(ctx context.Context) (*geo.Collection, error)

	// RequestReload queues a reload. Returns false when one is already pending.
	RequestReload(ctx context.Context) bool
}

// Server wires HTTP routes for the dashboard API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	viewHandler   *ViewHandler
	regionHandler *RegionHandler
	chartHandler  *ChartHandler
	exportHandler *ExportHandler
	shapesHandler *ShapesHandler
	reloadHandler *ReloadHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler: NewHealthHandler(deps),
		statsHandler:  NewStatsHandler(statsProvider),
		viewHandler:   NewViewHandler(deps),
		regionHandler: NewRegionHandler(deps),
		chartHandler:  NewChartHandler(deps),
		exportHandler: NewExportHandler(deps),
		shapesHandler: NewShapesHandler(deps),
		reloadHandler: NewReloadHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/api/view", MetricsMiddleware(s.viewHandler.HandleView, "view"))
	mux.HandleFunc("/api/options", MetricsMiddleware(s.viewHandler.HandleOptions, "options"))
	mux.HandleFunc("/api/regions/", MetricsMiddleware(s.regionHandler.HandleGetRegion, "regions"))
	mux.HandleFunc("/api/charts/", MetricsMiddleware(s.chartHandler.HandleGetChart, "charts"))
	mux.HandleFunc("/api/export.xlsx", MetricsMiddleware(s.exportHandler.HandleExport, "export"))
	mux.HandleFunc("/api/shapes", MetricsMiddleware(s.shapesHandler.HandleShapes, "shapes"))
	mux.HandleFunc("/api/reload", MetricsMiddleware(s.reloadHandler.HandleReload, "reload"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// fail writes err with the status its kind maps to.
func fail(w http.ResponseWriter, err error) {
	status, code := statusOf(err)
	if status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "30")
	}
	writeError(w, status, code, err)
}

// selection reads the four filter controls from the query string.
func selection(r *http.Request) model.Selection {
	return dashboard.SelectionFrom(r.URL.Query().Get)
}
