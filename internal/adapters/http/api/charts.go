package api

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/okian/stemmap/internal/adapters/render/chart"
	"github.com/okian/stemmap/pkg/metrics"
)

// ChartHandler renders chart images server-side.
type ChartHandler struct {
	deps Dependencies
}

// NewChartHandler creates a new chart handler.
func NewChartHandler(deps Dependencies) *ChartHandler {
	return &ChartHandler{deps: deps}
}

// HandleGetChart handles GET /api/charts/{name}.png requests.
func (h *ChartHandler) HandleGetChart(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_chart"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	file := strings.TrimPrefix(r.URL.Path, "/api/charts/")
	name, ok := strings.CutSuffix(file, ".png")
	if !ok || name == "" {
		fail(w, NewKind(op, ErrNotFound))
		return
	}

	view, err := h.deps.Render(r.Context(), selection(r))
	if err != nil {
		fail(w, Wrap(op, err))
		return
	}
	series, kind, err := chart.Select(view.Charts, name)
	if err != nil {
		fail(w, Wrap(op, err))
		return
	}

	var buf bytes.Buffer
	if err := chart.Render(&buf, series, kind); err != nil {
		fail(w, WrapKind(op, ErrRender, err))
		return
	}
	metrics.RecordChartRender(name)

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
