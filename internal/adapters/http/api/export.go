package api

import (
	"bytes"
	"net/http"

	"github.com/okian/stemmap/internal/adapters/render/sheet"
	"github.com/okian/stemmap/pkg/metrics"
)

// ExportHandler serves the filtered events as a workbook.
type ExportHandler struct {
	deps Dependencies
}

// NewExportHandler creates a new export handler.
func NewExportHandler(deps Dependencies) *ExportHandler {
	return &ExportHandler{deps: deps}
}

// HandleExport handles GET /api/export.xlsx?year=&region=&institution=&scope=.
func (h *ExportHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	const op = "api.export"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	events, err := h.deps.Filtered(r.Context(), selection(r))
	if err != nil {
		fail(w, Wrap(op, err))
		return
	}

	var buf bytes.Buffer
	if err := sheet.Write(&buf, events); err != nil {
		fail(w, WrapKind(op, ErrRender, err))
		return
	}
	metrics.RecordExport("xlsx")

	w.Header().Set("Content-Type", sheet.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="encuentros.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
