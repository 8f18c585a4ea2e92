package api

import (
	"net/http"

	"github.com/jotlog/jotlog/internal/api/respond"
	"github.com/jotlog/jotlog/internal/services"
)

// LogHandler serves the activity log to the viewer's polling loop.
type LogHandler struct {
	svc *services.LogService
}

func NewLogHandler(svc *services.LogService) *LogHandler { return &LogHandler{svc: svc} }

// List GET /api/logs?since=
func (h *LogHandler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.svc.ListSince(r.Context(), r.URL.Query().Get("since"))
	if err != nil {
		writeErr(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"logs": records, "count": len(records)})
}

// Clear DELETE /api/logs
func (h *LogHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Clear(r.Context()); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
