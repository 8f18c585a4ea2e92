package api

import (
	"encoding/json"
	"net/http"

	"github.com/jotlog/jotlog/internal/api/respond"
	"github.com/jotlog/jotlog/internal/services"
)

// SettingsHandler exposes the settings store. Reads are masked; writes
// drop masked echoes so secrets survive a read-modify-write from the UI.
type SettingsHandler struct {
	svc *services.SettingsService
}

func NewSettingsHandler(svc *services.SettingsService) *SettingsHandler {
	return &SettingsHandler{svc: svc}
}

// Get GET /api/settings
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	m, err := h.svc.Get(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, m)
}

// Put PUT /api/settings
func (h *SettingsHandler) Put(w http.ResponseWriter, r *http.Request) {
	var values map[string]string
	if err := json.NewDecoder(r.Body).Decode(&values); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if err := h.svc.Set(r.Context(), values); err != nil {
		writeErr(w, err)
		return
	}
	m, err := h.svc.Get(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, m)
}
