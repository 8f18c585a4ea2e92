package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/jotlog/jotlog/internal/api/respond"
	"github.com/jotlog/jotlog/internal/enrich"
)

// EnrichHandler launches background enrichment tasks and reports their
// status.
type EnrichHandler struct {
	runner *enrich.Runner
}

func NewEnrichHandler(runner *enrich.Runner) *EnrichHandler { return &EnrichHandler{runner: runner} }

// Enrich POST /api/projects/{project}/entries/{key}/enrich
func (h *EnrichHandler) Enrich(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	var req struct {
		Kind string `json:"kind"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	task, err := h.runner.Launch(r.Context(), vars["project"], vars["key"], req.Kind)
	if err != nil {
		writeErr(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusAccepted, task)
}

// GetTask GET /api/enrich/{id}
func (h *EnrichHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	task, ok := h.runner.Get(mux.Vars(r)["id"])
	if !ok {
		respond.WriteNotFound(w, "unknown task")
		return
	}
	respond.WriteJSON(w, http.StatusOK, task)
}
