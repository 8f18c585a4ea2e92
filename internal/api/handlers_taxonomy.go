package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/jotlog/jotlog/internal/api/respond"
	"github.com/jotlog/jotlog/internal/services"
)

// TaxonomyHandler serves one suggestion list (topics or people); the
// router mounts two instances.
type TaxonomyHandler struct {
	svc  *services.TaxonomyService
	noun string // "topics" or "people", used in response bodies
}

func NewTaxonomyHandler(svc *services.TaxonomyService, noun string) *TaxonomyHandler {
	return &TaxonomyHandler{svc: svc, noun: noun}
}

// List GET /api/{topics|people}
func (h *TaxonomyHandler) List(w http.ResponseWriter, r *http.Request) {
	names, err := h.svc.List(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{h.noun: names, "count": len(names)})
}

// Add POST /api/{topics|people}
func (h *TaxonomyHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if req.Name == "" {
		respond.WriteBadRequest(w, "name is required")
		return
	}
	if err := h.svc.Add(r.Context(), req.Name); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// Rename PATCH /api/{topics|people}/{name}
func (h *TaxonomyHandler) Rename(w http.ResponseWriter, r *http.Request) {
	oldName := mux.Vars(r)["name"]
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if req.Name == "" {
		respond.WriteBadRequest(w, "name is required")
		return
	}
	if err := h.svc.Rename(r.Context(), oldName, req.Name); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Remove DELETE /api/{topics|people}/{name}
func (h *TaxonomyHandler) Remove(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Remove(r.Context(), mux.Vars(r)["name"]); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
