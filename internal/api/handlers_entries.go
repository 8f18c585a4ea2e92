package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/jotlog/jotlog/internal/api/respond"
	"github.com/jotlog/jotlog/internal/model"
	"github.com/jotlog/jotlog/internal/services"
)

// EntryHandler is the viewer-facing transport over EntryService.
type EntryHandler struct {
	svc *services.EntryService
}

func NewEntryHandler(svc *services.EntryService) *EntryHandler { return &EntryHandler{svc: svc} }

// ListProjects GET /api/projects
func (h *EntryHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	names, err := h.svc.Projects(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"projects": names, "count": len(names)})
}

// ListEntries GET /api/projects/{project}/entries
func (h *EntryHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	project := mux.Vars(r)["project"]
	q := r.URL.Query()
	// "category" is the older name for the entity filter; accept both.
	entity := q.Get("entity")
	if entity == "" {
		entity = q.Get("category")
	}
	filter := model.QueryFilter{
		Type:     q.Get("type"),
		Source:   q.Get("source"),
		Entity:   entity,
		Topic:    q.Get("topic"),
		Person:   q.Get("person"),
		DateFrom: q.Get("dateFrom"),
		DateTo:   q.Get("dateTo"),
		FreeText: q.Get("q"),
	}
	entries, err := h.svc.Query(r.Context(), project, filter)
	if err != nil {
		writeErr(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"entries": entries, "count": len(entries)})
}

// GetEntry GET /api/projects/{project}/entries/{key}
func (h *EntryHandler) GetEntry(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	e, err := h.svc.GetByKey(r.Context(), vars["project"], vars["key"])
	if err != nil {
		writeErr(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, e)
}

// PatchEntry PATCH /api/projects/{project}/entries/{key}
func (h *EntryHandler) PatchEntry(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	var req services.PatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	e, err := h.svc.Patch(r.Context(), vars["project"], vars["key"], req)
	if err != nil {
		writeErr(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, e)
}

// DeleteEntry DELETE /api/projects/{project}/entries/{key}
func (h *EntryHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if _, err := h.svc.Delete(r.Context(), vars["project"], vars["key"]); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListFilters GET /api/projects/{project}/filters
func (h *EntryHandler) ListFilters(w http.ResponseWriter, r *http.Request) {
	project := mux.Vars(r)["project"]
	types, sources, entities, err := h.svc.Distinct(r.Context(), project)
	if err != nil {
		writeErr(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"types":    types,
		"sources":  sources,
		"entities": entities,
	})
}
