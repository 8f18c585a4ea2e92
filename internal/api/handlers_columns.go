package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/jotlog/jotlog/internal/api/respond"
	"github.com/jotlog/jotlog/internal/model"
	"github.com/jotlog/jotlog/internal/services"
)

// ColumnHandler manages kanban columns.
type ColumnHandler struct {
	svc *services.ColumnService
}

func NewColumnHandler(svc *services.ColumnService) *ColumnHandler { return &ColumnHandler{svc: svc} }

// List GET /api/columns
func (h *ColumnHandler) List(w http.ResponseWriter, r *http.Request) {
	cols, err := h.svc.List(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"columns": cols, "count": len(cols)})
}

// Add POST /api/columns
func (h *ColumnHandler) Add(w http.ResponseWriter, r *http.Request) {
	var c model.KanbanColumn
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if c.ID == "" || c.Name == "" {
		respond.WriteBadRequest(w, "id and name are required")
		return
	}
	if err := h.svc.Add(r.Context(), c); err != nil {
		writeErr(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, c)
}

// Update PATCH /api/columns/{id}
func (h *ColumnHandler) Update(w http.ResponseWriter, r *http.Request) {
	var c model.KanbanColumn
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	c.ID = mux.Vars(r)["id"]
	if err := h.svc.Update(r.Context(), c); err != nil {
		writeErr(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, c)
}

// Remove DELETE /api/columns/{id}
func (h *ColumnHandler) Remove(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Remove(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
