package api

import (
	"net/http"
	"os"

	"github.com/jotlog/jotlog/internal/api/respond"
)

// HealthHandler reports service liveness and data directory access.
type HealthHandler struct {
	dataDir string
}

func NewHealthHandler(dataDir string) *HealthHandler { return &HealthHandler{dataDir: dataDir} }

// CheckHealth GET /api/health
func (h *HealthHandler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	if _, err := os.Stat(h.dataDir); err != nil {
		respond.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
