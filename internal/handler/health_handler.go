package handler

import (
	"net/http"
	"time"

	"go-file-manager/internal/database"
	"go-file-manager/internal/util"
)

type HealthHandler struct {
	db        *database.DB
	startedAt time.Time
}

func NewHealthHandler(db *database.DB) *HealthHandler {
	return &HealthHandler{db: db, startedAt: time.Now()}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	overall := "healthy"
	dbStatus := "ok"

	if err := h.db.Health(r.Context()); err != nil {
		status = http.StatusServiceUnavailable
		overall = "degraded"
		dbStatus = err.Error()
	}

	util.WriteJSON(w, status, map[string]any{
		"status":   overall,
		"database": dbStatus,
		"uptime":   time.Since(h.startedAt).String(),
	})
}
