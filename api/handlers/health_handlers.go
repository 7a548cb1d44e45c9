package handlers

import (
	"net/http"
	"time"

	"incident-tracker/config"
)

type HealthHandler struct {
	cfg       *config.AppConfig
	startedAt time.Time
}

func NewHealthHandler(cfg *config.AppConfig, startedAt time.Time) *HealthHandler {
	return &HealthHandler{cfg: cfg, startedAt: startedAt}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "healthy",
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"uptime":      time.Since(h.startedAt).Seconds(),
		"environment": h.cfg.Environment,
	})
}

func (h *HealthHandler) Index(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Incident Playbook Step Tracker API",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"health":     "/health",
			"incidents":  "/api/incidents",
			"users":      "/api/users",
			"playbooks":  "/api/playbooks",
			"artifacts":  "/api/artifacts",
			"references": "/api/references",
		},
	})
}
