package handlers

import (
	"encoding/json"
	"job-portal/pkg/logger"
	"net/http"
	"time"
)

// StatsProvider reports how many users and sockets are registered locally.
type StatsProvider interface {
	Stats() (users, connections int)
}

// SystemHandlers serves the unauthenticated health and stats endpoints on the root router.
type SystemHandlers struct {
	stats      StatsProvider
	instanceID string
	log        logger.Logger
}

func NewSystemHandlers(stats StatsProvider, instanceID string, log logger.Logger) *SystemHandlers {
	return &SystemHandlers{stats: stats, instanceID: instanceID, log: log}
}

func (h *SystemHandlers) Health(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, map[string]interface{}{
		"status":    "ok",
		"service":   "notification-service",
		"instance":  h.instanceID,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (h *SystemHandlers) Stats(w http.ResponseWriter, _ *http.Request) {
	users, connections := h.stats.Stats()
	h.writeJSON(w, map[string]int{
		"users":       users,
		"connections": connections,
	})
}

func (h *SystemHandlers) writeJSON(w http.ResponseWriter, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.Error("Failed to write response", "error", err)
	}
}
