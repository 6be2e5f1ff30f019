package handler

import (
	"net/http"
	"time"
)

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status      string `json:"status"`
	AIAvailable bool   `json:"ai_available"`
	Timestamp   string `json:"timestamp"`
}

// HealthHandler reports liveness and whether explanations come from the model.
type HealthHandler struct {
	aiAvailable bool
	now         func() time.Time
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(aiAvailable bool) *HealthHandler {
	return &HealthHandler{aiAvailable: aiAvailable, now: time.Now}
}

func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:      "healthy",
		AIAvailable: h.aiAvailable,
		Timestamp:   h.now().UTC().Format(time.RFC3339),
	})
}
