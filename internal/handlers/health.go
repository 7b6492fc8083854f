package handlers

import (
	"context"
	"net/http"
	"time"

	"medica-backend/internal/models"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type predictionHealth interface {
	Health(ctx context.Context) (*models.PredictionHealth, error)
}

type HealthHandler struct {
	db         pinger
	prediction predictionHealth
}

// NewHealthHandler builds the /health endpoint. prediction may be nil when the
// assistant is backed by a hosted model instead of the prediction service.
func NewHealthHandler(db pinger, prediction predictionHealth) *HealthHandler {
	return &HealthHandler{db: db, prediction: prediction}
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	status := http.StatusOK
	resp := map[string]interface{}{"status": "ok"}

	if err := h.db.Ping(ctx); err != nil {
		status = http.StatusServiceUnavailable
		resp["status"] = "degraded"
		resp["database"] = "unreachable"
	} else {
		resp["database"] = "ok"
	}

	// Prediction outages leave the overall status unchanged.
	if h.prediction != nil {
		if health, err := h.prediction.Health(ctx); err != nil {
			resp["prediction"] = map[string]string{"status": "unreachable"}
		} else {
			resp["prediction"] = health
		}
	}

	writeJSON(w, status, resp)
}
