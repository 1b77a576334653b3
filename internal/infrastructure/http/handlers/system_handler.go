package handlers

import (
	"net/http"

	"iris-api/internal/domain"
	"iris-api/internal/infrastructure/logger"
	"iris-api/internal/usecase"
)

type SystemHandler struct {
	service *usecase.PredictionService
	version string
	logger  logger.Logger
}

func NewSystemHandler(service *usecase.PredictionService, version string, logger logger.Logger) *SystemHandler {
	return &SystemHandler{
		service: service,
		version: version,
		logger:  logger,
	}
}

// GET /health
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.service.Health(r.Context()))
}

// GET /
func (h *SystemHandler) Info(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, domain.InfoResponse{
		Name:    "Iris Classifier API",
		Version: h.version,
		Health:  "/health",
		Metrics: "/metrics",
		Predict: "/predict",
	})
}
