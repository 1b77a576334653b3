package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"iris-api/internal/domain"
	"iris-api/internal/infrastructure/logger"
	"iris-api/internal/usecase"
)

type PredictHandler struct {
	service *usecase.PredictionService
	logger  logger.Logger
}

func NewPredictHandler(service *usecase.PredictionService, logger logger.Logger) *PredictHandler {
	return &PredictHandler{
		service: service,
		logger:  logger,
	}
}

// POST /predict
func (h *PredictHandler) Predict(w http.ResponseWriter, r *http.Request) {
	var req domain.PredictionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid request body", slog.Any("error", err))
		respondError(w, http.StatusBadRequest, domain.ErrInvalidBody)
		return
	}

	// Rejected requests never reach the service, so the prediction metrics
	// only ever see in-range measurements.
	if appErr := req.Validate(); appErr != nil {
		h.logger.Debug("Prediction request rejected", "fields", len(appErr.Fields))
		respondError(w, statusForError(appErr), appErr)
		return
	}

	result, err := h.service.Predict(r.Context(), req)
	if err != nil {
		if appErr, ok := err.(*domain.AppError); ok {
			respondError(w, statusForError(appErr), appErr)
			return
		}
		h.logger.Error("Internal error making prediction", slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, domain.NewAppError(domain.ErrCodeInternal, "internal server error"))
		return
	}

	respondJSON(w, http.StatusOK, result)
}
