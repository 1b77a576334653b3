package usecase

import (
	"context"
	"errors"
	"time"

	"gonum.org/v1/gonum/floats"

	"iris-api/internal/classifier"
	"iris-api/internal/domain"
	"iris-api/internal/infrastructure/logger"
	"iris-api/internal/infrastructure/metrics"
)

// Classifier is the model handle the service predicts with. The concrete
// implementation is immutable after training, so Predict is safe to call from
// any number of in-flight requests.
type Classifier interface {
	Predict(features []float64) (string, []float64, error)
	ClassNames() []string
	Accuracy() float64
	IsTrained() bool
}

type PredictionService struct {
	model     Classifier
	modelName string
	metrics   metrics.Metrics
	logger    logger.Logger
}

func NewPredictionService(model Classifier, modelName string, metrics metrics.Metrics, logger logger.Logger) *PredictionService {
	return &PredictionService{
		model:     model,
		modelName: modelName,
		metrics:   metrics,
		logger:    logger,
	}
}

// Predict runs one instrumented inference. The request must already be
// validated; this method never sees out-of-range measurements. Every failure
// path increments the error counter with a fixed kind before returning, and
// the only state touched is the metrics registry.
func (s *PredictionService) Predict(ctx context.Context, req domain.PredictionRequest) (*domain.PredictionResult, error) {
	if s.model == nil || !s.model.IsTrained() {
		s.metrics.IncPredictionErrors(s.modelName, domain.ErrKindModelNotLoaded)
		s.logger.Warn("Prediction requested without a usable model")
		return nil, domain.ErrModelNotLoaded
	}

	start := time.Now()
	class, probs, err := s.model.Predict(req.Features())
	if err != nil {
		kind := domain.ErrKindInference
		if errors.Is(err, classifier.ErrNotTrained) {
			kind = domain.ErrKindModelNotTrained
		}
		s.metrics.IncPredictionErrors(s.modelName, kind)
		s.logger.Error("Prediction failed", "error", err)
		return nil, domain.NewInferenceError(err)
	}

	s.metrics.ObservePredictionDuration(s.modelName, time.Since(start).Seconds())
	s.metrics.IncPredictions(s.modelName, class)

	probabilities := make(map[string]float64, len(probs))
	for i, name := range s.model.ClassNames() {
		probabilities[name] = probs[i]
	}

	return &domain.PredictionResult{
		PredictedClass: class,
		Confidence:     floats.Max(probs),
		Probabilities:  probabilities,
	}, nil
}

// Health reports readiness. It always succeeds; an unusable model shows up as
// model_loaded=false rather than an error status.
func (s *PredictionService) Health(ctx context.Context) domain.HealthResponse {
	resp := domain.HealthResponse{Status: "healthy"}
	if s.model != nil && s.model.IsTrained() {
		resp.ModelLoaded = true
		resp.ModelAccuracy = s.model.Accuracy()
	}
	return resp
}
