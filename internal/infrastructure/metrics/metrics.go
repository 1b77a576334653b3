package metrics

import "iris-api/internal/domain"

type Metrics interface {
	IncHTTPRequests(method, path string, statusCode int)
	ObserveHTTPDuration(method, path string, duration float64)
	IncPredictions(model, predictedClass string)
	ObservePredictionDuration(model string, duration float64)
	IncPredictionErrors(model string, kind domain.ErrorKind)
	SetModelAccuracy(model string, accuracy float64)
}
