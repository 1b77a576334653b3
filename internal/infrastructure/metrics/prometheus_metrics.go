package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"iris-api/internal/domain"
)

// PrometheusMetrics owns its prometheus.Registry, so independent instances
// (one per process, many in tests) never collide. Within one registry a
// duplicate registration panics via promauto, which is the wanted fail-fast
// behavior for a process-wide singleton.
type PrometheusMetrics struct {
	registry *prometheus.Registry

	httpRequests       *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
	predictions        *prometheus.CounterVec
	predictionDuration *prometheus.HistogramVec
	predictionErrors   *prometheus.CounterVec
	modelAccuracy      *prometheus.GaugeVec
	appInfo            *prometheus.GaugeVec
}

func NewPrometheusMetrics() *PrometheusMetrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &PrometheusMetrics{
		registry: registry,
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
			[]string{"method", "endpoint"},
		),
		predictions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ml_predictions_total",
				Help: "Total number of ML predictions made",
			},
			[]string{"model", "predicted_class"},
		),
		predictionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ml_prediction_duration_seconds",
				Help:    "Time spent making ML predictions",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
			},
			[]string{"model"},
		),
		predictionErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ml_prediction_errors_total",
				Help: "Total number of failed predictions",
			},
			[]string{"model", "error_type"},
		),
		modelAccuracy: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "ml_model_accuracy",
				Help: "Current accuracy of the ML model",
			},
			[]string{"model"},
		),
		appInfo: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "ml_api_info",
				Help: "Information about the ML API application",
			},
			[]string{"version", "model", "framework"},
		),
	}
}

// Init seeds the static info series and zeroes the accuracy gauge so
// dashboards see defined values before first traffic. It only sets gauges and
// may be called again.
func (m *PrometheusMetrics) Init(version, model string) {
	m.appInfo.WithLabelValues(version, model, "chi").Set(1)
	m.modelAccuracy.WithLabelValues(model).Set(0)
}

// Handler returns the exposition endpoint for this registry. Rendering is a
// pure read of the registered series.
func (m *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for test assertions.
func (m *PrometheusMetrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *PrometheusMetrics) IncHTTPRequests(method, path string, statusCode int) {
	m.httpRequests.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
}

func (m *PrometheusMetrics) ObserveHTTPDuration(method, path string, duration float64) {
	m.httpDuration.WithLabelValues(method, path).Observe(duration)
}

func (m *PrometheusMetrics) IncPredictions(model, predictedClass string) {
	m.predictions.WithLabelValues(model, predictedClass).Inc()
}

func (m *PrometheusMetrics) ObservePredictionDuration(model string, duration float64) {
	m.predictionDuration.WithLabelValues(model).Observe(duration)
}

func (m *PrometheusMetrics) IncPredictionErrors(model string, kind domain.ErrorKind) {
	m.predictionErrors.WithLabelValues(model, string(kind)).Inc()
}

func (m *PrometheusMetrics) SetModelAccuracy(model string, accuracy float64) {
	m.modelAccuracy.WithLabelValues(model).Set(accuracy)
}
