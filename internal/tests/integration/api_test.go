package integration

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"iris-api/internal/classifier"
	"iris-api/internal/config"
	"iris-api/internal/domain"
	httpInfra "iris-api/internal/infrastructure/http"
	"iris-api/internal/infrastructure/http/handlers"
	"iris-api/internal/infrastructure/logger"
	"iris-api/internal/infrastructure/metrics"
	"iris-api/internal/usecase"
)

var (
	modelOnce   sync.Once
	sharedModel *classifier.IrisClassifier
	modelErr    error
)

// sharedTrainedModel trains once for the whole suite; the classifier is
// immutable after Train and safe to share between servers.
func sharedTrainedModel(t *testing.T) *classifier.IrisClassifier {
	t.Helper()
	modelOnce.Do(func() {
		sharedModel = classifier.New()
		_, modelErr = sharedModel.Train()
	})
	require.NoError(t, modelErr)
	return sharedModel
}

func setupTestServer(t *testing.T, model usecase.Classifier) (*httpInfra.Server, *metrics.PrometheusMetrics) {
	cfg := &config.Config{
		Server: config.ServerConfig{
			Port:         8000,
			ReadTimeout:  10,
			WriteTimeout: 10,
		},
		Model: config.ModelConfig{
			Name:    "iris_classifier",
			Version: "1.0.0",
		},
		LogLevel: "error",
	}

	appLogger := logger.NewSlogLogger("error")
	metricsCollector := metrics.NewPrometheusMetrics()
	metricsCollector.Init(cfg.Model.Version, cfg.Model.Name)

	service := usecase.NewPredictionService(model, cfg.Model.Name, metricsCollector, appLogger)
	predictHandler := handlers.NewPredictHandler(service, appLogger)
	systemHandler := handlers.NewSystemHandler(service, cfg.Model.Version, appLogger)

	server := httpInfra.NewServer(
		cfg,
		predictHandler,
		systemHandler,
		metricsCollector.Handler(),
		metricsCollector,
		appLogger,
	)

	return server, metricsCollector
}

func doPredict(t *testing.T, server *httpInfra.Server, payload map[string]float64) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/predict", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	server.Router().ServeHTTP(w, req)
	return w
}

func scrapeMetrics(t *testing.T, server *httpInfra.Server) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	server.Router().ServeHTTP(w, req)
	return w
}

// sumCounter adds up all series of one counter family in an exposition body.
func sumCounter(body, family string) float64 {
	total := 0.0
	scanner := bufio.NewScanner(strings.NewReader(body))
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, family+"{") {
			continue
		}
		fields := strings.Fields(line)
		value, err := strconv.ParseFloat(fields[len(fields)-1], 64)
		if err != nil {
			continue
		}
		total += value
	}
	return total
}

func TestHealthEndpoint(t *testing.T) {
	server, _ := setupTestServer(t, sharedTrainedModel(t))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	server.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp domain.HealthResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.True(t, resp.ModelLoaded)
	assert.Greater(t, resp.ModelAccuracy, 0.9)
}

func TestRootEndpoint(t *testing.T) {
	server, _ := setupTestServer(t, sharedTrainedModel(t))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	server.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp domain.InfoResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "Iris Classifier API", resp.Name)
	assert.Equal(t, "1.0.0", resp.Version)
}

func TestPredictEndpoint_ValidInput(t *testing.T) {
	server, _ := setupTestServer(t, sharedTrainedModel(t))

	w := doPredict(t, server, map[string]float64{
		"sepal_length": 5.1,
		"sepal_width":  3.5,
		"petal_length": 1.4,
		"petal_width":  0.2,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var result domain.PredictionResult
	require.NoError(t, json.NewDecoder(w.Body).Decode(&result))
	assert.Contains(t, classifier.Classes, result.PredictedClass)
	assert.Len(t, result.Probabilities, 3)
}

func TestPredictEndpoint_KnownSpecies(t *testing.T) {
	server, _ := setupTestServer(t, sharedTrainedModel(t))

	tests := []struct {
		payload map[string]float64
		want    string
	}{
		{map[string]float64{"sepal_length": 5.0, "sepal_width": 3.4, "petal_length": 1.5, "petal_width": 0.2}, "setosa"},
		{map[string]float64{"sepal_length": 6.0, "sepal_width": 2.7, "petal_length": 4.5, "petal_width": 1.5}, "versicolor"},
		{map[string]float64{"sepal_length": 6.7, "sepal_width": 3.0, "petal_length": 5.5, "petal_width": 2.1}, "virginica"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			w := doPredict(t, server, tt.payload)
			require.Equal(t, http.StatusOK, w.Code)

			var result domain.PredictionResult
			require.NoError(t, json.NewDecoder(w.Body).Decode(&result))
			assert.Equal(t, tt.want, result.PredictedClass)
		})
	}
}

func TestPredictEndpoint_ProbabilitiesSumToOne(t *testing.T) {
	server, _ := setupTestServer(t, sharedTrainedModel(t))

	w := doPredict(t, server, map[string]float64{
		"sepal_length": 6.0,
		"sepal_width":  3.0,
		"petal_length": 4.0,
		"petal_width":  1.2,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var result domain.PredictionResult
	require.NoError(t, json.NewDecoder(w.Body).Decode(&result))

	sum := 0.0
	for _, p := range result.Probabilities {
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-5)
	assert.Equal(t, result.Confidence, maxValue(result.Probabilities))
}

func maxValue(m map[string]float64) float64 {
	max := 0.0
	for _, v := range m {
		if v > max {
			max = v
		}
	}
	return max
}

func TestPredictEndpoint_MissingField(t *testing.T) {
	server, _ := setupTestServer(t, sharedTrainedModel(t))

	w := doPredict(t, server, map[string]float64{"sepal_length": 5.1})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestPredictEndpoint_OutOfRange(t *testing.T) {
	server, _ := setupTestServer(t, sharedTrainedModel(t))

	w := doPredict(t, server, map[string]float64{
		"sepal_length": -1.0,
		"sepal_width":  3.5,
		"petal_length": 1.4,
		"petal_width":  0.2,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestPredictEndpoint_ModelUnavailable(t *testing.T) {
	server, _ := setupTestServer(t, classifier.New())

	w := doPredict(t, server, map[string]float64{
		"sepal_length": 5.1,
		"sepal_width":  3.5,
		"petal_length": 1.4,
		"petal_width":  0.2,
	})
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	body := scrapeMetrics(t, server).Body.String()
	assert.Contains(t, body, `ml_prediction_errors_total{error_type="model_not_loaded",model="iris_classifier"} 1`)
}

func TestMetricsEndpoint_Format(t *testing.T) {
	server, _ := setupTestServer(t, sharedTrainedModel(t))

	w := scrapeMetrics(t, server)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")

	body := w.Body.String()
	assert.Contains(t, body, "ml_model_accuracy")
	assert.Contains(t, body, "ml_api_info")
}

func TestMetricsEndpoint_AfterPrediction(t *testing.T) {
	server, _ := setupTestServer(t, sharedTrainedModel(t))

	w := doPredict(t, server, map[string]float64{
		"sepal_length": 5.1,
		"sepal_width":  3.5,
		"petal_length": 1.4,
		"petal_width":  0.2,
	})
	require.Equal(t, http.StatusOK, w.Code)

	body := scrapeMetrics(t, server).Body.String()
	assert.Contains(t, body, "ml_predictions_total")
	assert.Contains(t, body, "ml_prediction_duration_seconds_bucket")
	assert.Contains(t, body, `http_requests_total{endpoint="/predict",method="POST",status="200"} 1`)
}

func TestMetricsEndpoint_PredictionCounterTotal(t *testing.T) {
	server, _ := setupTestServer(t, sharedTrainedModel(t))

	payloads := []map[string]float64{
		{"sepal_length": 5.1, "sepal_width": 3.5, "petal_length": 1.4, "petal_width": 0.2},
		{"sepal_length": 6.0, "sepal_width": 2.7, "petal_length": 4.5, "petal_width": 1.5},
		{"sepal_length": 6.7, "sepal_width": 3.0, "petal_length": 5.5, "petal_width": 2.1},
		{"sepal_length": 5.0, "sepal_width": 3.4, "petal_length": 1.5, "petal_width": 0.2},
		{"sepal_length": 6.2, "sepal_width": 2.9, "petal_length": 4.3, "petal_width": 1.3},
	}
	for _, payload := range payloads {
		require.Equal(t, http.StatusOK, doPredict(t, server, payload).Code)
	}

	body := scrapeMetrics(t, server).Body.String()
	assert.Equal(t, float64(len(payloads)), sumCounter(body, "ml_predictions_total"))
}

func TestMetricsEndpoint_ExcludesItself(t *testing.T) {
	server, _ := setupTestServer(t, sharedTrainedModel(t))

	// Generate some traffic, then scrape repeatedly.
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	server.Router().ServeHTTP(w, req)

	for i := 0; i < 3; i++ {
		scrapeMetrics(t, server)
	}

	body := scrapeMetrics(t, server).Body.String()
	assert.Contains(t, body, `endpoint="/health"`)
	assert.NotContains(t, body, `endpoint="/metrics"`)
}

func TestMetricsEndpoint_StableWithoutTraffic(t *testing.T) {
	server, _ := setupTestServer(t, sharedTrainedModel(t))

	require.Equal(t, http.StatusOK, doPredict(t, server, map[string]float64{
		"sepal_length": 5.1, "sepal_width": 3.5, "petal_length": 1.4, "petal_width": 0.2,
	}).Code)

	first := scrapeMetrics(t, server).Body.String()
	second := scrapeMetrics(t, server).Body.String()
	assert.Equal(t, first, second)
}

func TestConcurrentPredictions(t *testing.T) {
	server, _ := setupTestServer(t, sharedTrainedModel(t))

	const workers = 8
	const perWorker = 5

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				body := bytes.NewReader([]byte(`{"sepal_length":5.1,"sepal_width":3.5,"petal_length":1.4,"petal_width":0.2}`))
				req := httptest.NewRequest(http.MethodPost, "/predict", body)
				req.Header.Set("Content-Type", "application/json")
				w := httptest.NewRecorder()
				server.Router().ServeHTTP(w, req)
			}
		}()
	}
	wg.Wait()

	body := scrapeMetrics(t, server).Body.String()
	want := fmt.Sprintf("%d", workers*perWorker)
	assert.Contains(t, body, `ml_predictions_total{model="iris_classifier",predicted_class="setosa"} `+want)
}
