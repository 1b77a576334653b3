package domain

// PredictionRequest carries the four iris measurements in centimeters. Each
// field is bounded to an open interval; the bounds are documented ranges, not
// biological limits.
type PredictionRequest struct {
	SepalLength float64 `json:"sepal_length" validate:"required,gt=0,lt=10"`
	SepalWidth  float64 `json:"sepal_width" validate:"required,gt=0,lt=10"`
	PetalLength float64 `json:"petal_length" validate:"required,gt=0,lt=10"`
	PetalWidth  float64 `json:"petal_width" validate:"required,gt=0,lt=5"`
}

// Features returns the measurements in the order the classifier was fit on.
func (r PredictionRequest) Features() []float64 {
	return []float64{r.SepalLength, r.SepalWidth, r.PetalLength, r.PetalWidth}
}

// PredictionResult is the outcome of a single classification. Probabilities
// holds one entry per known class and sums to 1; Confidence is its maximum.
type PredictionResult struct {
	PredictedClass string             `json:"predicted_class"`
	Confidence     float64            `json:"confidence"`
	Probabilities  map[string]float64 `json:"probabilities"`
}

type HealthResponse struct {
	Status        string  `json:"status"`
	ModelLoaded   bool    `json:"model_loaded"`
	ModelAccuracy float64 `json:"model_accuracy"`
}

type InfoResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Health  string `json:"health"`
	Metrics string `json:"metrics"`
	Predict string `json:"predict"`
}
