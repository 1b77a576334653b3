// Package classifier holds a random-forest model for the iris dataset. The
// dataset ships embedded in the binary, so Train needs no external input and
// is fully deterministic for a fixed seed.
package classifier

import (
	"encoding/gob"
	"errors"
	"fmt"
	"math/rand"
	"os"

	"gonum.org/v1/gonum/floats"
)

// ErrNotTrained is returned by Predict and Save before Train or a successful
// Load.
var ErrNotTrained = errors.New("model not trained")

const (
	// Fixed seed keeps the train/test split and the forest reproducible.
	randomSeed   = 42
	testFraction = 0.2
)

// IrisClassifier wraps the forest together with its held-out evaluation set.
// It is immutable after Train or Load and therefore safe for concurrent
// Predict calls.
type IrisClassifier struct {
	forest   *forest
	accuracy float64
	trained  bool

	heldOutFeatures [][]float64
	heldOutLabels   []int
}

func New() *IrisClassifier {
	return &IrisClassifier{}
}

// Train fits the forest on a deterministic 80/20 split of the embedded
// dataset and returns the held-out accuracy.
func (c *IrisClassifier) Train() (float64, error) {
	features, labels, err := loadDataset()
	if err != nil {
		return 0, err
	}

	rng := rand.New(rand.NewSource(randomSeed))
	perm := rng.Perm(len(features))

	testSize := int(float64(len(features)) * testFraction)
	trainIdx := perm[testSize:]
	testIdx := perm[:testSize]

	trainFeatures := make([][]float64, 0, len(trainIdx))
	trainLabels := make([]int, 0, len(trainIdx))
	for _, i := range trainIdx {
		trainFeatures = append(trainFeatures, features[i])
		trainLabels = append(trainLabels, labels[i])
	}

	c.heldOutFeatures = make([][]float64, 0, len(testIdx))
	c.heldOutLabels = make([]int, 0, len(testIdx))
	for _, i := range testIdx {
		c.heldOutFeatures = append(c.heldOutFeatures, features[i])
		c.heldOutLabels = append(c.heldOutLabels, labels[i])
	}

	c.forest = fitForest(trainFeatures, trainLabels, len(Classes), rng)
	c.trained = true
	c.accuracy = c.Evaluate()

	return c.accuracy, nil
}

// Predict classifies a feature vector ordered as sepal length, sepal width,
// petal length, petal width. The returned probabilities are aligned to
// Classes.
func (c *IrisClassifier) Predict(features []float64) (string, []float64, error) {
	if !c.trained {
		return "", nil, ErrNotTrained
	}
	if len(features) != 4 {
		return "", nil, fmt.Errorf("expected 4 features, got %d", len(features))
	}

	probs := c.forest.predictProba(features)
	return Classes[floats.MaxIdx(probs)], probs, nil
}

// Evaluate recomputes accuracy on the held-out set. It returns 0 when no
// held-out set is present, which is the case for a loaded model: the
// serialized artifact carries only the forest and its accuracy.
func (c *IrisClassifier) Evaluate() float64 {
	if len(c.heldOutFeatures) == 0 {
		return 0
	}

	correct := 0
	for i, features := range c.heldOutFeatures {
		probs := c.forest.predictProba(features)
		if floats.MaxIdx(probs) == c.heldOutLabels[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(c.heldOutFeatures))
}

func (c *IrisClassifier) Accuracy() float64 { return c.accuracy }

func (c *IrisClassifier) IsTrained() bool { return c.trained }

func (c *IrisClassifier) ClassNames() []string { return Classes }

type modelArtifact struct {
	Forest   *forest
	Accuracy float64
}

// Save writes the fitted forest and its accuracy as a single gob blob.
func (c *IrisClassifier) Save(path string) error {
	if !c.trained {
		return ErrNotTrained
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create model file: %w", err)
	}
	defer f.Close()

	artifact := modelArtifact{Forest: c.forest, Accuracy: c.accuracy}
	if err := gob.NewEncoder(f).Encode(artifact); err != nil {
		return fmt.Errorf("failed to encode model: %w", err)
	}
	return nil
}

// Load restores a previously saved model. An absent file is not an error; it
// reports false so the caller can fall back to Train.
func (c *IrisClassifier) Load(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to open model file: %w", err)
	}
	defer f.Close()

	var artifact modelArtifact
	if err := gob.NewDecoder(f).Decode(&artifact); err != nil {
		return false, fmt.Errorf("failed to decode model: %w", err)
	}

	c.forest = artifact.Forest
	c.accuracy = artifact.Accuracy
	c.trained = true
	return true, nil
}
