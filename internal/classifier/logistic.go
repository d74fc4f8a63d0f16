package classifier

import (
	"fmt"
	"math"
	"slices"
)

// LogisticRegression is a multinomial logistic regression over standardized features.
type LogisticRegression struct {
	classes    []string
	weights    [][]float64
	intercepts []float64
	means      []float64
	scales     []float64
}

// NewLogisticRegression validates the parameters and returns a model.
// means and scales may be nil, in which case features are used as is.
func NewLogisticRegression(classes []string, weights [][]float64, intercepts, means, scales []float64) (*LogisticRegression, error) {
	if len(classes) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 classes, got %d", ErrIncompatibleArtifact, len(classes))
	}
	if len(weights) != len(classes) || len(intercepts) != len(classes) {
		return nil, fmt.Errorf("%w: %d weight rows and %d intercepts for %d classes", ErrIncompatibleArtifact, len(weights), len(intercepts), len(classes))
	}
	for i, row := range weights {
		if len(row) != NumFeatures {
			return nil, fmt.Errorf("%w: weight row %d has %d features, want %d", ErrIncompatibleArtifact, i, len(row), NumFeatures)
		}
	}
	if means == nil {
		means = make([]float64, NumFeatures)
	}
	if scales == nil {
		scales = slices.Repeat([]float64{1}, NumFeatures)
	}
	if len(means) != NumFeatures || len(scales) != NumFeatures {
		return nil, fmt.Errorf("%w: standardization needs %d means and scales", ErrIncompatibleArtifact, NumFeatures)
	}
	for i, s := range scales {
		if s <= 0 {
			return nil, fmt.Errorf("%w: scale of %s must be positive", ErrIncompatibleArtifact, FeatureNames[i])
		}
	}

	m := &LogisticRegression{
		classes:    slices.Clone(classes),
		weights:    make([][]float64, len(weights)),
		intercepts: slices.Clone(intercepts),
		means:      slices.Clone(means),
		scales:     slices.Clone(scales),
	}
	for i, row := range weights {
		m.weights[i] = slices.Clone(row)
	}
	return m, nil
}

func (m *LogisticRegression) Classes() []string {
	return slices.Clone(m.classes)
}

func (m *LogisticRegression) Predict(features Features) (Result, error) {
	if err := features.validate(); err != nil {
		return Result{}, err
	}
	return newResult(m.classes, m.probabilities(features)), nil
}

func (m *LogisticRegression) probabilities(features Features) []float64 {
	return m.probabilitiesStandardized(m.standardize(features))
}

func (m *LogisticRegression) standardize(features Features) Features {
	var x Features
	for j, v := range features {
		x[j] = (v - m.means[j]) / m.scales[j]
	}
	return x
}

func softmax(logits []float64) []float64 {
	maxLogit := slices.Max(logits)
	out := make([]float64, len(logits))
	var sum float64
	for i, z := range logits {
		out[i] = math.Exp(z - maxLogit)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

func (m *LogisticRegression) probabilitiesStandardized(x Features) []float64 {
	logits := make([]float64, len(m.classes))
	for k := range m.classes {
		z := m.intercepts[k]
		for j, v := range x {
			z += m.weights[k][j] * v
		}
		logits[k] = z
	}
	return softmax(logits)
}
