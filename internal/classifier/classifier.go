// Package classifier holds the offline-trained burnout classifiers, their versioned artifact
// format and the training and evaluation routines that produce them.
package classifier

import (
	"errors"
	"fmt"
	"math"

	"github.com/at-ishikawa/learnsmart/internal/study"
)

//go:generate mockgen -source=classifier.go -destination=../mocks/classifier/mock_classifier.go -package=mock_classifier

// Feature names in vector order. Artifacts must declare exactly this list.
const (
	FeatureStudyHours = "study_hours"
	FeatureSleepHours = "sleep_hours"
	FeatureBreakTime  = "break_time"
	FeatureScreenTime = "screen_time"
	FeatureMoodScore  = "mood_score"
)

// NumFeatures is the length of a feature vector.
const NumFeatures = 5

// FeatureNames lists the features in the order they appear in Features.
var FeatureNames = []string{
	FeatureStudyHours,
	FeatureSleepHours,
	FeatureBreakTime,
	FeatureScreenTime,
	FeatureMoodScore,
}

var (
	// ErrIncompatibleArtifact is returned when an artifact's features, classes or parameters
	// do not match what the engine feeds a classifier.
	ErrIncompatibleArtifact = errors.New("incompatible model artifact")
	// ErrUnsupportedVersion is returned for an unknown artifact format version.
	ErrUnsupportedVersion = errors.New("unsupported model artifact version")
	// ErrInvalidFeatures is returned by Predict when a feature is not a finite number.
	ErrInvalidFeatures = errors.New("invalid feature vector")
)

// Features is an ordered feature vector, see FeatureNames.
type Features [NumFeatures]float64

// FeaturesOf builds the feature vector of a study record.
func FeaturesOf(record study.StudyRecord) Features {
	return Features{
		record.StudyHours,
		record.SleepHours,
		record.BreakTime,
		record.ScreenTime,
		float64(record.MoodScore()),
	}
}

func (f Features) validate() error {
	for i, v := range f {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s is %v", ErrInvalidFeatures, FeatureNames[i], v)
		}
	}
	return nil
}

// Result is the outcome of one inference.
type Result struct {
	Class string
	// Probabilities maps every class of the model to its probability.
	Probabilities map[string]float64
}

// Probability returns the probability of the predicted class.
func (r Result) Probability() float64 {
	return r.Probabilities[r.Class]
}

// Classifier predicts a class from a feature vector.
// Implementations are immutable after construction and safe for concurrent use.
type Classifier interface {
	Predict(features Features) (Result, error)
	Classes() []string
}

// argmax returns the index of the largest value, the first one on ties.
func argmax(values []float64) int {
	best := 0
	for i := 1; i < len(values); i++ {
		if values[i] > values[best] {
			best = i
		}
	}
	return best
}

func newResult(classes []string, probabilities []float64) Result {
	result := Result{
		Class:         classes[argmax(probabilities)],
		Probabilities: make(map[string]float64, len(classes)),
	}
	for i, class := range classes {
		result.Probabilities[class] = probabilities[i]
	}
	return result
}
