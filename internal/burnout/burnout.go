// Package burnout classifies the burnout risk of a study record: hard rules first, then the
// trained classifier.
package burnout

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"

	"github.com/at-ishikawa/learnsmart/internal/classifier"
	"github.com/at-ishikawa/learnsmart/internal/study"
)

type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

var AllRiskLevels = []RiskLevel{RiskLow, RiskMedium, RiskHigh}

// ParseRiskLevel parses a risk level case-insensitively.
func ParseRiskLevel(s string) (RiskLevel, error) {
	for _, level := range AllRiskLevels {
		if strings.EqualFold(strings.TrimSpace(s), string(level)) {
			return level, nil
		}
	}
	return "", fmt.Errorf("invalid risk level %q: must be one of %v", s, AllRiskLevels)
}

// Source tells which stage produced a prediction.
type Source string

const (
	SourceRule  Source = "rule"
	SourceModel Source = "model"
)

// Confidence bounds, in percent. A prediction is never reported as certain.
const (
	MinConfidence = 70.0
	MaxConfidence = 95.0
)

// DegradedConfidence is reported when no usable classifier is available.
const DegradedConfidence = MinConfidence

type Prediction struct {
	RiskLevel  RiskLevel `json:"risk_level"`
	Confidence float64   `json:"confidence"`
	Source     Source    `json:"source"`
	// Rule names the matched hard rule. Empty for model predictions.
	Rule string `json:"rule,omitempty"`
	// Probabilities holds the raw class probabilities of a model prediction.
	Probabilities map[string]float64 `json:"probabilities,omitempty"`
	Degraded      bool               `json:"degraded"`
	// Explanation says in plain words why the risk level was chosen.
	Explanation string `json:"explanation"`
}

// Calibrate maps a raw class probability to a reported confidence percentage.
// It is monotonic and bounded to [MinConfidence, MaxConfidence]; NaN maps to MinConfidence.
func Calibrate(raw float64) float64 {
	return clampConfidence(raw * 100)
}

func clampConfidence(v float64) float64 {
	if math.IsNaN(v) {
		return MinConfidence
	}
	return math.Max(MinConfidence, math.Min(MaxConfidence, v))
}

// Predictor is safe for concurrent use. The classifier is fixed at construction.
type Predictor struct {
	model classifier.Classifier
	rules []Rule
}

// NewPredictor returns a predictor backed by model. A nil model puts the predictor in
// degraded mode: rules still apply and everything else is reported as Medium.
func NewPredictor(model classifier.Classifier) *Predictor {
	return &Predictor{
		model: model,
		rules: HardRules,
	}
}

// Degraded reports whether the predictor runs without a classifier.
func (p *Predictor) Degraded() bool {
	return p.model == nil
}

// Predict never fails: classifier problems yield a degraded Medium prediction.
func (p *Predictor) Predict(record study.StudyRecord) Prediction {
	prediction := p.predict(record)
	prediction.Confidence = clampConfidence(prediction.Confidence)
	return prediction
}

func (p *Predictor) predict(record study.StudyRecord) Prediction {
	if rule, ok := matchRule(p.rules, record); ok {
		prediction := Prediction{
			RiskLevel:  RiskHigh,
			Confidence: rule.Confidence,
			Source:     SourceRule,
			Rule:       rule.Name,
		}
		if rule.Explain != nil {
			prediction.Explanation = rule.Explain(record)
		}
		return prediction
	}

	if p.model == nil {
		return degraded(record)
	}
	result, err := p.model.Predict(classifier.FeaturesOf(record))
	if err != nil {
		return degraded(record)
	}
	level, err := ParseRiskLevel(result.Class)
	if err != nil {
		return degraded(record)
	}
	return Prediction{
		RiskLevel:     level,
		Confidence:    Calibrate(result.Probability()),
		Source:        SourceModel,
		Probabilities: maps.Clone(result.Probabilities),
		Explanation: fmt.Sprintf("Model analysis: your pattern (%s) indicates %s burnout risk. Class probabilities: %s.",
			describe(record), level, formatProbabilities(result.Probabilities)),
	}
}

func degraded(record study.StudyRecord) Prediction {
	return Prediction{
		RiskLevel:  RiskMedium,
		Confidence: DegradedConfidence,
		Source:     SourceModel,
		Degraded:   true,
		Explanation: fmt.Sprintf("Burnout model unavailable, defaulting to Medium risk for your pattern (%s). "+
			"Aim for 7-9h sleep, 4-8h study, 1-3h breaks and at most 8h screen time.", describe(record)),
	}
}

func describe(r study.StudyRecord) string {
	return fmt.Sprintf("sleep %.1fh, study %.1fh, breaks %.1fh, screen %.1fh, mood %s",
		r.SleepHours, r.StudyHours, r.BreakTime, r.ScreenTime, r.Mood)
}

// formatProbabilities lists class probabilities as percentages in class name order.
func formatProbabilities(probabilities map[string]float64) string {
	parts := make([]string, 0, len(probabilities))
	for _, class := range slices.Sorted(maps.Keys(probabilities)) {
		parts = append(parts, fmt.Sprintf("%s %.1f%%", class, probabilities[class]*100))
	}
	return strings.Join(parts, ", ")
}
