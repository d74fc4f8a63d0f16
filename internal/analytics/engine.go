// Package analytics evaluates a daily study record: productivity score, burnout risk and
// suggestions, in that order.
package analytics

import (
	"github.com/at-ishikawa/learnsmart/internal/burnout"
	"github.com/at-ishikawa/learnsmart/internal/classifier"
	"github.com/at-ishikawa/learnsmart/internal/score"
	"github.com/at-ishikawa/learnsmart/internal/study"
	"github.com/at-ishikawa/learnsmart/internal/suggest"
)

// Result is the full evaluation of one record.
type Result struct {
	Score       score.ProductivityScore `json:"score"`
	Prediction  burnout.Prediction      `json:"prediction"`
	Suggestions []suggest.Suggestion    `json:"suggestions"`
	// Degraded is true when the burnout model could not be used.
	Degraded bool `json:"degraded"`
}

type options struct {
	suggestionLimit int
}

type Option func(*options)

// WithSuggestionLimit caps the number of suggestions, between suggest.MinLimit and suggest.MaxLimit.
func WithSuggestionLimit(limit int) Option {
	return func(o *options) {
		o.suggestionLimit = limit
	}
}

// Engine is immutable and safe for concurrent use.
type Engine struct {
	predictor *burnout.Predictor
	suggester *suggest.Engine
}

// NewEngine wires the engine around model. A nil model runs the engine in degraded mode.
func NewEngine(model classifier.Classifier, opts ...Option) (*Engine, error) {
	o := options{suggestionLimit: suggest.DefaultLimit}
	for _, opt := range opts {
		opt(&o)
	}
	suggester, err := suggest.NewEngine(o.suggestionLimit)
	if err != nil {
		return nil, err
	}
	return &Engine{
		predictor: burnout.NewPredictor(model),
		suggester: suggester,
	}, nil
}

// Degraded reports whether the engine runs without a burnout model.
func (e *Engine) Degraded() bool {
	return e.predictor.Degraded()
}

// Evaluate validates record and evaluates it. history holds the preceding days, oldest first,
// and only feeds trend suggestions. An invalid record returns a *study.ValidationError.
func (e *Engine) Evaluate(record study.StudyRecord, history ...study.StudyRecord) (Result, error) {
	if err := study.Validate(record); err != nil {
		return Result{}, err
	}

	productivity := score.Compute(record)
	prediction := e.predictor.Predict(record)
	suggestions := e.suggester.Generate(suggest.Input{
		Record:     record,
		Score:      productivity,
		Prediction: prediction,
		History:    history,
	})
	return Result{
		Score:       productivity,
		Prediction:  prediction,
		Suggestions: suggestions,
		Degraded:    prediction.Degraded,
	}, nil
}
