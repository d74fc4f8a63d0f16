// Package suggest turns a scored and classified study record into ranked, actionable
// suggestions.
package suggest

import (
	"github.com/at-ishikawa/learnsmart/internal/burnout"
	"github.com/at-ishikawa/learnsmart/internal/score"
	"github.com/at-ishikawa/learnsmart/internal/study"
)

type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// rank orders priorities, lower first.
func (p Priority) rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	}
	return 3
}

type Category string

const (
	CategorySleep     Category = "sleep"
	CategoryStudy     Category = "study"
	CategoryBreak     Category = "break"
	CategoryScreen    Category = "screen"
	CategoryMood      Category = "mood"
	CategoryComposite Category = "composite"
)

// Suggestion is an actionable recommendation. Title identifies it within one result.
type Suggestion struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    Priority `json:"priority"`
	Category    Category `json:"category"`
}

// Input is everything a rule may look at.
type Input struct {
	Record     study.StudyRecord
	Score      score.ProductivityScore
	Prediction burnout.Prediction
	// History holds the days before Record, oldest first. It may be empty.
	History []study.StudyRecord
}

// Rule examines the input and produces zero or more suggestions.
type Rule func(in Input) []Suggestion
