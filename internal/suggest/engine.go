package suggest

import (
	"fmt"
	"slices"
)

// Limits on the number of suggestions returned by an engine.
const (
	DefaultLimit = 10
	MinLimit     = 1
	MaxLimit     = 10
)

// DefaultRules lists the built-in rules in evaluation order.
var DefaultRules = []Rule{
	IncreaseSleep,
	ReduceStudy,
	TakeBreaks,
	ReduceScreen,
	Rebalance,
	HighBurnoutRisk,
	AimForMoreSleep,
	ReviewSleepSchedule,
	OptimizeStudyDuration,
	IncreaseStudyTime,
	IncreaseBreakTime,
	BalanceBreaks,
	ImproveProductivity,
	BoostMood,
	Trend,
}

// Engine runs rules against an input and ranks the result. It is stateless.
type Engine struct {
	rules []Rule
	limit int
}

// NewEngine creates an engine with the built-in rules that returns at most limit suggestions.
func NewEngine(limit int) (*Engine, error) {
	if limit < MinLimit || limit > MaxLimit {
		return nil, fmt.Errorf("suggestion limit must be between %d and %d, got %d", MinLimit, MaxLimit, limit)
	}
	return &Engine{
		rules: DefaultRules,
		limit: limit,
	}, nil
}

func (e *Engine) Limit() int {
	return e.limit
}

// Generate never returns an empty list.
func (e *Engine) Generate(in Input) []Suggestion {
	var all []Suggestion
	for _, rule := range e.rules {
		all = append(all, rule(in)...)
	}
	if len(all) == 0 {
		all = slices.Clone(Encouragement)
	}
	return Rank(all, e.limit)
}
