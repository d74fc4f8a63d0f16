package burnout

import (
	"fmt"

	"github.com/at-ishikawa/learnsmart/internal/study"
)

// Rule is a hard rule that forces a High risk verdict.
type Rule struct {
	Name       string
	Confidence float64
	Matches    func(record study.StudyRecord) bool
	// Explain describes a matching record in plain words.
	Explain func(record study.StudyRecord) string
}

const (
	RuleCriticalSleepAndScreen = "critical-sleep-and-screen"
	RuleCriticalSleep          = "critical-sleep"
	RuleOverstudyUndersleep    = "overstudy-undersleep"
)

// HardRules are evaluated in order and the first match wins. Narrower rules come first.
var HardRules = []Rule{
	{
		Name:       RuleCriticalSleepAndScreen,
		Confidence: 95,
		Matches: func(r study.StudyRecord) bool {
			return r.SleepHours < 4 && r.ScreenTime > 8
		},
		Explain: func(r study.StudyRecord) string {
			return fmt.Sprintf("Only %.1f hours of sleep with %.1f hours of screen time: severe sleep deprivation "+
				"combined with heavy screen exposure sharply raises burnout risk.", r.SleepHours, r.ScreenTime)
		},
	},
	{
		Name:       RuleCriticalSleep,
		Confidence: 90,
		Matches: func(r study.StudyRecord) bool {
			return r.SleepHours < 4
		},
		Explain: func(r study.StudyRecord) string {
			return fmt.Sprintf("Only %.1f hours of sleep: below 4 hours, sleep deprivation impairs "+
				"concentration and sharply raises burnout risk.", r.SleepHours)
		},
	},
	{
		Name:       RuleOverstudyUndersleep,
		Confidence: 90,
		Matches: func(r study.StudyRecord) bool {
			return r.StudyHours > 9 && r.SleepHours < 5
		},
		Explain: func(r study.StudyRecord) string {
			return fmt.Sprintf("Studying %.1f hours on %.1f hours of sleep: long study days without "+
				"adequate rest are a classic burnout pattern.", r.StudyHours, r.SleepHours)
		},
	},
}

// MatchRule returns the first hard rule matching record.
func MatchRule(record study.StudyRecord) (Rule, bool) {
	return matchRule(HardRules, record)
}

func matchRule(rules []Rule, record study.StudyRecord) (Rule, bool) {
	for _, rule := range rules {
		if rule.Matches(record) {
			return rule, true
		}
	}
	return Rule{}, false
}
