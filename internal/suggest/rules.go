package suggest

import (
	"fmt"

	"github.com/at-ishikawa/learnsmart/internal/burnout"
	"github.com/at-ishikawa/learnsmart/internal/study"
)

// Thresholds shared by the rules.
const (
	ShortSleepHours     = 6.0
	RecommendedSleep    = 7.0
	LongSleepHours      = 10.0
	LongStudyHours      = 10.0
	ExtendedStudyHours  = 8.0
	ShortStudyHours     = 3.0
	MinBreakHours       = 0.5
	RecommendedBreak    = 1.0
	LongBreakHours      = 5.0
	MaxScreenHours      = 8.0
	LowProductivity     = 60
	MinTrendDays        = 3
	TrendSleepHours     = 7.0
	TrendStudyHours     = 9.0
	RebalanceConditions = 2
)

func needsSleep(r study.StudyRecord) bool {
	return r.SleepHours < ShortSleepHours
}

func overstudied(r study.StudyRecord) bool {
	return r.StudyHours > LongStudyHours
}

func needsBreaks(r study.StudyRecord) bool {
	return r.BreakTime < MinBreakHours
}

func single(s Suggestion) []Suggestion {
	return []Suggestion{s}
}

// IncreaseSleep fires below six hours of sleep.
func IncreaseSleep(in Input) []Suggestion {
	if !needsSleep(in.Record) {
		return nil
	}
	return single(Suggestion{
		Title: "Increase sleep hours",
		Description: fmt.Sprintf("You slept %.1f hours, below the recommended 7-9 hours. "+
			"Sleep consolidates memory and restores focus; move bedtime earlier until you reach at least 7 hours.",
			in.Record.SleepHours),
		Priority: PriorityHigh,
		Category: CategorySleep,
	})
}

func ReduceStudy(in Input) []Suggestion {
	if !overstudied(in.Record) {
		return nil
	}
	return single(Suggestion{
		Title: "Reduce study hours",
		Description: fmt.Sprintf("You studied %.1f hours, well above the effective 4-8 hour range. "+
			"Long sessions bring diminishing returns; split the day into shorter focused blocks.",
			in.Record.StudyHours),
		Priority: PriorityHigh,
		Category: CategoryStudy,
	})
}

func TakeBreaks(in Input) []Suggestion {
	if !needsBreaks(in.Record) {
		return nil
	}
	return single(Suggestion{
		Title: "Take more breaks",
		Description: fmt.Sprintf("You took only %.1f hours of breaks. "+
			"Aim for 1-3 hours spread over the day, for example 5 minutes after every 25 minutes of study.",
			in.Record.BreakTime),
		Priority: PriorityHigh,
		Category: CategoryBreak,
	})
}

func ReduceScreen(in Input) []Suggestion {
	if in.Record.ScreenTime <= MaxScreenHours {
		return nil
	}
	return single(Suggestion{
		Title: "Reduce screen time",
		Description: fmt.Sprintf("You spent %.1f hours on screens. "+
			"Keep it under 8 hours, rest your eyes every 20 minutes and mix in offline study.",
			in.Record.ScreenTime),
		Priority: PriorityMedium,
		Category: CategoryScreen,
	})
}

// Rebalance fires when at least two of the sleep, study and break rules fire.
func Rebalance(in Input) []Suggestion {
	var n int
	for _, fired := range []bool{needsSleep(in.Record), overstudied(in.Record), needsBreaks(in.Record)} {
		if fired {
			n++
		}
	}
	if n < RebalanceConditions {
		return nil
	}
	return single(Suggestion{
		Title: "Rebalance your routine",
		Description: "Several habits need attention at once. Plan a day with 7-9 hours of sleep, " +
			"4-8 hours of study and 1-3 hours of breaks before adding more study time.",
		Priority: PriorityHigh,
		Category: CategoryComposite,
	})
}

func HighBurnoutRisk(in Input) []Suggestion {
	if in.Prediction.RiskLevel != burnout.RiskHigh {
		return nil
	}
	reason := fmt.Sprintf("The burnout model rates your risk as high (%.0f%% confidence).", in.Prediction.Confidence)
	if in.Prediction.Source == burnout.SourceRule {
		reason = fmt.Sprintf("Your day matched the %q burnout rule.", in.Prediction.Rule)
	}
	return single(Suggestion{
		Title: "High burnout risk detected",
		Description: reason + " Cut back on study, prioritize sleep and breaks, " +
			"and consider talking to an academic advisor or counselor.",
		Priority: PriorityHigh,
		Category: CategoryComposite,
	})
}

func AimForMoreSleep(in Input) []Suggestion {
	if in.Record.SleepHours < ShortSleepHours || in.Record.SleepHours >= RecommendedSleep {
		return nil
	}
	return single(Suggestion{
		Title: "Aim for more sleep",
		Description: fmt.Sprintf("You slept %.1f hours, close to but below 7 hours. "+
			"Going to bed 30-60 minutes earlier brings you into the optimal range.",
			in.Record.SleepHours),
		Priority: PriorityMedium,
		Category: CategorySleep,
	})
}

func ReviewSleepSchedule(in Input) []Suggestion {
	if in.Record.SleepHours <= LongSleepHours {
		return nil
	}
	return single(Suggestion{
		Title: "Review your sleep schedule",
		Description: fmt.Sprintf("You slept %.1f hours, above the usual 7-9 hours. "+
			"Oversleeping can signal fatigue or poor sleep quality; keep a consistent schedule.",
			in.Record.SleepHours),
		Priority: PriorityLow,
		Category: CategorySleep,
	})
}

func OptimizeStudyDuration(in Input) []Suggestion {
	if in.Record.StudyHours <= ExtendedStudyHours || in.Record.StudyHours > LongStudyHours {
		return nil
	}
	return single(Suggestion{
		Title: "Optimize study duration",
		Description: fmt.Sprintf("You studied %.1f hours. Focused sessions of 4-8 hours a day tend to "+
			"beat longer ones; favor quality over quantity.",
			in.Record.StudyHours),
		Priority: PriorityMedium,
		Category: CategoryStudy,
	})
}

func IncreaseStudyTime(in Input) []Suggestion {
	if in.Record.StudyHours >= ShortStudyHours {
		return nil
	}
	return single(Suggestion{
		Title: "Increase study time",
		Description: fmt.Sprintf("You studied %.1f hours. Aim for 4-6 hours of focused study, "+
			"split into manageable chunks.",
			in.Record.StudyHours),
		Priority: PriorityMedium,
		Category: CategoryStudy,
	})
}

func IncreaseBreakTime(in Input) []Suggestion {
	if in.Record.BreakTime < MinBreakHours || in.Record.BreakTime >= RecommendedBreak {
		return nil
	}
	return single(Suggestion{
		Title: "Increase break time",
		Description: fmt.Sprintf("You took %.1f hours of breaks. A short break every 1-2 hours of study "+
			"improves retention.",
			in.Record.BreakTime),
		Priority: PriorityMedium,
		Category: CategoryBreak,
	})
}

func BalanceBreaks(in Input) []Suggestion {
	if in.Record.BreakTime <= LongBreakHours {
		return nil
	}
	return single(Suggestion{
		Title: "Balance study and breaks",
		Description: fmt.Sprintf("You took %.1f hours of breaks. Too many breaks break study momentum; "+
			"1-3 hours of breaks for 4-8 hours of study is a good balance.",
			in.Record.BreakTime),
		Priority: PriorityLow,
		Category: CategoryBreak,
	})
}

func ImproveProductivity(in Input) []Suggestion {
	if in.Score.Total >= LowProductivity {
		return nil
	}
	return single(Suggestion{
		Title: "Improve overall productivity",
		Description: fmt.Sprintf("Your productivity score is %d/100. Start with the lowest component "+
			"of the breakdown; small changes there move the total the most.",
			in.Score.Total),
		Priority: PriorityHigh,
		Category: CategoryComposite,
	})
}

func BoostMood(in Input) []Suggestion {
	if in.Record.Mood != study.MoodLow {
		return nil
	}
	return single(Suggestion{
		Title: "Boost your mood",
		Description: "Your mood is low. Schedule breaks for things you enjoy, exercise and spend time " +
			"with friends; your well-being matters as much as your grades.",
		Priority: PriorityMedium,
		Category: CategoryMood,
	})
}

// Trend looks at the trailing days and needs at least MinTrendDays of them.
func Trend(in Input) []Suggestion {
	if len(in.History) < MinTrendDays {
		return nil
	}
	var sleepHours, studyHours float64
	for _, r := range in.History {
		sleepHours += r.SleepHours
		studyHours += r.StudyHours
	}
	n := float64(len(in.History))
	avgSleep, avgStudy := sleepHours/n, studyHours/n

	var suggestions []Suggestion
	if avgSleep < TrendSleepHours {
		suggestions = append(suggestions, Suggestion{
			Title: "Recover your sleep debt",
			Description: fmt.Sprintf("You averaged %.1f hours of sleep over the last %d days. "+
				"Sleep debt builds up; plan a few early nights this week.",
				avgSleep, len(in.History)),
			Priority: PriorityMedium,
			Category: CategorySleep,
		})
	}
	if avgStudy > TrendStudyHours {
		suggestions = append(suggestions, Suggestion{
			Title: "Plan a lighter study day",
			Description: fmt.Sprintf("You averaged %.1f hours of study over the last %d days. "+
				"Schedule a lighter day to recover before pushing on.",
				avgStudy, len(in.History)),
			Priority: PriorityMedium,
			Category: CategoryStudy,
		})
	}
	return suggestions
}

// Encouragement is returned when no rule fires.
var Encouragement = []Suggestion{
	{
		Title:       "Keep up your healthy routine",
		Description: "Your sleep, study, breaks and screen time are all in a healthy range. Keep the same rhythm.",
		Priority:    PriorityLow,
		Category:    CategoryComposite,
	},
	{
		Title:       "Plan tomorrow's study blocks",
		Description: "Decide tonight what you will study tomorrow and when, so you start focused.",
		Priority:    PriorityLow,
		Category:    CategoryStudy,
	},
	{
		Title:       "Protect your sleep schedule",
		Description: "Going to bed and waking up at the same time every day keeps your sleep effective.",
		Priority:    PriorityLow,
		Category:    CategorySleep,
	},
}
