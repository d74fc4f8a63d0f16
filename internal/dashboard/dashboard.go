// Package dashboard aggregates a user's recent study logs into chart series and summary statistics.
package dashboard

import (
	"math"
	"slices"

	"github.com/at-ishikawa/learnsmart/internal/burnout"
	"github.com/at-ishikawa/learnsmart/internal/score"
	"github.com/at-ishikawa/learnsmart/internal/study"
	"github.com/at-ishikawa/learnsmart/internal/studylog"
)

// Window sizes of the chart series and the summary.
const (
	WeeklyDays      = 7
	SleepWindowDays = 14
	HistoryLimit    = 30
)

// WeeklyStudy is the study hours of the most recent days, oldest first.
type WeeklyStudy struct {
	Dates      []string  `json:"dates"`
	StudyHours []float64 `json:"study_hours"`
}

// SleepProductivity pairs sleep hours with the recomputed productivity score, oldest first.
type SleepProductivity struct {
	Dates              []string  `json:"dates"`
	SleepHours         []float64 `json:"sleep_hours"`
	ProductivityScores []int     `json:"productivity_scores"`
}

// FieldStats holds descriptive statistics of one field. StdDev is the population standard deviation.
type FieldStats struct {
	Mean   float64 `json:"mean"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	StdDev float64 `json:"std_dev"`
}

type Summary struct {
	Days         int                       `json:"days"`
	StudyHours   FieldStats                `json:"study_hours"`
	SleepHours   FieldStats                `json:"sleep_hours"`
	BreakTime    FieldStats                `json:"break_time"`
	ScreenTime   FieldStats                `json:"screen_time"`
	Productivity FieldStats                `json:"productivity"`
	MoodCounts   map[study.MoodLevel]int   `json:"mood_counts"`
	RiskCounts   map[burnout.RiskLevel]int `json:"risk_counts"`
}

// Dashboard is everything the dashboard view shows.
type Dashboard struct {
	Weekly              WeeklyStudy       `json:"weekly_study_hours"`
	SleepVsProductivity SleepProductivity `json:"sleep_vs_productivity"`
	Summary             Summary           `json:"summary"`
}

// Build computes the dashboard from logs and predictions in any order.
func Build(logs []studylog.StudyLog, predictions []studylog.Prediction) Dashboard {
	records := sortedRecords(logs)
	return Dashboard{
		Weekly:              WeeklyStudyHours(records),
		SleepVsProductivity: SleepVsProductivity(records),
		Summary:             Summarize(records, predictions),
	}
}

func sortedRecords(logs []studylog.StudyLog) []study.StudyRecord {
	records := studylog.Records(logs)
	slices.SortStableFunc(records, func(a, b study.StudyRecord) int {
		return a.StudyDate.Compare(b.StudyDate)
	})
	return records
}

func lastN(records []study.StudyRecord, n int) []study.StudyRecord {
	if len(records) <= n {
		return records
	}
	return records[len(records)-n:]
}

// WeeklyStudyHours returns the last WeeklyDays entries of records, which must be oldest first.
func WeeklyStudyHours(records []study.StudyRecord) WeeklyStudy {
	recent := lastN(records, WeeklyDays)
	weekly := WeeklyStudy{
		Dates:      make([]string, 0, len(recent)),
		StudyHours: make([]float64, 0, len(recent)),
	}
	for _, r := range recent {
		weekly.Dates = append(weekly.Dates, r.StudyDate.Format(study.DateLayout))
		weekly.StudyHours = append(weekly.StudyHours, r.StudyHours)
	}
	return weekly
}

// SleepVsProductivity returns the last SleepWindowDays entries of records, which must be oldest first.
// Scores are recomputed from the stored hours.
func SleepVsProductivity(records []study.StudyRecord) SleepProductivity {
	recent := lastN(records, SleepWindowDays)
	series := SleepProductivity{
		Dates:              make([]string, 0, len(recent)),
		SleepHours:         make([]float64, 0, len(recent)),
		ProductivityScores: make([]int, 0, len(recent)),
	}
	for _, r := range recent {
		series.Dates = append(series.Dates, r.StudyDate.Format(study.DateLayout))
		series.SleepHours = append(series.SleepHours, r.SleepHours)
		series.ProductivityScores = append(series.ProductivityScores, score.Compute(r).Total)
	}
	return series
}

// Summarize computes per-field statistics over records and counts the predicted risk levels.
func Summarize(records []study.StudyRecord, predictions []studylog.Prediction) Summary {
	summary := Summary{
		Days:       len(records),
		MoodCounts: make(map[study.MoodLevel]int),
		RiskCounts: make(map[burnout.RiskLevel]int),
	}
	if len(records) > 0 {
		var studyHours, sleepHours, breakTime, screenTime, productivity []float64
		for _, r := range records {
			studyHours = append(studyHours, r.StudyHours)
			sleepHours = append(sleepHours, r.SleepHours)
			breakTime = append(breakTime, r.BreakTime)
			screenTime = append(screenTime, r.ScreenTime)
			productivity = append(productivity, float64(score.Compute(r).Total))
			summary.MoodCounts[r.Mood]++
		}
		summary.StudyHours = statsOf(studyHours)
		summary.SleepHours = statsOf(sleepHours)
		summary.BreakTime = statsOf(breakTime)
		summary.ScreenTime = statsOf(screenTime)
		summary.Productivity = statsOf(productivity)
	}

	for _, p := range predictions {
		level, err := burnout.ParseRiskLevel(p.RiskLevel)
		if err != nil {
			continue
		}
		summary.RiskCounts[level]++
	}
	return summary
}

func statsOf(values []float64) FieldStats {
	if len(values) == 0 {
		return FieldStats{}
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var squares float64
	for _, v := range values {
		squares += (v - mean) * (v - mean)
	}
	return FieldStats{
		Mean:   round2(mean),
		Min:    slices.Min(values),
		Max:    slices.Max(values),
		StdDev: round2(math.Sqrt(squares / float64(len(values)))),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
