// Package dataset generates, reads and writes the labeled burnout training data.
package dataset

import (
	"math"
	"math/rand/v2"

	"github.com/at-ishikawa/learnsmart/internal/burnout"
	"github.com/at-ishikawa/learnsmart/internal/classifier"
)

// Row is one labeled day. MoodScore is on a 1-10 scale.
type Row struct {
	StudyHours float64
	SleepHours float64
	BreakTime  float64
	ScreenTime float64
	MoodScore  int
	Risk       burnout.RiskLevel
}

// Sample converts the row into a training sample.
func (r Row) Sample() classifier.Sample {
	return classifier.Sample{
		Features: classifier.Features{r.StudyHours, r.SleepHours, r.BreakTime, r.ScreenTime, float64(r.MoodScore)},
		Label:    string(r.Risk),
	}
}

// Samples converts rows into training samples.
func Samples(rows []Row) []classifier.Sample {
	samples := make([]classifier.Sample, len(rows))
	for i, r := range rows {
		samples[i] = r.Sample()
	}
	return samples
}

type Options struct {
	Samples int
	Seed    uint64
}

func DefaultOptions() Options {
	return Options{Samples: 500, Seed: 42}
}

// Sampling ranges of the generated features, in hours.
const (
	minStudyHours, maxStudyHours   = 2.0, 12.0
	minSleepHours, maxSleepHours   = 4.0, 11.0
	minBreakTime, maxBreakTime     = 0.0, 5.0
	minScreenTime, maxScreenTime   = 2.0, 14.0
	minMoodScore, maxMoodScore     = 1, 10
	highRiskScore, mediumRiskScore = 7, 4
)

// Generate returns opts.Samples shuffled rows. The same options always produce the same rows.
func Generate(opts Options) []Row {
	r := rand.New(rand.NewPCG(opts.Seed, opts.Seed))
	uniform := func(lo, hi float64) float64 {
		return math.Round((lo+r.Float64()*(hi-lo))*10) / 10
	}
	intn := func(lo, hi int) int {
		return lo + r.IntN(hi-lo+1)
	}

	rows := make([]Row, 0, opts.Samples)
	for range opts.Samples {
		row := Row{
			StudyHours: uniform(minStudyHours, maxStudyHours),
			SleepHours: uniform(minSleepHours, maxSleepHours),
			BreakTime:  uniform(minBreakTime, maxBreakTime),
			ScreenTime: uniform(minScreenTime, maxScreenTime),
		}
		score := BurnoutScore(row.StudyHours, row.SleepHours, row.BreakTime, row.ScreenTime)

		var mood int
		switch {
		case score >= 6:
			mood = intn(1, 4)
		case score >= 4:
			mood = intn(3, 6)
		default:
			mood = intn(5, 10)
		}
		row.MoodScore = max(minMoodScore, min(maxMoodScore, mood+intn(-1, 1)))
		row.Risk = RiskOf(score, row.MoodScore)
		rows = append(rows, row)
	}

	r.Shuffle(len(rows), func(i, j int) {
		rows[i], rows[j] = rows[j], rows[i]
	})
	return rows
}

// BurnoutScore adds up the burnout points of a day. Both too little and too much of a habit count.
func BurnoutScore(studyHours, sleepHours, breakTime, screenTime float64) int {
	var score int
	switch {
	case studyHours > 8:
		score += 2
	case studyHours > 6, studyHours < 3:
		score++
	}
	switch {
	case sleepHours < 6:
		score += 3
	case sleepHours < 7:
		score += 2
	case sleepHours > 10:
		score++
	}
	switch {
	case breakTime < 0.5:
		score += 2
	case breakTime < 1, breakTime > 4:
		score++
	}
	switch {
	case screenTime > 10:
		score += 2
	case screenTime > 8:
		score++
	}
	return score
}

// RiskOf labels a burnout score. A very low mood lifts Low to Medium and a very high mood
// lowers High to Medium.
func RiskOf(score, moodScore int) burnout.RiskLevel {
	risk := burnout.RiskLow
	switch {
	case score >= highRiskScore:
		risk = burnout.RiskHigh
	case score >= mediumRiskScore:
		risk = burnout.RiskMedium
	}

	switch {
	case moodScore <= 2 && risk == burnout.RiskLow:
		return burnout.RiskMedium
	case moodScore >= 9 && risk == burnout.RiskHigh:
		return burnout.RiskMedium
	}
	return risk
}
