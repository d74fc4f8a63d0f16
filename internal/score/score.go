// Package score computes the deterministic productivity score of a study record.
package score

import (
	"math"

	"github.com/at-ishikawa/learnsmart/internal/study"
)

// Component weights. They sum to MaxTotal.
const (
	WeightStudy  = 30.0
	WeightSleep  = 30.0
	WeightBreak  = 20.0
	WeightScreen = 20.0

	MaxTotal = 100
)

// Knot is one point of a piecewise-linear profile: at Hours the component earns
// Fraction of its weight.
type Knot struct {
	Hours    float64
	Fraction float64
}

// Profile is a bell-shaped curve described by knots sorted by Hours.
// Values between knots are interpolated linearly; values beyond the last knot
// keep the last fraction.
type Profile []Knot

// Optimal ranges: study 4-8h (peak 6h), sleep 7-9h (peak 8h), break 1-3h (peak 2h),
// screen up to 8h. Slopes steepen past the penalty breakpoints.
var (
	StudyProfile = Profile{
		{0, 0}, {2, 0.5}, {4, 0.8}, {6, 1}, {8, 0.8}, {10, 0.5}, {12, 0},
	}
	SleepProfile = Profile{
		{0, 0}, {3, 0}, {5, 0.6}, {7, 0.9}, {8, 1}, {9, 0.9}, {11, 0.6}, {14, 0},
	}
	BreakProfile = Profile{
		{0, 0}, {0.5, 0.5}, {1, 0.8}, {2, 1}, {3, 0.8}, {4, 0.6}, {6, 0},
	}
	ScreenProfile = Profile{
		{0, 1}, {8, 1}, {10, 0.6}, {12, 0},
	}
)

// Fraction returns the profile value at hours, in [0, 1].
func (p Profile) Fraction(hours float64) float64 {
	if len(p) == 0 || math.IsNaN(hours) {
		return 0
	}
	if hours <= p[0].Hours {
		return clamp(p[0].Fraction, 0, 1)
	}
	for i := 1; i < len(p); i++ {
		lo, hi := p[i-1], p[i]
		if hours > hi.Hours {
			continue
		}
		t := (hours - lo.Hours) / (hi.Hours - lo.Hours)
		return clamp(lo.Fraction+t*(hi.Fraction-lo.Fraction), 0, 1)
	}
	return clamp(p[len(p)-1].Fraction, 0, 1)
}

// ProductivityScore is the score breakdown of one record.
// Total always equals the clamped, rounded sum of the four components.
type ProductivityScore struct {
	Study  float64 `json:"study"`
	Sleep  float64 `json:"sleep"`
	Break  float64 `json:"break"`
	Screen float64 `json:"screen"`
	Total  int     `json:"total"`
}

// Compute scores a record. It is pure and never fails; inputs are expected to have
// passed study.Validate.
func Compute(record study.StudyRecord) ProductivityScore {
	s := ProductivityScore{
		Study:  component(StudyProfile, record.StudyHours, WeightStudy),
		Sleep:  component(SleepProfile, record.SleepHours, WeightSleep),
		Break:  component(BreakProfile, record.BreakTime, WeightBreak),
		Screen: component(ScreenProfile, record.ScreenTime, WeightScreen),
	}
	s.Total = TotalOf(s.Study, s.Sleep, s.Break, s.Screen)
	return s
}

// TotalOf sums component scores, rounds to an integer and clamps it to [0, MaxTotal].
func TotalOf(components ...float64) int {
	var sum float64
	for _, c := range components {
		sum += c
	}
	return int(clamp(math.Round(sum), 0, MaxTotal))
}

func component(profile Profile, hours, weight float64) float64 {
	value := clamp(profile.Fraction(hours)*weight, 0, weight)
	return math.Round(value*10) / 10
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
