// Package study defines the daily study-habit record and its boundary validation.
package study

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar date format used across the API, CSV and YAML files.
const DateLayout = "2006-01-02"

// MaxHours is the upper bound of every hour field in a record.
const MaxHours = 24.0

// MoodLevel is the self-reported mood of the day.
type MoodLevel string

const (
	MoodLow    MoodLevel = "Low"
	MoodMedium MoodLevel = "Medium"
	MoodHigh   MoodLevel = "High"
)

// Numeric mood scores fed to the classifier, on a 0-10 scale.
const (
	MoodScoreLow    = 3
	MoodScoreMedium = 6
	MoodScoreHigh   = 9
)

// AllMoodLevels lists the accepted mood levels in ascending order.
var AllMoodLevels = []MoodLevel{MoodLow, MoodMedium, MoodHigh}

// Score returns the numeric mood score. The second value is false for an unknown level.
func (m MoodLevel) Score() (int, bool) {
	switch m {
	case MoodLow:
		return MoodScoreLow, true
	case MoodMedium:
		return MoodScoreMedium, true
	case MoodHigh:
		return MoodScoreHigh, true
	}
	return 0, false
}

func (m MoodLevel) String() string {
	return string(m)
}

// ParseMoodLevel parses a mood level case-insensitively.
func ParseMoodLevel(s string) (MoodLevel, error) {
	for _, level := range AllMoodLevels {
		if strings.EqualFold(strings.TrimSpace(s), string(level)) {
			return level, nil
		}
	}
	return "", fmt.Errorf("invalid mood level %q: must be one of %v", s, AllMoodLevels)
}

// StudyRecord is one user's self-reported study habits for one calendar date.
// Uniqueness of (UserID, StudyDate) is the caller's concern.
type StudyRecord struct {
	UserID     int64     `json:"user_id,omitempty" yaml:"user_id,omitempty"`
	StudyDate  time.Time `json:"study_date" yaml:"study_date"`
	StudyHours float64   `json:"study_hours" yaml:"study_hours" validate:"gte=0,lte=24"`
	SleepHours float64   `json:"sleep_hours" yaml:"sleep_hours" validate:"gte=0,lte=24"`
	BreakTime  float64   `json:"break_time" yaml:"break_time" validate:"gte=0,lte=24"`
	ScreenTime float64   `json:"screen_time" yaml:"screen_time" validate:"gte=0,lte=24"`
	Mood       MoodLevel `json:"mood_level" yaml:"mood_level" validate:"oneof=Low Medium High"`
}

// MoodScore returns the numeric score of the record's mood, or 0 for an unknown level.
func (r StudyRecord) MoodScore() int {
	score, _ := r.Mood.Score()
	return score
}

// NewDate truncates t to a UTC calendar date.
func NewDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a date in DateLayout.
func ParseDate(s string) (time.Time, error) {
	date, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse study date %q: %w", s, err)
	}
	return date, nil
}
