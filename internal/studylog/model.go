// Package studylog persists daily study logs and the burnout predictions made for them.
package studylog

import (
	"errors"
	"time"

	"github.com/at-ishikawa/learnsmart/internal/burnout"
	"github.com/at-ishikawa/learnsmart/internal/score"
	"github.com/at-ishikawa/learnsmart/internal/study"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// StudyLog is a stored study record. (UserID, StudyDate) is unique.
type StudyLog struct {
	ID         int64     `db:"id" json:"id" yaml:"id,omitempty"`
	UserID     int64     `db:"user_id" json:"user_id" yaml:"user_id"`
	StudyDate  time.Time `db:"study_date" json:"study_date" yaml:"study_date"`
	StudyHours float64   `db:"study_hours" json:"study_hours" yaml:"study_hours"`
	SleepHours float64   `db:"sleep_hours" json:"sleep_hours" yaml:"sleep_hours"`
	BreakTime  float64   `db:"break_time" json:"break_time" yaml:"break_time"`
	ScreenTime float64   `db:"screen_time" json:"screen_time" yaml:"screen_time"`
	MoodLevel  string    `db:"mood_level" json:"mood_level" yaml:"mood_level"`
	CreatedAt  time.Time `db:"created_at" json:"created_at" yaml:"created_at,omitempty"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at" yaml:"updated_at,omitempty"`
}

// FromRecord converts a record into a log row. The date is truncated to a UTC calendar date.
func FromRecord(record study.StudyRecord) StudyLog {
	return StudyLog{
		UserID:     record.UserID,
		StudyDate:  study.NewDate(record.StudyDate),
		StudyHours: record.StudyHours,
		SleepHours: record.SleepHours,
		BreakTime:  record.BreakTime,
		ScreenTime: record.ScreenTime,
		MoodLevel:  string(record.Mood),
	}
}

// Record converts the row back into a study record.
func (l StudyLog) Record() study.StudyRecord {
	return study.StudyRecord{
		UserID:     l.UserID,
		StudyDate:  study.NewDate(l.StudyDate),
		StudyHours: l.StudyHours,
		SleepHours: l.SleepHours,
		BreakTime:  l.BreakTime,
		ScreenTime: l.ScreenTime,
		Mood:       study.MoodLevel(l.MoodLevel),
	}
}

// Records converts rows into study records, keeping their order.
func Records(logs []StudyLog) []study.StudyRecord {
	records := make([]study.StudyRecord, len(logs))
	for i, l := range logs {
		records[i] = l.Record()
	}
	return records
}

// Prediction is a stored burnout prediction for one user and date.
type Prediction struct {
	ID                int64     `db:"id" json:"id"`
	UserID            int64     `db:"user_id" json:"user_id"`
	StudyDate         time.Time `db:"study_date" json:"study_date"`
	ProductivityScore int       `db:"productivity_score" json:"productivity_score"`
	RiskLevel         string    `db:"risk_level" json:"risk_level"`
	Confidence        float64   `db:"confidence" json:"confidence"`
	Source            string    `db:"source" json:"source"`
	RuleName          string    `db:"rule_name" json:"rule_name,omitempty"`
	Degraded          bool      `db:"degraded" json:"degraded"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

// PredictionOf builds the row stored for an evaluated record.
func PredictionOf(record study.StudyRecord, productivity score.ProductivityScore, prediction burnout.Prediction) Prediction {
	return Prediction{
		UserID:            record.UserID,
		StudyDate:         study.NewDate(record.StudyDate),
		ProductivityScore: productivity.Total,
		RiskLevel:         string(prediction.RiskLevel),
		Confidence:        prediction.Confidence,
		Source:            string(prediction.Source),
		RuleName:          prediction.Rule,
		Degraded:          prediction.Degraded,
	}
}
