package server

import (
	"time"

	"github.com/at-ishikawa/learnsmart/internal/analytics"
	"github.com/at-ishikawa/learnsmart/internal/dashboard"
	"github.com/at-ishikawa/learnsmart/internal/study"
	"github.com/at-ishikawa/learnsmart/internal/studylog"
)

// Record is the wire form of a study record. StudyDate uses study.DateLayout.
type Record struct {
	StudyDate  string  `json:"study_date,omitempty"`
	StudyHours float64 `json:"study_hours"`
	SleepHours float64 `json:"sleep_hours"`
	BreakTime  float64 `json:"break_time"`
	ScreenTime float64 `json:"screen_time"`
	MoodLevel  string  `json:"mood_level"`
}

// toStudyRecord converts the message. An empty date means today in UTC.
// Mood levels are matched case-insensitively; unknown ones are left for validation.
func (r Record) toStudyRecord(userID int64, now time.Time) (study.StudyRecord, error) {
	date := study.NewDate(now)
	if r.StudyDate != "" {
		parsed, err := study.ParseDate(r.StudyDate)
		if err != nil {
			return study.StudyRecord{}, &study.ValidationError{Violations: []study.FieldViolation{{
				Field:       "study_date",
				Description: "study_date must be a date in YYYY-MM-DD format",
			}}}
		}
		date = parsed
	}

	mood := study.MoodLevel(r.MoodLevel)
	if parsed, err := study.ParseMoodLevel(r.MoodLevel); err == nil {
		mood = parsed
	}
	return study.StudyRecord{
		UserID:     userID,
		StudyDate:  date,
		StudyHours: r.StudyHours,
		SleepHours: r.SleepHours,
		BreakTime:  r.BreakTime,
		ScreenTime: r.ScreenTime,
		Mood:       mood,
	}, nil
}

type EvaluateRequest struct {
	Record Record `json:"record"`
	// History holds the preceding days, oldest first.
	History []Record `json:"history,omitempty"`
}

type EvaluateResponse struct {
	Result analytics.Result `json:"result"`
}

type SubmitStudyLogRequest struct {
	UserID int64  `json:"user_id"`
	Record Record `json:"record"`
}

type SubmitStudyLogResponse struct {
	Log    studylog.StudyLog `json:"log"`
	Result analytics.Result  `json:"result"`
}

type ListStudyLogsRequest struct {
	UserID int64 `json:"user_id"`
	Limit  int   `json:"limit,omitempty"`
}

type ListStudyLogsResponse struct {
	Logs []studylog.StudyLog `json:"logs"`
}

type GetStudyLogRequest struct {
	UserID int64 `json:"user_id"`
	ID     int64 `json:"id"`
}

type GetStudyLogResponse struct {
	Log studylog.StudyLog `json:"log"`
}

type UpdateStudyLogRequest struct {
	UserID int64  `json:"user_id"`
	ID     int64  `json:"id"`
	Record Record `json:"record"`
}

type UpdateStudyLogResponse struct {
	Log    studylog.StudyLog `json:"log"`
	Result analytics.Result  `json:"result"`
}

type DeleteStudyLogRequest struct {
	UserID int64 `json:"user_id"`
	ID     int64 `json:"id"`
}

type DeleteStudyLogResponse struct{}

type ListPredictionsRequest struct {
	UserID int64 `json:"user_id"`
	Limit  int   `json:"limit,omitempty"`
}

type ListPredictionsResponse struct {
	Predictions []studylog.Prediction `json:"predictions"`
}

type GetDashboardRequest struct {
	UserID int64 `json:"user_id"`
}

type GetDashboardResponse struct {
	Dashboard dashboard.Dashboard `json:"dashboard"`
	Cached    bool                `json:"cached"`
}
