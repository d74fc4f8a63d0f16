package dataset

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/learnsmart/internal/burnout"
	"github.com/at-ishikawa/learnsmart/internal/classifier"
	"github.com/at-ishikawa/learnsmart/internal/study"
)

func TestGenerate(t *testing.T) {
	rows := Generate(DefaultOptions())
	require.Len(t, rows, 500)

	counts := make(map[burnout.RiskLevel]int)
	for _, r := range rows {
		assert.GreaterOrEqual(t, r.StudyHours, minStudyHours)
		assert.LessOrEqual(t, r.StudyHours, maxStudyHours)
		assert.GreaterOrEqual(t, r.SleepHours, minSleepHours)
		assert.LessOrEqual(t, r.SleepHours, maxSleepHours)
		assert.GreaterOrEqual(t, r.BreakTime, minBreakTime)
		assert.LessOrEqual(t, r.BreakTime, maxBreakTime)
		assert.GreaterOrEqual(t, r.ScreenTime, minScreenTime)
		assert.LessOrEqual(t, r.ScreenTime, maxScreenTime)
		assert.GreaterOrEqual(t, r.MoodScore, minMoodScore)
		assert.LessOrEqual(t, r.MoodScore, maxMoodScore)

		score := BurnoutScore(r.StudyHours, r.SleepHours, r.BreakTime, r.ScreenTime)
		assert.Equal(t, RiskOf(score, r.MoodScore), r.Risk)
		counts[r.Risk]++
	}
	for _, level := range burnout.AllRiskLevels {
		assert.Positive(t, counts[level], "no %s rows", level)
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	opts := Options{Samples: 50, Seed: 7}
	assert.Equal(t, Generate(opts), Generate(opts))
	assert.NotEqual(t, Generate(opts), Generate(Options{Samples: 50, Seed: 8}))
	assert.Empty(t, Generate(Options{Samples: 0, Seed: 7}))
}

func TestBurnoutScore(t *testing.T) {
	tests := []struct {
		name                                   string
		studyHours, sleepHours, breaks, screen float64
		want                                   int
	}{
		{name: "balanced day", studyHours: 5, sleepHours: 8, breaks: 2, screen: 6, want: 0},
		{name: "overworked day", studyHours: 10.5, sleepHours: 4.5, breaks: 0.3, screen: 11, want: 9},
		{name: "moderate excess", studyHours: 7, sleepHours: 6.5, breaks: 0.8, screen: 9, want: 5},
		{name: "too little study and oversleeping", studyHours: 2, sleepHours: 10.5, breaks: 4.5, screen: 3, want: 3},
		{name: "boundaries are not penalized", studyHours: 6, sleepHours: 7, breaks: 1, screen: 8, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BurnoutScore(tt.studyHours, tt.sleepHours, tt.breaks, tt.screen))
		})
	}
}

func TestRiskOf(t *testing.T) {
	tests := []struct {
		score, mood int
		want        burnout.RiskLevel
	}{
		{score: 0, mood: 8, want: burnout.RiskLow},
		{score: 3, mood: 2, want: burnout.RiskMedium},
		{score: 4, mood: 5, want: burnout.RiskMedium},
		{score: 6, mood: 1, want: burnout.RiskMedium},
		{score: 7, mood: 3, want: burnout.RiskHigh},
		{score: 9, mood: 9, want: burnout.RiskMedium},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RiskOf(tt.score, tt.mood), "score %d mood %d", tt.score, tt.mood)
	}
}

func TestSamples(t *testing.T) {
	rows := []Row{{StudyHours: 4, SleepHours: 7, BreakTime: 1, ScreenTime: 8, MoodScore: 6, Risk: burnout.RiskMedium}}
	assert.Equal(t, []classifier.Sample{{
		Features: classifier.Features{4, 7, 1, 8, 6},
		Label:    "Medium",
	}}, Samples(rows))
}

func TestCSV_RoundTrip(t *testing.T) {
	rows := Generate(Options{Samples: 20, Seed: 1})
	path := filepath.Join(t.TempDir(), "data", "burnout_dataset.csv")

	require.NoError(t, Save(path, rows))
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, rows, got)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, []Row{
		{StudyHours: 10.5, SleepHours: 4, BreakTime: 0.3, ScreenTime: 9, MoodScore: 2, Risk: burnout.RiskHigh},
	}))
	assert.Equal(t, "study_hours,sleep_hours,break_time,screen_time,mood_score,burnout_risk\n10.5,4,0.3,9,2,High\n", buf.String())
}

func TestReadCSV_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "empty", content: ""},
		{name: "wrong header", content: "a,b,c,d,e,f\n1,2,3,4,5,Low\n"},
		{name: "bad number", content: "study_hours,sleep_hours,break_time,screen_time,mood_score,burnout_risk\nx,7,1,8,6,Low\n"},
		{name: "bad mood score", content: "study_hours,sleep_hours,break_time,screen_time,mood_score,burnout_risk\n4,7,1,8,six,Low\n"},
		{name: "bad risk", content: "study_hours,sleep_hours,break_time,screen_time,mood_score,burnout_risk\n4,7,1,8,6,Severe\n"},
		{name: "missing column", content: "study_hours,sleep_hours,break_time,screen_time,mood_score,burnout_risk\n4,7,1,8,6\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.content))
			assert.Error(t, err)
		})
	}
}

func TestReadRecordsCSV(t *testing.T) {
	content := `study_date,study_hours,sleep_hours,break_time,screen_time,mood_level
2025-03-01,10.5,4.5,0.3,9,Low
2025-03-02, 6, 8, 2, 5, high
`
	got, err := ReadRecordsCSV(strings.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, []study.StudyRecord{
		{StudyDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), StudyHours: 10.5, SleepHours: 4.5, BreakTime: 0.3, ScreenTime: 9, Mood: study.MoodLow},
		{StudyDate: time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC), StudyHours: 6, SleepHours: 8, BreakTime: 2, ScreenTime: 5, Mood: study.MoodHigh},
	}, got)

	_, err = ReadRecordsCSV(strings.NewReader("study_date,study_hours,sleep_hours,break_time,screen_time,mood_level\n2025-03-01,4,7,1,8,Ecstatic\n"))
	assert.Error(t, err)
	_, err = ReadRecordsCSV(strings.NewReader("study_date,study_hours,sleep_hours,break_time,screen_time,mood_level\n03/01/2025,4,7,1,8,Low\n"))
	assert.Error(t, err)
}
