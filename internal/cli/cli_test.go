package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/learnsmart/internal/analytics"
	"github.com/at-ishikawa/learnsmart/internal/burnout"
	"github.com/at-ishikawa/learnsmart/internal/classifier"
	"github.com/at-ishikawa/learnsmart/internal/dashboard"
	"github.com/at-ishikawa/learnsmart/internal/study"
	"github.com/at-ishikawa/learnsmart/internal/studylog"
	"github.com/at-ishikawa/learnsmart/internal/suggest"
)

func newEngine(t *testing.T) *analytics.Engine {
	t.Helper()
	engine, err := analytics.NewEngine(nil)
	require.NoError(t, err)
	return engine
}

var overworked = study.StudyRecord{
	StudyDate:  time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
	StudyHours: 10.5,
	SleepHours: 4.5,
	BreakTime:  0.3,
	ScreenTime: 9,
	Mood:       study.MoodLow,
}

func titles(suggestions []suggest.Suggestion) []string {
	out := make([]string, len(suggestions))
	for i, s := range suggestions {
		out[i] = s.Title
	}
	return out
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "", want: FormatAuto},
		{in: "auto", want: FormatAuto},
		{in: "text", want: FormatText},
		{in: "json", want: FormatJSON},
		{in: "yaml", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewPrinter(t *testing.T) {
	var buf bytes.Buffer
	assert.False(t, IsTerminal(&buf))
	assert.Equal(t, FormatJSON, NewPrinter(&buf, FormatAuto).Format())
	assert.Equal(t, FormatText, NewPrinter(&buf, FormatText).Format())
}

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, FormatText)
	tbl := newTable("A", "LONG")
	tbl.addRow("xyz", "1")
	tbl.addRow("b")

	assert.Equal(t, "A    LONG\n───  ────\nxyz  1   \nb        \n", tbl.render(p))
	assert.Empty(t, newTable().render(p))
}

func TestPrinter_PrintResult(t *testing.T) {
	result, err := newEngine(t).Evaluate(overworked)
	require.NoError(t, err)

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewPrinter(&buf, FormatText).PrintResult(overworked, result))

		out := buf.String()
		assert.Contains(t, out, "Productivity score: 47/100\n")
		assert.Contains(t, out, "Burnout risk: High (")
		assert.Contains(t, out, "rule "+burnout.RuleOverstudyUndersleep)
		assert.Contains(t, out, "  Studying 10.5 hours on 4.5 hours of sleep: ")
		assert.Contains(t, out, "  [High] Increase sleep hours\n")
		assert.NotContains(t, out, "\x1b[")
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewPrinter(&buf, FormatJSON).PrintResult(overworked, result))

		var got Evaluation
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		require.NotNil(t, got.Result)
		assert.Equal(t, 47, got.Result.Score.Total)
		assert.Equal(t, burnout.RiskHigh, got.Result.Prediction.RiskLevel)
		assert.Empty(t, got.Error)
	})

	t.Run("degraded model is mentioned", func(t *testing.T) {
		healthy := study.StudyRecord{StudyHours: 6, SleepHours: 8, BreakTime: 2, ScreenTime: 5, Mood: study.MoodHigh}
		result, err := newEngine(t).Evaluate(healthy)
		require.NoError(t, err)

		var buf bytes.Buffer
		require.NoError(t, NewPrinter(&buf, FormatText).PrintResult(healthy, result))
		assert.Contains(t, buf.String(), "burnout model unavailable")
	})
}

const recordsCSV = `study_date,study_hours,sleep_hours,break_time,screen_time,mood_level
2025-03-04,6,8,2,5,High
2025-03-02,6,5,1,6,Medium
2025-03-05,30,8,2,5,High
2025-03-01,6,5,1,6,Medium
2025-03-03,6,5,1,6,Medium
`

func TestRunEvaluateFile(t *testing.T) {
	t.Run("evaluates every record in date order", func(t *testing.T) {
		evaluations, err := RunEvaluateFile(context.Background(), newEngine(t), strings.NewReader(recordsCSV), 2)
		require.NoError(t, err)
		require.Len(t, evaluations, 5)

		var dates []string
		for _, e := range evaluations {
			dates = append(dates, e.Record.StudyDate.Format(study.DateLayout))
		}
		assert.Equal(t, []string{"2025-03-01", "2025-03-02", "2025-03-03", "2025-03-04", "2025-03-05"}, dates)

		for _, e := range evaluations[:4] {
			require.NotNil(t, e.Result)
			assert.Empty(t, e.Error)
		}
		assert.NotContains(t, titles(evaluations[2].Result.Suggestions), "Recover your sleep debt")
		assert.Contains(t, titles(evaluations[3].Result.Suggestions), "Recover your sleep debt")
		assert.Equal(t, 100, evaluations[3].Result.Score.Total)

		assert.Nil(t, evaluations[4].Result)
		assert.Contains(t, evaluations[4].Error, "study_hours")
	})

	t.Run("malformed file", func(t *testing.T) {
		_, err := RunEvaluateFile(context.Background(), newEngine(t), strings.NewReader("date,hours\n"), 1)
		assert.ErrorContains(t, err, "read records")
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := RunEvaluateFile(ctx, newEngine(t), strings.NewReader(recordsCSV), 1)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestPrinter_PrintEvaluations(t *testing.T) {
	evaluations, err := RunEvaluateFile(context.Background(), newEngine(t), strings.NewReader(recordsCSV), DefaultConcurrency)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf, FormatText).PrintEvaluations(evaluations))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 7)
	assert.True(t, strings.HasPrefix(lines[0], "DATE"))
	assert.True(t, strings.HasPrefix(lines[5], "2025-03-04  100"))
	assert.Contains(t, lines[6], "invalid: ")

	buf.Reset()
	require.NoError(t, NewPrinter(&buf, FormatJSON).PrintEvaluations(evaluations))
	var decoded []Evaluation
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Len(t, decoded, 5)
}

func testDashboard() dashboard.Dashboard {
	day := func(d int) time.Time { return time.Date(2025, 3, d, 0, 0, 0, 0, time.UTC) }
	logs := []studylog.StudyLog{
		{StudyDate: day(1), StudyHours: 6, SleepHours: 8, BreakTime: 2, ScreenTime: 5, MoodLevel: "High"},
		{StudyDate: day(2), StudyHours: 4, SleepHours: 7, BreakTime: 1, ScreenTime: 8, MoodLevel: "Medium"},
		{StudyDate: day(3), StudyHours: 10.5, SleepHours: 4.5, BreakTime: 0.3, ScreenTime: 9, MoodLevel: "Low"},
	}
	predictions := []studylog.Prediction{
		{StudyDate: day(3), RiskLevel: "High"},
	}
	return dashboard.Build(logs, predictions)
}

func TestPrinter_PrintDashboard(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf, FormatText).PrintDashboard(7, testDashboard()))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "Study report for user 7 (3 days)\n\n"))
	assert.Contains(t, out, "2025-03-03  10.5")
	assert.Contains(t, out, "2025-03-03  4.5          47")
	assert.Contains(t, out, "High    1")

	buf.Reset()
	require.NoError(t, NewPrinter(&buf, FormatJSON).PrintDashboard(7, testDashboard()))
	var decoded dashboard.Dashboard
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 3, decoded.Summary.Days)
}

func TestReportMarkdown(t *testing.T) {
	got := ReportMarkdown(7, testDashboard())

	assert.True(t, strings.HasPrefix(got, "# Study report for user 7\n\n3 days recorded.\n"))
	assert.Contains(t, got, "| 2025-03-01 | 6 |\n")
	assert.Contains(t, got, "| 2025-03-03 | 4.5 | 47 |\n")
	assert.Contains(t, got, "| Productivity | 78 | 47 | 100 | 22.55 |\n")
	assert.Contains(t, got, "## Burnout risk\n\n- Low: 0\n- Medium: 0\n- High: 1\n")
	assert.Contains(t, got, "- Low: 1\n- Medium: 1\n- High: 1\n")
}

func TestPrinter_PrintMetrics(t *testing.T) {
	metrics := classifier.Metrics{
		Samples:   4,
		Accuracy:  0.75,
		Classes:   []string{"High", "Low"},
		Confusion: [][]int{{2, 0}, {1, 1}},
	}

	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf, FormatText).PrintMetrics(metrics))
	assert.Equal(t, "Accuracy: 75.00% over 4 samples\n\n"+
		"ACTUAL \\ PREDICTED  High  Low\n"+
		"──────────────────  ────  ───\n"+
		"High                2     0  \n"+
		"Low                 1     1  \n", buf.String())
}
