package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/learnsmart/internal/burnout"
	"github.com/at-ishikawa/learnsmart/internal/classifier"
	"github.com/at-ishikawa/learnsmart/internal/cli"
	"github.com/at-ishikawa/learnsmart/internal/datasync"
	"github.com/at-ishikawa/learnsmart/internal/study"
	"github.com/at-ishikawa/learnsmart/internal/studylog"
	"github.com/at-ishikawa/learnsmart/internal/testutil"
)

// execute runs the root command with args and returns what it wrote to stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	oldConfigFile := configFile
	t.Cleanup(func() { configFile = oldConfigFile })

	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		name      string
		debugMode bool
		wantLevel slog.Level
	}{
		{
			name:      "debug mode enabled",
			debugMode: true,
			wantLevel: slog.LevelDebug,
		},
		{
			name:      "debug mode disabled",
			debugMode: false,
			wantLevel: slog.LevelInfo,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupLogger(tt.debugMode)
			logger := slog.Default()
			assert.NotNil(t, logger)
			assert.Equal(t, tt.wantLevel <= slog.LevelDebug, logger.Enabled(context.Background(), slog.LevelDebug))
		})
	}
}

func TestNewRootCommand(t *testing.T) {
	cmd := newRootCommand()

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.ElementsMatch(t, []string{"evaluate", "dataset", "model", "history", "report", "migrate"}, names)
	assert.NotNil(t, cmd.PersistentFlags().Lookup("config"))
	assert.NotNil(t, cmd.PersistentFlags().Lookup("debug"))
}

func TestEvaluateCommand(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := testutil.SetupTestConfig(t, tmpDir)
	overworked := []string{"--study-hours", "10.5", "--sleep-hours", "4.5", "--break-time", "0.3", "--screen-time", "9", "--mood", "low"}

	t.Run("text output", func(t *testing.T) {
		out, err := execute(t, append([]string{"evaluate", "--config", cfgPath, "--output", "text", "--date", "2025-03-10"}, overworked...)...)
		require.NoError(t, err)
		assert.Contains(t, out, "Productivity score: 47/100")
		assert.Contains(t, out, "rule "+burnout.RuleOverstudyUndersleep)
	})

	t.Run("json output when not a terminal", func(t *testing.T) {
		out, err := execute(t, append([]string{"evaluate", "--config", cfgPath}, overworked...)...)
		require.NoError(t, err)

		var got cli.Evaluation
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		require.NotNil(t, got.Result)
		assert.Equal(t, burnout.RiskHigh, got.Result.Prediction.RiskLevel)
		assert.Equal(t, study.MoodLow, got.Record.Mood)
	})

	t.Run("records file", func(t *testing.T) {
		path := testutil.WriteRecordsCSV(t, t.TempDir(),
			testutil.Record(testutil.Date(2025, 3, 1), 6, 8, 2, 5, study.MoodHigh),
			testutil.Record(testutil.Date(2025, 3, 2), 10.5, 4.5, 0.3, 9, study.MoodLow),
		)
		out, err := execute(t, "evaluate", "--config", cfgPath, "--file", path)
		require.NoError(t, err)

		var got []cli.Evaluation
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		require.Len(t, got, 2)
		assert.Equal(t, 100, got[0].Result.Score.Total)
		assert.Equal(t, 47, got[1].Result.Score.Total)
	})

	t.Run("invalid record", func(t *testing.T) {
		_, err := execute(t, "evaluate", "--config", cfgPath, "--study-hours", "25", "--mood", "High")
		assert.ErrorContains(t, err, "study_hours")
	})

	t.Run("missing explicit model", func(t *testing.T) {
		_, err := execute(t, "evaluate", "--config", cfgPath, "--model", filepath.Join(tmpDir, "missing.json"))
		assert.ErrorContains(t, err, "analytics.LoadModel()")
	})

	t.Run("unknown output format", func(t *testing.T) {
		_, err := execute(t, "evaluate", "--config", cfgPath, "--output", "xml")
		assert.ErrorContains(t, err, "unknown output format")
	})
}

func TestDatasetGenerateCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "dataset.csv")

	out, err := execute(t, "dataset", "generate", "--samples", "50", "--seed", "3", "--out", path)
	require.NoError(t, err)
	assert.Equal(t, "wrote 50 samples to "+path+"\n", out)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(string(content)), "\n"), 51)

	_, err = execute(t, "dataset", "generate", "--samples", "0", "--out", path)
	assert.ErrorContains(t, err, "--samples must be greater than 0")
}

func TestModelTrainCommand(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := testutil.SetupTestConfig(t, tmpDir)

	tests := []struct {
		name string
		kind string
		file string
	}{
		{name: "decision tree", kind: "tree", file: "tree.json"},
		{name: "logistic regression", kind: "logistic", file: "logistic.yml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			modelPath := filepath.Join(tmpDir, tt.file)
			out, err := execute(t, "model", "train", "--kind", tt.kind, "--out", modelPath, "--output", "json")
			require.NoError(t, err)

			var metrics classifier.Metrics
			require.NoError(t, json.Unmarshal([]byte(out), &metrics))
			assert.Greater(t, metrics.Samples, 0)
			assert.Greater(t, metrics.Accuracy, 0.5)

			model, err := classifier.Load(modelPath)
			require.NoError(t, err)
			assert.Equal(t, []string{"High", "Low", "Medium"}, model.Classes())

			out, err = execute(t, "evaluate", "--config", cfgPath, "--model", modelPath,
				"--study-hours", "6", "--sleep-hours", "8", "--break-time", "2", "--screen-time", "5", "--mood", "High")
			require.NoError(t, err)
			var got cli.Evaluation
			require.NoError(t, json.Unmarshal([]byte(out), &got))
			assert.Equal(t, burnout.SourceModel, got.Result.Prediction.Source)
			assert.False(t, got.Result.Degraded)
		})
	}

	t.Run("unknown kind", func(t *testing.T) {
		_, err := execute(t, "model", "train", "--kind", "forest")
		assert.ErrorContains(t, err, "invalid model kind")
	})

	t.Run("missing dataset", func(t *testing.T) {
		_, err := execute(t, "model", "train", "--data", filepath.Join(tmpDir, "missing.csv"))
		assert.ErrorContains(t, err, "dataset.Load()")
	})
}

func TestHistoryAndReportCommands(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := testutil.SetupTestConfig(t, tmpDir)

	out, err := execute(t, "migrate", "--config", cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "database schema is up to date\n", out)

	importFile, err := datasync.NewYAMLStudyLogSink(filepath.Join(tmpDir, "import")).WriteAll([]studylog.StudyLog{
		studylog.FromRecord(study.StudyRecord{UserID: 7, StudyDate: testutil.Date(2025, 3, 1), StudyHours: 6, SleepHours: 8, BreakTime: 2, ScreenTime: 5, Mood: study.MoodHigh}),
		studylog.FromRecord(study.StudyRecord{UserID: 7, StudyDate: testutil.Date(2025, 3, 2), StudyHours: 10.5, SleepHours: 4.5, BreakTime: 0.3, ScreenTime: 9, Mood: study.MoodLow}),
	})
	require.NoError(t, err)

	t.Run("dry run writes nothing", func(t *testing.T) {
		out, err := execute(t, "history", "import", importFile, "--config", cfgPath, "--dry-run")
		require.NoError(t, err)
		assert.Contains(t, out, "(dry-run mode, no changes made)")
		assert.Contains(t, out, "2 new, 0 updated, 0 skipped")
	})

	t.Run("import", func(t *testing.T) {
		out, err := execute(t, "history", "import", importFile, "--config", cfgPath)
		require.NoError(t, err)
		assert.Contains(t, out, "[NEW]  user 7 2025-03-01")
		assert.Contains(t, out, "2 new, 0 updated, 0 skipped")
	})

	t.Run("import again skips existing days", func(t *testing.T) {
		out, err := execute(t, "history", "import", importFile, "--config", cfgPath)
		require.NoError(t, err)
		assert.Contains(t, out, "0 new, 0 updated, 2 skipped")
	})

	t.Run("export", func(t *testing.T) {
		exportDir := filepath.Join(tmpDir, "export")
		out, err := execute(t, "history", "export", "--config", cfgPath, "--user", "7", "--dir", exportDir)
		require.NoError(t, err)
		assert.Equal(t, "exported 2 study logs to "+filepath.Join(exportDir, datasync.StudyLogsFile)+"\n", out)

		records, err := datasync.ReadStudyLogs(filepath.Join(exportDir, datasync.StudyLogsFile))
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, 10.5, records[1].StudyHours)
	})

	t.Run("export needs both dates", func(t *testing.T) {
		_, err := execute(t, "history", "export", "--config", cfgPath, "--user", "7", "--from", "2025-03-01")
		assert.ErrorContains(t, err, "--from and --to must be set together")
	})

	t.Run("report", func(t *testing.T) {
		out, err := execute(t, "report", "--config", cfgPath, "--user", "7", "--output", "text")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(out, "Study report for user 7 (2 days)\n"))
	})

	t.Run("pdf report", func(t *testing.T) {
		mdPath := filepath.Join(tmpDir, "reports", "user-7.md")
		out, err := execute(t, "report", "--config", cfgPath, "--user", "7", "--pdf", mdPath)
		require.NoError(t, err)
		assert.Contains(t, out, "PDF generated: ")
		assert.FileExists(t, filepath.Join(tmpDir, "reports", "user-7.pdf"))
	})
}
