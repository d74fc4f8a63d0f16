// Package testutil provides shared test helpers for config files, study records and classifiers.
package testutil

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/learnsmart/internal/classifier"
	"github.com/at-ishikawa/learnsmart/internal/dataset"
	"github.com/at-ishikawa/learnsmart/internal/study"
)

// SetupTestConfig creates a config file backed by a sqlite database in tmpDir.
// The model path points to tmpDir/models/burnout_model.json, which is not created.
// Returns the path to the generated config file.
func SetupTestConfig(t *testing.T, tmpDir string) string {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, "models"), 0o755))

	configContent := fmt.Sprintf(`server:
  port: 8080
database:
  driver: sqlite
  path: %s
model:
  path: %s
log:
  level: debug
`,
		filepath.Join(tmpDir, "learnsmart.db"),
		ModelPath(tmpDir),
	)

	cfgPath := filepath.Join(tmpDir, "config.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(configContent), 0o644))
	return cfgPath
}

// ModelPath is the model artifact path used by SetupTestConfig.
func ModelPath(tmpDir string) string {
	return filepath.Join(tmpDir, "models", "burnout_model.json")
}

// SetupTestConfigWithModel is SetupTestConfig plus a decision tree trained on a small
// generated dataset and saved at ModelPath.
func SetupTestConfigWithModel(t *testing.T, tmpDir string) string {
	t.Helper()
	cfgPath := SetupTestConfig(t, tmpDir)

	rows := dataset.Generate(dataset.DefaultOptions())
	model, err := classifier.TrainDecisionTree(dataset.Samples(rows), classifier.DefaultTreeOptions())
	require.NoError(t, err)
	artifact, err := classifier.ArtifactOf(model, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NoError(t, classifier.Save(ModelPath(tmpDir), artifact))
	return cfgPath
}

// Date returns midnight UTC of the given day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Record builds a study record without validating it.
func Record(date time.Time, studyHours, sleepHours, breakTime, screenTime float64, mood study.MoodLevel) study.StudyRecord {
	return study.StudyRecord{
		StudyDate:  date,
		StudyHours: studyHours,
		SleepHours: sleepHours,
		BreakTime:  breakTime,
		ScreenTime: screenTime,
		Mood:       mood,
	}
}

// WriteRecordsCSV writes records in dataset.RecordHeader layout to dir/records.csv and returns the path.
func WriteRecordsCSV(t *testing.T, dir string, records ...study.StudyRecord) string {
	t.Helper()

	content := ""
	for i, h := range dataset.RecordHeader {
		if i > 0 {
			content += ","
		}
		content += h
	}
	content += "\n"
	for _, r := range records {
		content += fmt.Sprintf("%s,%v,%v,%v,%v,%s\n", r.StudyDate.Format(study.DateLayout),
			r.StudyHours, r.SleepHours, r.BreakTime, r.ScreenTime, r.Mood)
	}

	path := filepath.Join(dir, "records.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// StubClassifier returns a fixed result or error.
type StubClassifier struct {
	Class         string
	Probabilities map[string]float64
	Err           error
}

func (s StubClassifier) Predict(classifier.Features) (classifier.Result, error) {
	if s.Err != nil {
		return classifier.Result{}, s.Err
	}
	return classifier.Result{Class: s.Class, Probabilities: maps.Clone(s.Probabilities)}, nil
}

func (s StubClassifier) Classes() []string {
	return []string{"High", "Low", "Medium"}
}
