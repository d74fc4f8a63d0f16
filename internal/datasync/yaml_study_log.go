package datasync

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/at-ishikawa/learnsmart/internal/study"
	"github.com/at-ishikawa/learnsmart/internal/studylog"
)

// StudyLogsFile is the file name written by YAMLStudyLogSink.
const StudyLogsFile = "study_logs.yml"

type exportStudyLog struct {
	UserID     int64   `yaml:"user_id"`
	StudyDate  string  `yaml:"study_date"`
	StudyHours float64 `yaml:"study_hours"`
	SleepHours float64 `yaml:"sleep_hours"`
	BreakTime  float64 `yaml:"break_time"`
	ScreenTime float64 `yaml:"screen_time"`
	MoodLevel  string  `yaml:"mood_level"`
}

// YAMLStudyLogSink writes study logs to a YAML file.
type YAMLStudyLogSink struct {
	outputDir string
}

// NewYAMLStudyLogSink creates a new YAMLStudyLogSink.
func NewYAMLStudyLogSink(outputDir string) *YAMLStudyLogSink {
	return &YAMLStudyLogSink{outputDir: outputDir}
}

// WriteAll writes logs to study_logs.yml and returns the file path.
func (s *YAMLStudyLogSink) WriteAll(logs []studylog.StudyLog) (string, error) {
	if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	out := make([]exportStudyLog, len(logs))
	for i, l := range logs {
		out[i] = exportStudyLog{
			UserID:     l.UserID,
			StudyDate:  l.StudyDate.Format(study.DateLayout),
			StudyHours: l.StudyHours,
			SleepHours: l.SleepHours,
			BreakTime:  l.BreakTime,
			ScreenTime: l.ScreenTime,
			MoodLevel:  l.MoodLevel,
		}
	}

	path := filepath.Join(s.outputDir, StudyLogsFile)
	if err := writeYAML(path, out); err != nil {
		return "", fmt.Errorf("write %s: %w", StudyLogsFile, err)
	}
	return path, nil
}

// ReadStudyLogs reads records from a file written by YAMLStudyLogSink.
// Field values are not validated; mood levels are normalized when recognized.
func ReadStudyLogs(path string) ([]study.StudyRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var in []exportStudyLog
	if err := yaml.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("yaml.Unmarshal(%s) > %w", path, err)
	}

	records := make([]study.StudyRecord, 0, len(in))
	for i, l := range in {
		date, err := study.ParseDate(l.StudyDate)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		mood := study.MoodLevel(l.MoodLevel)
		if parsed, err := study.ParseMoodLevel(l.MoodLevel); err == nil {
			mood = parsed
		}
		records = append(records, study.StudyRecord{
			UserID:     l.UserID,
			StudyDate:  date,
			StudyHours: l.StudyHours,
			SleepHours: l.SleepHours,
			BreakTime:  l.BreakTime,
			ScreenTime: l.ScreenTime,
			Mood:       mood,
		})
	}
	return records, nil
}

func writeYAML(path string, data any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	enc := yaml.NewEncoder(f)
	defer func() { _ = enc.Close() }()
	return enc.Encode(data)
}
