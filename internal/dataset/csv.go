package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/at-ishikawa/learnsmart/internal/burnout"
	"github.com/at-ishikawa/learnsmart/internal/study"
)

// Header is the column layout of a dataset CSV file.
var Header = []string{"study_hours", "sleep_hours", "break_time", "screen_time", "mood_score", "burnout_risk"}

// RecordHeader is the column layout of a study record CSV file.
var RecordHeader = []string{"study_date", "study_hours", "sleep_hours", "break_time", "screen_time", "mood_level"}

var errHeader = errors.New("unexpected CSV header")

func formatHours(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteCSV writes rows with a header line.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write([]string{
			formatHours(r.StudyHours),
			formatHours(r.SleepHours),
			formatHours(r.BreakTime),
			formatHours(r.ScreenTime),
			strconv.Itoa(r.MoodScore),
			string(r.Risk),
		}); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV reads rows written by WriteCSV.
func ReadCSV(r io.Reader) ([]Row, error) {
	lines, err := readAll(r, Header)
	if err != nil {
		return nil, err
	}

	rows := make([]Row, 0, len(lines))
	for i, line := range lines {
		hours, err := parseHours(line[:4])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+2, err)
		}
		mood, err := strconv.Atoi(line[4])
		if err != nil {
			return nil, fmt.Errorf("line %d: parse mood_score %q: %w", i+2, line[4], err)
		}
		risk, err := burnout.ParseRiskLevel(line[5])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+2, err)
		}
		rows = append(rows, Row{
			StudyHours: hours[0],
			SleepHours: hours[1],
			BreakTime:  hours[2],
			ScreenTime: hours[3],
			MoodScore:  mood,
			Risk:       risk,
		})
	}
	return rows, nil
}

// ReadRecordsCSV reads study records in RecordHeader layout. Values are parsed but not validated.
func ReadRecordsCSV(r io.Reader) ([]study.StudyRecord, error) {
	lines, err := readAll(r, RecordHeader)
	if err != nil {
		return nil, err
	}

	records := make([]study.StudyRecord, 0, len(lines))
	for i, line := range lines {
		date, err := study.ParseDate(line[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+2, err)
		}
		hours, err := parseHours(line[1:5])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+2, err)
		}
		mood, err := study.ParseMoodLevel(line[5])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+2, err)
		}
		records = append(records, study.StudyRecord{
			StudyDate:  date,
			StudyHours: hours[0],
			SleepHours: hours[1],
			BreakTime:  hours[2],
			ScreenTime: hours[3],
			Mood:       mood,
		})
	}
	return records, nil
}

func readAll(r io.Reader, header []string) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(header)
	cr.TrimLeadingSpace = true

	lines, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read CSV: %w", err)
	}
	if len(lines) == 0 || !slices.Equal(lines[0], header) {
		return nil, fmt.Errorf("%w: want %v", errHeader, header)
	}
	return lines[1:], nil
}

func parseHours(fields []string) ([]float64, error) {
	values := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("parse hours %q: %w", f, err)
		}
		values[i] = v
	}
	return values, nil
}

// Save writes rows to a CSV file, creating its parent directory.
func Save(path string, rows []Row) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dataset directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteCSV(f, rows); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// Load reads rows from a CSV file.
func Load(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	rows, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return rows, nil
}
