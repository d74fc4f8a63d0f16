package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/at-ishikawa/learnsmart/internal/burnout"
	"github.com/at-ishikawa/learnsmart/internal/classifier"
	"github.com/at-ishikawa/learnsmart/internal/dashboard"
	"github.com/at-ishikawa/learnsmart/internal/study"
)

var riskLevels = []burnout.RiskLevel{burnout.RiskLow, burnout.RiskMedium, burnout.RiskHigh}

type statsRow struct {
	name  string
	stats dashboard.FieldStats
}

func statsRows(s dashboard.Summary) []statsRow {
	return []statsRow{
		{"Study hours", s.StudyHours},
		{"Sleep hours", s.SleepHours},
		{"Break time", s.BreakTime},
		{"Screen time", s.ScreenTime},
		{"Productivity", s.Productivity},
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// PrintDashboard writes the dashboard of a user as tables.
func (p *Printer) PrintDashboard(userID int64, d dashboard.Dashboard) error {
	if p.format == FormatJSON {
		return p.writeJSON(d)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n\n", p.header(fmt.Sprintf("Study report for user %d (%d days)", userID, d.Summary.Days)))

	weekly := newTable("DATE", "STUDY HOURS")
	for i, date := range d.Weekly.Dates {
		weekly.addRow(date, formatFloat(d.Weekly.StudyHours[i]))
	}
	sb.WriteString(weekly.render(p))
	sb.WriteString("\n")

	sleep := newTable("DATE", "SLEEP HOURS", "SCORE")
	for i, date := range d.SleepVsProductivity.Dates {
		sleep.addRow(date, formatFloat(d.SleepVsProductivity.SleepHours[i]), strconv.Itoa(d.SleepVsProductivity.ProductivityScores[i]))
	}
	sb.WriteString(sleep.render(p))
	sb.WriteString("\n")

	summary := newTable("FIELD", "MEAN", "MIN", "MAX", "STD DEV")
	for _, row := range statsRows(d.Summary) {
		summary.addRow(row.name, formatFloat(row.stats.Mean), formatFloat(row.stats.Min),
			formatFloat(row.stats.Max), formatFloat(row.stats.StdDev))
	}
	sb.WriteString(summary.render(p))
	sb.WriteString("\n")

	counts := newTable("RISK", "DAYS")
	for _, level := range riskLevels {
		counts.addRow(p.riskColor(level).Sprint(level), strconv.Itoa(d.Summary.RiskCounts[level]))
	}
	sb.WriteString(counts.render(p))

	_, err := io.WriteString(p.w, sb.String())
	return err
}

// ReportMarkdown renders the dashboard as a markdown document.
func ReportMarkdown(userID int64, d dashboard.Dashboard) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Study report for user %d\n\n", userID)
	fmt.Fprintf(&sb, "%d days recorded.\n\n", d.Summary.Days)

	sb.WriteString("## Weekly study hours\n\n")
	sb.WriteString("| Date | Study hours |\n|---|---|\n")
	for i, date := range d.Weekly.Dates {
		fmt.Fprintf(&sb, "| %s | %s |\n", date, formatFloat(d.Weekly.StudyHours[i]))
	}

	sb.WriteString("\n## Sleep and productivity\n\n")
	sb.WriteString("| Date | Sleep hours | Score |\n|---|---|---|\n")
	for i, date := range d.SleepVsProductivity.Dates {
		fmt.Fprintf(&sb, "| %s | %s | %d |\n", date, formatFloat(d.SleepVsProductivity.SleepHours[i]),
			d.SleepVsProductivity.ProductivityScores[i])
	}

	sb.WriteString("\n## Summary\n\n")
	sb.WriteString("| Field | Mean | Min | Max | Std dev |\n|---|---|---|---|---|\n")
	for _, row := range statsRows(d.Summary) {
		fmt.Fprintf(&sb, "| %s | %s | %s | %s | %s |\n", row.name, formatFloat(row.stats.Mean),
			formatFloat(row.stats.Min), formatFloat(row.stats.Max), formatFloat(row.stats.StdDev))
	}

	sb.WriteString("\n## Burnout risk\n\n")
	for _, level := range riskLevels {
		fmt.Fprintf(&sb, "- %s: %d\n", level, d.Summary.RiskCounts[level])
	}

	sb.WriteString("\n## Mood\n\n")
	for _, mood := range study.AllMoodLevels {
		fmt.Fprintf(&sb, "- %s: %d\n", mood, d.Summary.MoodCounts[mood])
	}
	return sb.String()
}

// PrintMetrics writes the evaluation of a trained model with its confusion matrix.
func (p *Printer) PrintMetrics(metrics classifier.Metrics) error {
	if p.format == FormatJSON {
		return p.writeJSON(metrics)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %.2f%% over %d samples\n\n", p.header("Accuracy:"), metrics.Accuracy*100, metrics.Samples)

	headers := append([]string{"ACTUAL \\ PREDICTED"}, metrics.Classes...)
	t := newTable(headers...)
	for i, class := range metrics.Classes {
		row := []string{class}
		for _, n := range metrics.Confusion[i] {
			row = append(row, strconv.Itoa(n))
		}
		t.addRow(row...)
	}
	sb.WriteString(t.render(p))

	_, err := io.WriteString(p.w, sb.String())
	return err
}
