package cli

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/at-ishikawa/learnsmart/internal/analytics"
	"github.com/at-ishikawa/learnsmart/internal/dataset"
	"github.com/at-ishikawa/learnsmart/internal/study"
)

// DefaultConcurrency is the number of records evaluated in parallel by RunEvaluateFile.
const DefaultConcurrency = 4

// HistoryDays is how many preceding days of a file feed the trend suggestions of a record.
const HistoryDays = 7

// Evaluation is the outcome of one record of a batch. Exactly one of Result and Error is set.
type Evaluation struct {
	Record study.StudyRecord `json:"record"`
	Result *analytics.Result `json:"result,omitempty"`
	Error  string            `json:"error,omitempty"`
}

// RunEvaluateFile reads records in dataset.RecordHeader layout and evaluates them concurrently.
// Results are ordered by date. Invalid records are reported in their Evaluation and do not
// stop the batch; the valid records of the preceding HistoryDays feed trend suggestions.
func RunEvaluateFile(ctx context.Context, engine *analytics.Engine, r io.Reader, concurrency int) ([]Evaluation, error) {
	records, err := dataset.ReadRecordsCSV(r)
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}
	slices.SortStableFunc(records, func(a, b study.StudyRecord) int {
		return a.StudyDate.Compare(b.StudyDate)
	})

	valid := make([]bool, len(records))
	for i, record := range records {
		valid[i] = study.Validate(record) == nil
	}

	evaluations := make([]Evaluation, len(records))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(concurrency, 1))
	for i, record := range records {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			evaluations[i].Record = record
			result, err := engine.Evaluate(record, historyOf(records, valid, i)...)
			if err != nil {
				if _, ok := study.AsValidationError(err); !ok {
					return fmt.Errorf("evaluate %s: %w", record.StudyDate.Format(study.DateLayout), err)
				}
				evaluations[i].Error = err.Error()
				return nil
			}
			evaluations[i].Result = &result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return evaluations, nil
}

// historyOf returns the valid records within HistoryDays before records[i], oldest first.
func historyOf(records []study.StudyRecord, valid []bool, i int) []study.StudyRecord {
	from := records[i].StudyDate.AddDate(0, 0, -HistoryDays)
	var history []study.StudyRecord
	for j := range i {
		date := records[j].StudyDate
		if !valid[j] || date.Before(from) || !date.Before(records[i].StudyDate) {
			continue
		}
		history = append(history, records[j])
	}
	return history
}

// PrintResult writes the evaluation of a single record.
func (p *Printer) PrintResult(record study.StudyRecord, result analytics.Result) error {
	if p.format == FormatJSON {
		return p.writeJSON(Evaluation{Record: record, Result: &result})
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s\n", p.header("Productivity score:"), strconv.Itoa(result.Score.Total)+"/100")
	fmt.Fprintf(&sb, "  %s\n", p.muted(fmt.Sprintf("study %.1f, sleep %.1f, break %.1f, screen %.1f",
		result.Score.Study, result.Score.Sleep, result.Score.Break, result.Score.Screen)))

	prediction := result.Prediction
	source := string(prediction.Source)
	if prediction.Rule != "" {
		source += " " + prediction.Rule
	}
	fmt.Fprintf(&sb, "%s %s (%.1f%% confidence, %s)\n",
		p.header("Burnout risk:"),
		p.riskColor(prediction.RiskLevel).Sprint(prediction.RiskLevel),
		prediction.Confidence, source)
	if prediction.Explanation != "" {
		fmt.Fprintf(&sb, "  %s\n", p.muted(prediction.Explanation))
	}
	if result.Degraded {
		sb.WriteString(p.muted("  burnout model unavailable, risk is a fallback estimate") + "\n")
	}

	sb.WriteString(p.header("Suggestions:") + "\n")
	for _, s := range result.Suggestions {
		fmt.Fprintf(&sb, "  %s %s\n", p.priorityColor(s.Priority).Sprintf("[%s]", s.Priority), s.Title)
		fmt.Fprintf(&sb, "      %s\n", s.Description)
	}
	_, err := io.WriteString(p.w, sb.String())
	return err
}

// PrintEvaluations writes a batch as a table, one row per record.
func (p *Printer) PrintEvaluations(evaluations []Evaluation) error {
	if p.format == FormatJSON {
		return p.writeJSON(evaluations)
	}

	t := newTable("DATE", "SCORE", "RISK", "CONFIDENCE", "SOURCE", "TOP SUGGESTION")
	for _, e := range evaluations {
		date := e.Record.StudyDate.Format(study.DateLayout)
		if e.Result == nil {
			t.addRow(date, "-", "-", "-", "-", "invalid: "+e.Error)
			continue
		}
		var top string
		if len(e.Result.Suggestions) > 0 {
			top = e.Result.Suggestions[0].Title
		}
		t.addRow(
			date,
			strconv.Itoa(e.Result.Score.Total),
			string(e.Result.Prediction.RiskLevel),
			fmt.Sprintf("%.1f%%", e.Result.Prediction.Confidence),
			string(e.Result.Prediction.Source),
			top,
		)
	}
	_, err := io.WriteString(p.w, t.render(p))
	return err
}
