// Package datasync imports and exports study logs between YAML files and the database.
package datasync

import (
	"context"
	"fmt"
	"io"
	"maps"
	"slices"
	"time"

	"github.com/at-ishikawa/learnsmart/internal/study"
	"github.com/at-ishikawa/learnsmart/internal/studylog"
)

// importBatchSize bounds the number of rows of one multi-row upsert.
const importBatchSize = 500

// ImportResult tracks counts for each import outcome.
type ImportResult struct {
	New       int
	Updated   int
	Skipped   int
	Duplicate int
	Invalid   int
}

// ImportOptions controls import behavior.
type ImportOptions struct {
	DryRun         bool
	UpdateExisting bool
	// UserID, when non-zero, replaces the user of every imported record.
	UserID int64
}

// Importer writes study records to the database.
type Importer struct {
	repo   studylog.StudyLogRepository
	writer io.Writer
}

// NewImporter creates a new Importer that reports each record to writer.
func NewImporter(repo studylog.StudyLogRepository, writer io.Writer) *Importer {
	return &Importer{repo: repo, writer: writer}
}

type userDate struct {
	userID int64
	date   string
}

// Import validates records and upserts the valid ones. A record without a positive
// user id is invalid. Invalid records and repeated (user, date) pairs are reported and skipped.
// Existing rows are left untouched unless opts.UpdateExisting is set.
func (imp *Importer) Import(ctx context.Context, records []study.StudyRecord, opts ImportOptions) (*ImportResult, error) {
	var result ImportResult

	seen := make(map[userDate]struct{}, len(records))
	byUser := make(map[int64][]study.StudyRecord)
	for _, record := range records {
		if opts.UserID != 0 {
			record.UserID = opts.UserID
		}
		record.StudyDate = study.NewDate(record.StudyDate)
		date := record.StudyDate.Format(study.DateLayout)

		err := study.Validate(record)
		if err == nil && record.UserID <= 0 {
			err = fmt.Errorf("user_id must be greater than 0")
		}
		if err != nil {
			fmt.Fprintf(imp.writer, "  [INVALID]  user %d %s: %v\n", record.UserID, date, err)
			result.Invalid++
			continue
		}
		key := userDate{userID: record.UserID, date: date}
		if _, ok := seen[key]; ok {
			fmt.Fprintf(imp.writer, "  [DUPLICATE]  user %d %s\n", record.UserID, date)
			result.Duplicate++
			continue
		}
		seen[key] = struct{}{}
		byUser[record.UserID] = append(byUser[record.UserID], record)
	}

	var pending []*studylog.StudyLog
	userIDs := slices.Sorted(maps.Keys(byUser))
	for _, userID := range userIDs {
		userRecords := byUser[userID]
		existing, err := imp.existingDates(ctx, userID, userRecords)
		if err != nil {
			return nil, err
		}

		for _, record := range userRecords {
			date := record.StudyDate.Format(study.DateLayout)
			if _, ok := existing[date]; ok {
				if !opts.UpdateExisting {
					fmt.Fprintf(imp.writer, "  [SKIP]  user %d %s\n", userID, date)
					result.Skipped++
					continue
				}
				fmt.Fprintf(imp.writer, "  [UPDATE]  user %d %s\n", userID, date)
				result.Updated++
			} else {
				fmt.Fprintf(imp.writer, "  [NEW]  user %d %s\n", userID, date)
				result.New++
			}
			log := studylog.FromRecord(record)
			pending = append(pending, &log)
		}
	}

	if opts.DryRun {
		return &result, nil
	}
	for chunk := range slices.Chunk(pending, importBatchSize) {
		if err := imp.repo.BatchUpsert(ctx, chunk); err != nil {
			return nil, fmt.Errorf("BatchUpsert() > %w", err)
		}
	}
	return &result, nil
}

func (imp *Importer) existingDates(ctx context.Context, userID int64, records []study.StudyRecord) (map[string]struct{}, error) {
	from, to := records[0].StudyDate, records[0].StudyDate
	for _, r := range records[1:] {
		if r.StudyDate.Before(from) {
			from = r.StudyDate
		}
		if r.StudyDate.After(to) {
			to = r.StudyDate
		}
	}

	logs, err := imp.repo.FindRange(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("FindRange(%d) > %w", userID, err)
	}
	dates := make(map[string]struct{}, len(logs))
	for _, l := range logs {
		dates[l.StudyDate.Format(study.DateLayout)] = struct{}{}
	}
	return dates, nil
}

// Exporter reads study logs from the database.
type Exporter struct {
	repo studylog.StudyLogRepository
}

// NewExporter creates a new Exporter.
func NewExporter(repo studylog.StudyLogRepository) *Exporter {
	return &Exporter{repo: repo}
}

// Export returns the logs of a user, oldest first. Zero from and to export every log.
func (e *Exporter) Export(ctx context.Context, userID int64, from, to time.Time) ([]studylog.StudyLog, error) {
	if from.IsZero() && to.IsZero() {
		logs, err := e.repo.FindByUser(ctx, userID, 0)
		if err != nil {
			return nil, fmt.Errorf("FindByUser(%d) > %w", userID, err)
		}
		return logs, nil
	}
	if to.IsZero() {
		to = time.Now()
	}
	logs, err := e.repo.FindRange(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("FindRange(%d) > %w", userID, err)
	}
	return logs, nil
}
