package studylog

//go:generate mockgen -source=repository.go -destination=../mocks/studylog/mock_repository.go -package=mock_studylog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/at-ishikawa/learnsmart/internal/database"
	"github.com/at-ishikawa/learnsmart/internal/study"
)

// StudyLogRepository defines operations for managing study logs.
type StudyLogRepository interface {
	// SaveEvaluation stores a log together with its prediction in one transaction.
	SaveEvaluation(ctx context.Context, log *StudyLog, prediction *Prediction) error
	FindByID(ctx context.Context, userID, id int64) (*StudyLog, error)
	FindByUser(ctx context.Context, userID int64, limit int) ([]StudyLog, error)
	FindRange(ctx context.Context, userID int64, from, to time.Time) ([]StudyLog, error)
	Delete(ctx context.Context, userID, id int64) error
	BatchUpsert(ctx context.Context, logs []*StudyLog) error
}

// PredictionRepository defines operations for reading burnout predictions.
// Predictions are written with StudyLogRepository.SaveEvaluation.
type PredictionRepository interface {
	FindByUser(ctx context.Context, userID int64, limit int) ([]Prediction, error)
}

var (
	uniqueColumns     = []string{"user_id", "study_date"}
	studyLogColumns   = []string{"user_id", "study_date", "study_hours", "sleep_hours", "break_time", "screen_time", "mood_level"}
	predictionColumns = []string{"user_id", "study_date", "productivity_score", "risk_level", "confidence", "source", "rule_name", "degraded"}
)

func studyLogArgs(l *StudyLog) []any {
	return []any{l.UserID, study.NewDate(l.StudyDate), l.StudyHours, l.SleepHours, l.BreakTime, l.ScreenTime, l.MoodLevel}
}

// DBStudyLogRepository implements StudyLogRepository using MySQL or SQLite.
type DBStudyLogRepository struct {
	db      *sqlx.DB
	dialect database.Dialect
}

// NewDBStudyLogRepository creates a new DBStudyLogRepository.
func NewDBStudyLogRepository(db *sqlx.DB) *DBStudyLogRepository {
	return &DBStudyLogRepository{db: db, dialect: database.DialectOf(db)}
}

// SaveEvaluation stores log and prediction in one transaction and reloads both from the stored rows.
//
// A log without an ID is upserted by user and date. A log with an ID updates that row of
// its owner, or fails with ErrNotFound; when its date moves, the prediction stored for the
// old date is removed. The prediction always takes the user and date of the log.
func (r *DBStudyLogRepository) SaveEvaluation(ctx context.Context, log *StudyLog, prediction *Prediction) error {
	return database.RunInTx(ctx, r.db, func(ctx context.Context, tx *sqlx.Tx) error {
		if log.ID == 0 {
			if err := upsertStudyLog(ctx, tx, r.dialect, log); err != nil {
				return err
			}
		} else if err := updateStudyLog(ctx, tx, log); err != nil {
			return err
		}

		prediction.UserID = log.UserID
		prediction.StudyDate = log.StudyDate
		return upsertPrediction(ctx, tx, r.dialect, prediction)
	})
}

func upsertStudyLog(ctx context.Context, q sqlx.ExtContext, dialect database.Dialect, log *StudyLog) error {
	query := database.BuildMultiRowInsert("study_logs", studyLogColumns, 1) +
		database.UpsertClause(dialect, uniqueColumns, studyLogColumns[2:])
	if _, err := q.ExecContext(ctx, query, studyLogArgs(log)...); err != nil {
		return fmt.Errorf("upsert study log: %w", err)
	}

	var stored StudyLog
	if err := sqlx.GetContext(ctx, q, &stored,
		"SELECT * FROM study_logs WHERE user_id = ? AND study_date = ?",
		log.UserID, study.NewDate(log.StudyDate)); err != nil {
		return fmt.Errorf("reload study log: %w", err)
	}
	*log = stored
	return nil
}

func updateStudyLog(ctx context.Context, q sqlx.ExtContext, log *StudyLog) error {
	previous, err := findStudyLog(ctx, q, log.UserID, log.ID)
	if err != nil {
		return err
	}

	if _, err := q.ExecContext(ctx,
		`UPDATE study_logs SET study_date = ?, study_hours = ?, sleep_hours = ?, break_time = ?,
			screen_time = ?, mood_level = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND user_id = ?`,
		study.NewDate(log.StudyDate), log.StudyHours, log.SleepHours, log.BreakTime,
		log.ScreenTime, log.MoodLevel, log.ID, log.UserID); err != nil {
		return fmt.Errorf("update study log %d: %w", log.ID, err)
	}

	oldDate := study.NewDate(previous.StudyDate)
	if !oldDate.Equal(study.NewDate(log.StudyDate)) {
		if _, err := q.ExecContext(ctx,
			"DELETE FROM burnout_predictions WHERE user_id = ? AND study_date = ?",
			log.UserID, oldDate); err != nil {
			return fmt.Errorf("delete prediction of %s: %w", oldDate.Format(study.DateLayout), err)
		}
	}

	stored, err := findStudyLog(ctx, q, log.UserID, log.ID)
	if err != nil {
		return err
	}
	*log = *stored
	return nil
}

func findStudyLog(ctx context.Context, q sqlx.QueryerContext, userID, id int64) (*StudyLog, error) {
	var log StudyLog
	err := sqlx.GetContext(ctx, q, &log, "SELECT * FROM study_logs WHERE id = ? AND user_id = ?", id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load study log %d: %w", id, err)
	}
	return &log, nil
}

// FindByID returns the log with the given id owned by the user, or ErrNotFound.
// Logs of other users are reported as not found.
func (r *DBStudyLogRepository) FindByID(ctx context.Context, userID, id int64) (*StudyLog, error) {
	return findStudyLog(ctx, r.db, userID, id)
}

// FindByUser returns the most recent logs of a user, oldest first.
// A non-positive limit returns every log.
func (r *DBStudyLogRepository) FindByUser(ctx context.Context, userID int64, limit int) ([]StudyLog, error) {
	query := "SELECT * FROM study_logs WHERE user_id = ? ORDER BY study_date DESC"
	args := []any{userID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	var logs []StudyLog
	if err := r.db.SelectContext(ctx, &logs, query, args...); err != nil {
		return nil, fmt.Errorf("load study logs of user %d: %w", userID, err)
	}
	slices.Reverse(logs)
	return logs, nil
}

// FindRange returns the logs of a user between from and to inclusive, oldest first.
func (r *DBStudyLogRepository) FindRange(ctx context.Context, userID int64, from, to time.Time) ([]StudyLog, error) {
	var logs []StudyLog
	if err := r.db.SelectContext(ctx, &logs,
		"SELECT * FROM study_logs WHERE user_id = ? AND study_date >= ? AND study_date <= ? ORDER BY study_date",
		userID, study.NewDate(from), study.NewDate(to)); err != nil {
		return nil, fmt.Errorf("load study logs of user %d in range: %w", userID, err)
	}
	return logs, nil
}

// Delete removes a log owned by the user. It returns ErrNotFound when nothing was deleted.
func (r *DBStudyLogRepository) Delete(ctx context.Context, userID, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM study_logs WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("delete study log %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("result.RowsAffected() > %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// BatchUpsert upserts multiple logs in a single transaction using a multi-row INSERT.
// IDs and timestamps of logs are not reloaded.
func (r *DBStudyLogRepository) BatchUpsert(ctx context.Context, logs []*StudyLog) error {
	if len(logs) == 0 {
		return nil
	}

	return database.RunInTx(ctx, r.db, func(ctx context.Context, tx *sqlx.Tx) error {
		query := database.BuildMultiRowInsert("study_logs", studyLogColumns, len(logs)) +
			database.UpsertClause(r.dialect, uniqueColumns, studyLogColumns[2:])

		args := make([]any, 0, len(logs)*len(studyLogColumns))
		for _, l := range logs {
			args = append(args, studyLogArgs(l)...)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert study logs: %w", err)
		}
		return nil
	})
}

// DBPredictionRepository implements PredictionRepository using MySQL or SQLite.
type DBPredictionRepository struct {
	db *sqlx.DB
}

// NewDBPredictionRepository creates a new DBPredictionRepository.
func NewDBPredictionRepository(db *sqlx.DB) *DBPredictionRepository {
	return &DBPredictionRepository{db: db}
}

func upsertPrediction(ctx context.Context, q sqlx.ExtContext, dialect database.Dialect, p *Prediction) error {
	query := database.BuildMultiRowInsert("burnout_predictions", predictionColumns, 1) +
		database.UpsertClause(dialect, uniqueColumns, predictionColumns[2:])
	date := study.NewDate(p.StudyDate)
	if _, err := q.ExecContext(ctx, query,
		p.UserID, date, p.ProductivityScore, p.RiskLevel, p.Confidence, p.Source, p.RuleName, p.Degraded); err != nil {
		return fmt.Errorf("upsert burnout prediction: %w", err)
	}

	var stored Prediction
	if err := sqlx.GetContext(ctx, q, &stored,
		"SELECT * FROM burnout_predictions WHERE user_id = ? AND study_date = ?",
		p.UserID, date); err != nil {
		return fmt.Errorf("reload burnout prediction: %w", err)
	}
	*p = stored
	return nil
}

// FindByUser returns the most recent predictions of a user, oldest first.
// A non-positive limit returns every prediction.
func (r *DBPredictionRepository) FindByUser(ctx context.Context, userID int64, limit int) ([]Prediction, error) {
	query := "SELECT * FROM burnout_predictions WHERE user_id = ? ORDER BY study_date DESC"
	args := []any{userID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	var predictions []Prediction
	if err := r.db.SelectContext(ctx, &predictions, query, args...); err != nil {
		return nil, fmt.Errorf("load burnout predictions of user %d: %w", userID, err)
	}
	slices.Reverse(predictions)
	return predictions, nil
}
