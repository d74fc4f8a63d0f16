package studylog

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/learnsmart/internal/database"
	"github.com/at-ishikawa/learnsmart/internal/study"
)

var studyLogRowColumns = []string{
	"id", "user_id", "study_date", "study_hours", "sleep_hours", "break_time", "screen_time",
	"mood_level", "created_at", "updated_at",
}

func newMockRepository(t *testing.T) (*DBStudyLogRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewDBStudyLogRepository(sqlx.NewDb(db, "mysql")), mock
}

var predictionRowColumns = []string{
	"id", "user_id", "study_date", "productivity_score", "risk_level", "confidence", "source",
	"rule_name", "degraded", "created_at", "updated_at",
}

func TestDBStudyLogRepository_SaveEvaluation(t *testing.T) {
	date := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	movedTo := date.AddDate(0, 0, 1)
	now := time.Date(2025, 3, 1, 21, 0, 0, 0, time.UTC)

	expectPrediction := func(mock sqlmock.Sqlmock, day time.Time) {
		mock.ExpectExec("INSERT INTO burnout_predictions \\(user_id, study_date, productivity_score, risk_level, confidence, source, rule_name, degraded\\) .* ON DUPLICATE KEY UPDATE productivity_score = VALUES\\(productivity_score\\)").
			WithArgs(int64(7), day, 47, "High", 90.0, "rule", "overstudy-undersleep", false).
			WillReturnResult(sqlmock.NewResult(5, 1))
		mock.ExpectQuery("SELECT \\* FROM burnout_predictions WHERE user_id = \\? AND study_date = \\?").
			WithArgs(int64(7), day).
			WillReturnRows(sqlmock.NewRows(predictionRowColumns).
				AddRow(5, 7, day, 47, "High", 90.0, "rule", "overstudy-undersleep", false, now, now))
	}

	tests := []struct {
		name       string
		id         int64
		studyDate  time.Time
		setupMock  func(mock sqlmock.Sqlmock)
		wantErr    error
		wantAnyErr bool
		wantLogID  int64
	}{
		{
			name:      "new log is upserted with its prediction",
			studyDate: date,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec("INSERT INTO study_logs \\(user_id, study_date, study_hours, sleep_hours, break_time, screen_time, mood_level\\) VALUES \\(\\?, \\?, \\?, \\?, \\?, \\?, \\?\\) ON DUPLICATE KEY UPDATE study_hours = VALUES\\(study_hours\\)").
					WithArgs(int64(7), date, 10.5, 4.5, 0.3, 9.0, "Low").
					WillReturnResult(sqlmock.NewResult(11, 1))
				mock.ExpectQuery("SELECT \\* FROM study_logs WHERE user_id = \\? AND study_date = \\?").
					WithArgs(int64(7), date).
					WillReturnRows(sqlmock.NewRows(studyLogRowColumns).
						AddRow(11, 7, date, 10.5, 4.5, 0.3, 9.0, "Low", now, now))
				expectPrediction(mock, date)
				mock.ExpectCommit()
			},
			wantLogID: 11,
		},
		{
			name:      "existing log keeps its date",
			id:        11,
			studyDate: date,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery("SELECT \\* FROM study_logs WHERE id = \\? AND user_id = \\?").
					WithArgs(int64(11), int64(7)).
					WillReturnRows(sqlmock.NewRows(studyLogRowColumns).
						AddRow(11, 7, date, 6.0, 8.0, 2.0, 5.0, "High", now, now))
				mock.ExpectExec("UPDATE study_logs SET study_date = \\?, study_hours = \\?, sleep_hours = \\?, break_time = \\?, screen_time = \\?, mood_level = \\?, updated_at = CURRENT_TIMESTAMP WHERE id = \\? AND user_id = \\?").
					WithArgs(date, 10.5, 4.5, 0.3, 9.0, "Low", int64(11), int64(7)).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectQuery("SELECT \\* FROM study_logs WHERE id = \\? AND user_id = \\?").
					WithArgs(int64(11), int64(7)).
					WillReturnRows(sqlmock.NewRows(studyLogRowColumns).
						AddRow(11, 7, date, 10.5, 4.5, 0.3, 9.0, "Low", now, now))
				expectPrediction(mock, date)
				mock.ExpectCommit()
			},
			wantLogID: 11,
		},
		{
			name:      "moved log drops the prediction of the old date",
			id:        11,
			studyDate: movedTo,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery("SELECT \\* FROM study_logs WHERE id = \\? AND user_id = \\?").
					WithArgs(int64(11), int64(7)).
					WillReturnRows(sqlmock.NewRows(studyLogRowColumns).
						AddRow(11, 7, date, 6.0, 8.0, 2.0, 5.0, "High", now, now))
				mock.ExpectExec("UPDATE study_logs SET").
					WithArgs(movedTo, 10.5, 4.5, 0.3, 9.0, "Low", int64(11), int64(7)).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec("DELETE FROM burnout_predictions WHERE user_id = \\? AND study_date = \\?").
					WithArgs(int64(7), date).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectQuery("SELECT \\* FROM study_logs WHERE id = \\? AND user_id = \\?").
					WithArgs(int64(11), int64(7)).
					WillReturnRows(sqlmock.NewRows(studyLogRowColumns).
						AddRow(11, 7, movedTo, 10.5, 4.5, 0.3, 9.0, "Low", now, now))
				expectPrediction(mock, movedTo)
				mock.ExpectCommit()
			},
			wantLogID: 11,
		},
		{
			name:      "log of another user is not found",
			id:        11,
			studyDate: date,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery("SELECT \\* FROM study_logs WHERE id = \\? AND user_id = \\?").
					WithArgs(int64(11), int64(7)).
					WillReturnRows(sqlmock.NewRows(studyLogRowColumns))
				mock.ExpectRollback()
			},
			wantErr: ErrNotFound,
		},
		{
			name:      "prediction failure rolls back the log",
			studyDate: date,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec("INSERT INTO study_logs").WillReturnResult(sqlmock.NewResult(11, 1))
				mock.ExpectQuery("SELECT \\* FROM study_logs").
					WillReturnRows(sqlmock.NewRows(studyLogRowColumns).
						AddRow(11, 7, date, 10.5, 4.5, 0.3, 9.0, "Low", now, now))
				mock.ExpectExec("INSERT INTO burnout_predictions").WillReturnError(fmt.Errorf("lock wait timeout"))
				mock.ExpectRollback()
			},
			wantAnyErr: true,
		},
		{
			name:      "log failure rolls back",
			studyDate: date,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec("INSERT INTO study_logs").WillReturnError(fmt.Errorf("connection refused"))
				mock.ExpectRollback()
			},
			wantAnyErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockRepository(t)
			tt.setupMock(mock)

			log := &StudyLog{
				ID:         tt.id,
				UserID:     7,
				StudyDate:  tt.studyDate.Add(15 * time.Hour),
				StudyHours: 10.5,
				SleepHours: 4.5,
				BreakTime:  0.3,
				ScreenTime: 9,
				MoodLevel:  "Low",
			}
			prediction := &Prediction{
				ProductivityScore: 47,
				RiskLevel:         "High",
				Confidence:        90,
				Source:            "rule",
				RuleName:          "overstudy-undersleep",
			}
			err := repo.SaveEvaluation(context.Background(), log, prediction)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantAnyErr:
				assert.Error(t, err)
				assert.NotErrorIs(t, err, ErrNotFound)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.wantLogID, log.ID)
				assert.Equal(t, now, log.CreatedAt)
				assert.Equal(t, int64(5), prediction.ID)
				assert.Equal(t, int64(7), prediction.UserID)
				assert.True(t, tt.studyDate.Equal(prediction.StudyDate))
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestDBStudyLogRepository_FindByID(t *testing.T) {
	date := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		userID     int64
		setupMock  func(mock sqlmock.Sqlmock)
		wantErr    error
		wantAnyErr bool
	}{
		{
			name:   "found",
			userID: 7,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT \\* FROM study_logs WHERE id = \\? AND user_id = \\?").
					WithArgs(int64(3), int64(7)).
					WillReturnRows(sqlmock.NewRows(studyLogRowColumns).
						AddRow(3, 7, date, 4.0, 7.0, 1.0, 8.0, "Medium", date, date))
			},
		},
		{
			name:   "owned by another user",
			userID: 8,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT \\* FROM study_logs WHERE id = \\? AND user_id = \\?").
					WithArgs(int64(3), int64(8)).
					WillReturnRows(sqlmock.NewRows(studyLogRowColumns))
			},
			wantErr: ErrNotFound,
		},
		{
			name:   "db error",
			userID: 7,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT \\* FROM study_logs WHERE id = \\? AND user_id = \\?").
					WillReturnError(fmt.Errorf("connection refused"))
			},
			wantAnyErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockRepository(t)
			tt.setupMock(mock)

			got, err := repo.FindByID(context.Background(), tt.userID, 3)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantAnyErr:
				assert.Error(t, err)
				assert.NotErrorIs(t, err, ErrNotFound)
			default:
				require.NoError(t, err)
				assert.Equal(t, int64(3), got.ID)
				assert.Equal(t, "Medium", got.MoodLevel)
				assert.Equal(t, 8.0, got.ScreenTime)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestDBStudyLogRepository_FindByUser(t *testing.T) {
	day1 := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)

	tests := []struct {
		name      string
		limit     int
		setupMock func(mock sqlmock.Sqlmock)
		wantIDs   []int64
		wantErr   bool
	}{
		{
			name:  "limited and returned oldest first",
			limit: 2,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT \\* FROM study_logs WHERE user_id = \\? ORDER BY study_date DESC LIMIT \\?").
					WithArgs(int64(7), 2).
					WillReturnRows(sqlmock.NewRows(studyLogRowColumns).
						AddRow(2, 7, day2, 5.0, 7.0, 1.0, 6.0, "High", day2, day2).
						AddRow(1, 7, day1, 4.0, 7.0, 1.0, 8.0, "Medium", day1, day1))
			},
			wantIDs: []int64{1, 2},
		},
		{
			name:  "no limit",
			limit: 0,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT \\* FROM study_logs WHERE user_id = \\? ORDER BY study_date DESC$").
					WithArgs(int64(7)).
					WillReturnRows(sqlmock.NewRows(studyLogRowColumns))
			},
			wantIDs: []int64{},
		},
		{
			name:  "db error",
			limit: 5,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT \\* FROM study_logs").WillReturnError(fmt.Errorf("connection refused"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockRepository(t)
			tt.setupMock(mock)

			got, err := repo.FindByUser(context.Background(), 7, tt.limit)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				ids := make([]int64, 0, len(got))
				for _, l := range got {
					ids = append(ids, l.ID)
				}
				assert.Equal(t, tt.wantIDs, ids)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestDBStudyLogRepository_Delete(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		wantErr   error
	}{
		{
			name: "deleted",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("DELETE FROM study_logs WHERE id = \\? AND user_id = \\?").
					WithArgs(int64(3), int64(7)).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "not found",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("DELETE FROM study_logs WHERE id = \\? AND user_id = \\?").
					WithArgs(int64(3), int64(7)).
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			wantErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockRepository(t)
			tt.setupMock(mock)

			err := repo.Delete(context.Background(), 7, 3)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestDBStudyLogRepository_BatchUpsert(t *testing.T) {
	day1 := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)
	logs := []*StudyLog{
		{UserID: 7, StudyDate: day1, StudyHours: 4, SleepHours: 7, BreakTime: 1, ScreenTime: 8, MoodLevel: "Medium"},
		{UserID: 7, StudyDate: day2, StudyHours: 6, SleepHours: 8, BreakTime: 2, ScreenTime: 5, MoodLevel: "High"},
	}

	tests := []struct {
		name      string
		logs      []*StudyLog
		setupMock func(mock sqlmock.Sqlmock)
		wantErr   bool
	}{
		{
			name: "single multi-row statement in a transaction",
			logs: logs,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec("INSERT INTO study_logs .* VALUES \\(\\?, \\?, \\?, \\?, \\?, \\?, \\?\\), \\(\\?, \\?, \\?, \\?, \\?, \\?, \\?\\) ON DUPLICATE KEY UPDATE").
					WithArgs(
						int64(7), day1, 4.0, 7.0, 1.0, 8.0, "Medium",
						int64(7), day2, 6.0, 8.0, 2.0, 5.0, "High",
					).
					WillReturnResult(sqlmock.NewResult(2, 2))
				mock.ExpectCommit()
			},
		},
		{
			name:      "empty input",
			logs:      nil,
			setupMock: func(mock sqlmock.Sqlmock) {},
		},
		{
			name: "rolls back on error",
			logs: logs,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec("INSERT INTO study_logs").WillReturnError(fmt.Errorf("deadlock"))
				mock.ExpectRollback()
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockRepository(t)
			tt.setupMock(mock)

			err := repo.BatchUpsert(context.Background(), tt.logs)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRepositories_SQLite(t *testing.T) {
	ctx := context.Background()
	db, err := database.OpenInMemory(ctx)
	require.NoError(t, err)
	defer db.Close()

	logs := NewDBStudyLogRepository(db)
	predictions := NewDBPredictionRepository(db)
	day := func(d int) time.Time { return time.Date(2025, 3, d, 0, 0, 0, 0, time.UTC) }

	first := &StudyLog{UserID: 1, StudyDate: day(1), StudyHours: 4, SleepHours: 7, BreakTime: 1, ScreenTime: 8, MoodLevel: "Medium"}
	require.NoError(t, logs.SaveEvaluation(ctx, first,
		&Prediction{ProductivityScore: 80, RiskLevel: "Low", Confidence: 88, Source: "model"}))
	assert.NotZero(t, first.ID)
	assert.False(t, first.CreatedAt.IsZero())
	assert.Equal(t, "2025-03-01", first.StudyDate.Format(study.DateLayout))

	// Same user and date overwrites the row in place.
	again := &StudyLog{UserID: 1, StudyDate: day(1), StudyHours: 10.5, SleepHours: 4.5, BreakTime: 0.3, ScreenTime: 9, MoodLevel: "Low"}
	prediction := &Prediction{ProductivityScore: 47, RiskLevel: "High", Confidence: 90, Source: "rule", RuleName: "overstudy-undersleep"}
	require.NoError(t, logs.SaveEvaluation(ctx, again, prediction))
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, 10.5, again.StudyHours)
	assert.Equal(t, "Low", again.MoodLevel)

	stored, err := predictions.FindByUser(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, prediction.ID, stored[0].ID)
	assert.Equal(t, "High", stored[0].RiskLevel)

	require.NoError(t, logs.BatchUpsert(ctx, []*StudyLog{
		{UserID: 1, StudyDate: day(2), StudyHours: 6, SleepHours: 8, BreakTime: 2, ScreenTime: 5, MoodLevel: "High"},
		{UserID: 1, StudyDate: day(3), StudyHours: 5, SleepHours: 7.5, BreakTime: 1.5, ScreenTime: 6, MoodLevel: "High"},
		{UserID: 2, StudyDate: day(3), StudyHours: 1, SleepHours: 9, BreakTime: 1, ScreenTime: 3, MoodLevel: "Medium"},
	}))

	all, err := logs.FindByUser(ctx, 1, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "2025-03-01", all[0].StudyDate.Format(study.DateLayout))
	assert.Equal(t, "2025-03-03", all[2].StudyDate.Format(study.DateLayout))

	recent, err := logs.FindByUser(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, 6.0, recent[0].StudyHours)
	assert.Equal(t, 5.0, recent[1].StudyHours)

	ranged, err := logs.FindRange(ctx, 1, day(2), day(3))
	require.NoError(t, err)
	assert.Len(t, ranged, 2)

	found, err := logs.FindByID(ctx, 1, first.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.5, found.SleepHours)
	_, err = logs.FindByID(ctx, 2, first.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// Moving a log to another date carries its prediction along.
	moved := &StudyLog{ID: first.ID, UserID: 1, StudyDate: day(5), StudyHours: 6, SleepHours: 8, BreakTime: 2, ScreenTime: 5, MoodLevel: "High"}
	require.NoError(t, logs.SaveEvaluation(ctx, moved,
		&Prediction{ProductivityScore: 100, RiskLevel: "Low", Confidence: 90, Source: "model"}))
	assert.Equal(t, first.ID, moved.ID)
	assert.Equal(t, "2025-03-05", moved.StudyDate.Format(study.DateLayout))
	stored, err = predictions.FindByUser(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "2025-03-05", stored[0].StudyDate.Format(study.DateLayout))
	assert.Equal(t, 100, stored[0].ProductivityScore)

	// Another user cannot update the log.
	stolen := &StudyLog{ID: first.ID, UserID: 2, StudyDate: day(5), StudyHours: 1, SleepHours: 1, BreakTime: 1, ScreenTime: 1, MoodLevel: "Low"}
	assert.ErrorIs(t, logs.SaveEvaluation(ctx, stolen, &Prediction{RiskLevel: "High", Confidence: 90, Source: "rule"}), ErrNotFound)
	found, err = logs.FindByID(ctx, 1, first.ID)
	require.NoError(t, err)
	assert.Equal(t, 6.0, found.StudyHours)

	assert.ErrorIs(t, logs.Delete(ctx, 2, first.ID), ErrNotFound)
	require.NoError(t, logs.Delete(ctx, 1, first.ID))
	_, err = logs.FindByID(ctx, 1, first.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
