// Package server serves the analytics service as connect unary procedures with JSON messages.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"connectrpc.com/connect"

	"github.com/at-ishikawa/learnsmart/internal/analytics"
	"github.com/at-ishikawa/learnsmart/internal/cache"
	"github.com/at-ishikawa/learnsmart/internal/dashboard"
	"github.com/at-ishikawa/learnsmart/internal/study"
	"github.com/at-ishikawa/learnsmart/internal/studylog"
)

const ServiceName = "learnsmart.v1.AnalyticsService"

const (
	EvaluateProcedure        = "/" + ServiceName + "/Evaluate"
	SubmitStudyLogProcedure  = "/" + ServiceName + "/SubmitStudyLog"
	ListStudyLogsProcedure   = "/" + ServiceName + "/ListStudyLogs"
	GetStudyLogProcedure     = "/" + ServiceName + "/GetStudyLog"
	UpdateStudyLogProcedure  = "/" + ServiceName + "/UpdateStudyLog"
	DeleteStudyLogProcedure  = "/" + ServiceName + "/DeleteStudyLog"
	ListPredictionsProcedure = "/" + ServiceName + "/ListPredictions"
	GetDashboardProcedure    = "/" + ServiceName + "/GetDashboard"
)

// Page sizes of the list procedures.
const (
	DefaultLogLimit        = 30
	DefaultPredictionLimit = 100
	MaxListLimit           = 365
)

// historyDays is how many days before a submitted record feed trend suggestions.
const historyDays = 7

// Pinger checks the database connection. *sqlx.DB implements it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Handler implements the analytics service procedures.
type Handler struct {
	engine      *analytics.Engine
	logs        studylog.StudyLogRepository
	predictions studylog.PredictionRepository
	cache       cache.Cache
	cacheTTL    time.Duration
	db          Pinger
	now         func() time.Time
}

// NewHandler creates a new Handler. A nil cache disables caching.
func NewHandler(
	engine *analytics.Engine,
	logs studylog.StudyLogRepository,
	predictions studylog.PredictionRepository,
	c cache.Cache,
	cacheTTL time.Duration,
	db Pinger,
) *Handler {
	if c == nil {
		c = cache.Nop{}
	}
	return &Handler{
		engine:      engine,
		logs:        logs,
		predictions: predictions,
		cache:       c,
		cacheTTL:    cacheTTL,
		db:          db,
		now:         time.Now,
	}
}

// Register mounts every procedure and the health check on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	opts := []connect.HandlerOption{connect.WithCodec(jsonCodec{})}
	mux.Handle(EvaluateProcedure, connect.NewUnaryHandler(EvaluateProcedure, h.Evaluate, opts...))
	mux.Handle(SubmitStudyLogProcedure, connect.NewUnaryHandler(SubmitStudyLogProcedure, h.SubmitStudyLog, opts...))
	mux.Handle(ListStudyLogsProcedure, connect.NewUnaryHandler(ListStudyLogsProcedure, h.ListStudyLogs, opts...))
	mux.Handle(GetStudyLogProcedure, connect.NewUnaryHandler(GetStudyLogProcedure, h.GetStudyLog, opts...))
	mux.Handle(UpdateStudyLogProcedure, connect.NewUnaryHandler(UpdateStudyLogProcedure, h.UpdateStudyLog, opts...))
	mux.Handle(DeleteStudyLogProcedure, connect.NewUnaryHandler(DeleteStudyLogProcedure, h.DeleteStudyLog, opts...))
	mux.Handle(ListPredictionsProcedure, connect.NewUnaryHandler(ListPredictionsProcedure, h.ListPredictions, opts...))
	mux.Handle(GetDashboardProcedure, connect.NewUnaryHandler(GetDashboardProcedure, h.GetDashboard, opts...))
	mux.HandleFunc("GET /health", h.Health)
}

// Evaluate scores a record without storing it.
func (h *Handler) Evaluate(
	ctx context.Context,
	req *connect.Request[EvaluateRequest],
) (*connect.Response[EvaluateResponse], error) {
	now := h.now()
	record, err := req.Msg.Record.toStudyRecord(0, now)
	if err != nil {
		return nil, toConnectError(err)
	}
	history := make([]study.StudyRecord, 0, len(req.Msg.History))
	for i, r := range req.Msg.History {
		past, err := r.toStudyRecord(0, now)
		if err == nil {
			err = study.Validate(past)
		}
		if err != nil {
			return nil, toConnectError(fmt.Errorf("history[%d]: %w", i, err))
		}
		history = append(history, past)
	}

	result, err := h.engine.Evaluate(record, history...)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&EvaluateResponse{Result: result}), nil
}

// SubmitStudyLog evaluates a record against the user's preceding week, stores the record and
// its prediction, and invalidates the cached dashboard.
func (h *Handler) SubmitStudyLog(
	ctx context.Context,
	req *connect.Request[SubmitStudyLogRequest],
) (*connect.Response[SubmitStudyLogResponse], error) {
	if err := validateUserID(req.Msg.UserID); err != nil {
		return nil, err
	}
	record, err := req.Msg.Record.toStudyRecord(req.Msg.UserID, h.now())
	if err != nil {
		return nil, toConnectError(err)
	}
	if err := study.Validate(record); err != nil {
		return nil, toConnectError(err)
	}

	log, result, cerr := h.evaluateAndSave(ctx, record, 0)
	if cerr != nil {
		return nil, cerr
	}
	return connect.NewResponse(&SubmitStudyLogResponse{Log: log, Result: result}), nil
}

// GetStudyLog returns one of the user's logs.
func (h *Handler) GetStudyLog(
	ctx context.Context,
	req *connect.Request[GetStudyLogRequest],
) (*connect.Response[GetStudyLogResponse], error) {
	if err := validateStudyLogID(req.Msg.UserID, req.Msg.ID); err != nil {
		return nil, err
	}

	log, err := h.logs.FindByID(ctx, req.Msg.UserID, req.Msg.ID)
	if err != nil {
		return nil, studyLogError(req.Msg.ID, err)
	}
	return connect.NewResponse(&GetStudyLogResponse{Log: *log}), nil
}

// UpdateStudyLog replaces one of the user's logs, re-evaluates it and stores the new prediction.
// Moving a log onto a date that already has another log fails with CodeAlreadyExists.
func (h *Handler) UpdateStudyLog(
	ctx context.Context,
	req *connect.Request[UpdateStudyLogRequest],
) (*connect.Response[UpdateStudyLogResponse], error) {
	if err := validateStudyLogID(req.Msg.UserID, req.Msg.ID); err != nil {
		return nil, err
	}
	record, err := req.Msg.Record.toStudyRecord(req.Msg.UserID, h.now())
	if err != nil {
		return nil, toConnectError(err)
	}
	if err := study.Validate(record); err != nil {
		return nil, toConnectError(err)
	}

	if _, err := h.logs.FindByID(ctx, req.Msg.UserID, req.Msg.ID); err != nil {
		return nil, studyLogError(req.Msg.ID, err)
	}
	sameDay, err := h.logs.FindRange(ctx, record.UserID, record.StudyDate, record.StudyDate)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, fmt.Errorf("load study logs of %s: %w",
			record.StudyDate.Format(study.DateLayout), err))
	}
	for _, other := range sameDay {
		if other.ID != req.Msg.ID {
			return nil, connect.NewError(connect.CodeAlreadyExists, fmt.Errorf("study log %d already exists for %s",
				other.ID, record.StudyDate.Format(study.DateLayout)))
		}
	}

	log, result, cerr := h.evaluateAndSave(ctx, record, req.Msg.ID)
	if cerr != nil {
		return nil, cerr
	}
	return connect.NewResponse(&UpdateStudyLogResponse{Log: log, Result: result}), nil
}

// evaluateAndSave evaluates record against the preceding week and stores it with its
// prediction. A zero id stores a new log for the date; otherwise the log with that id is replaced.
func (h *Handler) evaluateAndSave(
	ctx context.Context,
	record study.StudyRecord,
	id int64,
) (studylog.StudyLog, analytics.Result, *connect.Error) {
	past, err := h.logs.FindRange(ctx, record.UserID,
		record.StudyDate.AddDate(0, 0, -historyDays), record.StudyDate.AddDate(0, 0, -1))
	if err != nil {
		return studylog.StudyLog{}, analytics.Result{}, connect.NewError(connect.CodeInternal, fmt.Errorf("load history: %w", err))
	}
	result, err := h.engine.Evaluate(record, studylog.Records(past)...)
	if err != nil {
		return studylog.StudyLog{}, analytics.Result{}, toConnectError(err)
	}

	log := studylog.FromRecord(record)
	log.ID = id
	prediction := studylog.PredictionOf(record, result.Score, result.Prediction)
	if err := h.logs.SaveEvaluation(ctx, &log, &prediction); err != nil {
		if errors.Is(err, studylog.ErrNotFound) {
			return studylog.StudyLog{}, analytics.Result{}, studyLogError(id, err)
		}
		return studylog.StudyLog{}, analytics.Result{}, connect.NewError(connect.CodeInternal, fmt.Errorf("store study log: %w", err))
	}
	h.invalidateDashboard(ctx, record.UserID)
	return log, result, nil
}

// ListStudyLogs returns the user's most recent logs, oldest first.
func (h *Handler) ListStudyLogs(
	ctx context.Context,
	req *connect.Request[ListStudyLogsRequest],
) (*connect.Response[ListStudyLogsResponse], error) {
	if err := validateUserID(req.Msg.UserID); err != nil {
		return nil, err
	}
	limit, cerr := limitOf(req.Msg.Limit, DefaultLogLimit, MaxListLimit)
	if cerr != nil {
		return nil, cerr
	}

	logs, err := h.logs.FindByUser(ctx, req.Msg.UserID, limit)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, fmt.Errorf("load study logs: %w", err))
	}
	if logs == nil {
		logs = []studylog.StudyLog{}
	}
	return connect.NewResponse(&ListStudyLogsResponse{Logs: logs}), nil
}

// DeleteStudyLog deletes one of the user's logs.
func (h *Handler) DeleteStudyLog(
	ctx context.Context,
	req *connect.Request[DeleteStudyLogRequest],
) (*connect.Response[DeleteStudyLogResponse], error) {
	if err := validateStudyLogID(req.Msg.UserID, req.Msg.ID); err != nil {
		return nil, err
	}

	if err := h.logs.Delete(ctx, req.Msg.UserID, req.Msg.ID); err != nil {
		return nil, studyLogError(req.Msg.ID, err)
	}
	h.invalidateDashboard(ctx, req.Msg.UserID)
	return connect.NewResponse(&DeleteStudyLogResponse{}), nil
}

// ListPredictions returns the user's most recent predictions, oldest first.
func (h *Handler) ListPredictions(
	ctx context.Context,
	req *connect.Request[ListPredictionsRequest],
) (*connect.Response[ListPredictionsResponse], error) {
	if err := validateUserID(req.Msg.UserID); err != nil {
		return nil, err
	}
	limit, cerr := limitOf(req.Msg.Limit, DefaultPredictionLimit, MaxListLimit)
	if cerr != nil {
		return nil, cerr
	}

	predictions, err := h.predictions.FindByUser(ctx, req.Msg.UserID, limit)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, fmt.Errorf("load predictions: %w", err))
	}
	if predictions == nil {
		predictions = []studylog.Prediction{}
	}
	return connect.NewResponse(&ListPredictionsResponse{Predictions: predictions}), nil
}

// GetDashboard returns the user's dashboard, from the cache when possible.
func (h *Handler) GetDashboard(
	ctx context.Context,
	req *connect.Request[GetDashboardRequest],
) (*connect.Response[GetDashboardResponse], error) {
	if err := validateUserID(req.Msg.UserID); err != nil {
		return nil, err
	}

	key := cache.DashboardKey(req.Msg.UserID)
	var cached dashboard.Dashboard
	err := h.cache.Get(ctx, key, &cached)
	if err == nil {
		return connect.NewResponse(&GetDashboardResponse{Dashboard: cached, Cached: true}), nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		slog.WarnContext(ctx, "read cached dashboard", "user_id", req.Msg.UserID, "error", err)
	}

	logs, err := h.logs.FindByUser(ctx, req.Msg.UserID, dashboard.HistoryLimit)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, fmt.Errorf("load study logs: %w", err))
	}
	predictions, err := h.predictions.FindByUser(ctx, req.Msg.UserID, dashboard.HistoryLimit)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, fmt.Errorf("load predictions: %w", err))
	}

	d := dashboard.Build(logs, predictions)
	if err := h.cache.Set(ctx, key, d, h.cacheTTL); err != nil {
		slog.WarnContext(ctx, "cache dashboard", "user_id", req.Msg.UserID, "error", err)
	}
	return connect.NewResponse(&GetDashboardResponse{Dashboard: d}), nil
}

func (h *Handler) invalidateDashboard(ctx context.Context, userID int64) {
	if err := h.cache.Delete(ctx, cache.DashboardKey(userID)); err != nil {
		slog.WarnContext(ctx, "invalidate cached dashboard", "user_id", userID, "error", err)
	}
}
