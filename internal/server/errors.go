package server

import (
	"errors"
	"fmt"

	"connectrpc.com/connect"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/protobuf/proto"

	"github.com/at-ishikawa/learnsmart/internal/study"
	"github.com/at-ishikawa/learnsmart/internal/studylog"
)

// toConnectError maps an error to a connect error. Validation errors become
// CodeInvalidArgument with a BadRequest detail listing every field.
func toConnectError(err error) *connect.Error {
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return connectErr
	}
	if verr, ok := study.AsValidationError(err); ok {
		return invalidArgument(verr)
	}
	if errors.Is(err, studylog.ErrNotFound) {
		return connect.NewError(connect.CodeNotFound, err)
	}
	return connect.NewError(connect.CodeInternal, err)
}

func invalidArgument(verr *study.ValidationError) *connect.Error {
	connectErr := connect.NewError(connect.CodeInvalidArgument, verr)
	fieldViolations := make([]*errdetails.BadRequest_FieldViolation, 0, len(verr.Violations))
	for _, v := range verr.Violations {
		fieldViolations = append(fieldViolations, &errdetails.BadRequest_FieldViolation{
			Field:       v.Field,
			Description: v.Description,
		})
	}
	return withDetail(connectErr, &errdetails.BadRequest{FieldViolations: fieldViolations})
}

// withDetail attaches msg to connectErr. A detail that cannot be encoded is dropped.
func withDetail(connectErr *connect.Error, msg proto.Message) *connect.Error {
	if detail, err := connect.NewErrorDetail(msg); err == nil {
		connectErr.AddDetail(detail)
	}
	return connectErr
}

func fieldError(field, description string) *connect.Error {
	return invalidArgument(&study.ValidationError{Violations: []study.FieldViolation{{
		Field:       field,
		Description: description,
	}}})
}

func validateUserID(userID int64) *connect.Error {
	if userID <= 0 {
		return fieldError("user_id", "user_id must be greater than 0")
	}
	return nil
}

func validateStudyLogID(userID, id int64) *connect.Error {
	if err := validateUserID(userID); err != nil {
		return err
	}
	if id <= 0 {
		return fieldError("id", "id must be greater than 0")
	}
	return nil
}

// studyLogError maps a failed lookup of the study log id. Logs of other users are not found.
func studyLogError(id int64, err error) *connect.Error {
	if errors.Is(err, studylog.ErrNotFound) {
		return connect.NewError(connect.CodeNotFound, fmt.Errorf("study log %d: %w", id, err))
	}
	return connect.NewError(connect.CodeInternal, fmt.Errorf("study log %d: %w", id, err))
}

// limitOf returns limit, or def when it is not positive, capped at maxLimit.
func limitOf(limit, def, maxLimit int) (int, *connect.Error) {
	if limit < 0 {
		return 0, fieldError("limit", "limit must not be negative")
	}
	if limit == 0 {
		return def, nil
	}
	return min(limit, maxLimit), nil
}
