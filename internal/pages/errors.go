package pages

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/yungbote/learnpages/internal/platform/apierr"
	"github.com/yungbote/learnpages/internal/platform/ctxutil"
	"github.com/yungbote/learnpages/internal/platform/logger"
)

// DataIntegrityError reports an entity the pipeline expected but did not find
// in already-fetched data.
type DataIntegrityError struct {
	LessonID uuid.UUID
	Index    int
}

func (e *DataIntegrityError) Error() string {
	return fmt.Sprintf("lesson %s does not have a resource at index %d", e.LessonID, e.Index)
}

func (e *DataIntegrityError) Unwrap() error { return apierr.ErrIntegrity }

// emptyResponse reports a source that returned neither a row nor an error.
func emptyResponse(kind string, id uuid.UUID) error {
	return fmt.Errorf("%s %s: empty response: %w", kind, id, apierr.ErrNotFound)
}

// ErrorContext identifies the pipeline that failed.
type ErrorContext struct {
	Intent     Intent
	Store      *Store
	Generation uint64
}

// ErrorReporter receives the single terminal failure of a pipeline.
type ErrorReporter interface {
	ReportError(ctx context.Context, ec ErrorContext, err error)
}

// StateErrorReporter logs the failure and renders it into the failing
// pipeline's store: CORE_SET_ERROR followed by clearing the loading flag.
type StateErrorReporter struct {
	log *logger.Logger
}

func NewStateErrorReporter(log *logger.Logger) *StateErrorReporter {
	return &StateErrorReporter{log: log.With("component", "StateErrorReporter")}
}

func (r *StateErrorReporter) ReportError(ctx context.Context, ec ErrorContext, err error) {
	if err == nil {
		return
	}
	ae := apierr.FromError(err)
	fields := append([]interface{}{
		"page", ec.Intent.Page,
		"intent", ec.Intent.String(),
		"status", ae.Status,
		"code", ae.Code,
		"error", err,
	}, ctxutil.LogFields(ctx)...)
	if ae.Status >= 500 {
		r.log.Error("page pipeline failed", fields...)
	} else {
		r.log.Warn("page pipeline failed", fields...)
	}
	if ec.Store == nil {
		return
	}
	applied := ec.Store.Dispatch(ec.Generation, SetError(ErrorInfo{
		Message: err.Error(),
		Code:    ae.Code,
		Status:  ae.Status,
	}))
	if !applied {
		r.log.Debug("discarding error from superseded pipeline", "intent", ec.Intent.String())
		return
	}
	ec.Store.Dispatch(ec.Generation, SetPageLoading(false))
}
