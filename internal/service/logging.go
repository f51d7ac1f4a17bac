package service

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/and161185/tzaware/internal/model"
)

// WithLogging wraps svc so every call is logged with its method, duration and error.
// Entry contents are not logged.
func WithLogging(svc EntryService, log *zap.Logger) EntryService {
	return &loggingService{next: svc, log: log}
}

type loggingService struct {
	next EntryService
	log  *zap.Logger
}

func (l *loggingService) done(method string, start time.Time, err error, fields ...zap.Field) {
	fields = append(fields,
		zap.String("method", method),
		zap.Duration("dur", time.Since(start)),
	)
	if err != nil {
		l.log.Warn("entries", append(fields, zap.Error(err))...)
		return
	}
	l.log.Info("entries", fields...)
}

func (l *loggingService) Record(ctx context.Context, info string, at time.Time, expectedOffset *int32) (e *model.Entry, err error) {
	defer func(start time.Time) { l.done("Record", start, err, entryID(e)) }(time.Now())
	return l.next.Record(ctx, info, at, expectedOffset)
}

func (l *loggingService) RecordText(ctx context.Context, info, at string, expectedOffset *int32) (e *model.Entry, err error) {
	defer func(start time.Time) { l.done("RecordText", start, err, entryID(e)) }(time.Now())
	return l.next.RecordText(ctx, info, at, expectedOffset)
}

func (l *loggingService) Get(ctx context.Context, id uuid.UUID) (e *model.Entry, err error) {
	defer func(start time.Time) { l.done("Get", start, err, zap.Stringer("id", id)) }(time.Now())
	return l.next.Get(ctx, id)
}

func (l *loggingService) List(ctx context.Context, limit int) (es []model.Entry, err error) {
	defer func(start time.Time) {
		l.done("List", start, err, zap.Int("limit", limit), zap.Int("n", len(es)))
	}(time.Now())
	return l.next.List(ctx, limit)
}

func (l *loggingService) Count(ctx context.Context) (n int64, err error) {
	defer func(start time.Time) { l.done("Count", start, err, zap.Int64("n", n)) }(time.Now())
	return l.next.Count(ctx)
}

func (l *loggingService) Delete(ctx context.Context, id uuid.UUID) (err error) {
	defer func(start time.Time) { l.done("Delete", start, err, zap.Stringer("id", id)) }(time.Now())
	return l.next.Delete(ctx, id)
}

func entryID(e *model.Entry) zap.Field {
	if e == nil {
		return zap.Skip()
	}
	return zap.Stringer("id", e.ID)
}
