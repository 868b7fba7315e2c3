package postgres

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"petkimlik/internal/platform/logger"
)

// QueryCounter cuenta sentencias SQL. Global para métricas y por contexto
// para medir un request (tests de cantidad de consultas).
type QueryCounter struct {
	total atomic.Int64
}

func (c *QueryCounter) Total() int64 { return c.total.Load() }

type scopeKey struct{}

// Scope es un contador asociado a un contexto.
type Scope struct {
	n atomic.Int64
}

func (s *Scope) Count() int64 { return s.n.Load() }

func WithScope(ctx context.Context) (context.Context, *Scope) {
	s := &Scope{}
	return context.WithValue(ctx, scopeKey{}, s), s
}

func scopeFrom(ctx context.Context) *Scope {
	s, _ := ctx.Value(scopeKey{}).(*Scope)
	return s
}

// GormLogger envía el SQL de gorm al Logger de la app: debug normal, warn si supera slow.
type GormLogger struct {
	log     logger.Logger
	counter *QueryCounter
	slow    time.Duration
	level   gormlogger.LogLevel
}

func NewGormLogger(log logger.Logger, counter *QueryCounter, slow time.Duration) *GormLogger {
	return &GormLogger{log: log, counter: counter, slow: slow, level: gormlogger.Warn}
}

func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	cp := *l
	cp.level = level
	return &cp
}

func (l *GormLogger) Info(_ context.Context, msg string, args ...any) {
	l.log.Info(msg, map[string]any{"args": args})
}

func (l *GormLogger) Warn(_ context.Context, msg string, args ...any) {
	l.log.Warn(msg, map[string]any{"args": args})
}

func (l *GormLogger) Error(_ context.Context, msg string, args ...any) {
	l.log.Error(msg, map[string]any{"args": args})
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.counter != nil {
		l.counter.total.Add(1)
	}
	if s := scopeFrom(ctx); s != nil {
		s.n.Add(1)
	}
	if l.level == gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()
	fields := map[string]any{"sql": sql, "rows": rows, "elapsed_ms": elapsed.Milliseconds()}

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		fields["err"] = err
		l.log.Error("sql failed", fields)
	case l.slow > 0 && elapsed > l.slow:
		l.log.Warn("slow sql", fields)
	default:
		l.log.Debug("sql", fields)
	}
}
