package logging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// GormLogger adapts slog to GORM's logger.Interface. SQL is logged at
// debug; slow queries and query errors at warn.
type GormLogger struct {
	log           *slog.Logger
	slowThreshold time.Duration
}

// NewGormLogger returns the adapter. A zero slowThreshold disables slow
// query warnings.
func NewGormLogger(log *slog.Logger, slowThreshold time.Duration) *GormLogger {
	if log == nil {
		log = slog.Default()
	}
	return &GormLogger{log: log.With("component", "gorm"), slowThreshold: slowThreshold}
}

// LogMode is a no-op; verbosity follows the slog level.
func (g *GormLogger) LogMode(_ gormlogger.LogLevel) gormlogger.Interface {
	return g
}

func (g *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	g.log.DebugContext(ctx, fmt.Sprintf(msg, data...))
}

func (g *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	g.log.WarnContext(ctx, fmt.Sprintf(msg, data...))
}

func (g *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	g.log.ErrorContext(ctx, fmt.Sprintf(msg, data...))
}

func (g *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	elapsed := time.Since(begin)
	sql, rows := fc()

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		g.log.WarnContext(ctx, "query error",
			"sql", sql,
			"rows_affected", rows,
			"duration_ms", elapsed.Milliseconds(),
			"error", err)
	case g.slowThreshold > 0 && elapsed > g.slowThreshold:
		g.log.WarnContext(ctx, "slow query",
			"sql", sql,
			"rows_affected", rows,
			"duration_ms", elapsed.Milliseconds(),
			"threshold", g.slowThreshold)
	default:
		g.log.DebugContext(ctx, "sql query",
			"sql", sql,
			"rows_affected", rows,
			"duration_ms", elapsed.Milliseconds())
	}
}
