package datastore

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/biodexapp/biodex/internal/errors"
)

// performAutoMigration runs GORM automigration for all tables
func performAutoMigration(db *gorm.DB, debug bool, dbType, connectionInfo string, migrationLogger *slog.Logger) error {
	migrationStart := time.Now()

	if migrationLogger != nil {
		migrationLogger.Debug("Starting database migration", "db_type", dbType, "connection", connectionInfo)
	}

	if err := db.AutoMigrate(&Profile{}, &Species{}, &Comment{}); err != nil {
		return fmt.Errorf("failed to auto-migrate %s database: %w", dbType, err)
	}

	if migrationLogger != nil {
		migrationLogger.Debug("Database migration completed successfully",
			"db_type", dbType,
			"total_duration", time.Since(migrationStart))
	}

	return nil
}

// slowQueryThreshold marks queries worth flagging in the logs
const slowQueryThreshold = 200 * time.Millisecond

// gormSlogAdapter bridges GORM's logger interface to slog
type gormSlogAdapter struct {
	logger *slog.Logger
	level  gormlogger.LogLevel
}

// createGormLogger builds a GORM logger writing through the datastore's slog
// logger. Falls back to GORM's silent logger when no logger is configured.
func createGormLogger(logger *slog.Logger, debug bool) gormlogger.Interface {
	if logger == nil {
		return gormlogger.Default.LogMode(gormlogger.Silent)
	}
	level := gormlogger.Warn
	if debug {
		level = gormlogger.Info
	}
	return &gormSlogAdapter{logger: logger, level: level}
}

func (g *gormSlogAdapter) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	return &gormSlogAdapter{logger: g.logger, level: level}
}

func (g *gormSlogAdapter) Info(ctx context.Context, msg string, args ...any) {
	if g.level >= gormlogger.Info {
		g.logger.InfoContext(ctx, fmt.Sprintf(msg, args...))
	}
}

func (g *gormSlogAdapter) Warn(ctx context.Context, msg string, args ...any) {
	if g.level >= gormlogger.Warn {
		g.logger.WarnContext(ctx, fmt.Sprintf(msg, args...))
	}
}

func (g *gormSlogAdapter) Error(ctx context.Context, msg string, args ...any) {
	if g.level >= gormlogger.Error {
		g.logger.ErrorContext(ctx, fmt.Sprintf(msg, args...))
	}
}

func (g *gormSlogAdapter) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()

	switch {
	case err != nil && g.level >= gormlogger.Error && !isIgnorableTraceError(err):
		g.logger.ErrorContext(ctx, "query failed", "error", err, "sql", sql, "rows", rows, "duration", elapsed)
	case elapsed > slowQueryThreshold && g.level >= gormlogger.Warn:
		g.logger.WarnContext(ctx, "slow query", "sql", sql, "rows", rows, "duration", elapsed)
	case g.level >= gormlogger.Info:
		g.logger.DebugContext(ctx, "query", "sql", sql, "rows", rows, "duration", elapsed)
	}
}

// isIgnorableTraceError filters errors that are normal control flow
func isIgnorableTraceError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
