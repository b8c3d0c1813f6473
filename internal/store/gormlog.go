package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/i474232898/gowindow/internal/log"
)

// GormLogger routes GORM output through the application's zap logger.
type GormLogger struct {
	SlowThreshold time.Duration
	LogLevel      logger.LogLevel
}

// NewGormLogger creates a GORM logger that reports at level and above, and
// warns about queries slower than slowThreshold.
func NewGormLogger(slowThreshold time.Duration, level logger.LogLevel) *GormLogger {
	return &GormLogger{SlowThreshold: slowThreshold, LogLevel: level}
}

// LogMode implements logger.Interface
func (l *GormLogger) LogMode(level logger.LogLevel) logger.Interface {
	newLogger := *l
	newLogger.LogLevel = level
	return &newLogger
}

// Info implements logger.Interface
func (l *GormLogger) Info(_ context.Context, msg string, data ...any) {
	if l.LogLevel >= logger.Info {
		zapLogger().Info(fmt.Sprintf(msg, data...))
	}
}

// Warn implements logger.Interface
func (l *GormLogger) Warn(_ context.Context, msg string, data ...any) {
	if l.LogLevel >= logger.Warn {
		zapLogger().Warn(fmt.Sprintf(msg, data...))
	}
}

// Error implements logger.Interface
func (l *GormLogger) Error(_ context.Context, msg string, data ...any) {
	if l.LogLevel >= logger.Error {
		zapLogger().Error(fmt.Sprintf(msg, data...))
	}
}

// Trace implements logger.Interface. Record-not-found is expected and not logged.
func (l *GormLogger) Trace(_ context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.LogLevel <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.LogLevel >= logger.Error:
		sql, rows := fc()
		zapLogger().Error("database query failed",
			zap.Error(err), zap.String("sql", sql), zap.Duration("duration", elapsed), zap.Int64("rows", rows))
	case l.SlowThreshold > 0 && elapsed > l.SlowThreshold && l.LogLevel >= logger.Warn:
		sql, rows := fc()
		zapLogger().Warn("slow query",
			zap.String("sql", sql), zap.Duration("duration", elapsed), zap.Int64("rows", rows))
	case l.LogLevel >= logger.Info:
		sql, rows := fc()
		zapLogger().Debug("query",
			zap.String("sql", sql), zap.Duration("duration", elapsed), zap.Int64("rows", rows))
	}
}

func zapLogger() *zap.Logger {
	return log.GetZapLogger().Named("gorm")
}

var _ logger.Interface = (*GormLogger)(nil)
