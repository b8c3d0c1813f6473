package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/i474232898/gowindow/internal/log"
)

func observeLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	prev := log.GetZapLogger()
	core, logs := observer.New(zapcore.DebugLevel)
	log.SetLogger(zap.New(core))
	t.Cleanup(func() { log.SetLogger(prev) })
	return logs
}

func query() (string, int64) { return "SELECT * FROM saved_locations", 0 }

func TestGormLoggerTrace(t *testing.T) {
	logs := observeLogs(t)
	l := NewGormLogger(50*time.Millisecond, logger.Warn)
	ctx := context.Background()

	l.Trace(ctx, time.Now(), query, gorm.ErrRecordNotFound)
	l.Trace(ctx, time.Now(), query, nil)
	assert.Zero(t, logs.Len())

	l.Trace(ctx, time.Now(), query, errors.New("disk I/O error"))
	failed := logs.FilterMessage("database query failed").All()
	require.Len(t, failed, 1)
	assert.Equal(t, zapcore.ErrorLevel, failed[0].Level)
	assert.Equal(t, "SELECT * FROM saved_locations", failed[0].ContextMap()["sql"])

	l.Trace(ctx, time.Now().Add(-time.Second), query, nil)
	assert.Equal(t, 1, logs.FilterMessage("slow query").Len())

	l.LogMode(logger.Silent).Trace(ctx, time.Now(), query, errors.New("ignored"))
	assert.Equal(t, 2, logs.Len())
}

func TestLocationRepositoryLogsThroughZap(t *testing.T) {
	logs := observeLogs(t)
	repo := newTestRepo(t, 10)

	_, err := repo.Get(context.Background(), "skiing", "missing")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, logs.FilterMessage("database query failed").Len())
}
