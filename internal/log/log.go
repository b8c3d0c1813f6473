// Package log provides centralized logging functionality using zap logger.
package log

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

var (
	mu         sync.RWMutex
	sugar      *zap.SugaredLogger
	baseLogger *zap.Logger
)

// Init initializes the package-level logger
func Init(debug bool) error {
	var zapLogger *zap.Logger
	var err error

	if debug {
		zapLogger, err = zap.NewDevelopment(zap.AddCallerSkip(1))
	} else {
		zapLogger, err = zap.NewProduction(zap.AddCallerSkip(1))
	}
	if err != nil {
		return fmt.Errorf("can't initialize zap logger: %w", err)
	}

	mu.Lock()
	baseLogger = zapLogger
	sugar = zapLogger.Sugar()
	mu.Unlock()
	return nil
}

// SetLogger replaces the package-level logger, e.g. with zaptest or zap.NewNop in tests.
func SetLogger(l *zap.Logger) {
	mu.Lock()
	baseLogger = l
	sugar = l.Sugar()
	mu.Unlock()
}

// GetZapLogger returns the base zap logger for cases where it's needed
func GetZapLogger() *zap.Logger {
	get()
	mu.RLock()
	defer mu.RUnlock()
	return baseLogger
}

func get() *zap.SugaredLogger {
	mu.RLock()
	l := sugar
	mu.RUnlock()
	if l != nil {
		return l
	}

	mu.Lock()
	defer mu.Unlock()
	if sugar == nil {
		// Fallback logger if not initialized
		baseLogger, _ = zap.NewProduction(zap.AddCallerSkip(1))
		sugar = baseLogger.Sugar()
	}
	return sugar
}

// Sync flushes any buffered log entries
func Sync() {
	_ = get().Sync()
}

func Debugf(template string, args ...any) {
	get().Debugf(template, args...)
}

func Debugw(msg string, keysAndValues ...any) {
	get().Debugw(msg, keysAndValues...)
}

func Infof(template string, args ...any) {
	get().Infof(template, args...)
}

func Infow(msg string, keysAndValues ...any) {
	get().Infow(msg, keysAndValues...)
}

func Warnf(template string, args ...any) {
	get().Warnf(template, args...)
}

func Warnw(msg string, keysAndValues ...any) {
	get().Warnw(msg, keysAndValues...)
}

func Errorw(msg string, keysAndValues ...any) {
	get().Errorw(msg, keysAndValues...)
}
