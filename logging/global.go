package logging

import (
	"log/slog"
	"os"
	"strings"
	"sync"
)

type LoggingService struct {
	Logger *slog.Logger
	rotate *RotatingLogger
}

var (
	DefaultLoggingService *LoggingService
	serviceMu             sync.RWMutex
)

// InitLogger initializes the global logger with the default four week retention
func InitLogger(logDir, level string) {
	InitLoggerWithRetention(logDir, level, 4)
}

// InitLoggerWithRetention initializes the global logger. Records go to the
// console as text and to a weekly rotating JSON file under logDir.
func InitLoggerWithRetention(logDir, level string, retentionWeeks int) {
	logger, rotate := SetupLogger(logDir, parseLogLevel(level), retentionWeeks)

	serviceMu.Lock()
	previous := DefaultLoggingService
	DefaultLoggingService = &LoggingService{Logger: logger, rotate: rotate}
	serviceMu.Unlock()

	if previous != nil && previous.rotate != nil {
		_ = previous.rotate.Close()
	}
	slog.SetDefault(logger)
}

// Close flushes and closes the log file, if any
func Close() error {
	serviceMu.Lock()
	defer serviceMu.Unlock()

	if DefaultLoggingService == nil || DefaultLoggingService.rotate == nil {
		return nil
	}
	err := DefaultLoggingService.rotate.Close()
	DefaultLoggingService = nil
	return err
}

// parseLogLevel maps LOG_LEVEL values to slog levels, defaulting to info
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func current() *slog.Logger {
	serviceMu.RLock()
	defer serviceMu.RUnlock()

	if DefaultLoggingService == nil || DefaultLoggingService.Logger == nil {
		return nil
	}
	return DefaultLoggingService.Logger
}

// Logger returns the configured logger, or nil before InitLogger
func Logger() *slog.Logger {
	return current()
}

// fallback is used before InitLogger has run, mostly from tests and the CLI
func fallback(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// Package-level functions for direct access

func Info(msg string, args ...any) {
	if logger := current(); logger != nil {
		logger.Info(msg, args...)
		return
	}
	fallback(slog.LevelInfo).Info(msg, args...)
}

func Error(msg string, args ...any) {
	if logger := current(); logger != nil {
		logger.Error(msg, args...)
		return
	}
	fallback(slog.LevelError).Error(msg, args...)
}

func Warn(msg string, args ...any) {
	if logger := current(); logger != nil {
		logger.Warn(msg, args...)
		return
	}
	fallback(slog.LevelWarn).Warn(msg, args...)
}

func Debug(msg string, args ...any) {
	if logger := current(); logger != nil {
		logger.Debug(msg, args...)
		return
	}
	// Debug stays quiet until a logger is configured
	fallback(slog.LevelInfo).Debug(msg, args...)
}
