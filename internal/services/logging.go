package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/flashcard-service/internal/models"
)

// LogLevel represents different log levels for service operations
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

// maxLoggedWarnings caps per-file parse warnings written to the log.
const maxLoggedWarnings = 20

// ServiceLogger provides structured logging for service layer operations
type ServiceLogger struct {
	logger *slog.Logger
	config LogConfig
}

type LogConfig struct {
	Service     string
	Component   string
	EnableDebug bool
}

func NewServiceLogger(logger *slog.Logger, config LogConfig) *ServiceLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &ServiceLogger{
		logger: logger.With("service", config.Service, "component", config.Component),
		config: config,
	}
}

func (l *ServiceLogger) Logger() *slog.Logger {
	return l.logger
}

// ===== OPERATION LOGGING =====

func (l *ServiceLogger) LogOperation(ctx context.Context, operation string, fileID string, duration time.Duration, err error) {
	logLevel := LogLevelDebug
	status := "success"

	if err != nil {
		logLevel = LogLevelError
		status = "error"

		if IsValidation(err) {
			logLevel = LogLevelWarn
			status = "validation_error"
		} else if IsNotFound(err) {
			logLevel = LogLevelWarn
			status = "not_found"
		}
	}

	attrs := []slog.Attr{
		slog.String("operation", operation),
		slog.String("status", status),
		slog.Duration("duration", duration),
	}
	if fileID != "" {
		attrs = append(attrs, slog.String("file_id", fileID))
	}

	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		if validationErr, ok := err.(ValidationErrors); ok {
			attrs = append(attrs, slog.Int("validation_errors_count", len(validationErr)))
		}
	}

	message := fmt.Sprintf("%s operation %s", operation, status)

	switch logLevel {
	case LogLevelDebug:
		if l.config.EnableDebug {
			l.logger.LogAttrs(ctx, slog.LevelInfo, message, attrs...)
		} else {
			l.logger.LogAttrs(ctx, slog.LevelDebug, message, attrs...)
		}
	case LogLevelInfo:
		l.logger.LogAttrs(ctx, slog.LevelInfo, message, attrs...)
	case LogLevelWarn:
		l.logger.LogAttrs(ctx, slog.LevelWarn, message, attrs...)
	case LogLevelError:
		l.logger.LogAttrs(ctx, slog.LevelError, message, attrs...)
	}
}

// LogParseWarnings writes one warn line per skipped record.
func (l *ServiceLogger) LogParseWarnings(ctx context.Context, fileName string, warnings []models.ParseWarning) {
	for i, w := range warnings {
		if i == maxLoggedWarnings {
			l.logger.WarnContext(ctx, "Further parse warnings suppressed",
				"file", fileName,
				"suppressed", len(warnings)-maxLoggedWarnings)
			return
		}
		l.logger.WarnContext(ctx, "Skipped question record",
			"file", fileName,
			"file_id", w.FileID,
			"location", w.Location,
			"reason", w.Message,
			"value", w.Value)
	}
}

// LogFileSkipped records a file left out of a scan or selection.
func (l *ServiceLogger) LogFileSkipped(ctx context.Context, operation, path string, err error) {
	level := slog.LevelError
	if IsCorruptFile(err) {
		level = slog.LevelWarn
	}
	l.logger.Log(ctx, level, "Skipped question file",
		"operation", operation,
		"path", path,
		"error", err)
}

// ===== MIDDLEWARE AND HELPERS =====

// ContextualLogger wraps operations with automatic logging
type ContextualLogger struct {
	logger    *ServiceLogger
	operation string
	startTime time.Time
	ctx       context.Context
}

func (l *ServiceLogger) WithOperation(ctx context.Context, operation string) *ContextualLogger {
	return &ContextualLogger{
		logger:    l,
		operation: operation,
		startTime: time.Now(),
		ctx:       ctx,
	}
}

func (cl *ContextualLogger) LogResult(fileID string, err error) {
	cl.logger.LogOperation(cl.ctx, cl.operation, fileID, time.Since(cl.startTime), err)
}
