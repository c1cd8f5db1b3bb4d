// Package logging configures the application's structured and
// human-readable loggers and builds rotating file loggers for
// long-running services.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/tphakala/frameloop-go/internal/conf"
)

var structuredLogger *slog.Logger
var humanReadableLogger *slog.Logger

// Custom levels beyond the slog defaults.
const (
	LevelTrace = slog.Level(-8)
	LevelFatal = slog.Level(12)
)

var levelNames = map[slog.Leveler]string{
	LevelTrace: "TRACE",
	LevelFatal: "FATAL",
}

// replaceLevelNames customizes level labels for TRACE and FATAL.
func replaceLevelNames(groups []string, a slog.Attr) slog.Attr {
	if a.Key == slog.LevelKey {
		level := a.Value.Any().(slog.Level)
		label, exists := levelNames[level]
		if !exists {
			label = level.String()
		}
		a.Value = slog.StringValue(label)
	}
	return a
}

func newJSONHandler(w io.Writer, level slog.Level) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceLevelNames,
	})
}

func newTextHandler(w io.Writer, level slog.Level) slog.Handler {
	return slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceLevelNames,
	})
}

// Init initializes the logging system with structured JSON output on
// stdout and human-readable text output on stderr, and installs the
// structured logger as the slog default.
func Init() {
	SetLevel(slog.LevelDebug)
}

// SetLevel rebuilds both loggers with the given minimum level.
func SetLevel(level slog.Level) {
	structuredLogger = slog.New(newJSONHandler(os.Stdout, level))
	humanReadableLogger = slog.New(newTextHandler(os.Stderr, level))
	slog.SetDefault(structuredLogger)
}

// SetOutput redirects logger output, e.g. for tests.
func SetOutput(structuredOutput, humanReadableOutput io.Writer) {
	structuredLogger = slog.New(newJSONHandler(structuredOutput, slog.LevelDebug))
	humanReadableLogger = slog.New(newTextHandler(humanReadableOutput, slog.LevelInfo))
	slog.SetDefault(structuredLogger)
}

// Structured returns the globally configured structured (JSON) logger.
// Returns nil if Init() has not been called.
func Structured() *slog.Logger {
	return structuredLogger
}

// HumanReadable returns the globally configured human-readable (Text)
// logger. Returns nil if Init() has not been called.
func HumanReadable() *slog.Logger {
	return humanReadableLogger
}

// ForService creates a new logger instance with the 'service'
// attribute added, using the global structured logger as the base.
// Returns nil if Init() has not been called.
func ForService(serviceName string) *slog.Logger {
	if structuredLogger == nil {
		return nil
	}
	return structuredLogger.With("service", serviceName)
}

// --- Convenience functions using the default logger ---

// Debug logs a debug message using the default slog logger.
func Debug(msg string, args ...any) { slog.Debug(msg, args...) }

// Info logs an info message using the default slog logger.
func Info(msg string, args ...any) { slog.Info(msg, args...) }

// Warn logs a warning message using the default slog logger.
func Warn(msg string, args ...any) { slog.Warn(msg, args...) }

// Error logs an error message using the default slog logger.
func Error(msg string, args ...any) { slog.Error(msg, args...) }

// Fatal logs a fatal message using the custom Fatal level and exits.
func Fatal(msg string, args ...any) {
	slog.Log(context.TODO(), LevelFatal, msg, args...)
	os.Exit(1)
}

// Trace logs a trace message using the custom Trace level.
func Trace(msg string, args ...any) {
	slog.Log(context.TODO(), LevelTrace, msg, args...)
}

// NewFileLogger creates a slog.Logger writing JSON logs to the given
// file with lumberjack rotation based on the main log settings. All
// records carry a 'service' attribute. It returns the logger, a close
// function for the underlying writer, and an error if setup fails.
func NewFileLogger(filePath, serviceName string, level slog.Level) (*slog.Logger, func() error, error) {
	logDir := filepath.Dir(filePath)
	if logDir != "." {
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory %s: %w", logDir, err)
		}
	}

	mainLogConf := conf.Setting().Main.Log

	logWriter := &lumberjack.Logger{
		Filename: filePath,
		Compress: false,
	}

	// Size-based rotation defaults, overridden by the rotation policy.
	maxSizeMB := 100
	maxBackups := 3
	maxAge := 28 // days

	if configMaxSizeMB := int(mainLogConf.MaxSize / (1024 * 1024)); configMaxSizeMB > 0 {
		maxSizeMB = configMaxSizeMB
	}

	switch mainLogConf.Rotation {
	case conf.RotationDaily:
		maxAge = 1
		maxBackups = 30
	case conf.RotationWeekly:
		maxAge = 7
		maxBackups = 4
	case conf.RotationSize:
		// size-based values from config apply as-is
	default:
		slog.Warn("Unknown log rotation type in config, using size-based defaults",
			"configuredType", mainLogConf.Rotation)
	}

	logWriter.MaxSize = maxSizeMB
	logWriter.MaxBackups = maxBackups
	logWriter.MaxAge = maxAge

	logger := slog.New(newJSONHandler(logWriter, level)).With("service", serviceName)

	closeFunc := func() error {
		return logWriter.Close()
	}

	return logger, closeFunc, nil
}
