// Package log provides a structured logging interface for gdlogit training runs.
//
// The interface is slog-compatible so callers can swap implementations; the
// default production backend is zerolog (see zerolog.go). Training code logs
// with the attribute keys from attributes.go so that every run can be
// followed by its estimator.id.
//
// Example usage:
//
//	logger := log.GetLogger().With(
//	    log.ModelNameKey, "GradientDescent",
//	    log.EstimatorIDKey, runID,
//	)
//	logger.Info("training started",
//	    log.SamplesKey, 5000,
//	    log.FeaturesKey, 3001,
//	)
package log

import (
	"context"
)

// Logger defines a structured logging interface compatible with Go's log/slog.
//
// Fields are passed as alternating key/value pairs. An error value is
// rendered with its message and, when it carries one, a stacktrace field.
type Logger interface {
	// Debug logs per-iteration diagnostics; usually disabled.
	Debug(msg string, fields ...any)

	// Info logs run boundaries: training started, training finished.
	//
	// Example:
	//   logger.Info("training finished",
	//       log.LossKey, 0.31,
	//       log.DurationMsKey, 120,
	//   )
	Info(msg string, fields ...any)

	// Warn logs conditions the caller should look at, such as a diverging run.
	Warn(msg string, fields ...any)

	// Error logs an error-level message. Pass the error under the "error"
	// key to get the stacktrace attached.
	Error(msg string, fields ...any)

	// With returns a new Logger with the given fields pre-populated.
	With(fields ...any) Logger

	// Enabled reports whether the logger emits log records at the given level.
	// Use it to skip building expensive fields.
	Enabled(ctx context.Context, level Level) bool
}

// Level represents a logging level, compatible with slog.Level.
type Level int

// Standard logging levels, values are compatible with slog.Level.
const (
	LevelDebug Level = -4 // Detailed diagnostic information
	LevelInfo  Level = 0  // General operational information
	LevelWarn  Level = 4  // Warning conditions
	LevelError Level = 8  // Error conditions
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// LoggerProvider defines an interface for creating and configuring loggers.
type LoggerProvider interface {
	// GetLogger returns the default logger instance.
	GetLogger() Logger

	// GetLoggerWithName returns a logger tagged with a component name.
	GetLoggerWithName(name string) Logger

	// SetLevel sets the minimum log level for all loggers created by this provider.
	SetLevel(level Level)
}
