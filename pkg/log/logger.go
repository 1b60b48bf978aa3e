package log

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/YuminosukeSato/gdlogit/pkg/errors"
)

var (
	providerMu sync.RWMutex
	provider   LoggerProvider = NewZerologProvider(io.Discard, LevelInfo)
)

// ZerologProvider hands out zerolog-backed loggers sharing one writer.
type ZerologProvider struct {
	mu     sync.RWMutex
	w      io.Writer
	level  Level
	logger *ZerologLogger
}

// NewZerologProvider creates a provider writing JSON lines to w.
func NewZerologProvider(w io.Writer, level Level) *ZerologProvider {
	return &ZerologProvider{w: w, level: level, logger: NewZerologLogger(w, level)}
}

// GetLogger implements LoggerProvider.GetLogger.
func (p *ZerologProvider) GetLogger() Logger {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.logger
}

// GetLoggerWithName implements LoggerProvider.GetLoggerWithName.
func (p *ZerologProvider) GetLoggerWithName(name string) Logger {
	return p.GetLogger().With(ComponentKey, name)
}

// SetLevel implements LoggerProvider.SetLevel.
func (p *ZerologProvider) SetLevel(level Level) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.level = level
	p.logger = NewZerologLogger(p.w, level)
}

// SetupLogger installs a zerolog provider on stderr at the given level and
// routes errors.Warn through it.
func SetupLogger(loglevel string) error {
	level, err := ParseLevel(loglevel)
	if err != nil {
		return err
	}
	p := NewZerologProvider(os.Stderr, level)
	SetProvider(p)
	routeWarnings(p.GetLoggerWithName("warnings"))
	return nil
}

// routeWarnings makes logger the single sink for errors.Warn.
func routeWarnings(logger Logger) {
	errors.SetZerologWarnFunc(func(w error) {
		fields := []any{"warning", w}
		var dw *errors.DivergenceWarning
		if errors.As(w, &dw) {
			fields = append(fields,
				ErrorTypeKey, ErrorDivergence,
				EstimatorIDKey, dw.RunID,
				LossKey, dw.FinalCost,
				SuggestionKey, "lower the learning rate or scale the features",
			)
		}
		logger.Warn(w.Error(), fields...)
	})
}

// SetProvider replaces the global provider.
func SetProvider(p LoggerProvider) {
	providerMu.Lock()
	defer providerMu.Unlock()
	provider = p
}

// GetLogger returns the global default logger.
func GetLogger() Logger {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return provider.GetLogger()
}

// GetLoggerWithName returns the global logger tagged with a component name.
func GetLoggerWithName(name string) Logger {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return provider.GetLoggerWithName(name)
}

// ParseLevel maps "debug", "info", "warn" and "error" to a Level.
func ParseLevel(level string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, errors.NewValidationError("log_level", "must be one of debug, info, warn, error", level)
	}
}
