package log

import (
	"context"
	"fmt"
	"io"

	"github.com/YuminosukeSato/gdlogit/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	// ErrAttrKey is the conventional key for error values.
	ErrAttrKey = "error"
	// StacktraceAttrKey holds the stack extracted from cockroachdb/errors.
	StacktraceAttrKey = "stacktrace"
	badKey            = "!BADKEY"
)

// ZerologLogger implements Logger on top of zerolog.
type ZerologLogger struct {
	zl    zerolog.Logger
	level Level
}

// NewZerologLogger returns a JSON logger writing to w.
func NewZerologLogger(w io.Writer, level Level) *ZerologLogger {
	zl := zerolog.New(w).Level(toZerologLevel(level)).With().Timestamp().Logger()
	return &ZerologLogger{zl: zl, level: level}
}

// NewNopLogger returns a logger that discards everything.
func NewNopLogger() *ZerologLogger {
	return &ZerologLogger{zl: zerolog.Nop(), level: LevelError + 1}
}

func (z *ZerologLogger) Debug(msg string, fields ...any) { emit(z.zl.Debug(), msg, fields) }
func (z *ZerologLogger) Info(msg string, fields ...any)  { emit(z.zl.Info(), msg, fields) }
func (z *ZerologLogger) Warn(msg string, fields ...any)  { emit(z.zl.Warn(), msg, fields) }
func (z *ZerologLogger) Error(msg string, fields ...any) { emit(z.zl.Error(), msg, fields) }

// With implements Logger.With.
func (z *ZerologLogger) With(fields ...any) Logger {
	ctx := z.zl.With()
	for i := 0; i+1 < len(fields); i += 2 {
		key := fmt.Sprint(fields[i])
		if err, ok := fields[i+1].(error); ok {
			ctx = ctx.AnErr(key, err)
			continue
		}
		ctx = ctx.Interface(key, fields[i+1])
	}
	return &ZerologLogger{zl: ctx.Logger(), level: z.level}
}

// Enabled implements Logger.Enabled.
func (z *ZerologLogger) Enabled(_ context.Context, level Level) bool {
	return level >= z.level
}

func emit(e *zerolog.Event, msg string, fields []any) {
	if e == nil {
		return
	}
	for i := 0; i+1 < len(fields); i += 2 {
		key := fmt.Sprint(fields[i])
		switch val := fields[i+1].(type) {
		case error:
			e.AnErr(key, val)
			if st := errors.GetSafeStack(val); st != "" {
				e.Str(StacktraceAttrKey, st)
			}
			var obj zerolog.LogObjectMarshaler
			if errors.As(val, &obj) {
				e.Object(key+"_details", obj)
			}
		default:
			e.Interface(key, val)
		}
	}
	if len(fields)%2 == 1 {
		e.Interface(badKey, fields[len(fields)-1])
	}
	e.Msg(msg)
}

func toZerologLevel(level Level) zerolog.Level {
	switch {
	case level <= LevelDebug:
		return zerolog.DebugLevel
	case level <= LevelInfo:
		return zerolog.InfoLevel
	case level <= LevelWarn:
		return zerolog.WarnLevel
	case level <= LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.Disabled
	}
}
