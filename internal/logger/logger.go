package logger

import (
	"context"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type ctxKey struct{}

var (
	defaultLogger *zap.SugaredLogger
)

// Init initializes the global logger
func Init(level string, json bool) {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if json {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), parseLevel(level))
	l := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1), zap.AddStacktrace(zapcore.ErrorLevel))

	defaultLogger = l.Sugar()
	zap.ReplaceGlobals(l)
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Get returns the default logger
func Get() *zap.SugaredLogger {
	if defaultLogger == nil {
		Init("info", false)
	}
	return defaultLogger
}

// SetForTest swaps the global logger, returning a restore func.
func SetForTest(l *zap.Logger) func() {
	prev := defaultLogger
	defaultLogger = l.Sugar()
	return func() { defaultLogger = prev }
}

// ContextWith stores key/value pairs that WithContext attaches to every line.
func ContextWith(ctx context.Context, args ...any) context.Context {
	prev, _ := ctx.Value(ctxKey{}).([]any)
	merged := make([]any, 0, len(prev)+len(args))
	merged = append(merged, prev...)
	merged = append(merged, args...)
	return context.WithValue(ctx, ctxKey{}, merged)
}

// WithContext returns a logger with context values
func WithContext(ctx context.Context) *zap.SugaredLogger {
	if ctx == nil {
		return Get()
	}
	if args, ok := ctx.Value(ctxKey{}).([]any); ok && len(args) > 0 {
		return Get().With(args...)
	}
	return Get()
}

// Info logs at info level
func Info(msg string, args ...any) {
	Get().Infow(msg, args...)
}

// Debug logs at debug level
func Debug(msg string, args ...any) {
	Get().Debugw(msg, args...)
}

// Warn logs at warn level
func Warn(msg string, args ...any) {
	Get().Warnw(msg, args...)
}

// Error logs at error level
func Error(msg string, args ...any) {
	Get().Errorw(msg, args...)
}

// Fatal logs at error level and exits
func Fatal(msg string, args ...any) {
	Get().Errorw(msg, args...)
	_ = Get().Sync()
	os.Exit(1)
}

// With returns a logger with the given attributes
func With(args ...any) *zap.SugaredLogger {
	return Get().With(args...)
}

// Sync flushes buffered entries.
func Sync() {
	_ = Get().Sync()
}
