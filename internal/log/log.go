// Package log provides the domtoml command's logger. It wraps go.uber.org/zap
// with a production configuration writing to stderr.
package log

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EnvLevel names the environment variable that sets the log level
// ("debug", "info", "warn", "error").
const EnvLevel = "DOMTOML_LOG_LEVEL"

// Logger is the global logger instance. It logs at warn level until Init
// is called.
var Logger = newLogger(zap.WarnLevel)

// Init rebuilds Logger. verbose forces debug level; otherwise the level comes
// from EnvLevel and defaults to warn.
func Init(verbose bool) {
	level := zap.WarnLevel
	if l, ok := parseLevel(os.Getenv(EnvLevel)); ok {
		level = l
	}
	if verbose {
		level = zap.DebugLevel
	}
	Logger = newLogger(level)
}

func parseLevel(s string) (zapcore.Level, bool) {
	if s == "" {
		return zap.WarnLevel, false
	}
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(strings.ToLower(s))); err != nil {
		return zap.WarnLevel, false
	}
	return l, true
}

func newLogger(level zapcore.Level) *zap.SugaredLogger {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.Encoding = "console"
	cfg.OutputPaths = []string{"stderr"}
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableCaller = true
	cfg.DisableStacktrace = true

	l, err := cfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return zap.NewNop().Sugar()
	}
	return l.Sugar()
}

// Zap returns the underlying structured logger, for passing to
// domtoml.WithLogger.
func Zap() *zap.Logger { return Logger.Desugar() }

// Sync flushes buffered log entries.
func Sync() { _ = Logger.Sync() }

// Info logs a message at info level with optional key-value pairs.
func Info(msg string, kv ...any) { Logger.Infow(msg, kv...) }

// Warn logs a message at warn level with optional key-value pairs.
func Warn(msg string, kv ...any) { Logger.Warnw(msg, kv...) }

// Debug logs a message at debug level with optional key-value pairs.
func Debug(msg string, kv ...any) { Logger.Debugw(msg, kv...) }
