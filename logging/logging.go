// Package logging package contains the structured loggers used by the walking controller.
package logging

import (
	"os"
	"sync"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gopkg.in/natefinch/lumberjack.v2"
)

// DefaultTimeFormatStr is the time format used by the console appenders.
const DefaultTimeFormatStr = "2006-01-02T15:04:05.000Z0700"

var (
	globalMu     sync.RWMutex
	globalLogger = NewDebugLogger("startup")
)

// ReplaceGlobal replaces the global loggers.
func ReplaceGlobal(logger Logger) {
	globalMu.Lock()
	globalLogger = logger
	globalMu.Unlock()
}

// Global returns the global logger.
func Global() Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalLogger
}

// NewEncoderConfig returns the encoder config shared by console and file appenders.
func NewEncoderConfig() zapcore.EncoderConfig {
	// from https://github.com/uber-go/zap/blob/2314926ec34c23ee21f3dd4399438469668f8097/config.go#L135
	// but use same keys as prod, and color levels.
	return zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.TimeEncoderOfLayout(DefaultTimeFormatStr),
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}

// NewStdoutAppender returns an appender that writes console formatted logs to stdout.
func NewStdoutAppender() Appender {
	return zapcore.NewCore(zapcore.NewConsoleEncoder(NewEncoderConfig()), zapcore.Lock(os.Stdout), zapcore.DebugLevel)
}

// NewFileAppender returns an appender that writes json logs to a size-rotated file.
func NewFileAppender(path string) Appender {
	writer := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    64,
		MaxBackups: 3,
		Compress:   true,
	}
	return zapcore.NewCore(zapcore.NewJSONEncoder(NewEncoderConfig()), zapcore.AddSync(writer), zapcore.DebugLevel)
}

// NewLogger returns a new logger that outputs Info+ logs to stdout.
func NewLogger(name string) Logger {
	return newImpl(name, NewAtomicLevelAt(INFO), []Appender{NewStdoutAppender()})
}

// NewDebugLogger returns a new logger that outputs Debug+ logs to stdout.
func NewDebugLogger(name string) Logger {
	return newImpl(name, NewAtomicLevelAt(DEBUG), []Appender{NewStdoutAppender()})
}

// NewFileLogger returns a new logger that outputs Info+ logs to stdout and to a rotated file at path.
func NewFileLogger(name, path string) Logger {
	return newImpl(name, NewAtomicLevelAt(INFO), []Appender{NewStdoutAppender(), NewFileAppender(path)})
}

// NewTestLogger returns a new logger that outputs Debug+ logs to the test output.
func NewTestLogger(tb testing.TB) Logger {
	logger, _ := NewObservedTestLogger(tb)
	return logger
}

// NewObservedTestLogger is like NewTestLogger but also saves logs to an in memory observer.
func NewObservedTestLogger(tb testing.TB) (Logger, *observer.ObservedLogs) {
	observerCore, observedLogs := observer.New(zap.LevelEnablerFunc(zapcore.DebugLevel.Enabled))
	logger := newImpl("", NewAtomicLevelAt(DEBUG), []Appender{NewTestAppender(tb), observerCore})
	return logger, observedLogs
}
