package logging

import (
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

type testWriter struct {
	tb testing.TB
}

// Write forwards a formatted entry to the underlying `testing.TB` so log lines stay associated
// with the test that produced them, including parallel subtests.
func (tw testWriter) Write(p []byte) (int, error) {
	tw.tb.Helper()
	tw.tb.Log(strings.TrimSuffix(string(p), "\n"))
	return len(p), nil
}

// NewTestAppender returns a logger appender that logs to the underlying `testing.TB` object in the
// local timezone.
func NewTestAppender(tb testing.TB) Appender {
	return zapcore.NewCore(zapcore.NewConsoleEncoder(NewEncoderConfig()), zapcore.AddSync(testWriter{tb}), zapcore.DebugLevel)
}
