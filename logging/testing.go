package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

type testAppender struct {
	tb testing.TB
}

// NewTestAppender returns a logger appender that logs to the underlying `testing.TB`
// object. Writing logs with `tb.Log` correctly associates the log line with a Golang "Test*"
// function, even when tests run in parallel. This appender logs in the local/machine timezone.
//
// Go prepends the filename/line that called `tb.Log`. `Write` calls `tb.Helper` so the reported
// location is not this file.
func NewTestAppender(tb testing.TB) Appender {
	return &testAppender{tb}
}

// Write outputs the log entry to the underlying test object `Log` method.
func (tapp *testAppender) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	tapp.tb.Helper()
	line, err := formatEntry(entry, fields)
	if err != nil {
		tapp.tb.Log(entry.Message)
		return err
	}
	tapp.tb.Log(line)
	return nil
}

// Sync is a no-op.
func (tapp *testAppender) Sync() error {
	return nil
}
