package logging

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.viam.com/test"
)

type basicStruct struct {
	X int
	y string
	Z string
}

// assertLogMatches asserts the tab separated line written to the buffer against an expected
// line. The time and caller columns are checked for presence only.
func assertLogMatches(t *testing.T, actual *bytes.Buffer, expected string) {
	t.Helper()
	output, err := actual.ReadString('\n')
	test.That(t, err, test.ShouldBeNil)

	actualTrimmed := strings.TrimSuffix(output, "\n")
	actualParts := strings.Split(actualTrimmed, "\t")
	expectedParts := strings.Split(expected, "\t")
	test.That(t, len(actualParts), test.ShouldEqual, len(expectedParts))

	// Time column.
	test.That(t, actualParts[0], test.ShouldNotBeEmpty)
	for idx := 1; idx < len(expectedParts); idx++ {
		if expectedParts[idx] == "<caller>" {
			test.That(t, actualParts[idx], test.ShouldContainSubstring, "impl_test.go:")
			continue
		}
		test.That(t, actualParts[idx], test.ShouldEqual, expectedParts[idx])
	}
}

func newBufferLogger(name string, level Level) (*impl, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := &impl{name, NewAtomicLevelAt(level), true, []Appender{NewWriterAppender(&buf)}}
	return logger, &buf
}

func TestConsoleOutputFormat(t *testing.T) {
	logger, buf := newBufferLogger("impl", DEBUG)

	logger.Info("impl Info log")
	assertLogMatches(t, buf, "<ts>\tINFO\timpl\t<caller>\timpl Info log")

	logger.Infof("impl %s log", "infof")
	assertLogMatches(t, buf, "<ts>\tINFO\timpl\t<caller>\timpl infof log")

	logger.Debugw("impl logw", "key", "value")
	assertLogMatches(t, buf, "<ts>\tDEBUG\timpl\t<caller>\timpl logw\t{\"key\":\"value\"}")

	logger.Warnw("struct", "foo", basicStruct{X: 5, y: "y", Z: "z"})
	assertLogMatches(t, buf, "<ts>\tWARN\timpl\t<caller>\tstruct\t{\"foo\":{\"X\":5,\"Z\":\"z\"}}")

	logger.Errorw("dangling key", "key")
	assertLogMatches(t, buf, "<ts>\tERROR\timpl\t<caller>\tdangling key\t{\"key\":\"undefined\"}")
}

func TestLevelFiltering(t *testing.T) {
	logger, buf := newBufferLogger("filter", WARN)

	logger.Debug("dropped")
	logger.Info("dropped")
	test.That(t, buf.Len(), test.ShouldEqual, 0)

	logger.Warn("kept")
	assertLogMatches(t, buf, "<ts>\tWARN\tfilter\t<caller>\tkept")

	logger.SetLevel(DEBUG)
	test.That(t, logger.GetLevel(), test.ShouldEqual, DEBUG)
	logger.Debug("now kept")
	assertLogMatches(t, buf, "<ts>\tDEBUG\tfilter\t<caller>\tnow kept")
}

func TestContextDebug(t *testing.T) {
	logger, buf := newBufferLogger("ctx", INFO)

	logger.CDebug(context.Background(), "dropped")
	test.That(t, buf.Len(), test.ShouldEqual, 0)

	ctx := EnableDebugMode(context.Background(), "trace")
	test.That(t, IsDebugMode(ctx), test.ShouldBeTrue)
	logger.CDebugw(ctx, "debug for this ctx", "tick", 3)
	assertLogMatches(t, buf, "<ts>\tDEBUG\tctx\t<caller>\tdebug for this ctx\t{\"tick\":3,\"log_ts\":\"trace\"}")

	test.That(t, GetName(EnableDebugMode(context.Background(), "")), test.ShouldHaveLength, 6)
}

func TestSublogger(t *testing.T) {
	logger, buf := newBufferLogger("robot", INFO)
	sub := logger.Sublogger("teleop")
	sub.Info("hello")
	assertLogMatches(t, buf, "<ts>\tINFO\trobot.teleop\t<caller>\thello")

	// Level changes on the sublogger do not leak to the parent.
	sub.SetLevel(ERROR)
	test.That(t, logger.GetLevel(), test.ShouldEqual, INFO)

	blank := NewBlankLogger("").Sublogger("display")
	test.That(t, blank.(*impl).name, test.ShouldEqual, "display")
}

func TestObservedTestLogger(t *testing.T) {
	logger, logs := NewObservedTestLogger(t)
	logger.Infow("tick failed", "err", "boom")
	logger.Debug("detail")

	test.That(t, logs.FilterMessage("tick failed").Len(), test.ShouldEqual, 1)
	entry := logs.FilterMessage("tick failed").All()[0]
	test.That(t, entry.ContextMap()["err"], test.ShouldEqual, "boom")
	test.That(t, logs.FilterMessageSnippet("detail").Len(), test.ShouldEqual, 1)

	zl := logger.AsZap()
	zl.Info("via zap")
	test.That(t, logs.FilterMessage("via zap").Len(), test.ShouldEqual, 1)
}

func TestLevelFromString(t *testing.T) {
	for _, tc := range []struct {
		in       string
		expected Level
	}{
		{"debug", DEBUG},
		{"INFO", INFO},
		{"", INFO},
		{"Warning", WARN},
		{"error", ERROR},
	} {
		t.Run(tc.in, func(t *testing.T) {
			level, err := LevelFromString(tc.in)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, level, test.ShouldEqual, tc.expected)
		})
	}

	_, err := LevelFromString("loud")
	test.That(t, err, test.ShouldNotBeNil)

	var level Level
	test.That(t, level.UnmarshalJSON([]byte(`"warn"`)), test.ShouldBeNil)
	test.That(t, level, test.ShouldEqual, WARN)
	out, err := level.MarshalJSON()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(out), test.ShouldEqual, `"warn"`)
}

func TestFileAppender(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vexbot.log")
	appender, closer := NewFileAppender(FileAppenderConfig{Filename: path})
	logger := NewBlankLogger("file")
	logger.AddAppender(appender)
	for i := 0; i < 3; i++ {
		logger.Infof("line %d", i)
	}
	test.That(t, logger.Sync(), test.ShouldBeNil)
	test.That(t, closer.Close(), test.ShouldBeNil)

	//nolint:gosec
	contents, err := os.ReadFile(path)
	test.That(t, err, test.ShouldBeNil)
	lines := strings.Split(strings.TrimSpace(string(contents)), "\n")
	test.That(t, lines, test.ShouldHaveLength, 3)
	for i, line := range lines {
		test.That(t, line, test.ShouldEndWith, fmt.Sprintf("line %d", i))
	}
}
