package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go.viam.com/test"
)

const sampleConfig = "../etc/configs/vexbot.json"

// syncBuffer is written to by the screen and loggers from several goroutines.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func runApp(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut syncBuffer
	err := NewApp(&out, &errOut).Run(append([]string{"vexbot"}, args...))
	return out.String(), errOut.String(), err
}

func TestValidateAction(t *testing.T) {
	out, _, err := runApp(t, "validate", "--config", sampleConfig)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "GEARSET")
	test.That(t, out, test.ShouldContainSubstring, "chassis.left.0")
	test.That(t, out, test.ShouldContainSubstring, "intake")

	_, _, err = runApp(t, "validate", "--config", filepath.Join(t.TempDir(), "missing.json"))
	test.That(t, err, test.ShouldNotBeNil)

	_, _, err = runApp(t, "validate")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "config")
}

func TestSchemaAction(t *testing.T) {
	out, _, err := runApp(t, "schema")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, `"chassis"`)
	test.That(t, out, test.ShouldContainSubstring, `"track_width_in"`)
	test.That(t, out, test.ShouldContainSubstring, `"$ref": "#/$defs/wheeled.Config"`)
}

func TestRunAction(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "forward.jsonl")
	err := os.WriteFile(script, []byte(`{"hold_ms": 200, "axes": {"left_y": 127}, "buttons": {"r1": true}}`+"\n"), 0o600)
	test.That(t, err, test.ShouldBeNil)
	logFile := filepath.Join(dir, "vexbot.log")

	t.Run("until the script ends", func(t *testing.T) {
		start := time.Now()
		out, logs, err := runApp(t, "--log-file", logFile, "run", "--config", sampleConfig, "--script", script)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, time.Since(start) >= 200*time.Millisecond, test.ShouldBeTrue)
		test.That(t, out, test.ShouldContainSubstring, "final pose")
		test.That(t, out, test.ShouldContainSubstring, "chassis.right.1")
		test.That(t, logs, test.ShouldContainSubstring, "run_id")
		test.That(t, logs, test.ShouldContainSubstring, "script finished")

		written, err := os.ReadFile(logFile)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, string(written), test.ShouldContainSubstring, "driver control started")
	})

	t.Run("for a duration", func(t *testing.T) {
		out, _, err := runApp(t, "run", "--config", sampleConfig, "--mode", "disabled", "--duration", "50ms")
		test.That(t, err, test.ShouldBeNil)
		test.That(t, out, test.ShouldContainSubstring, "final pose (x: 0.00, y: 0.00, theta: 0.00)")
	})

	t.Run("unknown mode", func(t *testing.T) {
		_, _, err := runApp(t, "run", "--config", sampleConfig, "--mode", "skills")
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "unknown mode")
	})

	t.Run("bad script", func(t *testing.T) {
		_, _, err := runApp(t, "run", "--config", sampleConfig, "--script", filepath.Join(dir, "missing.jsonl"))
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "cannot open script")
	})
}
