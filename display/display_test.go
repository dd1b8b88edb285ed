package display

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/fatih/color"
	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"go.viam.com/teleop/components/base"
	"go.viam.com/teleop/components/base/fake"
	"go.viam.com/teleop/logging"
)

func TestMemoryScreen(t *testing.T) {
	s := NewMemoryScreen()
	test.That(t, s.SetLine(0, "hello"), test.ShouldBeNil)
	test.That(t, s.Line(0), test.ShouldEqual, "hello")
	test.That(t, s.SetLine(NumLines, "too far"), test.ShouldNotBeNil)
	test.That(t, s.SetLine(-1, "too far"), test.ShouldNotBeNil)
	test.That(t, s.Line(NumLines), test.ShouldEqual, "")
	test.That(t, s.Writes(), test.ShouldEqual, 1)
}

func TestConsoleScreen(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	s := NewConsoleScreen(&buf)
	test.That(t, s.SetLine(1, "Y: 1.000000"), test.ShouldBeNil)
	test.That(t, s.SetLine(1, "Y: 1.000000"), test.ShouldBeNil)
	test.That(t, s.SetLine(1, "Y: 2.000000"), test.ShouldBeNil)
	test.That(t, s.SetLine(9, "nope"), test.ShouldNotBeNil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	test.That(t, lines, test.ShouldResemble, []string{"[screen 1] Y: 1.000000", "[screen 1] Y: 2.000000"})
}

type failingReporter struct{}

func (failingReporter) Pose(ctx context.Context) (base.Pose, error) {
	return base.Pose{}, errors.New("no pose")
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()
	b := fake.NewBase()
	b.SetPose(base.Pose{Position: r3.Vector{X: 1.5, Y: -2}, Theta: 90})
	screen := NewMemoryScreen()
	task := NewTask(screen, b, 0, nil, logging.NewTestLogger(t))
	test.That(t, task.period, test.ShouldEqual, DefaultPeriod)

	test.That(t, task.Refresh(ctx), test.ShouldBeNil)
	test.That(t, screen.Line(0), test.ShouldEqual, "X: 1.500000")
	test.That(t, screen.Line(1), test.ShouldEqual, "Y: -2.000000")
	test.That(t, screen.Line(2), test.ShouldEqual, "Theta: 90.000000")

	failing := NewTask(screen, failingReporter{}, 0, nil, logging.NewTestLogger(t))
	test.That(t, failing.Refresh(ctx), test.ShouldBeError, errors.New("no pose"))
}

func TestRun(t *testing.T) {
	b := fake.NewBase()
	screen := NewMemoryScreen()
	clk := clock.NewMock()
	task := NewTask(screen, b, DefaultPeriod, clk, logging.NewTestLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		task.Run(ctx)
	}()

	waitForWrites(t, screen, 3)
	b.SetPose(base.Pose{Position: r3.Vector{X: 3}})
	clk.Add(DefaultPeriod)
	waitForWrites(t, screen, 6)
	test.That(t, screen.Line(0), test.ShouldEqual, "X: 3.000000")

	cancel()
	wg.Wait()
}

func waitForWrites(t *testing.T, s *MemoryScreen, n int) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for s.Writes() < n {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %d writes, got %d", n, s.Writes())
		}
		time.Sleep(time.Millisecond)
	}
}
