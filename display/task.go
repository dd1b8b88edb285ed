package display

import (
	"context"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/multierr"

	"go.viam.com/teleop/components/base"
	"go.viam.com/teleop/logging"
)

// DefaultPeriod is how often the pose task refreshes the screen.
const DefaultPeriod = 20 * time.Millisecond

// Task periodically prints the chassis pose on lines 0 to 2. It only reads the pose.
type Task struct {
	screen   Screen
	reporter base.PoseReporter
	period   time.Duration
	clk      clock.Clock
	logger   logging.Logger
}

// NewTask returns a pose task. A zero period uses DefaultPeriod and a nil clock the wall clock.
func NewTask(screen Screen, reporter base.PoseReporter, period time.Duration, clk clock.Clock, logger logging.Logger) *Task {
	if period <= 0 {
		period = DefaultPeriod
	}
	if clk == nil {
		clk = clock.New()
	}
	return &Task{screen: screen, reporter: reporter, period: period, clk: clk, logger: logger}
}

// Refresh prints the current pose once.
func (t *Task) Refresh(ctx context.Context) error {
	pose, err := t.reporter.Pose(ctx)
	if err != nil {
		return err
	}
	return multierr.Combine(
		t.screen.SetLine(0, fmt.Sprintf("X: %f", pose.Position.X)),
		t.screen.SetLine(1, fmt.Sprintf("Y: %f", pose.Position.Y)),
		t.screen.SetLine(2, fmt.Sprintf("Theta: %f", pose.Theta)),
	)
}

// Run refreshes the screen every period until ctx is done. Failures are logged once until the
// screen recovers.
func (t *Task) Run(ctx context.Context) {
	ticker := t.clk.Ticker(t.period)
	defer ticker.Stop()

	var failing bool
	for {
		if err := t.Refresh(ctx); err != nil {
			if !failing {
				t.logger.Warnw("cannot refresh screen", "error", err)
			}
			failing = true
		} else if failing {
			t.logger.Info("screen refresh recovered")
			failing = false
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
