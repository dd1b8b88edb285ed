// Package competition switches a robot between the phases of a match the way field control
// does: initialize once, then disabled, autonomous and driver control in any order.
package competition

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"go.viam.com/utils"

	"go.viam.com/teleop/logging"
)

// Robot is anything with the five match entry points.
type Robot interface {
	Initialize(ctx context.Context) error
	Disabled(ctx context.Context) error
	CompetitionInitialize(ctx context.Context) error
	Autonomous(ctx context.Context) error
	OpControl(ctx context.Context) error
}

// Mode is a phase of the match.
type Mode string

// Match phases.
const (
	ModeDisabled   Mode = "disabled"
	ModeAutonomous Mode = "autonomous"
	ModeOpControl  Mode = "opcontrol"
)

// ParseMode returns the mode named by s.
func ParseMode(s string) (Mode, error) {
	switch mode := Mode(s); mode {
	case ModeDisabled, ModeAutonomous, ModeOpControl:
		return mode, nil
	default:
		return "", errors.Errorf("unknown mode %q, expected one of [%s %s %s]", s, ModeDisabled, ModeAutonomous, ModeOpControl)
	}
}

// Switcher runs one mode task at a time. Switching modes cancels the running task and waits for
// it to return before the next starts.
type Switcher struct {
	robot  Robot
	logger logging.Logger

	mu      sync.Mutex
	started bool
	mode    Mode
	cancel  func()
	done    chan struct{}

	errMu   sync.Mutex
	lastErr error
}

// NewSwitcher returns a switcher for r. Nothing runs until Start.
func NewSwitcher(r Robot, logger logging.Logger) *Switcher {
	return &Switcher{robot: r, logger: logger}
}

// Start runs Initialize and then enters disabled mode.
func (s *Switcher) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return errors.New("competition already started")
	}
	if err := s.robot.Initialize(ctx); err != nil {
		return errors.Wrap(err, "initialize failed")
	}
	s.started = true
	s.startLocked(ModeDisabled)
	return nil
}

// ConnectField runs CompetitionInitialize. The robot must be disabled.
func (s *Switcher) ConnectField(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return errors.New("competition not started")
	}
	if s.mode != ModeDisabled {
		return errors.Errorf("cannot connect to field while in %s", s.mode)
	}
	return s.robot.CompetitionInitialize(ctx)
}

// SetMode cancels the running mode task and starts the task for mode.
func (s *Switcher) SetMode(mode Mode) error {
	if _, err := ParseMode(string(mode)); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return errors.New("competition not started")
	}
	s.stopLocked()
	s.startLocked(mode)
	return nil
}

// Mode returns the current mode.
func (s *Switcher) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Err returns the error of the most recent mode task that failed.
func (s *Switcher) Err() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.lastErr
}

// Wait blocks until the running mode task returns or ctx is done.
func (s *Switcher) Wait(ctx context.Context) error {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop cancels the running mode task and waits for it.
func (s *Switcher) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *Switcher) task(mode Mode) func(context.Context) error {
	switch mode {
	case ModeAutonomous:
		return s.robot.Autonomous
	case ModeOpControl:
		return s.robot.OpControl
	case ModeDisabled:
		fallthrough
	default:
		return s.robot.Disabled
	}
}

func (s *Switcher) startLocked(mode Mode) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	s.mode = mode
	s.cancel = cancel
	s.done = done

	run := s.task(mode)
	s.logger.Infow("entering mode", "mode", mode)
	utils.PanicCapturingGo(func() {
		defer close(done)
		if err := run(ctx); err != nil {
			s.logger.Errorw("mode task failed", "mode", mode, "error", err)
			s.errMu.Lock()
			s.lastErr = err
			s.errMu.Unlock()
		}
	})
}

func (s *Switcher) stopLocked() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	s.cancel = nil
}
