// Package teleop maps a driver's controller to the drivetrain, intake and hopper of a
// competition robot.
//
// Every tick the Mapper samples the drive sticks and the buttons the actuator policy needs,
// filters the sticks through a deadzone and issues exactly one arcade drive command and one
// effort to each actuator. Commands are level triggered: they are re-sent every tick even when
// nothing changed.
package teleop

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"go.uber.org/multierr"
	"golang.org/x/time/rate"

	"go.viam.com/teleop/components/base"
	"go.viam.com/teleop/components/input"
	"go.viam.com/teleop/components/motor"
	"go.viam.com/teleop/logging"
)

// Mapper turns controller state into drivetrain and actuator commands.
type Mapper struct {
	controller input.Controller
	base       base.Base
	intake     motor.Motor
	hopper     motor.Motor
	clk        clock.Clock
	logger     logging.Logger

	mu       sync.Mutex
	conf     *Config
	strategy actuatorStrategy
	lastCmd  Command

	ticks atomic.Int64
}

// Command is everything a single tick issued.
type Command struct {
	Drive    DriveCommand
	Actuator ActuatorCommand
}

// NewMapper returns a mapper reading from controller and driving the given base and actuators.
// A nil clock uses the wall clock.
func NewMapper(
	conf *Config,
	controller input.Controller,
	b base.Base,
	intake, hopper motor.Motor,
	clk clock.Clock,
	logger logging.Logger,
) (*Mapper, error) {
	if controller == nil {
		return nil, errors.New("teleop needs a controller")
	}
	if b == nil {
		return nil, errors.New("teleop needs a base")
	}
	if intake == nil || hopper == nil {
		return nil, errors.New("teleop needs intake and hopper motors")
	}
	if clk == nil {
		clk = clock.New()
	}
	m := &Mapper{
		controller: controller,
		base:       b,
		intake:     intake,
		hopper:     hopper,
		clk:        clk,
		logger:     logger,
	}
	if err := m.Reconfigure(conf); err != nil {
		return nil, err
	}
	return m, nil
}

// Reconfigure swaps the tuning used by subsequent ticks. A tick in progress finishes with the old
// tuning.
func (m *Mapper) Reconfigure(conf *Config) error {
	if conf == nil {
		conf = DefaultConfig()
	}
	if err := conf.Validate("teleop"); err != nil {
		return err
	}
	strategy, err := conf.ActuatorPolicy.strategy()
	if err != nil {
		return err
	}
	confCopy := *conf

	m.mu.Lock()
	defer m.mu.Unlock()
	m.conf = &confCopy
	m.strategy = strategy
	m.logger.Infow("teleop configured",
		"deadzone", confCopy.Deadzone,
		"drive_scale", confCopy.DriveScale,
		"invert_turn", confCopy.InvertTurn,
		"actuator_policy", confCopy.ActuatorPolicy,
		"period", confCopy.Period())
	return nil
}

// Config returns a copy of the current tuning.
func (m *Mapper) Config() Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.conf
}

// Ticks returns how many ticks have completed.
func (m *Mapper) Ticks() int64 {
	return m.ticks.Load()
}

// LastCommand returns what the most recent tick issued.
func (m *Mapper) LastCommand() Command {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastCmd
}

// Tick samples the controller once and issues one drive command and one effort to each actuator.
// A control that fails to sample reads as neutral so the robot stops instead of holding a stale
// command. Both outputs are always issued; every error of the tick is returned combined.
func (m *Mapper) Tick(ctx context.Context) error {
	m.mu.Lock()
	conf := m.conf
	strategy := m.strategy
	m.mu.Unlock()

	var errs error
	axis := func(control input.Control) int {
		value, err := m.controller.Axis(ctx, control)
		if err != nil {
			m.logger.CDebugw(ctx, "cannot sample axis, using neutral", "control", control, "error", err)
			errs = multierr.Append(errs, errors.Wrapf(err, "cannot sample %s", control))
			return 0
		}
		return value
	}
	forwardRaw := axis(conf.ForwardAxis)
	turnRaw := axis(conf.TurnAxis)

	buttons := make(map[input.Control]bool, len(strategy.Controls()))
	for _, control := range strategy.Controls() {
		pressed, err := m.controller.Button(ctx, control)
		if err != nil {
			m.logger.CDebugw(ctx, "cannot sample button, using released", "control", control, "error", err)
			errs = multierr.Append(errs, errors.Wrapf(err, "cannot sample %s", control))
			continue
		}
		buttons[control] = pressed
	}

	drive := ComputeDriveCommand(forwardRaw, turnRaw, conf.Deadzone)
	drive.Scale = conf.DriveScale
	actuator := strategy.Compute(buttons, conf.MaxEffort)

	if err := m.base.ArcadeDrive(ctx, drive.Forward, drive.Turn, conf.InvertTurn, drive.Scale); err != nil {
		errs = multierr.Append(errs, errors.Wrap(err, "cannot drive base"))
	}
	if err := m.intake.SetEffort(ctx, actuator.Intake); err != nil {
		errs = multierr.Append(errs, errors.Wrap(err, "cannot set intake effort"))
	}
	if err := m.hopper.SetEffort(ctx, actuator.Hopper); err != nil {
		errs = multierr.Append(errs, errors.Wrap(err, "cannot set hopper effort"))
	}

	m.mu.Lock()
	m.lastCmd = Command{Drive: drive, Actuator: actuator}
	m.mu.Unlock()
	m.ticks.Inc()

	m.logger.CDebugw(ctx, "teleop tick",
		"forward", drive.Forward,
		"turn", drive.Turn,
		"intake", actuator.Intake,
		"hopper", actuator.Hopper)
	return errs
}

// errorLogInterval limits how often a persistently failing tick is logged.
const errorLogInterval = time.Second

// Run ticks once immediately and then once per configured period until ctx is done. Each tick
// completes before the next starts; tick errors are logged and do not end the loop. A period
// change made with Reconfigure applies from the following tick.
func (m *Mapper) Run(ctx context.Context) {
	period := m.Config().Period()
	ticker := m.clk.Ticker(period)
	defer func() {
		ticker.Stop()
	}()

	limiter := rate.NewLimiter(rate.Every(errorLogInterval), 1)
	var suppressed int
	for {
		if err := m.Tick(ctx); err != nil {
			if limiter.AllowN(m.clk.Now(), 1) {
				m.logger.Errorw("teleop tick failed", "error", err, "suppressed", suppressed)
				suppressed = 0
			} else {
				suppressed++
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if newPeriod := m.Config().Period(); newPeriod != period {
			ticker.Stop()
			period = newPeriod
			ticker = m.clk.Ticker(period)
			m.logger.Debugw("teleop period changed", "period", period)
		}
	}
}

// Stop commands the drivetrain and both actuators to zero.
func (m *Mapper) Stop(ctx context.Context) error {
	m.mu.Lock()
	m.lastCmd = Command{Drive: DriveCommand{Scale: m.conf.DriveScale}}
	m.mu.Unlock()
	return multierr.Combine(
		m.base.Stop(ctx),
		m.intake.Stop(ctx),
		m.hopper.Stop(ctx),
	)
}
