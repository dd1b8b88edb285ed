// Package robot wires the competition robot together and exposes the lifecycle entry points the
// field control system calls.
package robot

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/utils"

	"go.viam.com/teleop/components/base"
	"go.viam.com/teleop/components/input"
	"go.viam.com/teleop/components/motor"
	"go.viam.com/teleop/display"
	"go.viam.com/teleop/logging"
	"go.viam.com/teleop/services/teleop"
)

// Parts are the already constructed pieces of a robot.
type Parts struct {
	Chassis    base.Base
	Intake     motor.Motor
	Hopper     motor.Motor
	Controller input.Controller
	// Screen may be nil for a robot without a display.
	Screen        display.Screen
	DisplayPeriod time.Duration
	Teleop        *teleop.Config
	Clock         clock.Clock
}

// Robot is a competition robot. It has exactly five entry points, one per phase of a match, plus
// Close.
type Robot struct {
	chassis base.Base
	intake  motor.Motor
	hopper  motor.Motor
	mapper  *teleop.Mapper
	display *display.Task
	logger  logging.Logger

	mu                      sync.Mutex
	initialized             bool
	cancelBackground        func()
	activeBackgroundWorkers sync.WaitGroup
}

// New returns a robot built from parts.
func New(parts Parts, logger logging.Logger) (*Robot, error) {
	if parts.Chassis == nil {
		return nil, errors.New("robot needs a chassis")
	}
	mapper, err := teleop.NewMapper(
		parts.Teleop,
		parts.Controller,
		parts.Chassis,
		parts.Intake,
		parts.Hopper,
		parts.Clock,
		logger.Sublogger("teleop"),
	)
	if err != nil {
		return nil, err
	}

	r := &Robot{
		chassis: parts.Chassis,
		intake:  parts.Intake,
		hopper:  parts.Hopper,
		mapper:  mapper,
		logger:  logger,
	}
	if parts.Screen != nil {
		if reporter, ok := parts.Chassis.(base.PoseReporter); ok {
			r.display = display.NewTask(parts.Screen, reporter, parts.DisplayPeriod, parts.Clock, logger.Sublogger("display"))
		} else {
			logger.Warn("chassis cannot report its pose, screen will stay blank")
		}
	}
	return r, nil
}

// Initialize runs once when the program starts: it calibrates the chassis and starts the
// diagnostic display in the background. Later calls do nothing.
func (r *Robot) Initialize(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.initialized {
		return nil
	}

	if calibrator, ok := r.chassis.(base.Calibrator); ok {
		if err := calibrator.Calibrate(ctx); err != nil {
			return errors.Wrap(err, "cannot calibrate chassis")
		}
	}

	cancelCtx, cancel := context.WithCancel(context.Background())
	r.cancelBackground = cancel
	if r.display != nil {
		r.activeBackgroundWorkers.Add(1)
		utils.ManagedGo(func() {
			r.display.Run(cancelCtx)
		}, r.activeBackgroundWorkers.Done)
	}
	r.initialized = true
	r.logger.CInfo(ctx, "robot initialized")
	return nil
}

// Disabled runs while the robot is disabled by the field. Nothing happens.
func (r *Robot) Disabled(ctx context.Context) error {
	return nil
}

// CompetitionInitialize runs after connecting to field control, before the match. Nothing
// happens.
func (r *Robot) CompetitionInitialize(ctx context.Context) error {
	return nil
}

// Autonomous runs during the autonomous period. No routine is programmed.
func (r *Robot) Autonomous(ctx context.Context) error {
	return nil
}

// OpControl hands the robot to the driver until ctx is done, then stops the drivetrain and
// actuators.
func (r *Robot) OpControl(ctx context.Context) error {
	r.logger.CInfo(ctx, "driver control started")
	r.mapper.Run(ctx)
	r.logger.Info("driver control ended")
	if err := r.mapper.Stop(context.WithoutCancel(ctx)); err != nil {
		return errors.Wrap(err, "cannot stop after driver control")
	}
	return nil
}

// Reconfigure applies new teleop tuning to a running robot. The CLI calls it when the config file
// changes.
func (r *Robot) Reconfigure(conf *teleop.Config) error {
	return r.mapper.Reconfigure(conf)
}

// Close stops background work and every motor.
func (r *Robot) Close(ctx context.Context) error {
	r.mu.Lock()
	if r.cancelBackground != nil {
		r.cancelBackground()
		r.cancelBackground = nil
	}
	r.mu.Unlock()
	r.activeBackgroundWorkers.Wait()

	return multierr.Combine(
		r.chassis.Stop(ctx),
		r.intake.Stop(ctx),
		r.hopper.Stop(ctx),
	)
}
