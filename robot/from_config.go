package robot

import (
	"fmt"
	"time"

	"github.com/benbjohnson/clock"

	"go.viam.com/teleop/components/base/wheeled"
	"go.viam.com/teleop/components/input"
	"go.viam.com/teleop/components/motor"
	"go.viam.com/teleop/components/motor/fake"
	"go.viam.com/teleop/config"
	"go.viam.com/teleop/display"
	"go.viam.com/teleop/logging"
)

// Simulation is a robot built from a config with simulated motors.
type Simulation struct {
	*Robot
	// Motors holds every simulated motor keyed by its config name, e.g. "chassis.left.0".
	Motors map[string]*fake.Motor
	// Drivetrain is the simulated chassis.
	Drivetrain *wheeled.Base
}

// FromConfig builds a robot from cfg with a simulated motor on every configured port. The
// controller drives it and screen, if not nil, shows its pose. cfg must have been read with
// config.Read or had Ensure called.
func FromConfig(
	cfg *config.Config,
	controller input.Controller,
	screen display.Screen,
	clk clock.Clock,
	logger logging.Logger,
) (*Simulation, error) {
	if clk == nil {
		clk = clock.New()
	}
	motorLogger := logger.Sublogger("motor")
	motors := map[string]*fake.Motor{}
	newMotor := func(name string, conf motor.Config) *fake.Motor {
		m := fake.NewMotor(name, conf, motorLogger)
		motors[name] = m
		return m
	}
	side := func(name string, confs []motor.Config) (*motor.Group, error) {
		var members []motor.Motor
		for i, conf := range confs {
			members = append(members, newMotor(fmt.Sprintf("chassis.%s.%d", name, i), conf))
		}
		return motor.NewGroup(name, members...)
	}

	left, err := side("left", cfg.Chassis.Left)
	if err != nil {
		return nil, err
	}
	right, err := side("right", cfg.Chassis.Right)
	if err != nil {
		return nil, err
	}
	chassis, err := wheeled.NewBase("chassis", cfg.Chassis, left, right, clk, logger.Sublogger("chassis"))
	if err != nil {
		return nil, err
	}

	if cfg.Display.Disabled {
		screen = nil
	}
	r, err := New(Parts{
		Chassis:       chassis,
		Intake:        newMotor("intake", cfg.Intake),
		Hopper:        newMotor("hopper", cfg.Hopper),
		Controller:    controller,
		Screen:        screen,
		DisplayPeriod: time.Duration(cfg.Display.PeriodMS) * time.Millisecond,
		Teleop:        cfg.ConvertedTeleop,
		Clock:         clk,
	}, logger)
	if err != nil {
		return nil, err
	}
	return &Simulation{Robot: r, Motors: motors, Drivetrain: chassis}, nil
}
