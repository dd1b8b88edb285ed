// Package wheeled implements a differential drivetrain over left and right motor groups.
package wheeled

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/utils"

	"go.viam.com/teleop/components/base"
	"go.viam.com/teleop/components/motor"
	"go.viam.com/teleop/logging"
)

// Config is how you configure a wheeled base.
type Config struct {
	Left            []motor.Config `json:"left"`
	Right           []motor.Config `json:"right"`
	TrackWidthIn    float64        `json:"track_width_in"`
	WheelDiameterIn float64        `json:"wheel_diameter_in"`
	// RPM is the wheel speed at full effort, after any external gearing.
	RPM float64 `json:"rpm"`
	// HorizontalDrift is the sideways slip allowance used by point to point motion. It is recorded
	// and validated only; the open loop pose estimate assumes the wheels do not slip.
	HorizontalDrift float64 `json:"horizontal_drift,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (cfg *Config) Validate(path string) error {
	if len(cfg.Left) == 0 {
		return utils.NewConfigValidationFieldRequiredError(path, "left")
	}
	if len(cfg.Right) == 0 {
		return utils.NewConfigValidationFieldRequiredError(path, "right")
	}
	if len(cfg.Left) != len(cfg.Right) {
		return utils.NewConfigValidationError(path,
			errors.Errorf("left and right need to have the same number of motors, not %d vs %d",
				len(cfg.Left), len(cfg.Right)))
	}
	if cfg.TrackWidthIn <= 0 {
		return utils.NewConfigValidationFieldRequiredError(path, "track_width_in")
	}
	if cfg.WheelDiameterIn <= 0 {
		return utils.NewConfigValidationFieldRequiredError(path, "wheel_diameter_in")
	}
	if cfg.RPM <= 0 {
		return utils.NewConfigValidationFieldRequiredError(path, "rpm")
	}
	if cfg.HorizontalDrift < 0 {
		return utils.NewConfigValidationError(path, errors.New("horizontal_drift cannot be negative"))
	}

	ports := map[int]string{}
	checkSide := func(side string, motors []motor.Config) error {
		for i := range motors {
			name := fmt.Sprintf("%s.%d", side, i)
			if err := motors[i].Validate(fmt.Sprintf("%s.%s", path, name)); err != nil {
				return err
			}
			if other, ok := ports[motors[i].AbsPort()]; ok {
				return utils.NewConfigValidationError(path, motor.NewDuplicatePortError(motors[i].AbsPort(), other, name))
			}
			ports[motors[i].AbsPort()] = name
			cartridgeRPM, err := motors[i].Gearset.RPM()
			if err != nil {
				return utils.NewConfigValidationError(path, err)
			}
			if cfg.RPM > cartridgeRPM {
				return utils.NewConfigValidationError(path,
					errors.Errorf("rpm %v is faster than the %s motor cartridge (%v rpm)", cfg.RPM, name, cartridgeRPM))
			}
		}
		return nil
	}
	if err := checkSide("left", cfg.Left); err != nil {
		return err
	}
	return checkSide("right", cfg.Right)
}

// Base is a differential drivetrain. It has no sensors, so its pose is dead reckoned from the
// commanded efforts and is only an estimate.
type Base struct {
	name            string
	left            motor.Motor
	right           motor.Motor
	trackWidthIn    float64
	wheelDiameterIn float64
	rpm             float64

	clk    clock.Clock
	logger logging.Logger

	mu          sync.Mutex
	leftEffort  int
	rightEffort int
	lastUpdate  time.Time
	pose        base.Pose
	headingRad  float64
}

var (
	_ = base.Base(&Base{})
	_ = base.PoseReporter(&Base{})
	_ = base.Calibrator(&Base{})
)

// NewBase returns a new wheeled base driving the given left and right motors, usually
// motor.Groups.
func NewBase(name string, cfg Config, left, right motor.Motor, clk clock.Clock, logger logging.Logger) (*Base, error) {
	if err := cfg.Validate(name); err != nil {
		return nil, err
	}
	if left == nil || right == nil {
		return nil, errors.Errorf("wheeled base %s needs left and right motors", name)
	}
	if clk == nil {
		clk = clock.New()
	}
	b := &Base{
		name:            name,
		left:            left,
		right:           right,
		trackWidthIn:    cfg.TrackWidthIn,
		wheelDiameterIn: cfg.WheelDiameterIn,
		rpm:             cfg.RPM,
		clk:             clk,
		logger:          logger,
		lastUpdate:      clk.Now(),
	}
	logger.Debugw("created wheeled base",
		"name", name,
		"track_width_in", cfg.TrackWidthIn,
		"wheel_diameter_in", cfg.WheelDiameterIn,
		"rpm", cfg.RPM,
		"horizontal_drift", cfg.HorizontalDrift)
	return b, nil
}

// ArcadeDrive mixes forward and turn into side efforts and commands both sides.
func (b *Base) ArcadeDrive(ctx context.Context, forward, turn float64, invertTurn bool, scale float64) error {
	l, r := base.ArcadeMix(forward, turn, invertTurn, scale)
	leftEffort, rightEffort := motor.EffortFromFloat(l), motor.EffortFromFloat(r)

	b.mu.Lock()
	b.integrateLocked()
	b.leftEffort, b.rightEffort = leftEffort, rightEffort
	b.mu.Unlock()

	err := multierr.Combine(
		b.left.SetEffort(ctx, leftEffort),
		b.right.SetEffort(ctx, rightEffort),
	)
	if err != nil {
		return multierr.Combine(errors.Wrapf(err, "cannot drive %s", b.name), b.Stop(ctx))
	}
	return nil
}

// Stop commands the base to stop moving.
func (b *Base) Stop(ctx context.Context) error {
	b.mu.Lock()
	b.integrateLocked()
	b.leftEffort, b.rightEffort = 0, 0
	b.mu.Unlock()

	return multierr.Combine(b.left.Stop(ctx), b.right.Stop(ctx))
}

// IsMoving returns whether either side is powered.
func (b *Base) IsMoving(ctx context.Context) (bool, error) {
	for _, m := range []motor.Motor{b.left, b.right} {
		isMoving, _, err := m.IsPowered(ctx)
		if err != nil {
			return false, err
		}
		if isMoving {
			return true, nil
		}
	}
	return false, nil
}

// Calibrate zeroes the pose estimate.
func (b *Base) Calibrate(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastUpdate = b.clk.Now()
	b.pose = base.Pose{}
	b.headingRad = 0
	b.logger.Infow("calibrated chassis", "name", b.name)
	return nil
}

// Pose returns the dead reckoned pose.
func (b *Base) Pose(ctx context.Context) (base.Pose, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.integrateLocked()
	return b.pose, nil
}

// inchesPerSec converts a side effort to wheel surface speed.
func (b *Base) inchesPerSec(effort int) float64 {
	return float64(effort) / motor.MaxEffort * b.rpm / 60 * math.Pi * b.wheelDiameterIn
}

// integrateLocked advances the pose from the last update to now assuming the current efforts were
// held the whole time.
func (b *Base) integrateLocked() {
	now := b.clk.Now()
	dt := now.Sub(b.lastUpdate).Seconds()
	b.lastUpdate = now
	if dt <= 0 {
		return
	}

	vLeft, vRight := b.inchesPerSec(b.leftEffort), b.inchesPerSec(b.rightEffort)
	distance := (vLeft + vRight) / 2 * dt
	dHeading := (vLeft - vRight) / b.trackWidthIn * dt

	// midpoint heading over the interval
	heading := b.headingRad + dHeading/2
	b.pose.Position.X += distance * math.Sin(heading)
	b.pose.Position.Y += distance * math.Cos(heading)
	b.headingRad += dHeading
	b.pose.Theta = b.headingRad * 180 / math.Pi
}
