// Package motor defines effort driven smart motors, such as the drivetrain, intake and hopper
// motors of a competition robot.
package motor

import (
	"context"
	"math"

	"github.com/pkg/errors"
	"go.viam.com/utils"
)

// MaxEffort bounds the effort any motor accepts. Positive is forward relative to the motor's
// configured polarity.
const MaxEffort = 127

// MaxPort is the highest smart port number on the brain.
const MaxPort = 21

// A Motor is driven by a signed effort in [-MaxEffort, MaxEffort].
type Motor interface {
	// SetEffort commands the motor. It does not block waiting for the motor to reach any speed.
	SetEffort(ctx context.Context, effort int) error

	// Effort returns the last commanded effort.
	Effort(ctx context.Context) (int, error)

	// Stop commands zero effort.
	Stop(ctx context.Context) error

	// IsPowered returns whether the motor is being driven and the fraction of full effort.
	IsPowered(ctx context.Context) (bool, float64, error)
}

// Gearset is the cartridge installed in a motor.
type Gearset string

// Known gearsets.
const (
	GearsetRed   Gearset = "red"
	GearsetGreen Gearset = "green"
	GearsetBlue  Gearset = "blue"
)

// RPM returns the free speed of the cartridge.
func (g Gearset) RPM() (float64, error) {
	switch g {
	case GearsetRed:
		return 100, nil
	case GearsetGreen, "":
		return 200, nil
	case GearsetBlue:
		return 600, nil
	default:
		return 0, errors.Errorf("unknown gearset %q", g)
	}
}

// Config describes a single motor. A negative port reverses the motor's polarity.
type Config struct {
	Port    int     `json:"port"`
	Gearset Gearset `json:"gearset,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (conf *Config) Validate(path string) error {
	if conf.Port == 0 {
		return utils.NewConfigValidationFieldRequiredError(path, "port")
	}
	if conf.AbsPort() > MaxPort {
		return utils.NewConfigValidationError(path, errors.Errorf("port must be between 1 and %d, got %d", MaxPort, conf.Port))
	}
	if _, err := conf.Gearset.RPM(); err != nil {
		return utils.NewConfigValidationError(path, err)
	}
	return nil
}

// AbsPort returns the physical port number.
func (conf *Config) AbsPort() int {
	if conf.Port < 0 {
		return -conf.Port
	}
	return conf.Port
}

// Reversed returns whether the motor runs with inverted polarity.
func (conf *Config) Reversed() bool {
	return conf.Port < 0
}

// ClampEffort bounds an effort to [-MaxEffort, MaxEffort].
func ClampEffort(effort int) int {
	switch {
	case effort > MaxEffort:
		return MaxEffort
	case effort < -MaxEffort:
		return -MaxEffort
	default:
		return effort
	}
}

// EffortFromFloat rounds and clamps a fractional effort.
func EffortFromFloat(effort float64) int {
	return ClampEffort(int(math.Round(effort)))
}

// PowerPct returns the fraction of full effort an effort represents.
func PowerPct(effort int) float64 {
	return math.Abs(float64(ClampEffort(effort))) / MaxEffort
}
