// Package config defines the structures to configure a robot and read that configuration from
// disk.
package config

import (
	"fmt"
	"sort"

	"github.com/Masterminds/semver/v3"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.viam.com/utils"

	"go.viam.com/teleop/components/base/wheeled"
	"go.viam.com/teleop/components/motor"
	"go.viam.com/teleop/logging"
	"go.viam.com/teleop/services/teleop"
)

// SupportedVersions is the range of config file versions this build understands.
const SupportedVersions = "^1"

// AttributeMap is a convenience wrapper for free form attributes.
type AttributeMap map[string]interface{}

// Config describes the robot: its drivetrain, actuators and how the driver controls them.
type Config struct {
	Version string         `json:"version,omitempty"`
	Chassis wheeled.Config `json:"chassis"`
	Intake  motor.Config   `json:"intake"`
	Hopper  motor.Config   `json:"hopper"`
	Teleop  AttributeMap   `json:"teleop,omitempty"`
	Display DisplayConfig  `json:"display,omitempty"`
	Log     LogConfig      `json:"log,omitempty"`

	// ConfigFilePath is the file the config was read from, if any.
	ConfigFilePath string `json:"-"`
	// ConvertedTeleop is Teleop decoded and validated by Ensure.
	ConvertedTeleop *teleop.Config `json:"-"`
}

// DisplayConfig configures the diagnostic screen.
type DisplayConfig struct {
	Disabled bool `json:"disabled,omitempty"`
	PeriodMS int  `json:"period_ms,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (conf *DisplayConfig) Validate(path string) error {
	if conf.PeriodMS < 0 {
		return utils.NewConfigValidationError(path, errors.Errorf("period_ms cannot be negative, got %d", conf.PeriodMS))
	}
	return nil
}

// LogConfig configures where logs go.
type LogConfig struct {
	Level logging.Level                `json:"level,omitempty"`
	File  *logging.FileAppenderConfig `json:"file,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (conf *LogConfig) Validate(path string) error {
	if conf.File != nil && conf.File.Filename == "" {
		return utils.NewConfigValidationFieldRequiredError(fmt.Sprintf("%s.file", path), "filename")
	}
	return nil
}

// Ensure validates every section and converts the teleop attributes. It must be called before a
// config is used.
func (c *Config) Ensure() error {
	if c.Version != "" {
		if err := checkVersion(c.Version); err != nil {
			return utils.NewConfigValidationError("version", err)
		}
	}
	if err := c.Chassis.Validate("chassis"); err != nil {
		return err
	}
	if err := c.Intake.Validate("intake"); err != nil {
		return err
	}
	if err := c.Hopper.Validate("hopper"); err != nil {
		return err
	}
	if err := c.checkPorts(); err != nil {
		return err
	}
	if err := c.Display.Validate("display"); err != nil {
		return err
	}
	if err := c.Log.Validate("log"); err != nil {
		return err
	}

	converted, err := teleop.NewConfig("teleop", c.Teleop)
	if err != nil {
		return err
	}
	c.ConvertedTeleop = converted
	return nil
}

func checkVersion(version string) error {
	constraint, err := semver.NewConstraint(SupportedVersions)
	if err != nil {
		return err
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return errors.Wrapf(err, "invalid version %q", version)
	}
	if !constraint.Check(v) {
		return errors.Errorf("version %s is not supported, need %s", v, SupportedVersions)
	}
	return nil
}

func (c *Config) chassisPorts() map[int]string {
	ports := map[int]string{}
	for i, m := range c.Chassis.Left {
		ports[m.AbsPort()] = fmt.Sprintf("chassis.left.%d", i)
	}
	for i, m := range c.Chassis.Right {
		ports[m.AbsPort()] = fmt.Sprintf("chassis.right.%d", i)
	}
	return ports
}

// Ports returns the name of every motor keyed by physical port.
func (c *Config) Ports() map[int]string {
	ports := c.chassisPorts()
	ports[c.Intake.AbsPort()] = "intake"
	ports[c.Hopper.AbsPort()] = "hopper"
	return ports
}

// SortedPorts returns every used port in ascending order.
func (c *Config) SortedPorts() []int {
	ports := lo.Keys(c.Ports())
	sort.Ints(ports)
	return ports
}

func (c *Config) checkPorts() error {
	chassisPorts := c.chassisPorts()
	if name, ok := chassisPorts[c.Intake.AbsPort()]; ok {
		return utils.NewConfigValidationError("intake", motor.NewDuplicatePortError(c.Intake.AbsPort(), name, "intake"))
	}
	if name, ok := chassisPorts[c.Hopper.AbsPort()]; ok {
		return utils.NewConfigValidationError("hopper", motor.NewDuplicatePortError(c.Hopper.AbsPort(), name, "hopper"))
	}
	if c.Intake.AbsPort() == c.Hopper.AbsPort() {
		return utils.NewConfigValidationError("hopper", motor.NewDuplicatePortError(c.Hopper.AbsPort(), "intake", "hopper"))
	}
	return nil
}
