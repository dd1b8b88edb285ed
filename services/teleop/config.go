package teleop

import (
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"go.viam.com/utils"

	"go.viam.com/teleop/components/input"
	"go.viam.com/teleop/components/motor"
)

// Defaults used when an attribute is not configured.
const (
	DefaultDeadzone   = 10
	DefaultDriveScale = 0.75
	DefaultMaxEffort  = motor.MaxEffort
	DefaultPeriodMS   = 25
)

// Config describes how to configure the teleop service.
type Config struct {
	Deadzone       int            `json:"deadzone"`
	DriveScale     float64        `json:"drive_scale"`
	InvertTurn     bool           `json:"invert_turn"`
	MaxEffort      int            `json:"max_effort"`
	PeriodMS       int            `json:"period_ms"`
	ActuatorPolicy ActuatorPolicy `json:"actuator_policy"`
	ForwardAxis    input.Control  `json:"forward_axis"`
	TurnAxis       input.Control  `json:"turn_axis"`
}

// DefaultConfig returns the tuning of the competition robot: left stick Y drives, right stick X
// turns, and R1/R2 run the intake and hopper against each other.
func DefaultConfig() *Config {
	return &Config{
		Deadzone:       DefaultDeadzone,
		DriveScale:     DefaultDriveScale,
		MaxEffort:      DefaultMaxEffort,
		PeriodMS:       DefaultPeriodMS,
		ActuatorPolicy: PolicyPrimary,
		ForwardAxis:    input.AnalogLeftY,
		TurnAxis:       input.AnalogRightX,
	}
}

// NewConfig decodes an attribute map on top of DefaultConfig and validates the result.
func NewConfig(path string, attributes map[string]interface{}) (*Config, error) {
	conf := DefaultConfig()
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:     "json",
		Result:      conf,
		ErrorUnused: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "error creating decoder for teleop config")
	}
	if err := decoder.Decode(attributes); err != nil {
		return nil, utils.NewConfigValidationError(path, err)
	}
	if err := conf.Validate(path); err != nil {
		return nil, err
	}
	return conf, nil
}

// Validate ensures all parts of the config are valid.
func (conf *Config) Validate(path string) error {
	if conf.Deadzone < 0 {
		return utils.NewConfigValidationError(path, errors.Errorf("deadzone cannot be negative, got %d", conf.Deadzone))
	}
	if conf.DriveScale <= 0 || conf.DriveScale > 1 {
		return utils.NewConfigValidationError(path, errors.Errorf("drive_scale must be in (0, 1], got %v", conf.DriveScale))
	}
	if conf.MaxEffort < 1 || conf.MaxEffort > motor.MaxEffort {
		return utils.NewConfigValidationError(path,
			errors.Errorf("max_effort must be between 1 and %d, got %d", motor.MaxEffort, conf.MaxEffort))
	}
	if conf.PeriodMS <= 0 {
		return utils.NewConfigValidationError(path, errors.Errorf("period_ms must be positive, got %d", conf.PeriodMS))
	}
	if _, err := conf.ActuatorPolicy.strategy(); err != nil {
		return utils.NewConfigValidationError(path, err)
	}
	if conf.ForwardAxis == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "forward_axis")
	}
	if !conf.ForwardAxis.IsAxis() {
		return utils.NewConfigValidationError(path, input.NewUnknownAxisError(conf.ForwardAxis))
	}
	if conf.TurnAxis == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "turn_axis")
	}
	if !conf.TurnAxis.IsAxis() {
		return utils.NewConfigValidationError(path, input.NewUnknownAxisError(conf.TurnAxis))
	}
	if conf.ForwardAxis == conf.TurnAxis {
		return utils.NewConfigValidationError(path,
			errors.Errorf("forward_axis and turn_axis must differ, both are %q", conf.ForwardAxis))
	}
	return nil
}

// Period returns the control tick period.
func (conf Config) Period() time.Duration {
	return time.Duration(conf.PeriodMS) * time.Millisecond
}
