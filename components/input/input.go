// Package input provides the controller a driver holds: analog sticks and digital buttons,
// sampled once per control tick.
package input

import (
	"context"

	"github.com/pkg/errors"
)

// AxisMin and AxisMax bound every analog reading.
const (
	AxisMin = -127
	AxisMax = 127
)

// Controller is a handheld controller. Both methods return the current state without blocking.
type Controller interface {
	// Axis returns the current reading of an analog control in [AxisMin, AxisMax].
	Axis(ctx context.Context, control Control) (int, error)

	// Button returns whether a digital control is currently held down.
	Button(ctx context.Context, control Control) (bool, error)
}

// Control identifies the input (specific Axis or Button) of a controller.
type Control string

// Controls of the competition controller.
const (
	// Axes.
	AnalogLeftX  Control = "left_x"
	AnalogLeftY  Control = "left_y"
	AnalogRightX Control = "right_x"
	AnalogRightY Control = "right_y"

	// Buttons.
	ButtonL1    Control = "l1"
	ButtonL2    Control = "l2"
	ButtonR1    Control = "r1"
	ButtonR2    Control = "r2"
	ButtonUp    Control = "up"
	ButtonDown  Control = "down"
	ButtonLeft  Control = "left"
	ButtonRight Control = "right"
	ButtonX     Control = "x"
	ButtonB     Control = "b"
	ButtonY     Control = "y"
	ButtonA     Control = "a"
)

// Axes lists every analog control.
var Axes = []Control{AnalogLeftX, AnalogLeftY, AnalogRightX, AnalogRightY}

// Buttons lists every digital control.
var Buttons = []Control{
	ButtonL1, ButtonL2, ButtonR1, ButtonR2,
	ButtonUp, ButtonDown, ButtonLeft, ButtonRight,
	ButtonX, ButtonB, ButtonY, ButtonA,
}

// IsAxis returns whether the control is an analog axis.
func (c Control) IsAxis() bool {
	for _, axis := range Axes {
		if c == axis {
			return true
		}
	}
	return false
}

// IsButton returns whether the control is a digital button.
func (c Control) IsButton() bool {
	for _, button := range Buttons {
		if c == button {
			return true
		}
	}
	return false
}

// ClampAxis bounds a raw reading to [AxisMin, AxisMax].
func ClampAxis(value int) int {
	switch {
	case value > AxisMax:
		return AxisMax
	case value < AxisMin:
		return AxisMin
	default:
		return value
	}
}

// NewUnknownAxisError returns an error for a control that is not an analog axis.
func NewUnknownAxisError(control Control) error {
	return errors.Errorf("%q is not an analog axis", control)
}

// NewUnknownButtonError returns an error for a control that is not a digital button.
func NewUnknownButtonError(control Control) error {
	return errors.Errorf("%q is not a digital button", control)
}
