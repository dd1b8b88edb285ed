// Package fake implements a fake controller whose state is set directly by tests.
package fake

import (
	"context"
	"sync"

	"go.viam.com/teleop/components/input"
)

// Controller is a fake controller. The zero value is a controller with every stick centered and
// every button released.
type Controller struct {
	mu      sync.Mutex
	axes    map[input.Control]int
	buttons map[input.Control]bool

	// AxisErr and ButtonErr, when set, are returned by every sample.
	AxisErr   error
	ButtonErr error
}

// NewController returns a neutral fake controller.
func NewController() *Controller {
	return &Controller{}
}

// SetAxis sets an analog reading, clamped to the axis range.
func (c *Controller) SetAxis(control input.Control, value int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.axes == nil {
		c.axes = map[input.Control]int{}
	}
	c.axes[control] = input.ClampAxis(value)
}

// SetButton presses or releases a button.
func (c *Controller) SetButton(control input.Control, pressed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.buttons == nil {
		c.buttons = map[input.Control]bool{}
	}
	c.buttons[control] = pressed
}

// SetErrors makes subsequent samples fail.
func (c *Controller) SetErrors(axisErr, buttonErr error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.AxisErr = axisErr
	c.ButtonErr = buttonErr
}

// Reset centers every stick and releases every button.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.axes = nil
	c.buttons = nil
}

// Axis returns the stored reading.
func (c *Controller) Axis(ctx context.Context, control input.Control) (int, error) {
	if !control.IsAxis() {
		return 0, input.NewUnknownAxisError(control)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.AxisErr != nil {
		return 0, c.AxisErr
	}
	return c.axes[control], nil
}

// Button returns the stored button state.
func (c *Controller) Button(ctx context.Context, control input.Control) (bool, error) {
	if !control.IsButton() {
		return false, input.NewUnknownButtonError(control)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ButtonErr != nil {
		return false, c.ButtonErr
	}
	return c.buttons[control], nil
}
