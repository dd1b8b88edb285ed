package fake

import (
	"context"
	"errors"
	"testing"

	"go.viam.com/test"

	"go.viam.com/teleop/components/input"
)

func TestController(t *testing.T) {
	ctx := context.Background()
	c := NewController()

	val, err := c.Axis(ctx, input.AnalogLeftY)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, val, test.ShouldEqual, 0)
	pressed, err := c.Button(ctx, input.ButtonR1)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pressed, test.ShouldBeFalse)

	c.SetAxis(input.AnalogLeftY, -300)
	c.SetButton(input.ButtonR1, true)
	val, err = c.Axis(ctx, input.AnalogLeftY)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, val, test.ShouldEqual, input.AxisMin)
	pressed, err = c.Button(ctx, input.ButtonR1)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pressed, test.ShouldBeTrue)

	_, err = c.Axis(ctx, input.ButtonR1)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = c.Button(ctx, input.AnalogLeftY)
	test.That(t, err, test.ShouldNotBeNil)

	c.SetErrors(errors.New("disconnected"), nil)
	_, err = c.Axis(ctx, input.AnalogLeftY)
	test.That(t, err, test.ShouldBeError, errors.New("disconnected"))
	_, err = c.Button(ctx, input.ButtonR1)
	test.That(t, err, test.ShouldBeNil)

	c.SetErrors(nil, nil)
	c.Reset()
	val, err = c.Axis(ctx, input.AnalogLeftY)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, val, test.ShouldEqual, 0)
}
