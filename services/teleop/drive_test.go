package teleop

import (
	"math"
	"testing"

	"go.viam.com/test"
)

func TestApplyDeadzone(t *testing.T) {
	for _, tc := range []struct {
		value, deadzone, expected int
	}{
		{0, 10, 0},
		{5, 10, 0},
		{-9, 10, 0},
		{9, 10, 0},
		{10, 10, 10},
		{-10, 10, -10},
		{11, 10, 11},
		{127, 10, 127},
		{-127, 10, -127},
		{3, 0, 3},
	} {
		test.That(t, ApplyDeadzone(tc.value, tc.deadzone), test.ShouldEqual, tc.expected)
	}
}

func TestComputeDriveCommand(t *testing.T) {
	t.Run("turn only, forward inside deadzone", func(t *testing.T) {
		cmd := ComputeDriveCommand(5, 50, DefaultDeadzone)
		test.That(t, cmd.Forward, test.ShouldEqual, 0.0)
		test.That(t, cmd.Turn, test.ShouldEqual, -50.0)
		forward, turn := cmd.Effective()
		test.That(t, forward, test.ShouldEqual, 0.0)
		test.That(t, math.Abs(turn), test.ShouldEqual, 37.5)
		test.That(t, turn, test.ShouldEqual, -37.5)
	})

	t.Run("full forward", func(t *testing.T) {
		cmd := ComputeDriveCommand(-127, 0, DefaultDeadzone)
		test.That(t, cmd.Forward, test.ShouldEqual, 127.0)
		test.That(t, cmd.Turn, test.ShouldEqual, 0.0)
		test.That(t, cmd.Scale, test.ShouldEqual, DefaultDriveScale)
		forward, turn := cmd.Effective()
		test.That(t, forward, test.ShouldEqual, 0.75*127)
		test.That(t, turn, test.ShouldEqual, 0.0)
	})

	t.Run("effective values stay within scaled range", func(t *testing.T) {
		limit := DefaultDriveScale * 127
		for leftY := -127; leftY <= 127; leftY++ {
			for _, rightX := range []int{-127, -10, -9, 0, 9, 10, 127} {
				forward, turn := ComputeDriveCommand(leftY, rightX, DefaultDeadzone).Effective()
				test.That(t, math.Abs(forward), test.ShouldBeLessThanOrEqualTo, limit)
				test.That(t, math.Abs(turn), test.ShouldBeLessThanOrEqualTo, limit)
				if leftY > -10 && leftY < 10 {
					test.That(t, forward, test.ShouldEqual, 0.0)
				} else {
					test.That(t, forward, test.ShouldEqual, -float64(leftY)*DefaultDriveScale)
				}
			}
		}
	})
}
