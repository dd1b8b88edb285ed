// Package base defines the drivetrain of a mobile robot.
package base

import (
	"context"
	"fmt"

	"github.com/golang/geo/r3"
)

// A Base is the chassis of a robot. ArcadeDrive is the only motion primitive teleop needs.
type Base interface {
	// ArcadeDrive commands a forward and a turn effort, each in [-127, 127] before scaling.
	// Both are multiplied by scale and the turn is negated when invertTurn is set. It does
	// not block waiting for the chassis to reach any speed.
	ArcadeDrive(ctx context.Context, forward, turn float64, invertTurn bool, scale float64) error

	// Stop commands zero effort to every drive motor.
	Stop(ctx context.Context) error

	// IsMoving returns whether any drive motor is powered.
	IsMoving(ctx context.Context) (bool, error)
}

// PoseReporter is a base that can estimate where it is.
type PoseReporter interface {
	Pose(ctx context.Context) (Pose, error)
}

// Calibrator is a base that needs calibrating before use.
type Calibrator interface {
	Calibrate(ctx context.Context) error
}

// Pose is a position on the field in inches and a heading in degrees, clockwise from +Y.
type Pose struct {
	Position r3.Vector
	Theta    float64
}

func (p Pose) String() string {
	return fmt.Sprintf("(x: %.2f, y: %.2f, theta: %.2f)", p.Position.X, p.Position.Y, p.Theta)
}
