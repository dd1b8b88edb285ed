// Package fake implements a fake base that records what it was commanded.
package fake

import (
	"context"
	"sync"

	"go.viam.com/teleop/components/base"
)

// ArcadeCall is one recorded ArcadeDrive command.
type ArcadeCall struct {
	Forward    float64
	Turn       float64
	InvertTurn bool
	Scale      float64
}

// Base is a fake base that returns what it was provided in each method.
type Base struct {
	mu         sync.Mutex
	calls      []ArcadeCall
	stopCount  int
	calibrated bool
	pose       base.Pose

	// ArcadeErr, when set, is returned by ArcadeDrive. The call is still recorded.
	ArcadeErr error
}

var (
	_ = base.Base(&Base{})
	_ = base.PoseReporter(&Base{})
	_ = base.Calibrator(&Base{})
)

// NewBase returns a stationary fake base.
func NewBase() *Base {
	return &Base{}
}

// ArcadeDrive records the command.
func (b *Base) ArcadeDrive(ctx context.Context, forward, turn float64, invertTurn bool, scale float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, ArcadeCall{forward, turn, invertTurn, scale})
	return b.ArcadeErr
}

// Calls returns every recorded ArcadeDrive command.
func (b *Base) Calls() []ArcadeCall {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]ArcadeCall(nil), b.calls...)
}

// LastCall returns the most recent ArcadeDrive command, if any.
func (b *Base) LastCall() (ArcadeCall, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.calls) == 0 {
		return ArcadeCall{}, false
	}
	return b.calls[len(b.calls)-1], true
}

// Stop records a stop as a zero arcade command.
func (b *Base) Stop(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stopCount++
	b.calls = append(b.calls, ArcadeCall{Scale: 1})
	return nil
}

// StopCount returns how many times Stop was called.
func (b *Base) StopCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stopCount
}

// IsMoving returns whether the last command had any effort.
func (b *Base) IsMoving(ctx context.Context) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.calls) == 0 {
		return false, nil
	}
	last := b.calls[len(b.calls)-1]
	return last.Forward*last.Scale != 0 || last.Turn*last.Scale != 0, nil
}

// SetPose sets the pose reported by Pose.
func (b *Base) SetPose(pose base.Pose) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pose = pose
}

// Pose returns the pose last set with SetPose.
func (b *Base) Pose(ctx context.Context) (base.Pose, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pose, nil
}

// Calibrate marks the base calibrated and zeroes its pose.
func (b *Base) Calibrate(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calibrated = true
	b.pose = base.Pose{}
	return nil
}

// Calibrated returns whether Calibrate was called.
func (b *Base) Calibrated() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calibrated
}
