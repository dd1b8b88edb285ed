// Package fake implements a fake motor.
package fake

import (
	"context"
	"sync"

	"go.uber.org/atomic"

	"go.viam.com/teleop/components/motor"
	"go.viam.com/teleop/logging"
)

// Motor is a fake motor that records every command.
type Motor struct {
	Name   string
	Config motor.Config
	Logger logging.Logger

	mu     sync.Mutex
	effort int
	// SetEffortErr, when set, is returned by SetEffort and Stop. The effort is still recorded.
	SetEffortErr error

	commands atomic.Int64
}

var _ = motor.Motor(&Motor{})

// NewMotor returns a stopped fake motor.
func NewMotor(name string, conf motor.Config, logger logging.Logger) *Motor {
	return &Motor{Name: name, Config: conf, Logger: logger}
}

// SetEffort records the clamped effort.
func (m *Motor) SetEffort(ctx context.Context, effort int) error {
	effort = motor.ClampEffort(effort)
	m.commands.Inc()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Logger != nil && effort != m.effort {
		m.Logger.CDebugw(ctx, "effort changed", "motor", m.Name, "from", m.effort, "to", effort)
	}
	m.effort = effort
	return m.SetEffortErr
}

// Effort returns the last commanded effort.
func (m *Motor) Effort(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.effort, nil
}

// Output returns the effort as seen at the physical port, i.e. negated for a reversed motor.
func (m *Motor) Output() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Config.Reversed() {
		return -m.effort
	}
	return m.effort
}

// Commands returns how many times the motor was commanded.
func (m *Motor) Commands() int64 {
	return m.commands.Load()
}

// Stop sets the effort to zero.
func (m *Motor) Stop(ctx context.Context) error {
	return m.SetEffort(ctx, 0)
}

// IsPowered returns whether the last effort was non zero.
func (m *Motor) IsPowered(ctx context.Context) (bool, float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.effort != 0, motor.PowerPct(m.effort), nil
}
