package motor

import (
	"context"

	"go.uber.org/multierr"
)

// Group drives several motors as one, e.g. every motor on one side of a drivetrain.
type Group struct {
	name   string
	motors []Motor
}

var _ = Motor(&Group{})

// NewGroup returns a group of the given motors.
func NewGroup(name string, motors ...Motor) (*Group, error) {
	if len(motors) == 0 {
		return nil, NewEmptyGroupError(name)
	}
	return &Group{name: name, motors: motors}, nil
}

// Name returns the group name.
func (g *Group) Name() string {
	return g.name
}

// Motors returns the members of the group.
func (g *Group) Motors() []Motor {
	return g.motors
}

// SetEffort commands every motor in the group. Every motor is commanded even if an earlier one
// fails.
func (g *Group) SetEffort(ctx context.Context, effort int) error {
	effort = ClampEffort(effort)
	var err error
	for _, m := range g.motors {
		err = multierr.Combine(err, m.SetEffort(ctx, effort))
	}
	return err
}

// Effort returns the effort of the first motor.
func (g *Group) Effort(ctx context.Context) (int, error) {
	return g.motors[0].Effort(ctx)
}

// Stop stops every motor in the group.
func (g *Group) Stop(ctx context.Context) error {
	var err error
	for _, m := range g.motors {
		err = multierr.Combine(err, m.Stop(ctx))
	}
	return err
}

// IsPowered returns true if any motor is powered, along with the highest power fraction.
func (g *Group) IsPowered(ctx context.Context) (bool, float64, error) {
	var (
		anyPowered bool
		maxPct     float64
		errs       error
	)
	for _, m := range g.motors {
		powered, pct, err := m.IsPowered(ctx)
		if err != nil {
			errs = multierr.Combine(errs, err)
			continue
		}
		anyPowered = anyPowered || powered
		if pct > maxPct {
			maxPct = pct
		}
	}
	return anyPowered, maxPct, errs
}
