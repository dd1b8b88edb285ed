package teleop

import (
	"github.com/pkg/errors"

	"go.viam.com/teleop/components/input"
)

// ActuatorCommand is the effort for the intake and hopper motors for one tick.
type ActuatorCommand struct {
	Intake int
	Hopper int
}

// ComputeActuatorCommand maps R1 and R2 to the intake and hopper at full effort. R1 takes
// precedence when both are held. The two motors always run against each other.
func ComputeActuatorCommand(r1Pressed, r2Pressed bool) ActuatorCommand {
	return primaryCommand(r1Pressed, r2Pressed, DefaultMaxEffort)
}

func primaryCommand(r1Pressed, r2Pressed bool, maxEffort int) ActuatorCommand {
	switch {
	case r1Pressed:
		return ActuatorCommand{Intake: maxEffort, Hopper: -maxEffort}
	case r2Pressed:
		return ActuatorCommand{Intake: -maxEffort, Hopper: maxEffort}
	default:
		return ActuatorCommand{}
	}
}

// ActuatorPolicy selects how buttons map to the intake and hopper.
type ActuatorPolicy string

const (
	// PolicyPrimary runs intake and hopper together from R1 and R2.
	PolicyPrimary ActuatorPolicy = "primary"
	// PolicyAlternate runs the intake from R1 and R2 and the hopper independently from Down and
	// Right.
	PolicyAlternate ActuatorPolicy = "alternate"
)

// actuatorStrategy computes an actuator command from the buttons it declares.
type actuatorStrategy interface {
	Controls() []input.Control
	Compute(buttons map[input.Control]bool, maxEffort int) ActuatorCommand
}

func (p ActuatorPolicy) strategy() (actuatorStrategy, error) {
	switch p {
	case PolicyPrimary, "":
		return primaryStrategy{}, nil
	case PolicyAlternate:
		return alternateStrategy{}, nil
	default:
		return nil, errors.Errorf("actuator_policy %q is not one of [%s %s]", p, PolicyPrimary, PolicyAlternate)
	}
}

type primaryStrategy struct{}

func (primaryStrategy) Controls() []input.Control {
	return []input.Control{input.ButtonR1, input.ButtonR2}
}

func (primaryStrategy) Compute(buttons map[input.Control]bool, maxEffort int) ActuatorCommand {
	return primaryCommand(buttons[input.ButtonR1], buttons[input.ButtonR2], maxEffort)
}

type alternateStrategy struct{}

func (alternateStrategy) Controls() []input.Control {
	return []input.Control{input.ButtonR1, input.ButtonR2, input.ButtonDown, input.ButtonRight}
}

func (alternateStrategy) Compute(buttons map[input.Control]bool, maxEffort int) ActuatorCommand {
	var cmd ActuatorCommand
	switch {
	case buttons[input.ButtonR1]:
		cmd.Intake = maxEffort
	case buttons[input.ButtonR2]:
		cmd.Intake = -maxEffort
	}
	switch {
	case buttons[input.ButtonDown]:
		cmd.Hopper = maxEffort
	case buttons[input.ButtonRight]:
		cmd.Hopper = -maxEffort
	}
	return cmd
}
