package teleop

// ApplyDeadzone suppresses small stick readings caused by the stick not centering exactly.
// Readings with magnitude below deadzone become 0; everything else passes through unchanged.
// There is no hysteresis.
func ApplyDeadzone(value, deadzone int) int {
	if value > -deadzone && value < deadzone {
		return 0
	}
	return value
}

// DriveCommand is the arcade command for one tick. Forward and Turn are filtered but unscaled;
// the drive primitive applies Scale.
type DriveCommand struct {
	Forward float64
	Turn    float64
	Scale   float64
}

// Effective returns the forward and turn efforts the drivetrain actually receives.
func (c DriveCommand) Effective() (float64, float64) {
	return c.Forward * c.Scale, c.Turn * c.Scale
}

// ComputeDriveCommand filters each stick reading and negates it, since pushing a stick away from
// the driver reads negative. Turn is negated like forward, so a stick pushed right to 50 gives an
// effective turn of -37.5; set invert_turn to flip it. The returned command carries
// DefaultDriveScale.
func ComputeDriveCommand(forwardRaw, turnRaw, deadzone int) DriveCommand {
	return DriveCommand{
		Forward: -float64(ApplyDeadzone(forwardRaw, deadzone)),
		Turn:    -float64(ApplyDeadzone(turnRaw, deadzone)),
		Scale:   DefaultDriveScale,
	}
}
