package base

import "math"

// MaxEffort bounds each side of the drivetrain.
const MaxEffort = 127.0

// ArcadeMix converts arcade forward and turn efforts into left and right side efforts. Both
// channels are multiplied by scale, the turn is negated if invertTurn is set, and a positive turn
// drives the left side harder. When either side would exceed MaxEffort both are reduced by the
// same factor so the ratio between them, and therefore the arc, is kept.
func ArcadeMix(forward, turn float64, invertTurn bool, scale float64) (float64, float64) {
	forward *= scale
	turn *= scale
	if invertTurn {
		turn = -turn
	}

	left := forward + turn
	right := forward - turn

	if m := math.Max(math.Abs(left), math.Abs(right)); m > MaxEffort {
		left = left * MaxEffort / m
		right = right * MaxEffort / m
	}
	return left, right
}
