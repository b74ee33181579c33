package particles

import "math"

// Vec2 is a plain 2D vector.
type Vec2 struct {
	X, Y float64
}

// Record is the kinematic and phase state of one live slot.
// Everything except Phase is fixed for the record's lifetime.
type Record struct {
	// Trajectory is the lateral drift per unit of forward travel.
	Trajectory Vec2
	// Speed multiplies the global forward speed.
	Speed float64
	// PhaseAmplitude bounds the sine wobble on each axis.
	PhaseAmplitude Vec2
	// PhaseSpeed is the wobble rate on each axis.
	PhaseSpeed Vec2
	// Phase is the wobble accumulator, each component in [0, 1).
	Phase Vec2
}

// wrapUnit folds v into [0, 1).
func wrapUnit(v float64) float64 {
	v -= math.Floor(v)
	if v >= 1 {
		return 0
	}
	return v
}
