package poliastro

import (
	"fmt"
	"math"
)

// State is a Cartesian position and velocity about a central body at a given
// time offset. It is a value: every propagation step produces a new State and
// never mutates the one it started from.
type State struct {
	R  [3]float64 // position, km
	V  [3]float64 // velocity, km/s
	GM float64    // gravitational parameter of the central body, km^3/s^2
}

// NewState returns a State from raw position and velocity slices.
// Panics if either slice is not of length 3 or if gm is not strictly positive:
// those are programming errors, not data errors.
func NewState(R, V []float64, gm float64) State {
	if len(R) != 3 || len(V) != 3 {
		panic(fmt.Errorf("position and velocity must be 3x1 vectors (got %dx1 and %dx1)", len(R), len(V)))
	}
	if gm <= 0 {
		panic(fmt.Errorf("gravitational parameter must be positive (got %f)", gm))
	}
	var s State
	copy(s.R[:], R)
	copy(s.V[:], V)
	s.GM = gm
	return s
}

// Vector returns the state as a 6x1 vector (position then velocity), as
// consumed by the integrator.
func (s State) Vector() []float64 {
	return []float64{s.R[0], s.R[1], s.R[2], s.V[0], s.V[1], s.V[2]}
}

// stateFromVector rebuilds a State from an integration vector.
func stateFromVector(y []float64, gm float64) State {
	return State{R: [3]float64{y[0], y[1], y[2]}, V: [3]float64{y[3], y[4], y[5]}, GM: gm}
}

// RNorm returns the norm of the position vector.
func (s State) RNorm() float64 {
	return math.Sqrt(s.R[0]*s.R[0] + s.R[1]*s.R[1] + s.R[2]*s.R[2])
}

// VNorm returns the norm of the velocity vector.
func (s State) VNorm() float64 {
	return math.Sqrt(s.V[0]*s.V[0] + s.V[1]*s.V[1] + s.V[2]*s.V[2])
}

// IsFinite returns whether all six components are finite.
func (s State) IsFinite() bool {
	for i := 0; i < 3; i++ {
		if math.IsNaN(s.R[i]) || math.IsInf(s.R[i], 0) || math.IsNaN(s.V[i]) || math.IsInf(s.V[i], 0) {
			return false
		}
	}
	return true
}

// String implements the Stringer interface.
func (s State) String() string {
	return fmt.Sprintf("R=[%.3f %.3f %.3f] km\tV=[%.6f %.6f %.6f] km/s", s.R[0], s.R[1], s.R[2], s.V[0], s.V[1], s.V[2])
}
