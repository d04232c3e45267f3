package poliastro

import (
	"fmt"
	"math"
	"time"
)

// Maneuver is an instantaneous velocity change applied at a given time offset
// from the initial epoch.
type Maneuver struct {
	At float64    // time offset of the burn, seconds
	ΔV [3]float64 // velocity change, km/s
}

// String implements the Stringer interface.
func (m Maneuver) String() string {
	return fmt.Sprintf("burn @t=%f s ΔV=[%f %f %f] km/s", m.At, m.ΔV[0], m.ΔV[1], m.ΔV[2])
}

// ApplyManeuvers propagates the state through the provided impulsive burn
// sequence and returns the state right after the last burn. Burn times must
// be non-decreasing; an empty sequence returns the initial state unchanged.
// Propagation between burns uses the provided configuration, unperturbed.
func ApplyManeuvers(s0 State, maneuvers []Maneuver, cfg PropConfig) (State, error) {
	s := s0
	elapsed := 0.0
	for i, m := range maneuvers {
		if m.At < elapsed {
			return s, &InvalidTimeGridError{Index: i}
		}
		if m.At > elapsed {
			states, err := Propagate(s, []float64{m.At - elapsed}, cfg, Perturbations{})
			if err != nil {
				return s, err
			}
			s = states[0]
			elapsed = m.At
		}
		for j := 0; j < 3; j++ {
			s.V[j] += m.ΔV[j]
		}
	}
	return s, nil
}

// Hohmann computes an Hohmann transfer. It returns the departure and arrival velocities, and the time of flight.
// To get final computations:
// ΔvInit = vDepature - vI
// ΔvFinal = vArrival - vF
func Hohmann(rI, vI, rF, vF float64, body CelestialObject) (vDeparture, vArrival float64, tof time.Duration) {
	aTransfer := 0.5 * (rI + rF)
	vDeparture = math.Sqrt((2 * body.GM() / rI) - (body.GM() / aTransfer))
	vArrival = math.Sqrt((2 * body.GM() / rF) - (body.GM() / aTransfer))
	tof = time.Duration(math.Pi * math.Sqrt(math.Pow(aTransfer, 3)/body.GM()) * float64(time.Second))
	return
}
