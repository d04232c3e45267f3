package poliastro

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

func TestManeuverEmpty(t *testing.T) {
	s0 := leoState()
	s, err := ApplyManeuvers(s0, nil, testPropConfig())
	if err != nil {
		t.Fatalf("empty sequence errored: %s", err)
	}
	if s != s0 {
		t.Fatalf("empty sequence changed the state: %+v", s)
	}
}

func TestManeuverImmediateBurn(t *testing.T) {
	s0 := leoState()
	ΔV := [3]float64{0.1, -0.2, 0.05}
	s, err := ApplyManeuvers(s0, []Maneuver{{At: 0, ΔV: ΔV}}, testPropConfig())
	if err != nil {
		t.Fatalf("immediate burn errored: %s", err)
	}
	if s.R != s0.R {
		t.Fatal("an impulsive burn must not move the position")
	}
	for i := 0; i < 3; i++ {
		if !scalar.EqualWithinAbs(s.V[i], s0.V[i]+ΔV[i], 1e-12) {
			t.Fatalf("velocity component %d: got %f", i, s.V[i])
		}
	}
}

func TestManeuverSequence(t *testing.T) {
	s0 := leoState()
	burns := []Maneuver{
		{At: 600, ΔV: [3]float64{0, 0.05, 0}},
		{At: 1800, ΔV: [3]float64{0.02, 0, 0}},
	}
	got, err := ApplyManeuvers(s0, burns, testPropConfig())
	if err != nil {
		t.Fatalf("sequence errored: %s", err)
	}
	// Replay the sequence by hand on the Keplerian oracle.
	exp, err := KeplerPropagate(s0, 600)
	if err != nil {
		t.Fatalf("oracle leg 1: %s", err)
	}
	exp.V[1] += 0.05
	exp, err = KeplerPropagate(exp, 1200)
	if err != nil {
		t.Fatalf("oracle leg 2: %s", err)
	}
	exp.V[0] += 0.02
	if diff := maxPosDiff(got, exp); diff > 1e-6 {
		t.Fatalf("burn sequence drifted %e km from the oracle", diff)
	}
}

func TestManeuverOrdering(t *testing.T) {
	burns := []Maneuver{
		{At: 1800, ΔV: [3]float64{0.1, 0, 0}},
		{At: 600, ΔV: [3]float64{0.1, 0, 0}},
	}
	_, err := ApplyManeuvers(leoState(), burns, testPropConfig())
	var gridErr *InvalidTimeGridError
	if !errors.As(err, &gridErr) {
		t.Fatalf("expected InvalidTimeGridError, got %v", err)
	}
	if gridErr.Index != 1 {
		t.Fatalf("offending index: got %d, exp 1", gridErr.Index)
	}
}

func TestHohmann(t *testing.T) {
	// LEO to GEO, the canonical case.
	rI := Earth.Radius + 191.34411
	rF := 42164.0
	vI := math.Sqrt(Earth.μ / rI)
	vF := math.Sqrt(Earth.μ / rF)
	vDep, vArr, tof := Hohmann(rI, vI, rF, vF, Earth)
	if !scalar.EqualWithinAbs(vDep-vI, 2.457, 1e-3) {
		t.Fatalf("departure Δv: got %f", vDep-vI)
	}
	if !scalar.EqualWithinAbs(vF-vArr, 1.478, 1e-3) {
		t.Fatalf("arrival Δv: got %f", vF-vArr)
	}
	if math.Abs(tof.Minutes()-315.4) > 0.5 {
		t.Fatalf("time of flight: got %s", tof)
	}
	// The duration keeps sub-second resolution.
	exp := math.Pi * math.Sqrt(math.Pow(0.5*(rI+rF), 3)/Earth.μ)
	if !scalar.EqualWithinRel(tof.Seconds(), exp, 1e-9) {
		t.Fatalf("time of flight: got %.6f s, exp %.6f s", tof.Seconds(), exp)
	}
}
