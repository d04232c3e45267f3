package poliastro

import (
	"fmt"
	"math"
	"time"
)

// AccelFunc is the capability of computing a perturbing acceleration (km/s^2)
// from the time offset and the current state. Implementations must be pure
// functions of their inputs: the integrator evaluates the field several times
// per step and relies on identical answers for identical arguments.
type AccelFunc func(t float64, s State) ([3]float64, error)

// Perturbations defines how to handle perturbations during the propagation.
// The zero value is pure two-body motion.
type Perturbations struct {
	Jn             uint8            // Zonal harmonic factors to be used (only up to 4 supported)
	Body           *CelestialObject // Central body, required for the zonal harmonics and third body terms
	PerturbingBody *CelestialObject // The 3rd body which is perturbating the spacecraft.
	Epoch          time.Time        // Epoch of t=0, required for the ephemeris lookups of a third body
	Arbitrary      AccelFunc        // Additional arbitrary perturbation.
}

// IsEmpty returns whether these perturbations would always be zero.
func (p Perturbations) IsEmpty() bool {
	return p.Jn <= 1 && p.PerturbingBody == nil && p.Arbitrary == nil
}

// Perturb returns the perturbing acceleration on the provided Cartesian state.
func (p Perturbations) Perturb(t float64, s State) ([3]float64, error) {
	var pert [3]float64
	if p.IsEmpty() {
		return pert, nil
	}
	if p.Jn > 1 && p.Body == nil {
		return pert, fmt.Errorf("zonal harmonics requested but no central body set")
	}
	if p.Jn > 1 && !p.Body.Equals(Sun) {
		// Ignore any Jn about the Sun
		x := s.R[0]
		y := s.R[1]
		z := s.R[2]
		z2 := z * z
		z3 := z2 * z
		r2 := x*x + y*y + z2
		r252 := math.Pow(r2, 5/2.)
		r272 := math.Pow(r2, 7/2.)
		// J2 (computed via SageMath: https://cloud.sagemath.com/projects/1fb6b227-1832-4f82-a05c-7e45614c00a2/files/j2perts.sagews)
		accJ2 := (3 / 2.) * p.Body.J(2) * math.Pow(p.Body.Radius, 2) * p.Body.μ
		pert[0] += accJ2 * (5*x*z2/r272 - x/r252)
		pert[1] += accJ2 * (5*y*z2/r272 - y/r252)
		pert[2] += accJ2 * (5*z3/r272 - 3*z/r252)
		if p.Jn >= 3 {
			// J3 (computed via SageMath: https://cloud.sagemath.com/#projects/1fb6b227-1832-4f82-a05c-7e45614c00a2/files/j3perts.sagews)
			r292 := math.Pow(r2, 9/2.)
			z4 := z3 * z
			accJ3 := p.Body.J(3) * math.Pow(p.Body.Radius, 3) * p.Body.μ
			pert[0] += (5 / 2.) * accJ3 * (7*x*z3/r292 - 3*x*z/r272)
			pert[1] += (5 / 2.) * accJ3 * (7*y*z3/r292 - 3*y*z/r272)
			pert[2] += 0.5 * accJ3 * (35*z4/r292 - 30*z2/r272 + 3/r252)
		}
	}
	if p.PerturbingBody != nil && (p.Body == nil || !p.PerturbingBody.Equals(*p.Body)) {
		if p.Body == nil {
			return pert, fmt.Errorf("third body perturbation requested but no central body set")
		}
		dt := p.Epoch.Add(time.Duration(t * float64(time.Second)))
		mainR := p.Body.HelioOrbit(dt).R()
		pertR := p.PerturbingBody.HelioOrbit(dt).R()
		if p.PerturbingBody.Equals(Sun) {
			pertR = []float64{0, 0, 0}
		}
		relPertR := make([]float64, 3) // R between main body and pertubing body
		scPert := make([]float64, 3)   // r_{i/sc} of spacecraft to pertubing body.
		oppose := 1.
		if norm(mainR) > norm(pertR) {
			oppose = -1
		}
		for i := 0; i < 3; i++ {
			relPertR[i] = oppose * (pertR[i] - mainR[i])
			scPert[i] = relPertR[i] - s.R[i]
		}
		relPertRNorm3 := math.Pow(norm(relPertR), 3)
		scPertNorm3 := math.Pow(norm(scPert), 3)
		for i := 0; i < 3; i++ {
			pert[i] += p.PerturbingBody.μ * (scPert[i]/scPertNorm3 - relPertR[i]/relPertRNorm3)
		}
	}
	if p.Arbitrary != nil {
		arb, err := p.Arbitrary(t, s)
		if err != nil {
			return pert, err
		}
		for i := 0; i < 3; i++ {
			pert[i] += arb[i]
		}
	}
	return pert, nil
}

// Tangential returns an acceleration of constant magnitude (km/s^2) applied
// along the instantaneous velocity direction. It errors on a zero velocity
// norm instead of dividing by it.
func Tangential(accel float64) AccelFunc {
	return func(t float64, s State) ([3]float64, error) {
		v := s.VNorm()
		if v == 0 {
			return [3]float64{}, fmt.Errorf("tangential acceleration at t=%f s: %w", t, ErrZeroVelocity)
		}
		return [3]float64{accel * s.V[0] / v, accel * s.V[1] / v, accel * s.V[2] / v}, nil
	}
}

// AntiTangential returns an acceleration of constant magnitude opposed to the
// instantaneous velocity direction, e.g. a braking thrust or a crude drag.
func AntiTangential(accel float64) AccelFunc {
	return Tangential(-accel)
}
