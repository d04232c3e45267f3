package poliastro

import (
	"fmt"
	"math"
)

const (
	// keplerχε is the convergence criterion on the universal anomaly.
	keplerχε       = 1e-12
	keplerMaxIters = 1000
)

// stumpffC2C3 returns the C(ψ) and S(ψ) Stumpff functions, with the series
// expansion near zero to keep them smooth across the parabolic boundary.
func stumpffC2C3(ψ float64) (c2, c3 float64) {
	switch {
	case ψ > 1e-6:
		sqrtψ := math.Sqrt(ψ)
		c2 = (1 - math.Cos(sqrtψ)) / ψ
		c3 = (sqrtψ - math.Sin(sqrtψ)) / (sqrtψ * ψ)
	case ψ < -1e-6:
		sqrtNψ := math.Sqrt(-ψ)
		c2 = (1 - math.Cosh(sqrtNψ)) / ψ
		c3 = (math.Sinh(sqrtNψ) - sqrtNψ) / (sqrtNψ * -ψ)
	default:
		c2 = 1/2. - ψ/24 + ψ*ψ/720
		c3 = 1/6. - ψ/120 + ψ*ψ/5040
	}
	return
}

// KeplerPropagate returns the state after dt seconds of unperturbed two-body
// motion, via the universal variable formulation (Vallado's KEPLER, page 93).
// It handles elliptic and hyperbolic orbits; dt may be negative.
func KeplerPropagate(s State, dt float64) (State, error) {
	if dt == 0 {
		return s, nil
	}
	r0 := s.RNorm()
	if r0 == 0 {
		return s, &SingularityError{T: 0}
	}
	μ := s.GM
	sqrtμ := math.Sqrt(μ)
	v0 := s.VNorm()
	rDotV := dot(s.R[:], s.V[:])
	α := -v0*v0/μ + 2/r0 // 1/a

	var χ float64
	switch {
	case α > 1e-6:
		// Elliptic
		χ = sqrtμ * dt * α
	case α < -1e-6:
		// Hyperbolic
		a := 1 / α
		χ = sign(dt) * math.Sqrt(-a) * math.Log(-2*μ*α*dt/(rDotV+sign(dt)*math.Sqrt(-μ*a)*(1-r0*α)))
	default:
		// Near parabolic
		h := cross(s.R[:], s.V[:])
		p := dot(h, h) / μ
		cotS := 3 * math.Sqrt(μ/(p*p*p)) * dt
		w := math.Atan(math.Cbrt(1 / cotS))
		χ = math.Sqrt(p) * 2 / math.Tan(2*w)
	}

	var r, ψ, c2, c3 float64
	converged := false
	for iter := 0; iter < keplerMaxIters; iter++ {
		ψ = χ * χ * α
		c2, c3 = stumpffC2C3(ψ)
		r = χ*χ*c2 + (rDotV/sqrtμ)*χ*(1-ψ*c3) + r0*(1-ψ*c2)
		χNew := χ + (sqrtμ*dt-χ*χ*χ*c3-(rDotV/sqrtμ)*χ*χ*c2-r0*χ*(1-ψ*c3))/r
		if math.Abs(χNew-χ) < keplerχε {
			χ = χNew
			converged = true
			break
		}
		χ = χNew
	}
	if !converged {
		return s, fmt.Errorf("universal anomaly did not converge after %d iterations (dt=%f s)", keplerMaxIters, dt)
	}
	ψ = χ * χ * α
	c2, c3 = stumpffC2C3(ψ)
	r = χ*χ*c2 + (rDotV/sqrtμ)*χ*(1-ψ*c3) + r0*(1-ψ*c2)

	f := 1 - χ*χ*c2/r0
	g := dt - χ*χ*χ*c3/sqrtμ
	gDot := 1 - χ*χ*c2/r
	fDot := (sqrtμ / (r * r0)) * χ * (ψ*c3 - 1)

	var out State
	out.GM = μ
	for i := 0; i < 3; i++ {
		out.R[i] = f*s.R[i] + g*s.V[i]
		out.V[i] = fDot*s.R[i] + gDot*s.V[i]
	}
	return out, nil
}
