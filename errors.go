package poliastro

import (
	"errors"
	"fmt"
)

// ErrZeroVelocity is returned by velocity-aligned perturbations when the
// velocity norm vanishes and no thrust direction can be derived.
var ErrZeroVelocity = errors.New("velocity norm is zero, cannot derive a thrust direction")

// SingularityError signals that the position vector collapsed onto the
// attracting body during a vector field evaluation.
type SingularityError struct {
	T float64 // time offset of the offending evaluation, seconds
}

func (e *SingularityError) Error() string {
	return fmt.Sprintf("position magnitude reached zero at t=%f s (collision with the attracting body)", e.T)
}

// NonConvergenceError signals that the adaptive step size underflowed below
// the configured minimum while still failing the tolerance. The last state
// reached is kept for diagnostics.
type NonConvergenceError struct {
	T    float64 // last time reached, seconds
	Last State
}

func (e *NonConvergenceError) Error() string {
	return fmt.Sprintf("step size underflow at t=%f s; tolerances unreachable (check rtol/atol and MinStep)", e.T)
}

// InvalidTimeGridError signals an output time grid which is not monotonic in
// the direction of propagation. It is raised before any integration work.
type InvalidTimeGridError struct {
	Index int // index of the first offending entry
}

func (e *InvalidTimeGridError) Error() string {
	return fmt.Sprintf("time grid is not monotonic at index %d", e.Index)
}

// StepBudgetExceededError signals that the configured cap on internal steps
// was reached. Partial holds the trajectory points produced before the cap.
type StepBudgetExceededError struct {
	T       float64 // last time reached, seconds
	Last    State
	Partial []State
}

func (e *StepBudgetExceededError) Error() string {
	return fmt.Sprintf("step budget exceeded at t=%f s (%d output points computed)", e.T, len(e.Partial))
}
