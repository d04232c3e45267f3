package poliastro

import (
	"errors"
	"fmt"
	"math"
	"os"

	kitlog "github.com/go-kit/kit/log"

	"github.com/Ivan9528/poliastro/integrator"
)

// Method selects the propagation scheme.
type Method uint8

const (
	// Cowell numerically integrates the equation of motion with the adaptive
	// 8(5,3) pair, and is the only method supporting perturbations.
	Cowell Method = iota
	// Kepler uses the closed-form universal variable solution, restricted to
	// unperturbed two-body motion.
	Kepler
)

// String implements the Stringer interface.
func (m Method) String() string {
	switch m {
	case Cowell:
		return "Cowell"
	case Kepler:
		return "Kepler"
	default:
		return fmt.Sprintf("Method(%d)", m)
	}
}

// PropConfig configures a propagation call. Use DefaultPropConfig and tweak.
type PropConfig struct {
	Method   Method
	RTol     float64 // Relative tolerance on the local integration error
	ATol     float64 // Absolute tolerance on the local integration error
	MinStep  float64 // Smallest allowed integration step, seconds
	MaxStep  float64 // Largest allowed integration step, seconds
	MaxSteps uint    // Cap on internal integration steps; 0 means unbounded
	Backward bool    // Propagate toward decreasing time offsets
	Logger   kitlog.Logger
}

// DefaultPropConfig returns the tolerances used when the caller has no
// opinion. These match the numerical tests of this package: tight enough
// for a LEO-class orbit over a few dozen periods.
func DefaultPropConfig() PropConfig {
	return PropConfig{
		Method:   Cowell,
		RTol:     1e-11,
		ATol:     1e-12,
		MinStep:  1e-12,
		MaxStep:  math.Inf(1),
		MaxSteps: 500000,
	}
}

// Propagator owns a single propagation: its initial state, its perturbations
// and its integration frontier. The frontier is inspectable after a failure,
// which is the reason this is a struct and not only a function.
type Propagator struct {
	s0     State
	cfg    PropConfig
	perts  Perturbations
	logger kitlog.Logger
	last   State   // last state reached by the integration
	lastT  float64 // time offset of last
	rFloor float64 // radius under which the field is considered singular
}

// NewPropagator returns a propagator for the given initial state.
// Panics on a non-finite initial state: there is nothing to integrate from.
func NewPropagator(s0 State, cfg PropConfig, perts Perturbations) *Propagator {
	if !s0.IsFinite() {
		panic(fmt.Errorf("initial state has non-finite components: %s", s0))
	}
	logger := cfg.Logger
	if logger == nil {
		logger = kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout))
	}
	logger = kitlog.With(logger, "subsys", "astro", "method", cfg.Method)
	r0 := s0.RNorm()
	return &Propagator{
		s0:     s0,
		cfg:    cfg,
		perts:  perts,
		logger: logger,
		last:   s0,
		rFloor: math.Max(r0*1e-9, 1e-9),
	}
}

// LastState returns the last state reached and its time offset, which on a
// fatal error is where the integration stopped.
func (p *Propagator) LastState() (float64, State) {
	return p.lastT, p.last
}

// field is the equation of motion: velocity, then the central two-body
// acceleration plus perturbations.
func (p *Propagator) field(t float64, y, dy []float64) error {
	rNorm := math.Sqrt(y[0]*y[0] + y[1]*y[1] + y[2]*y[2])
	if rNorm <= p.rFloor {
		return &SingularityError{T: t}
	}
	bodyAcc := -p.s0.GM / (rNorm * rNorm * rNorm)
	dy[0] = y[3]
	dy[1] = y[4]
	dy[2] = y[5]
	dy[3] = bodyAcc * y[0]
	dy[4] = bodyAcc * y[1]
	dy[5] = bodyAcc * y[2]
	if !p.perts.IsEmpty() {
		pert, err := p.perts.Perturb(t, stateFromVector(y, p.s0.GM))
		if err != nil {
			return err
		}
		dy[3] += pert[0]
		dy[4] += pert[1]
		dy[5] += pert[2]
	}
	for i := 3; i < 6; i++ {
		if math.IsNaN(dy[i]) || math.IsInf(dy[i], 0) {
			return fmt.Errorf("non-finite acceleration component %d at t=%f s (r=%f km)", i-3, t, rNorm)
		}
	}
	return nil
}

// validateGrid checks the monotonicity contract of the requested time grid.
func (p *Propagator) validateGrid(times []float64) error {
	prev := 0.0
	for i, t := range times {
		if p.cfg.Backward {
			if t > 0 || (i > 0 && t > prev) {
				return &InvalidTimeGridError{Index: i}
			}
		} else {
			if t < 0 || (i > 0 && t < prev) {
				return &InvalidTimeGridError{Index: i}
			}
		}
		prev = t
	}
	return nil
}

// Propagate computes the state at every requested time offset, in grid order.
// Offsets are seconds from the initial state's epoch; an offset of zero
// returns the initial state itself. Fatal conditions surface as the error
// types of this package, with the frontier kept in LastState.
func (p *Propagator) Propagate(times []float64) ([]State, error) {
	if err := p.validateGrid(times); err != nil {
		return nil, err
	}
	if p.cfg.Method == Kepler {
		return p.propagateKepler(times)
	}
	return p.propagateCowell(times)
}

// propagateKepler visits the grid analytically, one closed-form solve per
// requested time.
func (p *Propagator) propagateKepler(times []float64) ([]State, error) {
	if !p.perts.IsEmpty() {
		return nil, errors.New("Kepler method does not support perturbations, use Cowell")
	}
	out := make([]State, 0, len(times))
	for _, t := range times {
		s, err := KeplerPropagate(p.s0, t)
		if err != nil {
			return nil, err
		}
		p.last = s
		p.lastT = t
		out = append(out, s)
	}
	return out, nil
}

// propagateCowell runs a single continuous adaptive integration pass over the
// grid, extracting requested times from the dense output of accepted steps.
func (p *Propagator) propagateCowell(times []float64) ([]State, error) {
	dir := 1.0
	if p.cfg.Backward {
		dir = -1
	}
	icfg := integrator.Config{
		MinStep:  p.cfg.MinStep,
		MaxStep:  p.cfg.MaxStep,
		RTol:     p.cfg.RTol,
		ATol:     p.cfg.ATol,
		MaxSteps: p.cfg.MaxSteps,
		Backward: p.cfg.Backward,
	}
	out := make([]State, 0, len(times))
	rk, err := integrator.NewRK853(p.field, 0, p.s0.Vector(), icfg)
	if err != nil {
		return nil, p.mapError(err, out)
	}
	buf := make([]float64, 6)
	for _, target := range times {
		if target == 0 {
			out = append(out, p.s0)
			continue
		}
		for dir*(target-rk.Time()) > 0 {
			if err := rk.Step(); err != nil {
				return nil, p.mapError(err, out)
			}
			rk.StateInto(buf)
			p.last = stateFromVector(buf, p.s0.GM)
			p.lastT = rk.Time()
		}
		if target == rk.Time() {
			rk.StateInto(buf)
		} else if err := rk.Interpolate(target, buf); err != nil {
			return nil, p.mapError(err, out)
		}
		s := stateFromVector(buf, p.s0.GM)
		out = append(out, s)
	}
	stats := rk.Stats()
	p.logger.Log("level", "info", "status", "finished",
		"steps", stats.Steps, "rejected", stats.Rejected, "evals", stats.Evaluations,
		"reached(s)", stats.CurrentTime, "points", len(out))
	return out, nil
}

// mapError converts integrator failures into the error taxonomy of this
// package, attaching the last reached time and state.
func (p *Propagator) mapError(err error, partial []State) error {
	var sing *SingularityError
	if errors.As(err, &sing) {
		p.logger.Log("level", "critical", "error", "singularity", "t(s)", sing.T)
		return sing
	}
	if errors.Is(err, integrator.ErrStepUnderflow) {
		// A step underflow with a collapsed radius is a collision, not a
		// tolerance problem.
		if p.last.RNorm() < 1e-3*p.s0.RNorm() {
			p.logger.Log("level", "critical", "error", "singularity", "t(s)", p.lastT, "r(km)", p.last.RNorm())
			return &SingularityError{T: p.lastT}
		}
		p.logger.Log("level", "critical", "error", "step underflow", "t(s)", p.lastT)
		return &NonConvergenceError{T: p.lastT, Last: p.last}
	}
	if errors.Is(err, integrator.ErrStepLimit) {
		p.logger.Log("level", "critical", "error", "step budget", "t(s)", p.lastT, "points", len(partial))
		return &StepBudgetExceededError{T: p.lastT, Last: p.last, Partial: partial}
	}
	p.logger.Log("level", "critical", "error", err)
	return err
}

// Propagate is the function-shaped surface over Propagator: it computes the
// state at every requested time offset from s0, in grid order.
func Propagate(s0 State, times []float64, cfg PropConfig, perts Perturbations) ([]State, error) {
	return NewPropagator(s0, cfg, perts).Propagate(times)
}
