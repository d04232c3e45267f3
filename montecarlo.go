package poliastro

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
)

// Dispersions samples initial states from a multivariate normal distribution
// centered on a nominal state, for Monte Carlo trajectory generation. Sampling
// is deterministic for a given seed.
type Dispersions struct {
	nominal State
	dist    *distmv.Normal
}

// NewDispersions returns a sampler around the nominal state. cov is the 6x6
// covariance of the state vector (position then velocity), typically diagonal.
// Panics if the covariance is not positive definite, which is a configuration
// error.
func NewDispersions(nominal State, cov *mat.SymDense, seed uint64) *Dispersions {
	if r, _ := cov.Dims(); r != 6 {
		panic(fmt.Errorf("covariance must be 6x6 (got %dx%d)", r, r))
	}
	dist, ok := distmv.NewNormal(nominal.Vector(), cov, rand.NewSource(seed))
	if !ok {
		panic("covariance matrix is not positive definite")
	}
	return &Dispersions{nominal: nominal, dist: dist}
}

// Sample returns one dispersed state.
func (d *Dispersions) Sample() State {
	y := d.dist.Rand(nil)
	return stateFromVector(y, d.nominal.GM)
}

// Generate returns n dispersed states.
func (d *Dispersions) Generate(n int) []State {
	states := make([]State, n)
	for i := range states {
		states[i] = d.Sample()
	}
	return states
}

// BatchJobs wraps the dispersed states into batch jobs sharing a time grid and
// configuration, ready for RunBatch.
func (d *Dispersions) BatchJobs(n int, times []float64, cfg PropConfig, perts Perturbations) []BatchJob {
	jobs := make([]BatchJob, n)
	for i := range jobs {
		jobs[i] = BatchJob{
			Name:   fmt.Sprintf("mc-%04d", i),
			State:  d.Sample(),
			Times:  times,
			Config: cfg,
			Perts:  perts,
		}
	}
	return jobs
}
