package poliastro

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func leoCovariance() *mat.SymDense {
	cov := mat.NewSymDense(6, nil)
	for i := 0; i < 3; i++ {
		cov.SetSym(i, i, 1.0)      // 1 km position sigma
		cov.SetSym(i+3, i+3, 1e-6) // 1 m/s velocity sigma
	}
	return cov
}

func TestDispersionsSeed(t *testing.T) {
	nominal := leoState()
	d0 := NewDispersions(nominal, leoCovariance(), 42)
	d1 := NewDispersions(nominal, leoCovariance(), 42)
	for i := 0; i < 10; i++ {
		s0, s1 := d0.Sample(), d1.Sample()
		if s0 != s1 {
			t.Fatalf("sample %d differs for the same seed: %s vs %s", i, s0, s1)
		}
	}
	dOther := NewDispersions(nominal, leoCovariance(), 43)
	if d0.Sample() == dOther.Sample() {
		t.Fatal("different seeds produced identical samples")
	}
}

func TestDispersionsSpread(t *testing.T) {
	nominal := leoState()
	d := NewDispersions(nominal, leoCovariance(), 1)
	states := d.Generate(200)
	if len(states) != 200 {
		t.Fatalf("got %d states", len(states))
	}
	var maxDiff float64
	for _, s := range states {
		if s.GM != nominal.GM {
			t.Fatal("samples must share the nominal gravitational parameter")
		}
		if diff := maxPosDiff(s, nominal); diff > maxDiff {
			maxDiff = diff
		}
	}
	// With a 1 km sigma, 200 draws stay within a handful of sigmas but do
	// not collapse onto the nominal.
	if maxDiff == 0 {
		t.Fatal("no dispersion at all")
	}
	if maxDiff > 10 {
		t.Fatalf("samples spread %f km from the nominal", maxDiff)
	}
}

func TestDispersionsPanics(t *testing.T) {
	nominal := leoState()
	assertPanic(t, func() { NewDispersions(nominal, mat.NewSymDense(3, nil), 1) })
	// A negative diagonal is not a covariance.
	bad := leoCovariance()
	bad.SetSym(0, 0, -1)
	assertPanic(t, func() { NewDispersions(nominal, bad, 1) })
}

func TestDispersionsBatchJobs(t *testing.T) {
	d := NewDispersions(leoState(), leoCovariance(), 7)
	times := []float64{0, 60}
	jobs := d.BatchJobs(5, times, testPropConfig(), Perturbations{})
	if len(jobs) != 5 {
		t.Fatalf("got %d jobs", len(jobs))
	}
	seen := make(map[string]bool)
	for _, job := range jobs {
		if seen[job.Name] {
			t.Fatalf("duplicate job name %s", job.Name)
		}
		seen[job.Name] = true
		if !job.State.IsFinite() || math.Abs(job.State.RNorm()-leoState().RNorm()) > 10 {
			t.Fatalf("job %s state looks wrong: %s", job.Name, job.State)
		}
		if len(job.Times) != len(times) {
			t.Fatalf("job %s times: got %d", job.Name, len(job.Times))
		}
	}
}
