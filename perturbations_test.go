package poliastro

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

func TestPertEmpty(t *testing.T) {
	var perts Perturbations
	if !perts.IsEmpty() {
		t.Fatal("zero value must be empty")
	}
	acc, err := perts.Perturb(0, leoState())
	if err != nil {
		t.Fatalf("empty perturbations errored: %s", err)
	}
	if acc != [3]float64{} {
		t.Fatalf("empty perturbations accelerated: %+v", acc)
	}
}

func TestPertArbitrary(t *testing.T) {
	want := [3]float64{1e-7, -2e-7, 3e-7}
	perts := Perturbations{Arbitrary: func(t float64, s State) ([3]float64, error) {
		return want, nil
	}}
	if perts.IsEmpty() {
		t.Fatal("arbitrary perturbation reported empty")
	}
	acc, err := perts.Perturb(100, leoState())
	if err != nil {
		t.Fatalf("arbitrary perturbation errored: %s", err)
	}
	if acc != want {
		t.Fatalf("got %+v, exp %+v", acc, want)
	}
	boom := errors.New("thruster fault")
	perts.Arbitrary = func(t float64, s State) ([3]float64, error) {
		return [3]float64{}, boom
	}
	if _, err = perts.Perturb(0, leoState()); !errors.Is(err, boom) {
		t.Fatalf("arbitrary error not surfaced: %v", err)
	}
}

func TestPertJ2Equatorial(t *testing.T) {
	// On the equator (z=0) the J2 acceleration reduces to a purely radial
	// pull of magnitude 1.5*J2*mu*Re^2/r^4.
	r := 7000.0
	s := NewState([]float64{r, 0, 0}, []float64{0, 7.5, 0}, Earth.GM())
	perts := Perturbations{Jn: 2, Body: &Earth}
	acc, err := perts.Perturb(0, s)
	if err != nil {
		t.Fatalf("J2 perturbation errored: %s", err)
	}
	expX := -1.5 * Earth.J(2) * Earth.μ * math.Pow(Earth.Radius, 2) / math.Pow(r, 4)
	if !scalar.EqualWithinRel(acc[0], expX, 1e-10) {
		t.Fatalf("J2 radial term: got %e, exp %e", acc[0], expX)
	}
	if acc[1] != 0 || acc[2] != 0 {
		t.Fatalf("equatorial J2 must be radial only: %+v", acc)
	}
}

func TestPertJ3SmallerThanJ2(t *testing.T) {
	s := NewState([]float64{4000, 3000, 4500}, []float64{-4, 5, 2}, Earth.GM())
	j2, err := Perturbations{Jn: 2, Body: &Earth}.Perturb(0, s)
	if err != nil {
		t.Fatalf("J2 errored: %s", err)
	}
	j3, err := Perturbations{Jn: 3, Body: &Earth}.Perturb(0, s)
	if err != nil {
		t.Fatalf("J3 errored: %s", err)
	}
	var j3Only [3]float64
	for i := 0; i < 3; i++ {
		j3Only[i] = j3[i] - j2[i]
	}
	if normVec(j3Only) >= normVec(j2) {
		t.Fatalf("J3 contribution %e not smaller than J2 %e", normVec(j3Only), normVec(j2))
	}
}

func TestPertJnNoBody(t *testing.T) {
	perts := Perturbations{Jn: 2}
	if _, err := perts.Perturb(0, leoState()); err == nil {
		t.Fatal("zonal harmonics without a central body must error")
	}
}

func TestPertTangential(t *testing.T) {
	accel := 1e-7
	s := leoState()
	acc, err := Tangential(accel)(0, s)
	if err != nil {
		t.Fatalf("tangential errored: %s", err)
	}
	v := s.VNorm()
	for i := 0; i < 3; i++ {
		if !scalar.EqualWithinRel(acc[i], accel*s.V[i]/v, 1e-12) {
			t.Fatalf("tangential component %d: got %e", i, acc[i])
		}
	}
	if !scalar.EqualWithinRel(normVec(acc), accel, 1e-12) {
		t.Fatalf("tangential magnitude: got %e, exp %e", normVec(acc), accel)
	}
	anti, err := AntiTangential(accel)(0, s)
	if err != nil {
		t.Fatalf("anti-tangential errored: %s", err)
	}
	for i := 0; i < 3; i++ {
		if !scalar.EqualWithinAbs(anti[i], -acc[i], 1e-18) {
			t.Fatalf("anti-tangential component %d: got %e, exp %e", i, anti[i], -acc[i])
		}
	}
}

func TestPertTangentialZeroVelocity(t *testing.T) {
	s := NewState([]float64{7000, 0, 0}, []float64{0, 0, 0}, Earth.GM())
	if _, err := Tangential(1e-7)(0, s); !errors.Is(err, ErrZeroVelocity) {
		t.Fatalf("expected ErrZeroVelocity, got %v", err)
	}
}

func normVec(v [3]float64) float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}
