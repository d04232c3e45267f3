package poliastro

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/mat"
)

func TestCross(t *testing.T) {
	// Example 1-15 from Vallado.
	i := []float64{6524.834, 6862.875, 6448.296}
	j := []float64{4.901327, 5.533756, -1.976341}
	exp := []float64{-49246.6, 44500.5, 2469.6}
	if got := cross(i, j); !vectorsEqual(got, exp) {
		t.Fatalf("cross: got %+v, exp %+v", got, exp)
	}
	if got := cross([]float64{1, 0, 0}, []float64{0, 1, 0}); !vectorsEqual(got, []float64{0, 0, 1}) {
		t.Fatalf("i x j != k: got %+v", got)
	}
}

func TestCrossVec(t *testing.T) {
	a := mat.NewVecDense(3, []float64{1, 0, 0})
	b := mat.NewVecDense(3, []float64{0, 1, 0})
	got := crossVec(a, b)
	if !vectorsEqual(got.RawVector().Data, []float64{0, 0, 1}) {
		t.Fatalf("crossVec: got %+v", got.RawVector().Data)
	}
}

func TestNormUnitDot(t *testing.T) {
	v := []float64{3, 4, 0}
	if norm(v) != 5 {
		t.Fatalf("norm: got %f", norm(v))
	}
	u := unit(v)
	if !scalar.EqualWithinAbs(norm(u), 1, 1e-12) {
		t.Fatalf("unit norm: got %f", norm(u))
	}
	if got := unit([]float64{0, 0, 0}); norm(got) != 0 {
		t.Fatalf("unit of zero vector: got %+v", got)
	}
	if got := dot(v, []float64{1, 1, 1}); got != 7 {
		t.Fatalf("dot: got %f", got)
	}
}

func TestSign(t *testing.T) {
	if sign(-10) != -1 || sign(10) != 1 || sign(0) != 1 {
		t.Fatal("sign broken")
	}
}

func TestAngleConversions(t *testing.T) {
	for _, deg := range []float64{0, 15, 90, 180, 270, 360} {
		if got := Rad2deg(Deg2rad(deg)); !scalar.EqualWithinAbs(got, math.Mod(deg, 360), 1e-10) {
			t.Fatalf("%f deg round trip: got %f", deg, got)
		}
	}
	if !scalar.EqualWithinAbs(Deg2rad(180), math.Pi, 1e-12) {
		t.Fatalf("Deg2rad(180): got %f", Deg2rad(180))
	}
}

func TestSphericalCartesian(t *testing.T) {
	a := []float64{12, Deg2rad(35), Deg2rad(70)}
	b := Cartesian2Spherical(Spherical2Cartesian(a))
	for i := 0; i < 3; i++ {
		if !scalar.EqualWithinAbs(a[i], b[i], 1e-12) {
			t.Fatalf("component %d: got %f, exp %f", i, b[i], a[i])
		}
	}
	if got := Cartesian2Spherical([]float64{0, 0, 0}); norm(got) != 0 {
		t.Fatalf("spherical of zero vector: got %+v", got)
	}
}
