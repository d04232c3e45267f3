package poliastro

import (
	"math"
	"testing"
	"time"

	"gonum.org/v1/gonum/floats/scalar"
)

func TestOrbitRV2COE(t *testing.T) {
	// Vallado's RV2COE example, section 2.4.
	R := []float64{6524.834, 6862.875, 6448.296}
	V := []float64{4.901327, 5.533756, -1.976341}
	o := NewOrbitFromRV(R, V, Earth)
	a, e, i, Ω, ω, ν, _, _, _ := o.Elements()
	if !scalar.EqualWithinRel(a, 36127.343, 1e-5) {
		t.Fatalf("a: got %f", a)
	}
	if !scalar.EqualWithinRel(e, 0.832853, 1e-5) {
		t.Fatalf("e: got %f", e)
	}
	for name, angle := range map[string][2]float64{
		"i": {i, 87.870},
		"Ω": {Ω, 227.898},
		"ω": {ω, 53.38},
		"ν": {ν, 92.335},
	} {
		if ok, err := anglesEqual(angle[0], Deg2rad(angle[1])); !ok {
			t.Fatalf("%s: got %f deg (%s)", name, Rad2deg(angle[0]), err)
		}
	}
}

func TestOrbitCOE2RV(t *testing.T) {
	// Vallado's COE2RV example, section 2.5.
	o := NewOrbitFromOE(36126.64283, 0.83285, 87.87, 227.89, 53.38, 92.335, Earth)
	R, V := o.RV()
	if !vectorsEqual(R, []float64{6525.344, 6861.535, 6449.125}) {
		t.Fatalf("R: got %+v", R)
	}
	if !vectorsEqual(V, []float64{4.902276, 5.533124, -1.975709}) {
		t.Fatalf("V: got %+v", V)
	}
}

func TestOrbitRoundTrip(t *testing.T) {
	o0 := NewOrbitFromOE(26600, 0.74, 63.4, 90, 270, 10, Earth)
	R, V := o0.RV()
	o1 := NewOrbitFromRV(R, V, Earth)
	if ok, err := o0.Equals(*o1); !ok {
		t.Fatalf("round trip changed the orbit: %s", err)
	}
}

func TestOrbitStateBridge(t *testing.T) {
	o := NewOrbitFromOE(7000, 0.01, 30, 80, 40, 0, Earth)
	s := o.State()
	if s.GM != Earth.μ {
		t.Fatalf("state GM: got %f", s.GM)
	}
	back := NewOrbitFromState(s, Earth)
	if ok, err := o.Equals(*back); !ok {
		t.Fatalf("state bridge changed the orbit: %s", err)
	}
	assertPanic(t, func() { NewOrbitFromState(s, Mars) })
}

func TestNewCircularOrbit(t *testing.T) {
	o := NewCircularOrbit(500, 51.6, Earth)
	a, e, i, _, _, _, _, _, _ := o.Elements()
	if !scalar.EqualWithinAbs(a, Earth.Radius+500, 1e-9) {
		t.Fatalf("a: got %f", a)
	}
	if e != 0 {
		t.Fatalf("e: got %f", e)
	}
	if ok, _ := anglesEqual(i, Deg2rad(51.6)); !ok {
		t.Fatalf("i: got %f deg", Rad2deg(i))
	}
	if !scalar.EqualWithinRel(o.VNorm(), math.Sqrt(Earth.μ/a), 1e-6) {
		t.Fatalf("circular velocity: got %f", o.VNorm())
	}
}

func TestOrbitPeriodGeosync(t *testing.T) {
	o := NewOrbitFromOE(42164.0, 0, 0, 0, 0, 0, Earth)
	if period := o.Period(); math.Abs(period.Minutes()-1436) > 0.2 {
		t.Fatalf("geosynchronous period: got %s", period)
	}
	exp := 2 * math.Pi * math.Sqrt(math.Pow(42164.0, 3)/Earth.μ)
	if !scalar.EqualWithinRel(o.Period().Seconds(), exp, 1e-4) {
		t.Fatalf("period: got %f s, exp %f s", o.Period().Seconds(), exp)
	}
}

func TestOrbitApsides(t *testing.T) {
	rA, rP := 42164.0, 6678.0
	a, e := Radii2ae(rA, rP)
	o := NewOrbitFromOE(a, e, 28.5, 0, 0, 0, Earth)
	if !scalar.EqualWithinRel(o.Apoapsis(), rA, 1e-9) {
		t.Fatalf("apoapsis: got %f", o.Apoapsis())
	}
	if !scalar.EqualWithinRel(o.Periapsis(), rP, 1e-9) {
		t.Fatalf("periapsis: got %f", o.Periapsis())
	}
	assertPanic(t, func() { Radii2ae(rP, rA) })
}

func TestOrbitEnergyAndH(t *testing.T) {
	o := NewOrbitFromOE(26600, 0.74, 63.4, 90, 270, 10, Earth)
	if !scalar.EqualWithinRel(o.Energyξ(), -Earth.μ/(2*26600), 1e-9) {
		t.Fatalf("energy: got %f", o.Energyξ())
	}
	p := o.SemiParameter()
	if !scalar.EqualWithinRel(o.HNorm(), math.Sqrt(p*Earth.μ), 1e-9) {
		t.Fatalf("angular momentum: got %f", o.HNorm())
	}
}

func TestOrbitEquals(t *testing.T) {
	o0 := NewOrbitFromOE(7000, 0.01, 30, 80, 40, 0, Earth)
	o1 := NewOrbitFromOE(7000, 0.01, 30, 80, 40, 90, Earth)
	if ok, _ := o0.Equals(*o1); !ok {
		t.Fatal("Equals must ignore the anomaly")
	}
	if ok, _ := o0.StrictlyEquals(*o1); ok {
		t.Fatal("StrictlyEquals must not ignore the anomaly")
	}
	oM := NewOrbitFromOE(7000, 0.01, 30, 80, 40, 0, Mars)
	if ok, _ := o0.Equals(*oM); ok {
		t.Fatal("orbits about different bodies cannot be equal")
	}
}

func TestOrbitPeriodDuration(t *testing.T) {
	o := NewCircularOrbit(500, 28.5, Earth)
	elapsed := o.Period()
	if elapsed < 90*time.Minute || elapsed > 100*time.Minute {
		t.Fatalf("500 km LEO period out of range: %s", elapsed)
	}
}
