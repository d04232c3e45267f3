package poliastro

import (
	"strings"
	"testing"
)

func TestCelestialFromString(t *testing.T) {
	for _, exp := range []CelestialObject{Sun, Venus, Earth, Mars, Jupiter, Saturn, Uranus, Pluto} {
		for _, name := range []string{exp.Name, strings.ToLower(exp.Name), strings.ToUpper(exp.Name)} {
			got, err := CelestialObjectFromString(name)
			if err != nil {
				t.Fatalf("%s: %s", name, err)
			}
			if !got.Equals(exp) {
				t.Fatalf("%s: got %s", name, got)
			}
		}
	}
	if _, err := CelestialObjectFromString("Krypton"); err == nil {
		t.Fatal("unknown body must error")
	}
}

func TestCelestialJ(t *testing.T) {
	if Earth.J(2) <= 0 {
		t.Fatalf("Earth J2: got %e", Earth.J(2))
	}
	if Earth.J(3) >= 0 {
		t.Fatalf("Earth J3: got %e", Earth.J(3))
	}
	if Earth.J(5) != 0 {
		t.Fatalf("unsupported harmonic must be zero: got %e", Earth.J(5))
	}
	if Sun.J(2) != 0 {
		t.Fatalf("Sun J2 must be zero: got %e", Sun.J(2))
	}
}

func TestCelestialEquals(t *testing.T) {
	if !Earth.Equals(Earth) {
		t.Fatal("Earth must equal itself")
	}
	if Earth.Equals(Mars) {
		t.Fatal("Earth must not equal Mars")
	}
	if Earth.GM() != Earth.μ {
		t.Fatal("GM must return the gravitational parameter")
	}
}
