package earth

import (
	"math"
	"testing"
	"time"

	"github.com/echoflaresat/earthglow/texture"
	"github.com/echoflaresat/earthglow/vectors"
)

func TestSpinAngle(t *testing.T) {
	prev := -1.0
	for _, elapsed := range []float64{0, 0.016, 1, 10, 62.8, 1000} {
		got := SpinAngle(elapsed)
		if math.Abs(got-elapsed*0.1) > 1e-12 {
			t.Fatalf("SpinAngle(%v) = %v", elapsed, got)
		}
		if got <= prev {
			t.Fatalf("SpinAngle not increasing at %v", elapsed)
		}
		prev = got
	}
}

func TestSunDirectionUnit(t *testing.T) {
	inputs := []vectors.Spherical{
		{Radius: 1, Phi: math.Pi * 0.5, Theta: 0.5},
		{Radius: 7, Phi: 0.3, Theta: -2},
		{Radius: 0, Phi: 1, Theta: 1},
		{Radius: -3, Phi: math.Pi, Theta: 10},
	}
	for _, s := range inputs {
		if n := SunDirection(s).Norm(); math.Abs(n-1) > 1e-12 {
			t.Errorf("|SunDirection(%+v)| = %v", s, n)
		}
	}
}

func TestSunDirectionDefault(t *testing.T) {
	got := SunDirection(vectors.Spherical{Radius: 1, Phi: math.Pi / 2, Theta: 0.5})
	if math.Abs(got.X-math.Sin(0.5)) > 1e-12 || math.Abs(got.Y) > 1e-12 || math.Abs(got.Z-math.Cos(0.5)) > 1e-12 {
		t.Fatalf("SunDirection = %v", got)
	}
}

func TestFromECEFMatchesTexture(t *testing.T) {
	// longitude 0 on the equator sits in the middle of the map
	u, v := texture.SphereUV(FromECEF(vectors.New(1, 0, 0)))
	if math.Abs(u-0.5) > 1e-9 || math.Abs(v-0.5) > 1e-9 {
		t.Fatalf("lon 0 -> (%v, %v)", u, v)
	}
	// 90°E lies a quarter map east of the centre
	u, _ = texture.SphereUV(FromECEF(vectors.New(0, 1, 0)))
	if math.Abs(u-0.75) > 1e-9 {
		t.Fatalf("lon 90E -> u %v", u)
	}
	// north pole is the top row
	_, v = texture.SphereUV(FromECEF(vectors.New(0, 0, 1)))
	if v > 1e-9 {
		t.Fatalf("north pole -> v %v", v)
	}
}

func TestSunSphericalAtSolstice(t *testing.T) {
	at := time.Date(2024, 6, 20, 20, 51, 0, 0, time.UTC)
	s := SunSphericalAt(at)
	if math.Abs(s.Radius-1) > 1e-9 {
		t.Fatalf("radius %v", s.Radius)
	}
	// Undo the tilt: the sun should sit about 23.4° north of the equator.
	dir := vectors.FromSpherical(s).RotateX(-AxialTilt)
	lat := math.Asin(dir.Y) * 180 / math.Pi
	if math.Abs(lat-23.44) > 0.1 {
		t.Fatalf("subsolar latitude %v", lat)
	}
}
