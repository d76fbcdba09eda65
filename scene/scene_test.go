package scene

import (
	"math"
	"testing"

	"github.com/echoflaresat/earthglow/colors"
	"github.com/echoflaresat/earthglow/vectors"
)

func near(a, b vectors.Vec3, eps float64) bool {
	return vectors.Distance(a, b) < eps
}

func TestBuildGraph(t *testing.T) {
	opts := DefaultOptions()
	opts.Trail = &TrailOptions{Radius: 2.5, Tilt: 0.2 * math.Pi}
	sc := Build(opts)

	for _, name := range []string{NameCamera, NameSunLight, NameAmbient, NameEarth, NameAtmosphere, NameDebugSun, NameOrbitTrail, NameLogoHelper} {
		if sc.Root.Find(name) == nil {
			t.Errorf("node %q missing", name)
		}
	}
	if sc.SunLight.Light.Intensity != 5 || sc.SunLight.Position != vectors.New(5, 5, 5) {
		t.Errorf("sun light = %+v at %v", sc.SunLight.Light, sc.SunLight.Position)
	}
	if sc.Ambient.Light.Intensity != 0.5 {
		t.Errorf("ambient intensity = %v", sc.Ambient.Light.Intensity)
	}
	if sc.Atmosphere.Material.Side != BackSide || !sc.Atmosphere.Material.Transparent {
		t.Errorf("atmosphere material = %+v", sc.Atmosphere.Material)
	}
	ring := sc.OrbitTrail.Geometry.(RingGeometry)
	if math.Abs(ring.Inner-2.48) > 1e-12 || math.Abs(ring.Outer-2.52) > 1e-12 {
		t.Errorf("ring = %+v", ring)
	}
	if sc.OrbitTrail.Material.Opacity != 0.1 {
		t.Errorf("trail opacity = %v", sc.OrbitTrail.Material.Opacity)
	}
	if got := sc.EarthMaterial.Uniforms.Color("uAtmosphereDayColor"); got != colors.FromHex(0x9fd8ff) {
		t.Errorf("day color = %+v", got)
	}
	if sc.EarthMaterial.Uniforms.Texture("uDayTexture") != sc.Texture(TexDay) {
		t.Error("day texture uniform not bound to the day slot")
	}
}

func TestBuildWithoutTrail(t *testing.T) {
	sc := Build(DefaultOptions())
	if sc.OrbitTrail != nil || sc.Root.Find(NameOrbitTrail) != nil {
		t.Fatal("trail built without options")
	}
}

func TestUpdateSun(t *testing.T) {
	sc := Build(DefaultOptions())
	dir := sc.UpdateSun(vectors.Spherical{Radius: 42, Phi: math.Pi / 2, Theta: 0.5})

	want := vectors.New(math.Sin(0.5), 0, math.Cos(0.5))
	if !near(dir, want, 1e-12) {
		t.Fatalf("dir = %v, want %v", dir, want)
	}
	if got := sc.EarthMaterial.Uniforms.Vec3("uSunDirection"); got != dir {
		t.Errorf("earth uSunDirection = %v", got)
	}
	if got := sc.AtmosphereMaterial.Uniforms.Vec3("uSunDirection"); got != dir {
		t.Errorf("atmosphere uSunDirection = %v", got)
	}
	if !near(sc.DebugSun.Position, dir.Scale(5), 1e-12) {
		t.Errorf("marker at %v", sc.DebugSun.Position)
	}
}

func TestWorldMatrixTilt(t *testing.T) {
	sc := Build(DefaultOptions())
	sc.SetEarthSpin(0)
	// The local north pole leans toward +Z by the tilt.
	pole := sc.Earth.ToWorld(vectors.New(0, 1, 0))
	want := vectors.New(0, 1, 0).RotateX(sc.Earth.Rotation.X)
	if !near(pole, want, 1e-9) {
		t.Fatalf("pole = %v, want %v", pole, want)
	}
	back := sc.Earth.ToLocal(pole)
	if !near(back, vectors.New(0, 1, 0), 1e-9) {
		t.Fatalf("ToLocal(ToWorld) = %v", back)
	}
}

func TestSpinThenTilt(t *testing.T) {
	n := NewNode("n")
	n.Rotation = Euler{X: 0.4, Y: 1.1}
	p := vectors.New(0.3, -0.2, 0.9)
	want := p.RotateY(1.1).RotateX(0.4)
	if got := n.ToWorld(p); !near(got, want, 1e-9) {
		t.Fatalf("ToWorld = %v, want %v", got, want)
	}
}

func TestNestedTransforms(t *testing.T) {
	parent := NewNode("parent")
	parent.Position = vectors.New(1, 0, 0)
	parent.Scale = vectors.New(2, 2, 2)
	child := NewNode("child")
	child.Position = vectors.New(0, 1, 0)
	parent.Add(child)

	if got := child.WorldPosition(); !near(got, vectors.New(1, 2, 0), 1e-12) {
		t.Fatalf("world position = %v", got)
	}

	other := NewNode("other")
	other.Add(child)
	if len(parent.Children) != 0 || child.Parent() != other {
		t.Fatal("Add did not reparent")
	}
}

func TestUniformTypeMismatch(t *testing.T) {
	u := Uniforms{}
	u.Set("x", 1.5)
	if got := u.Vec3("x"); got != (vectors.Vec3{}) {
		t.Errorf("Vec3 of float = %v", got)
	}
	if u.Texture("missing") != nil {
		t.Error("missing texture not nil")
	}
	if u.Float("x") != 1.5 {
		t.Error("Float lost")
	}
}
