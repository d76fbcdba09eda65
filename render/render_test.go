package render

import (
	"context"
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/echoflaresat/earthglow/colors"
	"github.com/echoflaresat/earthglow/scene"
	"github.com/echoflaresat/earthglow/texture"
	"github.com/echoflaresat/earthglow/vectors"
)

func solid(c color.NRGBA) *texture.Texture {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 4; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return texture.FromImage(img)
}

func testCamera(pos vectors.Vec3, aspect float64) *Camera {
	cam := NewCamera(nil, 45, aspect, 0.1, 1000)
	cam.SetPosition(pos)
	cam.LookAt(vectors.Zero())
	return cam
}

func TestProjectCentre(t *testing.T) {
	cam := testCamera(vectors.New(0, 0, 5), 4.0/3.0)
	ndc := cam.Project(vectors.Zero())
	if math.Abs(ndc.X) > 1e-12 || math.Abs(ndc.Y) > 1e-12 {
		t.Fatalf("origin projects to %v", ndc)
	}
	if ndc.Z <= -1 || ndc.Z >= 1 {
		t.Fatalf("depth %v outside clip range", ndc.Z)
	}
}

func TestProjectMatchesComputeRay(t *testing.T) {
	cam := testCamera(vectors.New(-3.2, 2.9, -1.2), 800.0/600.0)
	for _, p := range []vectors.Vec3{vectors.New(0.5, 0.2, -0.3), vectors.New(-1, 1, 1), vectors.New(2, -0.5, 0)} {
		ndc := cam.Project(p)
		px := (ndc.X*0.5 + 0.5) * 800
		py := (-ndc.Y*0.5 + 0.5) * 600
		got := cam.ComputeRay(px, py, 800, 600)
		want := p.Sub(cam.Position()).Normalize()
		if vectors.Distance(got, want) > 1e-9 {
			t.Errorf("ray through projection of %v = %v, want %v", p, got, want)
		}
	}
}

func TestPixelRatioClamp(t *testing.T) {
	r := NewRenderer(DefaultOptions(), nil)
	cases := []struct {
		in, want float64
	}{
		{1, 1},
		{1.5, 1.5},
		{2, 2},
		{3, 2},
		{0, 1},
	}
	for _, c := range cases {
		r.SetPixelRatio(c.in)
		if got := r.PixelRatio(); got != c.want {
			t.Errorf("SetPixelRatio(%v) -> %v, want %v", c.in, got, c.want)
		}
	}
}

func TestOutputSize(t *testing.T) {
	r := NewRenderer(DefaultOptions(), nil)
	r.SetSize(1024, 768)
	r.SetPixelRatio(1)
	if w, h := r.OutputSize(); w != 1024 || h != 768 {
		t.Fatalf("OutputSize = %dx%d", w, h)
	}
	r.SetPixelRatio(2)
	if w, h := r.OutputSize(); w != 2048 || h != 1536 {
		t.Fatalf("OutputSize at 2x = %dx%d", w, h)
	}
}

func renderSmall(t *testing.T, sc *scene.Scene, opts Options) *image.NRGBA {
	t.Helper()
	r := NewRenderer(opts, nil)
	r.SetSize(32, 24)
	r.SetPixelRatio(1)
	cam := testCamera(vectors.New(0, 0, 3), 32.0/24.0)
	img, err := r.Render(context.Background(), sc, cam)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if img.Bounds().Dx() != 32 || img.Bounds().Dy() != 24 {
		t.Fatalf("frame is %v", img.Bounds())
	}
	return img
}

func TestRenderDaySide(t *testing.T) {
	sc := scene.Build(scene.DefaultOptions())
	sc.UpdateSun(vectors.Spherical{Radius: 1, Phi: math.Pi / 2, Theta: 0})
	sc.Texture(scene.TexDay).Set(solid(color.NRGBA{R: 255, A: 255}))
	sc.Texture(scene.TexNight).Set(solid(color.NRGBA{B: 255, A: 255}))

	img := renderSmall(t, sc, DefaultOptions())
	c := img.NRGBAAt(16, 12)
	if c.R < 240 || c.B > 20 {
		t.Fatalf("sunlit centre = %v, want red", c)
	}
	if corner := img.NRGBAAt(0, 0); corner != (color.NRGBA{A: 255}) {
		t.Fatalf("corner = %v, want opaque black", corner)
	}
}

func TestRenderNightSide(t *testing.T) {
	sc := scene.Build(scene.DefaultOptions())
	sc.UpdateSun(vectors.Spherical{Radius: 1, Phi: math.Pi / 2, Theta: math.Pi})
	sc.Texture(scene.TexDay).Set(solid(color.NRGBA{R: 255, A: 255}))
	sc.Texture(scene.TexNight).Set(solid(color.NRGBA{B: 255, A: 255}))

	img := renderSmall(t, sc, DefaultOptions())
	c := img.NRGBAAt(16, 12)
	// The ambient fill lets a little of the day map through.
	if c.B < 240 || c.R > 60 {
		t.Fatalf("night centre = %v, want blue", c)
	}
}

func TestRenderBlankTextures(t *testing.T) {
	sc := scene.Build(scene.DefaultOptions())
	opts := DefaultOptions()
	opts.Scale = 0.5
	opts.Supersample = 2
	img := renderSmall(t, sc, opts)
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 255 {
			t.Fatal("frame has transparent pixels")
		}
	}
}

func TestRenderCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := NewRenderer(DefaultOptions(), nil)
	r.SetSize(16, 16)
	_, err := r.Render(ctx, scene.Build(scene.DefaultOptions()), testCamera(vectors.New(0, 0, 3), 1))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestSmoothstep(t *testing.T) {
	cases := []struct {
		e0, e1, x, want float64
	}{
		{0, 1, -1, 0},
		{0, 1, 2, 1},
		{0, 1, 0.5, 0.5},
		{-0.25, 0.5, 0.125, 0.5},
		{1, 1, 0.5, 0},
		{1, 1, 1, 1},
	}
	for _, c := range cases {
		if got := Smoothstep(c.e0, c.e1, c.x); math.Abs(got-c.want) > 1e-12 {
			t.Errorf("Smoothstep(%v, %v, %v) = %v, want %v", c.e0, c.e1, c.x, got, c.want)
		}
	}
}

func TestShadeAtmosphere(t *testing.T) {
	fs := &frameState{
		atmoSun:      vectors.New(0, 1, 0),
		atmoDayColor: colors.FromHex(0x9fd8ff),
		atmoTwilight: colors.FromHex(0x050c1f),
	}
	p := vectors.New(0, 1.025, 0)
	lit := shadeAtmosphere(fs, vectors.New(0, 1, 0), p)
	if math.Abs(lit.A-1) > 1e-12 || lit.R != fs.atmoDayColor.R {
		t.Fatalf("lit shell = %+v", lit)
	}

	fs.atmoSun = vectors.New(0, -1, 0)
	if dark := shadeAtmosphere(fs, vectors.New(0, 1, 0), p); dark.A != 0 {
		t.Fatalf("shell opposite the sun has alpha %v", dark.A)
	}

	fs.atmoSun = vectors.New(0, 1, 0)
	if edge := shadeAtmosphere(fs, vectors.New(1, 0, 0), p); edge.A != 0 {
		t.Fatalf("grazing ray alpha %v", edge.A)
	}
}

func TestIntersectRing(t *testing.T) {
	n := vectors.New(0, 1, 0)
	if got := intersectRing(vectors.New(2.5, 5, 0), vectors.New(0, -1, 0), vectors.Zero(), n, 2.48, 2.52); math.Abs(got-5) > 1e-12 {
		t.Errorf("t = %v, want 5", got)
	}
	if got := intersectRing(vectors.New(1, 5, 0), vectors.New(0, -1, 0), vectors.Zero(), n, 2.48, 2.52); got != -1 {
		t.Errorf("hole hit at %v", got)
	}
	if got := intersectRing(vectors.New(2.5, 5, 0), vectors.New(1, 0, 0), vectors.Zero(), n, 2.48, 2.52); got != -1 {
		t.Errorf("parallel ray hit at %v", got)
	}
}

func TestSunVisible(t *testing.T) {
	sc := scene.Build(scene.DefaultOptions())
	sc.UpdateSun(vectors.Spherical{Radius: 1, Phi: math.Pi / 2, Theta: 0})

	// Sun straight behind the globe.
	cam := testCamera(vectors.New(0, 0, -3), 1)
	if _, ok := SunVisible(sc, cam); ok {
		t.Error("sun behind the Earth reported visible")
	}

	// Camera between the Earth and the sun looking at the sun.
	cam = NewCamera(nil, 45, 1, 0.1, 1000)
	cam.SetPosition(vectors.New(0, 0, -3))
	cam.LookAt(vectors.New(3, 0, 5))
	if _, ok := SunVisible(sc, cam); ok {
		t.Error("sun occluded by the Earth reported visible")
	}

	cam = testCamera(vectors.New(0.5, 0, 2), 1)
	cam.LookAt(sc.DebugSun.Position)
	ndc, ok := SunVisible(sc, cam)
	if !ok || math.Abs(ndc.X) > 1e-9 || math.Abs(ndc.Y) > 1e-9 {
		t.Errorf("sun in view: ndc %v visible %v", ndc, ok)
	}
}

func TestDrawLabel(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 200, 100))
	DrawLabel(img, "Credits", 1)
	bounds := CreditsBounds(img.Bounds(), "Credits", 1)
	if bounds.Min.X != 10 || bounds.Max.Y != 90 {
		t.Fatalf("bounds = %v", bounds)
	}
	lit := 0
	for y := 0; y < 100; y++ {
		for x := 0; x < 200; x++ {
			if img.NRGBAAt(x, y).A == 0 {
				continue
			}
			lit++
			if !(image.Point{x, y}).In(bounds) {
				t.Fatalf("pixel (%d,%d) drawn outside %v", x, y, bounds)
			}
		}
	}
	if lit == 0 {
		t.Fatal("nothing drawn")
	}
}
