package controls

import (
	"math"
	"testing"

	"github.com/echoflaresat/earthglow/render"
	"github.com/echoflaresat/earthglow/vectors"
)

func newControls(t *testing.T, opts Options) *OrbitControls {
	t.Helper()
	cam := render.NewCamera(nil, 45, 1, 0.1, 1000)
	cam.SetPosition(vectors.New(-3.2, 2.9, -1.2).Normalize())
	cam.LookAt(vectors.Zero())
	c := New(cam, opts)
	c.SetViewportHeight(600)
	return c
}

func TestFirstUpdateClampsDistance(t *testing.T) {
	c := newControls(t, DefaultOptions())
	dir := c.Camera.Position().Normalize()
	if !c.Update() {
		t.Fatal("Update reported no motion while clamping")
	}
	if d := c.Distance(); math.Abs(d-3) > 1e-9 {
		t.Fatalf("distance = %v, want 3", d)
	}
	if got := c.Camera.Position().Normalize(); vectors.Distance(got, dir) > 1e-9 {
		t.Fatalf("direction changed: %v vs %v", got, dir)
	}
	if c.Update() {
		t.Fatal("idle Update reported motion")
	}
}

func TestZoomClamp(t *testing.T) {
	c := newControls(t, DefaultOptions())
	for i := 0; i < 100; i++ {
		c.Zoom(1)
		c.Update()
	}
	if d := c.Distance(); math.Abs(d-10) > 1e-9 {
		t.Fatalf("zoomed out to %v, want 10", d)
	}
	for i := 0; i < 100; i++ {
		c.Zoom(-1)
		c.Update()
	}
	if d := c.Distance(); math.Abs(d-3) > 1e-9 {
		t.Fatalf("zoomed in to %v, want 3", d)
	}
}

func TestZoomStep(t *testing.T) {
	c := newControls(t, DefaultOptions())
	c.Camera.SetPosition(vectors.New(0, 0, 5))
	c.Zoom(-1)
	c.Update()
	if d := c.Distance(); math.Abs(d-4.75) > 1e-9 {
		t.Fatalf("distance after one step in = %v, want 4.75", d)
	}
}

func TestDampingDecays(t *testing.T) {
	c := newControls(t, DefaultOptions())
	c.Update()
	c.Rotate(100, 0)

	prev := c.Camera.Position()
	var steps []float64
	for i := 0; i < 5; i++ {
		c.Update()
		cur := c.Camera.Position()
		steps = append(steps, vectors.Distance(prev, cur))
		prev = cur
	}
	for i := 1; i < len(steps); i++ {
		if steps[i] >= steps[i-1] {
			t.Fatalf("step %d = %v did not shrink from %v", i, steps[i], steps[i-1])
		}
	}
	if math.Abs(steps[1]/steps[0]-0.95) > 1e-3 {
		t.Fatalf("decay ratio = %v, want 0.95", steps[1]/steps[0])
	}
}

func TestRotateWithoutDamping(t *testing.T) {
	opts := DefaultOptions()
	opts.EnableDamping = false
	c := newControls(t, opts)
	c.Camera.SetPosition(vectors.New(0, 0, 5))

	// A drag of half the viewport height is half a turn.
	c.Rotate(300, 0)
	c.Update()
	if got := c.Camera.Position(); vectors.Distance(got, vectors.New(0, 0, -5)) > 1e-9 {
		t.Fatalf("position = %v, want (0,0,-5)", got)
	}
	if c.Update() {
		t.Fatal("motion persisted without damping")
	}
}

func TestPolarClamp(t *testing.T) {
	opts := DefaultOptions()
	opts.EnableDamping = false
	c := newControls(t, opts)
	c.Camera.SetPosition(vectors.New(0, 0, 5))
	c.Rotate(0, 10000)
	c.Update()
	s := vectors.SphericalFromVec(c.Camera.Position())
	if s.Phi <= 0 || s.Phi > 1e-5 {
		t.Fatalf("phi = %v, want clamped just off the pole", s.Phi)
	}
	if f := c.Camera.Forward(); math.IsNaN(f.X) || f.Norm() == 0 {
		t.Fatalf("degenerate forward %v", f)
	}
}

func TestDisabled(t *testing.T) {
	c := newControls(t, DefaultOptions())
	c.Update()
	c.Enabled = false
	c.Rotate(100, 100)
	c.Zoom(1)
	if c.Update() {
		t.Fatal("disabled controls moved the camera")
	}
}
