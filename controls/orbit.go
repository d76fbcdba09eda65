// Package controls implements mouse-driven orbit camera controls.
package controls

import (
	"math"

	"github.com/echoflaresat/earthglow/render"
	"github.com/echoflaresat/earthglow/vectors"
)

const changeEpsilon = 1e-6

// Options configures OrbitControls.
type Options struct {
	MinDistance   float64
	MaxDistance   float64
	MinPolarAngle float64
	MaxPolarAngle float64
	EnableDamping bool
	DampingFactor float64
	RotateSpeed   float64
	ZoomSpeed     float64
}

func DefaultOptions() Options {
	return Options{
		MinDistance:   3,
		MaxDistance:   10,
		MinPolarAngle: 0,
		MaxPolarAngle: math.Pi,
		EnableDamping: true,
		DampingFactor: 0.05,
		RotateSpeed:   1,
		ZoomSpeed:     1,
	}
}

// OrbitControls orbits a camera around a target. Input methods queue motion;
// Update applies it once per frame.
type OrbitControls struct {
	Camera  *render.Camera
	Target  vectors.Vec3
	Enabled bool
	opts    Options

	deltaTheta     float64
	deltaPhi       float64
	scale          float64
	viewportHeight float64
}

func New(cam *render.Camera, opts Options) *OrbitControls {
	return &OrbitControls{
		Camera:         cam,
		Enabled:        true,
		opts:           opts,
		scale:          1,
		viewportHeight: 1,
	}
}

// SetViewportHeight sets the height, in logical pixels, that a full
// vertical drag maps to one turn.
func (c *OrbitControls) SetViewportHeight(h float64) {
	if h > 0 {
		c.viewportHeight = h
	}
}

// Rotate queues a drag of (dx, dy) logical pixels.
func (c *OrbitControls) Rotate(dx, dy float64) {
	if !c.Enabled {
		return
	}
	c.deltaTheta -= 2 * math.Pi * dx * c.opts.RotateSpeed / c.viewportHeight
	c.deltaPhi -= 2 * math.Pi * dy * c.opts.RotateSpeed / c.viewportHeight
}

// ZoomScale is the distance factor of one wheel step.
func (c *OrbitControls) ZoomScale() float64 {
	return math.Pow(0.95, c.opts.ZoomSpeed)
}

// Zoom queues wheel motion: negative delta moves the camera in, positive out.
func (c *OrbitControls) Zoom(delta float64) {
	if !c.Enabled || delta == 0 {
		return
	}
	if delta < 0 {
		c.scale *= c.ZoomScale()
	} else {
		c.scale /= c.ZoomScale()
	}
}

// Update applies queued motion, clamps distance and polar angle, moves the
// camera and points it at the target. It reports whether the camera moved.
func (c *OrbitControls) Update() bool {
	cam := c.Camera
	before := cam.Position()

	offset := before.Sub(c.Target)
	s := vectors.SphericalFromVec(offset)

	if c.opts.EnableDamping {
		s.Theta += c.deltaTheta * c.opts.DampingFactor
		s.Phi += c.deltaPhi * c.opts.DampingFactor
	} else {
		s.Theta += c.deltaTheta
		s.Phi += c.deltaPhi
	}
	s.Phi = math.Max(c.opts.MinPolarAngle, math.Min(c.opts.MaxPolarAngle, s.Phi))
	s = s.MakeSafe()
	s.Radius = c.clampDistance(s.Radius * c.scale)

	cam.SetPosition(c.Target.Add(vectors.FromSpherical(s)))
	cam.LookAt(c.Target)

	if c.opts.EnableDamping {
		c.deltaTheta *= 1 - c.opts.DampingFactor
		c.deltaPhi *= 1 - c.opts.DampingFactor
	} else {
		c.deltaTheta, c.deltaPhi = 0, 0
	}
	c.scale = 1

	d := cam.Position().Sub(before)
	return d.Dot(d) > changeEpsilon*changeEpsilon
}

func (c *OrbitControls) clampDistance(d float64) float64 {
	return math.Max(c.opts.MinDistance, math.Min(c.opts.MaxDistance, d))
}

// Distance is the current camera distance to the target.
func (c *OrbitControls) Distance() float64 {
	return vectors.Distance(c.Camera.Position(), c.Target)
}
