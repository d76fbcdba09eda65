package overlay

import (
	"image/draw"
	"math"

	"github.com/echoflaresat/earthglow/scene"
	"github.com/echoflaresat/earthglow/texture"
	"github.com/echoflaresat/earthglow/vectors"
)

const (
	opacityFront  = 0.9
	opacityBehind = 0.3
	pausedScale   = 1.2
)

// OrbitState is the mutable state of the orbiting logo.
type OrbitState struct {
	Angle  float64
	Active bool
	Radius float64
	Speed  float64
	Tilt   float64 // radians about X
}

type OrbitingOptions struct {
	Radius       float64
	Speed        float64
	Tilt         float64
	Margin       float64
	BehindDepth  float64
	Size         float64
	CompactSize  float64
	CompactWidth float64
	Title        string
	Logo         *texture.Slot
	Helper       *scene.Node
}

// Orbiting is a logo circling the globe on a tilted, slightly wobbling orbit.
type Orbiting struct {
	State OrbitState

	opts      OrbitingOptions
	placement Placement
	world     vectors.Vec3
	ndc       vectors.Vec3
	badge     *logoImage
}

func NewOrbiting(opts OrbitingOptions) *Orbiting {
	o := &Orbiting{
		State: OrbitState{
			Active: true,
			Radius: opts.Radius,
			Speed:  opts.Speed,
			Tilt:   opts.Tilt,
		},
		opts:  opts,
		badge: newLogoImage(opts.Logo),
	}
	o.placement = Placement{Opacity: opacityFront, Scale: 1, Title: o.title()}
	return o
}

// OrbitPosition is the logo's world position at angle.
func OrbitPosition(angle, radius, tilt float64) vectors.Vec3 {
	p := vectors.New(
		math.Cos(angle)*radius,
		math.Sin(angle*0.7)*radius*0.3,
		math.Sin(angle)*radius,
	)
	return p.ApplyAxisAngle(vectors.New(1, 0, 0), tilt)
}

// NDCToPixels maps normalized device coordinates to viewport pixels with
// y pointing down.
func NDCToPixels(ndc vectors.Vec3, width, height float64) (float64, float64) {
	return (ndc.X*0.5 + 0.5) * width, (-ndc.Y*0.5 + 0.5) * height
}

// IsBehind is the depth heuristic for "behind the globe": projected depth
// beyond threshold. It does not test against the sphere itself.
func IsBehind(depth, threshold float64) bool {
	return depth > threshold
}

// InViewport reports whether (x, y) lies strictly within margin pixels of
// the viewport.
func InViewport(x, y, width, height, margin float64) bool {
	return x > -margin && x < width+margin && y > -margin && y < height+margin
}

// Update advances the orbit while active and recomputes the placement.
func (o *Orbiting) Update(f Frame) {
	if o.State.Active {
		o.State.Angle += f.Delta * o.State.Speed
	}

	o.world = OrbitPosition(o.State.Angle, o.State.Radius, o.State.Tilt)
	if o.opts.Helper != nil {
		o.opts.Helper.Position = o.world
	}
	if f.Camera == nil {
		return
	}
	o.ndc = f.Camera.Project(o.world)

	px, py := NDCToPixels(o.ndc, f.Width, f.Height)
	size := ElementSize(f.Width, o.opts.Size, o.opts.CompactSize, o.opts.CompactWidth)
	behind := IsBehind(o.ndc.Z, o.opts.BehindDepth)

	p := Placement{
		X:       px - size/2,
		Y:       py - size/2,
		Size:    size,
		Visible: InViewport(px, py, f.Width, f.Height, o.opts.Margin),
		Behind:  behind,
		Opacity: opacityFront,
		Scale:   1,
		Title:   o.title(),
	}
	if behind {
		p.Opacity = opacityBehind
	}
	if !o.State.Active {
		p.Scale = pausedScale
	}
	o.placement = p
}

// Toggle pauses or resumes the orbit.
func (o *Orbiting) Toggle() {
	o.State.Active = !o.State.Active
	o.placement.Title = o.title()
	if o.State.Active {
		o.placement.Scale = 1
	} else {
		o.placement.Scale = pausedScale
	}
}

func (o *Orbiting) Active() bool {
	return o.State.Active
}

func (o *Orbiting) Contains(x, y float64) bool {
	return o.placement.Contains(x, y)
}

func (o *Orbiting) Placement() Placement {
	return o.placement
}

// World returns the last computed orbit position.
func (o *Orbiting) World() vectors.Vec3 {
	return o.world
}

// NDC returns the last projected position.
func (o *Orbiting) NDC() vectors.Vec3 {
	return o.ndc
}

func (o *Orbiting) Draw(dst draw.Image, pixelRatio float64) {
	drawPlacement(dst, o.badge.image(), o.placement, pixelRatio)
}

func (o *Orbiting) title() string {
	if o.State.Active {
		return o.opts.Title + " - click to pause orbit"
	}
	return o.opts.Title + " - click to resume orbit"
}
