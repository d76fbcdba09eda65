package render

import (
	"math"

	"github.com/echoflaresat/earthglow/colors"
	"github.com/echoflaresat/earthglow/scene"
	"github.com/echoflaresat/earthglow/texture"
	"github.com/echoflaresat/earthglow/vectors"
	"github.com/go-gl/mathgl/mgl64"
)

// frameState is everything the shaders need that is constant over a frame.
// It is built once per Render and shared read-only by all row workers.
type frameState struct {
	origin     vectors.Vec3
	background colors.Color4

	earthVisible bool
	earthRadius  float64
	earthWorld   mgl64.Mat4
	earthInv     mgl64.Mat4

	earthSun      vectors.Vec3
	atmoDay       colors.Color4
	atmoNight     colors.Color4
	ambient       colors.Color4
	bumpScale     float64
	metalness     float64
	roughness     float64
	texDay        *texture.Slot
	texNight      *texture.Slot
	texSpecClouds *texture.Slot
	texBump       *texture.Slot
	texMetalness  *texture.Slot

	atmoVisible  bool
	atmoRadius   float64
	atmoSun      vectors.Vec3
	atmoDayColor colors.Color4
	atmoTwilight colors.Color4

	markerVisible bool
	markerCenter  vectors.Vec3
	markerRadius  float64
	markerColor   colors.Color4

	ringVisible bool
	ringNormal  vectors.Vec3
	ringCenter  vectors.Vec3
	ringInner   float64
	ringOuter   float64
	ringColor   colors.Color4
}

func newFrameState(sc *scene.Scene, cam *Camera) *frameState {
	fs := &frameState{
		origin:     cam.Position(),
		background: sc.Background,
	}

	if n := sc.Earth; n != nil && n.Visible {
		m := n.Material.Uniforms
		fs.earthVisible = true
		fs.earthRadius = n.Geometry.BoundingRadius() * n.Scale.X
		fs.earthWorld = n.WorldMatrix()
		fs.earthInv = fs.earthWorld.Inv()
		fs.earthSun = m.Vec3("uSunDirection").Normalize()
		fs.atmoDay = m.Color("uAtmosphereDayColor")
		fs.atmoNight = m.Color("uAtmosphereNightColor")
		fs.texDay = m.Texture("uDayTexture")
		fs.texNight = m.Texture("uNightTexture")
		fs.texSpecClouds = m.Texture("uSpecularCloudsTexture")
		fs.texBump = m.Texture("bumpMap")
		fs.texMetalness = m.Texture("metalnessMap")
		fs.bumpScale = m.Float("bumpScale")
		fs.metalness = m.Float("metalness")
		fs.roughness = m.Float("roughness")
	}
	if n := sc.Ambient; n != nil && n.Light != nil {
		fs.ambient = n.Light.Color.ScaleRGB(n.Light.Intensity)
	}

	if n := sc.Atmosphere; n != nil && n.Visible {
		m := n.Material.Uniforms
		fs.atmoVisible = true
		fs.atmoRadius = n.Geometry.BoundingRadius() * n.Scale.X
		fs.atmoSun = m.Vec3("uSunDirection").Normalize()
		fs.atmoDayColor = m.Color("uAtmosphereDayColor")
		fs.atmoTwilight = m.Color("uAtmosphereTwilightColor")
	}

	if n := sc.DebugSun; n != nil && n.Visible {
		fs.markerVisible = true
		fs.markerCenter = n.WorldPosition()
		fs.markerRadius = n.Geometry.BoundingRadius() * n.Scale.X
		fs.markerColor = n.Material.Color
	}

	if n := sc.OrbitTrail; n != nil && n.Visible {
		ring := n.Geometry.(scene.RingGeometry)
		w := n.WorldMatrix()
		fs.ringVisible = true
		fs.ringCenter = n.WorldPosition()
		fs.ringNormal = vectors.FromMGL(mgl64.TransformNormal(mgl64.Vec3{0, 0, 1}, w)).Normalize()
		fs.ringInner = ring.Inner * n.Scale.X
		fs.ringOuter = ring.Outer * n.Scale.X
		fs.ringColor = n.Material.Color.WithAlpha(n.Material.Opacity)
	}
	return fs
}

// RayContext carries per-ray state for the Earth shader.
type RayContext struct {
	Origin       vectors.Vec3
	RayDirection vectors.Vec3
	T            float64
	HitPoint     vectors.Vec3
	// LocalPoint is HitPoint in the Earth's own frame, used for texturing.
	LocalPoint     vectors.Vec3
	SurfaceNormal  vectors.Vec3
	SunOrientation float64
	ViewDotNormal  float64

	frame *frameState
}

func newRayContext(fs *frameState) *RayContext {
	return &RayContext{Origin: fs.origin, frame: fs}
}

// SetRayDirection intersects the ray with the Earth and fills the hit fields.
// T is -1 when the Earth is missed.
func (c *RayContext) SetRayDirection(dir vectors.Vec3) {
	c.RayDirection = dir
	c.T = -1
	if !c.frame.earthVisible {
		return
	}
	c.T = intersectSphere(c.Origin, dir, c.frame.earthRadius)
	if c.T < 0 {
		return
	}
	c.HitPoint = c.Origin.Add(dir.Scale(c.T))
	c.LocalPoint = vectors.FromMGL(mgl64.TransformCoordinate(c.HitPoint.MGL(), c.frame.earthInv)).Normalize()
	c.SurfaceNormal = c.HitPoint.Normalize()
	c.SunOrientation = c.SurfaceNormal.Dot(c.frame.earthSun)
	c.ViewDotNormal = -c.SurfaceNormal.Dot(dir)
}

// intersectSphere returns the closest positive t of O + tD on a sphere of
// radius r around the origin, or -1 when there is none.
func intersectSphere(O, D vectors.Vec3, r float64) float64 {
	hit, t0, t1 := intersectSphereFull(O, D, vectors.Zero(), r)
	if !hit {
		return -1
	}
	if t0 > 0 {
		return t0
	}
	if t1 > 0 {
		return t1
	}
	return -1
}

// intersectSphereFull returns both roots (t0 <= t1) of the ray against the
// sphere at center, for a unit direction D.
func intersectSphereFull(O, D, center vectors.Vec3, r float64) (bool, float64, float64) {
	oc := O.Sub(center)
	b := oc.Dot(D)
	c := oc.Dot(oc) - r*r
	disc := b*b - c
	if disc < 0 {
		return false, 0, 0
	}
	s := math.Sqrt(disc)
	return true, -b - s, -b + s
}

// intersectRing returns t where the ray crosses the annulus, or -1.
func intersectRing(O, D, center, normal vectors.Vec3, inner, outer float64) float64 {
	denom := D.Dot(normal)
	if math.Abs(denom) < 1e-12 {
		return -1
	}
	t := center.Sub(O).Dot(normal) / denom
	if t <= 0 {
		return -1
	}
	r := O.Add(D.Scale(t)).Sub(center).Norm()
	if r < inner || r > outer {
		return -1
	}
	return t
}
