package scene

import (
	"github.com/echoflaresat/earthglow/earth"
	"github.com/echoflaresat/earthglow/vectors"
)

// UpdateSun points both shaders at the sun given in spherical coordinates and
// moves the debug marker along the same direction. It returns the unit
// direction.
func (sc *Scene) UpdateSun(s vectors.Spherical) vectors.Vec3 {
	dir := earth.SunDirection(s)
	sc.EarthMaterial.Uniforms.Set("uSunDirection", dir)
	sc.AtmosphereMaterial.Uniforms.Set("uSunDirection", dir)
	sc.DebugSun.Position = dir.Scale(sc.markerDistance)
	return dir
}
