package render

import (
	"math"

	"github.com/echoflaresat/earthglow/colors"
	"github.com/echoflaresat/earthglow/texture"
	"github.com/echoflaresat/earthglow/vectors"
)

// Smoothstep performs a Hermite interpolation between 0 and 1 across [edge0, edge1].
// Returns 0 if x < edge0, 1 if x > edge1.
func Smoothstep(edge0, edge1, x float64) float64 {
	// Avoid division by zero
	if edge0 == edge1 {
		if x < edge0 {
			return 0.0
		}
		return 1.0
	}

	t := Clip((x-edge0)/(edge1-edge0), 0, 1)
	return t * t * (3.0 - 2.0*t)
}

// Clip clamps x into the inclusive range [min, max].
func Clip(x, min, max float64) float64 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}

// OceanFactor estimates how much of a day-map color is open water, judged
// by how dominant blue is.
func OceanFactor(day colors.Color4) float64 {
	return Clip((day.B-0.5*(day.R+day.G))*10.0, 0.0, 1.0)
}

// AtmosphereColor mixes the twilight and day colors by sun orientation.
func AtmosphereColor(twilight, day colors.Color4, sunOrientation float64) (colors.Color4, float64) {
	mix := Smoothstep(-0.5, 1.0, sunOrientation)
	return twilight.Mix(day, mix), mix
}

// RenderEarthSurface shades the globe at the ray's hit point: day/night
// blend, clouds, atmosphere fresnel tint and a masked specular glint.
func RenderEarthSurface(ctx *RayContext) colors.Color4 {
	fs := ctx.frame
	u, v := texture.SphereUV(ctx.LocalPoint)

	normal := ctx.SurfaceNormal
	if fs.texBump.Loaded() && fs.bumpScale != 0 {
		normal = bumpedNormal(ctx, u, v)
	}
	sunOrientation := normal.Dot(fs.earthSun)
	viewDirection := ctx.RayDirection

	dayMix := Smoothstep(-0.25, 0.5, sunOrientation)
	day := fs.texDay.SampleUV(u, v)
	night := fs.texNight.SampleUV(u, v)
	color := night.Mix(day, dayMix).WithAlpha(1)

	// Fill the dark side a little so relief stays readable.
	color = color.AddRGB(day.Mul(fs.ambient).ScaleRGB(1 - dayMix))

	mask := fs.texSpecClouds.SampleUV(u, v)
	cloudsMix := Smoothstep(0.5, 1.0, mask.G) * dayMix
	color = color.Mix(colors.White(), cloudsMix)

	fresnel := math.Pow(viewDirection.Dot(normal)+1.0, 2.0)
	atmosphere, atmosphereDayMix := AtmosphereColor(fs.atmoNight, fs.atmoDay, sunOrientation)
	color = color.Mix(atmosphere, Clip(fresnel*atmosphereDayMix, 0, 1))

	reflection := fs.earthSun.Negate().Reflect(normal)
	specular := math.Max(-reflection.Dot(viewDirection), 0)
	specular = math.Pow(specular, 32.0)
	specular *= specularMask(ctx, mask, day, u, v)

	specularColor := colors.White().Mix(atmosphere, Clip(fresnel, 0, 1))
	return color.AddRGB(specularColor.ScaleRGB(specular)).WithAlpha(1)
}

// specularMask prefers the red channel of the specular/cloud mask, then the
// metalness map, then an ocean estimate from the day color.
func specularMask(ctx *RayContext, mask, day colors.Color4, u, v float64) float64 {
	fs := ctx.frame
	if fs.texSpecClouds.Loaded() {
		return mask.R
	}
	if fs.texMetalness.Loaded() {
		m := fs.texMetalness.SampleUV(u, v)
		return Clip(m.R*(1-fs.roughness)+fs.metalness, 0, 1)
	}
	return OceanFactor(day) * (1 - fs.roughness)
}

// bumpedNormal tilts the world normal by the gradient of the height map.
func bumpedNormal(ctx *RayContext, u, v float64) vectors.Vec3 {
	fs := ctx.frame
	tex := fs.texBump.Get()
	du := 1.0 / float64(tex.Width)
	dv := 1.0 / float64(tex.Height)

	h := func(u, v float64) float64 { return tex.SampleUV(u, v).R }
	gu := (h(u+du, v) - h(u-du, v)) / (2 * du)
	gv := (h(u, v+dv) - h(u, v-dv)) / (2 * dv)

	// Tangents of the UV sphere in the Earth's frame.
	theta := 2 * math.Pi * u
	phi := math.Pi * v
	sinPhi := math.Max(math.Sin(phi), 1e-6)
	east := vectors.New(math.Sin(theta), 0, math.Cos(theta))
	south := vectors.New(-math.Cos(theta)*math.Cos(phi), -math.Sin(phi), math.Sin(theta)*math.Cos(phi))

	const amplitude = 0.002
	s := fs.bumpScale * amplitude
	local := ctx.LocalPoint.
		Sub(east.Scale(s * gu / (2 * math.Pi * sinPhi))).
		Sub(south.Scale(s * gv / math.Pi))
	return transformDirection(local, fs.earthWorld).Normalize()
}

// shadeAtmosphere colors the far side of the glow shell at hit point p.
func shadeAtmosphere(fs *frameState, dir, p vectors.Vec3) colors.Color4 {
	normal := p.Normalize()
	sunOrientation := fs.atmoSun.Dot(normal)
	color, _ := AtmosphereColor(fs.atmoTwilight, fs.atmoDayColor, sunOrientation)

	edgeAlpha := Smoothstep(0.0, 0.5, dir.Dot(normal))
	dayAlpha := Smoothstep(-0.5, 0.0, sunOrientation)
	return color.WithAlpha(edgeAlpha * dayAlpha)
}

// GenerateSupersamplingOffsets returns n×n offsets in [-0.5, +0.5] for
// supersampling, as pairs (dx, dy) with pixel-center spacing.
func GenerateSupersamplingOffsets(n int) [][2]float64 {
	if n <= 0 {
		return nil
	}
	step := 1.0 / float64(n)
	out := make([][2]float64, 0, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			dx := (float64(i)+0.5)*step - 0.5
			dy := (float64(j)+0.5)*step - 0.5
			out = append(out, [2]float64{dx, dy})
		}
	}
	return out
}
