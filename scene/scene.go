package scene

import (
	"math"

	"github.com/echoflaresat/earthglow/colors"
	"github.com/echoflaresat/earthglow/earth"
	"github.com/echoflaresat/earthglow/texture"
	"github.com/echoflaresat/earthglow/vectors"
)

// Node names used to look objects up in the graph.
const (
	NameCamera     = "camera"
	NameSunLight   = "sunLight"
	NameAmbient    = "ambientLight"
	NameEarth      = "earth"
	NameAtmosphere = "atmosphere"
	NameDebugSun   = "debugSun"
	NameOrbitTrail = "orbitTrail"
	NameLogoHelper = "logoHelper"
)

// Texture slot names, also the asset request keys.
const (
	TexDay            = "day"
	TexNight          = "night"
	TexSpecularClouds = "specularClouds"
	TexBump           = "bump"
	TexMetalness      = "metalness"
	TexFlare0         = "flare0"
	TexFlare1         = "flare1"
	TexLogo           = "logo"
)

// DebugSunRadius is the radius of the sun marker sphere.
const DebugSunRadius = 0.1

// Options configures Build.
type Options struct {
	Tilt            float64 // radians
	BumpScale       float64
	Metalness       float64
	Roughness       float64
	AtmosphereScale float64
	AtmosphereDay   colors.Color4
	AtmosphereNight colors.Color4
	MarkerDistance  float64
	ShowMarker      bool
	// Trail, when non-nil, adds the orbit ring of the logo.
	Trail *TrailOptions
}

// TrailOptions describes the ring drawn under the orbiting logo.
type TrailOptions struct {
	Radius float64
	Tilt   float64 // radians
}

func DefaultOptions() Options {
	return Options{
		Tilt:            earth.AxialTilt,
		BumpScale:       3.0,
		Metalness:       0.1,
		Roughness:       0.6,
		AtmosphereScale: 1.025,
		AtmosphereDay:   colors.FromHex(0x9fd8ff),
		AtmosphereNight: colors.FromHex(0x050c1f),
		MarkerDistance:  5,
		ShowMarker:      true,
	}
}

// Scene is the object graph plus direct handles to the nodes the frame
// loop touches every tick.
type Scene struct {
	Root       *Node
	Background colors.Color4

	Camera     *Node
	SunLight   *Node
	Ambient    *Node
	Earth      *Node
	Atmosphere *Node
	DebugSun   *Node
	OrbitTrail *Node // nil without a trail
	LogoHelper *Node

	EarthMaterial      *Material
	AtmosphereMaterial *Material

	Textures map[string]*texture.Slot

	markerDistance float64
}

// Build assembles the stock scene. Texture slots start empty and are filled
// by the asset loader.
func Build(opts Options) *Scene {
	sc := &Scene{
		Root:           NewNode("scene"),
		Background:     colors.Black(),
		Textures:       map[string]*texture.Slot{},
		markerDistance: opts.MarkerDistance,
	}
	for _, name := range []string{TexDay, TexNight, TexSpecularClouds, TexBump, TexMetalness, TexFlare0, TexFlare1, TexLogo} {
		sc.Textures[name] = texture.NewSlot(name)
	}

	sc.Camera = NewNode(NameCamera)

	sc.SunLight = NewNode(NameSunLight)
	sc.SunLight.Light = &Light{Kind: DirectionalLight, Color: colors.FromHex(0xffffff), Intensity: 5}
	sc.SunLight.Position = vectors.New(5, 5, 5)

	sc.Ambient = NewNode(NameAmbient)
	sc.Ambient.Light = &Light{Kind: AmbientLight, Color: colors.FromHex(0x404040), Intensity: 0.5}

	sc.EarthMaterial = newEarthMaterial(sc.Textures, opts)
	sc.Earth = NewMesh(NameEarth, SphereGeometry{Radius: earth.Radius}, sc.EarthMaterial)
	sc.Earth.Rotation.X = opts.Tilt

	sc.AtmosphereMaterial = newAtmosphereMaterial(opts)
	sc.Atmosphere = NewMesh(NameAtmosphere, SphereGeometry{Radius: earth.Radius}, sc.AtmosphereMaterial)
	s := opts.AtmosphereScale
	sc.Atmosphere.Scale = vectors.New(s, s, s)

	marker := NewMaterial("debugSun")
	sc.DebugSun = NewMesh(NameDebugSun, SphereGeometry{Radius: DebugSunRadius}, marker)
	sc.DebugSun.Visible = opts.ShowMarker

	sc.LogoHelper = NewNode(NameLogoHelper)

	sc.Root.Add(sc.Camera, sc.SunLight, sc.Ambient, sc.Earth, sc.Atmosphere, sc.DebugSun, sc.LogoHelper)

	if opts.Trail != nil {
		ring := NewMaterial("orbitTrail")
		ring.Color = colors.FromHex(0x444444)
		ring.Transparent = true
		ring.Opacity = 0.1
		ring.Side = DoubleSide
		r := opts.Trail.Radius
		sc.OrbitTrail = NewMesh(NameOrbitTrail, RingGeometry{Inner: r - 0.02, Outer: r + 0.02}, ring)
		sc.OrbitTrail.Rotation.X = math.Pi/2 + opts.Trail.Tilt
		sc.Root.Add(sc.OrbitTrail)
	}
	return sc
}

func newEarthMaterial(tex map[string]*texture.Slot, opts Options) *Material {
	m := NewMaterial("earth")
	m.Uniforms.Set("uDayTexture", tex[TexDay])
	m.Uniforms.Set("uNightTexture", tex[TexNight])
	m.Uniforms.Set("uSpecularCloudsTexture", tex[TexSpecularClouds])
	m.Uniforms.Set("uSunDirection", vectors.New(0, 0, 1))
	m.Uniforms.Set("uAtmosphereDayColor", opts.AtmosphereDay)
	m.Uniforms.Set("uAtmosphereNightColor", opts.AtmosphereNight)
	m.Uniforms.Set("bumpMap", tex[TexBump])
	m.Uniforms.Set("bumpScale", opts.BumpScale)
	m.Uniforms.Set("metalnessMap", tex[TexMetalness])
	m.Uniforms.Set("metalness", opts.Metalness)
	m.Uniforms.Set("roughness", opts.Roughness)
	return m
}

func newAtmosphereMaterial(opts Options) *Material {
	m := NewMaterial("atmosphere")
	m.Side = BackSide
	m.Transparent = true
	m.Uniforms.Set("uSunDirection", vectors.New(0, 0, 1))
	m.Uniforms.Set("uAtmosphereDayColor", opts.AtmosphereDay)
	m.Uniforms.Set("uAtmosphereTwilightColor", opts.AtmosphereNight)
	return m
}

// Texture returns the named slot or nil.
func (sc *Scene) Texture(name string) *texture.Slot {
	return sc.Textures[name]
}

// SetEarthSpin sets the globe's rotation about its own (tilted) axis.
func (sc *Scene) SetEarthSpin(angle float64) {
	sc.Earth.Rotation.Y = math.Mod(angle, 2*math.Pi)
}

// SunDirection returns the direction currently bound to the Earth material.
func (sc *Scene) SunDirection() vectors.Vec3 {
	return sc.EarthMaterial.Uniforms.Vec3("uSunDirection")
}
